package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	LLMProvider       string
	LLMAPIURL         string
	LLMAPIKey         string
	LLMModel          string
	LLMMaxTokens      int
	LLMTemperature    float64
	LLMTimeoutSeconds int

	LLMRetryMaxAttempts int
	LLMBreakerEnabled   bool

	MaxPages              int
	MaxFileSizeMB         int
	MaxRules              int
	MaxRuleLength         int
	DocumentTruncateChars int

	CheckRuleConcurrency int
	CheckTimeoutSeconds  int

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxInFlight    int
	APIOverloadWaitMS int
	CORSAllowedOrigin string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		LLMProvider:       strings.ToLower(strings.TrimSpace(mustEnv("LLM_PROVIDER", "openai"))),
		LLMAPIURL:         mustEnv("LLM_API_URL", ""),
		LLMAPIKey:         mustEnv("LLM_API_KEY", ""),
		LLMModel:          mustEnv("LLM_MODEL", "gpt-4"),
		LLMMaxTokens:      mustEnvInt("LLM_MAX_TOKENS", 1000),
		LLMTemperature:    mustEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeoutSeconds: mustEnvInt("LLM_TIMEOUT_SECONDS", 60),

		LLMRetryMaxAttempts: mustEnvInt("LLM_RETRY_MAX_ATTEMPTS", 1),
		LLMBreakerEnabled:   mustEnvBool("LLM_BREAKER_ENABLED", true),

		MaxPages:              mustEnvInt("MAX_PAGES", 50),
		MaxFileSizeMB:         mustEnvInt("MAX_FILE_SIZE_MB", 10),
		MaxRules:              mustEnvInt("MAX_RULES", 10),
		MaxRuleLength:         mustEnvInt("MAX_RULE_LENGTH", 500),
		DocumentTruncateChars: mustEnvInt("DOCUMENT_TRUNCATE_CHARS", 8000),

		CheckRuleConcurrency: mustEnvInt("CHECK_RULE_CONCURRENCY", 10),
		CheckTimeoutSeconds:  mustEnvInt("CHECK_TIMEOUT_SECONDS", 90),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 16),
		APIOverloadWaitMS: mustEnvInt("API_OVERLOAD_WAIT_MS", 200),
		CORSAllowedOrigin: mustEnv("CORS_ALLOWED_ORIGIN", "*"),
	}
}

// LoadDotEnv populates the environment from .env files. Variables already set win.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c Config) Validate() error {
	var problems []string
	switch c.LLMProvider {
	case "openai", "anthropic", "ollama":
	default:
		problems = append(problems, fmt.Sprintf("LLM_PROVIDER must be openai, anthropic or ollama, got %q", c.LLMProvider))
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		problems = append(problems, "LLM_MODEL must not be empty")
	}
	if c.LLMMaxTokens <= 0 {
		problems = append(problems, "LLM_MAX_TOKENS must be positive")
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		problems = append(problems, "LLM_TEMPERATURE must be within [0, 2]")
	}
	for key, v := range map[string]int{
		"MAX_PAGES":               c.MaxPages,
		"MAX_FILE_SIZE_MB":        c.MaxFileSizeMB,
		"MAX_RULES":               c.MaxRules,
		"MAX_RULE_LENGTH":         c.MaxRuleLength,
		"DOCUMENT_TRUNCATE_CHARS": c.DocumentTruncateChars,
		"CHECK_RULE_CONCURRENCY":  c.CheckRuleConcurrency,
	} {
		if v <= 0 {
			problems = append(problems, key+" must be positive")
		}
	}
	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return errors.New("invalid config: " + strings.Join(problems, "; "))
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
