package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile accepts either a top-level list or a mapping with a rules key.
type rulesFile struct {
	Rules []string `yaml:"rules"`
}

func loadRules(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return parseRules(data)
}

func parseRules(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, errors.New("rules file is empty")
	}

	doc := root.Content[0]
	var rules []string
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&rules); err != nil {
			return nil, fmt.Errorf("decode rules list: %w", err)
		}
	case yaml.MappingNode:
		var file rulesFile
		if err := doc.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode rules mapping: %w", err)
		}
		rules = file.Rules
	default:
		return nil, fmt.Errorf("rules file must hold a list or a rules key, line %d", doc.Line)
	}
	return rules, nil
}
