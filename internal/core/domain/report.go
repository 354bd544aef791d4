package domain

type OverallStatus string

const (
	OverallNoResults   OverallStatus = "NO_RESULTS"
	OverallError       OverallStatus = "ERROR"
	OverallAllPass     OverallStatus = "ALL_PASS"
	OverallAllFail     OverallStatus = "ALL_FAIL"
	OverallPartialPass OverallStatus = "PARTIAL_PASS"
)

// Aggregate reduces per-rule results to one overall status.
// An ERROR anywhere dominates any pass/fail mix.
func Aggregate(results []RuleResult) OverallStatus {
	if len(results) == 0 {
		return OverallNoResults
	}

	allPass, allFail := true, true
	for _, r := range results {
		if r.Errored() {
			return OverallError
		}
		allPass = allPass && r.Passed()
		allFail = allFail && r.Failed()
	}

	switch {
	case allPass:
		return OverallAllPass
	case allFail:
		return OverallAllFail
	default:
		return OverallPartialPass
	}
}
