package review

import (
	"fmt"
	"math"
	"strings"

	"reviewd/internal/domain"
)

// Aggregate computes the overall result across normalized materials.
//
// When the backend supplied summary counters they are authoritative: some
// backend versions compute pass ratios server-side and recomputing them
// here produces rounding disagreements between server and client. Without
// a summary the aggregate derives purely from the materials.
func Aggregate(materials []domain.Material, summary *RawSummary) domain.AggregateResult {
	if summary != nil && (summary.OverallResult != "" || summary.TotalMaterials > 0) {
		return fromSummary(summary)
	}
	return fromMaterials(materials)
}

func fromSummary(summary *RawSummary) domain.AggregateResult {
	status := overallResultStatus(summary.OverallResult)
	progress := ratioPercent(summary.PassedMaterials, summary.TotalMaterials)

	issues := summary.TotalMaterials - summary.PassedMaterials
	if issues < 0 {
		issues = 0
	}
	failed := summary.FailedMaterials
	warned := summary.WarningMaterials
	if failed == 0 && status == domain.StatusError {
		failed = issues
	}
	if warned == 0 && status == domain.StatusHasIssues {
		warned = issues
	}

	return domain.AggregateResult{
		Status:     status,
		Progress:   progress,
		Summary:    summaryMessage(status, summary.TotalMaterials, failed, warned),
		IssueCount: issues,
	}
}

func fromMaterials(materials []domain.Material) domain.AggregateResult {
	total := len(materials)
	passed, failed, warned := 0, 0, 0
	for _, m := range materials {
		switch m.Status {
		case domain.StatusPassed:
			passed++
		case domain.StatusError:
			failed++
		case domain.StatusHasIssues:
			warned++
		}
	}

	status := domain.StatusPassed
	switch {
	case failed > 0:
		status = domain.StatusError
	case warned > 0:
		status = domain.StatusHasIssues
	}

	return domain.AggregateResult{
		Status:     status,
		Progress:   ratioPercent(passed, total),
		Summary:    summaryMessage(status, total, failed, warned),
		IssueCount: total - passed,
	}
}

// overallResultStatus maps a backend overall_result phrase onto the
// taxonomy by substring.
func overallResultStatus(overall string) domain.Status {
	lower := strings.ToLower(overall)
	switch {
	case strings.Contains(lower, "fail"):
		return domain.StatusError
	case strings.Contains(lower, "suggest"),
		strings.Contains(lower, "require"),
		strings.Contains(lower, "partial"):
		return domain.StatusHasIssues
	default:
		return domain.StatusPassed
	}
}

// summaryMessage selects the human-readable summary by a fixed priority:
// failures first, then warnings, then the all-passed message.
func summaryMessage(status domain.Status, total, failed, warned int) string {
	switch {
	case status == domain.StatusError:
		if failed == 0 {
			failed = 1
		}
		return fmt.Sprintf("%d of %d materials failed review, review immediately", failed, total)
	case status == domain.StatusHasIssues:
		if warned == 0 {
			warned = 1
		}
		return fmt.Sprintf("%d of %d materials need manual confirmation", warned, total)
	case total > 0:
		return fmt.Sprintf("All %d materials passed review", total)
	default:
		return "Review completed"
	}
}

// ratioPercent returns round(passed/total*100) clamped to [0, 100].
func ratioPercent(passed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(passed) / float64(total) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
