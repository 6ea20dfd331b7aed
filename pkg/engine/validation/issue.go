package validation

// Severity orders issues; critical blocks the turn
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// IssueType identifies the rule that produced an issue
type IssueType string

const (
	TypeUnrealisticGrowth      IssueType = "unrealistic_growth"
	TypeAmbitiousGrowth        IssueType = "ambitious_growth"
	TypeRestrictedRatio        IssueType = "restricted_ratio_exceeded"
	TypeRestrictedFixedCap     IssueType = "restricted_cap_exceeded"
	TypeRestrictedSoleExpense  IssueType = "restricted_sole_expense"
	TypeRestrictedGrantReduced IssueType = "restricted_grant_reduced"
	TypeInconsistentPolicy     IssueType = "inconsistent_policy"
	TypeMissingSalesLinkage    IssueType = "missing_sales_linkage"
)

// Issue is produced fresh on every evaluation
type Issue struct {
	Type             IssueType `json:"type"`
	Severity         Severity  `json:"severity"`
	Field            string    `json:"field"`
	Message          string    `json:"message"`
	Suggestion       string    `json:"suggestion"`
	CurrentValue     *float64  `json:"current_value,omitempty"`
	RecommendedValue *float64  `json:"recommended_value,omitempty"`
}

// Key identifies an issue independent of its wording
func (i Issue) Key() string {
	return string(i.Type) + ":" + i.Field
}

func value(v float64) *float64 {
	return &v
}

// First returns the first issue with the given severity
func First(issues []Issue, severity Severity) (Issue, bool) {
	for _, issue := range issues {
		if issue.Severity == severity {
			return issue, true
		}
	}
	return Issue{}, false
}

// Blocking returns the critical and high issues
func Blocking(issues []Issue) []Issue {
	out := []Issue{}
	for _, issue := range issues {
		if issue.Severity.rank() <= SeverityHigh.rank() {
			out = append(out, issue)
		}
	}
	return out
}
