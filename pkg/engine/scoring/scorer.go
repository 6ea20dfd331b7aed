// Package scoring computes weighted completeness of an answer set against the rubric.
package scoring

import (
	"math"
	"sort"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/rubric"
)

// CriterionStatus is the per-criterion grade
type CriterionStatus string

const (
	StatusComplete CriterionStatus = "complete"
	StatusPartial  CriterionStatus = "partial"
	StatusMissing  CriterionStatus = "missing"
)

// OverallStatus is the grade of the weighted total
type OverallStatus string

const (
	OverallExcellent    OverallStatus = "excellent"
	OverallGood         OverallStatus = "good"
	OverallAcceptable   OverallStatus = "acceptable"
	OverallInsufficient OverallStatus = "insufficient"
)

// CriterionScore is the result for one criterion
type CriterionScore struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Weight        float64         `json:"weight"`
	Score         int             `json:"score"`
	Status        CriterionStatus `json:"status"`
	MissingFields []string        `json:"missing_fields"`
}

// Report is the full completeness result
type Report struct {
	Overall       int                       `json:"overall"`
	OverallStatus OverallStatus             `json:"overall_status"`
	PerCriterion  map[string]CriterionScore `json:"per_criterion"`
	CriticalGaps  []CriterionScore          `json:"critical_gaps"`
}

// Scorer evaluates answer sets. Safe for concurrent use; it never mutates its rubric.
type Scorer struct {
	criteria   []rubric.Criterion
	thresholds rubric.Thresholds
}

func NewScorer(r *rubric.Rubric) *Scorer {
	return &Scorer{
		criteria:   r.Criteria,
		thresholds: r.Thresholds,
	}
}

// IsSatisfied reports whether a field holds usable information
func (s *Scorer) IsSatisfied(set answers.AnswerSet, field string) bool {
	v, ok := set[field]
	if !ok {
		return false
	}
	return v.Satisfies(s.thresholds.MinTextRunes)
}

// Score grades every criterion and the weighted total
func (s *Scorer) Score(set answers.AnswerSet) Report {
	report := Report{
		PerCriterion: make(map[string]CriterionScore, len(s.criteria)),
		CriticalGaps: []CriterionScore{},
	}

	var weighted, totalWeight float64
	ordered := make([]CriterionScore, 0, len(s.criteria))

	for _, c := range s.criteria {
		cs := s.scoreCriterion(set, c)
		report.PerCriterion[c.ID] = cs
		ordered = append(ordered, cs)

		weighted += float64(cs.Score) * c.Weight
		totalWeight += c.Weight
	}

	if totalWeight > 0 {
		report.Overall = roundHalfUp(weighted / totalWeight)
	}
	report.OverallStatus = s.overallStatus(report.Overall)

	for _, cs := range ordered {
		if cs.Score < s.thresholds.CriticalGapScore {
			report.CriticalGaps = append(report.CriticalGaps, cs)
		}
	}
	sort.SliceStable(report.CriticalGaps, func(i, j int) bool {
		return report.CriticalGaps[i].Score < report.CriticalGaps[j].Score
	})

	return report
}

func (s *Scorer) scoreCriterion(set answers.AnswerSet, c rubric.Criterion) CriterionScore {
	missing := []string{}
	satisfied := 0
	for _, field := range c.RequiredFields {
		if s.IsSatisfied(set, field) {
			satisfied++
		} else {
			missing = append(missing, field)
		}
	}

	score := 0
	if total := len(c.RequiredFields); total > 0 {
		score = roundHalfUp(float64(satisfied) / float64(total) * 100)
	}

	status := StatusMissing
	switch {
	case score == 100:
		status = StatusComplete
	case score >= s.thresholds.PartialScore:
		status = StatusPartial
	}

	return CriterionScore{
		ID:            c.ID,
		Name:          c.Name,
		Weight:        c.Weight,
		Score:         score,
		Status:        status,
		MissingFields: missing,
	}
}

func (s *Scorer) overallStatus(overall int) OverallStatus {
	switch {
	case overall >= s.thresholds.Excellent:
		return OverallExcellent
	case overall >= s.thresholds.Good:
		return OverallGood
	case overall >= s.thresholds.Acceptable:
		return OverallAcceptable
	default:
		return OverallInsufficient
	}
}

// roundHalfUp matches the usual round-to-nearest behaviour for non-negative scores
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
