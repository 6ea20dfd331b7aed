// Package validation checks numeric realism and the grant's business rules over an answer set.
// Issues are returned as data; nothing here fails.
package validation

import (
	"fmt"
	"math"
	"strings"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/rubric"
	"grant-assistant-be/pkg/engine/subsidy"
)

// Engine is pure and safe for concurrent use
type Engine struct {
	budget      rubric.Budget
	goals       rubric.Goals
	consistency rubric.Consistency
	minRunes    int
	calc        *subsidy.Calculator

	themes     []string
	efficiency []string
	sales      []string
}

func NewEngine(r *rubric.Rubric) *Engine {
	return &Engine{
		budget:      r.Budget,
		goals:       r.Goals,
		consistency: r.Consistency,
		minRunes:    r.Thresholds.MinTextRunes,
		calc:        subsidy.NewCalculator(r.Budget),
		themes:      lowerAll(r.Consistency.ThemeKeywords),
		efficiency:  lowerAll(r.Consistency.EfficiencyKeywords),
		sales:       lowerAll(r.Consistency.SalesKeywords),
	}
}

// Validate runs every rule family in a fixed order: growth, budget, consistency
func (e *Engine) Validate(set answers.AnswerSet) []Issue {
	issues := []Issue{}
	issues = append(issues, e.checkGrowth(set)...)
	issues = append(issues, e.checkBudget(set)...)
	issues = append(issues, e.checkConsistency(set)...)
	return issues
}

func (e *Engine) checkGrowth(set answers.AnswerSet) []Issue {
	baseline, okBase := set.Get(e.goals.BaselineField).Num()
	target, okTarget := set.Get(e.goals.TargetField).Num()
	if !okBase || !okTarget || baseline <= 0 {
		return nil
	}

	ratio := target / baseline
	switch {
	case ratio > e.goals.CriticalRatio:
		recommended := math.Floor(baseline * e.goals.RecommendedGrowth)
		return []Issue{{
			Type:     TypeUnrealisticGrowth,
			Severity: SeverityCritical,
			Field:    e.goals.TargetField,
			Message: fmt.Sprintf("The target is %.2f times the current figure, above the %.1fx reviewers treat as realistic.",
				ratio, e.goals.CriticalRatio),
			Suggestion:       fmt.Sprintf("Lower the target to about %.0f or explain the growth drivers in figures.", recommended),
			CurrentValue:     value(target),
			RecommendedValue: value(recommended),
		}}
	case ratio > e.goals.WarningRatio:
		return []Issue{{
			Type:         TypeAmbitiousGrowth,
			Severity:     SeverityMedium,
			Field:        e.goals.TargetField,
			Message:      fmt.Sprintf("The target is %.2f times the current figure, which is ambitious.", ratio),
			Suggestion:   "Back the target with concrete numbers such as customer counts or unit prices.",
			CurrentValue: value(target),
		}}
	default:
		return nil
	}
}

func (e *Engine) checkBudget(set answers.AnswerSet) []Issue {
	items := e.calc.ParseExpenses(set.Get(e.budget.ExpensesField))
	if len(items) == 0 {
		return nil
	}

	var total, restricted int64
	restrictedLines := 0
	for _, item := range items {
		total += item.Amount
		if e.calc.IsRestricted(item) {
			restricted += item.Amount
			restrictedLines++
		}
	}
	if restrictedLines == 0 {
		return nil
	}

	field := e.budget.ExpensesField
	category := e.budget.RestrictedCategory
	issues := []Issue{}

	if restrictedLines == len(items) {
		issues = append(issues, Issue{
			Type:       TypeRestrictedSoleExpense,
			Severity:   SeverityCritical,
			Field:      field,
			Message:    fmt.Sprintf("The %s category cannot be the only expense in the plan.", category),
			Suggestion: fmt.Sprintf("Add the non-%s expenses the project needs, such as equipment, advertising or materials.", category),
		})
	}

	if maxAllowed := e.budget.RatioCap.Of(total); restricted > maxAllowed {
		issues = append(issues, Issue{
			Type:     TypeRestrictedRatio,
			Severity: SeverityCritical,
			Field:    field,
			Message: fmt.Sprintf("%s costs of %d exceed %s of the total expenses (%d).",
				category, restricted, e.budget.RatioCap, maxAllowed),
			Suggestion:       fmt.Sprintf("Reduce %s costs to %d or less.", category, maxAllowed),
			CurrentValue:     value(float64(restricted)),
			RecommendedValue: value(float64(maxAllowed)),
		})
	}

	if ceiling := e.budget.FixedCap; restricted > ceiling {
		issues = append(issues, Issue{
			Type:             TypeRestrictedFixedCap,
			Severity:         SeverityCritical,
			Field:            field,
			Message:          fmt.Sprintf("%s costs of %d exceed the fixed ceiling of %d.", category, restricted, ceiling),
			Suggestion:       fmt.Sprintf("Reduce %s costs to %d or less.", category, ceiling),
			CurrentValue:     value(float64(restricted)),
			RecommendedValue: value(float64(ceiling)),
		})
	}

	breakdown := e.calc.Calculate(e.calc.Aggregate(items, set.Get(e.budget.LossMakingField).Truthy()))
	if breakdown.Reduced() {
		issues = append(issues, Issue{
			Type:     TypeRestrictedGrantReduced,
			Severity: SeverityLow,
			Field:    field,
			Message: fmt.Sprintf("Only %d of the %d %s grant is payable because of the %s cap.",
				breakdown.RestrictedGrant, breakdown.ProportionalCap, category, breakdown.BindingCap),
			Suggestion:       "Review whether the remaining amount can be covered by the business itself.",
			CurrentValue:     value(float64(breakdown.ProportionalCap)),
			RecommendedValue: value(float64(breakdown.RestrictedGrant)),
		})
	}

	return issues
}

func (e *Engine) checkConsistency(set answers.AnswerSet) []Issue {
	issues := []Issue{}

	philosophy := strings.ToLower(set.Text(e.consistency.PhilosophyField))
	plan := strings.ToLower(set.Text(e.consistency.PlanField))
	if e.satisfied(set, e.consistency.PhilosophyField) && e.satisfied(set, e.consistency.PlanField) {
		if !sharesAny(philosophy, plan, e.themes) {
			issues = append(issues, Issue{
				Type:       TypeInconsistentPolicy,
				Severity:   SeverityMedium,
				Field:      e.consistency.PlanField,
				Message:    "The plan does not reflect any theme of the stated management philosophy.",
				Suggestion: fmt.Sprintf("Tie the plan back to the philosophy using a shared theme such as %s.", strings.Join(e.consistency.ThemeKeywords, ", ")),
			})
		}
	}

	var combined strings.Builder
	efficiencyField := ""
	for _, field := range e.planFields() {
		text := strings.ToLower(set.Text(field))
		if efficiencyField == "" && containsAny(text, e.efficiency) {
			efficiencyField = field
		}
		combined.WriteString(text)
		combined.WriteString("\n")
	}
	if efficiencyField != "" && !containsAny(combined.String(), e.sales) {
		issues = append(issues, Issue{
			Type:       TypeMissingSalesLinkage,
			Severity:   SeverityHigh,
			Field:      efficiencyField,
			Message:    "The plan focuses on internal efficiency without linking it to new customers or sales.",
			Suggestion: "Explain how the time or cost saved will be used to win new customers or raise sales.",
		})
	}

	return issues
}

func (e *Engine) planFields() []string {
	if len(e.consistency.PlanFields) > 0 {
		return e.consistency.PlanFields
	}
	return []string{e.consistency.PlanField}
}

func (e *Engine) satisfied(set answers.AnswerSet, field string) bool {
	return set.Has(field) && set.Get(field).Satisfies(e.minRunes)
}

func sharesAny(a, b string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(a, k) && strings.Contains(b, k) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
