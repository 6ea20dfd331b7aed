// Package subsidy derives grantable amounts under the restricted-category rule.
// All amounts are whole yen; rates are exact fractions and results are floored.
package subsidy

import (
	"strings"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/rubric"
)

// Cap names the term that bound the restricted grant
type Cap string

const (
	CapNone         Cap = "none"
	CapProportional Cap = "proportional"
	CapRatio        Cap = "non_restricted_ratio"
	CapFixed        Cap = "fixed"
)

// LineItem is one expense entry
type LineItem struct {
	Label    string `json:"label"`
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

// Input describes an expense plan in aggregate
type Input struct {
	RestrictedCost    int64 `json:"restricted_cost"`
	NonRestrictedCost int64 `json:"non_restricted_cost"`
	LossMaking        bool  `json:"loss_making"`
}

// Breakdown is the full derivation of the grant
type Breakdown struct {
	TotalCost          int64  `json:"total_cost"`
	RestrictedCost     int64  `json:"restricted_cost"`
	NonRestrictedCost  int64  `json:"non_restricted_cost"`
	LossMaking         bool   `json:"loss_making"`
	Rate               string `json:"rate"`
	NonRestrictedGrant int64  `json:"non_restricted_grant"`
	ProportionalCap    int64  `json:"proportional_cap"`
	RatioCap           int64  `json:"ratio_cap"`
	FixedCap           int64  `json:"fixed_cap"`
	RestrictedGrant    int64  `json:"restricted_grant"`
	BindingCap         Cap    `json:"binding_cap"`
	TotalGrant         int64  `json:"total_grant"`
	WithinShareCap     bool   `json:"within_share_cap"`
}

// Reduced reports whether a cap other than the proportional rate limited the restricted grant
func (b Breakdown) Reduced() bool {
	return b.RestrictedGrant < b.ProportionalCap
}

// Calculator is safe for concurrent use
type Calculator struct {
	budget rubric.Budget
}

func NewCalculator(budget rubric.Budget) *Calculator {
	return &Calculator{budget: budget}
}

// Rate picks the grant rate for the applicant
func (c *Calculator) Rate(lossMaking bool) rubric.Fraction {
	if lossMaking {
		return c.budget.LossMakingRate
	}
	return c.budget.StandardRate
}

// RestrictedGrant is min(floor(cost*rate), floor(nonRestrictedGrant*share), fixedCap)
func (c *Calculator) RestrictedGrant(restrictedCost, nonRestrictedGrant int64, lossMaking bool) (int64, Cap) {
	if restrictedCost <= 0 {
		return 0, CapNone
	}

	grant, binding := c.Rate(lossMaking).Of(restrictedCost), CapProportional
	if ratio := c.budget.NonRestrictedShare.Of(nonRestrictedGrant); ratio < grant {
		grant, binding = ratio, CapRatio
	}
	if c.budget.FixedCap < grant {
		grant, binding = c.budget.FixedCap, CapFixed
	}
	return grant, binding
}

// Calculate derives the full breakdown for aggregate costs
func (c *Calculator) Calculate(in Input) Breakdown {
	rate := c.Rate(in.LossMaking)
	nonRestrictedGrant := rate.Of(in.NonRestrictedCost)
	restricted, binding := c.RestrictedGrant(in.RestrictedCost, nonRestrictedGrant, in.LossMaking)
	total := nonRestrictedGrant + restricted

	return Breakdown{
		TotalCost:          max(in.RestrictedCost, 0) + max(in.NonRestrictedCost, 0),
		RestrictedCost:     in.RestrictedCost,
		NonRestrictedCost:  in.NonRestrictedCost,
		LossMaking:         in.LossMaking,
		Rate:               rate.String(),
		NonRestrictedGrant: nonRestrictedGrant,
		ProportionalCap:    rate.Of(in.RestrictedCost),
		RatioCap:           c.budget.NonRestrictedShare.Of(nonRestrictedGrant),
		FixedCap:           c.budget.FixedCap,
		RestrictedGrant:    restricted,
		BindingCap:         binding,
		TotalGrant:         total,
		WithinShareCap:     c.withinShareCap(restricted, total),
	}
}

// withinShareCap checks restricted <= share * total without floating point
func (c *Calculator) withinShareCap(restricted, total int64) bool {
	share := c.budget.GrantShareCap
	return restricted*share.Den <= total*share.Num
}

// ExpensesField is the answer id holding the expense list
func (c *Calculator) ExpensesField() string {
	return c.budget.ExpensesField
}

// FromAnswers reads the expense list and loss-making flag from the answer set
func (c *Calculator) FromAnswers(set answers.AnswerSet) Breakdown {
	items := c.ParseExpenses(set.Get(c.budget.ExpensesField))
	return c.Calculate(c.Aggregate(items, set.Get(c.budget.LossMakingField).Truthy()))
}

// Aggregate sums line items into restricted and non-restricted costs
func (c *Calculator) Aggregate(items []LineItem, lossMaking bool) Input {
	in := Input{LossMaking: lossMaking}
	for _, item := range items {
		if c.IsRestricted(item) {
			in.RestrictedCost += item.Amount
		} else {
			in.NonRestrictedCost += item.Amount
		}
	}
	return in
}

// IsRestricted reports whether the item belongs to the restricted category
func (c *Calculator) IsRestricted(item LineItem) bool {
	return strings.EqualFold(strings.TrimSpace(item.Category), c.budget.RestrictedCategory)
}

// ParseExpenses accepts a list of {category, amount, label} objects. Entries
// without a usable amount are dropped.
func (c *Calculator) ParseExpenses(v answers.Value) []LineItem {
	if v.Kind() != answers.KindList {
		return nil
	}

	items := make([]LineItem, 0, len(v.Items()))
	for _, entry := range v.Items() {
		if entry.Kind() != answers.KindObject {
			continue
		}
		amount, ok := entry.Field(c.budget.AmountKey).Int64()
		if !ok || amount < 0 {
			continue
		}
		items = append(items, LineItem{
			Label:    entry.Field(c.budget.LabelKey).Text(),
			Category: entry.Field(c.budget.CategoryKey).Text(),
			Amount:   amount,
		})
	}
	return items
}
