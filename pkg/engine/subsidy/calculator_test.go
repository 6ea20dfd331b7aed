package subsidy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/rubric"
)

func expense(category string, amount float64) answers.Value {
	return answers.Object(map[string]answers.Value{
		"category": answers.String(category),
		"label":    answers.String(category + " cost"),
		"amount":   answers.Number(amount),
	})
}

func TestRestrictedGrantBoundary(t *testing.T) {
	c := NewCalculator(rubric.Default().Budget)

	grant, binding := c.RestrictedGrant(490000, 716400, false)
	assert.Equal(t, int64(238800), grant)
	assert.Equal(t, CapRatio, binding)

	b := c.Calculate(Input{RestrictedCost: 490000, NonRestrictedCost: 1074600})
	assert.Equal(t, int64(1564600), b.TotalCost)
	assert.Equal(t, int64(716400), b.NonRestrictedGrant)
	assert.Equal(t, int64(326666), b.ProportionalCap)
	assert.Equal(t, int64(238800), b.RatioCap)
	assert.Equal(t, int64(238800), b.RestrictedGrant)
	assert.Equal(t, int64(955200), b.TotalGrant)
	assert.True(t, b.WithinShareCap, "238,800 <= 0.25 * 955,200 holds exactly")
	assert.True(t, b.Reduced())
	assert.Equal(t, "2/3", b.Rate)
}

func TestRestrictedGrantCaps(t *testing.T) {
	c := NewCalculator(rubric.Default().Budget)

	tests := []struct {
		name        string
		restricted  int64
		nonGrant    int64
		lossMaking  bool
		wantGrant   int64
		wantBinding Cap
	}{
		{name: "proportional", restricted: 300000, nonGrant: 3000000, wantGrant: 200000, wantBinding: CapProportional},
		{name: "loss making rate", restricted: 300000, nonGrant: 3000000, lossMaking: true, wantGrant: 225000, wantBinding: CapProportional},
		{name: "fixed cap", restricted: 1200000, nonGrant: 9000000, wantGrant: 500000, wantBinding: CapFixed},
		{name: "no restricted cost", restricted: 0, nonGrant: 100, wantGrant: 0, wantBinding: CapNone},
		{name: "nothing else granted", restricted: 100000, nonGrant: 0, wantGrant: 0, wantBinding: CapRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant, binding := c.RestrictedGrant(tt.restricted, tt.nonGrant, tt.lossMaking)
			assert.Equal(t, tt.wantGrant, grant)
			assert.Equal(t, tt.wantBinding, binding)
		})
	}
}

func TestShareCapAlwaysHolds(t *testing.T) {
	c := NewCalculator(rubric.Default().Budget)
	for restricted := int64(0); restricted <= 2000000; restricted += 97331 {
		for other := int64(0); other <= 3000000; other += 131071 {
			for _, loss := range []bool{false, true} {
				b := c.Calculate(Input{RestrictedCost: restricted, NonRestrictedCost: other, LossMaking: loss})
				require.True(t, b.WithinShareCap, "restricted=%d other=%d loss=%v", restricted, other, loss)
			}
		}
	}
}

func TestFromAnswers(t *testing.T) {
	c := NewCalculator(rubric.Default().Budget)

	set := answers.AnswerSet{
		"expenses": answers.List(
			expense("Web", 490000),
			expense("equipment", 1000000),
			answers.Object(map[string]answers.Value{"category": answers.String("printing"), "amount": answers.String("74,600 yen")}),
			answers.String("not an item"),
			answers.Object(map[string]answers.Value{"category": answers.String("misc")}),
		),
		"is_loss_making": answers.String("profitable"),
	}

	items := c.ParseExpenses(set.Get("expenses"))
	require.Len(t, items, 3)
	assert.Equal(t, int64(74600), items[2].Amount)
	assert.True(t, c.IsRestricted(items[0]))

	b := c.FromAnswers(set)
	assert.Equal(t, int64(490000), b.RestrictedCost)
	assert.Equal(t, int64(1074600), b.NonRestrictedCost)
	assert.Equal(t, int64(238800), b.RestrictedGrant)

	b = c.FromAnswers(set.With("is_loss_making", answers.String("loss_making")))
	assert.Equal(t, "3/4", b.Rate)
	assert.Equal(t, int64(805950), b.NonRestrictedGrant)
	assert.Equal(t, int64(268650), b.RestrictedGrant)
}
