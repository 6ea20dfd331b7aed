package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/rubric"
)

func newTestDetector() *Detector {
	return NewDetector(rubric.Default(), map[string]Category{
		"target_customers": CategoryAudience,
		"goal_rationale":   CategoryNumericGoal,
		"sales_plan":       CategoryPlan,
		"competitors":      CategoryCompetition,
	})
}

func TestMissingElements(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name     string
		question string
		answer   string
		context  answers.AnswerSet
		want     []string
	}{
		{
			name:     "audience complete",
			question: "target_customers",
			answer:   "Office workers in their 30s living near Sakura station",
			want:     []string{},
		},
		{
			name:     "audience vague",
			question: "target_customers",
			answer:   "Anyone who likes good coffee",
			want:     []string{ElementAgeBracket, ElementGeography, ElementAudienceAttribute},
		},
		{
			name:     "age stem does not match inside words",
			question: "target_customers",
			answer:   "Families from the local agency district",
			want:     []string{ElementAgeBracket},
		},
		{
			name:     "goal without numbers",
			question: "goal_rationale",
			answer:   "We want to grow a lot",
			want:     []string{ElementNumericEvidence, ElementJustification},
		},
		{
			name:     "goal justified",
			question: "goal_rationale",
			answer:   "Sales rise from 100 to 125 because the new menu adds 20 covers a day",
			want:     []string{},
		},
		{
			name:     "goal ratio too high",
			question: "goal_rationale",
			answer:   "From 1,000,000 to 2,500,000 yen because of tourists",
			want:     []string{ElementGoalNonRealistic},
		},
		{
			name:     "single number against baseline",
			question: "goal_rationale",
			answer:   "We expect 300 because demand is strong",
			context:  answers.AnswerSet{"sales_baseline": answers.Number(100)},
			want:     []string{ElementGoalNonRealistic},
		},
		{
			name:     "plan complete",
			question: "sales_plan",
			answer:   "Launch an Instagram campaign to attract new customers",
			want:     []string{},
		},
		{
			name:     "plan missing everything",
			question: "sales_plan",
			answer:   "Do our best every day",
			want:     []string{ElementConcreteAction, ElementOutcomeLinkage, ElementDigitalChannel},
		},
		{
			name:     "online is not one",
			question: "competitors",
			answer:   "Online shops",
			want:     []string{ElementCompetitorCount, ElementDifferentiation},
		},
		{
			name:     "competition complete",
			question: "competitors",
			answer:   "Three cafes nearby, but unlike them we roast our own beans",
			want:     []string{},
		},
		{
			name:     "no checks registered",
			question: "company_name",
			answer:   "x",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.MissingElements(tt.question, tt.answer, tt.context)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcherStems(t *testing.T) {
	m := newMatcher([]string{"differentiat*", "social media", "20s"})

	assert.True(t, m.match("We differentiate on price"))
	assert.True(t, m.match("Differentiation matters"))
	assert.True(t, m.match("active on social   media"))
	assert.True(t, m.match("people in their 20s"))
	assert.False(t, m.match("people in their 200s"))
	assert.False(t, m.match("undifferentiated"))
	assert.False(t, newMatcher(nil).match("anything"))
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, []float64{1564600, 2.5, 3}, numbers("1,564,600 yen, 2.5x over 3 years"))
	assert.Empty(t, numbers("none"))
}
