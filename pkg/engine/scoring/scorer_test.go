package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/rubric"
)

func testRubric() *rubric.Rubric {
	r := rubric.Default()
	r.Criteria = []rubric.Criterion{
		{ID: "a", Name: "A", Weight: 3, RequiredFields: []string{"f1", "f2"}},
		{ID: "b", Name: "B", Weight: 1, RequiredFields: []string{"f3"}},
		{ID: "c", Name: "C", Weight: 0, RequiredFields: []string{"f4", "f5", "f6"}},
	}
	return r
}

func TestScoreEmpty(t *testing.T) {
	s := NewScorer(testRubric())
	report := s.Score(answers.AnswerSet{})

	assert.Equal(t, 0, report.Overall)
	assert.Equal(t, OverallInsufficient, report.OverallStatus)
	assert.Len(t, report.CriticalGaps, 3)
	assert.Equal(t, []string{"f1", "f2"}, report.PerCriterion["a"].MissingFields)
	assert.Equal(t, StatusMissing, report.PerCriterion["a"].Status)
}

func TestScoreWeighted(t *testing.T) {
	s := NewScorer(testRubric())
	report := s.Score(answers.AnswerSet{
		"f1": answers.String("long enough"),
		"f3": answers.Number(0),
		"f4": answers.Strings("x"),
	})

	a := report.PerCriterion["a"]
	assert.Equal(t, 50, a.Score)
	assert.Equal(t, StatusPartial, a.Status)
	assert.Equal(t, []string{"f2"}, a.MissingFields)

	assert.Equal(t, 100, report.PerCriterion["b"].Score)
	assert.Equal(t, StatusComplete, report.PerCriterion["b"].Status)

	c := report.PerCriterion["c"]
	assert.Equal(t, 33, c.Score)
	assert.Equal(t, StatusMissing, c.Status)

	// (50*3 + 100*1 + 33*0) / 4 = 62.5 -> 63
	assert.Equal(t, 63, report.Overall)
	assert.Equal(t, OverallAcceptable, report.OverallStatus)

	require.Len(t, report.CriticalGaps, 2)
	assert.Equal(t, "c", report.CriticalGaps[0].ID)
	assert.Equal(t, "a", report.CriticalGaps[1].ID)
}

func TestFieldSatisfaction(t *testing.T) {
	s := NewScorer(testRubric())

	tests := []struct {
		name  string
		value answers.Value
		want  bool
	}{
		{name: "null", value: answers.Value{}, want: false},
		{name: "short string", value: answers.String(" abcd "), want: false},
		{name: "five runes", value: answers.String("店舗の名前"), want: true},
		{name: "empty list", value: answers.List(), want: false},
		{name: "number zero", value: answers.Number(0), want: true},
		{name: "object", value: answers.Object(map[string]answers.Value{"k": answers.Number(1)}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsSatisfied(answers.AnswerSet{"f": tt.value}, "f"))
		})
	}
	assert.False(t, s.IsSatisfied(answers.AnswerSet{}, "f"))
}

func TestOverallStatusBands(t *testing.T) {
	s := NewScorer(rubric.Default())

	assert.Equal(t, OverallExcellent, s.overallStatus(95))
	assert.Equal(t, OverallGood, s.overallStatus(94))
	assert.Equal(t, OverallGood, s.overallStatus(80))
	assert.Equal(t, OverallAcceptable, s.overallStatus(60))
	assert.Equal(t, OverallInsufficient, s.overallStatus(59))
}

func TestScoreMonotonic(t *testing.T) {
	r := rubric.Default()
	s := NewScorer(r)

	var fields []string
	for _, c := range r.Criteria {
		fields = append(fields, c.RequiredFields...)
	}

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		rng.Shuffle(len(fields), func(i, j int) { fields[i], fields[j] = fields[j], fields[i] })

		set := answers.AnswerSet{}
		prev := s.Score(set).Overall
		for _, f := range fields {
			set = set.With(f, answers.String("a sufficiently long answer"))
			next := s.Score(set).Overall
			require.GreaterOrEqual(t, next, prev, "adding %s decreased the score", f)
			prev = next
		}
		assert.Equal(t, 100, prev)
	}
}
