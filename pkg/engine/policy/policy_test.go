package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/catalog"
	"grant-assistant-be/pkg/engine/followup"
	"grant-assistant-be/pkg/engine/gap"
	"grant-assistant-be/pkg/engine/graph"
	"grant-assistant-be/pkg/engine/rubric"
	"grant-assistant-be/pkg/engine/validation"
)

type fakeSource struct {
	result   followup.Result
	requests []followup.Request
}

func (f *fakeSource) Generate(_ context.Context, req followup.Request) followup.Result {
	f.requests = append(f.requests, req)
	return f.result
}

func newPolicy(t *testing.T, src followup.Source, cfg Config) *Policy {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return New(c, rubric.Default(), src, logger.NewNopLogger(), cfg)
}

var someQuestion = followup.Some(followup.Question{
	Text:            "Which dishes do regulars order most?",
	Placeholder:     "For example, our hand-drip coffee ...",
	TargetedElement: "numeric_evidence",
})

func TestTurnGuardForcesProceed(t *testing.T) {
	src := &fakeSource{result: someQuestion}
	p := newPolicy(t, src, Config{MaxQuestions: 3, MaxDeepDivePerQuestion: 5})

	session := NewSession()
	session.TurnCount = 3
	set := answers.AnswerSet{"sales_baseline": answers.Number(1000000)}

	res := p.EvaluateTurn(context.Background(), "sales_target", answers.Number(5000000), set, session)

	assert.Equal(t, ActionProceed, res.Action)
	assert.False(t, res.RequiresCorrection)
	assert.True(t, res.Session.GuardExceeded)
	assert.Equal(t, 4, res.Session.TurnCount)
	assert.Empty(t, src.requests)
	assert.True(t, res.Answers.Has("sales_target"))
}

func TestCriticalIssueRequiresCorrection(t *testing.T) {
	p := newPolicy(t, &fakeSource{}, DefaultConfig())
	set := answers.AnswerSet{"sales_baseline": answers.Number(1000000)}
	session := NewSession()

	res := p.EvaluateTurn(context.Background(), "sales_target", answers.Number(3000000), set, session)

	require.Equal(t, ActionFlagCritical, res.Action)
	assert.True(t, res.RequiresCorrection)
	require.NotNil(t, res.Data.Issue)
	assert.Equal(t, validation.TypeUnrealisticGrowth, res.Data.Issue.Type)
	assert.InDelta(t, 1250000, *res.Data.Issue.RecommendedValue, 0.001)
	require.NotNil(t, res.Data.Question)
	assert.Equal(t, "sales_target", res.Data.Question.ID)
	assert.Equal(t, StatusValidating, res.Session.Status)
	assert.Len(t, res.Session.IssuesSeen, 1)

	// inputs are untouched
	assert.False(t, set.Has("sales_target"))
	assert.Equal(t, 0, session.TurnCount)
	assert.Equal(t, 1, res.Session.TurnCount)
}

func TestDeepDiveIncrementsOnlyWhenProduced(t *testing.T) {
	src := &fakeSource{result: someQuestion}
	p := newPolicy(t, src, DefaultConfig())
	set := answers.AnswerSet{"company_name": answers.String("Hanabi")}

	res := p.EvaluateTurn(context.Background(), "business_description", answers.String("A cafe."), set, NewSession())

	require.Equal(t, ActionDeepDive, res.Action)
	require.NotNil(t, res.Data.Question)
	assert.Equal(t, "business_description__dd1", res.Data.Question.ID)
	assert.Equal(t, "business_description", res.Data.Question.ParentID)
	assert.Equal(t, someQuestion.Question.Text, res.Data.Question.Text)
	assert.Equal(t, 1, res.Session.DeepDiveCountByParent["business_description"])
	assert.Equal(t, StatusDeepDiving, res.Session.Status)
	assert.Equal(t, "business_description__dd1", p.ResolveNext(res.Answers, res.Session).ID)

	res = p.EvaluateTurn(context.Background(), "business_description__dd1", answers.String("We roast beans."), res.Answers, res.Session)

	require.Equal(t, ActionDeepDive, res.Action)
	assert.Equal(t, "business_description__dd2", res.Data.Question.ID)
	assert.Equal(t, 2, res.Session.DeepDiveCountByParent["business_description"])
	require.Len(t, src.requests, 2)
	assert.Equal(t, "A cafe.\nWe roast beans.", src.requests[1].UserAnswer)
	assert.Equal(t, "business_description", src.requests[1].ParentQuestionID)

	src.result = followup.None()
	res = p.EvaluateTurn(context.Background(), "business_description__dd2", answers.String("Since 2019."), res.Answers, res.Session)

	assert.Equal(t, ActionProceed, res.Action)
	assert.Equal(t, 2, res.Session.DeepDiveCountByParent["business_description"])
	assert.Empty(t, res.Session.PendingDeepDive)
	require.NotNil(t, res.Data.Question)
	assert.Equal(t, "business_category", res.Data.Question.ID)
}

func TestDeepDiveFailureFallsThroughToSuggestion(t *testing.T) {
	src := &fakeSource{result: followup.Failure(followup.ErrTimeout)}
	p := newPolicy(t, src, DefaultConfig())

	res := p.EvaluateTurn(context.Background(), "target_customers", answers.String("People who like coffee"), answers.AnswerSet{}, NewSession())

	require.Equal(t, ActionSuggestImprovement, res.Action)
	assert.Equal(t, []string{gap.ElementAgeBracket, gap.ElementGeography, gap.ElementAudienceAttribute}, res.Data.MissingElements)
	assert.Equal(t, StatusSuggesting, res.Session.Status)
	assert.Zero(t, res.Session.DeepDiveCountByParent["target_customers"])
	assert.Len(t, src.requests, 1)
	assert.Equal(t, res.Data.MissingElements, src.requests[0].MissingElements)
}

func TestDeepDiveSkipsClosedFormAndShortFields(t *testing.T) {
	tests := []struct {
		name       string
		questionID string
		answer     answers.Value
	}{
		{name: "single line name", questionID: "company_name", answer: answers.String("Hanabi")},
		{name: "number", questionID: "years_in_business", answer: answers.Number(4)},
		{name: "select", questionID: "has_efficiency_plan", answer: answers.String("not_planned")},
		{name: "skipped textarea", questionID: "strengths", answer: answers.String("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{result: someQuestion}
			p := newPolicy(t, src, DefaultConfig())

			res := p.EvaluateTurn(context.Background(), tt.questionID, tt.answer, answers.AnswerSet{}, NewSession())

			assert.Equal(t, ActionProceed, res.Action)
			assert.Empty(t, src.requests)
			assert.True(t, res.Answers.Has(tt.questionID))
		})
	}
}

func TestDeepDiveGuard(t *testing.T) {
	src := &fakeSource{result: someQuestion}
	p := newPolicy(t, src, Config{MaxQuestions: 50, MaxDeepDivePerQuestion: 1})

	session := NewSession()
	session.DeepDiveCountByParent["business_description"] = 1

	res := p.EvaluateTurn(context.Background(), "business_description", answers.String("A cafe."), answers.AnswerSet{}, session)

	assert.Equal(t, ActionProceed, res.Action)
	assert.True(t, res.Session.GuardExceeded)
	assert.Empty(t, src.requests)
}

func TestSkippedDeepDiveStopsFollowUps(t *testing.T) {
	src := &fakeSource{result: someQuestion}
	p := newPolicy(t, src, DefaultConfig())

	res := p.EvaluateTurn(context.Background(), "business_description", answers.String("A cafe."), answers.AnswerSet{}, NewSession())
	require.Equal(t, ActionDeepDive, res.Action)

	res = p.EvaluateTurn(context.Background(), "business_description__dd1", answers.String(""), res.Answers, res.Session)
	assert.Equal(t, ActionProceed, res.Action)
	assert.Len(t, src.requests, 1)

	// re-answering the parent no longer asks for more
	res = p.EvaluateTurn(context.Background(), "business_description", answers.String("A small cafe."), res.Answers, res.Session)
	assert.Equal(t, ActionProceed, res.Action)
	assert.Len(t, src.requests, 1)
}

func TestHighPriorityIssue(t *testing.T) {
	p := newPolicy(t, &fakeSource{result: followup.None()}, DefaultConfig())
	plan := "We will launch an online booking website to automate reservations and increase repeat visits."

	res := p.EvaluateTurn(context.Background(), "sales_plan", answers.String(plan), answers.AnswerSet{}, NewSession())

	require.Equal(t, ActionFlagHighPriority, res.Action)
	require.NotNil(t, res.Data.Issue)
	assert.Equal(t, validation.TypeMissingSalesLinkage, res.Data.Issue.Type)
	assert.False(t, res.RequiresCorrection)
}

func TestInsertsQueueOnce(t *testing.T) {
	p := newPolicy(t, &fakeSource{}, DefaultConfig())
	set := answers.AnswerSet{
		"company_name":         answers.String("Bloom"),
		"business_description": answers.String("A hair salon for families in the suburbs"),
	}

	res := p.EvaluateTurn(context.Background(), "business_category", answers.String("beauty"), set, NewSession())

	require.Equal(t, ActionProceed, res.Action)
	require.NotNil(t, res.Data.Question)
	assert.Equal(t, "category_detail", res.Data.Question.ID)
	assert.True(t, res.Data.Question.Inserted)
	assert.Equal(t, []string{"category_detail", "beauty_repeat_rate", "beauty_menu_pricing"}, res.Session.PendingNodes)
	assert.Equal(t, []string{"category_followup"}, res.Session.FiredInserts)

	res = p.EvaluateTurn(context.Background(), "business_category", answers.String("retail"), res.Answers, res.Session)
	assert.Equal(t, []string{"category_detail", "beauty_repeat_rate", "beauty_menu_pricing"}, res.Session.PendingNodes)
	assert.Equal(t, []string{"category_followup"}, res.Session.FiredInserts)
}

func TestGoBackOverInsertTrigger(t *testing.T) {
	p := newPolicy(t, &fakeSource{result: followup.None()}, DefaultConfig())
	set := answers.AnswerSet{
		"company_name":         answers.String("Hanabi"),
		"business_description": answers.String("A small coffee roastery and cafe next to the station"),
	}

	res := p.EvaluateTurn(context.Background(), "business_category", answers.String("restaurant"), set, p.Seed(set))
	require.Equal(t, "category_detail", res.Data.Question.ID)

	// queued nodes wait for their trigger
	assert.Equal(t, "business_category", p.ResolveNext(res.Answers.Without("business_category"), res.Session).ID)

	back, session, err := p.GoBack(res.Answers, res.Session)
	require.NoError(t, err)
	assert.False(t, back.Has("business_category"))
	assert.Empty(t, session.PendingNodes)
	assert.Empty(t, session.FiredInserts)
	assert.Equal(t, "business_category", p.ResolveNext(back, session).ID)

	res = p.EvaluateTurn(context.Background(), "business_category", answers.String("retail"), back, session)
	assert.Equal(t, []string{"category_detail", "retail_best_sellers", "retail_purchase_frequency"}, res.Session.PendingNodes)
	assert.Equal(t, "category_detail", res.Data.Question.ID)
}

func TestStatusListsQueuedRequiredInserts(t *testing.T) {
	p := newPolicy(t, &fakeSource{}, DefaultConfig())
	set := answers.AnswerSet{
		"company_name":         answers.String("Bloom"),
		"business_description": answers.String("A hair salon for families in the suburbs"),
	}

	res := p.EvaluateTurn(context.Background(), "business_category", answers.String("beauty"), set, NewSession())
	status := p.Status(res.Answers, res.Session)

	assert.False(t, status.Complete)
	assert.Equal(t, "category_detail", status.NextQuestionID)
	assert.Contains(t, status.PendingRequired, "category_detail")
	assert.Contains(t, status.PendingRequired, "beauty_menu_pricing")
	assert.NotContains(t, status.PendingRequired, "retail_best_sellers")
}

func TestInsertsQueueOnCriticalTurn(t *testing.T) {
	p := newPolicy(t, &fakeSource{}, DefaultConfig())
	set := answers.AnswerSet{
		"sales_baseline": answers.Number(1000000),
		"sales_target":   answers.Number(9000000),
	}

	res := p.EvaluateTurn(context.Background(), "business_category", answers.String("retail"), set, NewSession())

	assert.Equal(t, ActionFlagCritical, res.Action)
	assert.Contains(t, res.Session.PendingNodes, "retail_best_sellers")
}

func TestGoBack(t *testing.T) {
	src := &fakeSource{result: someQuestion}
	p := newPolicy(t, src, DefaultConfig())

	_, _, err := p.GoBack(answers.AnswerSet{}, NewSession())
	assert.True(t, errors.Is(err, ErrNothingToUndo))

	res := p.EvaluateTurn(context.Background(), "business_description", answers.String("A cafe."), answers.AnswerSet{}, NewSession())
	require.Equal(t, ActionDeepDive, res.Action)

	t.Run("parent", func(t *testing.T) {
		set, session, err := p.GoBack(res.Answers, res.Session)
		require.NoError(t, err)
		assert.False(t, set.Has("business_description"))
		assert.Empty(t, session.PendingDeepDive)
		assert.Empty(t, session.DeepDives)
		assert.Zero(t, session.DeepDiveCountByParent["business_description"])
		assert.Equal(t, "company_name", p.ResolveNext(set, session).ID)
	})

	t.Run("deep-dive", func(t *testing.T) {
		src.result = followup.None()
		next := p.EvaluateTurn(context.Background(), "business_description__dd1", answers.String("We roast beans."), res.Answers, res.Session)
		require.Equal(t, ActionProceed, next.Action)

		set, session, err := p.GoBack(next.Answers, next.Session)
		require.NoError(t, err)
		assert.False(t, set.Has("business_description__dd1"))
		assert.Equal(t, "business_description__dd1", session.PendingDeepDive)
		assert.Equal(t, 1, session.DeepDiveCountByParent["business_description"])
		assert.Equal(t, "business_description__dd1", p.ResolveNext(set, session).ID)
	})
}

func TestTerminalWithoutSubmittableScore(t *testing.T) {
	c, err := catalog.Parse([]byte(`
questions:
  - id: only
    priority: 1
    type: text
    required: true
    text: Only question
`), catalog.NewRegistry())
	require.NoError(t, err)
	p := New(c, rubric.Default(), nil, nil, DefaultConfig())

	res := p.EvaluateTurn(context.Background(), "only", answers.String("done"), answers.AnswerSet{}, NewSession())

	assert.Equal(t, ActionProceed, res.Action)
	assert.Nil(t, res.Data.Question)
	assert.True(t, res.Data.Complete)
	assert.NotEqual(t, StatusComplete, res.Session.Status)

	status := p.Status(res.Answers, res.Session)
	assert.True(t, status.Complete)
	assert.False(t, status.Submittable)
}

func answerFor(q *graph.Question) answers.Value {
	const text = "We serve local families with quality food and friendly service every day."
	switch q.Type {
	case graph.TypeNumber:
		if q.ID == "sales_target" || q.ID == "sales_baseline" {
			return answers.Number(10000000)
		}
		return answers.Number(3)
	case graph.TypeSelect:
		return answers.String(q.Options[0].Value)
	case graph.TypeMultiSelect:
		return answers.Strings(q.Options[0].Value)
	case graph.TypeExpenses:
		return answers.List(answers.Object(map[string]answers.Value{
			"label":    answers.String("Roasting machine"),
			"category": answers.String("equipment"),
			"amount":   answers.Number(1200000),
		}))
	default:
		return answers.String(text)
	}
}

// interview answers every question the policy asks with answerFor
func interview(t *testing.T, p *Policy) (answers.AnswerSet, AgentSession, TurnResult, map[string]bool) {
	t.Helper()
	set := answers.AnswerSet{}
	session := NewSession()

	var last TurnResult
	asked := map[string]bool{}
	for i := 0; i < 100; i++ {
		q := p.ResolveNext(set, session)
		if q == nil {
			break
		}
		require.False(t, asked[q.ID], "question %s asked twice", q.ID)
		asked[q.ID] = true

		last = p.EvaluateTurn(context.Background(), q.ID, answerFor(q), set, session)
		set, session = last.Answers, last.Session
	}
	return set, session, last, asked
}

func TestFullInterviewCompletes(t *testing.T) {
	p := newPolicy(t, &fakeSource{result: followup.None()}, DefaultConfig())
	set, session, last, asked := interview(t, p)

	assert.Nil(t, p.ResolveNext(set, session))
	assert.Equal(t, ActionProceed, last.Action)
	assert.True(t, last.Data.Complete)
	assert.Equal(t, StatusComplete, last.Session.Status)
	assert.True(t, asked["category_detail"])
	assert.True(t, asked["efficiency_plan"])
	assert.True(t, asked["staff_plan"])

	status := p.Status(set, session)
	assert.True(t, status.Submittable)
	assert.Equal(t, 100, status.Score.Overall)
	assert.Empty(t, status.BlockingIssues)
	assert.Empty(t, status.PendingRequired)
}

func TestLastAnswerWithSuggestionCompletes(t *testing.T) {
	p := newPolicy(t, &fakeSource{result: followup.None()}, DefaultConfig())
	set, session, _, _ := interview(t, p)
	set = set.Without("competitors")

	res := p.EvaluateTurn(context.Background(), "competitors", answers.String("There are rivals in town."), set, session)

	require.Equal(t, ActionSuggestImprovement, res.Action)
	assert.Contains(t, res.Data.MissingElements, gap.ElementCompetitorCount)
	assert.Nil(t, res.Data.Question)
	assert.True(t, res.Data.Complete)
	assert.Equal(t, StatusComplete, res.Session.Status)
	assert.True(t, p.Status(res.Answers, res.Session).Submittable)
}

func TestSeedQueuesInsertsForPrefilledAnswers(t *testing.T) {
	p := newPolicy(t, &fakeSource{}, DefaultConfig())
	set := answers.AnswerSet{
		"company_name":      answers.String("Hanabi"),
		"business_category": answers.String("restaurant"),
	}

	session := p.Seed(set)

	assert.Equal(t, []string{"business_category", "company_name"}, session.AnswerOrder)
	assert.Equal(t, []string{"category_followup"}, session.FiredInserts)
	assert.Equal(t, "category_detail", p.ResolveNext(set, session).ID)
	assert.Zero(t, session.TurnCount)
}
