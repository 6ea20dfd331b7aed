// Package policy runs one orchestration decision per answered question: validation,
// structured inserts, deep-dive follow-ups, gap suggestions and termination.
package policy

import (
	"context"
	"fmt"
	"strings"

	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/catalog"
	"grant-assistant-be/pkg/engine/depth"
	"grant-assistant-be/pkg/engine/followup"
	"grant-assistant-be/pkg/engine/gap"
	"grant-assistant-be/pkg/engine/graph"
	"grant-assistant-be/pkg/engine/rubric"
	"grant-assistant-be/pkg/engine/scoring"
	"grant-assistant-be/pkg/engine/validation"
)

const module = "OrchestrationPolicy"

// Action is the single decision emitted per turn
type Action string

const (
	ActionDeepDive           Action = "deep_dive"
	ActionFlagCritical       Action = "flag_critical_issue"
	ActionFlagHighPriority   Action = "flag_high_priority_issue"
	ActionSuggestImprovement Action = "suggest_improvement"
	ActionProceed            Action = "proceed"
)

// deepDiveDepth is the elaboration level at or above which no follow-up is requested
const deepDiveDepth = 4

type Config struct {
	MaxQuestions           int
	MaxDeepDivePerQuestion int
}

func DefaultConfig() Config {
	return Config{MaxQuestions: 50, MaxDeepDivePerQuestion: 5}
}

// TurnData is the question-shaped payload the UI renders
type TurnData struct {
	Question        *graph.Question    `json:"question,omitempty"`
	Issue           *validation.Issue  `json:"issue,omitempty"`
	Issues          []validation.Issue `json:"issues,omitempty"`
	MissingElements []string           `json:"missing_elements,omitempty"`
	Score           int                `json:"score"`
	Complete        bool               `json:"complete"`
}

// TurnResult is the outcome of EvaluateTurn. Answers and Session are the
// updated values; the inputs are left untouched.
type TurnResult struct {
	Action             Action            `json:"action"`
	Message            string            `json:"message"`
	RequiresCorrection bool              `json:"requires_correction"`
	Data               TurnData          `json:"data"`
	Answers            answers.AnswerSet `json:"-"`
	Session            AgentSession      `json:"-"`
}

// Policy is stateless; all per-interview state lives in AgentSession
type Policy struct {
	graph     *graph.Graph
	scorer    *scoring.Scorer
	depth     *depth.Evaluator
	gaps      *gap.Detector
	validator *validation.Engine
	followups followup.Source
	logger    logger.ILogger
	cfg       Config
	submitMin int
}

func New(c *catalog.Catalog, r *rubric.Rubric, followups followup.Source, log logger.ILogger, cfg Config) *Policy {
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultConfig().MaxQuestions
	}
	if cfg.MaxDeepDivePerQuestion < 0 {
		cfg.MaxDeepDivePerQuestion = DefaultConfig().MaxDeepDivePerQuestion
	}
	if followups == nil {
		followups = followup.NewGenerator(nil, 0)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Policy{
		graph:     c.Graph,
		scorer:    scoring.NewScorer(r),
		depth:     depth.NewEvaluator(r.Depth),
		gaps:      gap.NewDetector(r, c.GapCategories),
		validator: validation.NewEngine(r),
		followups: followups,
		logger:    log,
		cfg:       cfg,
		submitMin: r.Thresholds.SubmitOverall,
	}
}

func (p *Policy) Graph() *graph.Graph           { return p.graph }
func (p *Policy) Scorer() *scoring.Scorer       { return p.scorer }
func (p *Policy) Validator() *validation.Engine { return p.validator }
func (p *Policy) Config() Config                { return p.cfg }

// Accepts reports whether questionID can be answered in this session
func (p *Policy) Accepts(questionID string, session AgentSession) bool {
	if _, ok := p.graph.Node(questionID); ok {
		return true
	}
	_, ok := session.DeepDives[questionID]
	return ok
}

// EvaluateTurn records one answer and decides the next action. Steps run in a
// fixed order and the first that applies wins.
func (p *Policy) EvaluateTurn(ctx context.Context, questionID string, answer answers.Value, set answers.AnswerSet, session AgentSession) TurnResult {
	s := session.Clone()
	set = set.With(questionID, answer)
	s.recordAnswer(questionID)
	s.Status = StatusAnalyzing

	// Inserted follow-on nodes are bookkeeping; queueing them every turn keeps
	// them from being lost when an earlier step wins.
	p.queueInserts(set, &s)

	if s.TurnCount >= p.cfg.MaxQuestions {
		s.TurnCount++
		if !s.GuardExceeded {
			p.logger.Info(module, "turn guard reached, forcing proceed", map[string]interface{}{
				"turn_count": s.TurnCount, "max_questions": p.cfg.MaxQuestions,
			})
		}
		s.GuardExceeded = true
		return p.proceed(set, s, p.scorer.Score(set))
	}
	s.TurnCount++

	issues := p.validator.Validate(set)
	s.noteIssues(issues)
	report := p.scorer.Score(set)

	if critical, ok := validation.First(issues, validation.SeverityCritical); ok {
		s.Status = StatusValidating
		return TurnResult{
			Action:             ActionFlagCritical,
			Message:            critical.Message,
			RequiresCorrection: true,
			Data: TurnData{
				Question: p.questionFor(critical.Field, set),
				Issue:    &critical,
				Issues:   issues,
				Score:    report.Overall,
			},
			Answers: set,
			Session: s,
		}
	}

	parent := ParentOf(questionID)
	node, known := p.graph.Node(parent)
	text := p.joinedText(parent, set)

	if known && elaborates(node) && strings.TrimSpace(answer.Text()) != "" {
		if dd, ok := p.tryDeepDive(ctx, node, text, set, &s); ok {
			s.Status = StatusDeepDiving
			return TurnResult{
				Action:  ActionDeepDive,
				Message: "Could you tell us a little more?",
				Data: TurnData{
					Question: p.deepDiveQuestion(dd),
					Score:    report.Overall,
				},
				Answers: set,
				Session: s,
			}
		}
	} else if IsDeepDiveID(questionID) && strings.TrimSpace(answer.Text()) == "" {
		// A skipped follow-up ends deep-dives for its parent
		s.DeepDiveCountByParent[parent] = p.cfg.MaxDeepDivePerQuestion
	}

	if known && strings.TrimSpace(text) != "" {
		if missing := p.gaps.MissingElements(parent, text, set); len(missing) > 0 {
			s.Status = StatusSuggesting
			res := TurnResult{
				Action:  ActionSuggestImprovement,
				Message: "Your answer could be stronger. Consider adding: " + strings.Join(describe(missing), ", ") + ".",
				Data: TurnData{
					Question:        p.ResolveNext(set, s),
					MissingElements: missing,
					Score:           report.Overall,
				},
				Answers: set,
				Session: s,
			}
			p.finish(&res, report, issues)
			return res
		}
	}

	if high, ok := validation.First(issues, validation.SeverityHigh); ok {
		s.Status = StatusValidating
		res := TurnResult{
			Action:  ActionFlagHighPriority,
			Message: high.Message,
			Data: TurnData{
				Question: p.ResolveNext(set, s),
				Issue:    &high,
				Issues:   issues,
				Score:    report.Overall,
			},
			Answers: set,
			Session: s,
		}
		p.finish(&res, report, issues)
		return res
	}

	return p.proceed(set, s, report)
}

func (p *Policy) proceed(set answers.AnswerSet, s AgentSession, report scoring.Report) TurnResult {
	next := p.ResolveNext(set, s)
	res := TurnResult{
		Action:  ActionProceed,
		Message: "Thank you.",
		Data: TurnData{
			Question: next,
			Score:    report.Overall,
		},
		Answers: set,
		Session: s,
	}

	if next == nil {
		p.finish(&res, report, p.validator.Validate(set))
		if res.Session.Status == StatusComplete {
			res.Message = "All questions are answered and the application is ready to submit."
		} else {
			res.Message = "All questions are answered, but the application is not ready to submit yet."
		}
	}
	return res
}

// finish marks the interview complete once nothing is left to ask and the
// answers are submittable, whichever action the turn produced.
func (p *Policy) finish(res *TurnResult, report scoring.Report, issues []validation.Issue) {
	if res.Data.Question != nil {
		return
	}
	res.Data.Complete = true
	if p.submittable(report, issues) {
		res.Session.Status = StatusComplete
	}
}

func (p *Policy) tryDeepDive(ctx context.Context, node graph.QuestionNode, text string, set answers.AnswerSet, s *AgentSession) (DeepDive, bool) {
	level := p.depth.LevelFor(string(node.Type), text)
	if level >= deepDiveDepth {
		return DeepDive{}, false
	}

	count := s.DeepDiveCountByParent[node.ID]
	if count >= p.cfg.MaxDeepDivePerQuestion {
		if !s.GuardExceeded {
			p.logger.Info(module, "deep-dive guard reached", map[string]interface{}{
				"question_id": node.ID, "count": count,
			})
		}
		s.GuardExceeded = true
		return DeepDive{}, false
	}

	resolved := p.graph.Resolve(node, set)
	res := p.followups.Generate(ctx, followup.Request{
		ParentQuestionID:   node.ID,
		ParentQuestionText: resolved.Text,
		UserAnswer:         text,
		MissingElements:    p.gaps.MissingElements(node.ID, text, set),
		Context:            set.Snapshot(),
	})

	switch res.Outcome {
	case followup.OutcomeSome:
		count++
		dd := DeepDive{ID: DeepDiveID(node.ID, count), ParentID: node.ID, Question: res.Question}
		s.DeepDiveCountByParent[node.ID] = count
		s.DeepDives[dd.ID] = dd
		s.PendingDeepDive = dd.ID
		return dd, true
	case followup.OutcomeFailure:
		p.logger.Warn(module, "deep-dive generation failed, continuing without it", map[string]interface{}{
			"question_id": node.ID, "depth": level, "error": res.Err.Error(),
		})
		return DeepDive{}, false
	case followup.OutcomeNone:
		return DeepDive{}, false
	default:
		return DeepDive{}, false
	}
}

// joinedText is the parent answer followed by its deep-dive answers
func (p *Policy) joinedText(parent string, set answers.AnswerSet) string {
	parts := []string{set.Text(parent)}
	for i := 1; i <= p.cfg.MaxDeepDivePerQuestion; i++ {
		id := DeepDiveID(parent, i)
		if !set.Has(id) {
			continue
		}
		if t := strings.TrimSpace(set.Text(id)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func (p *Policy) queueInserts(set answers.AnswerSet, s *AgentSession) {
	for _, rule := range p.graph.Inserts() {
		if s.fired(rule.ID) || !set.Has(rule.Trigger) {
			continue
		}
		for _, n := range rule.Expand(set) {
			if !set.Has(n.ID) {
				s.PendingNodes = append(remove(s.PendingNodes, n.ID), n.ID)
			}
		}
		s.FiredInserts = append(s.FiredInserts, rule.ID)
	}
}

// ResolveNext returns the question to ask: a pending deep-dive first, then
// queued inserted nodes, then the static graph. Nil means nothing is left.
func (p *Policy) ResolveNext(set answers.AnswerSet, session AgentSession) *graph.Question {
	if id := session.PendingDeepDive; id != "" && !set.Has(id) {
		if dd, ok := session.DeepDives[id]; ok {
			return p.deepDiveQuestion(dd)
		}
	}

	if pending := p.pendingInserted(set, session); len(pending) > 0 {
		q := p.graph.Resolve(pending[0], set)
		return &q
	}

	return p.graph.Next(set)
}

// pendingInserted lists queued inserted nodes that are still askable. A node
// whose trigger answer was withdrawn is skipped.
func (p *Policy) pendingInserted(set answers.AnswerSet, session AgentSession) []graph.QuestionNode {
	var out []graph.QuestionNode
	for _, id := range session.PendingNodes {
		if set.Has(id) {
			continue
		}
		n, ok := p.graph.Node(id)
		if !ok || !p.graph.ConditionHolds(n.Condition, set) {
			continue
		}
		if rule, ok := p.graph.InsertedBy(id); ok && !set.Has(rule.Trigger) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (p *Policy) deepDiveQuestion(dd DeepDive) *graph.Question {
	return &graph.Question{
		ID:          dd.ID,
		Type:        graph.TypeTextarea,
		Text:        dd.Question.Text,
		Placeholder: dd.Question.Placeholder,
		ParentID:    dd.ParentID,
	}
}

// elaborates reports whether answers to n are worth a deep-dive. Single-line
// fields such as names are free text but carry nothing to elaborate.
func elaborates(n graph.QuestionNode) bool {
	if !depth.IsFreeText(string(n.Type)) {
		return false
	}
	return n.Type == graph.TypeTextarea || n.GapCategory != ""
}

// questionFor re-renders the question a correction applies to
func (p *Policy) questionFor(field string, set answers.AnswerSet) *graph.Question {
	n, ok := p.graph.Node(field)
	if !ok {
		return nil
	}
	q := p.graph.Resolve(n, set)
	return &q
}

func (p *Policy) submittable(report scoring.Report, issues []validation.Issue) bool {
	return report.Overall >= p.submitMin && len(validation.Blocking(issues)) == 0
}

var elementDescriptions = map[string]string{
	gap.ElementAgeBracket:        "an age group",
	gap.ElementGeography:         "where your customers live or work",
	gap.ElementAudienceAttribute: "what kind of people they are",
	gap.ElementNumericEvidence:   "concrete figures",
	gap.ElementJustification:     "the reasoning behind the figures",
	gap.ElementGoalNonRealistic:  "a more realistic growth step",
	gap.ElementConcreteAction:    "the concrete actions you will take",
	gap.ElementOutcomeLinkage:    "the result you expect",
	gap.ElementDigitalChannel:    "an online channel",
	gap.ElementCompetitorCount:   "how many competitors there are",
	gap.ElementDifferentiation:   "how you differ from them",
}

func describe(elements []string) []string {
	out := make([]string, 0, len(elements))
	for _, e := range elements {
		if d, ok := elementDescriptions[e]; ok {
			out = append(out, d)
		} else {
			out = append(out, e)
		}
	}
	return out
}

// String is used in log lines
func (r TurnResult) String() string {
	return fmt.Sprintf("%s (score %d)", r.Action, r.Data.Score)
}
