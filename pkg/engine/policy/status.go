package policy

import (
	"errors"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/scoring"
	"grant-assistant-be/pkg/engine/validation"
)

var ErrNothingToUndo = errors.New("nothing to undo")

// StatusReport is the submittability view of an interview
type StatusReport struct {
	Complete        bool               `json:"complete"`
	Submittable     bool               `json:"submittable"`
	Score           scoring.Report     `json:"score"`
	BlockingIssues  []validation.Issue `json:"blocking_issues"`
	Issues          []validation.Issue `json:"issues"`
	PendingRequired []string           `json:"pending_required"`
	NextQuestionID  string             `json:"next_question_id,omitempty"`
	TurnCount       int                `json:"turn_count"`
	GuardExceeded   bool               `json:"guard_exceeded"`
}

// Status scores the current answers without recording a turn
func (p *Policy) Status(set answers.AnswerSet, session AgentSession) StatusReport {
	report := p.scorer.Score(set)
	issues := p.validator.Validate(set)
	blocking := validation.Blocking(issues)
	next := p.ResolveNext(set, session)

	out := StatusReport{
		Complete:        next == nil,
		Score:           report,
		BlockingIssues:  blocking,
		Issues:          issues,
		PendingRequired: p.pendingRequired(set, session),
		TurnCount:       session.TurnCount,
		GuardExceeded:   session.GuardExceeded,
	}
	out.Submittable = out.Complete && p.submittable(report, issues)
	if next != nil {
		out.NextQuestionID = next.ID
	}
	return out
}

// pendingRequired adds queued required inserted questions to the static ones
func (p *Policy) pendingRequired(set answers.AnswerSet, session AgentSession) []string {
	out := p.graph.PendingRequired(set)
	seen := make(map[string]bool, len(out))
	for _, id := range out {
		seen[id] = true
	}
	for _, n := range p.pendingInserted(set, session) {
		if n.Required && !seen[n.ID] {
			out = append(out, n.ID)
			seen[n.ID] = true
		}
	}
	return out
}

// GoBack removes the most recently answered key and resets the deep-dive
// bookkeeping attached to it.
func (p *Policy) GoBack(set answers.AnswerSet, session AgentSession) (answers.AnswerSet, AgentSession, error) {
	s := session.Clone()

	var last string
	for len(s.AnswerOrder) > 0 {
		last = s.AnswerOrder[len(s.AnswerOrder)-1]
		s.AnswerOrder = s.AnswerOrder[:len(s.AnswerOrder)-1]
		if set.Has(last) {
			break
		}
		last = ""
	}
	if last == "" {
		return set, session, ErrNothingToUndo
	}

	set = set.Without(last)
	s.Status = StatusAnalyzing

	if IsDeepDiveID(last) {
		// The follow-up is asked again
		s.PendingDeepDive = last
		return set, s, nil
	}

	p.withdrawInserts(last, &s)

	if s.PendingDeepDive != "" && ParentOf(s.PendingDeepDive) == last {
		s.PendingDeepDive = ""
	}
	// Answered follow-ups of a re-answered parent keep their numbering
	kept := 0
	for id, dd := range s.DeepDives {
		if dd.ParentID != last {
			continue
		}
		if set.Has(id) {
			kept++
		} else {
			delete(s.DeepDives, id)
		}
	}
	if kept == 0 {
		delete(s.DeepDiveCountByParent, last)
	} else {
		s.DeepDiveCountByParent[last] = kept
	}
	return set, s, nil
}

// withdrawInserts un-fires the rules keyed on a removed answer so that a new
// answer expands them again, possibly into a different variant.
func (p *Policy) withdrawInserts(removed string, s *AgentSession) {
	for _, rule := range p.graph.Inserts() {
		if rule.Trigger != removed && rule.VariantField != removed {
			continue
		}
		for _, id := range rule.NodeIDs() {
			s.PendingNodes = remove(s.PendingNodes, id)
		}
		s.FiredInserts = remove(s.FiredInserts, rule.ID)
	}
}

// Seed builds the session for an interview started with prefilled answers
func (p *Policy) Seed(set answers.AnswerSet) AgentSession {
	s := NewSession()
	for _, id := range set.Keys() {
		s.recordAnswer(id)
	}
	p.queueInserts(set, &s)
	return s
}
