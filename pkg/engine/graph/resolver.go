package graph

import (
	"grant-assistant-be/pkg/engine/answers"
)

// Next returns the lowest-priority eligible question rendered against set,
// or nil once no reachable question is left unanswered.
func (g *Graph) Next(set answers.AnswerSet) *Question {
	for _, n := range g.nodes {
		if g.Eligible(n, set) {
			q := g.Resolve(n, set)
			return &q
		}
	}
	return nil
}

// Eligible reports whether n is unanswered, its dependencies are answered and its condition holds
func (g *Graph) Eligible(n QuestionNode, set answers.AnswerSet) bool {
	if set.Has(n.ID) {
		return false
	}
	for _, dep := range n.Dependencies {
		if !set.Has(dep) {
			return false
		}
	}
	return g.ConditionHolds(n.Condition, set)
}

// ConditionHolds evaluates c against set
func (g *Graph) ConditionHolds(c Condition, set answers.AnswerSet) bool {
	switch c.Kind {
	case Always:
		return true
	case ConditionComputed:
		fn, ok := g.registry.conditions[c.Ref]
		return ok && fn(set)
	case ConditionFieldIn:
		return c.matchField(set)
	default:
		return false
	}
}

// Pending lists every reachable unanswered question in ask order
func (g *Graph) Pending(set answers.AnswerSet) []string {
	return g.pending(set, false)
}

// PendingRequired lists reachable required questions that are still unanswered
func (g *Graph) PendingRequired(set answers.AnswerSet) []string {
	return g.pending(set, true)
}

func (g *Graph) pending(set answers.AnswerSet, requiredOnly bool) []string {
	memo := make(map[string]bool, len(g.nodes))
	out := []string{}
	for _, n := range g.nodes {
		if set.Has(n.ID) || (requiredOnly && !n.Required) {
			continue
		}
		if g.reachable(n.ID, set, memo) {
			out = append(out, n.ID)
		}
	}
	return out
}

// reachable: the condition holds and every dependency is reachable. The graph is
// acyclic so the recursion terminates.
func (g *Graph) reachable(id string, set answers.AnswerSet, memo map[string]bool) bool {
	if r, ok := memo[id]; ok {
		return r
	}
	n := g.index[id]
	ok := g.ConditionHolds(n.Condition, set)
	for _, dep := range n.Dependencies {
		if !ok {
			break
		}
		ok = set.Has(dep) || g.reachable(dep, set, memo)
	}
	memo[id] = ok
	return ok
}

// Resolve renders n's dynamic fields against the current snapshot
func (g *Graph) Resolve(n QuestionNode, set answers.AnswerSet) Question {
	_, isInserted := g.inserted[n.ID]
	return Question{
		ID:          n.ID,
		Type:        n.Type,
		Text:        g.resolveText(n.Text, set),
		HelpText:    g.resolveText(n.HelpText, set),
		Placeholder: g.resolveText(n.Placeholder, set),
		Options:     g.resolveOptions(n.Options, set),
		Required:    n.Required,
		Priority:    n.Priority,
		Section:     n.Section,
		Inserted:    isInserted,
	}
}

func (g *Graph) resolveText(r Resolvable[string], set answers.AnswerSet) string {
	switch r.Kind() {
	case LiteralKind:
		return r.LiteralValue()
	case ComputedKind:
		if fn, ok := g.registry.texts[r.Ref()]; ok {
			return fn(set)
		}
		return ""
	case Unset:
		return ""
	default:
		return ""
	}
}

func (g *Graph) resolveOptions(r Resolvable[[]Option], set answers.AnswerSet) []Option {
	switch r.Kind() {
	case LiteralKind:
		return append([]Option{}, r.LiteralValue()...)
	case ComputedKind:
		if fn, ok := g.registry.options[r.Ref()]; ok {
			return fn(set)
		}
		return nil
	case Unset:
		return nil
	default:
		return nil
	}
}
