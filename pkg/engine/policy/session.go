package policy

import (
	"fmt"
	"strconv"
	"strings"

	"grant-assistant-be/pkg/engine/followup"
	"grant-assistant-be/pkg/engine/validation"
)

// Status is the orchestration state of a session
type Status string

const (
	StatusAnalyzing  Status = "analyzing"
	StatusDeepDiving Status = "deep_diving"
	StatusValidating Status = "validating"
	StatusSuggesting Status = "suggesting"
	StatusComplete   Status = "complete"
)

// DeepDive is a generated follow-up question bound to its parent
type DeepDive struct {
	ID       string            `json:"id"`
	ParentID string            `json:"parent_id"`
	Question followup.Question `json:"question"`
}

// AgentSession holds the per-interview counters. It is a value: every policy
// call takes one and returns the next, never mutating the caller's copy.
type AgentSession struct {
	Status                Status              `json:"status"`
	TurnCount             int                 `json:"turn_count"`
	DeepDiveCountByParent map[string]int      `json:"deep_dive_count_by_parent"`
	IssuesSeen            []validation.Issue  `json:"issues_seen"`
	AnswerOrder           []string            `json:"answer_order"`
	PendingNodes          []string            `json:"pending_nodes"`
	FiredInserts          []string            `json:"fired_inserts"`
	DeepDives             map[string]DeepDive `json:"deep_dives"`
	PendingDeepDive       string              `json:"pending_deep_dive,omitempty"`
	GuardExceeded         bool                `json:"guard_exceeded"`
}

// NewSession returns a fresh session for a new interview
func NewSession() AgentSession {
	return AgentSession{
		Status:                StatusAnalyzing,
		DeepDiveCountByParent: map[string]int{},
		IssuesSeen:            []validation.Issue{},
		AnswerOrder:           []string{},
		PendingNodes:          []string{},
		FiredInserts:          []string{},
		DeepDives:             map[string]DeepDive{},
	}
}

// Clone deep-copies the session
func (s AgentSession) Clone() AgentSession {
	out := s
	out.DeepDiveCountByParent = make(map[string]int, len(s.DeepDiveCountByParent))
	for k, v := range s.DeepDiveCountByParent {
		out.DeepDiveCountByParent[k] = v
	}
	out.DeepDives = make(map[string]DeepDive, len(s.DeepDives))
	for k, v := range s.DeepDives {
		out.DeepDives[k] = v
	}
	out.IssuesSeen = append([]validation.Issue{}, s.IssuesSeen...)
	out.AnswerOrder = append([]string{}, s.AnswerOrder...)
	out.PendingNodes = append([]string{}, s.PendingNodes...)
	out.FiredInserts = append([]string{}, s.FiredInserts...)
	return out
}

func (s *AgentSession) recordAnswer(id string) {
	s.AnswerOrder = remove(s.AnswerOrder, id)
	s.AnswerOrder = append(s.AnswerOrder, id)
	if s.PendingDeepDive == id {
		s.PendingDeepDive = ""
	}
}

func (s *AgentSession) noteIssues(issues []validation.Issue) {
	seen := make(map[string]bool, len(s.IssuesSeen))
	for _, i := range s.IssuesSeen {
		seen[i.Key()] = true
	}
	for _, i := range issues {
		if !seen[i.Key()] {
			s.IssuesSeen = append(s.IssuesSeen, i)
			seen[i.Key()] = true
		}
	}
}

func (s *AgentSession) fired(ruleID string) bool {
	for _, id := range s.FiredInserts {
		if id == ruleID {
			return true
		}
	}
	return false
}

const deepDiveSeparator = "__dd"

// DeepDiveID names the n-th follow-up answer of parent
func DeepDiveID(parent string, n int) string {
	return fmt.Sprintf("%s%s%d", parent, deepDiveSeparator, n)
}

// ParentOf strips a deep-dive suffix; other ids are returned unchanged
func ParentOf(id string) string {
	idx := strings.LastIndex(id, deepDiveSeparator)
	if idx <= 0 {
		return id
	}
	if _, err := strconv.Atoi(id[idx+len(deepDiveSeparator):]); err != nil {
		return id
	}
	return id[:idx]
}

// IsDeepDiveID reports whether id is a deep-dive answer key
func IsDeepDiveID(id string) bool {
	return ParentOf(id) != id
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
