package entity

import (
	"time"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/policy"

	"github.com/google/uuid"
)

type Interview struct {
	Id          uuid.UUID
	Answers     answers.AnswerSet
	Session     policy.AgentSession
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	CompletedAt *time.Time
}

// Clone copies the interview so stored values never alias caller state
func (i *Interview) Clone() *Interview {
	out := *i
	out.Answers = i.Answers.Clone()
	out.Session = i.Session.Clone()
	if i.UpdatedAt != nil {
		t := *i.UpdatedAt
		out.UpdatedAt = &t
	}
	if i.CompletedAt != nil {
		t := *i.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
