package model

import (
	"time"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/policy"
)

// InterviewSchemaVersion is bumped when the stored record shape changes
const InterviewSchemaVersion = 1

// Interview is the stored form of an interview
type Interview struct {
	SchemaVersion int                      `json:"schema_version"`
	Id            string                   `json:"id"`
	Answers       map[string]answers.Value `json:"answers"`
	Session       policy.AgentSession      `json:"session"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     *time.Time               `json:"updated_at,omitempty"`
	CompletedAt   *time.Time               `json:"completed_at,omitempty"`
}
