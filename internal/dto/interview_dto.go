package dto

import (
	"time"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/graph"
	"grant-assistant-be/pkg/engine/policy"
	"grant-assistant-be/pkg/engine/scoring"
	"grant-assistant-be/pkg/engine/subsidy"

	"github.com/google/uuid"
)

type StartInterviewRequest struct {
	// Prefilled answers, e.g. carried over from a previous application
	Answers map[string]answers.Value `json:"answers"`
}

type StartInterviewResponse struct {
	Id        uuid.UUID       `json:"id"`
	Question  *graph.Question `json:"question"`
	CreatedAt time.Time       `json:"created_at"`
}

type NextQuestionResponse struct {
	Question *graph.Question `json:"question"`
	Complete bool            `json:"complete"`
}

type SubmitAnswerRequest struct {
	InterviewId uuid.UUID     `json:"-"`
	QuestionId  string        `json:"question_id" validate:"required,max=128"`
	Answer      answers.Value `json:"answer"`
}

type TurnResponse struct {
	Action             policy.Action   `json:"action"`
	Message            string          `json:"message"`
	RequiresCorrection bool            `json:"requires_correction"`
	Data               policy.TurnData `json:"data"`
	TurnCount          int             `json:"turn_count"`
}

type GoBackResponse struct {
	RemovedQuestionId string          `json:"removed_question_id"`
	Question          *graph.Question `json:"question"`
}

type ScoreResponse struct {
	scoring.Report
}

type StatusResponse struct {
	policy.StatusReport
}

type ExpenseLine struct {
	Label    string `json:"label"`
	Category string `json:"category" validate:"required"`
	Amount   int64  `json:"amount" validate:"min=0"`
}

type CalculateSubsidyRequest struct {
	Expenses   []ExpenseLine `json:"expenses" validate:"required,min=1,dive"`
	LossMaking bool          `json:"loss_making"`
}

type SubsidyResponse struct {
	subsidy.Breakdown
	Items []subsidy.LineItem `json:"items"`
}

// TurnAuditMessage is published in-process after every evaluated turn
type TurnAuditMessage struct {
	InterviewId     uuid.UUID `json:"interview_id"`
	QuestionId      string    `json:"question_id"`
	Action          string    `json:"action"`
	Score           int       `json:"score"`
	TurnCount       int       `json:"turn_count"`
	IssueTypes      []string  `json:"issue_types,omitempty"`
	MissingElements []string  `json:"missing_elements,omitempty"`
	GuardExceeded   bool      `json:"guard_exceeded"`
	OccurredAt      time.Time `json:"occurred_at"`
}
