package events

import "time"

const (
	InterviewCompleted     = "INTERVIEW_COMPLETED"
	InterviewCriticalIssue = "INTERVIEW_CRITICAL_ISSUE"
)

// NewInterviewCompleted hands the finished answer set to document assembly
func NewInterviewCompleted(interviewID string, score int, answers map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type: InterviewCompleted,
		Data: map[string]interface{}{
			"interview_id": interviewID,
			"score":        score,
			"answers":      answers,
		},
		OccurredAt: time.Now(),
	}
}

// NewInterviewCriticalIssue is raised the first time an issue type is flagged critical
func NewInterviewCriticalIssue(interviewID, issueType, field, message string) BaseEvent {
	return BaseEvent{
		Type: InterviewCriticalIssue,
		Data: map[string]interface{}{
			"interview_id": interviewID,
			"issue_type":   issueType,
			"field":        field,
			"message":      message,
		},
		OccurredAt: time.Now(),
	}
}
