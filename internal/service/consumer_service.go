// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes every turn audit message to the audit log
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	auditLog   logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	auditLog logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		auditLog:   auditLog,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.TurnAuditMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.auditLog.Error("TurnAudit", "Failed to unmarshal turn audit message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.auditLog.Info("TurnAudit", "Turn evaluated", map[string]interface{}{
		"interview_id":     payload.InterviewId.String(),
		"question_id":      payload.QuestionId,
		"action":           payload.Action,
		"score":            payload.Score,
		"turn_count":       payload.TurnCount,
		"issue_types":      payload.IssueTypes,
		"missing_elements": payload.MissingElements,
		"guard_exceeded":   payload.GuardExceeded,
		"occurred_at":      payload.OccurredAt,
	})
	msg.Ack()
}
