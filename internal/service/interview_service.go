// FILE: internal/service/interview_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/repository/contract"
	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/policy"
	"grant-assistant-be/pkg/engine/subsidy"
	"grant-assistant-be/pkg/engine/validation"
	"grant-assistant-be/pkg/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceModule = "InterviewService"
	tracerName    = "grant-assistant/interview"
)

var (
	ErrInterviewNotFound = errors.New("interview not found")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrNothingToUndo     = policy.ErrNothingToUndo
)

// EventPublisher sends domain events to the downstream bus
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IInterviewService interface {
	Start(ctx context.Context, req *dto.StartInterviewRequest) (*dto.StartInterviewResponse, error)
	Next(ctx context.Context, id uuid.UUID) (*dto.NextQuestionResponse, error)
	SubmitAnswer(ctx context.Context, req *dto.SubmitAnswerRequest) (*dto.TurnResponse, error)
	GoBack(ctx context.Context, id uuid.UUID) (*dto.GoBackResponse, error)
	Score(ctx context.Context, id uuid.UUID) (*dto.ScoreResponse, error)
	Status(ctx context.Context, id uuid.UUID) (*dto.StatusResponse, error)
	Subsidy(ctx context.Context, id uuid.UUID) (*dto.SubsidyResponse, error)
	CalculateSubsidy(ctx context.Context, req *dto.CalculateSubsidyRequest) (*dto.SubsidyResponse, error)
}

type interviewService struct {
	repo       contract.InterviewRepository
	policy     *policy.Policy
	calculator *subsidy.Calculator
	audit      IPublisherService
	events     EventPublisher
	logger     logger.ILogger
	locks      stripedLock
}

// NewInterviewService wires the engine to storage. audit and events may be nil.
func NewInterviewService(
	repo contract.InterviewRepository,
	p *policy.Policy,
	calculator *subsidy.Calculator,
	audit IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IInterviewService {
	return &interviewService{
		repo:       repo,
		policy:     p,
		calculator: calculator,
		audit:      audit,
		events:     eventPublisher,
		logger:     log,
	}
}

func (s *interviewService) tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func (s *interviewService) load(ctx context.Context, id uuid.UUID) (*entity.Interview, error) {
	iv, err := s.repo.FindOne(ctx, id)
	if errors.Is(err, contract.ErrNotFound) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load interview: %w", err)
	}
	return iv, nil
}

func (s *interviewService) Start(ctx context.Context, req *dto.StartInterviewRequest) (*dto.StartInterviewResponse, error) {
	set := answers.AnswerSet{}
	if req != nil {
		for id, v := range req.Answers {
			if _, ok := s.policy.Graph().Node(id); !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
			}
			set[id] = v
		}
	}

	iv := &entity.Interview{
		Id:        uuid.New(),
		Answers:   set,
		Session:   s.policy.Seed(set),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, iv); err != nil {
		return nil, err
	}
	interviewsStarted.Inc()

	s.logger.Info(serviceModule, "Interview started", map[string]interface{}{
		"interview_id": iv.Id.String(),
		"prefilled":    len(set),
	})

	return &dto.StartInterviewResponse{
		Id:        iv.Id,
		Question:  s.policy.ResolveNext(iv.Answers, iv.Session),
		CreatedAt: iv.CreatedAt,
	}, nil
}

func (s *interviewService) Next(ctx context.Context, id uuid.UUID) (*dto.NextQuestionResponse, error) {
	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	q := s.policy.ResolveNext(iv.Answers, iv.Session)
	return &dto.NextQuestionResponse{Question: q, Complete: q == nil}, nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, req *dto.SubmitAnswerRequest) (*dto.TurnResponse, error) {
	ctx, span := s.tracer().Start(ctx, "service.InterviewService.SubmitAnswer",
		trace.WithAttributes(
			attribute.String("interview_id", req.InterviewId.String()),
			attribute.String("question_id", req.QuestionId),
		),
	)
	defer span.End()

	// Turns of one interview are evaluated one at a time
	unlock := s.locks.lock(req.InterviewId)
	defer unlock()

	iv, err := s.load(ctx, req.InterviewId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !s.policy.Accepts(req.QuestionId, iv.Session) {
		err := fmt.Errorf("%w: %s", ErrUnknownQuestion, req.QuestionId)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	seen := make(map[string]bool, len(iv.Session.IssuesSeen))
	for _, issue := range iv.Session.IssuesSeen {
		seen[issue.Key()] = true
	}

	start := time.Now()
	res := s.policy.EvaluateTurn(ctx, req.QuestionId, req.Answer, iv.Answers, iv.Session)
	turnDuration.Observe(time.Since(start).Seconds())
	turnsTotal.WithLabelValues(string(res.Action)).Inc()
	span.SetAttributes(
		attribute.String("action", string(res.Action)),
		attribute.Int("score", res.Data.Score),
		attribute.Int("turn_count", res.Session.TurnCount),
	)

	now := time.Now()
	iv.Answers = res.Answers
	iv.Session = res.Session
	iv.UpdatedAt = &now

	completedNow := res.Session.Status == policy.StatusComplete && iv.CompletedAt == nil
	if completedNow {
		iv.CompletedAt = &now
	}

	if err := s.repo.Save(ctx, iv); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if res.Action == policy.ActionFlagCritical && res.Data.Issue != nil && !seen[res.Data.Issue.Key()] {
		issue := res.Data.Issue
		s.publish(ctx, events.NewInterviewCriticalIssue(iv.Id.String(), string(issue.Type), issue.Field, issue.Message))
	}
	if completedNow {
		interviewsCompleted.Inc()
		s.publish(ctx, events.NewInterviewCompleted(iv.Id.String(), res.Data.Score, answerPayload(iv.Answers)))
		s.logger.Info(serviceModule, "Interview completed", map[string]interface{}{
			"interview_id": iv.Id.String(),
			"score":        res.Data.Score,
			"turn_count":   res.Session.TurnCount,
		})
	}
	s.publishAudit(ctx, iv.Id, req.QuestionId, res)

	return &dto.TurnResponse{
		Action:             res.Action,
		Message:            res.Message,
		RequiresCorrection: res.RequiresCorrection,
		Data:               res.Data,
		TurnCount:          res.Session.TurnCount,
	}, nil
}

func (s *interviewService) GoBack(ctx context.Context, id uuid.UUID) (*dto.GoBackResponse, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	set, session, err := s.policy.GoBack(iv.Answers, iv.Session)
	if err != nil {
		return nil, err
	}

	removed := ""
	for _, key := range iv.Answers.Keys() {
		if !set.Has(key) {
			removed = key
			break
		}
	}

	now := time.Now()
	iv.Answers = set
	iv.Session = session
	iv.UpdatedAt = &now
	iv.CompletedAt = nil
	if err := s.repo.Save(ctx, iv); err != nil {
		return nil, err
	}

	return &dto.GoBackResponse{
		RemovedQuestionId: removed,
		Question:          s.policy.ResolveNext(set, session),
	}, nil
}

func (s *interviewService) Score(ctx context.Context, id uuid.UUID) (*dto.ScoreResponse, error) {
	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ScoreResponse{Report: s.policy.Scorer().Score(iv.Answers)}, nil
}

func (s *interviewService) Status(ctx context.Context, id uuid.UUID) (*dto.StatusResponse, error) {
	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{StatusReport: s.policy.Status(iv.Answers, iv.Session)}, nil
}

func (s *interviewService) Subsidy(ctx context.Context, id uuid.UUID) (*dto.SubsidyResponse, error) {
	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	items := s.calculator.ParseExpenses(iv.Answers.Get(s.calculator.ExpensesField()))
	if items == nil {
		items = []subsidy.LineItem{}
	}
	return &dto.SubsidyResponse{
		Breakdown: s.calculator.FromAnswers(iv.Answers),
		Items:     items,
	}, nil
}

func (s *interviewService) CalculateSubsidy(_ context.Context, req *dto.CalculateSubsidyRequest) (*dto.SubsidyResponse, error) {
	items := make([]subsidy.LineItem, 0, len(req.Expenses))
	for _, e := range req.Expenses {
		items = append(items, subsidy.LineItem{Label: e.Label, Category: e.Category, Amount: e.Amount})
	}
	return &dto.SubsidyResponse{
		Breakdown: s.calculator.Calculate(s.calculator.Aggregate(items, req.LossMaking)),
		Items:     items,
	}, nil
}

func (s *interviewService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn(serviceModule, "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}

func (s *interviewService) publishAudit(ctx context.Context, id uuid.UUID, questionID string, res policy.TurnResult) {
	if s.audit == nil {
		return
	}

	msg := dto.TurnAuditMessage{
		InterviewId:     id,
		QuestionId:      questionID,
		Action:          string(res.Action),
		Score:           res.Data.Score,
		TurnCount:       res.Session.TurnCount,
		IssueTypes:      issueTypes(res.Data.Issues),
		MissingElements: res.Data.MissingElements,
		GuardExceeded:   res.Session.GuardExceeded,
		OccurredAt:      time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err == nil {
		err = s.audit.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn(serviceModule, "Failed to publish turn audit", map[string]interface{}{
			"interview_id": id.String(),
			"error":        err.Error(),
		})
	}
}

func issueTypes(issues []validation.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, string(i.Type))
	}
	return out
}

func answerPayload(set answers.AnswerSet) map[string]interface{} {
	out := make(map[string]interface{}, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

// stripedLock serializes work per interview id with a fixed number of mutexes
type stripedLock struct {
	stripes [64]sync.Mutex
}

func (l *stripedLock) lock(id uuid.UUID) func() {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}
