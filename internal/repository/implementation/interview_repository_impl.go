package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/mapper"
	"grant-assistant-be/internal/model"
	"grant-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const interviewKeyPrefix = "interview:"

// InterviewRepositoryImpl shares interviews between instances through Redis
type InterviewRepositoryImpl struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	mapper *mapper.InterviewMapper
}

func NewInterviewRepository(rdb redis.UniversalClient, ttl time.Duration) contract.InterviewRepository {
	return &InterviewRepositoryImpl{
		rdb:    rdb,
		ttl:    ttl,
		mapper: mapper.NewInterviewMapper(),
	}
}

func interviewKey(id uuid.UUID) string {
	return interviewKeyPrefix + id.String()
}

func (r *InterviewRepositoryImpl) encode(interview *entity.Interview) ([]byte, error) {
	data, err := json.Marshal(r.mapper.ToModel(interview))
	if err != nil {
		return nil, fmt.Errorf("encode interview %s: %w", interview.Id, err)
	}
	return data, nil
}

func (r *InterviewRepositoryImpl) decode(data []byte) (*entity.Interview, error) {
	var m model.Interview
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode interview: %w", err)
	}
	return r.mapper.ToEntity(&m)
}

func (r *InterviewRepositoryImpl) Save(ctx context.Context, interview *entity.Interview) error {
	data, err := r.encode(interview)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, interviewKey(interview.Id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save interview %s: %w", interview.Id, err)
	}
	return nil
}

func (r *InterviewRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID) (*entity.Interview, error) {
	data, err := r.rdb.Get(ctx, interviewKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load interview %s: %w", id, err)
	}
	return r.decode(data)
}

func (r *InterviewRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, interviewKey(id)).Err()
}
