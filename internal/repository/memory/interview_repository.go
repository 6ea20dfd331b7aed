package memory

import (
	"context"
	"time"

	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type InterviewRepository struct {
	cache *cache.Cache
}

// NewInterviewRepository keeps interviews for ttl after their last save and
// purges expired items every 10 minutes
func NewInterviewRepository(ttl time.Duration) contract.InterviewRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &InterviewRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *InterviewRepository) Save(_ context.Context, interview *entity.Interview) error {
	r.cache.Set(interview.Id.String(), interview.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *InterviewRepository) FindOne(_ context.Context, id uuid.UUID) (*entity.Interview, error) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.Interview).Clone(), nil
	}
	return nil, contract.ErrNotFound
}

func (r *InterviewRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return nil
}
