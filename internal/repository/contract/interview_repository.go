package contract

import (
	"context"
	"errors"

	"grant-assistant-be/internal/entity"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// InterviewRepository stores in-progress interviews. FindOne returns ErrNotFound
// for unknown or expired ids.
type InterviewRepository interface {
	Save(ctx context.Context, interview *entity.Interview) error
	FindOne(ctx context.Context, id uuid.UUID) (*entity.Interview, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
