package mapper

import (
	"fmt"

	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/model"
	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/policy"

	"github.com/google/uuid"
)

type InterviewMapper struct{}

func NewInterviewMapper() *InterviewMapper {
	return &InterviewMapper{}
}

func (m *InterviewMapper) ToModel(e *entity.Interview) *model.Interview {
	if e == nil {
		return nil
	}
	return &model.Interview{
		SchemaVersion: model.InterviewSchemaVersion,
		Id:            e.Id.String(),
		Answers:       e.Answers,
		Session:       e.Session,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		CompletedAt:   e.CompletedAt,
	}
}

func (m *InterviewMapper) ToEntity(mdl *model.Interview) (*entity.Interview, error) {
	if mdl == nil {
		return nil, nil
	}
	if mdl.SchemaVersion != model.InterviewSchemaVersion {
		return nil, fmt.Errorf("unsupported interview schema version %d", mdl.SchemaVersion)
	}
	id, err := uuid.Parse(mdl.Id)
	if err != nil {
		return nil, fmt.Errorf("invalid interview id %q: %w", mdl.Id, err)
	}

	set := answers.AnswerSet(mdl.Answers)
	if set == nil {
		set = answers.AnswerSet{}
	}
	session := mdl.Session
	if session.DeepDiveCountByParent == nil || session.DeepDives == nil {
		fresh := policy.NewSession()
		if session.DeepDiveCountByParent == nil {
			session.DeepDiveCountByParent = fresh.DeepDiveCountByParent
		}
		if session.DeepDives == nil {
			session.DeepDives = fresh.DeepDives
		}
	}

	return &entity.Interview{
		Id:          id,
		Answers:     set,
		Session:     session,
		CreatedAt:   mdl.CreatedAt,
		UpdatedAt:   mdl.UpdatedAt,
		CompletedAt: mdl.CompletedAt,
	}, nil
}
