package service

import (
	"context"
	"fmt"

	"studyo/internal/modules/subject/domain"
	subjectout "studyo/internal/modules/subject/port/out"
	apperrors "studyo/internal/platform/errors"
)

type SubjectService struct {
	gateway subjectout.SubjectGateway
}

func NewSubjectService(gateway subjectout.SubjectGateway) *SubjectService {
	return &SubjectService{gateway: gateway}
}

func (s *SubjectService) List(ctx context.Context) ([]domain.Subject, error) {
	if s.gateway == nil {
		return nil, apperrors.ErrNotConfigured
	}
	subjects, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	domain.SortByPriority(subjects)
	return subjects, nil
}

func (s *SubjectService) Get(ctx context.Context, id int64) (domain.Subject, error) {
	subjects, err := s.List(ctx)
	if err != nil {
		return domain.Subject{}, err
	}
	for _, subject := range subjects {
		if subject.ID == id {
			return subject, nil
		}
	}
	return domain.Subject{}, fmt.Errorf("subject %d: %w", id, apperrors.ErrNotFound)
}
