package in

import (
	"context"

	"studyo/internal/modules/subject/dto"
)

type Usecase interface {
	ListSubjects(ctx context.Context) ([]dto.SubjectOutput, error)
	GetSubject(ctx context.Context, id int64) (dto.SubjectOutput, error)
}
