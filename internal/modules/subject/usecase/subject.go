package usecase

import (
	"context"

	"studyo/internal/modules/subject/domain"
	subjectdto "studyo/internal/modules/subject/dto"
	subjectin "studyo/internal/modules/subject/port/in"
	"studyo/internal/modules/subject/service"
)

type Interactor struct {
	svc *service.SubjectService
}

func NewInteractor(svc *service.SubjectService) subjectin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListSubjects(ctx context.Context) ([]subjectdto.SubjectOutput, error) {
	subjects, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]subjectdto.SubjectOutput, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, toOutput(subject))
	}
	return out, nil
}

func (i *Interactor) GetSubject(ctx context.Context, id int64) (subjectdto.SubjectOutput, error) {
	subject, err := i.svc.Get(ctx, id)
	if err != nil {
		return subjectdto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func toOutput(subject domain.Subject) subjectdto.SubjectOutput {
	return subjectdto.SubjectOutput{
		ID:          subject.ID,
		Name:        subject.Name,
		Description: subject.Description,
		Priority:    subject.Priority.String(),
		Color:       subject.Color,
	}
}
