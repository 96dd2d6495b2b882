package in

import (
	"context"

	subjectdto "studyo/internal/modules/subject/dto"
	subjectin "studyo/internal/modules/subject/port/in"
)

type CLIHandler struct {
	usecase subjectin.Usecase
}

func NewCLIHandler(usecase subjectin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]subjectdto.SubjectOutput, error) {
	return h.usecase.ListSubjects(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id int64) (subjectdto.SubjectOutput, error) {
	return h.usecase.GetSubject(ctx, id)
}
