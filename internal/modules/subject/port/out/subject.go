package out

import (
	"context"

	"studyo/internal/modules/subject/domain"
)

type SubjectGateway interface {
	List(ctx context.Context) ([]domain.Subject, error)
}
