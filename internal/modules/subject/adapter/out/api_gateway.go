package out

import (
	"context"

	"studyo/internal/modules/subject/domain"
	subjectout "studyo/internal/modules/subject/port/out"
	"studyo/internal/platform/api"
)

const subjectsPath = "/subjects/"

type subjectResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	Color       *string `json:"color"`
}

type APISubjectGateway struct {
	client *api.Client
}

func NewAPISubjectGateway(client *api.Client) subjectout.SubjectGateway {
	return &APISubjectGateway{client: client}
}

func (g *APISubjectGateway) List(ctx context.Context) ([]domain.Subject, error) {
	var payload []subjectResponse
	if err := g.client.GetJSON(ctx, subjectsPath, &payload); err != nil {
		return nil, err
	}
	out := make([]domain.Subject, 0, len(payload))
	for _, item := range payload {
		subject := domain.Subject{ID: item.ID, Name: item.Name}
		if item.Description != nil {
			subject.Description = *item.Description
		}
		if item.Priority != nil {
			subject.Priority = domain.Priority(*item.Priority)
		}
		if item.Color != nil {
			subject.Color = *item.Color
		}
		out = append(out, subject)
	}
	return out, nil
}
