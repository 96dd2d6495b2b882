package out

import (
	"context"
	"time"

	"studyo/internal/modules/pomodoro/domain"
	pomodoroout "studyo/internal/modules/pomodoro/port/out"
	"studyo/internal/platform/api"
)

const sessionsPath = "/pomodoro/"

// isoMillis matches the millisecond UTC form browsers send.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type sessionPayload struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Duration  int    `json:"duration"`
	Subject   *int64 `json:"subject,omitempty"`
}

type sessionResponse struct {
	ID        int64     `json:"id"`
	Subject   *int64    `json:"subject"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  int       `json:"duration"`
	Notes     *string   `json:"notes"`
}

type APISessionGateway struct {
	client *api.Client
}

func NewAPISessionGateway(client *api.Client) pomodoroout.SessionGateway {
	return &APISessionGateway{client: client}
}

func (g *APISessionGateway) Create(ctx context.Context, session domain.StudySession) (domain.SessionRecord, error) {
	payload := sessionPayload{
		StartTime: session.StartTime.UTC().Format(isoMillis),
		EndTime:   session.EndTime.UTC().Format(isoMillis),
		Duration:  session.DurationMinutes,
	}
	if session.SubjectID > 0 {
		subject := session.SubjectID
		payload.Subject = &subject
	}
	var resp sessionResponse
	if err := g.client.PostJSON(ctx, sessionsPath, payload, &resp); err != nil {
		return domain.SessionRecord{}, err
	}
	return toRecord(resp), nil
}

func (g *APISessionGateway) List(ctx context.Context) ([]domain.SessionRecord, error) {
	var payload []sessionResponse
	if err := g.client.GetJSON(ctx, sessionsPath, &payload); err != nil {
		return nil, err
	}
	out := make([]domain.SessionRecord, 0, len(payload))
	for _, item := range payload {
		out = append(out, toRecord(item))
	}
	return out, nil
}

func toRecord(resp sessionResponse) domain.SessionRecord {
	record := domain.SessionRecord{
		ID:              resp.ID,
		StartTime:       resp.StartTime,
		EndTime:         resp.EndTime,
		DurationMinutes: resp.Duration,
	}
	if resp.Subject != nil {
		record.SubjectID = *resp.Subject
	}
	if resp.Notes != nil {
		record.Notes = *resp.Notes
	}
	return record
}
