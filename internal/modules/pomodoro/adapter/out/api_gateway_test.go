package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pomodoroout "studyo/internal/modules/pomodoro/adapter/out"
	"studyo/internal/modules/pomodoro/domain"
	"studyo/internal/platform/api"
	"studyo/internal/platform/logging"
)

func TestCreateSendsSessionPayload(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/pomodoro/", r.URL.Path)
		assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":11,"subject":4,"start_time":"2026-03-02T09:00:00Z","end_time":"2026-03-02T09:25:00Z","duration":25,"notes":""}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL+"/api", nil, api.StaticToken("abc", "Token"), logging.Discard())
	gateway := pomodoroout.NewAPISessionGateway(client)
	start := time.Date(2026, 3, 2, 6, 0, 0, 0, time.FixedZone("ART", -3*3600))

	record, err := gateway.Create(context.Background(), domain.NewStudySession(start, start.Add(25*time.Minute), 4, domain.CommitCompleted))
	require.NoError(t, err)
	assert.Equal(t, int64(11), record.ID)
	assert.Equal(t, int64(4), record.SubjectID)

	assert.Equal(t, "2026-03-02T09:00:00.000Z", body["start_time"])
	assert.Equal(t, "2026-03-02T09:25:00.000Z", body["end_time"])
	assert.EqualValues(t, 25, body["duration"])
	assert.EqualValues(t, 4, body["subject"])
}

func TestCreateOmitsSubjectWhenUnset(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":1,"subject":null,"start_time":"2026-03-02T09:00:00Z","end_time":"2026-03-02T09:01:00Z","duration":1}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, nil, api.StaticToken("abc", "Token"), logging.Discard())
	_, err := pomodoroout.NewAPISessionGateway(client).Create(context.Background(), domain.NewStudySession(time.Now(), time.Now(), 0, domain.CommitSkipped))
	require.NoError(t, err)
	_, present := body["subject"]
	assert.False(t, present)
	assert.EqualValues(t, 1, body["duration"])
}

func TestListDecodesBackendRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[
			{"id":2,"subject":null,"start_time":"2026-03-02T10:00:00.123456Z","end_time":"2026-03-02T10:25:00Z","duration":25,"notes":"ch. 3"},
			{"id":1,"subject":5,"start_time":"2026-03-02T09:00:00+00:00","end_time":"2026-03-02T09:25:00+00:00","duration":25,"notes":""}
		]`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, nil, api.StaticToken("abc", "Token"), logging.Discard())
	records, err := pomodoroout.NewAPISessionGateway(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(0), records[0].SubjectID)
	assert.Equal(t, "ch. 3", records[0].Notes)
	assert.Equal(t, int64(5), records[1].SubjectID)
	assert.True(t, records[1].StartTime.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)))
}
