package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclesync/cyclesync/internal/application/checklist"
	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/handler"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/fs"
)

// failingGenerator always errors, forcing the heuristic fallback.
type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)

	h := handler.New(
		scheduling.NewService(store, failingGenerator{}, scheduling.Config{}),
		checklist.NewService(checklist.NewMemoryStore()),
	)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

func dateOffset(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(domain.DateLayout)
}

func TestGetCycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/cycle?last_period_start=2025-03-01&cycle_length=28&as_of=2025-03-10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	got := decode[struct {
		AsOf  string `json:"as_of"`
		State struct {
			CycleDay int    `json:"cycle_day"`
			Phase    string `json:"phase"`
		} `json:"state"`
		NextPhase          string `json:"next_phase"`
		DaysUntilNextPhase int    `json:"days_until_next_phase"`
		OvulationDay       int    `json:"ovulation_day"`
		Hormones           []any  `json:"hormones"`
		Bands              []any  `json:"bands"`
	}](t, body)

	assert.Equal(t, "2025-03-10", got.AsOf)
	assert.Equal(t, 10, got.State.CycleDay)
	assert.Equal(t, "follicular", got.State.Phase)
	assert.Equal(t, "ovulatory", got.NextPhase)
	assert.Equal(t, 4, got.DaysUntilNextPhase)
	assert.Equal(t, 14, got.OvulationDay)
	assert.Len(t, got.Hormones, 28)
	assert.Len(t, got.Bands, 4)
}

func TestGetCycle_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing start", "", "date"},
		{"bad start", "?last_period_start=March", "date"},
		{"non-numeric length", "?last_period_start=2025-03-01&cycle_length=abc", "cycle_length"},
		{"negative length", "?last_period_start=2025-03-01&cycle_length=-3", "cycle_length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodGet, "/cycle"+tt.query, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			e := decode[errorBody](t, body)
			assert.Equal(t, "VALIDATION_ERROR", e.Error.Code)
			require.Len(t, e.Error.Details, 1)
			assert.Equal(t, tt.field, e.Error.Details[0].Field)
		})
	}
}

func TestEvaluateAffinity(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/affinity", `{"text":"Brainstorm ideas for the launch","current_phase":"luteal"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	got := decode[map[string]any](t, body)
	assert.Equal(t, "follicular", got["optimal_phase"])
	assert.Equal(t, false, got["optimal_now"])
	assert.Equal(t, "creative", got["task_type"])

	resp, _ = do(t, srv, http.MethodPost, "/affinity", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/affinity", `{"text":"x","current_phase":"winter"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSuggest_FallsBackWhenModelFails(t *testing.T) {
	srv := newTestServer(t)

	payload := `{
		"description": "Give the product demo to the board",
		"last_period_start": "` + dateOffset(-3) + `",
		"cycle_length": 28
	}`
	resp, body := do(t, srv, http.MethodPost, "/schedule", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	got := decode[struct {
		TaskType string `json:"task_type"`
		Current  struct {
			CycleDay int `json:"cycle_day"`
		} `json:"current"`
		Suggestion struct {
			SuggestedDate string   `json:"suggested_date"`
			Source        string   `json:"source"`
			Reasoning     []string `json:"reasoning"`
		} `json:"suggestion"`
	}](t, body)

	assert.Equal(t, "presentation", got.TaskType)
	assert.Equal(t, 4, got.Current.CycleDay)
	assert.Equal(t, "fallback", got.Suggestion.Source)
	assert.NotEmpty(t, got.Suggestion.SuggestedDate)
	assert.NotEmpty(t, got.Suggestion.Reasoning)
}

func TestSuggest_RejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed", "{", http.StatusBadRequest},
		{"unknown field", `{"description":"x","last_period_start":"2025-03-01","extra":1}`, http.StatusBadRequest},
		{"missing cycle", `{"description":"write report"}`, http.StatusBadRequest},
		{"bad due date", `{"description":"x","last_period_start":"2025-03-01","due_date":"soon"}`, http.StatusBadRequest},
		{"missing description", `{"last_period_start":"2025-03-01"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, srv, http.MethodPost, "/schedule", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)

	payload := `{
		"title": "Write launch blog post",
		"description": "Write the launch blog post",
		"task_type": "creative",
		"energy_required": "high",
		"focus_required": "medium",
		"scheduled_date": "` + dateOffset(2) + `",
		"cycle_day": 9,
		"phase": "follicular",
		"confidence": 0.8,
		"reasoning": ["Rising estrogen"],
		"constraints": {"available_days": ["monday", "tuesday"]}
	}`
	resp, body := do(t, srv, http.MethodPost, "/tasks", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	type task struct {
		ID               string   `json:"id"`
		Title            string   `json:"title"`
		Completed        bool     `json:"completed"`
		OptimizationTips []string `json:"optimization_tips"`
	}
	created := decode[task](t, body)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Write launch blog post", created.Title)
	assert.NotNil(t, created.OptimizationTips)

	resp, body = do(t, srv, http.MethodGet, "/tasks/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[task](t, body).ID)

	resp, body = do(t, srv, http.MethodGet, "/tasks/upcoming?limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[struct {
		Tasks []task `json:"tasks"`
	}](t, body).Tasks, 1)

	resp, body = do(t, srv, http.MethodPatch, "/tasks/"+created.ID, `{"completed":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.True(t, decode[task](t, body).Completed)

	resp, body = do(t, srv, http.MethodGet, "/tasks/upcoming", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[struct {
		Tasks []task `json:"tasks"`
	}](t, body).Tasks)

	resp, body = do(t, srv, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[struct {
		Tasks []task `json:"tasks"`
	}](t, body).Tasks, 1)

	resp, _ = do(t, srv, http.MethodDelete, "/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskErrors(t *testing.T) {
	srv := newTestServer(t)
	missing := "4b0b7d5e-2f55-4e0f-9f9e-6c2f1c1f8a11"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"get missing", http.MethodGet, "/tasks/" + missing, "", http.StatusNotFound},
		{"get invalid id", http.MethodGet, "/tasks/not-a-uuid", "", http.StatusBadRequest},
		{"patch without flag", http.MethodPatch, "/tasks/" + missing, `{}`, http.StatusBadRequest},
		{"patch missing", http.MethodPatch, "/tasks/" + missing, `{"completed":true}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/tasks/" + missing, "", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/tasks/upcoming?limit=-1", "", http.StatusBadRequest},
		{"save bad date", http.MethodPost, "/tasks", `{"title":"t","scheduled_date":"tomorrow"}`, http.StatusBadRequest},
		{"save bad weekday", http.MethodPost, "/tasks", `{"title":"t","scheduled_date":"2030-01-01","constraints":{"available_days":["funday"]}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
		})
	}
}

func TestChecklist(t *testing.T) {
	srv := newTestServer(t)

	type item struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Completed    bool   `json:"completed"`
		OptimalPhase string `json:"optimal_phase"`
		OptimalNow   bool   `json:"optimal_now"`
	}

	resp, body := do(t, srv, http.MethodPost, "/checklist", `{"title":"Review pull requests","current_phase":"luteal"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	added := decode[item](t, body)
	assert.Equal(t, "luteal", added.OptimalPhase)
	assert.True(t, added.OptimalNow)

	resp, body = do(t, srv, http.MethodGet, "/checklist?phase=ovulatory", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[struct {
		Items []item `json:"items"`
	}](t, body).Items
	require.Len(t, items, 1)
	assert.False(t, items[0].OptimalNow)

	resp, body = do(t, srv, http.MethodPatch, "/checklist/"+added.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.True(t, decode[item](t, body).Completed)

	resp, _ = do(t, srv, http.MethodDelete, "/checklist/"+added.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/checklist/"+added.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/checklist", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/checklist?phase=spring", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuickLogs(t *testing.T) {
	srv := newTestServer(t)

	payload := `{"energy":4,"mood":"focused","note":"good day","last_period_start":"` + dateOffset(-9) + `"}`
	resp, body := do(t, srv, http.MethodPost, "/checklist/logs", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	entry := decode[struct {
		Energy   int    `json:"energy"`
		CycleDay int    `json:"cycle_day"`
		Phase    string `json:"phase"`
	}](t, body)
	assert.Equal(t, 4, entry.Energy)
	assert.Equal(t, 10, entry.CycleDay)
	assert.Equal(t, "follicular", entry.Phase)

	resp, body = do(t, srv, http.MethodGet, "/checklist/logs?limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[struct {
		Logs []any `json:"logs"`
	}](t, body).Logs, 1)

	resp, body = do(t, srv, http.MethodPost, "/checklist/logs", strings.Replace(payload, `"energy":4`, `"energy":9`, 1))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[errorBody](t, body)
	require.Len(t, e.Error.Details, 1)
	assert.Equal(t, "energy", e.Error.Details[0].Field)
}
