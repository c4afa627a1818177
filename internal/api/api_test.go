package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vuequest/internal/app"
	"github.com/abhisek/vuequest/internal/challenge"
	"github.com/abhisek/vuequest/internal/config"
	"github.com/abhisek/vuequest/internal/llm"
	"github.com/abhisek/vuequest/internal/notify"
	"github.com/abhisek/vuequest/internal/profile"
	"github.com/abhisek/vuequest/internal/store"
)

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

type heldScheduler struct{}

func (heldScheduler) AfterFunc(time.Duration, func()) notify.Timer { return heldTimer{} }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, mock *llm.MockProvider) (*gin.Engine, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: "memory"},
		Server:  config.ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Batch:   config.BatchConfig{Concurrency: 2},
	}
	a, err := app.New(context.Background(), cfg, nil,
		app.WithGateway(store.NewMemory()),
		app.WithProvider(mock),
		app.WithScheduler(heldScheduler{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return NewRouter(a), a
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t, llm.NewMockProvider())
	rec, _ := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProgressEndpoints(t *testing.T) {
	r, a := newTestServer(t, llm.NewMockProvider())

	rec, env := do(t, r, http.MethodPost, "/api/progress/sections/components-templates/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Message)

	var state struct {
		CompletedItems []string `json:"completedItems"`
		Stats          struct {
			CompletionPercentage int `json:"completionPercentage"`
		} `json:"stats"`
		Next *struct {
			ID string `json:"id"`
		} `json:"next"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, []string{"components-templates"}, state.CompletedItems)
	assert.Equal(t, 17, state.Stats.CompletionPercentage)
	require.NotNil(t, state.Next)
	assert.Equal(t, "reactivity-data", state.Next.ID)

	rec, _ = do(t, r, http.MethodPost, "/api/progress/sections/components-templates/complete", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/api/progress/sections/bogus/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.Code)

	rec, _ = do(t, r, http.MethodDelete, "/api/progress/sections/components-templates", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, a.Progress.IsItemComplete("components-templates"))

	rec, _ = do(t, r, http.MethodPost, "/api/progress/time", gin.H{"minutes": 65})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1h 5m", a.Progress.FormattedTimeSpent())
}

func TestPreferenceEndpoints(t *testing.T) {
	r, a := newTestServer(t, llm.NewMockProvider())

	rec, _ := do(t, r, http.MethodPatch, "/api/preferences", gin.H{"field": "fontSize", "value": "40"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24, a.Prefs.FontSize())

	rec, _ = do(t, r, http.MethodPatch, "/api/preferences", gin.H{"field": "nope", "value": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/api/preferences/toggle-theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, a.Prefs.IsDarkTheme())

	rec, _ = do(t, r, http.MethodPut, "/api/preferences", gin.H{"theme": "light", "fontSize": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, a.Prefs.FontSize())
	assert.False(t, a.Prefs.IsDarkTheme())
	assert.True(t, a.Prefs.ShowHints())
}

func TestNotificationEndpoints(t *testing.T) {
	r, a := newTestServer(t, llm.NewMockProvider())
	for range 7 {
		a.Notify.Info("hello", "")
	}

	rec, env := do(t, r, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Notifications []struct {
			ID   int64  `json:"id"`
			Type string `json:"type"`
		} `json:"notifications"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Notifications, notify.RecentLimit)
	assert.Equal(t, 7, list.Total)
	assert.Equal(t, "info", list.Notifications[0].Type)

	rec, _ = do(t, r, http.MethodGet, "/api/notifications?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodDelete, "/api/notifications", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, a.Notify.Len())
}

func TestChallengeEndpoints_OmittedDifficultyIsAdaptive(t *testing.T) {
	r, a := newTestServer(t, llm.NewMockProvider())
	for i := range 5 {
		a.Profile.ApplyEvaluation(context.Background(), profile.Outcome{Score: 100, Passed: true}, fmt.Sprintf("c%d", i), []string{"components"}, 60)
	}

	difficultyOf := func(body gin.H) float64 {
		rec, env := do(t, r, http.MethodPost, "/api/challenges", body)
		require.Equal(t, http.StatusOK, rec.Code)
		var c struct {
			Difficulty float64 `json:"difficulty"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &c))
		return c.Difficulty
	}

	adaptive := difficultyOf(gin.H{"topic": "components", "difficulty": "adaptive"})
	omitted := difficultyOf(gin.H{"topic": "components"})
	assert.Equal(t, adaptive, omitted)
	assert.NotEqual(t, challenge.DefaultDifficulty, omitted)

	rec, env := do(t, r, http.MethodPost, "/api/challenges/batch", gin.H{
		"requests": []gin.H{{"topic": "components"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var batch []struct {
		Difficulty float64 `json:"difficulty"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	require.Len(t, batch, 1)
	assert.Equal(t, adaptive, batch[0].Difficulty)
}

func TestChallengeEndpoints_FallBackWithoutModel(t *testing.T) {
	r, _ := newTestServer(t, llm.NewMockProvider())

	rec, env := do(t, r, http.MethodPost, "/api/challenges", gin.H{"topic": "components", "difficulty": "beginner"})
	require.Equal(t, http.StatusOK, rec.Code)
	var c struct {
		ID       string `json:"id"`
		Metadata struct {
			IsAIGenerated bool `json:"isAIGenerated"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Contains(t, c.ID, "fallback-")
	assert.False(t, c.Metadata.IsAIGenerated)

	rec, _ = do(t, r, http.MethodPost, "/api/challenges", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/api/challenges/batch", gin.H{
		"requests": []gin.H{{"topic": "components"}, {"topic": "reactivity"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var batch []struct {
		Meta struct {
			Topic string `json:"topic"`
		} `json:"_meta"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	require.Len(t, batch, 2)
	assert.Equal(t, "components", batch[0].Meta.Topic)
	assert.Equal(t, "reactivity", batch[1].Meta.Topic)
}

func TestTutorChat(t *testing.T) {
	r, _ := newTestServer(t, llm.NewMockProvider(llm.MockText("Components are LEGO blocks")))

	rec, env := do(t, r, http.MethodPost, "/api/tutor/chat", gin.H{"message": "what is a component?"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reply struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Equal(t, "Components are LEGO blocks", reply.Reply)
}

func TestQuiz_EmptyBodyFallsBack(t *testing.T) {
	r, _ := newTestServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodPost, "/api/tutor/quiz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fallback_1")
}

func TestExportImport(t *testing.T) {
	r, a := newTestServer(t, llm.NewMockProvider())
	a.CompleteSection(context.Background(), "components-templates")

	rec, env := do(t, r, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	r2, b := newTestServer(t, llm.NewMockProvider())
	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(env.Data))
	rec = httptest.NewRecorder()
	r2.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, b.Progress.IsItemComplete("components-templates"))

	req = httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader([]byte(`{"exportDate":"x"}`)))
	rec = httptest.NewRecorder()
	r2.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r, _ := newTestServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodOptions, "/api/progress", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestServer(t, llm.NewMockProvider())
	do(t, r, http.MethodGet, "/healthz", nil)

	rec, _ := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vuequest_http_requests_total")
}

func TestLLMUsage_TracksRequestsByPurpose(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`"Think about ref()"`), Usage: llm.Usage{InputTokens: 40, OutputTokens: 12}},
	)
	r, _ := newTestServer(t, mock)

	rec, _ := do(t, r, http.MethodPost, "/api/challenges/hint", gin.H{"challenge": gin.H{"title": "Counter"}, "code": ""})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, r, http.MethodGet, "/api/llm/usage", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var usage struct {
		Model     string                      `json:"model"`
		ByPurpose map[string]llm.PurposeUsage `json:"byPurpose"`
		Total     llm.PurposeUsage            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &usage))
	assert.Equal(t, "mock", usage.Model)
	assert.Equal(t, 1, usage.ByPurpose["hint"].Requests)
	assert.Equal(t, 40, usage.ByPurpose["hint"].InputTokens)
	assert.Equal(t, 1, usage.Total.Requests)
}
