package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), Endpoint{APIKey: "test-key", Model: "gemini-flash", BaseURL: server.URL})
	require.NoError(t, err)
	return p
}

func geminiReply(finish, text string, seen *map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
				"finishReason": finish,
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20},
			"modelVersion":  "gemini-2.0-flash-001",
		})
	}
}

func TestGeminiModelMapping(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.0-pro", resolveModel("gemini-pro", geminiModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-2.0-flash", geminiModels))
}

func TestGeminiProvider_HappyPath(t *testing.T) {
	var body map[string]any
	p := newTestGeminiProvider(t, geminiReply("STOP", "Use v-bind.", &body))

	resp, err := p.Generate(context.Background(), hintRequest)
	require.NoError(t, err)
	assert.Equal(t, "Use v-bind.", resp.Text())
	assert.Equal(t, "gemini-2.0-flash-001", resp.Model)
	assert.Equal(t, 20, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)

	raw, _ := json.Marshal(body)
	assert.Contains(t, string(raw), "You are a Vue.js tutor.")
	assert.Contains(t, string(raw), "Give me a hint.")
}

func TestGeminiProvider_SendsJSONSchema(t *testing.T) {
	var body map[string]any
	p := newTestGeminiProvider(t, geminiReply("STOP", `{"passed":true,"score":90}`, &body))

	req := hintRequest
	req.Schema = evaluationSchema()
	_, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	gen, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", gen["responseMimeType"])
	assert.NotNil(t, gen["responseJsonSchema"])
}

func TestGeminiProvider_TruncatedStructuredOutput(t *testing.T) {
	p := newTestGeminiProvider(t, geminiReply("MAX_TOKENS", `{"passed":`, nil))

	req := hintRequest
	req.Schema = evaluationSchema()
	_, err := p.Generate(context.Background(), req)
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
}

func TestGeminiProvider_RateLimited(t *testing.T) {
	p := newTestGeminiProvider(t, statusReply(http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"},
	}))
	_, err := p.Generate(context.Background(), hintRequest)
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
	assert.True(t, strings.Contains(err.Error(), "rate limited"))
}

func TestMapGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	assert.ErrorAs(t, mapGeminiError(genai.APIError{Code: 429}), &rl)
	assert.ErrorAs(t, mapGeminiError(&genai.APIError{Code: 429}), &rl)

	var down *ErrProviderUnavailable
	assert.ErrorAs(t, mapGeminiError(genai.APIError{Code: 503}), &down)
	assert.ErrorAs(t, mapGeminiError(errors.New("dial tcp: refused")), &down)
}
