package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &Config{
		KnowledgePath: "missing.json",
		ModelPath:     "no-model.json",
		LabelsPath:    "no-labels.json",
		LLMBaseURL:    "http://127.0.0.1:0",
		LLMTimeout:    time.Second,
	}
	app := buildApp(zap.NewNop().Sugar(), cfg)

	r := gin.New()
	app.registerRoutes(r)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecommendEndpointWithAbsentModel(t *testing.T) {
	// The classifier artifact is missing, yet /recommend answers 200
	// from the rule engine with no error field in the payload.
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/recommend",
		`{"N":90,"P":42,"K":43,"temperature":20.88,"humidity":82,"ph":6.5,"rainfall":202.94}`)

	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.NotContains(t, payload, "error")
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "rice", payload["recommended_crop"])
	assert.Equal(t, "rules", payload["model_used"])

	top, ok := payload["top_recommendations"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, top)
}

func TestRecommendEndpointValidationError(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/recommend",
		`{"N":90,"P":42,"K":43,"temperature":20.88,"humidity":82,"ph":15,"rainfall":202.94}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "ph", payload["field"])
	assert.Contains(t, payload["error"], "ph")
}

func TestRecommendEndpointMissingField(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/recommend",
		`{"N":90,"P":42,"K":43,"humidity":82,"ph":6.5,"rainfall":202.94}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "temperature")
}

func TestChatEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/chat", `{"message":"what about pest control"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var payload ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "what about pest control", payload.UserMessage)
	assert.Contains(t, payload.BotResponse, "Pest Management")
}

func TestChatEndpointMissingMessage(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/chat", `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}

func TestChatEndpointGenericNeverFails(t *testing.T) {
	// No responder credential configured; the chat path still reports
	// success with the canned apology.
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/chat", `{"message":"hello there, how are you?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var payload ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, apologyText, payload.BotResponse)
}

func TestCropsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/crops", "")

	require.Equal(t, http.StatusOK, w.Code)
	var payload CropsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, []string{"rice", "maize", "wheat", "cotton", "apple"}, payload.Crops)
	assert.Equal(t, 5, payload.TotalCrops)
	assert.Contains(t, payload.Categories, "cereal")
}

func TestCropEndpointCaseInsensitive(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/crop/Rice", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"crop_name":"rice"`)
}

func TestCropEndpointUnknownCrop(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/crop/Banana", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Banana")
}

func TestGuidanceEndpointSection(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/guidance/Rice/water", "")

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "rice", payload["crop_name"])
	assert.Equal(t, "water", payload["guidance_type"])
	assert.Contains(t, payload["guidance"], "Maintain 2-5 cm water depth")
}

func TestGuidanceEndpointUnknownCrop(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/guidance/Banana/water", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Banana")
}

func TestGuidanceEndpointUnknownSection(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/guidance/rice/astrology", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "not supported")
	assert.Contains(t, body, "land_preparation")
	assert.Contains(t, body, "harvesting")
}

func TestAdviceEndpointKnownTopic(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/advice/irrigation", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Irrigation Best Practices")
}

func TestAdviceEndpointUnknownTopicNever404s(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/advice/astrology", "")

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, clarifyingPrompt, payload["advice"])
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var payload HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "healthy", payload.Status)
	assert.False(t, payload.ClassifierLoaded)
	assert.Equal(t, "builtin", payload.KnowledgeSource)
	assert.Equal(t, 5, payload.KnownCrops)
	assert.False(t, payload.ResponderConfigured)
}
