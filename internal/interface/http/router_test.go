package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/adventure-ai/internal/domain/adventure"
	"github.com/yanqian/adventure-ai/internal/domain/similarity"
	"github.com/yanqian/adventure-ai/internal/infra/catalog"
	"github.com/yanqian/adventure-ai/internal/infra/config"
	"github.com/yanqian/adventure-ai/pkg/retry"
)

const validCompletion = `{"title":"Vineyard walk","description":"A gentle loop through the vines.","location":"Saint-Émilion","tags":["hiking","wine"],"difficulty":"easy","duration_minutes":120,"distance_km":7.5,"latitude":44.894,"longitude":-0.155}`

func TestRouter_Health(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, HealthResponse{Status: "ok", Version: "9.9.9"}, got)
}

func TestRouter_GenerateSuccess(t *testing.T) {
	completer := &stubCompleter{responses: []string{validCompletion}}
	server := newRouterUnderTest(t, completer)

	recorder := performRequest(server, http.MethodPost, "/api/generate", `{"prompt":"A wine walk near Bordeaux"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got adventure.Adventure
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "Vineyard walk", got.Title)
	require.Equal(t, 120, got.DurationMinutes)
	require.InDelta(t, 7.5, got.DistanceKM, 1e-9)
	require.Equal(t, 1, completer.calls)
}

func TestRouter_GenerateShortPrompt(t *testing.T) {
	completer := &stubCompleter{}
	server := newRouterUnderTest(t, completer)

	recorder := performRequest(server, http.MethodPost, "/api/generate", `{"prompt":"abc"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeErrorBody(t, recorder.Body.Bytes())
	require.True(t, body.Error)
	require.Equal(t, "INVALID_PROMPT", body.Code)
	require.Equal(t, "/api/generate", body.Path)
	require.Zero(t, completer.calls)
}

func TestRouter_GenerateProviderDown(t *testing.T) {
	boom := errors.New("connection refused")
	completer := &stubCompleter{errs: []error{boom, boom, boom}}
	server := newRouterUnderTest(t, completer)

	recorder := performRequest(server, http.MethodPost, "/api/generate", `{"prompt":"A wine walk near Bordeaux"}`)
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	body := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "OPENAI_API_ERROR", body.Code)
	require.Contains(t, body.Message, "connection refused")
	require.Equal(t, 3, completer.calls)
}

func TestRouter_GenerateMalformedCompletion(t *testing.T) {
	completer := &stubCompleter{responses: []string{"Sure! Here is your adventure."}}
	server := newRouterUnderTest(t, completer)

	recorder := performRequest(server, http.MethodPost, "/api/generate", `{"prompt":"A wine walk near Bordeaux"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	body := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "PROMPT_PROCESSING_ERROR", body.Code)
	require.Equal(t, 1, completer.calls)
}

func TestRouter_GenerateInvalidJSON(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodPost, "/api/generate", `{"prompt":123}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "INVALID_REQUEST", body.Code)
	require.NotEmpty(t, body.Message)
}

func TestRouter_SearchSimilar(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodPost, "/api/search_similar", `{"adventure_id":1}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got similarity.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Len(t, got.SimilarAdventures, 2)
	require.Equal(t, int64(3), got.SimilarAdventures[0].ID)
	require.Equal(t, 0.9, got.SimilarAdventures[0].SimilarityScore)
	require.Equal(t, int64(7), got.SimilarAdventures[1].ID)
	require.Equal(t, 0.8, got.SimilarAdventures[1].SimilarityScore)
}

func TestRouter_SearchSimilarUnknownID(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodPost, "/api/search_similar", `{"adventure_id":999}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"similar_adventures":[]}`, recorder.Body.String())
}

func TestRouter_SearchSimilarMissingID(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodPost, "/api/search_similar", `{}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "INVALID_REQUEST", decodeErrorBody(t, recorder.Body.Bytes()).Code)
}

func TestRouter_GetAdventure(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodGet, "/api/adventures/1", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var got similarity.Record
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, int64(1), got.ID)
	require.NotEmpty(t, got.Title)
}

func TestRouter_GetAdventureNotFound(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodGet, "/api/adventures/999", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	body := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "ADVENTURE_NOT_FOUND", body.Code)
	require.Equal(t, "/api/adventures/999", body.Path)
}

func TestRouter_RequestID(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	recorder := performRequest(server, http.MethodGet, "/health", "")
	require.NotEmpty(t, recorder.Header().Get(requestIDHeader))

	const supplied = "6f1c2a9e-3b7d-4c1e-9a55-0d6f1e2b3c4d"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, supplied)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, supplied, rec.Header().Get(requestIDHeader))
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	server := newRouterUnderTest(t, &stubCompleter{})
	_ = performRequest(server, http.MethodGet, "/health", "")

	recorder := performRequest(server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "adventure_http_requests_total")
}

func performRequest(server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, completer adventure.Completer) *http.Server {
	t.Helper()
	logger := newTestLogger()
	cfg := &config.Config{
		App: config.AppConfig{Version: "9.9.9"},
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8000"},
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	adventureSvc := adventure.NewService(adventure.Config{
		Retry: retry.Backoff{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			Multiplier:  2,
			MaxDelay:    10 * time.Second,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	}, completer, logger)
	similaritySvc := similarity.NewService(catalog.NewMemoryCatalog(similarity.SeedSnapshot()), logger)
	return NewRouter(cfg, NewHandler(cfg, adventureSvc, similaritySvc, logger))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return "", errors.New("no scripted response")
}

func decodeErrorBody(t *testing.T, raw []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
