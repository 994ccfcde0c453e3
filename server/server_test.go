package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medsafe/interactions-api/config"
	"github.com/medsafe/interactions-api/data"
	"github.com/medsafe/interactions-api/handlers"
	"github.com/medsafe/interactions-api/validation"
)

type stubGenerator struct{ response string }

func (s *stubGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.response, nil
}

type stubVocabulary struct{}

func (s *stubVocabulary) FindRxCUI(ctx context.Context, name string) (string, error) {
	return "1191", nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                 "8080",
		Address:              "127.0.0.1",
		MaxRequestBody:       64 * 1024,
		MaxHeaderSize:        16 * 1024,
		GeneratorTimeoutSecs: 30,
	}
}

func newTestServer(response string) *Server {
	handler := handlers.NewHTTPHandler(
		&stubGenerator{response: response},
		&stubVocabulary{},
		data.NewCodeCache(100),
		validation.NewInputValidator(),
	)
	return NewServer(testConfig(), handler)
}

func doRequest(s *Server, method, path, body, remoteAddr string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	explanation := "**Interaction 1**: Aspirin + Warfarin\n" +
		"**Severity**: severe\n" +
		"**What happens**: Clotting is impaired.\n" +
		"**Risks or symptoms**: Bleeding.\n" +
		"**Advice**: Consult your doctor."
	s := newTestServer(explanation)

	testCases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{"POST", "/interactions", `{"medications":["aspirin","warfarin"]}`, http.StatusOK},
		{"POST", "/drug-info", `{"medication":"aspirin","personal_info":{"height_cm":170,"weight_kg":70,"age":42}}`, http.StatusOK},
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"GET", "/interactions", "", http.StatusMethodNotAllowed},
		{"GET", "/nope", "", http.StatusNotFound},
	}

	for i, tc := range testCases {
		rec := doRequest(s, tc.method, tc.path, tc.body, fmt.Sprintf("10.0.0.%d:1234", i+1))
		if rec.Code != tc.status {
			t.Errorf("%s %s: status %d, expected %d: %s", tc.method, tc.path, rec.Code, tc.status, rec.Body.String())
		}
	}
}

func TestRealIPMiddleware(t *testing.T) {
	var seen string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "203.0.113.7" {
		t.Errorf("RemoteAddr %q, expected first forwarded IP", seen)
	}
}

func TestRequestSizeMiddleware_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBody = 10

	handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/interactions", strings.NewReader(strings.Repeat("x", 100)))
	req.Header.Set("Content-Length", "100")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Status %d, expected 413", rec.Code)
	}
}

func TestRequestSizeMiddleware_HeadersTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHeaderSize = 10

	handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Big-Header", strings.Repeat("v", 100))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Errorf("Status %d, expected 431", rec.Code)
	}
}

func TestGetTokenCost(t *testing.T) {
	testCases := []struct {
		path string
		cost int64
	}{
		{"/", 0},
		{"/health", 5},
		{"/metrics", 5},
		{"/interactions", 100},
		{"/drug-info", 100},
		{"/something-else", 20},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest("GET", tc.path, nil)
		if got := getTokenCost(req); got != tc.cost {
			t.Errorf("getTokenCost(%s) = %d, expected %d", tc.path, got, tc.cost)
		}
	}
}

func TestRateLimitHandler_Exhaustion(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// The bucket holds 1000 tokens and /interactions costs 100, so the
	// eleventh request from the same client must be rejected.
	var lastCode int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest("POST", "/interactions", nil)
		req.RemoteAddr = "198.51.100.50:4321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("Status %d after exhaustion, expected 429", lastCode)
	}
}

func TestRateLimitHandler_SetsHeaders(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "198.51.100.51:4321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Errorf("X-RateLimit-Limit %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("X-RateLimit-Remaining header missing")
	}
}
