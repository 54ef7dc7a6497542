package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, nil, Dependencies{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q", body["status"])
	}
}

func TestReadyEndpointReportsDependencyFailure(t *testing.T) {
	h := newTestHandler(t, nil, Dependencies{
		Readiness: func(context.Context) error { return errors.New("warehouse unreachable") },
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestReadyEndpointWithoutCheck(t *testing.T) {
	h := newTestHandler(t, nil, Dependencies{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	h := newTestHandler(t, nil, Dependencies{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAnswerRouteRejectsGet(t *testing.T) {
	h := newTestHandler(t, nil, Dependencies{Answerer: &fakeAnswerer{answer: "x"}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/answer", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAuthRequiredWithoutMiddlewareFailsClosed(t *testing.T) {
	h := newTestHandler(t, map[string]string{"FIRMSIGHT_AUTH_REQUIRED": "true"}, Dependencies{
		Answerer: &fakeAnswerer{answer: "x"},
	})

	rr := postAnswer(h, `{"question":"q","company_name":"acme"}`, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestRecoverMiddlewareConvertsPanic(t *testing.T) {
	h := newTestHandler(t, nil, Dependencies{Answerer: panicAnswerer{}})

	rr := postAnswer(h, `{"question":"q","company_name":"acme"}`, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected error field in panic response")
	}
}

type panicAnswerer struct{}

func (panicAnswerer) Answer(context.Context, string, string) (string, error) {
	panic("unexpected driver state")
}
