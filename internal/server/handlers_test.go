package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/framefit/framefit/pkg/canvas"
	apperrors "github.com/framefit/framefit/pkg/errors"
	"github.com/framefit/framefit/pkg/experiment"
	"github.com/framefit/framefit/pkg/resize"
	"github.com/framefit/framefit/pkg/store"
)

func testServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	engine := resize.NewEngine(nil, experiment.NewSelector(experiment.DefaultVariants()), st, nil, nil)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(engine, "127.0.0.1:0", logger), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func validResizeRequest() resizeRequest {
	return resizeRequest{
		Elements: []canvas.Element{
			{ID: "title", Kind: canvas.KindText, Left: 100, Top: 60, Width: 400, Height: 60, Text: "Hello"},
			{ID: "hero", Kind: canvas.KindImage, Left: 100, Top: 160, Width: 500, Height: 300},
		},
		Current: canvas.Size{Width: 800, Height: 600},
		Target:  canvas.Size{Width: 1080, Height: 1080},
	}
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s.routes(), http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestResizeEndpoint(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/resize", validResizeRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	result := decode[resize.Result](t, rec)
	if len(result.Placements) != 2 {
		t.Errorf("placements = %d, want 2", len(result.Placements))
	}
	if !result.UsedFallback {
		t.Error("no model configured, expected the fallback flag")
	}
	if result.SessionID == "" {
		t.Error("no session ID in response")
	}
}

func TestResizeEndpointRejectsBadInput(t *testing.T) {
	s, _ := testServer(t)
	router := s.routes()

	empty := doJSON(t, router, http.MethodPost, "/api/v1/resize", resizeRequest{
		Current: canvas.Size{Width: 800, Height: 600},
		Target:  canvas.Size{Width: 1080, Height: 1080},
	})
	if empty.Code != http.StatusBadRequest {
		t.Errorf("empty elements status = %d", empty.Code)
	}
	body := decode[errorResponse](t, empty)
	if body.Code != apperrors.ErrCodeInvalidInput {
		t.Errorf("error code = %s", body.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resize", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON status = %d", rec.Code)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	s, _ := testServer(t)
	router := s.routes()

	resized := decode[resize.Result](t, doJSON(t, router, http.MethodPost, "/api/v1/resize", validResizeRequest()))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+resized.SessionID+"/feedback",
		feedbackRequest{Rating: 5, FeedbackText: "nice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	session := decode[store.Session](t, rec)
	if session.Rating == nil || *session.Rating != 5 {
		t.Errorf("rating = %v", session.Rating)
	}
}

func TestFeedbackEndpointUnknownSession(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/sessions/ghost/feedback", feedbackRequest{Rating: 5})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.Code != apperrors.ErrCodeSessionNotFound {
		t.Errorf("error code = %s", body.Code)
	}
}

func TestFeedbackEndpointBadRating(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/sessions/ghost/feedback", feedbackRequest{Rating: 11})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.Code != apperrors.ErrCodeInvalidRating {
		t.Errorf("error code = %s", body.Code)
	}
}

func TestRetrainEndpoint(t *testing.T) {
	s, _ := testServer(t)
	router := s.routes()

	resized := decode[resize.Result](t, doJSON(t, router, http.MethodPost, "/api/v1/resize", validResizeRequest()))
	doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+resized.SessionID+"/feedback", feedbackRequest{Rating: 5})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/retrain", retrainRequest{DaysBack: 7})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	report := decode[resize.RetrainReport](t, rec)
	if report.SessionsRead != 1 {
		t.Errorf("SessionsRead = %d, want 1", report.SessionsRead)
	}
	if report.Patterns.HighQuality.Count != 1 {
		t.Errorf("high quality = %d, want 1", report.Patterns.HighQuality.Count)
	}
}

func TestListVariantsEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.routes(), http.MethodGet, "/api/v1/variants/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	variants := decode[[]experiment.Variant](t, rec)
	if len(variants) != 3 {
		t.Errorf("variants = %d, want the 3 defaults", len(variants))
	}
}

func TestSignificanceEndpointErrors(t *testing.T) {
	s, _ := testServer(t)
	router := s.routes()

	unknown := doJSON(t, router, http.MethodGet, "/api/v1/variants/significance?a=balanced-v1&b=ghost", nil)
	if unknown.Code != http.StatusNotFound {
		t.Errorf("unknown variant status = %d", unknown.Code)
	}

	thin := doJSON(t, router, http.MethodGet, "/api/v1/variants/significance?a=balanced-v1&b=hierarchy-v1", nil)
	if thin.Code != http.StatusUnprocessableEntity {
		t.Errorf("insufficient data status = %d", thin.Code)
	}
	body := decode[errorResponse](t, thin)
	if body.Code != apperrors.ErrCodeInsufficientData {
		t.Errorf("error code = %s", body.Code)
	}
}
