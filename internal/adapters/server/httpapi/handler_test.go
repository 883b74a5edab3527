package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hylla/ritning/internal/adapters/server/common"
)

// stubTimelineService provides deterministic responses for handler tests.
type stubTimelineService struct {
	timeline     common.Timeline
	buckets      []common.Bucket
	dependencies common.Dependencies
	window       common.Window
	err          error

	lastTimeline common.TimelineRequest
	lastGroupBy  string
	lastTaskID   string
	lastNavigate common.NavigateRequest
}

// Timeline records the request and returns the configured response.
func (s *stubTimelineService) Timeline(_ context.Context, req common.TimelineRequest) (common.Timeline, error) {
	s.lastTimeline = req
	if s.err != nil {
		return common.Timeline{}, s.err
	}
	return s.timeline, nil
}

// Groups records the grouping and returns fixture buckets.
func (s *stubTimelineService) Groups(_ context.Context, by string) ([]common.Bucket, error) {
	s.lastGroupBy = by
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.Bucket(nil), s.buckets...), nil
}

// TaskDependencies records the task id and returns fixture dependencies.
func (s *stubTimelineService) TaskDependencies(_ context.Context, taskID string) (common.Dependencies, error) {
	s.lastTaskID = taskID
	if s.err != nil {
		return common.Dependencies{}, s.err
	}
	return s.dependencies, nil
}

// Navigate records the request and returns the fixture window.
func (s *stubTimelineService) Navigate(_ context.Context, req common.NavigateRequest) (common.Window, error) {
	s.lastNavigate = req
	if s.err != nil {
		return common.Window{}, s.err
	}
	return s.window, nil
}

// TestHandlerTimelineSuccess verifies query mapping and response encoding.
func TestHandlerTimelineSuccess(t *testing.T) {
	svc := &stubTimelineService{
		timeline: common.Timeline{
			Window: common.Window{Mode: "month", Anchor: "2024-12-18", TotalDays: 62},
			Bars:   []common.Bar{{Task: common.Task{ID: "t1"}, LeftPercent: 14.5}},
		},
	}
	handler := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/timeline?mode=month&anchor=2024-12-18&project_id=p1&assignee_id=u1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got common.Timeline
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Window.TotalDays != 62 || len(got.Bars) != 1 {
		t.Fatalf("unexpected payload %#v", got)
	}
	want := common.TimelineRequest{Mode: "month", Anchor: "2024-12-18", ProjectID: "p1", AssigneeID: "u1"}
	if svc.lastTimeline != want {
		t.Fatalf("request = %#v, want %#v", svc.lastTimeline, want)
	}
}

// TestHandlerErrorMapping verifies structured status mapping for service errors.
func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "invalid", err: fmt.Errorf("mode: %w", common.ErrInvalidRequest), wantCode: http.StatusBadRequest, wantErr: "invalid_request"},
		{name: "not found", err: fmt.Errorf("task: %w", common.ErrNotFound), wantCode: http.StatusNotFound, wantErr: "not_found"},
		{name: "internal", err: errors.New("disk on fire"), wantCode: http.StatusInternalServerError, wantErr: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(&stubTimelineService{err: tc.err})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timeline?mode=year", nil))

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			var envelope ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if envelope.Error.Code != tc.wantErr {
				t.Fatalf("error code = %q, want %q", envelope.Error.Code, tc.wantErr)
			}
		})
	}
}

// TestHandlerGroupsRoutes verifies both rollup routes.
func TestHandlerGroupsRoutes(t *testing.T) {
	svc := &stubTimelineService{buckets: []common.Bucket{{Key: "p1", Label: "ARK-1 Library"}}}
	handler := NewHandler(svc)

	for path, want := range map[string]string{
		"/groups/projects":   common.GroupByProject,
		"/groups/assignees/": common.GroupByAssignee,
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if svc.lastGroupBy != want {
			t.Fatalf("%s group_by = %q, want %q", path, svc.lastGroupBy, want)
		}
		var payload struct {
			GroupBy string          `json:"group_by"`
			Buckets []common.Bucket `json:"buckets"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if payload.GroupBy != want || len(payload.Buckets) != 1 {
			t.Fatalf("unexpected payload %#v", payload)
		}
	}
}

// TestHandlerDependenciesRoute verifies task id extraction.
func TestHandlerDependenciesRoute(t *testing.T) {
	svc := &stubTimelineService{dependencies: common.Dependencies{
		Task:         common.Task{ID: "t2"},
		Dependencies: []common.Task{{ID: "t1"}},
	}}
	handler := NewHandler(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/t2/dependencies", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastTaskID != "t2" {
		t.Fatalf("task id = %q, want t2", svc.lastTaskID)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/a/b/dependencies", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nested id status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestHandlerNavigate verifies body decoding and strict shape checks.
func TestHandlerNavigate(t *testing.T) {
	svc := &stubTimelineService{window: common.Window{Mode: "month", Anchor: "2025-02-18"}}
	handler := NewHandler(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/navigate", strings.NewReader(`{"mode":"month","anchor":"2024-12-18","direction":1}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := common.NavigateRequest{Mode: "month", Anchor: "2024-12-18", Direction: 1}
	if svc.lastNavigate != want {
		t.Fatalf("request = %#v, want %#v", svc.lastNavigate, want)
	}

	for _, body := range []string{`{"mode":"month","bogus":true}`, `{"mode":"week"}{}`, `not json`} {
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/navigate", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

// TestHandlerMethodAndRouteErrors verifies 405 and 404 envelopes.
func TestHandlerMethodAndRouteErrors(t *testing.T) {
	handler := NewHandler(&stubTimelineService{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/navigate", nil))
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("status = %d allow = %q", rec.Code, rec.Header().Get("Allow"))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	NewHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timeline", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
