package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/isdestimator/internal/store"
)

func postEstimate(t *testing.T, s *Server, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// completedJob runs a Prange-only job synchronously.
func completedJob(t *testing.T, s *Server) Job {
	t.Helper()
	job := newTestJob(t, s.jobManager, prangeConfig())
	if err := runJob(context.Background(), s.jobManager, s.reportStore, job.ID); err != nil {
		t.Fatalf("runJob: %v", err)
	}
	job, _ = s.jobManager.GetJob(job.ID)
	return job
}

func TestServer_CreateEstimate(t *testing.T) {
	s := NewServer(":8080", nil)
	defer s.Shutdown(context.Background())

	body, _ := json.Marshal(prangeConfig())
	w := postEstimate(t, s, body)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Expected pending state, got %s", job.State)
	}
	if len(job.Key) != 64 {
		t.Errorf("Key should be a hex SHA3-256 digest, got %q", job.Key)
	}

	done := waitForJob(t, s.jobManager, job.ID)
	if done.State != StateCompleted {
		t.Errorf("Job should complete, got %s (%s)", done.State, done.Error)
	}
}

func TestServer_CreateEstimate_Invalid(t *testing.T) {
	s := NewServer(":8080", nil)
	defer s.Shutdown(context.Background())

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"n": `},
		{"unknown field", `{"n": 100, "k": 50, "w": 10, "radius": 3}`},
		{"invalid problem", `{"n": 100, "k": 50, "w": 0}`},
		{"unknown family", `{"family": "lwe", "n": 100}`},
		{"unknown algorithm", `{"n": 100, "k": 50, "w": 10, "excluded": ["Lattice"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postEstimate(t, s, []byte(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}

	if n := len(s.jobManager.ListJobs()); n != 0 {
		t.Errorf("invalid requests created %d jobs", n)
	}
}

func TestServer_ListEstimates(t *testing.T) {
	s := NewServer(":8080", nil)

	s.jobManager.CreateJob(prangeConfig(), "a")
	s.jobManager.CreateJob(mqConfig(), "b")

	w := get(t, s, "/api/v1/estimates")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var jobs []Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestServer_GetEstimate(t *testing.T) {
	s := NewServer(":8080", nil)
	job := completedJob(t, s)

	w := get(t, s, "/api/v1/estimates/"+job.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var got Job
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.ID != job.ID || got.State != StateCompleted {
		t.Errorf("got job %s in state %s", got.ID, got.State)
	}
	if got.Report == nil || got.Report.Fastest != "Prange" {
		t.Errorf("report missing or wrong: %+v", got.Report)
	}
}

func TestServer_GetEstimate_NotFound(t *testing.T) {
	s := NewServer(":8080", nil)

	for _, path := range []string{
		"/api/v1/estimates/nonexistent",
		"/api/v1/estimates/nonexistent/table",
		"/api/v1/estimates/nonexistent/stream",
	} {
		if w := get(t, s, path); w.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected status 404, got %d", path, w.Code)
		}
	}
}

func TestServer_EstimateTable(t *testing.T) {
	s := NewServer(":8080", nil)
	job := completedJob(t, s)

	w := get(t, s, "/api/v1/estimates/"+job.ID+"/table")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"ALGORITHM", "PARAMETERS", "Prange", "28.3"} {
		if !strings.Contains(body, want) {
			t.Errorf("table should contain %q:\n%s", want, body)
		}
	}

	w = get(t, s, "/api/v1/estimates/"+job.ID+"/table?precision=3&params=false")
	body = w.Body.String()
	if !strings.Contains(body, "28.292") {
		t.Errorf("table should use precision 3:\n%s", body)
	}
	if strings.Contains(body, "PARAMETERS") {
		t.Errorf("table should omit parameters:\n%s", body)
	}

	if w := get(t, s, "/api/v1/estimates/"+job.ID+"/table?precision=x"); w.Code != http.StatusBadRequest {
		t.Errorf("invalid precision: expected status 400, got %d", w.Code)
	}
}

func TestServer_EstimateTable_NotReady(t *testing.T) {
	s := NewServer(":8080", nil)
	job := s.jobManager.CreateJob(prangeConfig(), "k")

	w := get(t, s, "/api/v1/estimates/"+job.ID+"/table")
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestServer_EstimateStream_Completed(t *testing.T) {
	s := NewServer(":8080", nil)
	job := completedJob(t, s)

	w := get(t, s, "/api/v1/estimates/"+job.ID+"/stream")

	if w.Header().Get("Content-Type") != "text/event-stream" {
		t.Error("Expected text/event-stream content type")
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "data: {") {
		t.Fatalf("Expected SSE data, got %q", body)
	}

	var event ProgressEvent
	line := strings.TrimSuffix(strings.TrimPrefix(body, "data: "), "\n\n")
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if event.State != StateCompleted || event.Done != 1 {
		t.Errorf("event = %+v, want completed 1/1", event)
	}
}

func TestServer_EstimateStream_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := NewServer("localhost:0", nil)
	defer s.Shutdown(context.Background())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(mqConfig())
	resp, err := http.Post(srv.URL+"/api/v1/estimates", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	var job Job
	json.NewDecoder(resp.Body).Decode(&job)
	resp.Body.Close()

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err = client.Get(fmt.Sprintf("%s/api/v1/estimates/%s/stream", srv.URL, job.ID))
	if err != nil {
		t.Fatalf("Failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read stream: %v", err)
	}
	if !strings.Contains(string(data), `"state":"completed"`) {
		t.Errorf("stream should end with a completed event:\n%s", data)
	}
}

func TestServer_Reports(t *testing.T) {
	fs, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	s := NewServer(":8080", fs)
	job := completedJob(t, s)

	w := get(t, s, "/api/v1/reports")
	var infos []store.ReportInfo
	if err := json.NewDecoder(w.Body).Decode(&infos); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != job.Key {
		t.Fatalf("reports = %+v, want the job's report", infos)
	}

	w = get(t, s, "/api/v1/reports/"+job.Key)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+job.Key, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE: expected status 204, got %d", rec.Code)
	}

	if w := get(t, s, "/api/v1/reports/"+job.Key); w.Code != http.StatusNotFound {
		t.Errorf("after delete: expected status 404, got %d", w.Code)
	}
}

func TestServer_ReportsWithoutStore(t *testing.T) {
	s := NewServer(":8080", nil)

	w := get(t, s, "/api/v1/reports")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("got %d %q, want 200 []", w.Code, w.Body.String())
	}
	if w := get(t, s, "/api/v1/reports/abc"); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_CORS(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/estimates", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/estimates", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestEventBroadcaster(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job1")
	defer eb.Unsubscribe("job1", ch)

	eb.Broadcast(ProgressEvent{JobID: "job1", State: StateRunning, Done: 1, Total: 3, Algorithm: "Prange"})

	select {
	case got := <-ch:
		if got.Done != 1 || got.Algorithm != "Prange" {
			t.Errorf("received %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	// Events for other jobs are not delivered
	eb.Broadcast(ProgressEvent{JobID: "job2", State: StateRunning})
	select {
	case got := <-ch:
		t.Errorf("received event for another job: %+v", got)
	default:
	}
}

func TestEventBroadcaster_ReplaysLastEvent(t *testing.T) {
	eb := NewEventBroadcaster()

	eb.Broadcast(ProgressEvent{JobID: "job1", State: StateCompleted, Done: 2, Total: 2})

	ch := eb.Subscribe("job1")
	defer eb.Unsubscribe("job1", ch)

	select {
	case got := <-ch:
		if got.State != StateCompleted {
			t.Errorf("replayed state = %s, want completed", got.State)
		}
	default:
		t.Fatal("last event should be replayed on subscribe")
	}
}

func TestEventBroadcaster_CleanupJob(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job1")
	eb.CleanupJob("job1")

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cleanup")
	}

	// Unsubscribing after cleanup must not close the channel twice
	eb.Unsubscribe("job1", ch)
}
