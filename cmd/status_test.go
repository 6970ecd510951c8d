package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/isdestimator/internal/server"
)

func TestStatus_ListAndGet(t *testing.T) {
	srv := server.NewServer(":0", nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	client := ts.Client()

	var out bytes.Buffer
	if err := listJobs(&out, client, ts.URL+"/api/v1/estimates"); err != nil {
		t.Fatalf("listJobs failed: %v", err)
	}
	if !strings.Contains(out.String(), "No jobs found") {
		t.Errorf("Unexpected output: %s", out.String())
	}

	body, _ := json.Marshal(server.JobConfig{Family: server.FamilyMQ, N: 10, M: 12, Q: 2})
	resp, err := client.Post(ts.URL+"/api/v1/estimates", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	var job server.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	deadline := time.Now().Add(30 * time.Second)
	for {
		var current server.Job
		if _, err := fetchJSON(client, ts.URL+"/api/v1/estimates/"+job.ID, &current); err != nil {
			t.Fatal(err)
		}
		if current.Finished() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Job did not finish")
		}
		time.Sleep(20 * time.Millisecond)
	}

	out.Reset()
	if err := listJobs(&out, client, ts.URL+"/api/v1/estimates"); err != nil {
		t.Fatalf("listJobs failed: %v", err)
	}
	for _, want := range []string{job.ID, "MQ(n=10, m=12, q=2)", "completed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("List output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := getJobStatus(&out, client, ts.URL+"/api/v1/estimates/"+job.ID, job.ID); err != nil {
		t.Fatalf("getJobStatus failed: %v", err)
	}
	for _, want := range []string{"Key: " + job.Key, "ExhaustiveSearch", "F5"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Status output missing %q:\n%s", want, out.String())
		}
	}
}

func TestStatus_NotFound(t *testing.T) {
	ts := httptest.NewServer(server.NewServer(":0", nil).Handler())
	defer ts.Close()

	var out bytes.Buffer
	err := getJobStatus(&out, ts.Client(), ts.URL+"/api/v1/estimates/missing", "missing")
	if err == nil || !strings.Contains(err.Error(), "job not found") {
		t.Errorf("Expected job not found, got %v", err)
	}
}

func TestStatus_ServerDown(t *testing.T) {
	client := &http.Client{Timeout: time.Second}
	if err := listJobs(&bytes.Buffer{}, client, "http://127.0.0.1:1/api/v1/estimates"); err == nil {
		t.Error("Expected a connection error")
	}
}

func TestDescribeConfig(t *testing.T) {
	bound := 12.0
	got := describeConfig(server.JobConfig{Family: server.FamilySD, N: 100, K: 50, W: 10, MemoryBound: &bound})
	if want := "SD(n=100, k=50, w=10), memory bound 12"; got != want {
		t.Errorf("describeConfig = %q, want %q", got, want)
	}
}
