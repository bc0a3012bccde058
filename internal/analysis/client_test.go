package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dashboard-gateway/internal/backend"
)

type fakeAPI struct {
	mu         sync.Mutex
	statusFn   func(call int) (backend.StatusResponse, error)
	statusCall int
	createResp backend.CreateAnalysisResponse
	createErr  error
	createHits int
	deleted    []string
}

func (f *fakeAPI) CreateAnalysis(_ context.Context, _ backend.CreateAnalysisRequest) (backend.CreateAnalysisResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createHits++
	return f.createResp, f.createErr
}

func (f *fakeAPI) AnalysisStatus(_ context.Context, _ string) (backend.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCall++
	return f.statusFn(f.statusCall)
}

func (f *fakeAPI) AnalysisDetail(_ context.Context, _ string) (map[string]any, error) {
	return nil, nil
}

func (f *fakeAPI) DeleteAnalysis(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) AnalysisHistory(_ context.Context, _ bool) ([]backend.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeAPI) statusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCall
}

func pendingStatus() (backend.StatusResponse, error) {
	return backend.StatusResponse{Status: "pending", Raw: map[string]any{"status": "pending"}}, nil
}

func completedStatus() (backend.StatusResponse, error) {
	raw := map[string]any{
		"status":  "completed",
		"results": map[string]any{"insights": []any{"x"}},
	}
	return backend.StatusResponse{Status: "completed", Results: raw["results"].(map[string]any), Raw: raw}, nil
}

func TestSubmitRejectsBlankPromptWithoutNetwork(t *testing.T) {
	api := &fakeAPI{}
	client := NewClient(api, time.Millisecond, 5)

	_, err := client.Submit(context.Background(), Request{Prompt: "   "})
	if !errors.Is(err, backend.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.createHits != 0 {
		t.Fatalf("expected no create calls, got %d", api.createHits)
	}
}

func TestSubmitStartsPendingJob(t *testing.T) {
	api := &fakeAPI{createResp: backend.CreateAnalysisResponse{AnalysisID: "abc", Status: "processing"}}
	client := NewClient(api, time.Millisecond, 5)

	job, err := client.Submit(context.Background(), Request{Prompt: "top sellers", QueryIDs: []string{"q1"}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.ID != "abc" {
		t.Fatalf("job id = %q, want abc", job.ID)
	}
	if job.Status != StatusPending {
		t.Fatalf("status = %q, want pending", job.Status)
	}
}

func TestPollImmediateCompletionTakesOneTick(t *testing.T) {
	api := &fakeAPI{statusFn: func(int) (backend.StatusResponse, error) {
		return completedStatus()
	}}
	client := NewClient(api, time.Millisecond, 30)

	var applied []Job
	final := client.Poll(context.Background(), Job{ID: "abc", Status: StatusPending}, func(j Job) {
		applied = append(applied, j)
	})

	if final.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", final.Status)
	}
	if final.Attempts != 1 || api.statusCalls() != 1 {
		t.Fatalf("attempts = %d, calls = %d, want one tick", final.Attempts, api.statusCalls())
	}
	if final.Result == nil || len(final.Result.Insights) != 1 || final.Result.Insights[0].Description != "x" {
		t.Fatalf("result not normalized: %+v", final.Result)
	}
	if len(applied) != 1 {
		t.Fatalf("applied %d snapshots, want 1", len(applied))
	}
}

func TestPollAlwaysPendingHitsCeiling(t *testing.T) {
	api := &fakeAPI{statusFn: func(int) (backend.StatusResponse, error) {
		return pendingStatus()
	}}
	client := NewClient(api, time.Millisecond, 5)

	final := client.Poll(context.Background(), Job{ID: "abc", Status: StatusPending}, nil)

	if final.Status != StatusTimedOut {
		t.Fatalf("status = %q, want timed_out", final.Status)
	}
	if api.statusCalls() != 5 {
		t.Fatalf("status calls = %d, want the ceiling of 5", api.statusCalls())
	}
	if final.ErrorMessage == "" {
		t.Fatal("expected a timeout message")
	}
}

func TestPollStopsOnFailureTick(t *testing.T) {
	api := &fakeAPI{statusFn: func(call int) (backend.StatusResponse, error) {
		if call < 3 {
			return pendingStatus()
		}
		return backend.StatusResponse{
			Status:  "failed",
			Message: "analysis engine unavailable",
			Raw:     map[string]any{"status": "failed"},
		}, nil
	}}
	client := NewClient(api, time.Millisecond, 30)

	final := client.Poll(context.Background(), Job{ID: "abc", Status: StatusPending}, nil)

	if final.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", final.Status)
	}
	if api.statusCalls() != 3 {
		t.Fatalf("status calls = %d, want 3", api.statusCalls())
	}
	if final.ErrorMessage != "analysis engine unavailable" {
		t.Fatalf("error message = %q", final.ErrorMessage)
	}
}

func TestPollEmptyBodiesAreTransient(t *testing.T) {
	api := &fakeAPI{statusFn: func(call int) (backend.StatusResponse, error) {
		if call < 3 {
			return backend.StatusResponse{}, nil
		}
		return completedStatus()
	}}
	client := NewClient(api, time.Millisecond, 30)

	final := client.Poll(context.Background(), Job{ID: "abc", Status: StatusPending}, nil)

	if final.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed after transient empties", final.Status)
	}
	if final.Attempts != 3 {
		t.Fatalf("attempts = %d, empty bodies must consume attempts", final.Attempts)
	}
}

func TestPollSuccessFlagWithoutStatusCompletes(t *testing.T) {
	api := &fakeAPI{statusFn: func(int) (backend.StatusResponse, error) {
		yes := true
		results := map[string]any{"insights": []any{"x"}}
		return backend.StatusResponse{
			Success: &yes,
			Results: results,
			Raw:     map[string]any{"success": true, "results": results},
		}, nil
	}}
	client := NewClient(api, time.Millisecond, 30)

	final := client.Poll(context.Background(), Job{ID: "abc", Status: StatusPending}, nil)

	if final.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", final.Status)
	}
	if final.Result == nil || len(final.Result.Insights) != 1 || final.Result.Insights[0].Description != "x" {
		t.Fatalf("result = %+v, want insights [x]", final.Result)
	}
}

func TestPollStatusErrorFailsJob(t *testing.T) {
	api := &fakeAPI{statusFn: func(int) (backend.StatusResponse, error) {
		return backend.StatusResponse{}, &backend.Error{Kind: backend.KindServer, Status: 500, Message: "Server error: 500"}
	}}
	client := NewClient(api, time.Millisecond, 30)

	final := client.Poll(context.Background(), Job{ID: "abc", Status: StatusPending}, nil)

	if final.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", final.Status)
	}
	if api.statusCalls() != 1 {
		t.Fatalf("status calls = %d, fetch errors must not be retried", api.statusCalls())
	}
}

func TestPollCancelStopsWithoutFurtherApplies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{statusFn: func(call int) (backend.StatusResponse, error) {
		if call == 2 {
			cancel()
		}
		return pendingStatus()
	}}
	client := NewClient(api, time.Hour, 30)

	done := make(chan Job, 1)
	var mu sync.Mutex
	applied := 0
	go func() {
		done <- client.Poll(ctx, Job{ID: "abc", Status: StatusPending}, func(Job) {
			mu.Lock()
			applied++
			mu.Unlock()
		})
	}()

	// First tick is immediate; the second never arrives because the interval
	// is an hour, so cancellation must break the wait.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case final := <-done:
		if final.Status != StatusCancelled {
			t.Fatalf("status = %q, want cancelled", final.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not stop after cancel")
	}

	mu.Lock()
	got := applied
	mu.Unlock()
	if got != 1 {
		t.Fatalf("applied %d snapshots, want only the pre-cancel one", got)
	}
}
