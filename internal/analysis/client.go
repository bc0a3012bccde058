package analysis

import (
	"context"
	"strings"
	"time"

	"dashboard-gateway/internal/backend"
)

// API is the slice of the backend client the analysis job client needs.
type API interface {
	CreateAnalysis(ctx context.Context, req backend.CreateAnalysisRequest) (backend.CreateAnalysisResponse, error)
	AnalysisStatus(ctx context.Context, analysisID string) (backend.StatusResponse, error)
	AnalysisDetail(ctx context.Context, analysisID string) (map[string]any, error)
	DeleteAnalysis(ctx context.Context, analysisID string) error
	AnalysisHistory(ctx context.Context, detailed bool) ([]backend.HistoryEntry, error)
}

// Client submits analysis jobs and drives their poll loop to a terminal
// state. One Client serves one bearer identity.
type Client struct {
	api         API
	interval    time.Duration
	maxAttempts int
}

// NewClient constructs a job client. Defaults: 2s interval, 30 attempts.
func NewClient(api API, interval time.Duration, maxAttempts int) *Client {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	return &Client{api: api, interval: interval, maxAttempts: maxAttempts}
}

// Submit validates and submits an analysis request. An empty prompt fails
// synchronously without touching the network.
func (c *Client) Submit(ctx context.Context, req Request) (Job, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Job{}, backend.ValidationError("analysis request is required")
	}

	resp, err := c.api.CreateAnalysis(ctx, backend.CreateAnalysisRequest{
		QueryIDs:        req.QueryIDs,
		AnalysisRequest: req.Prompt,
	})
	if err != nil {
		return Job{}, err
	}

	return Job{
		ID:        resp.AnalysisID,
		Request:   req,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Poll drives the job to a terminal state: an immediate status check, then
// fixed-interval rechecks. Ticks are strictly sequential; the next request is
// not issued until the previous response has been processed. apply receives
// every snapshot, including the terminal one. Cancelling ctx stops the loop
// without a further apply. The returned Job is the final snapshot.
func (c *Client) Poll(ctx context.Context, job Job, apply func(Job)) Job {
	if apply == nil {
		apply = func(Job) {}
	}

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			job.Status = StatusCancelled
			return job
		}

		snapshot, err := c.api.AnalysisStatus(ctx, job.ID)
		job.Attempts = attempt

		switch {
		case err != nil && ctx.Err() != nil:
			job.Status = StatusCancelled
			return job
		case err != nil:
			job.Status = StatusFailed
			job.ErrorMessage = "Error checking analysis status: " + backend.UserMessage(err)
		case snapshot.Failed():
			job.Status = StatusFailed
			job.ErrorMessage = snapshot.Message
			if job.ErrorMessage == "" {
				job.ErrorMessage = "Analysis failed"
			}
		case snapshot.Completed():
			result := Normalize(snapshot.Raw)
			now := time.Now().UTC()
			job.Status = StatusCompleted
			job.Result = &result
			job.CompletedAt = &now
		default:
			// Pending, or an empty/unrecognized body. Empty bodies are
			// transient: they consume attempts and polling continues.
			job.Status = StatusPending
		}

		if job.Terminal() {
			apply(job)
			return job
		}
		apply(job)

		if attempt >= c.maxAttempts {
			job.Status = StatusTimedOut
			job.ErrorMessage = "Analysis timed out. Please try again."
			apply(job)
			return job
		}

		select {
		case <-ctx.Done():
			job.Status = StatusCancelled
			return job
		case <-time.After(c.interval):
		}
	}
}

// Detail fetches and normalizes the full result payload for a job, typically
// a history entry whose poll loop ran in an earlier session.
func (c *Client) Detail(ctx context.Context, analysisID string) (Result, error) {
	payload, err := c.api.AnalysisDetail(ctx, analysisID)
	if err != nil {
		return Result{}, err
	}
	return Normalize(payload), nil
}
