package analysis

import "time"

// Job statuses. The first three mirror the backend's lifecycle; the last two
// exist only on the client side of the poll loop.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusTimedOut  = "timed_out"
)

// Request is the user's analysis submission. Immutable once submitted.
type Request struct {
	Prompt   string   `json:"analysis_request"`
	QueryIDs []string `json:"query_ids"`
}

// Job is the client-side view of a backend analysis job. Status, Result and
// ErrorMessage transition together; only the poll loop mutates them.
type Job struct {
	ID           string     `json:"id"`
	Request      Request    `json:"request"`
	Status       string     `json:"status"`
	Result       *Result    `json:"result,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	Attempts     int        `json:"attempts"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Terminal reports whether the job reached a final state.
func (j Job) Terminal() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	}
	return false
}
