package analysis

import (
	"context"
	"sync"
	"time"
)

type activePoll struct {
	jobID  string
	gen    uint64
	cancel context.CancelFunc
}

// Registry holds job snapshots and tracks the single active poll per owner.
// Every snapshot write is gated on a monotonic generation token plus job id
// equality, so a superseded or cancelled loop can never clobber the state of
// the loop that replaced it.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]Job
	active map[string]*activePoll
	latest map[string]string
	gen    uint64
}

func NewRegistry() *Registry {
	return &Registry{
		jobs:   make(map[string]Job),
		active: make(map[string]*activePoll),
		latest: make(map[string]string),
	}
}

// Begin registers a job and its cancel func as the owner's active poll,
// cancelling any poll it supersedes. The returned generation must accompany
// every Apply from the loop it hands out.
func (r *Registry) Begin(owner string, job Job, cancel context.CancelFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.active[owner]; ok {
		prev.cancel()
	}
	r.gen++
	r.active[owner] = &activePoll{jobID: job.ID, gen: r.gen, cancel: cancel}
	r.jobs[job.ID] = job
	r.latest[owner] = job.ID
	return r.gen
}

// Apply records a snapshot if the (owner, generation, job id) triple still
// identifies the owner's active poll. Stale loops get false and mutate
// nothing. A terminal snapshot retires the active slot.
func (r *Registry) Apply(owner string, gen uint64, job Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ap, ok := r.active[owner]
	if !ok || ap.gen != gen || ap.jobID != job.ID {
		return false
	}
	r.jobs[job.ID] = job
	if job.Terminal() {
		delete(r.active, owner)
	}
	return true
}

// Get returns the latest snapshot for a job id.
func (r *Registry) Get(jobID string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	return job, ok
}

// Active returns the owner's in-flight job, if any.
func (r *Registry) Active(owner string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ap, ok := r.active[owner]
	if !ok {
		return Job{}, false
	}
	job, ok := r.jobs[ap.jobID]
	return job, ok
}

// Cancel stops the owner's active poll and marks its job cancelled. It
// returns the final snapshot, or false if nothing was in flight.
func (r *Registry) Cancel(owner string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ap, ok := r.active[owner]
	if !ok {
		return Job{}, false
	}
	ap.cancel()
	delete(r.active, owner)

	job := r.jobs[ap.jobID]
	if !job.Terminal() {
		now := time.Now().UTC()
		job.Status = StatusCancelled
		job.CompletedAt = &now
		r.jobs[ap.jobID] = job
	}
	return job, true
}

// Latest returns the owner's most recently submitted job, in flight or
// terminal. It survives the poll so the result is still there on the next
// page load.
func (r *Registry) Latest(owner string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.latest[owner]
	if !ok {
		return Job{}, false
	}
	job, ok := r.jobs[id]
	return job, ok
}

// Remove drops a job snapshot. Callers delete locally only after the backend
// has confirmed the deletion.
func (r *Registry) Remove(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, jobID)
	for owner, id := range r.latest {
		if id == jobID {
			delete(r.latest, owner)
		}
	}
}
