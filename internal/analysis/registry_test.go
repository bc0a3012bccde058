package analysis

import "testing"

func TestRegistrySupersedeCancelsPreviousPoll(t *testing.T) {
	r := NewRegistry()
	cancelled := false

	gen1 := r.Begin("owner", Job{ID: "a", Status: StatusPending}, func() { cancelled = true })
	gen2 := r.Begin("owner", Job{ID: "b", Status: StatusPending}, func() {})

	if !cancelled {
		t.Fatal("superseded poll was not cancelled")
	}
	if gen2 <= gen1 {
		t.Fatalf("generation did not advance: %d then %d", gen1, gen2)
	}
}

func TestRegistryRejectsStaleApply(t *testing.T) {
	r := NewRegistry()
	gen1 := r.Begin("owner", Job{ID: "a", Status: StatusPending}, func() {})
	gen2 := r.Begin("owner", Job{ID: "b", Status: StatusPending}, func() {})

	if r.Apply("owner", gen1, Job{ID: "a", Status: StatusCompleted}) {
		t.Fatal("stale generation was applied")
	}
	if job, _ := r.Get("a"); job.Status != StatusPending {
		t.Fatalf("stale apply mutated job a: %q", job.Status)
	}

	if !r.Apply("owner", gen2, Job{ID: "b", Status: StatusPending, Attempts: 2}) {
		t.Fatal("current generation was rejected")
	}
	if job, _ := r.Get("b"); job.Attempts != 2 {
		t.Fatalf("current apply not recorded: %+v", job)
	}
}

func TestRegistryApplyChecksJobID(t *testing.T) {
	r := NewRegistry()
	gen := r.Begin("owner", Job{ID: "a", Status: StatusPending}, func() {})

	if r.Apply("owner", gen, Job{ID: "other", Status: StatusCompleted}) {
		t.Fatal("snapshot for a different job id was applied")
	}
}

func TestRegistryTerminalApplyRetiresActiveSlot(t *testing.T) {
	r := NewRegistry()
	gen := r.Begin("owner", Job{ID: "a", Status: StatusPending}, func() {})

	if !r.Apply("owner", gen, Job{ID: "a", Status: StatusCompleted}) {
		t.Fatal("terminal apply rejected")
	}
	if _, ok := r.Active("owner"); ok {
		t.Fatal("active slot survived a terminal snapshot")
	}
	if job, ok := r.Get("a"); !ok || job.Status != StatusCompleted {
		t.Fatalf("terminal snapshot lost: %+v", job)
	}
}

func TestRegistryLatestSurvivesTerminalSnapshot(t *testing.T) {
	r := NewRegistry()
	gen := r.Begin("owner", Job{ID: "a", Status: StatusPending}, func() {})
	r.Apply("owner", gen, Job{ID: "a", Status: StatusCompleted})

	job, ok := r.Latest("owner")
	if !ok || job.Status != StatusCompleted {
		t.Fatalf("latest = %+v ok=%v, want the completed job", job, ok)
	}

	r.Remove("a")
	if _, ok := r.Latest("owner"); ok {
		t.Fatal("latest survived a remove")
	}
}

func TestRegistryCancelMarksJobCancelled(t *testing.T) {
	r := NewRegistry()
	stopped := false
	r.Begin("owner", Job{ID: "a", Status: StatusPending}, func() { stopped = true })

	job, ok := r.Cancel("owner")
	if !ok || !stopped {
		t.Fatalf("cancel did not stop the poll: ok=%v stopped=%v", ok, stopped)
	}
	if job.Status != StatusCancelled {
		t.Fatalf("status = %q, want cancelled", job.Status)
	}
	if _, again := r.Cancel("owner"); again {
		t.Fatal("second cancel found an active poll")
	}
}
