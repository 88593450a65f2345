package breaker

import (
	"testing"
	"time"

	"newsroom/config"
)

func TestAdmitClosedByDefault(t *testing.T) {
	r := New()
	if !r.Admit("source-a") {
		t.Fatalf("expected unseen source to be admitted")
	}
}

func TestRecordFailureOpensAtThreshold(t *testing.T) {
	r := New()
	for i := 0; i < config.BreakerFailureThreshold-1; i++ {
		r.RecordFailure("source-a")
		if !r.Admit("source-a") {
			t.Fatalf("breaker opened early at failure %d", i+1)
		}
	}

	r.RecordFailure("source-a")
	if r.Admit("source-a") {
		t.Fatalf("expected breaker to be open at threshold %d", config.BreakerFailureThreshold)
	}
}

func TestRecordSuccessClearsFailures(t *testing.T) {
	r := New()
	r.RecordFailure("source-a")
	r.RecordFailure("source-a")
	r.RecordSuccess("source-a")

	snap := r.Snapshot()
	if _, ok := snap["source-a"]; ok {
		t.Fatalf("expected state to be cleared after success")
	}
}

func TestAdmitReopensAfterWindowElapses(t *testing.T) {
	r := New()
	for i := 0; i < config.BreakerFailureThreshold; i++ {
		r.RecordFailure("source-a")
	}
	if r.Admit("source-a") {
		t.Fatalf("expected breaker open immediately after threshold")
	}

	r.states["source-a"].LastFailureAt = time.Now().Add(-time.Duration(config.BreakerOpenWindowMS+1000) * time.Millisecond)
	if !r.Admit("source-a") {
		t.Fatalf("expected breaker to re-admit once the open window elapsed")
	}

	snap := r.Snapshot()
	if _, ok := snap["source-a"]; ok {
		t.Fatalf("expected stale state to be discarded on re-admit")
	}
}

func TestResetIsUnconditional(t *testing.T) {
	r := New()
	for i := 0; i < config.BreakerFailureThreshold; i++ {
		r.RecordFailure("source-a")
	}
	r.Reset("source-a")
	if !r.Admit("source-a") {
		t.Fatalf("expected Reset to unconditionally clear open state")
	}
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	r := New()
	r.RecordFailure("source-a")

	snap := r.Snapshot()
	state := snap["source-a"]
	state.Failures = 999

	fresh := r.Snapshot()
	if fresh["source-a"].Failures == 999 {
		t.Fatalf("expected Snapshot to return a copy, mutation leaked into registry")
	}
}
