package holding

import (
	"testing"

	"newsroom/types"
)

func TestEnqueueDrainRoundTrip(t *testing.T) {
	q := New()
	q.Enqueue([]types.Article{{ID: "a1", Title: "Quiet Tuesday"}, {ID: "a2", Title: "Local Fair Opens"}})

	if got := q.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}

	items := q.Drain()
	if len(items) != 2 {
		t.Fatalf("Drain() returned %d items, want 2", len(items))
	}
	if q.Size() != 0 {
		t.Fatalf("expected queue empty after drain, got size %d", q.Size())
	}
}

func TestEnqueueSignalsPreemptOnBreakingNews(t *testing.T) {
	q := New()
	q.Enqueue([]types.Article{{ID: "a1", Title: "Breaking: market crash rattles investors"}})

	select {
	case <-q.Preempt:
	default:
		t.Fatalf("expected a preemption signal for a breaking-news item")
	}
}

func TestPreemptSignalsAtMostOncePerBatch(t *testing.T) {
	q := New()
	q.Enqueue([]types.Article{
		{ID: "a1", Title: "Breaking: coup attempt reported"},
		{ID: "a2", Title: "Urgent: emergency declared downtown"},
	})

	select {
	case <-q.Preempt:
	default:
		t.Fatalf("expected one preemption signal")
	}
	select {
	case <-q.Preempt:
		t.Fatalf("expected no second signal within the same batch")
	default:
	}

	q.Drain()
	q.Enqueue([]types.Article{{ID: "a3", Title: "Breaking: another crisis unfolds"}})
	select {
	case <-q.Preempt:
	default:
		t.Fatalf("expected a fresh preemption signal after Drain resets the batch flag")
	}
}

func TestByCategoryGroupsWithoutDraining(t *testing.T) {
	q := New()
	q.Enqueue([]types.Article{
		{ID: "a1", Category: types.CategoryUSNational},
		{ID: "a2", Category: types.CategoryInternational},
		{ID: "a3", Category: types.CategoryUSNational},
	})

	grouped := q.ByCategory()
	if len(grouped[types.CategoryUSNational]) != 2 {
		t.Fatalf("expected 2 US_NATIONAL items, got %d", len(grouped[types.CategoryUSNational]))
	}
	if q.Size() != 3 {
		t.Fatalf("ByCategory must not drain the queue, size = %d", q.Size())
	}
}

func TestClearDiscardsItems(t *testing.T) {
	q := New()
	q.Enqueue([]types.Article{{ID: "a1"}})
	q.Clear()
	if q.Size() != 0 {
		t.Fatalf("expected empty queue after Clear, got size %d", q.Size())
	}
}
