package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStore_CallHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	records := []CallRecord{
		{CallID: "a", Model: "powerlaw", Convention: "C", Bins: 10, Spectrum: 1, Status: "success", Duration: 150 * time.Microsecond},
		{CallID: "b", Model: "wabs", Convention: "F77Single", Bins: 4, Spectrum: 2, Status: "error", ErrorMessage: "boom", Duration: time.Millisecond},
	}
	for _, rec := range records {
		if _, err := s.InsertCall(ctx, rec); err != nil {
			t.Fatalf("InsertCall(%s) error = %v", rec.CallID, err)
		}
	}

	n, err := s.CountCalls(ctx)
	if err != nil || n != 2 {
		t.Fatalf("CountCalls() = %d, %v, want 2", n, err)
	}

	recent, err := s.RecentCalls(ctx, 10)
	if err != nil {
		t.Fatalf("RecentCalls() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(RecentCalls) = %d, want 2", len(recent))
	}
	if recent[0].CallID != "b" || recent[0].ErrorMessage != "boom" || recent[0].Duration != time.Millisecond {
		t.Errorf("RecentCalls()[0] = %+v", recent[0])
	}
	if recent[1].ErrorMessage != "" {
		t.Errorf("RecentCalls()[1].ErrorMessage = %q, want empty", recent[1].ErrorMessage)
	}
}

func TestStore_CallHistoryRejectsBadStatus(t *testing.T) {
	s := newTestStore(t)
	_, err := s.InsertCall(context.Background(), CallRecord{CallID: "x", Model: "m", Convention: "C", Status: "maybe"})
	if err == nil {
		t.Error("InsertCall() with invalid status expected error")
	}
}

func TestStore_PruneHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []string{"old", "new"} {
		if _, err := s.InsertCall(ctx, CallRecord{CallID: id, Model: "m", Convention: "C", Status: "success"}); err != nil {
			t.Fatalf("InsertCall() error = %v", err)
		}
	}
	if _, err := s.db.DB().Exec(`UPDATE call_history SET created_at = datetime('now', '-30 days') WHERE call_id = 'old'`); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	result, err := s.PruneHistory(ctx, 7)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", result.Deleted)
	}
	if n, _ := s.CountCalls(ctx); n != 1 {
		t.Errorf("CountCalls() after prune = %d, want 1", n)
	}

	if _, err := s.PruneHistory(ctx, -1); err == nil {
		t.Error("PruneHistory(-1) expected error")
	}
}

func TestStore_StartPruneScheduler(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan PruneResult, 1)
	s.StartPruneScheduler(ctx, PruneSchedulerConfig{
		RetentionDays: 1,
		Interval:      time.Hour,
		OnPrune: func(result PruneResult, err error) {
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("prune error = %v", err)
			}
			select {
			case done <- result:
			default:
			}
		},
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not run an initial prune")
	}
}

func TestHistoryWriteHandler(t *testing.T) {
	s := newTestStore(t)

	var handlerErrs []error
	w := NewAsyncWriter(HistoryWriteHandler(s, func(err error) { handlerErrs = append(handlerErrs, err) }))
	w.Start()
	for i := 0; i < 5; i++ {
		if !w.Write(CallRecord{CallID: "c", Model: "powerlaw", Convention: "C", Status: "success"}) {
			t.Fatalf("Write #%d refused", i)
		}
	}
	w.Stop()

	if len(handlerErrs) != 0 {
		t.Errorf("handler errors = %v", handlerErrs)
	}
	if n, _ := s.CountCalls(context.Background()); n != 5 {
		t.Errorf("CountCalls() = %d, want 5", n)
	}
}
