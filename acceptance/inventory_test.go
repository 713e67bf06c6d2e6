package acceptance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/civitech/hireengine-backend/inventory"
)

func TestRecordDelta_RequiresBaseline(t *testing.T) {
	th := NewTestHarness(t)
	defer th.Close()
	ctx := context.Background()

	st := th.CreateUnseededStation(t, "New Dock", 4)

	err := th.Inv.RecordDelta(ctx, th.DB, st, th.Now, -1)
	if !errors.Is(err, inventory.ErrNoBaseline) {
		t.Errorf("expected ErrNoBaseline, got %v", err)
	}
}

func TestCountAsOf_FallsBackToInitialCount(t *testing.T) {
	th := NewTestHarness(t)
	defer th.Close()
	ctx := context.Background()

	st := th.CreateUnseededStation(t, "New Dock", 4)

	got, err := th.Inv.CountAsOf(ctx, st, th.Now)
	if err != nil {
		t.Fatalf("failed to read count: %v", err)
	}
	if got != 4 {
		t.Errorf("expected fallback to initial count 4, got %d", got)
	}
}

func TestCountAsOf_PicksLatestBeforeTimestamp(t *testing.T) {
	th := NewTestHarness(t)
	defer th.Close()
	ctx := context.Background()

	st := th.CreateStation(t, "Town Hall", 5) // seeded at Now-1h

	if err := th.Inv.RecordDelta(ctx, th.DB, st, th.Now.Add(-30*time.Minute), -2); err != nil {
		t.Fatalf("failed to record delta: %v", err)
	}
	if err := th.Inv.RecordDelta(ctx, th.DB, st, th.Now.Add(-10*time.Minute), 1); err != nil {
		t.Fatalf("failed to record delta: %v", err)
	}

	cases := []struct {
		at   time.Duration // offset from Now
		want int
	}{
		{-45 * time.Minute, 5},
		{-30 * time.Minute, 3},
		{-20 * time.Minute, 3},
		{0, 4},
	}
	for _, tc := range cases {
		got, err := th.Inv.CountAsOf(ctx, st, th.Now.Add(tc.at))
		if err != nil {
			t.Fatalf("failed to read count at %v: %v", tc.at, err)
		}
		if got != tc.want {
			t.Errorf("count at %v: expected %d, got %d", tc.at, tc.want, got)
		}
	}
}

func TestSeries_OrderedAndBounded(t *testing.T) {
	th := NewTestHarness(t)
	defer th.Close()
	ctx := context.Background()

	st := th.CreateStation(t, "Town Hall", 5)
	for i := 1; i <= 3; i++ {
		ts := th.Now.Add(time.Duration(i) * time.Minute)
		if err := th.Inv.RecordDelta(ctx, th.DB, st, ts, -1); err != nil {
			t.Fatalf("failed to record delta: %v", err)
		}
	}

	events, err := th.Inv.Series(ctx, st, th.Now, th.Now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("failed to read series: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events in window, got %d", len(events))
	}
	if events[0].Count != 4 || events[1].Count != 3 {
		t.Errorf("expected counts 4,3, got %d,%d", events[0].Count, events[1].Count)
	}
	if !events[0].RecordedAt.Before(events[1].RecordedAt) {
		t.Errorf("series not in ascending time order")
	}
}

// Concurrent moves between the same pair of stations must not lose or
// double-count a delta: the final recorded counts have to reflect every
// move exactly once.
func TestMove_ConcurrentSerialization(t *testing.T) {
	th := NewTestHarness(t)
	defer th.Close()
	ctx := context.Background()

	const moves = 8
	from := th.CreateStation(t, "Town Hall", moves)
	to := th.CreateStation(t, "Rail Station", 0)
	for i := 0; i < moves; i++ {
		th.CreateBike(t, "CITY-00"+string(rune('1'+i)), from)
	}

	var wg sync.WaitGroup
	errs := make(chan error, moves)
	for i := 0; i < moves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := th.Mgr.Move(ctx, from, to); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("move failed: %v", err)
	}

	gotFrom, err := th.Inv.CountAsOf(ctx, from, th.Now.Add(time.Second))
	if err != nil {
		t.Fatalf("failed to read count: %v", err)
	}
	gotTo, err := th.Inv.CountAsOf(ctx, to, th.Now.Add(time.Second))
	if err != nil {
		t.Fatalf("failed to read count: %v", err)
	}
	if gotFrom != 0 || gotTo != moves {
		t.Errorf("expected counts 0 and %d after %d moves, got %d and %d",
			moves, moves, gotFrom, gotTo)
	}

	// every intermediate count appears exactly once, no gaps
	events, err := th.Inv.Series(ctx, to, th.Now.Add(-time.Second), th.Now.Add(time.Second))
	if err != nil {
		t.Fatalf("failed to read series: %v", err)
	}
	if len(events) != moves {
		t.Fatalf("expected %d events at destination, got %d", moves, len(events))
	}
	for i, ev := range events {
		if ev.Count != i+1 {
			t.Errorf("event %d: expected count %d, got %d", i, i+1, ev.Count)
		}
	}
}
