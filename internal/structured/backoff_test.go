package structured

import (
	"context"
	"testing"
	"time"
)

func TestBackoffDelay_DoublesFromBase(t *testing.T) {
	orig := randFloat
	randFloat = func() float64 { return 0.5 } // jitter factor exactly 1
	defer func() { randFloat = orig }()

	base := 1 * time.Second
	max := 60 * time.Second
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}

	for i, w := range want {
		if got := backoffDelay(i+1, base, max, 0.2); got != w {
			t.Errorf("backoffDelay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoffDelay_Capped(t *testing.T) {
	orig := randFloat
	randFloat = func() float64 { return 1 } // worst-case upward jitter
	defer func() { randFloat = orig }()

	max := 60 * time.Second
	if got := backoffDelay(30, time.Second, max, 0.2); got != max {
		t.Errorf("late attempts should be capped at %v, got %v", max, got)
	}
	// Shift overflow must also land on the cap, not a negative duration.
	if got := backoffDelay(200, time.Second, max, 0.2); got != max {
		t.Errorf("overflowing shift should be capped at %v, got %v", max, got)
	}
}

func TestBackoffDelay_JitterWindow(t *testing.T) {
	orig := randFloat
	defer func() { randFloat = orig }()

	base := 4 * time.Second
	for _, r := range []float64{0, 0.25, 0.5, 0.75, 1} {
		randFloat = func() float64 { return r }
		got := backoffDelay(1, base, time.Minute, 0.2)
		lo := time.Duration(float64(base) * 0.8)
		hi := time.Duration(float64(base) * 1.2)
		if got < lo || got > hi {
			t.Errorf("rand=%v: delay %v outside [%v, %v]", r, got, lo, hi)
		}
	}
}

func TestSleepCtx_CancelUnblocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); err == nil {
		t.Fatal("expected context error from cancelled sleep")
	}
}
