package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second},
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	for failures := 0; failures <= 80; failures++ {
		got := calculateBackoff(failures, 2*time.Second)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d) = %v, exceeds maxBackoff %v", failures, got, maxBackoff)
		}
	}
}

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestRefreshOnce(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	failing := &fakeRefresher{err: errors.New("down")}
	if got := refreshOnce(ctx, failing, 2, logger); got != 3 {
		t.Fatalf("refreshOnce failure count = %d, want 3", got)
	}

	ok := &fakeRefresher{}
	if got := refreshOnce(ctx, ok, 3, logger); got != 0 {
		t.Fatalf("refreshOnce after success = %d, want 0", got)
	}
}

func TestRefreshOnce_CancelledContextIsNotAFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	target := &fakeRefresher{err: context.Canceled}
	if got := refreshOnce(ctx, target, 1, zap.NewNop()); got != 1 {
		t.Fatalf("refreshOnce on cancelled ctx = %d, want 1", got)
	}
}

func TestStartRefresher_RunsWhileActive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target := &fakeRefresher{}
	StartRefresher(ctx, target, 5*time.Millisecond, nil, nil)

	deadline := time.Now().Add(2 * time.Second)
	for target.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("refresher ran %d times, want at least 2", target.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartRefresher_SkipsWhenInactive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var checks atomic.Int32
	target := &fakeRefresher{}
	StartRefresher(ctx, target, 5*time.Millisecond, func() bool {
		checks.Add(1)
		return false
	}, zap.NewNop())

	deadline := time.Now().Add(2 * time.Second)
	for checks.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("active checked %d times, want at least 3", checks.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := target.calls.Load(); n != 0 {
		t.Fatalf("Refresh called %d times while inactive", n)
	}
}

func TestStartRefresher_ZeroIntervalIsOff(t *testing.T) {
	target := &fakeRefresher{}
	StartRefresher(context.Background(), target, 0, nil, nil)
	time.Sleep(20 * time.Millisecond)
	if n := target.calls.Load(); n != 0 {
		t.Fatalf("Refresh called %d times with interval 0", n)
	}
}
