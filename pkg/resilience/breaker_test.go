package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func failingCall(context.Context) error { return errors.New("fail") }
func okCall(context.Context) error      { return nil }

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := b.Call(ctx, failingCall); err == nil {
			t.Fatalf("expected failure on call %d", i)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open after threshold, got %s", b.State())
	}
	if err := b.Call(ctx, okCall); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open breaker must reject, got %v", err)
	}
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 2, Timeout: time.Minute})
	ctx := context.Background()

	b.Call(ctx, failingCall)
	b.Call(ctx, okCall)
	b.Call(ctx, failingCall)
	if b.State() != StateClosed {
		t.Errorf("interleaved success must keep the breaker closed, got %s", b.State())
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: 10 * time.Second})
	now := time.Now()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	b.Call(ctx, failingCall)
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	now = now.Add(11 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", b.State())
	}
	if err := b.Call(ctx, okCall); err != nil {
		t.Fatalf("probe call failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("successful probe must close the breaker, got %s", b.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: 10 * time.Second})
	now := time.Now()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	b.Call(ctx, failingCall)
	now = now.Add(11 * time.Second)
	b.Call(ctx, failingCall)
	if b.State() != StateOpen {
		t.Errorf("failed probe must reopen the breaker, got %s", b.State())
	}
}

func TestState_String(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half-open" {
		t.Errorf("unexpected state names")
	}
}
