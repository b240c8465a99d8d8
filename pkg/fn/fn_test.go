package fn

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() || ok.IsErr() {
		t.Errorf("Ok result misreports state")
	}
	if v, err := ok.Unwrap(); v != 42 || err != nil {
		t.Errorf("Unwrap = (%v, %v)", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() || !e.IsErr() {
		t.Errorf("Err result misreports state")
	}
	if got := e.UnwrapOr(7); got != 7 {
		t.Errorf("UnwrapOr = %d, want 7", got)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(1, nil); !r.IsOk() {
		t.Errorf("FromPair with nil error must be ok")
	}
	if r := FromPair(0, errors.New("x")); !r.IsErr() {
		t.Errorf("FromPair with error must be err")
	}
}

func TestCollect(t *testing.T) {
	all := Collect([]Result[int]{Ok(1), Ok(2)})
	vs, err := all.Unwrap()
	if err != nil || len(vs) != 2 {
		t.Errorf("Collect = (%v, %v)", vs, err)
	}

	mixed := Collect([]Result[int]{Ok(1), Err[int](errors.New("bad"))})
	if !mixed.IsErr() {
		t.Errorf("Collect with a failure must be err")
	}
}

func TestMapFilterChunk(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	if len(doubled) != 3 || doubled[2] != 6 {
		t.Errorf("Map = %v", doubled)
	}

	odd := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 1 })
	if len(odd) != 2 {
		t.Errorf("Filter = %v", odd)
	}

	chunks := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(chunks) != 3 || len(chunks[2]) != 1 {
		t.Errorf("Chunk = %v", chunks)
	}
	if got := Chunk([]int{}, 2); len(got) != 0 {
		t.Errorf("Chunk of empty = %v", got)
	}
}

func TestParMap_PreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	out := ParMap(in, 8, func(v int) int { return v * v })
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestParMap_BoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int64
	ParMap(make([]int, 50), 4, func(int) int {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
		return 0
	})
	if peak.Load() > 4 {
		t.Errorf("peak concurrency %d exceeds worker bound", peak.Load())
	}
}

func TestFanOut(t *testing.T) {
	out := FanOut(
		func() int { return 1 },
		func() int { return 2 },
	)
	if len(out) != 2 || out[0] != 1 || out[1] != 2 {
		t.Errorf("FanOut = %v", out)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	r := Retry(context.Background(), opts, func(context.Context) Result[string] {
		attempts++
		if attempts < 3 {
			return Errf[string]("attempt %d failed", attempts)
		}
		return Ok("done")
	})
	if v, err := r.Unwrap(); err != nil || v != "done" {
		t.Errorf("Retry = (%q, %v)", v, err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	r := Retry(context.Background(), opts, func(context.Context) Result[int] {
		return Err[int](errors.New("always"))
	})
	if !r.IsErr() {
		t.Errorf("expected error after budget exhaustion")
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := RetryOpts{MaxAttempts: 5, InitialWait: 50 * time.Millisecond, MaxWait: time.Second}
	r := Retry(ctx, opts, func(context.Context) Result[int] {
		return Err[int](errors.New("fail"))
	})
	if !r.IsErr() {
		t.Errorf("expected error under cancelled context")
	}
}
