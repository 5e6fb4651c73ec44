package fn

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResult(t *testing.T) {
	ok := Ok(7)
	if !ok.IsOk() || ok.IsErr() {
		t.Fatal("Ok result misreported")
	}
	if v, err := ok.Unwrap(); v != 7 || err != nil {
		t.Fatalf("Unwrap = %d, %v", v, err)
	}

	boom := errors.New("boom")
	bad := Err[int](boom)
	if bad.IsOk() {
		t.Fatal("Err result misreported")
	}
	if bad.UnwrapOr(42) != 42 {
		t.Fatal("UnwrapOr fallback not used")
	}
	if ok.UnwrapOr(42) != 7 {
		t.Fatal("UnwrapOr overrode a value")
	}

	if v, _ := FromPair(3, nil).Unwrap(); v != 3 {
		t.Fatal("FromPair value lost")
	}
	if _, err := FromPair(0, boom).Unwrap(); !errors.Is(err, boom) {
		t.Fatal("FromPair error lost")
	}

	doubled := ok.Map(func(v int) int { return v * 2 })
	if v, _ := doubled.Unwrap(); v != 14 {
		t.Fatalf("Map = %d", v)
	}
	if !bad.Map(func(v int) int { return v * 2 }).IsErr() {
		t.Fatal("Map ran on an error")
	}
}

func TestCollect(t *testing.T) {
	boom := errors.New("boom")
	if r := Collect([]Result[int]{Ok(1), Ok(2)}); r.IsErr() {
		t.Fatal("Collect of oks errored")
	}
	if r := Collect([]Result[int]{Ok(1), Err[int](boom)}); !r.IsErr() {
		t.Fatal("Collect ignored an error")
	}
}

func TestPipeline_ShortCircuits(t *testing.T) {
	boom := errors.New("stage two broke")
	var thirdRan bool
	p := Pipeline(
		MapStage(func(n int) int { return n + 1 }),
		func(context.Context, int) Result[int] { return Err[int](boom) },
		func(_ context.Context, n int) Result[int] { thirdRan = true; return Ok(n) },
	)
	if _, err := p(context.Background(), 1).Unwrap(); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if thirdRan {
		t.Fatal("stage after a failure still ran")
	}
}

func TestTracedStage_PassesThrough(t *testing.T) {
	s := TracedStage("t", MapStage(func(n int) int { return n * 3 }))
	if v, _ := s(context.Background(), 2).Unwrap(); v != 6 {
		t.Fatalf("v = %d", v)
	}
}

func TestParMapResult(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := ParMapResult(in, 2, func(n int) Result[int] { return Ok(n * n) })
	for i, r := range out {
		v, err := r.Unwrap()
		if err != nil || v != in[i]*in[i] {
			t.Fatalf("out[%d] = %d, %v", i, v, err)
		}
	}
}

func TestFanOutResult(t *testing.T) {
	r := FanOutResult(
		func() Result[string] { return Ok("a") },
		func() Result[string] { return Ok("b") },
	)
	vals, err := r.Unwrap()
	if err != nil || len(vals) != 2 || vals[0] != "a" {
		t.Fatalf("vals = %v, %v", vals, err)
	}
}

func TestRetry(t *testing.T) {
	attempts := 0
	r := Retry(context.Background(), RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond},
		func(context.Context) Result[int] {
			attempts++
			if attempts < 3 {
				return Errf[int]("attempt %d", attempts)
			}
			return Ok(attempts)
		})
	if v, err := r.Unwrap(); err != nil || v != 3 {
		t.Fatalf("v = %d, err = %v", v, err)
	}

	attempts = 0
	r = Retry(context.Background(), RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond},
		func(context.Context) Result[int] {
			attempts++
			return Errf[int]("always")
		})
	if !r.IsErr() || attempts != 2 {
		t.Fatalf("attempts = %d", attempts)
	}
}

func TestSliceHelpers(t *testing.T) {
	if got := Map([]int{1, 2}, func(n int) int { return n * 10 }); got[1] != 20 {
		t.Errorf("Map = %v", got)
	}
	if got := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 }); len(got) != 2 {
		t.Errorf("Filter = %v", got)
	}
	if got := Chunk([]int{1, 2, 3, 4, 5}, 2); len(got) != 3 || len(got[2]) != 1 {
		t.Errorf("Chunk = %v", got)
	}
	if got := Unique([]string{"a", "b", "a"}); len(got) != 2 {
		t.Errorf("Unique = %v", got)
	}
}
