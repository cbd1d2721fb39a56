package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerPassesThrough(t *testing.T) {
	cb := NewCircuitBreaker()
	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.(string) != "ok" {
		t.Errorf("result = %v", result)
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(CircuitBreakerConfig{
		MaxFailures:          2,
		Timeout:              time.Minute,
		HalfOpenMaxSuccesses: 1,
	})
	boom := errors.New("provider down")

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, boom
		}); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want provider error", i, err)
		}
	}

	called := false
	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		called = true
		return "ok", nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("fn called while circuit open")
	}
}

func TestCircuitBreakerRecoversAfterTimeout(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(CircuitBreakerConfig{
		MaxFailures:          1,
		Timeout:              20 * time.Millisecond,
		HalfOpenMaxSuccesses: 1,
	})

	cb.Execute(context.Background(), func() (interface{}, error) {
		return nil, errors.New("fail")
	})
	if _, err := cb.Execute(context.Background(), func() (interface{}, error) { return "x", nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("circuit should be open, err = %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("half-open call failed: %v", err)
	}
	if result.(string) != "recovered" {
		t.Errorf("result = %v", result)
	}
}

func TestCircuitBreakerHonorsCancelledContext(t *testing.T) {
	cb := NewCircuitBreaker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cb.Execute(ctx, func() (interface{}, error) { return "x", nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
