package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seamonger/procurement/internal/domain"
)

type countingProcessor struct {
	calls  atomic.Int32
	result domain.PollResult
	err    error
	panics bool
}

func (c *countingProcessor) ProcessUnfulfilledOrders(context.Context) (domain.PollResult, error) {
	c.calls.Add(1)
	if c.panics {
		panic("boom")
	}
	return c.result, c.err
}

func waitForCalls(t *testing.T, c *countingProcessor, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.calls.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("calls = %d, want >= %d", c.calls.Load(), want)
}

func TestNew_Defaults(t *testing.T) {
	p := New(&countingProcessor{}, Config{}, nil)
	if p.Config.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", p.Config.Interval, DefaultInterval)
	}
}

func TestRunOnce_ReturnsResult(t *testing.T) {
	proc := &countingProcessor{result: domain.PollResult{Orders: 3, MessagesSent: 2}}
	p := New(proc, Config{}, nil)

	res, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if res.Orders != 3 || res.MessagesSent != 2 {
		t.Errorf("result = %+v, want {3 2}", res)
	}
}

func TestRunOnce_PropagatesError(t *testing.T) {
	want := errors.New("shop offline")
	p := New(&countingProcessor{err: want}, Config{}, nil)

	if _, err := p.RunOnce(context.Background()); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestRunOnce_RecoversPanic(t *testing.T) {
	p := New(&countingProcessor{panics: true}, Config{}, nil)

	_, err := p.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected error from panicking processor")
	}
}

func TestStart_RunsImmediatelyAndOnTick(t *testing.T) {
	proc := &countingProcessor{}
	p := New(proc, Config{Interval: 10 * time.Millisecond}, nil)

	p.Start(context.Background())
	defer p.Stop()

	waitForCalls(t, proc, 3)
}

func TestStart_KeepsRunningAfterFailures(t *testing.T) {
	proc := &countingProcessor{err: errors.New("transient")}
	p := New(proc, Config{Interval: 10 * time.Millisecond}, nil)

	p.Start(context.Background())
	defer p.Stop()

	waitForCalls(t, proc, 3)
}

func TestStop_HaltsLoop(t *testing.T) {
	proc := &countingProcessor{}
	p := New(proc, Config{Interval: 10 * time.Millisecond}, nil)

	p.Start(context.Background())
	waitForCalls(t, proc, 1)
	p.Stop()

	after := proc.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if got := proc.calls.Load(); got != after {
		t.Errorf("calls after Stop = %d, want %d", got, after)
	}
}

func TestStop_Idempotent(t *testing.T) {
	p := New(&countingProcessor{}, Config{Interval: time.Hour}, nil)
	p.Start(context.Background())

	p.Stop()
	p.Stop()
}

func TestStop_BeforeStart(t *testing.T) {
	proc := &countingProcessor{}
	p := New(proc, Config{Interval: 10 * time.Millisecond}, nil)

	p.Stop()
	p.Start(context.Background())
	time.Sleep(30 * time.Millisecond)

	if got := proc.calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestStart_ContextCancelStopsLoop(t *testing.T) {
	proc := &countingProcessor{}
	p := New(proc, Config{Interval: 10 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	waitForCalls(t, proc, 1)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}
