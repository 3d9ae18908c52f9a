// Package poller runs the procurement order cycle on a fixed interval.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/metrics"
)

// DefaultInterval is used when Config.Interval is zero.
const DefaultInterval = 300 * time.Second

// Processor is the part of the orchestrator the poller drives.
type Processor interface {
	ProcessUnfulfilledOrders(ctx context.Context) (domain.PollResult, error)
}

// Config holds tunable parameters for the poll loop.
type Config struct {
	Interval time.Duration
}

// Poller invokes a Processor once at start and then on every tick.
// Errors and panics from a cycle are logged; the loop keeps going.
type Poller struct {
	Processor Processor
	Config    Config
	log       *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

// New creates a Poller with defaults for zero-value config fields.
func New(p Processor, cfg Config, log *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		Processor: p,
		Config:    cfg,
		log:       log,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// RunOnce executes a single cycle. A panic in the processor is returned as an error.
func (p *Poller) RunOnce(ctx context.Context) (res domain.PollResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll cycle panicked: %v", r)
		}
		if err != nil {
			metrics.IncPollCycle(metrics.PollError)
			p.log.Error("poll cycle failed", zap.Error(err))
			return
		}
		metrics.IncPollCycle(metrics.PollOK)
		p.log.Info("poll cycle complete",
			zap.Int("orders", res.Orders),
			zap.Int("messages_sent", res.MessagesSent))
	}()
	return p.Processor.ProcessUnfulfilledOrders(ctx)
}

// Start spawns the loop goroutine. Calling it more than once has no effect.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.log.Info("poller started", zap.Duration("interval", p.Config.Interval))
		go p.loop(ctx)
	})
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)
	defer p.log.Info("poller stopped")

	ticker := time.NewTicker(p.Config.Interval)
	defer ticker.Stop()

	_, _ = p.RunOnce(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = p.RunOnce(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for the current cycle to finish.
// Safe to call multiple times, and before Start; a later Start is then a no-op.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.startOnce.Do(func() { close(p.done) })
	<-p.done
}
