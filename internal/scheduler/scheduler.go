// Package scheduler drives periodic evaluation passes when trackwatch
// runs as a long-lived service instead of being invoked externally.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/snoutly/trackwatch/internal/evaluator"
	"github.com/snoutly/trackwatch/internal/logging"
)

// Alert instants are minute-exact, so passes line up with minute
// boundaries.
const everyMinute = "* * * * *"

// Config contains scheduler configuration.
type Config struct {
	// RunTimeout bounds a single evaluation pass. A pass that is still
	// running when the next minute ticks is not preempted; the new tick
	// is skipped instead.
	RunTimeout time.Duration
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.RunTimeout == 0 {
		c.RunTimeout = 55 * time.Second
	}
}

// Runner fires an evaluation pass at every minute boundary.
type Runner struct {
	mu         sync.Mutex
	cfg        Config
	dispatcher *evaluator.Dispatcher
	c          *cron.Cron
	running    atomic.Bool
	log        zerolog.Logger
}

// New creates a Runner. Call Start to begin ticking.
func New(cfg Config, dispatcher *evaluator.Dispatcher, log zerolog.Logger) *Runner {
	cfg.SetDefaults()
	return &Runner{
		cfg:        cfg,
		dispatcher: dispatcher,
		log:        logging.Component(log, "scheduler"),
	}
}

// Start registers the minute tick and starts the cron loop. It returns
// immediately; passes run on cron's goroutine.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c != nil {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(everyMinute, func() { r.tick(ctx) }); err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	c.Start()
	r.c = c

	r.log.Info().Dur("run_timeout", r.cfg.RunTimeout).Msg("scheduler started")
	return nil
}

// Stop halts the cron loop and waits for an in-flight pass to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c == nil {
		return
	}
	<-r.c.Stop().Done()
	r.c = nil
	r.log.Info().Msg("scheduler stopped")
}

func (r *Runner) tick(ctx context.Context) {
	// A slow pass must not stack a second one behind it.
	if !r.running.CompareAndSwap(false, true) {
		r.log.Warn().Msg("previous evaluation pass still running, skipping tick")
		return
	}
	defer r.running.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	r.dispatcher.RunEvaluationPass(runCtx, time.Now())
}
