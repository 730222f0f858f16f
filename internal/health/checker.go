// Package health tracks whether the service's backing stores are reachable.
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Pinger is anything that can report its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker pings its dependencies on a cron schedule and caches the result
type Checker struct {
	log     *logrus.Logger
	timeout time.Duration

	mu      sync.Mutex
	deps    map[string]Pinger
	cron    *cron.Cron
	ready   atomic.Bool
	lastErr atomic.Value // error message, "" when healthy
}

// NewChecker creates a checker. It reports not ready until the first check runs.
func NewChecker(log *logrus.Logger, timeout time.Duration) *Checker {
	c := &Checker{
		log:     log,
		timeout: timeout,
		deps:    make(map[string]Pinger),
	}
	c.lastErr.Store("not checked yet")
	return c
}

// Add registers a named dependency
func (c *Checker) Add(name string, p Pinger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deps[name] = p
}

// Check pings every dependency once and updates readiness
func (c *Checker) Check(ctx context.Context) error {
	c.mu.Lock()
	deps := make(map[string]Pinger, len(c.deps))
	for name, p := range c.deps {
		deps[name] = p
	}
	c.mu.Unlock()

	var errs []error
	for name, p := range deps {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	err := errors.Join(errs...)
	wasReady := c.ready.Load()
	if err != nil {
		c.ready.Store(false)
		c.lastErr.Store(err.Error())
		if wasReady {
			c.log.WithError(err).Warn("Dependency check failed")
		}
		return err
	}
	c.ready.Store(true)
	c.lastErr.Store("")
	if !wasReady {
		c.log.Info("All dependencies reachable")
	}
	return nil
}

// Start runs an initial check and then schedules checks with a cron spec such as "@every 30s"
func (c *Checker) Start(spec string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return errors.New("health checker already started")
	}

	cr := cron.New(cron.WithLogger(cron.PrintfLogger(c.log)))
	if _, err := cr.AddFunc(spec, func() {
		_ = c.Check(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid health schedule %q: %w", spec, err)
	}
	c.cron = cr

	go func() {
		_ = c.Check(context.Background())
	}()
	cr.Start()
	return nil
}

// Stop halts scheduled checks and waits for a running one to finish
func (c *Checker) Stop() {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()
	if cr != nil {
		<-cr.Stop().Done()
	}
}

// Ready reports the result of the most recent check
func (c *Checker) Ready() bool {
	return c.ready.Load()
}

// LastError returns the most recent failure, or "" when healthy
func (c *Checker) LastError() string {
	return c.lastErr.Load().(string)
}
