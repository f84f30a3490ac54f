/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package shutdown coordinates a cooperative, once-only process shutdown.
package shutdown

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Hook is a cleanup step run once at shutdown.
type Hook func() error

type namedHook struct {
	name string
	fn   Hook
}

// Coordinator holds the shutdown flag and the cleanup hooks.
type Coordinator struct {
	requested atomic.Bool
	done      chan struct{}
	reason    atomic.Value // string

	mu      sync.Mutex
	hooks   []namedHook
	cleaned bool

	logger *slog.Logger
}

// New creates a coordinator with no hooks.
func New(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Request sets the shutdown flag. Only the first call has an effect.
func (c *Coordinator) Request(reason string) {
	if !c.requested.CompareAndSwap(false, true) {
		c.logger.Debug("Shutdown already requested", "reason", reason)
		return
	}
	c.reason.Store(reason)
	c.logger.Info("Shutdown requested", "reason", reason)
	close(c.done)
}

// Requested reports whether shutdown has been requested.
func (c *Coordinator) Requested() bool {
	return c.requested.Load()
}

// Done is closed when shutdown is requested.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Reason returns the reason given to the first Request.
func (c *Coordinator) Reason() string {
	r, _ := c.reason.Load().(string)
	return r
}

// OnCleanup registers a hook. Hooks run in registration order.
func (c *Coordinator) OnCleanup(name string, fn Hook) {
	c.mu.Lock()
	c.hooks = append(c.hooks, namedHook{name: name, fn: fn})
	c.mu.Unlock()
}

// Cleanup runs every hook once. A failing or panicking hook is logged and
// does not prevent the following ones. Later calls are no-ops.
func (c *Coordinator) Cleanup() {
	c.mu.Lock()
	if c.cleaned {
		c.mu.Unlock()
		return
	}
	c.cleaned = true
	hooks := c.hooks
	c.mu.Unlock()

	for _, h := range hooks {
		if err := runHook(h); err != nil {
			c.logger.Warn("Cleanup step failed", "step", h.name, "error", err)
			continue
		}
		c.logger.Debug("Cleanup step completed", "step", h.name)
	}
}

func runHook(h namedHook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.fn()
}

// Watch requests shutdown on the first of the given signals and keeps
// absorbing repeats until ctx is cancelled. Once ctx ends the default signal
// action is restored, so ctx must outlive Cleanup.
func (c *Coordinator) Watch(ctx context.Context, signals ...os.Signal) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, signals...)
	go func() {
		defer signal.Stop(ch)
		c.watch(ctx, ch)
	}()
}

func (c *Coordinator) watch(ctx context.Context, ch <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			c.Request(fmt.Sprintf("signal %s", sig))
		}
	}
}
