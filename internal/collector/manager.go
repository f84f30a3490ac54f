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

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/phuonguno98/statpanel/internal/config"
	"github.com/phuonguno98/statpanel/internal/store"
	"github.com/phuonguno98/statpanel/internal/thresholds"
)

// slowPassTimeout bounds one slow pass, threshold queries included.
const slowPassTimeout = 2 * time.Minute

// Manager drives both samplers and publishes their results to the store.
type Manager struct {
	fast         *FastSampler
	slow         *SlowSampler
	store        *store.Store
	fastInterval time.Duration
	slowInterval time.Duration
	passTimeout  time.Duration
	primed       atomic.Bool
	logger       *slog.Logger
}

// NewManager creates a new sampler manager instance.
func NewManager(cfg *config.Config, st *store.Store, provider thresholds.Provider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		fast:         NewFastSampler(cfg.Sampler.DiskPath, logger),
		slow:         NewSlowSampler(cfg.Sampler.Interfaces, cfg.Sampler.FastInterval, provider, logger),
		store:        st,
		fastInterval: cfg.Sampler.FastInterval,
		slowInterval: cfg.Sampler.SlowInterval,
		passTimeout:  slowPassTimeout,
		logger:       logger,
	}
}

// Prime runs the slow pass then the fast pass synchronously, so the store is
// ready when it returns nil. The slow pass gets the same deadline as a
// scheduled one; thresholds still missing at the deadline stay absent.
func (m *Manager) Prime(ctx context.Context) error {
	m.logger.Info("Performing initial sampling...")

	passCtx, cancel := context.WithTimeout(ctx, m.passTimeout)
	m.runSlow(passCtx)
	cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	m.runFast()

	m.primed.Store(true)
	m.logger.Info("Initial sampling completed")
	return nil
}

// Start primes the store if needed, then runs the fast loop on a ticker and
// the slow loop on a cron schedule until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	if !m.primed.Load() {
		if err := m.Prime(ctx); err != nil {
			// Cancelled while priming
			return nil
		}
	}

	m.logger.Info("Starting sampler manager",
		"fast_interval", m.fastInterval,
		"slow_interval", m.slowInterval,
	)

	cronLogger := slogCronLogger{logger: m.logger}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)
	spec := fmt.Sprintf("@every %s", m.slowInterval)
	if _, err := c.AddFunc(spec, func() {
		passCtx, cancel := context.WithTimeout(ctx, m.passTimeout)
		defer cancel()
		m.runSlow(passCtx)
	}); err != nil {
		return fmt.Errorf("failed to schedule slow sampler: %w", err)
	}
	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()

	ticker := time.NewTicker(m.fastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Sampler manager stopping...")
			return nil

		case <-ticker.C:
			m.runFast()
		}
	}
}

func (m *Manager) runFast() {
	sample := m.fast.Sample()
	m.store.ReplaceSample(sample)
	m.logger.Debug("Fast sample published",
		"load", sample.CPULoad,
		"clock_mhz", sample.CPUClockMHz,
		"temp_c", sample.CPUTempC,
		"mem_used", sample.MemUsedBytes,
		"net_delta", sample.NetDeltaBytes,
		"procs", sample.ProcessCount,
	)
}

func (m *Manager) runSlow(ctx context.Context) {
	start := time.Now()
	info, t := m.slow.Sample(ctx)
	m.store.ReplaceHost(info)
	m.store.ReplaceThresholds(t)
	m.logger.Debug("Slow sample published", "elapsed", time.Since(start))
}

// slogCronLogger routes cron's own logging through slog.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
