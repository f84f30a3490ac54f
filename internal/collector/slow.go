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
	"log/slog"
	"sync"
	"time"

	"github.com/phuonguno98/statpanel/internal/thresholds"
	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// Derived bound ratios.
const (
	clockWarnRatio = 0.8
	netWarnRatio   = 0.7
)

// SlowSampler reads host identity and the threshold set.
type SlowSampler struct {
	mu           sync.Mutex
	fetcher      SystemStatFetcher
	interfaces   []string
	fastInterval time.Duration
	provider     thresholds.Provider
	now          func() time.Time
	logger       *slog.Logger
}

// NewSlowSampler creates a slow sampler. interfaces is the preference order
// used to pick the reported interface; fastInterval sizes the network bounds.
func NewSlowSampler(interfaces []string, fastInterval time.Duration, provider thresholds.Provider, logger *slog.Logger) *SlowSampler {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = thresholds.Nop{}
	}
	return &SlowSampler{
		fetcher:      DefaultFetcher(),
		interfaces:   interfaces,
		fastInterval: fastInterval,
		provider:     provider,
		now:          time.Now,
		logger:       logger,
	}
}

// SetFetcher sets a custom fetcher for testing.
func (s *SlowSampler) SetFetcher(fetcher SystemStatFetcher) {
	s.mu.Lock()
	s.fetcher = fetcher
	s.mu.Unlock()
}

// Sample performs one pass and returns the host info and the full threshold set.
func (s *SlowSampler) Sample(ctx context.Context) (metrics.HostInfo, metrics.Thresholds) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := metrics.HostInfo{Timestamp: s.now()}

	hostname, err := s.fetcher.Hostname()
	if err != nil {
		s.logger.Warn("Failed to read hostname", "error", err)
	}
	info.Hostname = hostname

	sel, ok, err := s.fetcher.SelectInterface(s.interfaces)
	switch {
	case err != nil:
		s.logger.Warn("Failed to resolve network interface", "error", err)
	case !ok:
		s.logger.Info("No preferred network interface is up", "preference", s.interfaces)
	default:
		info.Interface = sel.Name
		info.IPAddress = sel.IPAddress
		info.LinkSpeedMbps = sel.SpeedMbps
	}

	if info.CPUMaxClockMHz, err = readMaxClock(s.fetcher); err != nil {
		s.logger.Debug("CPU max clock read failed", "error", err)
	}

	t := s.provider.Lookup(ctx, hostname)
	if t == nil {
		t = metrics.Thresholds{}
	}
	if b := metrics.ScaledBounds(info.CPUMaxClockMHz, clockWarnRatio); b.Complete() {
		t[metrics.MetricClock] = b
	}
	capacity := metrics.CalculateLinkCapacity(info.LinkSpeedMbps, s.fastInterval)
	if b := metrics.ScaledBounds(capacity, netWarnRatio); b.Complete() {
		t[metrics.MetricNet] = b
	}

	s.logger.Debug("Slow sample completed",
		"hostname", info.Hostname,
		"interface", info.Interface,
		"ip", info.IPAddress,
		"speed_mbps", info.LinkSpeedMbps,
		"thresholds", len(t),
	)

	return info, t
}
