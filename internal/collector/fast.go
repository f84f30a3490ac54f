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
	"log/slog"
	"sync"
	"time"

	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// FastSampler reads the frequently changing metrics.
type FastSampler struct {
	mu       sync.Mutex
	fetcher  SystemStatFetcher
	diskPath string
	net      netCounter
	last     time.Time
	now      func() time.Time
	logger   *slog.Logger
}

// NewFastSampler creates a fast sampler reporting disk usage of diskPath.
func NewFastSampler(diskPath string, logger *slog.Logger) *FastSampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FastSampler{
		fetcher:  DefaultFetcher(),
		diskPath: diskPath,
		now:      time.Now,
		logger:   logger,
	}
}

// SetFetcher sets a custom fetcher for testing.
func (f *FastSampler) SetFetcher(fetcher SystemStatFetcher) {
	f.mu.Lock()
	f.fetcher = fetcher
	f.mu.Unlock()
}

// Sample performs one pass. Each read falls back to zero on failure, so the
// pass itself never fails.
func (f *FastSampler) Sample() metrics.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	s := metrics.Sample{Timestamp: now}
	if !f.last.IsZero() {
		s.Interval = now.Sub(f.last)
	}
	f.last = now

	var err error
	if s.CPULoad, err = readLoad(f.fetcher); err != nil {
		f.logger.Debug("Load read failed", "error", err)
	}
	if s.CPUClockMHz, err = readClock(f.fetcher); err != nil {
		f.logger.Debug("CPU clock read failed", "error", err)
	}
	if s.CPUTempC, err = readTemp(f.fetcher); err != nil {
		f.logger.Debug("Temperature read failed", "error", err)
	}
	if s.MemUsedBytes, s.MemTotalBytes, err = readMemory(f.fetcher); err != nil {
		f.logger.Debug("Memory read failed", "error", err)
	}
	if s.DiskUsedBytes, s.DiskTotalBytes, err = readDisk(f.fetcher, f.diskPath); err != nil {
		f.logger.Debug("Disk read failed", "error", err)
	}
	if s.ProcessCount, err = readProcs(f.fetcher); err != nil {
		f.logger.Debug("Process count failed", "error", err)
	}

	// A failed counter read keeps the baseline so the next delta spans both intervals.
	if total, err := readNetTotal(f.fetcher); err != nil {
		f.logger.Debug("Network read failed", "error", err)
	} else {
		s.NetDeltaBytes = f.net.delta(total)
	}

	return s
}
