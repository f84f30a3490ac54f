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

package metrics

import "time"

// Metric names used as threshold keys.
const (
	MetricLoad  = "load"
	MetricClock = "clock"
	MetricTemp  = "temp"
	MetricMem   = "mem"
	MetricDisk  = "disk"
	MetricNet   = "net"
	MetricProcs = "procs"
)

// Sample is the part of a snapshot refreshed by the fast sampler.
type Sample struct {
	Timestamp      time.Time
	Interval       time.Duration // Time since the previous sample (0 on the first one)
	CPULoad        float64       // 1-minute load average
	CPUClockMHz    float64
	CPUTempC       float64 // 0 when no sensor reports
	MemUsedBytes   uint64
	MemTotalBytes  uint64
	DiskUsedBytes  uint64
	DiskTotalBytes uint64
	NetDeltaBytes  uint64 // Bytes sent+received since the previous sample
	ProcessCount   uint32
}

// HostInfo is the part of a snapshot refreshed by the slow sampler.
type HostInfo struct {
	Timestamp      time.Time
	Hostname       string
	Interface      string // Selected interface name, empty when none is up
	IPAddress      string
	LinkSpeedMbps  uint32
	CPUMaxClockMHz float64
}

// Snapshot represents a complete, internally consistent set of telemetry values.
type Snapshot struct {
	SampledAt      time.Time
	CPULoad        float64
	CPUClockMHz    float64
	CPUTempC       float64
	MemUsedBytes   uint64
	MemTotalBytes  uint64
	DiskUsedBytes  uint64
	DiskTotalBytes uint64
	NetDeltaBytes  uint64
	ProcessCount   uint32
	Hostname       string
	IPAddress      string
	LinkSpeedMbps  uint32
}

// NewSnapshot combines the latest fast and slow halves into one value.
func NewSnapshot(s Sample, h HostInfo) Snapshot {
	return Snapshot{
		SampledAt:      s.Timestamp,
		CPULoad:        s.CPULoad,
		CPUClockMHz:    s.CPUClockMHz,
		CPUTempC:       s.CPUTempC,
		MemUsedBytes:   s.MemUsedBytes,
		MemTotalBytes:  s.MemTotalBytes,
		DiskUsedBytes:  s.DiskUsedBytes,
		DiskTotalBytes: s.DiskTotalBytes,
		NetDeltaBytes:  s.NetDeltaBytes,
		ProcessCount:   s.ProcessCount,
		Hostname:       h.Hostname,
		IPAddress:      h.IPAddress,
		LinkSpeedMbps:  h.LinkSpeedMbps,
	}
}

// Bounds holds the optional warning, critical and maximum values of one metric.
type Bounds struct {
	Warn *float64
	Crit *float64
	Max  *float64
}

// Complete reports whether both the warning and critical bounds are present.
func (b Bounds) Complete() bool {
	return b.Warn != nil && b.Crit != nil
}

// Thresholds maps a metric name to its bounds.
type Thresholds map[string]Bounds

// Get returns the bounds of a metric; missing metrics yield empty bounds.
func (t Thresholds) Get(metric string) Bounds {
	if t == nil {
		return Bounds{}
	}
	return t[metric]
}

// Clone returns a deep copy so callers can never mutate the original.
func (t Thresholds) Clone() Thresholds {
	if t == nil {
		return nil
	}
	out := make(Thresholds, len(t))
	for name, b := range t {
		out[name] = Bounds{
			Warn: cloneFloat(b.Warn),
			Crit: cloneFloat(b.Crit),
			Max:  cloneFloat(b.Max),
		}
	}
	return out
}

// Float returns a pointer to v, for building Bounds literals.
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
