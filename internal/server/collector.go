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

package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phuonguno98/statpanel/internal/display"
	"github.com/phuonguno98/statpanel/internal/mode"
	"github.com/phuonguno98/statpanel/pkg/metrics"
)

const namespace = "statpanel"

// panelCollector exports the store, the mode and the render counters on every scrape.
type panelCollector struct {
	source Source
	modes  ModeController
	frames FrameCounter

	ready       *prometheus.Desc
	gauges      []gaugeSpec
	linkSpeed   *prometheus.Desc
	idle        *prometheus.Desc
	transitions *prometheus.Desc
	shown       *prometheus.Desc
	skipped     *prometheus.Desc
	bound       *prometheus.Desc
}

type gaugeSpec struct {
	desc  *prometheus.Desc
	value func(metrics.Snapshot) float64
}

func newPanelCollector(source Source, modes ModeController, frames FrameCounter) *panelCollector {
	hostLabel := []string{"hostname"}
	gauge := func(name, help string, value func(metrics.Snapshot) float64) gaugeSpec {
		return gaugeSpec{
			desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, hostLabel, nil),
			value: value,
		}
	}

	return &panelCollector{
		source: source,
		modes:  modes,
		frames: frames,
		ready: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "ready"),
			"1 once both samplers have published.", nil, nil),
		gauges: []gaugeSpec{
			gauge("cpu_load", "1-minute load average.", func(s metrics.Snapshot) float64 { return s.CPULoad }),
			gauge("cpu_clock_mhz", "Current CPU clock.", func(s metrics.Snapshot) float64 { return s.CPUClockMHz }),
			gauge("cpu_temperature_celsius", "First temperature sensor.", func(s metrics.Snapshot) float64 { return s.CPUTempC }),
			gauge("memory_used_bytes", "Memory in use (total minus available).", func(s metrics.Snapshot) float64 { return float64(s.MemUsedBytes) }),
			gauge("memory_total_bytes", "Total memory.", func(s metrics.Snapshot) float64 { return float64(s.MemTotalBytes) }),
			gauge("disk_used_bytes", "Used space of the sampled filesystem.", func(s metrics.Snapshot) float64 { return float64(s.DiskUsedBytes) }),
			gauge("disk_total_bytes", "Size of the sampled filesystem.", func(s metrics.Snapshot) float64 { return float64(s.DiskTotalBytes) }),
			gauge("network_delta_bytes", "Bytes sent and received during the last fast interval.", func(s metrics.Snapshot) float64 { return float64(s.NetDeltaBytes) }),
			gauge("processes", "Live process count.", func(s metrics.Snapshot) float64 { return float64(s.ProcessCount) }),
		},
		linkSpeed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "link_speed_mbps"),
			"Negotiated speed of the selected interface.", []string{"hostname", "ip_address"}, nil),
		idle: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "idle"),
			"1 while the screensaver is shown.", nil, nil),
		transitions: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "mode_transitions_total"),
			"Display mode changes.", nil, nil),
		shown: prometheus.NewDesc(prometheus.BuildFQName(namespace, "render", "frames_total"),
			"Frames flushed to the display.", []string{"kind"}, nil),
		skipped: prometheus.NewDesc(prometheus.BuildFQName(namespace, "render", "frames_skipped_total"),
			"Unchanged stats frames that were not flushed.", nil, nil),
		bound: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "threshold"),
			"Threshold bounds in effect.", []string{"metric", "bound"}, nil),
	}
}

func (c *panelCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ready
	for _, g := range c.gauges {
		ch <- g.desc
	}
	ch <- c.linkSpeed
	ch <- c.idle
	ch <- c.transitions
	ch <- c.bound
	if c.frames != nil {
		ch <- c.shown
		ch <- c.skipped
	}
}

func (c *panelCollector) Collect(ch chan<- prometheus.Metric) {
	snap, t, ok := c.source.Read()

	ch <- prometheus.MustNewConstMetric(c.ready, prometheus.GaugeValue, boolFloat(ok))
	if ok {
		for _, g := range c.gauges {
			ch <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, g.value(snap), snap.Hostname)
		}
		ch <- prometheus.MustNewConstMetric(c.linkSpeed, prometheus.GaugeValue,
			float64(snap.LinkSpeedMbps), snap.Hostname, snap.IPAddress)
	}

	for name, b := range t {
		for bound, v := range map[string]*float64{"warn": b.Warn, "crit": b.Crit, "max": b.Max} {
			if v != nil {
				ch <- prometheus.MustNewConstMetric(c.bound, prometheus.GaugeValue, *v, name, bound)
			}
		}
	}

	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, boolFloat(c.modes.Current() == mode.Idle))
	ch <- prometheus.MustNewConstMetric(c.transitions, prometheus.CounterValue, float64(c.modes.Transitions()))

	if c.frames != nil {
		for _, kind := range []display.Kind{display.KindStats, display.KindIdle} {
			ch <- prometheus.MustNewConstMetric(c.shown, prometheus.CounterValue,
				float64(c.frames.FramesShown(kind)), kind.String())
		}
		ch <- prometheus.MustNewConstMetric(c.skipped, prometheus.CounterValue, float64(c.frames.FramesSkipped()))
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
