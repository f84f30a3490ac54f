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

// Package thresholds looks up the warning, critical and maximum bounds of the
// panel metrics from an external time-series store.
package thresholds

import (
	"context"

	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// Provider returns the bounds known for a host. Metrics whose lookup fails
// are left out of the result; a provider never fails as a whole.
type Provider interface {
	Lookup(ctx context.Context, hostname string) metrics.Thresholds
}

// Nop is the provider used when no threshold store is configured.
type Nop struct{}

// Lookup returns an empty threshold set.
func (Nop) Lookup(context.Context, string) metrics.Thresholds {
	return metrics.Thresholds{}
}

// Source locates one metric's bounds in the store.
type Source struct {
	Metric      string // Panel metric name
	Measurement string
	Path        string // Value of the "metric" tag
}

// Sources lists where the five externally bounded metrics live.
// Clock and network bounds are derived locally and have no source.
var Sources = []Source{
	{Metric: metrics.MetricLoad, Measurement: "load", Path: "load1"},
	{Metric: metrics.MetricTemp, Measurement: "check_rpi", Path: "cputemp"},
	{Metric: metrics.MetricDisk, Measurement: "disk", Path: "/"},
	{Metric: metrics.MetricMem, Measurement: "mem", Path: "USED"},
	{Metric: metrics.MetricProcs, Measurement: "procs", Path: "procs"},
}

// Bound fields stored for each metric.
const (
	FieldWarn = "warn"
	FieldCrit = "crit"
	FieldMax  = "max"
)
