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
	"errors"
	"fmt"

	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// netCounter turns the cumulative byte counter into per-sample deltas.
type netCounter struct {
	baseline uint64
	primed   bool
}

// delta returns the bytes moved since the previous read and advances the
// baseline. The first read only sets the baseline and yields 0.
func (c *netCounter) delta(current uint64) uint64 {
	if !c.primed {
		c.baseline = current
		c.primed = true
		return 0
	}
	d := metrics.CalculateNetDelta(c.baseline, current)
	c.baseline = current
	return d
}

// readNetTotal returns bytes sent plus received across all interfaces.
func readNetTotal(f SystemStatFetcher) (uint64, error) {
	counters, err := f.NetIOCounters(false)
	if err != nil {
		return 0, fmt.Errorf("failed to get network I/O counters: %w", err)
	}
	if len(counters) == 0 {
		return 0, errors.New("no network counters")
	}
	return counters[0].BytesSent + counters[0].BytesRecv, nil
}
