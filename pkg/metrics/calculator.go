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

import (
	"math"
	"time"
)

// CalculateNetDelta returns the bytes transferred between two cumulative counter reads.
// A counter that went backwards (interface reset, wrap) yields 0 rather than a huge value.
func CalculateNetDelta(baseline, current uint64) uint64 {
	if current < baseline {
		return 0
	}
	return current - baseline
}

// CalculateMemUsed returns used memory as total minus available.
func CalculateMemUsed(total, available uint64) uint64 {
	if available > total {
		return 0
	}
	return total - available
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ScaledBounds derives warn/crit bounds from a maximum value.
// Formula: warn = max × warnRatio, crit = max. A non-positive max yields empty bounds.
func ScaledBounds(maxValue, warnRatio float64) Bounds {
	if maxValue <= 0 {
		return Bounds{}
	}
	return Bounds{
		Warn: Float(maxValue * warnRatio),
		Crit: Float(maxValue),
		Max:  Float(maxValue),
	}
}

// CalculateLinkCapacity returns how many bytes a link of speedMbps can move in one interval.
// Formula: speed × 10^6 / 8 × Δt
func CalculateLinkCapacity(speedMbps uint32, interval time.Duration) float64 {
	if speedMbps == 0 || interval <= 0 {
		return 0
	}
	return float64(speedMbps) * 1_000_000 / 8 * interval.Seconds()
}
