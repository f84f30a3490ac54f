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

package render

import "time"

// Clock is the time source of a Governor.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Governor paces a loop to a fixed period. Each Wait sleeps until the next
// deadline; a loop that falls behind restarts from now instead of bursting
// to catch up.
type Governor struct {
	period time.Duration
	next   time.Time
	clock  Clock
}

// NewGovernor creates a governor. A nil clock uses wall time.
func NewGovernor(period time.Duration, clock Clock) *Governor {
	if clock == nil {
		clock = realClock{}
	}
	return &Governor{period: period, clock: clock}
}

// Period returns the frame budget.
func (g *Governor) Period() time.Duration {
	return g.period
}

// Reset forgets the current deadline.
func (g *Governor) Reset() {
	g.next = time.Time{}
}

// Wait blocks until the next deadline. It returns false as soon as done is
// closed.
func (g *Governor) Wait(done <-chan struct{}) bool {
	now := g.clock.Now()
	if g.next.IsZero() {
		g.next = now
	}
	g.next = g.next.Add(g.period)

	d := g.next.Sub(now)
	if d <= 0 {
		g.next = now
		select {
		case <-done:
			return false
		default:
			return true
		}
	}

	select {
	case <-done:
		return false
	case <-g.clock.After(d):
		return true
	}
}
