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

// Package mode owns the display mode and the rules that change it.
package mode

import (
	"log/slog"
	"strings"
	"sync/atomic"
)

// Mode is the exclusive display state.
type Mode int32

const (
	// Stats shows the live statistics view.
	Stats Mode = iota
	// Idle shows the screensaver animation.
	Idle
)

// Inbound payloads.
const (
	PayloadStats = "1"
	PayloadIdle  = "0"
)

func (m Mode) String() string {
	switch m {
	case Stats:
		return "stats"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// Payload returns the wire value that selects m.
func (m Mode) Payload() string {
	if m == Idle {
		return PayloadIdle
	}
	return PayloadStats
}

// ParsePayload maps an inbound payload to a mode. Surrounding whitespace is ignored.
func ParsePayload(payload string) (Mode, bool) {
	switch strings.TrimSpace(payload) {
	case PayloadStats:
		return Stats, true
	case PayloadIdle:
		return Idle, true
	default:
		return Stats, false
	}
}

// Echoer delivers the acknowledgement of an accepted payload.
type Echoer interface {
	Echo(payload string) error
}

// Controller is the two-state machine. It is safe for concurrent use.
type Controller struct {
	state       atomic.Int32
	transitions atomic.Uint64
	echo        Echoer
	logger      *slog.Logger
}

// NewController creates a controller in Stats mode. echo may be nil.
func NewController(echo Echoer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{echo: echo, logger: logger}
}

// SetEchoer replaces the echo target. It must be called before events arrive.
func (c *Controller) SetEchoer(echo Echoer) {
	c.echo = echo
}

// Current returns the current mode.
func (c *Controller) Current() Mode {
	return Mode(c.state.Load())
}

// Transitions returns how many times the mode actually changed.
func (c *Controller) Transitions() uint64 {
	return c.transitions.Load()
}

// Set forces the mode and reports whether it changed.
func (c *Controller) Set(m Mode) bool {
	prev := Mode(c.state.Swap(int32(m)))
	if prev == m {
		return false
	}
	c.transitions.Add(1)
	c.logger.Info("Display mode changed", "from", prev, "to", m)
	return true
}

// Handle applies an inbound payload. Invalid payloads are ignored and not echoed.
// Every accepted payload is echoed, duplicates included; an echo failure is
// logged and does not undo the transition.
func (c *Controller) Handle(payload string) (Mode, bool) {
	m, ok := ParsePayload(payload)
	if !ok {
		c.logger.Debug("Ignoring invalid mode payload", "payload", payload)
		return c.Current(), false
	}

	c.Set(m)

	if c.echo != nil {
		if err := c.echo.Echo(m.Payload()); err != nil {
			c.logger.Warn("Failed to echo mode payload", "payload", m.Payload(), "error", err)
		}
	}

	return m, true
}
