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

import (
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/phuonguno98/statpanel/internal/display"
	"github.com/phuonguno98/statpanel/internal/mode"
	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// Source provides the latest telemetry.
type Source interface {
	Read() (metrics.Snapshot, metrics.Thresholds, bool)
}

// ModeSource provides the current display mode.
type ModeSource interface {
	Current() mode.Mode
}

// Options configures a Renderer.
type Options struct {
	Width         int
	Height        int
	FPS           int
	StatsInterval time.Duration
	Sprites       int
	SpriteWidth   int
	SpriteHeight  int
	SpriteSpeed   float64
	Seed          int64 // 0 seeds from the clock
	Clock         Clock // nil uses wall time
}

// Renderer is the render loop. It is the only user of its sink until Run returns.
type Renderer struct {
	opts    Options
	source  Source
	modes   ModeSource
	sink    display.Sink
	sprites []*Sprite
	stats   *Governor
	idle    *Governor
	logger  *slog.Logger

	lastHash  uint64
	lastKind  display.Kind
	hasShown  bool
	lastError string

	statsFrames atomic.Uint64
	idleFrames  atomic.Uint64
	skipped     atomic.Uint64
}

// New creates a renderer drawing onto sink.
func New(opts Options, source Source, modes ModeSource, sink display.Sink, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FPS < 1 {
		opts.FPS = 1
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	sprites := make([]*Sprite, 0, opts.Sprites)
	for i := 0; i < opts.Sprites; i++ {
		sprites = append(sprites, NewSprite(opts.Width, opts.Height, opts.SpriteWidth, opts.SpriteHeight, opts.SpriteSpeed, rng))
	}

	return &Renderer{
		opts:    opts,
		source:  source,
		modes:   modes,
		sink:    sink,
		sprites: sprites,
		stats:   NewGovernor(opts.StatsInterval, opts.Clock),
		idle:    NewGovernor(time.Second/time.Duration(opts.FPS), opts.Clock),
		logger:  logger,
	}
}

// ShowSplash displays the boot screen.
func (r *Renderer) ShowSplash() {
	r.show(SplashFrame(r.opts.Width, r.opts.Height, r.opts.SpriteWidth, r.opts.SpriteHeight))
}

// Run renders frames until done is closed.
func (r *Renderer) Run(done <-chan struct{}) {
	r.logger.Info("Render loop started",
		"canvas", strconv.Itoa(r.opts.Width)+"x"+strconv.Itoa(r.opts.Height),
		"fps", r.opts.FPS,
		"stats_interval", r.opts.StatsInterval,
	)

	current := mode.Mode(-1)
	for {
		select {
		case <-done:
			r.logger.Info("Render loop stopped")
			return
		default:
		}

		m := r.modes.Current()
		if m != current {
			r.stats.Reset()
			r.idle.Reset()
			current = m
		}

		var ok bool
		if m == mode.Idle {
			r.idleFrame()
			ok = r.idle.Wait(done)
		} else {
			r.statsFrame()
			ok = r.stats.Wait(done)
		}
		if !ok {
			r.logger.Info("Render loop stopped")
			return
		}
	}
}

func (r *Renderer) statsFrame() {
	snap, t, ok := r.source.Read()
	if !ok {
		return
	}
	f := ComposeStats(snap, t, r.opts.Width, r.opts.Height)

	h := hashFrame(f)
	if r.hasShown && r.lastKind == display.KindStats && h == r.lastHash {
		r.skipped.Add(1)
		return
	}
	if r.show(f) {
		r.lastHash = h
		r.statsFrames.Add(1)
	}
}

func (r *Renderer) idleFrame() {
	views := make([]display.SpriteView, 0, len(r.sprites))
	for _, s := range r.sprites {
		s.Step()
		views = append(views, s.View(ColorSprite))
	}
	f := display.Frame{
		Kind:    display.KindIdle,
		Width:   r.opts.Width,
		Height:  r.opts.Height,
		Sprites: views,
	}
	if r.show(f) {
		r.idleFrames.Add(1)
	}
}

// show flushes f and logs sink errors; a repeated error is logged once.
func (r *Renderer) show(f display.Frame) bool {
	if err := r.sink.Show(f); err != nil {
		if msg := err.Error(); msg != r.lastError {
			r.logger.Warn("Failed to show frame", "kind", f.Kind, "error", err)
			r.lastError = msg
		}
		return false
	}
	r.lastError = ""
	r.lastKind = f.Kind
	r.hasShown = true
	return true
}

// FramesShown returns how many frames of a kind reached the sink.
func (r *Renderer) FramesShown(kind display.Kind) uint64 {
	switch kind {
	case display.KindStats:
		return r.statsFrames.Load()
	case display.KindIdle:
		return r.idleFrames.Load()
	default:
		return 0
	}
}

// FramesSkipped returns how many unchanged stats frames were not flushed.
func (r *Renderer) FramesSkipped() uint64 {
	return r.skipped.Load()
}

func hashFrame(f display.Frame) uint64 {
	var sb strings.Builder
	for _, l := range f.Lines {
		sb.WriteString(l.Text)
		sb.WriteByte(0)
		sb.WriteString(strconv.FormatUint(uint64(l.Color), 16))
		sb.WriteByte('\n')
	}
	return xxh3.HashString(sb.String())
}
