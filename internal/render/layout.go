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
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/phuonguno98/statpanel/internal/display"
	"github.com/phuonguno98/statpanel/pkg/metrics"
)

const separatorWidth = 20

// Splash text.
const (
	SplashTitle  = "Raspberry Pi Stats"
	SplashStatus = "Starting..."
)

// splashLogoTop is the logo offset below the splash text, in canvas pixels.
const splashLogoTop = 90

// ComposeStats lays out the statistics view for a width x height canvas.
func ComposeStats(s metrics.Snapshot, t metrics.Thresholds, width, height int) display.Frame {
	lines := []display.Line{
		{Text: strings.ToUpper(s.Hostname), Color: ColorAccent},
		{Text: s.IPAddress, Color: ColorDefault},
		{Text: strings.Repeat("─", separatorWidth), Color: ColorDefault},
		{
			Text:  fmt.Sprintf("Cpu Load: %.1f", s.CPULoad),
			Color: ColorFor(s.CPULoad, t.Get(metrics.MetricLoad)),
		},
		{
			Text:  fmt.Sprintf("Cpu Clock: %.0f MHz", s.CPUClockMHz),
			Color: ColorFor(s.CPUClockMHz, t.Get(metrics.MetricClock)),
		},
		{
			Text:  fmt.Sprintf("Temp: %.1f°C", s.CPUTempC),
			Color: ColorFor(s.CPUTempC, t.Get(metrics.MetricTemp)),
		},
		{
			Text:  fmt.Sprintf("Mem: %s/%s", humanize.IBytes(s.MemUsedBytes), humanize.IBytes(s.MemTotalBytes)),
			Color: ColorFor(float64(s.MemUsedBytes), t.Get(metrics.MetricMem)),
		},
		{
			Text:  fmt.Sprintf("Disk: %s/%s", humanize.IBytes(s.DiskUsedBytes), humanize.IBytes(s.DiskTotalBytes)),
			Color: ColorFor(float64(s.DiskUsedBytes), t.Get(metrics.MetricDisk)),
		},
		{
			Text:  fmt.Sprintf("Net: %s/%dM", humanize.IBytes(s.NetDeltaBytes), s.LinkSpeedMbps),
			Color: ColorFor(float64(s.NetDeltaBytes), t.Get(metrics.MetricNet)),
		},
		{
			Text:  fmt.Sprintf("Procs: %d", s.ProcessCount),
			Color: ColorFor(float64(s.ProcessCount), t.Get(metrics.MetricProcs)),
		},
	}

	return display.Frame{
		Kind:   display.KindStats,
		Width:  width,
		Height: height,
		Lines:  lines,
	}
}

// SplashFrame is the boot screen shown until the first samples are in.
// The logo is centered horizontally below the text.
func SplashFrame(width, height, logoWidth, logoHeight int) display.Frame {
	logoWidth = clampInt(logoWidth, 1, width)
	logoHeight = clampInt(logoHeight, 1, height)

	return display.Frame{
		Kind:   display.KindSplash,
		Width:  width,
		Height: height,
		Lines: []display.Line{
			{Text: SplashTitle, Color: ColorDefault},
			{Text: SplashStatus, Color: ColorDefault},
		},
		Sprites: []display.SpriteView{{
			X:      (width - logoWidth) / 2,
			Y:      clampInt(splashLogoTop, 0, height-logoHeight),
			Width:  logoWidth,
			Height: logoHeight,
			Color:  ColorSprite,
		}},
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
