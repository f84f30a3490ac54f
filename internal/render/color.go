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

// Package render turns telemetry and the display mode into frames.
package render

import (
	"github.com/phuonguno98/statpanel/internal/display"
	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// Panel palette.
const (
	ColorDefault  display.Color = 0xFFFFFF
	ColorAccent   display.Color = 0xFFFF00
	ColorCritical display.Color = 0xFF0000
	ColorWarning  display.Color = 0xFFFF00
	ColorNormal   display.Color = 0x00FF00
	ColorSprite   display.Color = 0xC51A4A
)

// ColorFor maps a value onto the threshold palette. Critical wins over
// warning; both bounds are inclusive. Without both bounds the color is neutral.
func ColorFor(value float64, b metrics.Bounds) display.Color {
	if !b.Complete() {
		return ColorDefault
	}
	switch {
	case value >= *b.Crit:
		return ColorCritical
	case value >= *b.Warn:
		return ColorWarning
	default:
		return ColorNormal
	}
}
