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

// Package display defines the frames the renderer produces and the sinks
// that present them.
package display

import "fmt"

// Color is a 24-bit RGB color, 0xRRGGBB.
type Color uint32

// RGB returns the color channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

// Kind identifies what a frame shows.
type Kind int

const (
	KindSplash Kind = iota
	KindStats
	KindIdle
)

func (k Kind) String() string {
	switch k {
	case KindSplash:
		return "splash"
	case KindStats:
		return "stats"
	case KindIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Line is one row of text.
type Line struct {
	Text  string
	Color Color
}

// SpriteView is a sprite's rectangle in canvas pixels.
type SpriteView struct {
	X, Y          int
	Width, Height int
	Color         Color
}

// Frame is a complete picture for a Width x Height canvas.
type Frame struct {
	Kind    Kind
	Width   int
	Height  int
	Lines   []Line
	Sprites []SpriteView
}

// Sink presents frames. Only one goroutine uses a sink at a time.
type Sink interface {
	Show(f Frame) error
	Clear() error
	Release() error
}
