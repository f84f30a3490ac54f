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
	"math"
	"math/rand"

	"github.com/phuonguno98/statpanel/internal/display"
)

// Sprite is a rectangle bouncing inside the canvas. Its position always
// stays within [0, canvas - size] on both axes.
type Sprite struct {
	X, Y    float64
	VX, VY  float64
	Width   int
	Height  int
	CanvasW int
	CanvasH int
}

// NewSprite places a sprite at a random position moving diagonally at speed
// pixels per step. A sprite larger than the canvas is shrunk to fit.
func NewSprite(canvasW, canvasH, width, height int, speed float64, rng *rand.Rand) *Sprite {
	canvasW = max(canvasW, 1)
	canvasH = max(canvasH, 1)
	width = clampInt(width, 1, canvasW)
	height = clampInt(height, 1, canvasH)

	return &Sprite{
		X:       rng.Float64() * float64(canvasW-width),
		Y:       rng.Float64() * float64(canvasH-height),
		VX:      speed,
		VY:      speed,
		Width:   width,
		Height:  height,
		CanvasW: canvasW,
		CanvasH: canvasH,
	}
}

// Step advances the sprite one frame, reversing direction on a wall.
func (s *Sprite) Step() {
	s.X, s.VX = bounce(s.X, s.VX, s.Width, s.CanvasW)
	s.Y, s.VY = bounce(s.Y, s.VY, s.Height, s.CanvasH)
}

func bounce(pos, vel float64, size, canvas int) (float64, float64) {
	limit := float64(canvas - size)
	next := pos + vel
	if next > limit || next < 0 {
		vel = -vel
		next = pos + vel
	}
	return math.Min(math.Max(next, 0), limit), vel
}

// View returns the sprite's pixel rectangle.
func (s *Sprite) View(color display.Color) display.SpriteView {
	return display.SpriteView{
		X:      int(s.X),
		Y:      int(s.Y),
		Width:  s.Width,
		Height: s.Height,
		Color:  color,
	}
}
