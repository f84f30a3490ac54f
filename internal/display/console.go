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

package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/logrusorgru/aurora"
)

// Console writes stats frames as colored text. Idle frames are reported
// once per idle period instead of per frame.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	au       aurora.Aurora
	lastKind Kind
	shown    bool
}

// NewConsole creates a console sink. colors enables ANSI escapes.
func NewConsole(w io.Writer, colors bool) *Console {
	return &Console{w: w, au: aurora.NewAurora(colors)}
}

// Show writes f.
func (c *Console) Show(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Kind == KindIdle && c.shown && c.lastKind == KindIdle {
		return nil
	}
	c.lastKind = f.Kind
	c.shown = true

	var sb strings.Builder
	switch f.Kind {
	case KindIdle:
		fmt.Fprintf(&sb, "%s (%d sprites)\n", c.au.Cyan("screensaver"), len(f.Sprites))
	default:
		sb.WriteString(strings.Repeat("-", 24))
		sb.WriteString("\n")
		for _, line := range f.Lines {
			sb.WriteString(c.paint(line))
			sb.WriteString("\n")
		}
	}

	if _, err := io.WriteString(c.w, sb.String()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// paint maps the line color onto the closest basic terminal color.
func (c *Console) paint(line Line) string {
	r, g, b := line.Color.RGB()
	switch {
	case r > 127 && g > 127 && b > 127:
		return c.au.White(line.Text).String()
	case r > 127 && g > 127:
		return c.au.Yellow(line.Text).String()
	case r > 127:
		return c.au.Red(line.Text).String()
	case g > 127:
		return c.au.Green(line.Text).String()
	case b > 127:
		return c.au.Blue(line.Text).String()
	default:
		return line.Text
	}
}

// Clear forgets the last frame so the next one is written in full.
func (c *Console) Clear() error {
	c.mu.Lock()
	c.shown = false
	c.mu.Unlock()
	return nil
}

// Release is a no-op; the writer belongs to the caller.
func (c *Console) Release() error {
	return nil
}
