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
	"sync"

	"github.com/gdamore/tcell/v2"
)

// spriteRune fills sprite cells.
const spriteRune = '█'

// Terminal draws frames on a tcell screen, scaling the canvas to the
// terminal size. Ctrl-C, Esc and q call the interrupt callback.
type Terminal struct {
	screen      tcell.Screen
	onInterrupt func()
	events      sync.WaitGroup
	releaseOnce sync.Once
}

// NewTerminal opens the controlling terminal.
func NewTerminal(onInterrupt func()) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return newTerminal(screen, onInterrupt)
}

func newTerminal(screen tcell.Screen, onInterrupt func()) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{screen: screen, onInterrupt: onInterrupt}
	t.events.Add(1)
	go t.pollEvents()
	return t, nil
}

func (t *Terminal) pollEvents() {
	defer t.events.Done()
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// Screen finalized
			return
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if isInterruptKey(ev) && t.onInterrupt != nil {
				t.onInterrupt()
			}
		}
	}
}

func isInterruptKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// Show draws f.
func (t *Terminal) Show(f Frame) error {
	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("terminal has no drawable area (%dx%d)", cols, rows)
	}

	t.screen.Clear()

	for row, line := range f.Lines {
		if row >= rows {
			break
		}
		style := tcell.StyleDefault.Foreground(tcellColor(line.Color))
		col := 0
		for _, r := range line.Text {
			if col >= cols {
				break
			}
			t.screen.SetContent(col, row, r, nil, style)
			col++
		}
	}

	for _, s := range f.Sprites {
		t.drawSprite(s, f.Width, f.Height, cols, rows)
	}

	t.screen.Show()
	return nil
}

// drawSprite maps a canvas rectangle onto terminal cells. A sprite always
// covers at least one cell.
func (t *Terminal) drawSprite(s SpriteView, width, height, cols, rows int) {
	if width <= 0 || height <= 0 {
		return
	}
	x0 := s.X * cols / width
	y0 := s.Y * rows / height
	x1 := max((s.X+s.Width)*cols/width, x0+1)
	y1 := max((s.Y+s.Height)*rows/height, y0+1)

	style := tcell.StyleDefault.Foreground(tcellColor(s.Color))
	for y := y0; y < y1 && y < rows; y++ {
		for x := x0; x < x1 && x < cols; x++ {
			t.screen.SetContent(x, y, spriteRune, nil, style)
		}
	}
}

// Clear blanks the terminal.
func (t *Terminal) Clear() error {
	t.screen.Clear()
	t.screen.Show()
	return nil
}

// Release restores the terminal. It is safe to call more than once.
func (t *Terminal) Release() error {
	t.releaseOnce.Do(func() {
		t.screen.Fini()
		t.events.Wait()
	})
	return nil
}

func tcellColor(c Color) tcell.Color {
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
