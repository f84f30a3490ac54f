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
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColor(t *testing.T) {
	c := Color(0xFFFF00)
	r, g, b := c.RGB()
	assert.Equal(t, uint8(0xFF), r)
	assert.Equal(t, uint8(0xFF), g)
	assert.Equal(t, uint8(0), b)
	assert.Equal(t, "#FFFF00", c.Hex())
	assert.Equal(t, "#00FF00", Color(0x00FF00).Hex())
}

func newSimTerminal(t *testing.T, onInterrupt func()) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term, err := newTerminal(sim, onInterrupt)
	require.NoError(t, err)
	sim.SetSize(40, 20)
	t.Cleanup(func() { _ = term.Release() })
	return term, sim
}

func TestTerminal_ShowLines(t *testing.T) {
	term, sim := newSimTerminal(t, nil)

	err := term.Show(Frame{
		Kind:   KindStats,
		Width:  240,
		Height: 240,
		Lines: []Line{
			{Text: "PI", Color: 0xFFFF00},
			{Text: "Load: 0.5", Color: 0x00FF00},
		},
	})
	require.NoError(t, err)

	ch, _, style, _ := sim.GetContent(0, 0)
	assert.Equal(t, 'P', ch)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xFF, 0xFF, 0), fg)

	ch, _, _, _ = sim.GetContent(0, 1)
	assert.Equal(t, 'L', ch)
}

func TestTerminal_ShowSpriteScaled(t *testing.T) {
	term, sim := newSimTerminal(t, nil)

	// Bottom-right corner of a 240x240 canvas lands in the last cells.
	err := term.Show(Frame{
		Kind:    KindIdle,
		Width:   240,
		Height:  240,
		Sprites: []SpriteView{{X: 180, Y: 164, Width: 60, Height: 76, Color: 0xFFFFFF}},
	})
	require.NoError(t, err)

	ch, _, _, _ := sim.GetContent(39, 19)
	assert.Equal(t, spriteRune, ch)
	ch, _, _, _ = sim.GetContent(0, 0)
	assert.NotEqual(t, spriteRune, ch)
}

func TestTerminal_InterruptKey(t *testing.T) {
	var interrupted atomic.Int32
	_, sim := newSimTerminal(t, func() { interrupted.Add(1) })

	sim.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)

	assert.Eventually(t, func() bool { return interrupted.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestTerminal_ReleaseTwice(t *testing.T) {
	term, _ := newSimTerminal(t, nil)
	assert.NoError(t, term.Release())
	assert.NoError(t, term.Release())
}

func TestConsole_Show(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	require.NoError(t, c.Show(Frame{Kind: KindStats, Lines: []Line{{Text: "Mem: 8.0 GB", Color: 0xFFFF00}}}))
	assert.Contains(t, buf.String(), "Mem: 8.0 GB")

	buf.Reset()
	idle := Frame{Kind: KindIdle, Sprites: []SpriteView{{}}}
	require.NoError(t, c.Show(idle))
	require.NoError(t, c.Show(idle))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("screensaver")), "idle is reported once per period")

	require.NoError(t, c.Clear())
	require.NoError(t, c.Show(idle))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("screensaver")))
}

func TestConsole_Colors(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	require.NoError(t, c.Show(Frame{Kind: KindStats, Lines: []Line{{Text: "Temp", Color: 0xFF0000}}}))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.NoError(t, c.Release())
}
