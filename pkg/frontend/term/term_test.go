// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package term_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/gochip8/pkg/emulator"
	"github.com/lassandro/gochip8/pkg/frontend/term"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

func TestKeysHold(t *testing.T) {
	keys := term.NewKeys(keymap.Default(), 2)
	var keypad [machine.KEY_NUM]bool

	assert.Equal(t, emulator.SignalNone, keys.Feed([]byte("wV")))

	keys.Apply(&keypad)
	assert.True(t, keypad[0x5])
	assert.True(t, keypad[0xF])

	keys.Apply(&keypad)
	assert.True(t, keypad[0x5])

	keys.Apply(&keypad)
	assert.False(t, keypad[0x5])
	assert.False(t, keypad[0xF])
}

func TestKeysSignals(t *testing.T) {
	for _, test := range []struct {
		Name  string
		Input string
		Want  emulator.Signal
	}{
		{"Escape", "\x1b", emulator.SignalQuit},
		{"Ctrl-C", "\x03", emulator.SignalQuit},
		{"Ctrl-D", "\x04", emulator.SignalQuit},
		{"Space", " ", emulator.SignalPause},
		{"Both", " q\x1b", emulator.SignalQuit | emulator.SignalPause},
		{"Arrow", "\x1b[A", emulator.SignalNone},
		{"Function", "\x1bOP", emulator.SignalNone},
		{"Unmapped", "p", emulator.SignalNone},
	} {
		t.Run(test.Name, func(t *testing.T) {
			keys := term.NewKeys(keymap.Default(), term.HOLD_FRAMES)
			assert.Equal(t, test.Want, keys.Feed([]byte(test.Input)))
		})
	}
}

func TestKeysSkipEscapeSequence(t *testing.T) {
	keys := term.NewKeys(keymap.Default(), 1)
	var keypad [machine.KEY_NUM]bool

	// "\x1b[1;5D" must not press 1 (key 0x1) or D (key 0x9)
	keys.Feed([]byte("\x1b[1;5Dx"))
	keys.Apply(&keypad)

	assert.False(t, keypad[0x1])
	assert.False(t, keypad[0x9])
	assert.True(t, keypad[0x0])
}

func TestScreenDraw(t *testing.T) {
	var fb emulator.Framebuffer
	fb[0] = true                       // (0, 0) top
	fb[machine.DISPLAY_WIDTH+1] = true // (1, 1) bottom
	fb[2] = true                       // (2, 0) top
	fb[machine.DISPLAY_WIDTH+2] = true // (2, 1) bottom

	screen := term.NewScreen(0xFF800000, 0x000000FF)

	var out strings.Builder
	assert.NoError(t, screen.Draw(&out, &fb))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "\x1b[38;2;255;128;0;48;2;0;0;0m▀▄█ "))
	assert.Equal(t, machine.DISPLAY_HEIGHT/2-1, strings.Count(text, "\r\n"))
}

func TestScreenChanged(t *testing.T) {
	var fb emulator.Framebuffer
	screen := term.NewScreen(0xFFFFFFFF, 0)

	assert.True(t, screen.Changed(&fb))
	assert.False(t, screen.Changed(&fb))

	fb[100] = true
	assert.True(t, screen.Changed(&fb))
}
