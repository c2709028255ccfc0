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

package term

import (
	"github.com/lassandro/gochip8/pkg/emulator"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

// Terminals only report key presses, never releases, so a pressed key is held
// down for a fixed number of polled frames.
const HOLD_FRAMES = 6

type Keys struct {
	km     keymap.Keymap
	frames int
	hold   [machine.KEY_NUM]int
}

func NewKeys(km keymap.Keymap, frames int) *Keys {
	return &Keys{km: km, frames: frames}
}

// Feed consumes raw terminal input. Escape, Ctrl-C and Ctrl-D quit and space
// toggles pause. Escape sequences such as the arrow keys are skipped.
func (keys *Keys) Feed(input []byte) emulator.Signal {
	sig := emulator.SignalNone

	for i := 0; i < len(input); i++ {
		b := input[i]

		switch b {
		case 0x1B:
			if i+1 < len(input) && (input[i+1] == '[' || input[i+1] == 'O') {
				// CSI and SS3 sequences end on a byte in 0x40..0x7E
				i += 2
				for i < len(input) && (input[i] < 0x40 || input[i] > 0x7E) {
					i++
				}
				continue
			}
			sig |= emulator.SignalQuit

		case 0x03, 0x04:
			sig |= emulator.SignalQuit

		case ' ':
			sig |= emulator.SignalPause

		default:
			if key, ok := keys.km.Lookup(string(rune(b))); ok {
				keys.hold[key] = keys.frames
			}
		}
	}

	return sig
}

// Apply writes the held keys to the keypad and ages every hold by one frame
func (keys *Keys) Apply(keypad *[machine.KEY_NUM]bool) {
	for key := range keys.hold {
		keypad[key] = keys.hold[key] > 0

		if keys.hold[key] > 0 {
			keys.hold[key]--
		}
	}
}
