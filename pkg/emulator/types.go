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

package emulator

import (
	"github.com/lassandro/gochip8/pkg/machine"
)

// Signal carries host requests that are not keypad input. Several signals may
// arrive in the same frame.
type Signal uint8

const (
	SignalQuit Signal = 1 << iota
	SignalPause
)

const SignalNone Signal = 0

type Framebuffer = [machine.DISPLAY_WIDTH * machine.DISPLAY_HEIGHT]bool

type Display interface {
	Render(fb *Framebuffer) error
}

// Input updates the keypad in place and reports any host signals
type Input interface {
	Poll(keypad *[machine.KEY_NUM]bool) (Signal, error)
}

// Audio is told once per frame whether the beeper is sounding
type Audio interface {
	Frame(on bool) error
}

type Emulator struct {
	Machine *machine.Machine
	Display Display
	Input   Input
	Audio   []Audio

	InstructionsPerFrame int
	FramesPerSecond      int
}
