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

package machine

// RunState is not architectural. It lets the driving loop suspend and resume
// execution without losing machine state.
type RunState uint8

const (
	Running RunState = iota
	Paused
	Halted
)

func (rs RunState) String() string {
	switch rs {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// Randomness supplies the bytes consumed by the CXNN instruction.
type Randomness interface {
	Byte() uint8
}

type MachineState struct {
	Memory    [MEMORY_SIZE]uint8
	Registers [REGISTER_NUM]uint8
	Index     uint16
	Program   uint16

	Stack      [STACK_DEPTH]uint16
	StackDepth int

	Display [DISPLAY_WIDTH * DISPLAY_HEIGHT]bool

	DelayTimer uint8
	SoundTimer uint8

	Keypad [KEY_NUM]bool

	// Decode scratch for the most recently fetched instruction, and the
	// address it was fetched from
	Current Instruction
	Fetched uint16
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	State    MachineState
	Random   Randomness
	Debugger MachineDebugger

	runstate RunState
}
