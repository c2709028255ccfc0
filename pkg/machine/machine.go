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

import (
	"io"

	"github.com/tliron/commonlog"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/random"
)

// Fetched per call so that a backend configured after package init is honoured
func log() commonlog.Logger {
	return commonlog.GetLogger("gochip8.machine")
}

type Option func(mc *Machine)

func WithRandom(rnd Randomness) Option {
	return func(mc *Machine) {
		mc.Random = rnd
	}
}

func WithDebugger(dbg MachineDebugger) Option {
	return func(mc *Machine) {
		mc.Debugger = dbg
	}
}

// New returns a running machine with the font installed and the program
// counter at the entry point.
func New(opts ...Option) *Machine {
	mc := &Machine{}
	mc.Reset()

	for _, opt := range opts {
		opt(mc)
	}

	if mc.Random == nil {
		mc.Random = random.NewRandom()
	}

	return mc
}

func (mc *MachineState) Reset() {
	*mc = MachineState{}

	copy(mc.Memory[MEMSPACE_FONT:], font[:])

	mc.Program = MEMSPACE_PROGRAM
}

func (mc *Machine) Reset() {
	mc.State.Reset()
	mc.runstate = Running
}

// Load copies a raw program image to the entry point. An oversized program is
// rejected before any memory is touched.
func (mc *Machine) Load(program []byte) error {
	if len(program) > MAX_PROGRAM_SIZE {
		return &LoadError{Reason: ProgramTooLarge, Size: len(program)}
	}

	copy(mc.State.Memory[MEMSPACE_PROGRAM:], program)
	mc.State.Program = MEMSPACE_PROGRAM

	return nil
}

func (mc *Machine) LoadBin(reader io.Reader) error {
	program, err := io.ReadAll(io.LimitReader(reader, int64(MAX_PROGRAM_SIZE)+1))
	if err != nil {
		return err
	}

	return mc.Load(program)
}

func (mc *Machine) RunState() RunState {
	return mc.runstate
}

func (mc *Machine) Pause() {
	if mc.runstate == Running {
		mc.runstate = Paused
	}
}

func (mc *Machine) Resume() {
	if mc.runstate == Paused {
		mc.runstate = Running
	}
}

func (mc *Machine) TogglePause() {
	switch mc.runstate {
	case Running:
		mc.runstate = Paused
	case Paused:
		mc.runstate = Running
	}
}

// Halt is terminal, nothing moves a halted machine back to Running other
// than Reset.
func (mc *Machine) Halt() {
	mc.runstate = Halted
}

func (mc *Machine) SetKey(key uint8, down bool) {
	mc.State.Keypad[key&0xF] = down
}

func (mc *Machine) Pixel(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}
	return mc.State.Display[y*DISPLAY_WIDTH+x]
}

func (mc *Machine) Framebuffer() [DISPLAY_WIDTH * DISPLAY_HEIGHT]bool {
	return mc.State.Display
}

func (mc *Machine) SoundActive() bool {
	return mc.State.SoundTimer > 0
}

func (mc *Machine) read(addr uint16) uint8 {
	addr &= MEMORY_MASK

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value uint8) {
	addr &= MEMORY_MASK

	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

// push drops the call when all stack slots are in use
func (mc *Machine) push(value uint16) bool {
	if mc.State.StackDepth >= STACK_DEPTH {
		log().Warningf(
			"stack overflow at %#03x, call to %#03x ignored",
			mc.State.Fetched, mc.State.Current.NNN,
		)
		return false
	}

	mc.State.Stack[mc.State.StackDepth] = value
	mc.State.StackDepth++
	return true
}

// pop leaves the program counter alone when there is nothing to return to
func (mc *Machine) pop() (uint16, bool) {
	if mc.State.StackDepth == 0 {
		log().Warningf(
			"stack underflow at %#03x, return ignored", mc.State.Fetched,
		)
		return 0, false
	}

	mc.State.StackDepth--
	return mc.State.Stack[mc.State.StackDepth], true
}

func (mc *Machine) skipIf(cond bool) {
	if cond {
		mc.State.Program += 2
	}
}

// TickTimers is expected at 60Hz. It has no notion of wall-clock time.
func (mc *Machine) TickTimers() {
	if mc.runstate != Running {
		return
	}

	if mc.State.DelayTimer > 0 {
		mc.State.DelayTimer--
	}

	if mc.State.SoundTimer > 0 {
		mc.State.SoundTimer--
	}
}

func (mc *Machine) Step() {
	if mc.runstate != Running {
		return
	}

	state := &mc.State

	state.Fetched = state.Program & MEMORY_MASK

	opcode := encoding.Word(mc.read(state.Program), mc.read(state.Program+1))
	state.Program += 2

	state.Current = Decode(opcode)
	inst := &state.Current

	vx := &state.Registers[inst.X]
	vy := state.Registers[inst.Y]

	switch inst.Op {
	case OpCLS:
		state.Display = [DISPLAY_WIDTH * DISPLAY_HEIGHT]bool{}

	case OpRET:
		if addr, ok := mc.pop(); ok {
			state.Program = addr
		}

	case OpJP:
		state.Program = inst.NNN

	case OpCALL:
		if mc.push(state.Program) {
			state.Program = inst.NNN
		}

	case OpSEImm:
		mc.skipIf(*vx == inst.NN)

	case OpSNEImm:
		mc.skipIf(*vx != inst.NN)

	case OpSEReg:
		mc.skipIf(*vx == vy)

	case OpLDImm:
		*vx = inst.NN

	case OpADDImm:
		*vx += inst.NN

	case OpMOV:
		*vx = vy

	case OpOR:
		*vx |= vy

	case OpAND:
		*vx &= vy

	case OpXOR:
		*vx ^= vy

	// The flag is computed from the operands first and written last so that
	// it survives when VF is itself the destination.
	case OpADD:
		carry := uint16(*vx)+uint16(vy) > 0xFF
		*vx += vy
		state.Registers[FLAG_REGISTER] = encoding.Bool(carry)

	case OpSUB:
		noborrow := *vx >= vy
		*vx -= vy
		state.Registers[FLAG_REGISTER] = encoding.Bool(noborrow)

	case OpSHR:
		bit := *vx & 0x1
		*vx >>= 1
		state.Registers[FLAG_REGISTER] = bit

	case OpSUBN:
		noborrow := vy >= *vx
		*vx = vy - *vx
		state.Registers[FLAG_REGISTER] = encoding.Bool(noborrow)

	case OpSHL:
		bit := *vx >> 7
		*vx <<= 1
		state.Registers[FLAG_REGISTER] = bit

	case OpSNEReg:
		mc.skipIf(*vx != vy)

	case OpLDI:
		state.Index = inst.NNN

	case OpJPV0:
		state.Program = inst.NNN + uint16(state.Registers[0])

	case OpRND:
		*vx = mc.Random.Byte() & inst.NN

	case OpDRW:
		mc.draw(*vx, vy, inst.N)

	case OpSKP:
		mc.skipIf(state.Keypad[*vx&0xF])

	case OpSKNP:
		mc.skipIf(!state.Keypad[*vx&0xF])

	case OpLDDT:
		*vx = state.DelayTimer

	// With no key down the program counter is wound back so the same
	// instruction is fetched again on the next step.
	case OpWAITK:
		pressed := false
		for key, down := range state.Keypad {
			if down {
				*vx = uint8(key)
				pressed = true
				break
			}
		}

		if !pressed {
			state.Program -= 2
		}

	case OpSETDT:
		state.DelayTimer = *vx

	case OpSETST:
		state.SoundTimer = *vx

	case OpADDI:
		state.Index += uint16(*vx)

	case OpFONT:
		state.Index = MEMSPACE_FONT + uint16(*vx)*GLYPH_SIZE

	case OpBCD:
		value := *vx
		mc.write(state.Index, value/100)
		mc.write(state.Index+1, (value/10)%10)
		mc.write(state.Index+2, value%10)

	// Index is left where it was after a bulk store or load
	case OpSTORE:
		for i := uint16(0); i <= uint16(inst.X); i++ {
			mc.write(state.Index+i, state.Registers[i])
		}

	case OpLOAD:
		for i := uint16(0); i <= uint16(inst.X); i++ {
			state.Registers[i] = mc.read(state.Index + i)
		}

	default:
		// Unknown words are ignored
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}
}

// draw XORs an n row sprite from memory at the index register onto the
// display. Sprites are clipped at the right and bottom edges, only the
// starting coordinate wraps.
func (mc *Machine) draw(vx, vy uint8, n uint8) {
	state := &mc.State

	originX := int(vx) % DISPLAY_WIDTH
	y := int(vy) % DISPLAY_HEIGHT

	state.Registers[FLAG_REGISTER] = 0

	for row := uint16(0); row < uint16(n); row++ {
		if y >= DISPLAY_HEIGHT {
			break
		}

		sprite := mc.read(state.Index + row)

		for bit, x := 7, originX; bit >= 0 && x < DISPLAY_WIDTH; bit, x = bit-1, x+1 {
			set := (sprite>>uint(bit))&0x1 == 1
			pixel := &state.Display[y*DISPLAY_WIDTH+x]

			if set && *pixel {
				state.Registers[FLAG_REGISTER] = 1
			}

			*pixel = *pixel != set
		}

		y++
	}
}
