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

package machine_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/random"
)

func newMachine(t *testing.T, program ...byte) *machine.Machine {
	t.Helper()

	mc := machine.New(machine.WithRandom(&random.Sequence{}))
	require.NoError(t, mc.Load(program))
	return mc
}

func litPixels(mc *machine.Machine) int {
	count := 0
	for _, on := range mc.Framebuffer() {
		if on {
			count++
		}
	}
	return count
}

func TestNew(t *testing.T) {
	mc := machine.New()

	assert.Equal(t, machine.Running, mc.RunState())
	assert.Equal(t, machine.MEMSPACE_PROGRAM, mc.State.Program)
	assert.Zero(t, mc.State.StackDepth)
	assert.Zero(t, litPixels(mc))

	for digit := uint8(0); digit < machine.GLYPH_NUM; digit++ {
		glyph := machine.Glyph(digit)
		start := int(machine.MEMSPACE_FONT) + int(digit)*machine.GLYPH_SIZE
		assert.Equal(t, glyph[:], mc.State.Memory[start:start+machine.GLYPH_SIZE])
	}
}

func TestNewInstallsRandom(t *testing.T) {
	assert.NotNil(t, machine.New().Random)
	assert.NotNil(t, machine.New(machine.WithRandom(nil)).Random)

	// RND draws from the installed source without replacing it
	seq := &random.Sequence{Values: []uint8{0x3C}}
	mc := machine.New(machine.WithRandom(seq))
	require.NoError(t, mc.Load([]byte{0xC0, 0xFF}))

	mc.Step()
	assert.Same(t, seq, mc.Random)
	assert.Equal(t, uint8(0x3C), mc.State.Registers[0])
}

func TestLoad(t *testing.T) {
	t.Run("Exact Fit", func(t *testing.T) {
		program := bytes.Repeat([]byte{0xAB}, machine.MAX_PROGRAM_SIZE)

		mc := machine.New()
		require.NoError(t, mc.Load(program))
		assert.Equal(t, uint8(0xAB), mc.State.Memory[machine.MEMORY_SIZE-1])
		assert.Equal(t, machine.MEMSPACE_PROGRAM, mc.State.Program)
	})

	t.Run("Too Large", func(t *testing.T) {
		program := bytes.Repeat([]byte{0xAB}, machine.MAX_PROGRAM_SIZE+1)

		mc := machine.New()
		before := mc.State

		err := mc.Load(program)
		require.Error(t, err)
		assert.ErrorIs(t, err, machine.ErrProgramTooLarge)

		var loadErr *machine.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, machine.ProgramTooLarge, loadErr.Reason)
		assert.Equal(t, machine.MAX_PROGRAM_SIZE+1, loadErr.Size)
		assert.Equal(
			t,
			"program too large: 3585 bytes, at most 3584 fit above 0x200",
			err.Error(),
		)

		assert.Equal(t, before, mc.State)
	})

	t.Run("Empty", func(t *testing.T) {
		mc := machine.New()
		require.NoError(t, mc.Load(nil))
		assert.Equal(t, machine.MEMSPACE_PROGRAM, mc.State.Program)
	})
}

func TestLoadBin(t *testing.T) {
	mc := machine.New()
	require.NoError(t, mc.LoadBin(bytes.NewReader([]byte{0x60, 0x05})))
	assert.Equal(t, uint8(0x60), mc.State.Memory[0x200])
	assert.Equal(t, uint8(0x05), mc.State.Memory[0x201])

	oversized := bytes.NewReader(make([]byte, machine.MAX_PROGRAM_SIZE*2))
	assert.ErrorIs(t, machine.New().LoadBin(oversized), machine.ErrProgramTooLarge)
}

func TestLoadImmediate(t *testing.T) {
	mc := newMachine(t, 0x60, 0x05)
	mc.Step()

	assert.Equal(t, uint8(0x05), mc.State.Registers[0])
	assert.Equal(t, uint16(0x202), mc.State.Program)
}

func TestDrawGlyphFromProgram(t *testing.T) {
	zero := machine.Glyph(0)

	// A21E D005, glyph bytes placed at 0x21E
	program := make([]byte, 0x1E+machine.GLYPH_SIZE)
	copy(program, []byte{0xA2, 0x1E, 0xD0, 0x05})
	copy(program[0x1E:], zero[:])

	mc := newMachine(t, program...)
	mc.Step()
	mc.Step()

	for y := 0; y < machine.GLYPH_SIZE; y++ {
		for x := 0; x < 8; x++ {
			want := (zero[y]>>uint(7-x))&0x1 == 1
			assert.Equal(t, want, mc.Pixel(x, y), "pixel (%d,%d)", x, y)
		}
	}

	assert.Equal(t, 14, litPixels(mc))
	assert.Zero(t, mc.State.Registers[machine.FLAG_REGISTER])
}

func TestDrawFontGlyph(t *testing.T) {
	// V0 = 8, I = glyph(V0), DRW V1 V1 5
	mc := newMachine(t, 0x60, 0x08, 0xF0, 0x29, 0xD1, 0x15)
	for i := 0; i < 3; i++ {
		mc.Step()
	}

	eight := machine.Glyph(8)
	for y := 0; y < machine.GLYPH_SIZE; y++ {
		for x := 0; x < 4; x++ {
			want := (eight[y]>>uint(7-x))&0x1 == 1
			assert.Equal(t, want, mc.Pixel(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestDrawTwiceRestores(t *testing.T) {
	// V0 = 30, V1 = 12, I = glyph(V2), draw twice
	mc := newMachine(t,
		0x60, 0x1E, 0x61, 0x0C, 0xF2, 0x29,
		0xD0, 0x15, 0xD0, 0x15,
	)
	mc.State.Display[0] = true
	before := mc.Framebuffer()

	for i := 0; i < 4; i++ {
		mc.Step()
	}
	assert.NotEqual(t, before, mc.Framebuffer())
	assert.Zero(t, mc.State.Registers[machine.FLAG_REGISTER])

	mc.Step()
	assert.Equal(t, before, mc.Framebuffer())
	assert.Equal(t, uint8(1), mc.State.Registers[machine.FLAG_REGISTER])
}

func TestDrawNeverWrapsSprite(t *testing.T) {
	// V0 = 60, V1 = 30, I = 0x20A, DRW V0 V1 4
	program := []byte{
		0x60, 0x3C, 0x61, 0x1E, 0xA2, 0x0A, 0xD0, 0x14,
		0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
	}

	mc := newMachine(t, program...)
	for i := 0; i < 4; i++ {
		mc.Step()
	}

	assert.Equal(t, 8, litPixels(mc))
	for y := 30; y < 32; y++ {
		for x := 60; x < 64; x++ {
			assert.True(t, mc.Pixel(x, y), "pixel (%d,%d)", x, y)
		}
	}
	assert.False(t, mc.Pixel(0, 0))
	assert.False(t, mc.Pixel(0, 30))
}

func TestClearScreenAlwaysBlanks(t *testing.T) {
	mc := newMachine(t, 0x00, 0xE0)
	for i := range mc.State.Display {
		mc.State.Display[i] = i%3 != 0
	}

	mc.Step()
	assert.Zero(t, litPixels(mc))
}

func TestCallReturnResumes(t *testing.T) {
	for addr := uint16(0x204); addr < machine.MEMORY_SIZE; addr += 0x1F2 {
		mc := machine.New()

		mc.State.Memory[0x200] = uint8(0x20 | addr>>8)
		mc.State.Memory[0x201] = uint8(addr)
		mc.State.Memory[addr] = 0x00
		mc.State.Memory[addr+1] = 0xEE

		mc.Step()
		assert.Equal(t, addr, mc.State.Program)
		assert.Equal(t, 1, mc.State.StackDepth)

		mc.Step()
		assert.Equal(t, uint16(0x202), mc.State.Program, "call to %#04x", addr)
		assert.Zero(t, mc.State.StackDepth)
	}
}

func TestStackOverflowIgnored(t *testing.T) {
	// 0x200: CALL 0x200, recursing until the stack is full
	mc := newMachine(t, 0x22, 0x00)

	for i := 0; i < machine.STACK_DEPTH; i++ {
		mc.Step()
	}
	require.Equal(t, machine.STACK_DEPTH, mc.State.StackDepth)
	require.Equal(t, uint16(0x200), mc.State.Program)

	mc.Step()
	assert.Equal(t, machine.STACK_DEPTH, mc.State.StackDepth)
	assert.Equal(t, uint16(0x202), mc.State.Program)
	assert.Equal(t, machine.Running, mc.RunState())
}

func TestAddFlag(t *testing.T) {
	values := []uint8{0x00, 0x01, 0x7F, 0x80, 0xFE, 0xFF}

	for x := uint8(0); x < machine.REGISTER_NUM; x++ {
		for y := uint8(0); y < machine.REGISTER_NUM; y++ {
			for _, a := range values {
				for _, b := range values {
					mc := newMachine(t, 0x80|x, y<<4|0x4)
					mc.State.Registers[x] = a
					mc.State.Registers[y] = b

					lhs := mc.State.Registers[x]
					rhs := mc.State.Registers[y]
					sum := uint16(lhs) + uint16(rhs)

					mc.Step()

					want := uint8(0)
					if sum > 0xFF {
						want = 1
					}
					assert.Equal(t, want, mc.State.Registers[machine.FLAG_REGISTER])

					if x != machine.FLAG_REGISTER {
						assert.Equal(t, uint8(sum), mc.State.Registers[x])
					}
				}
			}
		}
	}
}

func TestSubFlag(t *testing.T) {
	values := []uint8{0x00, 0x01, 0x7F, 0x80, 0xFE, 0xFF}

	for x := uint8(0); x < machine.REGISTER_NUM; x++ {
		for y := uint8(0); y < machine.REGISTER_NUM; y++ {
			for _, a := range values {
				for _, b := range values {
					mc := newMachine(t, 0x80|x, y<<4|0x5)
					mc.State.Registers[x] = a
					mc.State.Registers[y] = b

					lhs := mc.State.Registers[x]
					rhs := mc.State.Registers[y]

					mc.Step()

					want := uint8(0)
					if lhs >= rhs {
						want = 1
					}
					assert.Equal(t, want, mc.State.Registers[machine.FLAG_REGISTER])

					if x != machine.FLAG_REGISTER {
						assert.Equal(t, lhs-rhs, mc.State.Registers[x])
					}
				}
			}
		}
	}
}

func TestTickTimers(t *testing.T) {
	mc := machine.New()
	mc.State.DelayTimer = 3
	mc.State.SoundTimer = 10

	for i := 0; i < 5; i++ {
		mc.TickTimers()
	}

	assert.Zero(t, mc.State.DelayTimer)
	assert.Equal(t, uint8(5), mc.State.SoundTimer)
	assert.True(t, mc.SoundActive())

	for i := 0; i < 300; i++ {
		mc.TickTimers()
	}

	assert.Zero(t, mc.State.SoundTimer)
	assert.False(t, mc.SoundActive())
}

func TestWaitKey(t *testing.T) {
	// LD V1, K
	mc := newMachine(t, 0xF1, 0x0A)

	for i := 0; i < 3; i++ {
		mc.Step()
		assert.Equal(t, uint16(0x200), mc.State.Program)
	}

	mc.SetKey(0xC, true)
	mc.Step()

	assert.Equal(t, uint16(0x202), mc.State.Program)
	assert.Equal(t, uint8(0xC), mc.State.Registers[1])
}

func TestRandomMask(t *testing.T) {
	seq := &random.Sequence{Values: []uint8{0xFF, 0x5A}}
	mc := machine.New(machine.WithRandom(seq))
	require.NoError(t, mc.Load([]byte{0xC0, 0x0F, 0xC1, 0xF0}))

	mc.Step()
	mc.Step()

	assert.Equal(t, uint8(0x0F), mc.State.Registers[0])
	assert.Equal(t, uint8(0x50), mc.State.Registers[1])
}

func TestRunState(t *testing.T) {
	mc := newMachine(t, 0x60, 0x05, 0x61, 0x06)
	mc.State.DelayTimer = 4

	mc.Pause()
	assert.Equal(t, machine.Paused, mc.RunState())

	before := mc.State
	mc.Step()
	mc.TickTimers()
	assert.Equal(t, before, mc.State)

	mc.TogglePause()
	assert.Equal(t, machine.Running, mc.RunState())

	mc.Step()
	mc.TickTimers()
	assert.Equal(t, uint8(5), mc.State.Registers[0])
	assert.Equal(t, uint8(3), mc.State.DelayTimer)

	mc.Halt()
	mc.Resume()
	mc.TogglePause()
	assert.Equal(t, machine.Halted, mc.RunState())

	before = mc.State
	mc.Step()
	mc.TickTimers()
	assert.Equal(t, before, mc.State)

	mc.Reset()
	assert.Equal(t, machine.Running, mc.RunState())
}

func TestUnknownOpcodes(t *testing.T) {
	for _, opcode := range []uint16{0x0000, 0x0123, 0x8008, 0x800F, 0xE000, 0xF0FF} {
		mc := newMachine(t, uint8(opcode>>8), uint8(opcode))
		mc.State.Registers[0] = 0x81
		mc.State.Index = 0x123

		before := mc.State
		mc.Step()

		assert.Equal(t, uint16(0x202), mc.State.Program, "opcode %#04x", opcode)
		assert.Equal(t, before.Registers, mc.State.Registers, "opcode %#04x", opcode)
		assert.Equal(t, before.Index, mc.State.Index, "opcode %#04x", opcode)
		assert.Equal(t, before.Memory, mc.State.Memory, "opcode %#04x", opcode)
		assert.Equal(t, before.Display, mc.State.Display, "opcode %#04x", opcode)
	}
}

func TestPixelOutOfRange(t *testing.T) {
	mc := machine.New()
	mc.State.Display[0] = true

	assert.True(t, mc.Pixel(0, 0))
	assert.False(t, mc.Pixel(-1, 0))
	assert.False(t, mc.Pixel(machine.DISPLAY_WIDTH, 0))
	assert.False(t, mc.Pixel(0, machine.DISPLAY_HEIGHT))
}

type recordingDebugger struct {
	steps  int
	reads  []uint16
	writes []uint16
}

func (dbg *recordingDebugger) Step(mc *machine.Machine) {
	dbg.steps++
}

func (dbg *recordingDebugger) Read(addr uint16, mc *machine.Machine) {
	dbg.reads = append(dbg.reads, addr)
}

func (dbg *recordingDebugger) Write(addr uint16, mc *machine.Machine) {
	dbg.writes = append(dbg.writes, addr)
}

func TestDebuggerHooks(t *testing.T) {
	dbg := &recordingDebugger{}
	mc := machine.New(machine.WithDebugger(dbg))

	// LD I 0x300, LD B V0
	require.NoError(t, mc.Load([]byte{0xA3, 0x00, 0xF0, 0x33}))
	mc.Step()
	mc.Step()

	assert.Equal(t, 2, dbg.steps)
	assert.Equal(t, []uint16{0x200, 0x201, 0x202, 0x203}, dbg.reads)
	assert.Equal(t, []uint16{0x300, 0x301, 0x302}, dbg.writes)
}
