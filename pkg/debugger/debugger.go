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

// Package debugger attaches to a machine through its debug hooks. It traces
// executed instructions, pauses on breakpoints and reports memory watchpoints.
// There is no interactive front end, a paused machine is resumed by the host.
package debugger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

func log() commonlog.Logger {
	return commonlog.GetLogger("gochip8.debugger")
}

// New returns a debugger whose handlers pause the machine on a breakpoint and
// log watchpoint hits.
func New() *Debugger {
	return &Debugger{
		HandleBreak: PauseOnBreak,
		HandleRead:  LogWatch("read"),
		HandleWrite: LogWatch("write"),
	}
}

func PauseOnBreak(dbg *Debugger, mc *machine.Machine) {
	log().Infof("break at %#03x", mc.State.Program)
	mc.Pause()
}

func LogWatch(access string) func(uint16, *Debugger, *machine.Machine) {
	return func(addr uint16, dbg *Debugger, mc *machine.Machine) {
		log().Infof(
			"watch %s [%#03x] = %#02x by %#03x",
			access,
			addr,
			mc.State.Memory[addr],
			mc.State.Fetched,
		)
	}
}

// AddBreakpoint reports whether the breakpoint was new
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	addr &= machine.MEMORY_MASK

	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

func (dbg *Debugger) RemoveBreakpoint(addr uint16) bool {
	for i, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
			dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
			return true
		}
	}
	return false
}

// AddWatchpoint reports whether the watchpoint was new
func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	addr &= machine.MEMORY_MASK

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

var ErrInvalidWatchpoint = errors.New("invalid watchpoint")

// ParseWatchpoint reads a watchpoint in the form addr[:r|w|rw]. The access
// defaults to rw when omitted.
func ParseWatchpoint(s string) (Watchpoint, error) {
	addrpart, typepart, found := strings.Cut(strings.TrimSpace(s), ":")

	addr, err := encoding.DecodeAddress(addrpart)
	if err != nil {
		return Watchpoint{}, fmt.Errorf("%w %q: %w", ErrInvalidWatchpoint, s, err)
	}

	if addr > machine.MEMORY_MASK {
		return Watchpoint{}, fmt.Errorf("%w %q: address out of range", ErrInvalidWatchpoint, s)
	}

	wtype := ReadWriteWatch

	if found {
		switch strings.ToLower(typepart) {
		case "r":
			wtype = ReadWatch
		case "w":
			wtype = WriteWatch
		case "rw", "wr":
			wtype = ReadWriteWatch
		default:
			return Watchpoint{}, fmt.Errorf("%w %q: access must be r, w or rw", ErrInvalidWatchpoint, s)
		}
	}

	return Watchpoint{addr, wtype}, nil
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Trace {
		log().Debug(Trace(&mc.State))
	}

	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// Trace formats the most recently executed instruction as
// "address opcode: description".
func Trace(state *machine.MachineState) string {
	return fmt.Sprintf(
		"%#03x %04X: %s",
		state.Fetched,
		state.Current.Opcode,
		Describe(state.Current),
	)
}

// Describe explains what an instruction does in terms of its operands.
func Describe(inst machine.Instruction) string {
	switch inst.Op {
	case machine.OpCLS:
		return "clear screen"
	case machine.OpRET:
		return "return from subroutine"
	case machine.OpJP:
		return fmt.Sprintf("jump to %#03x", inst.NNN)
	case machine.OpCALL:
		return fmt.Sprintf("call subroutine at %#03x", inst.NNN)
	case machine.OpSEImm:
		return fmt.Sprintf("skip next if V%X == %#02x", inst.X, inst.NN)
	case machine.OpSNEImm:
		return fmt.Sprintf("skip next if V%X != %#02x", inst.X, inst.NN)
	case machine.OpSEReg:
		return fmt.Sprintf("skip next if V%X == V%X", inst.X, inst.Y)
	case machine.OpLDImm:
		return fmt.Sprintf("V%X = %#02x", inst.X, inst.NN)
	case machine.OpADDImm:
		return fmt.Sprintf("V%X += %#02x", inst.X, inst.NN)
	case machine.OpMOV:
		return fmt.Sprintf("V%X = V%X", inst.X, inst.Y)
	case machine.OpOR:
		return fmt.Sprintf("V%X |= V%X", inst.X, inst.Y)
	case machine.OpAND:
		return fmt.Sprintf("V%X &= V%X", inst.X, inst.Y)
	case machine.OpXOR:
		return fmt.Sprintf("V%X ^= V%X", inst.X, inst.Y)
	case machine.OpADD:
		return fmt.Sprintf("V%X += V%X, VF = carry", inst.X, inst.Y)
	case machine.OpSUB:
		return fmt.Sprintf("V%X -= V%X, VF = no borrow", inst.X, inst.Y)
	case machine.OpSHR:
		return fmt.Sprintf("V%X >>= 1, VF = shifted bit", inst.X)
	case machine.OpSUBN:
		return fmt.Sprintf("V%X = V%X - V%X, VF = no borrow", inst.X, inst.Y, inst.X)
	case machine.OpSHL:
		return fmt.Sprintf("V%X <<= 1, VF = shifted bit", inst.X)
	case machine.OpSNEReg:
		return fmt.Sprintf("skip next if V%X != V%X", inst.X, inst.Y)
	case machine.OpLDI:
		return fmt.Sprintf("I = %#03x", inst.NNN)
	case machine.OpJPV0:
		return fmt.Sprintf("jump to V0 + %#03x", inst.NNN)
	case machine.OpRND:
		return fmt.Sprintf("V%X = rand() & %#02x", inst.X, inst.NN)
	case machine.OpDRW:
		return fmt.Sprintf("draw %d rows from I at (V%X, V%X)", inst.N, inst.X, inst.Y)
	case machine.OpSKP:
		return fmt.Sprintf("skip next if key V%X is down", inst.X)
	case machine.OpSKNP:
		return fmt.Sprintf("skip next if key V%X is up", inst.X)
	case machine.OpLDDT:
		return fmt.Sprintf("V%X = delay timer", inst.X)
	case machine.OpWAITK:
		return fmt.Sprintf("wait for key into V%X", inst.X)
	case machine.OpSETDT:
		return fmt.Sprintf("delay timer = V%X", inst.X)
	case machine.OpSETST:
		return fmt.Sprintf("sound timer = V%X", inst.X)
	case machine.OpADDI:
		return fmt.Sprintf("I += V%X", inst.X)
	case machine.OpFONT:
		return fmt.Sprintf("I = glyph for V%X", inst.X)
	case machine.OpBCD:
		return fmt.Sprintf("store BCD of V%X at I", inst.X)
	case machine.OpSTORE:
		return fmt.Sprintf("store V0..V%X at I", inst.X)
	case machine.OpLOAD:
		return fmt.Sprintf("load V0..V%X from I", inst.X)
	}
	return "unimplemented"
}
