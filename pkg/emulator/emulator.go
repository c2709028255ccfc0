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

// Package emulator drives a machine at a fixed frame rate. Each frame polls
// input, runs a batch of instructions, ticks the timers once and presents the
// display and beeper state to the host.
package emulator

import (
	"context"
	"time"

	"github.com/tliron/commonlog"

	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	DEFAULT_INSTRUCTIONS_PER_FRAME = 8
	DEFAULT_FRAMES_PER_SECOND      = 60
)

func log() commonlog.Logger {
	return commonlog.GetLogger("gochip8.emulator")
}

func New(mc *machine.Machine, display Display, input Input, audio ...Audio) *Emulator {
	return &Emulator{
		Machine:              mc,
		Display:              display,
		Input:                input,
		Audio:                audio,
		InstructionsPerFrame: DEFAULT_INSTRUCTIONS_PER_FRAME,
		FramesPerSecond:      DEFAULT_FRAMES_PER_SECOND,
	}
}

func (emu *Emulator) signal(sig Signal) {
	mc := emu.Machine

	if sig&SignalQuit != 0 {
		mc.Halt()
		log().Info("halted")
		return
	}

	if sig&SignalPause != 0 {
		mc.TogglePause()

		switch mc.RunState() {
		case machine.Paused:
			log().Info("paused")
		case machine.Running:
			log().Info("resumed")
		}
	}
}

// Frame advances the emulation by one frame without waiting. A halted machine
// is left untouched.
func (emu *Emulator) Frame() error {
	mc := emu.Machine

	if mc.RunState() == machine.Halted {
		return nil
	}

	if emu.Input != nil {
		sig, err := emu.Input.Poll(&mc.State.Keypad)
		if err != nil {
			return err
		}

		emu.signal(sig)

		if mc.RunState() == machine.Halted {
			return nil
		}
	}

	// A breakpoint may pause the machine part way through the batch
	for i := 0; i < emu.InstructionsPerFrame && mc.RunState() == machine.Running; i++ {
		mc.Step()
	}

	mc.TickTimers()

	if emu.Display != nil {
		if err := emu.Display.Render(&mc.State.Display); err != nil {
			return err
		}
	}

	beep := mc.SoundActive() && mc.RunState() == machine.Running
	for _, audio := range emu.Audio {
		if err := audio.Frame(beep); err != nil {
			return err
		}
	}

	return nil
}

// Run emulates frames at FramesPerSecond until the machine halts, the context
// is cancelled or a host collaborator fails.
func (emu *Emulator) Run(ctx context.Context) error {
	fps := emu.FramesPerSecond
	if fps <= 0 {
		fps = DEFAULT_FRAMES_PER_SECOND
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	log().Infof(
		"running at %d instructions per frame, %d frames per second",
		emu.InstructionsPerFrame, fps,
	)

	for {
		if err := emu.Frame(); err != nil {
			return err
		}

		if emu.Machine.RunState() == machine.Halted {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
