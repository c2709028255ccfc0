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

package main

import (
	"fmt"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/emulator"
	"github.com/lassandro/gochip8/pkg/frontend/sdl"
	"github.com/lassandro/gochip8/pkg/sound"
)

// host bundles the collaborators the emulator talks to and everything that
// has to be released when it stops.
type host struct {
	Display emulator.Display
	Input   emulator.Input
	Audio   []emulator.Audio

	closers []func() error
}

func (h *host) Close() error {
	var first error

	// Release in reverse order of acquisition
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func openHost(cfg *config.Config, title string) (*host, error) {
	h := &host{}

	var beeper *sound.Beeper

	if cfg.Audio.Enabled || cfg.Audio.Wav != "" {
		tone := sound.NewTone(
			cfg.Audio.Frequency,
			cfg.Audio.SampleRate,
			uint8(cfg.Audio.Volume),
		)
		beeper = sound.NewBeeper(tone, cfg.FramesPerSecond)
	}

	live := cfg.Audio.Enabled && !mutevar
	fg, bg := cfg.Colors()

	switch cfg.Frontend {
	case config.FRONTEND_SDL:
		opts := sdl.Options{
			Title:      "gochip8 - " + title,
			Scale:      cfg.Scale,
			Foreground: fg,
			Background: bg,
			Outline:    cfg.Outline,
			Keymap:     cfg.Keys(),
		}

		if live {
			opts.SampleRate = cfg.Audio.SampleRate
			opts.FrameSize = beeper.FrameSize()
		}

		fe, err := sdl.Open(opts)
		if err != nil {
			return nil, err
		}

		h.closers = append(h.closers, fe.Close)
		h.Display = fe
		h.Input = fe

		if live {
			beeper.Attach(fe)
		}

	case config.FRONTEND_TERM:
		if err := h.openTerm(cfg, live); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown frontend %q", cfg.Frontend)
	}

	if cfg.Audio.Wav != "" {
		rec, err := sound.Create(cfg.Audio.Wav, cfg.Audio.SampleRate)
		if err != nil {
			h.Close()
			return nil, err
		}

		h.closers = append(h.closers, rec.Close)
		beeper.Attach(rec)
	}

	if beeper != nil {
		h.Audio = append(h.Audio, beeper)
	}

	return h, nil
}
