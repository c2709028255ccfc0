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

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package main

import (
	"os"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/frontend/term"
)

func (h *host) openTerm(cfg *config.Config, live bool) error {
	fg, bg := cfg.Colors()

	fe, err := term.Open(os.Stdin, os.Stdout, cfg.Keys(), fg, bg)
	if err != nil {
		return err
	}

	h.closers = append(h.closers, fe.Close)
	h.Display = fe
	h.Input = fe

	if live {
		h.Audio = append(h.Audio, fe)
	}

	return nil
}
