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
	"fmt"
	"io"
	"strings"

	"github.com/lassandro/gochip8/pkg/emulator"
	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	ansiClear      = "\x1b[2J"
	ansiHome       = "\x1b[H"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
	ansiReset      = "\x1b[0m"
)

// Screen packs two display rows into each text row using half blocks
type Screen struct {
	fg, bg uint32

	last  emulator.Framebuffer
	drawn bool
}

func NewScreen(fg, bg uint32) *Screen {
	return &Screen{fg: fg, bg: bg}
}

// Changed reports whether fb differs from the last framebuffer it was given
func (screen *Screen) Changed(fb *emulator.Framebuffer) bool {
	if screen.drawn && screen.last == *fb {
		return false
	}

	screen.last = *fb
	screen.drawn = true
	return true
}

func rgb(color uint32) (uint8, uint8, uint8) {
	return uint8(color >> 24), uint8(color >> 16), uint8(color >> 8)
}

func (screen *Screen) Draw(w io.Writer, fb *emulator.Framebuffer) error {
	var sb strings.Builder

	fgR, fgG, fgB := rgb(screen.fg)
	bgR, bgG, bgB := rgb(screen.bg)
	color := fmt.Sprintf(
		"\x1b[38;2;%d;%d;%d;48;2;%d;%d;%dm", fgR, fgG, fgB, bgR, bgG, bgB,
	)

	sb.WriteString(color)

	for y := 0; y < machine.DISPLAY_HEIGHT; y += 2 {
		if y > 0 {
			sb.WriteString(ansiReset + "\r\n" + color)
		}

		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			top := fb[y*machine.DISPLAY_WIDTH+x]
			bottom := fb[(y+1)*machine.DISPLAY_WIDTH+x]

			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
	}

	sb.WriteString(ansiReset)

	_, err := io.WriteString(w, sb.String())
	return err
}
