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

// Package term runs the machine inside a terminal. Stdin is switched to raw
// mode and polled for key presses, the framebuffer is drawn with half-block
// characters and the beeper rings the terminal bell.
package term

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"github.com/tliron/commonlog"
	"golang.org/x/sys/unix"

	"github.com/lassandro/gochip8/pkg/emulator"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

func log() commonlog.Logger {
	return commonlog.GetLogger("gochip8.frontend.term")
}

type Terminal struct {
	in  *os.File
	out *bufio.Writer

	restore unix.Termios

	keys    *Keys
	screen  *Screen
	readbuf [64]byte

	beeping bool
}

// Open puts in into raw mode and prepares out for drawing. Close must be
// called to give the terminal back to the shell.
func Open(in, out *os.File, km keymap.Keymap, fg, bg uint32) (*Terminal, error) {
	fd := int(in.Fd())

	attr, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("term: %w", err)
	}

	term := &Terminal{
		in:      in,
		out:     bufio.NewWriter(out),
		restore: *attr,
		keys:    NewKeys(km, HOLD_FRAMES),
		screen:  NewScreen(fg, bg),
	}

	raw := *attr
	termios.Cfmakeraw(&raw)
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, fmt.Errorf("term: %w", err)
	}

	if ws, err := unix.IoctlGetWinsize(int(out.Fd()), unix.TIOCGWINSZ); err == nil {
		if int(ws.Col) < machine.DISPLAY_WIDTH || int(ws.Row) < machine.DISPLAY_HEIGHT/2 {
			log().Warningf(
				"terminal is %dx%d, %dx%d is needed to show the whole display",
				ws.Col, ws.Row, machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT/2,
			)
		}
	}

	term.out.WriteString(ansiHideCursor + ansiClear)

	if err := term.out.Flush(); err != nil {
		term.Close()
		return nil, fmt.Errorf("term: %w", err)
	}

	return term, nil
}

func (term *Terminal) Close() error {
	term.out.WriteString(ansiReset + ansiShowCursor + "\r\n")
	term.out.Flush()

	if err := unix.IoctlSetTermios(
		int(term.in.Fd()), ioctlSetTermios, &term.restore,
	); err != nil {
		return fmt.Errorf("term: %w", err)
	}

	return nil
}

// Poll drains whatever is waiting on stdin without blocking
func (term *Terminal) Poll(keypad *[machine.KEY_NUM]bool) (emulator.Signal, error) {
	fd := int(term.in.Fd())
	sig := emulator.SignalNone

	for {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}

		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return sig, fmt.Errorf("term: %w", err)
		}
		if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
			break
		}

		count, err := unix.Read(fd, term.readbuf[:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return sig, fmt.Errorf("term: %w", err)
		}
		if count == 0 {
			// End of input
			sig |= emulator.SignalQuit
			break
		}

		sig |= term.keys.Feed(term.readbuf[:count])
	}

	term.keys.Apply(keypad)
	return sig, nil
}

func (term *Terminal) Render(fb *emulator.Framebuffer) error {
	if !term.screen.Changed(fb) {
		return nil
	}

	term.out.WriteString(ansiHome)
	if err := term.screen.Draw(term.out, fb); err != nil {
		return err
	}
	return term.out.Flush()
}

// Frame rings the bell once each time the beeper starts
func (term *Terminal) Frame(on bool) error {
	defer func() { term.beeping = on }()

	if on && !term.beeping {
		term.out.WriteByte('\a')
		return term.out.Flush()
	}

	return nil
}
