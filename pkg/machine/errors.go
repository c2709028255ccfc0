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
	"errors"
	"fmt"
)

var ErrProgramTooLarge = errors.New("program too large")

type LoadReason uint8

const (
	ProgramTooLarge LoadReason = iota + 1
)

// LoadError reports a program image that was rejected. The machine is left
// exactly as it was before the load was attempted.
type LoadError struct {
	Reason LoadReason
	Size   int
}

func (err *LoadError) Error() string {
	switch err.Reason {
	case ProgramTooLarge:
		return fmt.Sprintf(
			"%s: %d bytes, at most %d fit above %#03x",
			ErrProgramTooLarge, err.Size, MAX_PROGRAM_SIZE, MEMSPACE_PROGRAM,
		)
	}
	return "load failed"
}

func (err *LoadError) Is(target error) bool {
	return target == ErrProgramTooLarge && err.Reason == ProgramTooLarge
}
