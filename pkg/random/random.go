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

// Package random supplies the bytes behind the CXNN instruction. A Random can
// be reseeded at any point so that tests and recorded sessions replay the
// same sequence.
package random

import (
	"math/rand"
	"time"
)

type Random struct {
	rnd  *rand.Rand
	seed int64
}

// NewRandom seeds from the wall clock.
func NewRandom() *Random {
	return NewSeeded(time.Now().UnixNano())
}

func NewSeeded(seed int64) *Random {
	rnd := &Random{}
	rnd.Reseed(seed)
	return rnd
}

func (rnd *Random) Reseed(seed int64) {
	rnd.seed = seed
	rnd.rnd = rand.New(rand.NewSource(seed))
}

func (rnd *Random) Seed() int64 {
	return rnd.seed
}

// Byte returns a uniformly distributed byte.
func (rnd *Random) Byte() uint8 {
	return uint8(rnd.rnd.Intn(256))
}

// Sequence always returns the same bytes in order, wrapping at the end. An
// empty sequence yields zeroes.
type Sequence struct {
	Values []uint8
	next   int
}

func (seq *Sequence) Byte() uint8 {
	if len(seq.Values) == 0 {
		return 0
	}

	value := seq.Values[seq.next%len(seq.Values)]
	seq.next++
	return value
}
