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

package sound

import (
	"errors"
)

// Sink consumes one frame of unsigned 8-bit mono samples
type Sink interface {
	Write(samples []uint8) error
}

// Beeper renders one frame of tone per call and fans it out to its sinks
type Beeper struct {
	tone    *Tone
	samples []uint8
	sinks   []Sink
}

// NewBeeper sizes the frame buffer so that fps frames make up one second of
// audio.
func NewBeeper(tone *Tone, fps int, sinks ...Sink) *Beeper {
	n := tone.SampleRate / fps
	if n < 1 {
		n = 1
	}

	return &Beeper{
		tone:    tone,
		samples: make([]uint8, n),
		sinks:   sinks,
	}
}

func (beeper *Beeper) Attach(sink Sink) {
	beeper.sinks = append(beeper.sinks, sink)
}

func (beeper *Beeper) FrameSize() int {
	return len(beeper.samples)
}

// Frame writes to every sink even when an earlier one fails. The returned
// error joins all failures.
func (beeper *Beeper) Frame(on bool) error {
	beeper.tone.Fill(beeper.samples, on)

	var errs []error
	for _, sink := range beeper.sinks {
		if err := sink.Write(beeper.samples); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
