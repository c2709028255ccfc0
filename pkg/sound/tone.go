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

// Package sound synthesises the beeper. While the sound timer is non-zero a
// square wave is emitted as unsigned 8-bit mono samples, one buffer per video
// frame, and handed to every attached sink.
package sound

// Unsigned 8-bit silence
const SILENCE = 0x80

// Tone is a phase continuous square wave generator
type Tone struct {
	Frequency  int
	SampleRate int
	Volume     uint8

	phase int
}

func NewTone(frequency, sampleRate int, volume uint8) *Tone {
	if volume > 0x7F {
		volume = 0x7F
	}

	return &Tone{
		Frequency:  frequency,
		SampleRate: sampleRate,
		Volume:     volume,
	}
}

// Fill writes len(buf) samples. When off the buffer is silent and the phase is
// restarted so the next tone begins on a rising edge.
func (tone *Tone) Fill(buf []uint8, on bool) {
	if !on || tone.Frequency <= 0 || tone.SampleRate <= 0 {
		for i := range buf {
			buf[i] = SILENCE
		}
		tone.phase = 0
		return
	}

	period := tone.SampleRate / tone.Frequency
	if period < 2 {
		period = 2
	}

	for i := range buf {
		if tone.phase < period/2 {
			buf[i] = SILENCE + tone.Volume
		} else {
			buf[i] = SILENCE - tone.Volume
		}

		tone.phase++
		if tone.phase >= period {
			tone.phase = 0
		}
	}
}
