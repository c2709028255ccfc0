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
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth = 8
	wavChannels = 1
	wavFormat   = 1 // PCM
)

// Recorder writes beeper output to a WAV file
type Recorder struct {
	enc  *wav.Encoder
	buf  *audio.IntBuffer
	file *os.File
}

func NewRecorder(w io.WriteSeeker, sampleRate int) *Recorder {
	return &Recorder{
		enc: wav.NewEncoder(w, sampleRate, wavBitDepth, wavChannels, wavFormat),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: wavChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: wavBitDepth,
		},
	}
}

// Create opens path for writing and records into it. Close finalises the
// WAV header and closes the file.
func Create(path string, sampleRate int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	rec := NewRecorder(file, sampleRate)
	rec.file = file
	return rec, nil
}

func (rec *Recorder) Write(samples []uint8) error {
	if cap(rec.buf.Data) < len(samples) {
		rec.buf.Data = make([]int, len(samples))
	}
	rec.buf.Data = rec.buf.Data[:len(samples)]

	for i, sample := range samples {
		rec.buf.Data[i] = int(sample)
	}

	if err := rec.enc.Write(rec.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

func (rec *Recorder) Close() error {
	err := rec.enc.Close()

	if rec.file != nil {
		if ferr := rec.file.Close(); err == nil {
			err = ferr
		}
	}

	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
