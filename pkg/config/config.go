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

// Package config handles gochip8.toml emulator configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/keymap"
)

const FILENAME = "gochip8.toml"

const (
	FRONTEND_SDL  = "sdl"
	FRONTEND_TERM = "term"
)

var ErrInvalid = errors.New("Invalid configuration")

type Config struct {
	Scale      int    `toml:"scale"`
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Outline    bool   `toml:"outline"`

	InstructionsPerSecond int `toml:"instructions_per_second"`
	FramesPerSecond       int `toml:"frames_per_second"`

	Frontend string `toml:"frontend"`

	// Zero seeds from the clock
	Seed int64 `toml:"seed"`

	Audio  Audio             `toml:"audio"`
	Keymap map[string]string `toml:"keymap"`
}

type Audio struct {
	Enabled    bool   `toml:"enabled"`
	Frequency  int    `toml:"frequency"`
	Volume     int    `toml:"volume"`
	SampleRate int    `toml:"sample_rate"`
	Wav        string `toml:"wav"`
}

func Defaults() *Config {
	return &Config{
		Scale:                 20,
		Foreground:            "0xFFFFFFFF",
		Background:            "0x00000000",
		Outline:               true,
		InstructionsPerSecond: 500,
		FramesPerSecond:       60,
		Frontend:              FRONTEND_SDL,
		Audio: Audio{
			Enabled:    true,
			Frequency:  440,
			Volume:     64,
			SampleRate: 44100,
		},
	}
}

// Load reads a configuration file over the defaults. Keys absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but falls back to the defaults when the file
// does not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return Load(path)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (cfg *Config) Validate() error {
	if cfg.Scale <= 0 {
		return invalid("scale must be positive, got %d", cfg.Scale)
	}

	if cfg.InstructionsPerSecond <= 0 {
		return invalid(
			"instructions_per_second must be positive, got %d",
			cfg.InstructionsPerSecond,
		)
	}

	if cfg.FramesPerSecond <= 0 {
		return invalid(
			"frames_per_second must be positive, got %d",
			cfg.FramesPerSecond,
		)
	}

	switch cfg.Frontend {
	case FRONTEND_SDL, FRONTEND_TERM:
	default:
		return invalid("unknown frontend %q", cfg.Frontend)
	}

	if _, err := encoding.DecodeColor(cfg.Foreground); err != nil {
		return invalid("foreground %q is not 0xRRGGBBAA", cfg.Foreground)
	}

	if _, err := encoding.DecodeColor(cfg.Background); err != nil {
		return invalid("background %q is not 0xRRGGBBAA", cfg.Background)
	}

	if cfg.Audio.Enabled {
		if cfg.Audio.Frequency <= 0 || cfg.Audio.SampleRate <= 0 {
			return invalid("audio frequency and sample_rate must be positive")
		}

		if cfg.Audio.Frequency*2 > cfg.Audio.SampleRate {
			return invalid(
				"audio frequency %d is above the Nyquist limit of %d",
				cfg.Audio.Frequency,
				cfg.Audio.SampleRate/2,
			)
		}

		if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 127 {
			return invalid("audio volume must be within 0..127")
		}
	}

	if _, err := keymap.Parse(cfg.Keymap); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// InstructionsPerFrame never returns less than one
func (cfg *Config) InstructionsPerFrame() int {
	if n := cfg.InstructionsPerSecond / cfg.FramesPerSecond; n > 0 {
		return n
	}
	return 1
}

func (cfg *Config) Colors() (fg uint32, bg uint32) {
	fg, _ = encoding.DecodeColor(cfg.Foreground)
	bg, _ = encoding.DecodeColor(cfg.Background)
	return fg, bg
}

func (cfg *Config) Keys() keymap.Keymap {
	km, err := keymap.Parse(cfg.Keymap)
	if err != nil {
		return keymap.Default()
	}
	return km
}
