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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gochip8/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.FILENAME)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8, cfg.InstructionsPerFrame())

	fg, bg := cfg.Colors()
	assert.Equal(t, uint32(0xFFFFFFFF), fg)
	assert.Equal(t, uint32(0x00000000), bg)

	key, ok := cfg.Keys().Lookup("v")
	require.True(t, ok)
	assert.Equal(t, uint8(0xF), key)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
scale = 10
foreground = "0x33FF66FF"
instructions_per_second = 700
frontend = "term"
seed = 42

[audio]
enabled = false

[keymap]
up = "2"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scale)
	assert.Equal(t, config.FRONTEND_TERM, cfg.Frontend)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 11, cfg.InstructionsPerFrame())

	// Untouched keys keep their defaults
	assert.Equal(t, 60, cfg.FramesPerSecond)
	assert.True(t, cfg.Outline)
	assert.Equal(t, 440, cfg.Audio.Frequency)

	key, ok := cfg.Keys().Lookup("UP")
	require.True(t, ok)
	assert.Equal(t, uint8(0x2), key)
}

func TestLoadInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"Scale":     "scale = 0",
		"Rate":      "instructions_per_second = -5",
		"Frontend":  `frontend = "gl"`,
		"Color":     `background = "black"`,
		"Keymap":    "[keymap]\nq = \"Z\"",
		"Nyquist":   "[audio]\nfrequency = 30000",
		"Volume":    "[audio]\nvolume = 300",
		"FrameRate": "frames_per_second = 0",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, content))
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := config.Load(writeConfig(t, "scale = "))
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOptional(t *testing.T) {
	cfg, err := config.LoadOptional(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestInstructionsPerFrameFloor(t *testing.T) {
	cfg := config.Defaults()
	cfg.InstructionsPerSecond = 30

	assert.Equal(t, 1, cfg.InstructionsPerFrame())
}
