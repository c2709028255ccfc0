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

// Package sdl runs the machine in an SDL2 window. It provides the display,
// keyboard input and an audio queue for the beeper.
//
// Every function in this package must be called from the thread that called
// Open, which in turn must be the locked main thread.
package sdl

import (
	"fmt"

	"github.com/tliron/commonlog"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/lassandro/gochip8/pkg/emulator"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

func log() commonlog.Logger {
	return commonlog.GetLogger("gochip8.frontend.sdl")
}

// ABGR8888 is laid out R, G, B, A in memory
const pixelDepth = 4

// Frames of audio allowed to queue before new frames are dropped
const maxQueuedFrames = 4

type Options struct {
	Title      string
	Scale      int
	Foreground uint32
	Background uint32
	Outline    bool
	Keymap     keymap.Keymap

	// Zero disables audio
	SampleRate int
	FrameSize  int
}

type Frontend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte

	scale   int32
	fg, bg  uint32
	outline bool
	keys    keymap.Keymap

	audio     sdl.AudioDeviceID
	hasAudio  bool
	maxQueued uint32
}

func Open(opts Options) (*Frontend, error) {
	flags := uint32(sdl.INIT_VIDEO)
	if opts.SampleRate > 0 {
		flags |= uint32(sdl.INIT_AUDIO)
	}

	if err := sdl.Init(flags); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	fe := &Frontend{
		scale:   int32(opts.Scale),
		fg:      opts.Foreground,
		bg:      opts.Background,
		outline: opts.Outline,
		keys:    opts.Keymap,
		pixels:  make([]byte, machine.DISPLAY_WIDTH*machine.DISPLAY_HEIGHT*pixelDepth),
	}

	if fe.keys == nil {
		fe.keys = keymap.Default()
	}

	var err error

	fe.window, err = sdl.CreateWindow(
		opts.Title,
		int32(sdl.WINDOWPOS_UNDEFINED),
		int32(sdl.WINDOWPOS_UNDEFINED),
		machine.DISPLAY_WIDTH*fe.scale,
		machine.DISPLAY_HEIGHT*fe.scale,
		uint32(sdl.WINDOW_SHOWN),
	)
	if err != nil {
		fe.Close()
		return nil, fmt.Errorf("sdl: window: %w", err)
	}

	fe.renderer, err = sdl.CreateRenderer(fe.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		fe.Close()
		return nil, fmt.Errorf("sdl: renderer: %w", err)
	}

	fe.texture, err = fe.renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING),
		machine.DISPLAY_WIDTH,
		machine.DISPLAY_HEIGHT,
	)
	if err != nil {
		fe.Close()
		return nil, fmt.Errorf("sdl: texture: %w", err)
	}

	if opts.SampleRate > 0 {
		if err := fe.openAudio(opts.SampleRate, opts.FrameSize); err != nil {
			// The emulator is still usable without sound
			log().Warningf("audio disabled: %s", err)
		}
	}

	return fe, nil
}

func (fe *Frontend) openAudio(sampleRate, frameSize int) error {
	if frameSize <= 0 {
		frameSize = sampleRate / emulator.DEFAULT_FRAMES_PER_SECOND
	}

	spec := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  uint16(frameSize),
	}

	var actualSpec sdl.AudioSpec

	id, err := sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return err
	}

	fe.audio = id
	fe.hasAudio = true
	fe.maxQueued = uint32(frameSize * maxQueuedFrames)

	sdl.PauseAudioDevice(fe.audio, false)
	return nil
}

func (fe *Frontend) Close() error {
	if fe.hasAudio {
		sdl.CloseAudioDevice(fe.audio)
		fe.hasAudio = false
	}

	if fe.texture != nil {
		fe.texture.Destroy()
	}

	if fe.renderer != nil {
		fe.renderer.Destroy()
	}

	if fe.window != nil {
		fe.window.Destroy()
	}

	sdl.Quit()
	return nil
}

func rgba(color uint32) (uint8, uint8, uint8, uint8) {
	return uint8(color >> 24), uint8(color >> 16), uint8(color >> 8), uint8(color)
}

// Render scales the framebuffer to the window. With outlining enabled every
// lit pixel is framed in the background colour, giving a visible pixel grid.
func (fe *Frontend) Render(fb *emulator.Framebuffer) error {
	fgR, fgG, fgB, fgA := rgba(fe.fg)
	bgR, bgG, bgB, bgA := rgba(fe.bg)

	for i, on := range fb {
		p := fe.pixels[i*pixelDepth : (i+1)*pixelDepth]

		if on {
			p[0], p[1], p[2], p[3] = fgR, fgG, fgB, fgA
		} else {
			p[0], p[1], p[2], p[3] = bgR, bgG, bgB, bgA
		}
	}

	if err := fe.texture.Update(nil, fe.pixels, machine.DISPLAY_WIDTH*pixelDepth); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	if err := fe.renderer.Copy(fe.texture, nil, nil); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	if fe.outline && fe.scale > 2 {
		fe.renderer.SetDrawColor(bgR, bgG, bgB, bgA)

		for i, on := range fb {
			if !on {
				continue
			}

			fe.renderer.DrawRect(&sdl.Rect{
				X: int32(i%machine.DISPLAY_WIDTH) * fe.scale,
				Y: int32(i/machine.DISPLAY_WIDTH) * fe.scale,
				W: fe.scale,
				H: fe.scale,
			})
		}
	}

	fe.renderer.Present()
	return nil
}

// Poll drains the SDL event queue. Escape and closing the window quit, space
// toggles pause.
func (fe *Frontend) Poll(keypad *[machine.KEY_NUM]bool) (emulator.Signal, error) {
	sig := emulator.SignalNone

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event := event.(type) {
		case *sdl.QuitEvent:
			sig |= emulator.SignalQuit

		case *sdl.KeyboardEvent:
			switch event.Keysym.Sym {
			case sdl.K_ESCAPE:
				if event.Type == sdl.KEYDOWN {
					sig |= emulator.SignalQuit
				}
				continue

			case sdl.K_SPACE:
				if event.Type == sdl.KEYDOWN && event.Repeat == 0 {
					sig |= emulator.SignalPause
				}
				continue
			}

			key, ok := fe.keys.Lookup(sdl.GetKeyName(event.Keysym.Sym))
			if !ok {
				continue
			}

			switch event.Type {
			case sdl.KEYDOWN:
				keypad[key] = true
			case sdl.KEYUP:
				keypad[key] = false
			}
		}
	}

	return sig, nil
}

// Write queues one frame of unsigned 8-bit samples. Frames are dropped while
// the device is behind so that sound never lags the display.
func (fe *Frontend) Write(samples []uint8) error {
	if !fe.hasAudio {
		return nil
	}

	if sdl.GetQueuedAudioSize(fe.audio) > fe.maxQueued {
		return nil
	}

	if err := sdl.QueueAudio(fe.audio, samples); err != nil {
		return fmt.Errorf("sdl: audio: %w", err)
	}

	return nil
}
