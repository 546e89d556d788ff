/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package video

import (
	"errors"

	"github.com/andreas-jonsson/virtualc8/emulator/display"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

// Renderer presents a frame. The pixel slice is row-major and only valid
// for the duration of the call.
type Renderer interface {
	RenderFrame(pixels []bool, width, height int)
}

// Device hands the framebuffer to its renderer at most once per frame and
// only when the program has changed it.
type Device struct {
	Renderer Renderer

	fb        *display.Buffer
	pixels    []bool
	numFrames uint64
}

func (m *Device) Install(p processor.Processor) error {
	if m.Renderer == nil {
		return errors.New("no renderer")
	}
	m.fb = p.GetDisplay()
	m.pixels = make([]bool, display.Width*display.Height)
	return nil
}

func (m *Device) Name() string {
	return "Display Adapter"
}

func (m *Device) Reset() {
	m.numFrames = 0
}

func (m *Device) Frame() error {
	if !m.fb.Dirty() {
		return nil
	}
	m.pixels = m.fb.Pixels(m.pixels)
	m.Renderer.RenderFrame(m.pixels, display.Width, display.Height)
	m.fb.ClearDirty()
	m.numFrames++
	return nil
}

// NumFrames returns the number of frames presented since the last reset.
func (m *Device) NumFrames() uint64 {
	return m.numFrames
}
