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

package platform

import (
	"bytes"
	"io"
	"sync"

	"github.com/spf13/afero"
)

// Headless is a platform without a screen. Frames are optionally written
// as text, one block glyph per lit pixel.
type Headless struct {
	lock sync.Mutex

	fs     afero.Fs
	output io.Writer
	buffer bytes.Buffer

	title           string
	numFrames       int
	numBeeps        int
	keyboardHandler func(rune, bool)
}

func NewHeadless(fs afero.Fs, w io.Writer) *Headless {
	return &Headless{fs: fs, output: w}
}

func headlessStart(mainLoop func(Platform) error, configs ...Config) error {
	h := NewHeadless(defaultFileSystem(), nil)
	applyConfigs(h, configs)

	Instance = h
	return mainLoop(Instance)
}

func (p *Headless) FileSystem() afero.Fs {
	return p.fs
}

func (p *Headless) RenderFrame(pixels []bool, width, height int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.numFrames++
	if p.output == nil {
		return
	}

	p.buffer.Reset()
	for y := 0; y < height; y++ {
		for _, on := range pixels[y*width : (y+1)*width] {
			if on {
				p.buffer.WriteRune('█')
			} else {
				p.buffer.WriteByte(' ')
			}
		}
		p.buffer.WriteByte('\n')
	}
	p.buffer.WriteByte('\n')
	p.buffer.WriteTo(p.output)
}

func (p *Headless) Beep() {
	p.lock.Lock()
	p.numBeeps++
	p.lock.Unlock()
}

func (p *Headless) SetTitle(title string) {
	p.lock.Lock()
	p.title = title
	p.lock.Unlock()
}

func (p *Headless) SetKeyboardHandler(h func(rune, bool)) {
	p.lock.Lock()
	p.keyboardHandler = h
	p.lock.Unlock()
}

// PushKey delivers a key event as if it came from the host.
func (p *Headless) PushKey(r rune, down bool) {
	p.lock.Lock()
	h := p.keyboardHandler
	p.lock.Unlock()

	if h != nil {
		h(r, down)
	}
}

func (p *Headless) Title() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.title
}

func (p *Headless) NumFrames() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.numFrames
}

func (p *Headless) NumBeeps() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.numBeeps
}
