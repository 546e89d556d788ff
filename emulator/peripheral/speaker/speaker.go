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

package speaker

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

var ErrUnknownBackend = errors.New("unknown audio backend")

// Backend produces the tone. Tone is called once per frame with the state
// of the sound timer during that frame.
type Backend interface {
	Tone(on bool)
}

type openFunc func(bell func()) (Backend, error)

var (
	backendsLock sync.Mutex
	backends     = map[string]openFunc{
		"bell": func(bell func()) (Backend, error) {
			if bell == nil {
				return nil, errors.New("no bell available")
			}
			return &bellBackend{ring: bell}, nil
		},
		"none": func(func()) (Backend, error) {
			return nullBackend{}, nil
		},
	}
)

func register(name string, open openFunc) {
	backendsLock.Lock()
	backends[name] = open
	backendsLock.Unlock()
}

// Open creates the named backend. The bell function is used by the
// terminal bell backend.
func Open(name string, bell func()) (Backend, error) {
	backendsLock.Lock()
	open, ok := backends[name]
	backendsLock.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return open(bell)
}

// Backends returns the names of the backends compiled into the binary.
func Backends() []string {
	backendsLock.Lock()
	defer backendsLock.Unlock()

	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type nullBackend struct{}

func (nullBackend) Tone(bool) {}

// bellBackend rings once every time the tone starts.
type bellBackend struct {
	ring func()
	on   bool
}

func (b *bellBackend) Tone(on bool) {
	if on && !b.on {
		b.ring()
	}
	b.on = on
}

// Device collects the beep pulses emitted by the sound timer and forwards
// them to the backend as one tone state per frame.
type Device struct {
	Backend Backend

	pulses   int
	numTones uint64
}

func (m *Device) Install(p processor.Processor) error {
	if m.Backend == nil {
		m.Backend = nullBackend{}
	}
	return p.InstallAudioSink(m)
}

func (m *Device) Name() string {
	return "Beeper"
}

func (m *Device) Reset() {
	m.pulses = 0
	m.Backend.Tone(false)
}

func (m *Device) Beep() {
	m.pulses++
}

func (m *Device) Frame() error {
	on := m.pulses > 0
	if on {
		m.numTones++
	}
	m.pulses = 0
	m.Backend.Tone(on)
	return nil
}

// NumTones returns the number of frames that produced sound.
func (m *Device) NumTones() uint64 {
	return m.numTones
}

func (m *Device) Close() error {
	m.Backend.Tone(false)
	if c, ok := m.Backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
