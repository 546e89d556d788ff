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

package rom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
	"github.com/spf13/afero"
)

var ErrEmptyImage = errors.New("empty ROM image")

// Device copies a program image into memory at Base on every reset.
type Device struct {
	mem []byte
	p   processor.Processor

	Base    memory.Address
	RomName string
	Reader  io.Reader
}

// Open reads a ROM image from fs. The returned device installs it at the
// program start address.
func Open(fs afero.Fs, name string) (*Device, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("could not load ROM: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyImage)
	}
	return &Device{
		Base:    memory.ProgramStart,
		RomName: filepath.Base(name),
		Reader:  bytes.NewReader(data),
	}, nil
}

func (m *Device) Install(p processor.Processor) error {
	if !m.Base.Valid() {
		return memory.OutOfRange(m.Base)
	}

	var err error
	if m.mem, err = io.ReadAll(m.Reader); err != nil {
		return err
	}
	if len(m.mem) == 0 {
		return ErrEmptyImage
	}
	if m.RomName == "" {
		m.RomName = "ROM"
	}

	if limit := memory.Size - int(m.Base); len(m.mem) > limit {
		log.Printf("%s is %d bytes, truncated to %d", m.RomName, len(m.mem), limit)
		m.mem = m.mem[:limit]
	}
	m.p = p
	return nil
}

func (m *Device) Name() string {
	return m.RomName
}

func (m *Device) Size() int {
	return len(m.mem)
}

func (m *Device) Reset() {
	if m.p == nil {
		return
	}
	for i, v := range m.mem {
		if err := m.p.WriteByte(m.Base+memory.Address(i), v); err != nil {
			log.Print(err)
			return
		}
	}
}

func (m *Device) Frame() error {
	return nil
}
