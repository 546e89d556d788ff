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

package keyboard

import (
	"sync"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

// Device latches host key events and hands the keypad state to the
// processor once per frame. HandleKey may be called from any goroutine.
type Device struct {
	Layout *Layout

	lock  sync.Mutex
	state [processor.NumKeys]bool
	p     processor.Processor
}

func (m *Device) Install(p processor.Processor) error {
	if m.Layout == nil {
		m.Layout = LayoutOriginal
	}
	m.p = p
	return nil
}

func (m *Device) Name() string {
	return "Keypad (" + m.Layout.Name() + ")"
}

func (m *Device) Reset() {
	m.lock.Lock()
	m.state = [processor.NumKeys]bool{}
	m.lock.Unlock()
}

// HandleKey updates the state of the key mapped to r and reports whether
// the layout knows r.
func (m *Device) HandleKey(r rune, down bool) bool {
	k, ok := m.Layout.Key(r)
	if !ok {
		return false
	}
	m.lock.Lock()
	m.state[k] = down
	m.lock.Unlock()
	return true
}

func (m *Device) Snapshot() [processor.NumKeys]bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.state
}

func (m *Device) Frame() error {
	m.p.SetKeypad(m.Snapshot())
	return nil
}
