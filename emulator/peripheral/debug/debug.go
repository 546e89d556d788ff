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

package debug

import (
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

var EnableDebug bool

func init() {
	flag.BoolVar(&EnableDebug, "debug", false, "Log execution statistics every second")
}

// MuteLogging discards the standard logger output while b is set.
func MuteLogging(b bool) {
	if b {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
}

const statsInterval = time.Second

// Device reports invalid opcodes and, when Verbose is set, logs the
// processor statistics once per interval.
type Device struct {
	Verbose bool

	p           processor.Processor
	r           *processor.Registers
	stats       processor.Stats
	updateStats time.Time
	now         func() time.Time
}

func (m *Device) Install(p processor.Processor) error {
	if m.now == nil {
		m.now = time.Now
	}
	m.p = p
	m.r = p.GetRegisters()
	m.updateStats = m.now()
	return p.InstallInvalidOpcodeHandler(m)
}

func (m *Device) Name() string {
	return "Debug Monitor"
}

func (m *Device) Reset() {
	m.stats = processor.Stats{}
	m.updateStats = m.now()
}

func (m *Device) HandleInvalidOpcode(addr memory.Address, opcode uint16) {
	log.Printf("Invalid opcode 0x%04X at %v", opcode, addr)
	if m.Verbose {
		log.Print(m.r)
	}
}

func (m *Device) Frame() error {
	if !m.Verbose {
		return nil
	}

	t := m.now()
	if d := t.Sub(m.updateStats); d >= statsInterval {
		s := m.p.GetStats()
		m.accumulate(s)
		m.updateStats = t

		ips := float64(s.NumInstructions) / d.Seconds()
		log.Printf("IPS: %.0f, invalid: %d, waiting: %d, beeps: %d", ips, s.NumInvalid, s.NumRepeats, s.NumBeeps)
	}
	return nil
}

func (m *Device) accumulate(s processor.Stats) {
	m.stats.NumInstructions += s.NumInstructions
	m.stats.NumInvalid += s.NumInvalid
	m.stats.NumRepeats += s.NumRepeats
	m.stats.NumBeeps += s.NumBeeps
}

// Total returns the statistics collected since the last reset, including
// what has not been logged yet.
func (m *Device) Total() processor.Stats {
	m.accumulate(m.p.GetStats())
	return m.stats
}
