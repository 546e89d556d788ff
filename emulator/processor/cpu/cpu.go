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

package cpu

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/andreas-jonsson/virtualc8/emulator/display"
	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

// Quirks select between behaviours that differ among interpreters.
type Quirks struct {
	// FrameTimers decrements the timers once per Frame instead of once per Step.
	FrameTimers bool
	// FreezeTimersOnKeyWait stops the timers while Fx0A is waiting for a key.
	FreezeTimersOnKeyWait bool
}

type CPU struct {
	processor.Registers
	instructionState

	quirks Quirks
	stats  processor.Stats

	peripherals    []peripheral.Peripheral
	audio          processor.AudioSink
	invalidHandler processor.InvalidOpcodeHandler
	rnd            *rand.Rand

	keys    [processor.NumKeys]bool
	display display.Buffer
	mem     [memory.Size]byte
}

func NewCPU(peripherals []peripheral.Peripheral) (*CPU, []error) {
	p := &CPU{
		peripherals: peripherals,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	errs := p.installPeripherals()
	p.Reset()
	return p, errs
}

func (p *CPU) installPeripherals() []error {
	var errs []error
	for _, d := range p.peripherals {
		if err := d.Install(p); err != nil {
			log.Printf("Failed to install %s: %v", d.Name(), err)
			errs = append(errs, err)
		}
	}
	return errs
}

func (p *CPU) SetQuirks(q Quirks) {
	p.quirks = q
}

func (p *CPU) SetRandSource(src rand.Source) {
	p.rnd = rand.New(src)
}

func (p *CPU) Close() {
	for _, d := range p.peripherals {
		if cd, b := d.(peripheral.PeripheralCloser); b {
			if err := cd.Close(); err != nil {
				log.Print("Failed to close peripheral: ", err)
			}
		}
	}
}

func (p *CPU) GetStats() processor.Stats {
	s := p.stats
	p.stats = processor.Stats{}
	return s
}

// Reset zeroes all machine state, places the font in low memory and lets
// the peripherals restore their content, like the program image.
func (p *CPU) Reset() {
	p.Registers.Reset()
	p.instructionState = instructionState{}
	p.stats = processor.Stats{}
	p.keys = [processor.NumKeys]bool{}
	p.mem = [memory.Size]byte{}
	copy(p.mem[display.FontBase:], display.Font[:])
	p.display.Clear()

	for _, d := range p.peripherals {
		d.Reset()
	}
}

// Frame runs the per frame work of all peripherals. Frame timers stay
// frozen while the last step is waiting for a key, if so configured.
func (p *CPU) Frame() error {
	if p.quirks.FrameTimers && !(p.quirks.FreezeTimersOnKeyWait && p.repeat) {
		p.tickTimers()
	}
	for _, d := range p.peripherals {
		if err := d.Frame(); err != nil {
			return err
		}
	}
	return nil
}

func (p *CPU) tickTimers() {
	if p.DT > 0 {
		p.DT--
	}
	if p.ST > 0 {
		p.stats.NumBeeps++
		if p.audio != nil {
			p.audio.Beep()
		}
		p.ST--
	}
}

func (p *CPU) GetRegisters() *processor.Registers {
	return &p.Registers
}

func (p *CPU) GetDisplay() *display.Buffer {
	return &p.display
}

func (p *CPU) SetKeypad(keys [processor.NumKeys]bool) {
	p.keys = keys
}

func (p *CPU) InstallAudioSink(sink processor.AudioSink) error {
	if sink == nil {
		return errors.New("invalid audio sink")
	}
	p.audio = sink
	return nil
}

func (p *CPU) InstallInvalidOpcodeHandler(handler processor.InvalidOpcodeHandler) error {
	if handler == nil {
		return errors.New("invalid opcode handler")
	}
	p.invalidHandler = handler
	return nil
}

func (p *CPU) ReadByte(addr memory.Address) (byte, error) {
	if !addr.Valid() {
		return 0, memory.OutOfRange(addr)
	}
	return p.mem[addr], nil
}

func (p *CPU) WriteByte(addr memory.Address, data byte) error {
	if !addr.Valid() {
		return memory.OutOfRange(addr)
	}
	p.mem[addr] = data
	return nil
}

// span returns n bytes of memory starting at addr.
func (p *CPU) span(addr memory.Address, n int) ([]byte, error) {
	if !addr.Span(n) {
		if n > 0 {
			addr += memory.Address(n - 1)
		}
		return nil, memory.OutOfRange(addr)
	}
	return p.mem[addr : int(addr)+n], nil
}
