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

package processor

import (
	"errors"
	"fmt"

	"github.com/andreas-jonsson/virtualc8/emulator/display"
	"github.com/andreas-jonsson/virtualc8/emulator/memory"
)

const NumKeys = 16

type Stats struct {
	NumInstructions uint64
	NumInvalid      uint64
	NumRepeats      uint64
	NumBeeps        uint64
}

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// Result tells the driving loop how the last instruction completed.
type Result int

const (
	// Continue means the instruction completed and PC moved on.
	Continue Result = iota
	// Repeat means the instruction is waiting for input and PC still points
	// at it. The next Step executes it again.
	Repeat
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Repeat:
		return "repeat"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Fault is returned by Step when an instruction can not complete.
// Machine state is left as it was before the instruction was fetched.
type Fault struct {
	Addr   memory.Address
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("machine fault at %v (opcode 0x%04X): %v", f.Addr, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

type Debug interface {
	GetStats() Stats
}

// AudioSink receives one pulse for every timer tick the sound timer is active.
type AudioSink interface {
	Beep()
}

type InvalidOpcodeHandler interface {
	HandleInvalidOpcode(addr memory.Address, opcode uint16)
}

type Processor interface {
	Debug
	memory.Memory

	GetRegisters() *Registers
	GetDisplay() *display.Buffer
	SetKeypad(keys [NumKeys]bool)

	InstallAudioSink(sink AudioSink) error
	InstallInvalidOpcodeHandler(handler InvalidOpcodeHandler) error
}
