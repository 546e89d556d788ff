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
	"fmt"
	"strings"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
)

const (
	NumRegisters = 16
	StackDepth   = 16
	FlagRegister = 0xF
)

type Registers struct {
	V [NumRegisters]byte

	I, PC uint16
	DT, ST byte

	SP    byte
	Stack [StackDepth]uint16
}

func (r *Registers) Reset() {
	*r = Registers{PC: uint16(memory.ProgramStart)}
}

// SetI stores v in the index register, keeping the low 12 bits.
func (r *Registers) SetI(v uint16) {
	r.I = uint16(memory.Address(v).Mask())
}

func (r *Registers) SetFlag(b bool) {
	if b {
		r.V[FlagRegister] = 1
		return
	}
	r.V[FlagRegister] = 0
}

func (r *Registers) Push(addr uint16) error {
	if int(r.SP) >= StackDepth {
		return ErrStackOverflow
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

func (r *Registers) Pop() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}

func (r *Registers) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PC=%04X I=%03X SP=%X DT=%02X ST=%02X", r.PC, r.I, r.SP, r.DT, r.ST)
	for i, v := range r.V {
		fmt.Fprintf(&sb, " V%X=%02X", i, v)
	}
	return sb.String()
}
