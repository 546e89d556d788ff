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
	"github.com/andreas-jonsson/virtualc8/emulator/display"
	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

type instruction uint16

func (i instruction) family() byte {
	return byte(i >> 12)
}

func (i instruction) x() byte {
	return byte(i>>8) & 0xF
}

func (i instruction) y() byte {
	return byte(i>>4) & 0xF
}

func (i instruction) n() byte {
	return byte(i) & 0xF
}

func (i instruction) kk() byte {
	return byte(i)
}

func (i instruction) nnn() uint16 {
	return uint16(i) & 0xFFF
}

type instructionState struct {
	opcode   instruction
	decodeAt memory.Address
	repeat   bool
}

func (p *CPU) fault(err error) error {
	return &processor.Fault{Addr: p.decodeAt, Opcode: uint16(p.opcode), Err: err}
}

func (p *CPU) fetch() error {
	b, err := p.span(p.decodeAt, 2)
	if err != nil {
		return err
	}
	p.opcode = instruction(b[0])<<8 | instruction(b[1])
	return nil
}

// Step executes exactly one instruction and ticks the timers.
// A fault leaves the machine state untouched with PC at the failing
// instruction.
func (p *CPU) Step() (processor.Result, error) {
	p.decodeAt = memory.Address(p.PC)
	p.opcode = 0
	p.repeat = false

	if err := p.fetch(); err != nil {
		return processor.Continue, p.fault(err)
	}
	p.PC += 2

	if err := familyLookup[p.opcode.family()](p); err != nil {
		p.PC = uint16(p.decodeAt)
		return processor.Continue, p.fault(err)
	}
	p.stats.NumInstructions++

	res := processor.Continue
	if p.repeat {
		res = processor.Repeat
		p.stats.NumRepeats++
		if p.quirks.FreezeTimersOnKeyWait {
			return res, nil
		}
	}

	if !p.quirks.FrameTimers {
		p.tickTimers()
	}
	return res, nil
}

// Unknown opcodes do nothing. They are counted and reported so that
// programs relying on skipping over them keep working.
func (p *CPU) invalidOpcode() {
	p.stats.NumInvalid++
	if p.invalidHandler != nil {
		p.invalidHandler.HandleInvalidOpcode(p.decodeAt, uint16(p.opcode))
	}
}

func (p *CPU) skipIf(b bool) {
	if b {
		p.PC += 2
	}
}

func (p *CPU) keyDown(k byte) bool {
	// Keys above 0xF do not exist and are never pressed.
	return int(k) < processor.NumKeys && p.keys[k]
}

func (p *CPU) execSystem() error {
	switch p.opcode {
	case 0x00E0: // CLS
		p.display.Clear()
	case 0x00EE: // RET
		addr, err := p.Pop()
		if err != nil {
			return err
		}
		p.PC = addr
	default:
		p.invalidOpcode()
	}
	return nil
}

func (p *CPU) execJump() error {
	p.PC = p.opcode.nnn()
	return nil
}

func (p *CPU) execCall() error {
	if err := p.Push(p.PC); err != nil {
		return err
	}
	p.PC = p.opcode.nnn()
	return nil
}

func (p *CPU) execSkipEqualImm() error {
	p.skipIf(p.V[p.opcode.x()] == p.opcode.kk())
	return nil
}

func (p *CPU) execSkipNotEqualImm() error {
	p.skipIf(p.V[p.opcode.x()] != p.opcode.kk())
	return nil
}

func (p *CPU) execSkipEqualReg() error {
	p.skipIf(p.V[p.opcode.x()] == p.V[p.opcode.y()])
	return nil
}

func (p *CPU) execSkipNotEqualReg() error {
	p.skipIf(p.V[p.opcode.x()] != p.V[p.opcode.y()])
	return nil
}

func (p *CPU) execLoadImm() error {
	p.V[p.opcode.x()] = p.opcode.kk()
	return nil
}

func (p *CPU) execAddImm() error {
	p.V[p.opcode.x()] += p.opcode.kk()
	return nil
}

func (p *CPU) execLoadIndex() error {
	p.SetI(p.opcode.nnn())
	return nil
}

func (p *CPU) execJumpOffset() error {
	addr := memory.Address(p.V[0]) + memory.Address(p.opcode.nnn())
	if !addr.Valid() {
		return memory.OutOfRange(addr)
	}
	p.PC = uint16(addr)
	return nil
}

func (p *CPU) execRandom() error {
	p.V[p.opcode.x()] = byte(p.rnd.Intn(256)) & p.opcode.kk()
	return nil
}

func (p *CPU) execDraw() error {
	sprite, err := p.span(memory.Address(p.I), int(p.opcode.n()))
	if err != nil {
		return err
	}
	x, y := int(p.V[p.opcode.x()]), int(p.V[p.opcode.y()])
	p.SetFlag(p.display.DrawSprite(x, y, sprite))
	return nil
}

func (p *CPU) execKeypad() error {
	switch k := p.V[p.opcode.x()]; p.opcode.kk() {
	case 0x9E: // SKP Vx
		p.skipIf(p.keyDown(k))
	case 0xA1: // SKNP Vx
		p.skipIf(!p.keyDown(k))
	default:
		p.invalidOpcode()
	}
	return nil
}

func (p *CPU) execMisc() error {
	x := p.opcode.x()
	switch p.opcode.kk() {
	case 0x07: // LD Vx,DT
		p.V[x] = p.DT
	case 0x0A: // LD Vx,K
		p.waitKey(x)
	case 0x15: // LD DT,Vx
		p.DT = p.V[x]
	case 0x18: // LD ST,Vx
		p.ST = p.V[x]
	case 0x1E: // ADD I,Vx
		sum := uint32(p.I) + uint32(p.V[x])
		p.SetI(uint16(sum))
		p.SetFlag(sum > uint32(memory.AddressMask))
	case 0x29: // LD F,Vx
		p.SetI(display.GlyphAddress(p.V[x]))
	case 0x33: // LD B,Vx
		dst, err := p.span(memory.Address(p.I), 3)
		if err != nil {
			return err
		}
		v := p.V[x]
		dst[0], dst[1], dst[2] = v/100, (v/10)%10, v%10
	case 0x55: // LD [I],Vx
		dst, err := p.span(memory.Address(p.I), int(x)+1)
		if err != nil {
			return err
		}
		copy(dst, p.V[:x+1])
	case 0x65: // LD Vx,[I]
		src, err := p.span(memory.Address(p.I), int(x)+1)
		if err != nil {
			return err
		}
		copy(p.V[:x+1], src)
	default:
		p.invalidOpcode()
	}
	return nil
}

// waitKey stores the lowest pressed key in Vx. With no key down the PC is
// moved back so the instruction runs again on the next step.
func (p *CPU) waitKey(x byte) {
	for i, down := range p.keys {
		if down {
			p.V[x] = byte(i)
			return
		}
	}
	p.PC -= 2
	p.repeat = true
}
