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
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/andreas-jonsson/virtualc8/emulator/display"
	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/rom"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

type beepCounter int

func (b *beepCounter) Beep() {
	*b++
}

type opcodeRecorder struct {
	addr   []memory.Address
	opcode []uint16
}

func (r *opcodeRecorder) HandleInvalidOpcode(addr memory.Address, opcode uint16) {
	r.addr = append(r.addr, addr)
	r.opcode = append(r.opcode, opcode)
}

func assemble(program []uint16) []byte {
	buf := make([]byte, 0, len(program)*2)
	for _, op := range program {
		buf = append(buf, byte(op>>8), byte(op))
	}
	return buf
}

func newTestCPU(t testing.TB, program ...uint16) *CPU {
	p, errs := NewCPU([]peripheral.Peripheral{
		&rom.Device{
			RomName: "TEST",
			Base:    memory.ProgramStart,
			Reader:  bytes.NewReader(assemble(program)),
		},
	})
	for _, err := range errs {
		t.Fatal(err)
	}
	return p
}

func runSteps(t testing.TB, p *CPU, n int) {
	for i := 0; i < n; i++ {
		if _, err := p.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func runProgram(t testing.TB, program ...uint16) *CPU {
	p := newTestCPU(t, program...)
	runSteps(t, p, len(program))
	return p
}

func expectFault(t *testing.T, p *CPU, target error) *processor.Fault {
	t.Helper()
	_, err := p.Step()
	var f *processor.Fault
	if !errors.As(err, &f) {
		t.Fatalf("expected machine fault, got %v", err)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	return f
}

func TestNewCPU(t *testing.T) {
	p := newTestCPU(t, 0x1200)
	assert.Equal(t, uint16(0x200), p.PC)
	assert.Equal(t, byte(0), p.SP)
	if diff := cmp.Diff(display.Font[:], p.mem[:len(display.Font)]); diff != "" {
		t.Errorf("font: (-want, +got)\n%s", diff)
	}
	assert.Equal(t, byte(0x12), p.mem[0x200])
	assert.Equal(t, true, p.GetDisplay().Dirty())
}

func TestAddRegisters(t *testing.T) {
	tests := []struct {
		name       string
		vx, vy     uint16
		want, flag byte
	}{
		{"carry", 250, 10, 4, 1},
		{"no carry", 1, 1, 2, 0},
		{"exact 256", 0x80, 0x80, 0, 1},
		{"max", 0xFF, 0, 0xFF, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := runProgram(t, 0x6A00|tt.vx, 0x6B00|tt.vy, 0x8AB4)
			assert.Equal(t, tt.want, p.V[0xA])
			assert.Equal(t, tt.flag, p.V[0xF])
		})
	}
}

func TestSubRegisters(t *testing.T) {
	p := runProgram(t, 0x6105, 0x6203, 0x8125)
	assert.Equal(t, byte(2), p.V[1])
	assert.Equal(t, byte(1), p.V[0xF])

	p = runProgram(t, 0x6103, 0x6205, 0x8125)
	assert.Equal(t, byte(254), p.V[1])
	assert.Equal(t, byte(0), p.V[0xF])

	p = runProgram(t, 0x6105, 0x6205, 0x8125)
	assert.Equal(t, byte(0), p.V[1])
	assert.Equal(t, byte(0), p.V[0xF])
}

func TestSubNRegisters(t *testing.T) {
	p := runProgram(t, 0x6103, 0x6205, 0x8127)
	assert.Equal(t, byte(2), p.V[1])
	assert.Equal(t, byte(1), p.V[0xF])

	p = runProgram(t, 0x6105, 0x6203, 0x8127)
	assert.Equal(t, byte(254), p.V[1])
	assert.Equal(t, byte(0), p.V[0xF])
}

func TestShifts(t *testing.T) {
	p := runProgram(t, 0x6305, 0x8306)
	assert.Equal(t, byte(2), p.V[3])
	assert.Equal(t, byte(1), p.V[0xF])

	p = runProgram(t, 0x6381, 0x830E)
	assert.Equal(t, byte(2), p.V[3])
	assert.Equal(t, byte(1), p.V[0xF])

	p = runProgram(t, 0x6340, 0x830E)
	assert.Equal(t, byte(0x80), p.V[3])
	assert.Equal(t, byte(0), p.V[0xF])
}

func TestBitwise(t *testing.T) {
	p := runProgram(t, 0x60F0, 0x613C, 0x8010)
	assert.Equal(t, byte(0x3C), p.V[0])

	p = runProgram(t, 0x60F0, 0x613C, 0x8011)
	assert.Equal(t, byte(0xFC), p.V[0])

	p = runProgram(t, 0x60F0, 0x613C, 0x8012)
	assert.Equal(t, byte(0x30), p.V[0])

	p = runProgram(t, 0x60F0, 0x613C, 0x8013)
	assert.Equal(t, byte(0xCC), p.V[0])
}

func TestFlagRegisterAsOperand(t *testing.T) {
	// The flag is written last, so it wins over the result when x is F.
	p := runProgram(t, 0x6FFF, 0x6101, 0x8F14)
	assert.Equal(t, byte(1), p.V[0xF])
}

func TestAddImmediateWraps(t *testing.T) {
	p := runProgram(t, 0x6FAA, 0x60FF, 0x7002)
	assert.Equal(t, byte(1), p.V[0])
	assert.Equal(t, byte(0xAA), p.V[0xF])
}

func TestStoreBCD(t *testing.T) {
	p := runProgram(t, 0x60EA, 0xA300, 0xF033)
	assert.Equal(t, []byte{2, 3, 4}, p.mem[0x300:0x303])

	p = runProgram(t, 0x6007, 0xA300, 0xF033)
	assert.Equal(t, []byte{0, 0, 7}, p.mem[0x300:0x303])
}

func TestFontAddress(t *testing.T) {
	p := runProgram(t, 0x6000, 0xF029)
	assert.Equal(t, uint16(0), p.I)

	p = runProgram(t, 0x650A, 0xF529)
	assert.Equal(t, uint16(50), p.I)

	p = runProgram(t, 0x651F, 0xF529)
	assert.Equal(t, uint16(75), p.I)
}

func TestDrawTwiceRestoresDisplay(t *testing.T) {
	p := newTestCPU(t, 0xA000, 0x6005, 0x6103, 0xD015, 0xD015)
	runSteps(t, p, 3)

	var before display.Buffer
	before.Clear()
	if diff := cmp.Diff(before.Pixels(nil), p.GetDisplay().Pixels(nil)); diff != "" {
		t.Fatalf("display not clear: (-want, +got)\n%s", diff)
	}

	runSteps(t, p, 1)
	assert.Equal(t, byte(0), p.V[0xF])
	assert.Equal(t, true, p.GetDisplay().Pixel(5, 3))
	assert.Equal(t, true, p.GetDisplay().Pixel(8, 7))

	p.GetDisplay().ClearDirty()
	runSteps(t, p, 1)
	assert.Equal(t, byte(1), p.V[0xF])
	assert.Equal(t, true, p.GetDisplay().Dirty())
	if diff := cmp.Diff(before.Pixels(nil), p.GetDisplay().Pixels(nil)); diff != "" {
		t.Errorf("second draw: (-want, +got)\n%s", diff)
	}
}

func TestDrawClipping(t *testing.T) {
	// Glyph "8" at the bottom right corner.
	p := runProgram(t, 0x6208, 0xF229, 0x603E, 0x611E, 0xD015)
	fb := p.GetDisplay()
	assert.Equal(t, true, fb.Pixel(62, 30))
	assert.Equal(t, true, fb.Pixel(63, 30))
	assert.Equal(t, true, fb.Pixel(62, 31))
	assert.Equal(t, false, fb.Pixel(63, 31))

	var lit int
	for _, on := range fb.Pixels(nil) {
		if on {
			lit++
		}
	}
	assert.Equal(t, 3, lit)
	assert.Equal(t, byte(0), p.V[0xF])
}

func TestDrawOutsideScreen(t *testing.T) {
	p := runProgram(t, 0xA000, 0x6050, 0x6150, 0xD015)
	for i, on := range p.GetDisplay().Pixels(nil) {
		if on {
			t.Fatalf("pixel %d lit by sprite outside the screen", i)
		}
	}
}

func TestClearDisplay(t *testing.T) {
	p := runProgram(t, 0xA000, 0xD005, 0x6007, 0x00E0)
	assert.Equal(t, false, p.GetDisplay().Pixel(0, 0))
	assert.Equal(t, byte(7), p.V[0])
	assert.Equal(t, uint16(0), p.I)
}

func TestCallReturn(t *testing.T) {
	p := newTestCPU(t,
		0x2206, // 0x200: CALL 0x206
		0x6001, // 0x202: LD V0,1
		0x1204, // 0x204: JP 0x204
		0x00EE, // 0x206: RET
	)
	runSteps(t, p, 1)
	assert.Equal(t, uint16(0x206), p.PC)
	assert.Equal(t, byte(1), p.SP)
	assert.Equal(t, uint16(0x202), p.Stack[0])

	runSteps(t, p, 1)
	assert.Equal(t, uint16(0x202), p.PC)
	assert.Equal(t, byte(0), p.SP)

	runSteps(t, p, 2)
	assert.Equal(t, byte(1), p.V[0])
	assert.Equal(t, uint16(0x204), p.PC)
}

func TestStackOverflow(t *testing.T) {
	p := newTestCPU(t, 0x2200)
	runSteps(t, p, processor.StackDepth)

	regs := p.Registers
	f := expectFault(t, p, processor.ErrStackOverflow)
	assert.Equal(t, memory.Address(0x200), f.Addr)
	assert.Equal(t, uint16(0x2200), f.Opcode)
	assert.Equal(t, regs, p.Registers)
}

func TestStackUnderflow(t *testing.T) {
	p := newTestCPU(t, 0x00EE)
	f := expectFault(t, p, processor.ErrStackUnderflow)
	assert.Equal(t, memory.Address(0x200), f.Addr)
	assert.Equal(t, uint16(0x200), p.PC)
}

func TestInvalidOpcodeIsNoOp(t *testing.T) {
	p := newTestCPU(t, 0x6123, 0xA456, 0x8128, 0x0123, 0xE1FF, 0xF1FF)
	rec := &opcodeRecorder{}
	assert.NoError(t, p.InstallInvalidOpcodeHandler(rec))
	runSteps(t, p, 2)

	mem := p.mem
	for i := 0; i < 4; i++ {
		regs := p.Registers
		runSteps(t, p, 1)
		regs.PC += 2
		assert.Equal(t, regs, p.Registers)
	}
	assert.Equal(t, mem, p.mem)

	assert.Equal(t, 4, len(rec.addr))
	assert.Equal(t, memory.Address(0x204), rec.addr[0])
	assert.Equal(t, uint16(0x8128), rec.opcode[0])
	assert.Equal(t, uint16(0xF1FF), rec.opcode[3])
	assert.Equal(t, uint64(4), p.GetStats().NumInvalid)
}

func TestNoFallthroughToMisc(t *testing.T) {
	// E107 is not a keypad instruction and must not execute as F107.
	p := runProgram(t, 0x6009, 0xF015, 0xE107)
	assert.Equal(t, byte(0), p.V[1])
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name    string
		program []uint16
		pc      uint16
	}{
		{"SE imm taken", []uint16{0x6042, 0x3042}, 0x206},
		{"SE imm not taken", []uint16{0x6042, 0x3043}, 0x204},
		{"SNE imm taken", []uint16{0x6042, 0x4043}, 0x206},
		{"SNE imm not taken", []uint16{0x6042, 0x4042}, 0x204},
		{"SE reg taken", []uint16{0x6042, 0x6142, 0x5010}, 0x208},
		{"SE reg not taken", []uint16{0x6042, 0x6141, 0x5010}, 0x206},
		{"SNE reg taken", []uint16{0x6042, 0x6141, 0x9010}, 0x208},
		{"SNE reg not taken", []uint16{0x6042, 0x6142, 0x9010}, 0x206},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := runProgram(t, tt.program...)
			assert.Equal(t, tt.pc, p.PC)
		})
	}
}

func TestKeySkips(t *testing.T) {
	var keys [processor.NumKeys]bool
	keys[0xB] = true

	p := newTestCPU(t, 0x640B, 0xE49E, 0x0000, 0xE4A1)
	p.SetKeypad(keys)
	runSteps(t, p, 2)
	assert.Equal(t, uint16(0x206), p.PC)
	runSteps(t, p, 1)
	assert.Equal(t, uint16(0x208), p.PC)

	p = newTestCPU(t, 0x640C, 0xE49E, 0xE4A1)
	p.SetKeypad(keys)
	runSteps(t, p, 3)
	assert.Equal(t, uint16(0x208), p.PC)

	// Out of range key values are never pressed.
	keys[0x1] = true
	p = newTestCPU(t, 0x6411, 0xE49E)
	p.SetKeypad(keys)
	runSteps(t, p, 2)
	assert.Equal(t, uint16(0x204), p.PC)
}

func TestWaitKey(t *testing.T) {
	p := newTestCPU(t, 0xF30A)
	for i := 0; i < 3; i++ {
		res, err := p.Step()
		assert.NoError(t, err)
		assert.Equal(t, processor.Repeat, res)
		assert.Equal(t, uint16(0x200), p.PC)
	}

	var keys [processor.NumKeys]bool
	keys[0x9], keys[0x5] = true, true
	p.SetKeypad(keys)

	res, err := p.Step()
	assert.NoError(t, err)
	assert.Equal(t, processor.Continue, res)
	assert.Equal(t, byte(5), p.V[3])
	assert.Equal(t, uint16(0x202), p.PC)
	assert.Equal(t, uint64(3), p.GetStats().NumRepeats)
}

func TestTimersTickDuringKeyWait(t *testing.T) {
	p := newTestCPU(t, 0x6005, 0xF015, 0xF00A)
	runSteps(t, p, 2)
	assert.Equal(t, byte(4), p.DT)
	runSteps(t, p, 2)
	assert.Equal(t, byte(2), p.DT)

	p = newTestCPU(t, 0x6005, 0xF015, 0xF00A)
	p.SetQuirks(Quirks{FreezeTimersOnKeyWait: true})
	runSteps(t, p, 2)
	runSteps(t, p, 2)
	assert.Equal(t, byte(4), p.DT)

	p = newTestCPU(t, 0x6005, 0xF015, 0xF00A)
	p.SetQuirks(Quirks{FrameTimers: true, FreezeTimersOnKeyWait: true})
	runSteps(t, p, 3)
	assert.NoError(t, p.Frame())
	assert.NoError(t, p.Frame())
	assert.Equal(t, byte(5), p.DT)

	// Timers resume on the frame after the key arrives.
	var keys [processor.NumKeys]bool
	keys[0x2] = true
	p.SetKeypad(keys)
	runSteps(t, p, 1)
	assert.NoError(t, p.Frame())
	assert.Equal(t, byte(4), p.DT)
}

func TestTimers(t *testing.T) {
	var beeps beepCounter
	p := newTestCPU(t, 0x6003, 0xF015, 0x6002, 0xF018, 0xF407, 0x120A)
	assert.NoError(t, p.InstallAudioSink(&beeps))

	runSteps(t, p, 2)
	assert.Equal(t, byte(2), p.DT)
	runSteps(t, p, 2)
	assert.Equal(t, byte(1), p.ST)
	assert.Equal(t, beepCounter(1), beeps)

	runSteps(t, p, 1)
	assert.Equal(t, byte(0), p.V[4])
	assert.Equal(t, byte(0), p.ST)
	assert.Equal(t, beepCounter(2), beeps)

	runSteps(t, p, 10)
	assert.Equal(t, byte(0), p.DT)
	assert.Equal(t, byte(0), p.ST)
	assert.Equal(t, beepCounter(2), beeps)
}

func TestFrameTimers(t *testing.T) {
	var beeps beepCounter
	p := newTestCPU(t, 0x6003, 0xF015, 0xF018, 0x1206)
	p.SetQuirks(Quirks{FrameTimers: true})
	assert.NoError(t, p.InstallAudioSink(&beeps))

	runSteps(t, p, 10)
	assert.Equal(t, byte(3), p.DT)
	assert.Equal(t, byte(3), p.ST)

	assert.NoError(t, p.Frame())
	assert.Equal(t, byte(2), p.DT)
	assert.Equal(t, byte(2), p.ST)
	assert.Equal(t, beepCounter(1), beeps)
}

func TestRandom(t *testing.T) {
	p := newTestCPU(t, 0xC20F, 0xC300)
	p.SetRandSource(rand.NewSource(42))
	runSteps(t, p, 2)

	r := rand.New(rand.NewSource(42))
	assert.Equal(t, byte(r.Intn(256))&0x0F, p.V[2])
	assert.Equal(t, byte(0), p.V[3])
}

func TestJumps(t *testing.T) {
	p := runProgram(t, 0x1300)
	assert.Equal(t, uint16(0x300), p.PC)

	p = runProgram(t, 0x6004, 0xB300)
	assert.Equal(t, uint16(0x304), p.PC)

	p = newTestCPU(t, 0x60FF, 0xBFFF)
	runSteps(t, p, 1)
	f := expectFault(t, p, memory.ErrOutOfRange)
	assert.Equal(t, memory.Address(0x202), f.Addr)
	assert.Equal(t, uint16(0x202), p.PC)
}

func TestIndexRegister(t *testing.T) {
	p := runProgram(t, 0xAFFF, 0x6001, 0xF01E)
	assert.Equal(t, uint16(0), p.I)
	assert.Equal(t, byte(1), p.V[0xF])

	p = runProgram(t, 0xA100, 0x6010, 0xF01E)
	assert.Equal(t, uint16(0x110), p.I)
	assert.Equal(t, byte(0), p.V[0xF])
}

func TestStoreLoadRegisters(t *testing.T) {
	p := runProgram(t, 0x6001, 0x6102, 0x6203, 0x6309, 0xA300, 0xF255)
	assert.Equal(t, []byte{1, 2, 3, 0}, p.mem[0x300:0x304])
	assert.Equal(t, uint16(0x300), p.I)

	p = newTestCPU(t, 0xA200, 0xF265)
	runSteps(t, p, 2)
	assert.Equal(t, byte(0xA2), p.V[0])
	assert.Equal(t, byte(0x00), p.V[1])
	assert.Equal(t, byte(0xF2), p.V[2])
	assert.Equal(t, byte(0), p.V[3])
}

func TestMemoryFaults(t *testing.T) {
	tests := []struct {
		name    string
		program []uint16
	}{
		{"store registers", []uint16{0x6001, 0xAFFE, 0xF255}},
		{"load registers", []uint16{0x6001, 0xAFFE, 0xF265}},
		{"store bcd", []uint16{0x6001, 0xAFFE, 0xF033}},
		{"draw", []uint16{0x6001, 0xAFFE, 0xD003}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestCPU(t, tt.program...)
			runSteps(t, p, len(tt.program)-1)

			regs, mem := p.Registers, p.mem
			f := expectFault(t, p, memory.ErrOutOfRange)
			assert.Equal(t, memory.Address(0x204), f.Addr)
			assert.Equal(t, regs, p.Registers)
			assert.Equal(t, mem, p.mem)
		})
	}
}

func TestFetchFault(t *testing.T) {
	p := newTestCPU(t, 0x1FFF)
	runSteps(t, p, 1)
	f := expectFault(t, p, memory.ErrOutOfRange)
	assert.Equal(t, memory.Address(0xFFF), f.Addr)
}

func TestReset(t *testing.T) {
	p := runProgram(t, 0x6042, 0xA123, 0x2300)
	p.Reset()
	assert.Equal(t, uint16(0x200), p.PC)
	assert.Equal(t, byte(0), p.V[0])
	assert.Equal(t, uint16(0), p.I)
	assert.Equal(t, byte(0), p.SP)
	assert.Equal(t, byte(0x60), p.mem[0x200])
}

func TestReadWriteByte(t *testing.T) {
	p := newTestCPU(t, 0x1200)
	assert.NoError(t, p.WriteByte(0xFFF, 0x99))
	v, err := p.ReadByte(0xFFF)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x99), v)

	if err := p.WriteByte(0x1000, 1); !errors.Is(err, memory.ErrOutOfRange) {
		t.Errorf("expected out of range, got %v", err)
	}
	if _, err := p.ReadByte(0x1000); !errors.Is(err, memory.ErrOutOfRange) {
		t.Errorf("expected out of range, got %v", err)
	}
}

func TestStats(t *testing.T) {
	p := runProgram(t, 0x6001, 0x6002, 0x8009)
	s := p.GetStats()
	assert.Equal(t, uint64(3), s.NumInstructions)
	assert.Equal(t, uint64(1), s.NumInvalid)
	assert.Equal(t, processor.Stats{}, p.GetStats())
}

func TestResetClearsStats(t *testing.T) {
	p := runProgram(t, 0x6001, 0x6002, 0x8009)
	p.Reset()
	assert.Equal(t, processor.Stats{}, p.GetStats())
}

func BenchmarkStep(b *testing.B) {
	p := newTestCPU(b, 0x6001, 0x7101, 0xA000, 0xD015, 0x8014, 0x1200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
