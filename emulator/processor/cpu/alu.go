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

// execALU implements the 8xyN register to register operations.
// VF is written after Vx, so it holds the flag even when x is F.
func (p *CPU) execALU() error {
	x, y := p.opcode.x(), p.opcode.y()
	vx, vy := p.V[x], p.V[y]

	switch p.opcode.n() {
	case 0x0: // LD Vx,Vy
		p.V[x] = vy
	case 0x1: // OR Vx,Vy
		p.V[x] = vx | vy
	case 0x2: // AND Vx,Vy
		p.V[x] = vx & vy
	case 0x3: // XOR Vx,Vy
		p.V[x] = vx ^ vy
	case 0x4: // ADD Vx,Vy
		sum := uint16(vx) + uint16(vy)
		p.V[x] = byte(sum)
		p.SetFlag(sum > 0xFF)
	case 0x5: // SUB Vx,Vy
		p.V[x] = vx - vy
		p.SetFlag(vx > vy)
	case 0x6: // SHR Vx
		p.V[x] = vx >> 1
		p.V[0xF] = vx & 1
	case 0x7: // SUBN Vx,Vy
		p.V[x] = vy - vx
		p.SetFlag(vy > vx)
	case 0xE: // SHL Vx
		p.V[x] = vx << 1
		p.V[0xF] = vx >> 7
	default:
		p.invalidOpcode()
	}
	return nil
}
