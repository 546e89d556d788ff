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

// familyLookup selects the executor by the top nibble of the opcode.
// Families 0, 8, E and F dispatch further on the low bits.
var familyLookup = [16]func(*CPU) error{
	0x0: (*CPU).execSystem,
	0x1: (*CPU).execJump,
	0x2: (*CPU).execCall,
	0x3: (*CPU).execSkipEqualImm,
	0x4: (*CPU).execSkipNotEqualImm,
	0x5: (*CPU).execSkipEqualReg,
	0x6: (*CPU).execLoadImm,
	0x7: (*CPU).execAddImm,
	0x8: (*CPU).execALU,
	0x9: (*CPU).execSkipNotEqualReg,
	0xA: (*CPU).execLoadIndex,
	0xB: (*CPU).execJumpOffset,
	0xC: (*CPU).execRandom,
	0xD: (*CPU).execDraw,
	0xE: (*CPU).execKeypad,
	0xF: (*CPU).execMisc,
}
