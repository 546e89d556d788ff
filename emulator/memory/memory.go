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

package memory

import (
	"errors"
	"fmt"
)

const (
	Size         = 0x1000
	ProgramStart = Address(0x200)
	AddressMask  = Address(Size - 1)
)

var ErrOutOfRange = errors.New("address out of range")

// Address is an interpreter address. Only the low 12 bits are addressable.
type Address uint16

func (a Address) String() string {
	return fmt.Sprintf("0x%03X", uint16(a))
}

func (a Address) Valid() bool {
	return a < Size
}

// Span reports whether n bytes starting at a are all addressable.
func (a Address) Span(n int) bool {
	return n >= 0 && int(a)+n <= Size
}

func (a Address) Mask() Address {
	return a & AddressMask
}

type Memory interface {
	ReadByte(addr Address) (byte, error)
	WriteByte(addr Address, data byte) error
}

func OutOfRange(addr Address) error {
	return fmt.Errorf("%w: %v", ErrOutOfRange, addr)
}
