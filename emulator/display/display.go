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

package display

import (
	"strings"
)

const (
	Width  = 64
	Height = 32

	SpriteWidth = 8
)

// Buffer is the monochrome framebuffer. Sprites are XORed onto it and
// pixels falling outside the grid are dropped.
type Buffer struct {
	pixels [Height][Width]bool
	dirty  bool
}

func (b *Buffer) Clear() {
	b.pixels = [Height][Width]bool{}
	b.dirty = true
}

func (b *Buffer) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return false
	}
	return b.pixels[y][x]
}

// DrawSprite XORs an 8 pixel wide sprite with one row per byte onto the
// buffer with its top left corner at x,y. It reports whether any pixel was
// turned off.
func (b *Buffer) DrawSprite(x, y int, sprite []byte) (collision bool) {
	b.dirty = true
	for row, bits := range sprite {
		cy := y + row
		if cy < 0 || cy >= Height {
			continue
		}
		for col := 0; col < SpriteWidth; col++ {
			cx := x + col
			if bits&(0x80>>col) == 0 || cx < 0 || cx >= Width {
				continue
			}
			if b.pixels[cy][cx] {
				collision = true
			}
			b.pixels[cy][cx] = !b.pixels[cy][cx]
		}
	}
	return
}

func (b *Buffer) Dirty() bool {
	return b.dirty
}

func (b *Buffer) ClearDirty() {
	b.dirty = false
}

// Pixels copies the buffer in row-major order into dst, growing it if needed.
func (b *Buffer) Pixels(dst []bool) []bool {
	if cap(dst) < Width*Height {
		dst = make([]bool, Width*Height)
	}
	dst = dst[:Width*Height]
	for y := range b.pixels {
		copy(dst[y*Width:], b.pixels[y][:])
	}
	return dst
}

func (b *Buffer) String() string {
	var sb strings.Builder
	for y := range b.pixels {
		for _, on := range b.pixels[y] {
			if on {
				sb.WriteRune('█')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
