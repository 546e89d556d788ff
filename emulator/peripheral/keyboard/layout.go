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

package keyboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

var ErrUnknownLayout = errors.New("unknown keyboard layout")

// Layout maps host keys to the sixteen keypad keys.
type Layout struct {
	name string
	keys map[rune]byte
}

// newLayout builds a layout from sixteen runes, where the rune at index i
// selects keypad key i.
func newLayout(name, keys string) *Layout {
	l := &Layout{name: name, keys: make(map[rune]byte, processor.NumKeys)}
	for i, r := range []rune(keys) {
		l.keys[r] = byte(i)
	}
	return l
}

var (
	// LayoutOriginal puts the keys on the letters A W C D S F G H I J K L M N O P.
	LayoutOriginal = newLayout("original", "awcdsfghijklmnop")

	// LayoutCOSMAC places the COSMAC VIP hex pad on the left side of a
	// QWERTY keyboard.
	//
	//	1 2 3 C      1 2 3 4
	//	4 5 6 D  ->  Q W E R
	//	7 8 9 E      A S D F
	//	A 0 B F      Z X C V
	LayoutCOSMAC = newLayout("cosmac", "x123qweasdzc4rfv")
)

var layouts = map[string]*Layout{
	LayoutOriginal.name: LayoutOriginal,
	LayoutCOSMAC.name:   LayoutCOSMAC,
}

func LayoutByName(name string) (*Layout, error) {
	if l, ok := layouts[strings.ToLower(name)]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// LayoutNames returns the names of all layouts in sorted order.
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for n := range layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (l *Layout) Name() string {
	return l.name
}

// Key returns the keypad key for r. Letters match in either case.
func (l *Layout) Key(r rune) (byte, bool) {
	k, ok := l.keys[unicode.ToLower(r)]
	return k, ok
}
