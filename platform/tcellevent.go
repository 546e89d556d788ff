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

package platform

import (
	"os"
	"time"
	"unicode"

	"github.com/andreas-jonsson/virtualc8/emulator/dialog"
	"github.com/gdamore/tcell"
)

// Two display rows share one terminal cell.
var halfBlocks = [4]rune{' ', '▀', '▄', '█'}

func (p *tcellPlatform) initializeTcellEvents() error {
	go func() {
		s := p.screen
		for {
			ev := s.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyF12, tcell.KeyEscape, tcell.KeyCtrlC:
					dialog.Quit()
					go func() {
						time.Sleep(3 * time.Second)
						os.Exit(-1)
					}()
					return
				case tcell.KeyF5:
					dialog.Restart()
				default:
					if r, ok := keyFromEvent(ev); ok {
						p.pushKeyEvent(r)
					}
				}
			case *tcell.EventResize:
				s.Sync()
			case *tcell.EventInterrupt:
				if f, ok := ev.Data().(*tcellFrame); ok {
					p.drawFrame(f)
				}
			}
		}
	}()
	return nil
}

func (p *tcellPlatform) drawFrame(f *tcellFrame) {
	p.Lock()
	defer p.Unlock()

	s := p.screen
	style := tcell.StyleDefault
	for y := 0; y < (f.height+1)/2; y++ {
		for x := 0; x < f.width; x++ {
			s.SetContent(x, y, halfBlocks[cellIndex(f, x, y)], nil, style)
		}
	}

	row := (f.height + 1) / 2
	for x := 0; x < f.width; x++ {
		s.SetContent(x, row, ' ', nil, style)
	}
	for x, r := range []rune(p.title) {
		if x >= f.width {
			break
		}
		s.SetContent(x, row, r, nil, style.Reverse(true))
	}
	s.Show()
}

// cellIndex selects the glyph for terminal cell x,y from the two display
// rows it covers.
func cellIndex(f *tcellFrame, x, y int) int {
	var idx int
	if f.pixels[2*y*f.width+x] {
		idx |= 1
	}
	if 2*y+1 < f.height && f.pixels[(2*y+1)*f.width+x] {
		idx |= 2
	}
	return idx
}

func keyFromEvent(ev *tcell.EventKey) (rune, bool) {
	if ev.Key() != tcell.KeyRune {
		return 0, false
	}
	return unicode.ToLower(ev.Rune()), true
}

// pushKeyEvent presses the key and releases it after the hold duration,
// since the terminal does not report key releases. A repeated press
// extends the hold.
func (p *tcellPlatform) pushKeyEvent(r rune) {
	p.Lock()
	defer p.Unlock()

	if p.keyboardHandler == nil {
		return
	}
	p.keyboardHandler(r, true)

	if t, ok := p.releases[r]; ok && t.Stop() {
		t.Reset(p.keyHold)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(p.keyHold, func() {
		p.Lock()
		defer p.Unlock()

		if p.releases[r] != t {
			return
		}
		delete(p.releases, r)
		p.keyboardHandler(r, false)
	})
	p.releases[r] = t
}
