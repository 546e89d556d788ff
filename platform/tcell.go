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
	"log"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell"
	"github.com/spf13/afero"
)

type tcellPlatform struct {
	sync.Mutex

	fs      afero.Fs
	screen  tcell.Screen
	title   string
	keyHold time.Duration

	keyboardHandler func(rune, bool)
	releases        map[rune]*time.Timer
}

type tcellFrame struct {
	pixels        []bool
	width, height int
}

var tcellPlatformInstance = tcellPlatform{
	releases: make(map[rune]*time.Timer),
}

func tcellStart(mainLoop func(Platform) error, configs ...Config) error {
	tcellPlatformInstance.fs = defaultFileSystem()
	tcellPlatformInstance.keyHold = keyHold
	applyConfigs(&tcellPlatformInstance, configs)

	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	var err error
	if tcellPlatformInstance.screen, err = tcell.NewScreen(); err != nil {
		log.Fatal(err)
	}

	Instance = &tcellPlatformInstance
	s := tcellPlatformInstance.screen

	if err = s.Init(); err != nil {
		log.Fatal(err)
	}
	defer s.Fini()

	s.HideCursor()
	s.DisableMouse()
	s.Clear()

	if err := tcellPlatformInstance.initializeTcellEvents(); err != nil {
		log.Fatal(err)
	}
	return mainLoop(Instance)
}

func (p *tcellPlatform) FileSystem() afero.Fs {
	return p.fs
}

func (p *tcellPlatform) RenderFrame(pixels []bool, width, height int) {
	f := &tcellFrame{
		pixels: append([]bool(nil), pixels...),
		width:  width,
		height: height,
	}
	p.screen.PostEvent(tcell.NewEventInterrupt(f))
}

// Beep rings the terminal bell.
func (p *tcellPlatform) Beep() {
	os.Stdout.WriteString("\a")
}

func (p *tcellPlatform) SetTitle(title string) {
	p.Lock()
	p.title = title
	p.Unlock()
}

func (p *tcellPlatform) SetKeyboardHandler(h func(rune, bool)) {
	p.Lock()
	p.keyboardHandler = h
	p.Unlock()
}
