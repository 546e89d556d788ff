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
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/term"
)

type internalPlatform interface{}

type Config func(internalPlatform) error

type Platform interface {
	FileSystem() afero.Fs
	RenderFrame(pixels []bool, width, height int)
	Beep()
	SetTitle(title string)
	SetKeyboardHandler(h func(r rune, down bool))
}

var Instance Platform

var keyHold = 150 * time.Millisecond

func init() {
	flag.DurationVar(&keyHold, "key-hold", keyHold, "How long a key stays pressed in the terminal")
}

type startOptions struct {
	headless bool
}

// ConfigHeadless selects the headless platform even when stdout is a terminal.
func ConfigHeadless(p internalPlatform) error {
	if o, ok := p.(*startOptions); ok {
		o.headless = true
	}
	return nil
}

// ConfigWithOutput makes the headless platform dump every frame to w.
func ConfigWithOutput(w io.Writer) Config {
	return func(p internalPlatform) error {
		if h, ok := p.(*Headless); ok {
			h.output = w
		}
		return nil
	}
}

func ConfigWithFileSystem(fs afero.Fs) Config {
	return func(p internalPlatform) error {
		switch t := p.(type) {
		case *Headless:
			t.fs = fs
		case *tcellPlatform:
			t.fs = fs
		}
		return nil
	}
}

func ConfigWithKeyHold(d time.Duration) Config {
	return func(p internalPlatform) error {
		if t, ok := p.(*tcellPlatform); ok {
			t.keyHold = d
		}
		return nil
	}
}

func applyConfigs(p internalPlatform, configs []Config) {
	for _, cfg := range configs {
		if err := cfg(p); err != nil {
			log.Fatal(err)
		}
	}
}

func defaultFileSystem() afero.Fs {
	return afero.NewReadOnlyFs(afero.NewOsFs())
}

// Start runs mainLoop on the terminal platform, or on the headless one
// when requested or when stdout is not a terminal. The error from mainLoop
// is returned after the terminal has been restored.
func Start(mainLoop func(Platform) error, configs ...Config) error {
	var opt startOptions
	applyConfigs(&opt, configs)

	if opt.headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		return headlessStart(mainLoop, configs...)
	}
	return tcellStart(mainLoop, configs...)
}
