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

package emulator

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/andreas-jonsson/virtualc8/emulator/dialog"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/debug"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/keyboard"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/rom"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/speaker"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/video"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
	"github.com/andreas-jonsson/virtualc8/emulator/processor/cpu"
	"github.com/andreas-jonsson/virtualc8/platform"
)

// FrameRate is the rate of the timers, keypad polling and screen updates.
const FrameRate = 60

var (
	ErrNoROM         = errors.New("no ROM image specified")
	ErrInvalidConfig = errors.New("invalid configuration")
)

var (
	romImage                        string
	instructionsPerSecond           = 700
	layoutName                      = keyboard.LayoutOriginal.Name()
	audioBackend                    = "bell"
	frameTimers, freezeTimersOnWait bool
	randSeed                        int64
	maxFrames                       int
)

func init() {
	if p, ok := os.LookupEnv("VC8_DEFAULT_ROM_PATH"); ok {
		romImage = p
	}

	flag.StringVar(&romImage, "rom", romImage, "Path to ROM image")
	flag.IntVar(&instructionsPerSecond, "ips", instructionsPerSecond, "Instructions executed per second")
	flag.StringVar(&layoutName, "layout", layoutName, "Keypad layout ("+strings.Join(keyboard.LayoutNames(), "|")+")")
	flag.StringVar(&audioBackend, "audio", audioBackend, "Audio backend ("+strings.Join(speaker.Backends(), "|")+")")
	flag.BoolVar(&frameTimers, "frame-timers", false, "Decrement timers at 60Hz instead of once per instruction")
	flag.BoolVar(&freezeTimersOnWait, "freeze-timers-on-wait", false, "Stop timers while waiting for a key")
	flag.Int64Var(&randSeed, "seed", 0, "Seed for the random number generator (0 uses the clock)")
	flag.IntVar(&maxFrames, "frames", 0, "Stop after this many frames (0 runs until quit)")
}

type Config struct {
	ROM                   string
	InstructionsPerSecond int
	Layout                string
	Audio                 string
	Quirks                cpu.Quirks
	Seed                  int64
	MaxFrames             int
	Debug                 bool
}

// ConfigFromFlags builds a configuration from the command line. The first
// positional argument is used as ROM when -rom is not given.
func ConfigFromFlags() Config {
	name := romImage
	if name == "" && flag.NArg() > 0 {
		name = flag.Arg(0)
	}
	return Config{
		ROM:                   name,
		InstructionsPerSecond: instructionsPerSecond,
		Layout:                layoutName,
		Audio:                 audioBackend,
		Quirks: cpu.Quirks{
			FrameTimers:           frameTimers,
			FreezeTimersOnKeyWait: freezeTimersOnWait,
		},
		Seed:      randSeed,
		MaxFrames: maxFrames,
		Debug:     debug.EnableDebug,
	}
}

type Emulator struct {
	cfg Config
	p   *cpu.CPU

	rom   *rom.Device
	keys  *keyboard.Device
	spkr  *speaker.Device
	video *video.Device
	dbg   *debug.Device

	budget    int
	numFrames int
}

func New(pl platform.Platform, cfg Config) (*Emulator, error) {
	if cfg.InstructionsPerSecond <= 0 {
		return nil, fmt.Errorf("%w: %d instructions per second", ErrInvalidConfig, cfg.InstructionsPerSecond)
	}
	if cfg.ROM == "" {
		return nil, ErrNoROM
	}

	layout, err := keyboard.LayoutByName(cfg.Layout)
	if err != nil {
		return nil, err
	}

	romDevice, err := rom.Open(pl.FileSystem(), cfg.ROM)
	if err != nil {
		return nil, err
	}

	backend, err := speaker.Open(cfg.Audio, pl.Beep)
	if err != nil {
		return nil, err
	}

	e := &Emulator{
		cfg:   cfg,
		rom:   romDevice,
		keys:  &keyboard.Device{Layout: layout},
		spkr:  &speaker.Device{Backend: backend},
		video: &video.Device{Renderer: pl},
		dbg:   &debug.Device{Verbose: cfg.Debug},
	}

	peripherals := []peripheral.Peripheral{
		e.rom,   // Program image
		e.keys,  // Keypad
		e.spkr,  // Beeper
		e.video, // Display
		e.dbg,   // Diagnostics
	}

	var errs []error
	if e.p, errs = cpu.NewCPU(peripherals); len(errs) > 0 {
		e.p.Close()
		return nil, errors.Join(errs...)
	}

	e.p.SetQuirks(cfg.Quirks)
	if cfg.Seed != 0 {
		e.p.SetRandSource(rand.NewSource(cfg.Seed))
	}

	pl.SetKeyboardHandler(func(r rune, down bool) {
		e.keys.HandleKey(r, down)
	})
	pl.SetTitle(fmt.Sprintf("virtualc8 - %s", romDevice.Name()))

	log.Printf("Loaded %s (%d bytes), %d instructions per second", romDevice.Name(), romDevice.Size(), cfg.InstructionsPerSecond)
	return e, nil
}

func (e *Emulator) Processor() *cpu.CPU {
	return e.p
}

func (e *Emulator) NumFrames() int {
	return e.numFrames
}

// Frame executes one frame worth of instructions followed by the per
// frame work of the machine.
func (e *Emulator) Frame() error {
	e.budget += e.cfg.InstructionsPerSecond
	n := e.budget / FrameRate
	e.budget %= FrameRate

	for i := 0; i < n; i++ {
		res, err := e.p.Step()
		if err != nil {
			return err
		}
		// Nothing changes until the keypad is polled again.
		if res == processor.Repeat && e.cfg.Quirks.FreezeTimersOnKeyWait {
			break
		}
	}

	e.numFrames++
	return e.p.Frame()
}

func (e *Emulator) Reset() {
	e.p.Reset()
	e.budget = 0
	e.numFrames = 0
}

// Run executes frames at 60Hz until shutdown is requested, the frame limit
// is reached or the machine faults.
func (e *Emulator) Run() error {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	for !dialog.ShutdownRequested() {
		if dialog.RestartRequested() {
			log.Print("Restarting machine")
			e.Reset()
		}

		if err := e.Frame(); err != nil {
			return err
		}
		if e.cfg.MaxFrames > 0 && e.numFrames >= e.cfg.MaxFrames {
			return nil
		}
		<-ticker.C
	}
	return nil
}

func (e *Emulator) Close() {
	if e.cfg.Debug {
		s := e.dbg.Total()
		log.Printf("Executed %d instructions (%d invalid) in %d frames", s.NumInstructions, s.NumInvalid, e.numFrames)
	}
	e.p.Close()
}

// Start runs a machine configured from the command line on p. Load errors
// and machine faults are returned to the caller.
func Start(p platform.Platform) error {
	e, err := New(p, ConfigFromFlags())
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Run(); err != nil {
		log.Print(err)
		log.Print(e.p.GetRegisters())
		return err
	}
	return nil
}
