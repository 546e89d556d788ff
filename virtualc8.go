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

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/andreas-jonsson/virtualc8/emulator"
	"github.com/andreas-jonsson/virtualc8/emulator/dialog"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/debug"
	"github.com/andreas-jonsson/virtualc8/platform"
	"github.com/andreas-jonsson/virtualc8/version"
	"golang.org/x/term"
)

var (
	noAudio,
	headless,
	dump,
	ver bool
	logFile string
)

func init() {
	flag.BoolVar(&ver, "v", false, "Print version information")
	flag.BoolVar(&noAudio, "no-audio", false, "Disable audio")
	flag.BoolVar(&headless, "headless", false, "Run without a terminal display")
	flag.BoolVar(&dump, "dump", false, "Write every frame to stdout in headless mode")
	flag.StringVar(&logFile, "log", "", "Write log output to file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] rom.ch8\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if ver {
		fmt.Printf("%s (%s)\n", version.Current.FullString(), version.Hash)
		return
	}

	if noAudio {
		flag.Set("audio", "none")
	}

	var configs []platform.Config
	if headless || dump {
		configs = append(configs, platform.ConfigHeadless)
	}
	if dump {
		configs = append(configs, platform.ConfigWithOutput(os.Stdout))
	}

	var fp *os.File
	if logFile != "" {
		var err error
		if fp, err = os.Create(logFile); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		log.SetOutput(fp)
	} else {
		// The terminal display owns stdout.
		debug.MuteLogging(!headless && !dump && term.IsTerminal(int(os.Stdout.Fd())))
	}

	if !dump {
		printLogo()
	}
	err := platform.Start(emulator.Start, configs...)
	if fp != nil {
		fp.Close()
	}

	if err != nil {
		// The terminal is restored at this point, so the message stays visible.
		dialog.ShowErrorMessage(err.Error())
		os.Exit(1)
	}
}

func printLogo() {
	fmt.Print(logo)
	fmt.Println("v" + version.Current.String())
	fmt.Println(" ───────═════ " + version.Copyright + " ══════───────")
	fmt.Println()
}

var logo = `
██╗   ██╗██╗██████╗ ████████╗██╗   ██╗ █████╗ ██╗      ██████╗ █████╗ 
██║   ██║██║██╔══██╗╚══██╔══╝██║   ██║██╔══██╗██║     ██╔════╝██╔══██╗
██║   ██║██║██████╔╝   ██║   ██║   ██║███████║██║     ██║     ╚█████╔╝
╚██╗ ██╔╝██║██╔══██╗   ██║   ██║   ██║██╔══██║██║     ██║     ██╔══██╗
 ╚████╔╝ ██║██║  ██║   ██║   ╚██████╔╝██║  ██║███████╗╚██████╗╚█████╔╝
  ╚═══╝  ╚═╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚════╝ `
