// Package main implements the nesgo NES emulator executable.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"nesgo/internal/app"
	"nesgo/internal/cartridge"
	"nesgo/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "path to configuration file (default: nesgo.json)")
		scale      = flag.Int("scale", 0, "window scale override (0 keeps the config value)")
		width      = flag.Int("width", 0, "explicit window width in pixels")
		height     = flag.Int("height", 0, "explicit window height in pixels")
		headless   = flag.Bool("headless", false, "run a fixed number of frames with no window")
		showVer    = flag.Bool("version", false, "print version information and exit")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showVer {
		fmt.Println(version.String())
		return 0
	}

	if flag.NArg() < 1 {
		printUsage()
		return 1
	}
	romPath := flag.Arg(0)

	if *configPath == "" {
		*configPath = "nesgo.json"
	}
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	if *scale > 0 {
		cfg.Window.Scale = *scale
	}
	if *width > 0 {
		cfg.Window.Width = *width
	}
	if *height > 0 {
		cfg.Window.Height = *height
	}

	application := app.New(cfg)

	loadErr := application.LoadROM(romPath)
	if loadErr != nil && !errors.Is(loadErr, cartridge.ErrUnsupportedMapper) {
		log.Printf("load rom: %v", loadErr)
		return 1
	}
	if errors.Is(loadErr, cartridge.ErrUnsupportedMapper) {
		log.Printf("load rom: %v", loadErr)
		return 2
	}

	defer func() {
		if err := application.SaveBatteryRAM(); err != nil {
			log.Printf("save: %v", err)
		}
	}()

	if err := application.Run(*headless); err != nil {
		log.Printf("run: %v", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "nesgo - NES emulator core")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "USAGE:")
	fmt.Fprintln(os.Stderr, "  nesgo [options] <rom.nes>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "OPTIONS:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "EXIT CODES:")
	fmt.Fprintln(os.Stderr, "  0  clean exit")
	fmt.Fprintln(os.Stderr, "  1  ROM could not be loaded, or the run itself failed")
	fmt.Fprintln(os.Stderr, "  2  ROM uses an unsupported mapper (reported; the ROM is not run)")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "CONTROLS (Player 1):")
	fmt.Fprintln(os.Stderr, "  Arrow Keys / WASD - D-Pad")
	fmt.Fprintln(os.Stderr, "  J                 - A Button")
	fmt.Fprintln(os.Stderr, "  K                 - B Button")
	fmt.Fprintln(os.Stderr, "  Enter             - Start")
	fmt.Fprintln(os.Stderr, "  Space             - Select")
}
