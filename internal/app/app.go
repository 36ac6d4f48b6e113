package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"nesgo/internal/console"
	"nesgo/internal/graphics"
	"nesgo/internal/input"
)

// Application owns one loaded ROM's console, its presentation window,
// and the battery-RAM file it persists across runs.
type Application struct {
	cfg     *Config
	console *console.Console
	window  graphics.Window
	audio   *graphics.AudioStream
	romPath string
}

// New constructs an Application with no ROM loaded yet.
func New(cfg *Config) *Application {
	return &Application{cfg: cfg, console: console.New()}
}

// LoadROM opens path and installs it on the console. The returned error
// may be cartridge.ErrUnsupportedMapper, which leaves the console
// usable on its NROM fallback; the caller decides whether that is fatal.
func (a *Application) LoadROM(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("app: open rom: %w", err)
	}
	defer f.Close()

	a.romPath = path
	loadErr := a.console.LoadROM(f)
	a.loadBatteryRAM()
	return loadErr
}

func (a *Application) savePath() string {
	ext := filepath.Ext(a.romPath)
	return strings.TrimSuffix(a.romPath, ext) + ".sav"
}

func (a *Application) loadBatteryRAM() {
	ram, ok := a.console.BatteryRAM()
	if !ok {
		return
	}
	data, err := os.ReadFile(a.savePath())
	if err != nil {
		return
	}
	copy(ram, data)
	log.Printf("[SAVE] loaded battery RAM from %s", a.savePath())
}

// SaveBatteryRAM writes the cartridge's battery-backed PRG-RAM next to
// the ROM, if the loaded mapper declares battery support.
func (a *Application) SaveBatteryRAM() error {
	ram, ok := a.console.BatteryRAM()
	if !ok {
		return nil
	}
	if err := os.WriteFile(a.savePath(), ram, 0644); err != nil {
		return fmt.Errorf("app: save battery RAM: %w", err)
	}
	log.Printf("[SAVE] wrote battery RAM to %s", a.savePath())
	return nil
}

// Run starts the presentation loop: an Ebitengine window in normal mode,
// or a fixed number of silent frames in headless mode (useful for
// smoke-testing a ROM without a display).
func (a *Application) Run(headless bool) error {
	if headless {
		return a.runHeadless()
	}

	title := "nesgo"
	if a.romPath != "" {
		title = "nesgo - " + filepath.Base(a.romPath)
	}
	window := graphics.NewEbitengineWindow(title, a.cfg.Window.Scale)
	if a.cfg.Window.Width > 0 && a.cfg.Window.Height > 0 {
		ebiten.SetWindowSize(a.cfg.WindowSize())
	}
	a.window = window

	if a.cfg.Audio.Enabled {
		stream, _, err := graphics.NewAudioPlayer(a.cfg.Audio.SampleRate)
		if err != nil {
			log.Printf("[AUDIO] player unavailable: %v", err)
		} else {
			a.audio = stream
		}
	}

	window.SetUpdateFunc(a.update)
	return window.Run()
}

func (a *Application) runHeadless() error {
	const frames = 60
	for i := 0; i < frames; i++ {
		a.console.RunFrame()
		a.console.AudioDrain()
	}
	return nil
}

// update is the per-host-tick callback: sample the window's button
// state into both controller ports, advance one frame, and hand the
// result back to the window and the audio stream.
func (a *Application) update() error {
	a.applyButtons(1, a.window.Buttons(1))
	a.applyButtons(2, a.window.Buttons(2))

	frame := a.console.RunFrame()
	a.window.SetFrame(frame)

	if a.audio != nil {
		a.audio.PushMono(a.console.AudioDrain())
	}
	return nil
}

func (a *Application) applyButtons(port int, bs graphics.ButtonState) {
	a.console.SetButton(port, input.ButtonUp, bs.Up)
	a.console.SetButton(port, input.ButtonDown, bs.Down)
	a.console.SetButton(port, input.ButtonLeft, bs.Left)
	a.console.SetButton(port, input.ButtonRight, bs.Right)
	a.console.SetButton(port, input.ButtonA, bs.A)
	a.console.SetButton(port, input.ButtonB, bs.B)
	a.console.SetButton(port, input.ButtonStart, bs.Start)
	a.console.SetButton(port, input.ButtonSelect, bs.Select)
}
