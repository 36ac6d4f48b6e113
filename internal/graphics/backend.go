// Package graphics hosts the ebiten-backed presentation layer: a window
// that blits a 256x240 frame buffer and polls the keyboard for the two
// controller ports. It knows nothing of internal/console; internal/app
// wires the two together through the Window interface below.
package graphics

import "image/color"

// ButtonState is the live state of one controller's eight buttons,
// sampled once per host tick by a Window implementation.
type ButtonState struct {
	Up, Down, Left, Right bool
	A, B, Start, Select   bool
}

// Window is the host-facing surface a Backend exposes: a frame sink, a
// button-state source, and a run loop that drives both.
type Window interface {
	// SetUpdateFunc installs the per-tick callback; the window calls it
	// once per host frame, after refreshing key state and before Draw.
	SetUpdateFunc(func() error)

	// SetFrame replaces the image presented on the next Draw.
	SetFrame(frame *[256 * 240]color.RGBA)

	// Buttons reports the live button state for controller port 1 or 2.
	Buttons(port int) ButtonState

	// Run starts the host event loop; it blocks until the window closes.
	Run() error
}
