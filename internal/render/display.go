package render

import (
	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/opencv/safe"
)

// Command is an interactive request read from the display window.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandToggleEnabled
	CommandToggleDebug
)

func (c Command) String() string {
	switch c {
	case CommandQuit:
		return "quit"
	case CommandToggleEnabled:
		return "toggle_enabled"
	case CommandToggleDebug:
		return "toggle_debug"
	default:
		return "none"
	}
}

// KeyCommand maps q, s and d. Only the low byte of key is significant.
func KeyCommand(key int) Command {
	if key < 0 {
		return CommandNone
	}
	switch key & 0xFF {
	case 'q', 'Q':
		return CommandQuit
	case 's', 'S':
		return CommandToggleEnabled
	case 'd', 'D':
		return CommandToggleDebug
	default:
		return CommandNone
	}
}

// Display shows frames in a native window.
type Display struct {
	window *gocv.Window
	wait   int
	shown  bool
}

func NewDisplay(title string) *Display {
	return &Display{window: gocv.NewWindow(title), wait: 10}
}

// Show draws f and polls the keyboard. A window closed by the user reports
// CommandQuit.
func (d *Display) Show(f frame.Frame) (Command, error) {
	if d.shown && !d.window.IsOpen() {
		return CommandQuit, nil
	}

	drawn, err := Rasterize(f)
	if err != nil {
		return CommandNone, err
	}
	mat, err := safe.FromFrame(drawn)
	if err != nil {
		return CommandNone, err
	}
	defer mat.Close()

	d.window.IMShow(mat.GetMat())
	d.shown = true
	return KeyCommand(d.window.WaitKey(d.wait)), nil
}

func (d *Display) Write(f frame.Frame) error {
	_, err := d.Show(f)
	return err
}

func (d *Display) Shutdown() {
	d.window.Close()
}
