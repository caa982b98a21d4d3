// Package host creates and runs the native group windows.
//
// One Host owns the UI thread. Windows are created through it, live as
// children of the desktop icon surface once embedded, and receive their
// drag-drop, move and hover events through the host's message loop. The
// controller package never touches native calls directly; it drives the
// Window interface this package implements.
package host

import (
	"errors"

	"github.com/weizlogy/desktop-grouping/internal/controller"
	"github.com/weizlogy/desktop-grouping/internal/logging"
)

// ErrUnsupported is returned on platforms without a window host.
var ErrUnsupported = errors.New("window host not supported on this platform")

// Events are the user gestures a window forwards to its controller.
// Handlers run on the UI thread; they must not block.
type Events struct {
	// Dropped delivers the file paths of a completed drag-drop.
	Dropped func(paths []string)
	// Moved delivers the window's new screen-space bounds after the user
	// finishes a move or resize.
	Moved func(top, left, width, height float64)
	// CloseRequested fires when the user asks to close the group window.
	CloseRequested func()
}

// Host owns the UI thread and its windows.
type Host interface {
	// NewWindow creates one hidden group window wired to ev.
	NewWindow(ev Events) (controller.Window, error)
	// Run pumps the message loop until Quit. Must be called from the main
	// goroutine.
	Run() error
	// Quit makes Run return.
	Quit()
}

// NewHostFunc is installed by the platform file's init.
var NewHostFunc func(log *logging.Logger) (Host, error)

// New returns the platform host, or ErrUnsupported when none is
// registered.
func New(log *logging.Logger) (Host, error) {
	if NewHostFunc == nil {
		return nil, ErrUnsupported
	}
	return NewHostFunc(log)
}
