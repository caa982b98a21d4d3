// Package desktop pins group windows behind the desktop icons.
//
// The interesting part is where a group window lives in the shell's window
// tree. Re-parenting beneath the icon surface makes the desktop itself the
// coordinate space, so persisted geometry is desktop-relative and survives
// monitor layout changes; the embedder reports the surface's origin offset
// so callers can translate between the two spaces.
package desktop

import (
	"errors"

	"github.com/weizlogy/desktop-grouping/internal/group"
)

var (
	// ErrShellSurfaceNotFound means the desktop icon surface could not be
	// located in the shell's window tree. The window stays usable; callers
	// fall back to ForceToBottom for stacking.
	ErrShellSurfaceNotFound = errors.New("desktop icon surface not found")

	// ErrUnsupported is returned on platforms without a desktop shell
	// integration.
	ErrUnsupported = errors.New("desktop embedding not supported on this platform")
)

// Offset is the desktop icon surface's origin in screen coordinates.
// Desktop-relative geometry plus the offset is screen geometry.
type Offset struct {
	X int
	Y int
}

// Embedder places a native window behind the desktop icons.
type Embedder interface {
	// SuppressTaskSwitching removes the window from Alt-Tab and the
	// taskbar. Idempotent.
	SuppressTaskSwitching(hwnd uintptr) error

	// EmbedBehindIcons re-parents the window beneath the icon surface and
	// returns the surface's origin offset. On ErrShellSurfaceNotFound the
	// window is left un-parented and the zero offset applies.
	EmbedBehindIcons(hwnd uintptr) (Offset, error)

	// ForceToBottom pushes the window to the bottom of the z-order without
	// re-parenting. Degraded fallback when embedding fails.
	ForceToBottom(hwnd uintptr) error
}

// NewEmbedderFunc is installed by the platform file's init. It stays nil on
// platforms without an implementation.
var NewEmbedderFunc func() (Embedder, error)

// NewEmbedder returns the platform embedder, or ErrUnsupported when none is
// registered.
func NewEmbedder() (Embedder, error) {
	if NewEmbedderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewEmbedderFunc()
}

// ToScreen translates desktop-relative geometry to screen coordinates.
// Unset geometry passes through untouched.
func ToScreen(g group.Geometry, off Offset) group.Geometry {
	if g.Unset() {
		return g
	}
	g.Top += float64(off.Y)
	g.Left += float64(off.X)
	return g
}

// ToDesktop translates screen coordinates back to desktop-relative
// geometry. Unset geometry passes through untouched.
func ToDesktop(g group.Geometry, off Offset) group.Geometry {
	if g.Unset() {
		return g
	}
	g.Top -= float64(off.Y)
	g.Left -= float64(off.X)
	return g
}
