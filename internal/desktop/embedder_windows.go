//go:build windows

package desktop

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procFindWindowW       = user32.NewProc("FindWindowW")
	procFindWindowExW     = user32.NewProc("FindWindowExW")
	procSetParent         = user32.NewProc("SetParent")
	procGetWindowLongPtrW = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW = user32.NewProc("SetWindowLongPtrW")
	procSetWindowPos      = user32.NewProc("SetWindowPos")
	procGetWindowRect     = user32.NewProc("GetWindowRect")
	procGetSystemMetrics  = user32.NewProc("GetSystemMetrics")
	procEnumWindows       = user32.NewProc("EnumWindows")
	procGetClassNameW     = user32.NewProc("GetClassNameW")
)

const (
	gwlExStyle     = ^uintptr(19) // -20
	wsExToolWindow = 0x00000080
	wsExAppWindow  = 0x00040000

	swpNoMove         = 0x0002
	swpNoSize         = 0x0001
	swpNoActivate     = 0x0010
	swpNoSendChanging = 0x0400

	hwndBottom = 1

	smXVirtualScreen = 76
	smYVirtualScreen = 77
)

type rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

func init() {
	NewEmbedderFunc = func() (Embedder, error) {
		return &shellEmbedder{}, nil
	}
}

type shellEmbedder struct{}

func (e *shellEmbedder) SuppressTaskSwitching(hwnd uintptr) error {
	style, _, _ := procGetWindowLongPtrW.Call(hwnd, gwlExStyle)
	want := (style &^ wsExAppWindow) | wsExToolWindow
	if want == style {
		return nil
	}
	ret, _, err := procSetWindowLongPtrW.Call(hwnd, gwlExStyle, want)
	if ret == 0 && style != 0 {
		return fmt.Errorf("SetWindowLongPtrW: %w", err)
	}
	return nil
}

func (e *shellEmbedder) EmbedBehindIcons(hwnd uintptr) (Offset, error) {
	surface := findIconSurface()
	if surface == 0 {
		return Offset{}, ErrShellSurfaceNotFound
	}
	ret, _, err := procSetParent.Call(hwnd, surface)
	if ret == 0 {
		return Offset{}, fmt.Errorf("SetParent: %w", err)
	}
	return surfaceOrigin(surface), nil
}

func (e *shellEmbedder) ForceToBottom(hwnd uintptr) error {
	ret, _, err := procSetWindowPos.Call(hwnd, hwndBottom, 0, 0, 0, 0,
		swpNoMove|swpNoSize|swpNoActivate|swpNoSendChanging)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %w", err)
	}
	return nil
}

// findIconSurface walks the shell's window tree for the SHELLDLL_DefView
// hosting the desktop icons. It is usually a child of Progman; after the
// shell rotates wallpaper it migrates into one of the WorkerW top-level
// siblings, so scan those when the direct lookup comes up empty.
func findIconSurface() uintptr {
	progman, _, _ := procFindWindowW.Call(utf16Arg("Progman"), 0)
	if progman != 0 {
		view, _, _ := procFindWindowExW.Call(progman, 0, utf16Arg("SHELLDLL_DefView"), 0)
		if view != 0 {
			return view
		}
	}

	var found uintptr
	procEnumWindows.Call(enumWorkerWCallback, uintptr(unsafe.Pointer(&found)))
	return found
}

// enumWorkerWCallback is created once; NewCallback slots are a finite
// process-wide resource.
var enumWorkerWCallback = windows.NewCallback(func(hwnd, lparam uintptr) uintptr {
	if className(hwnd) != "WorkerW" {
		return 1
	}
	view, _, _ := procFindWindowExW.Call(hwnd, 0, utf16Arg("SHELLDLL_DefView"), 0)
	if view == 0 {
		return 1
	}
	*(*uintptr)(unsafe.Pointer(lparam)) = view
	return 0
})

// surfaceOrigin reports where the icon surface sits relative to the virtual
// screen origin. Nonzero when the primary monitor is not the leftmost or
// topmost one.
func surfaceOrigin(surface uintptr) Offset {
	var r rect
	ret, _, _ := procGetWindowRect.Call(surface, uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return Offset{}
	}
	vx, _, _ := procGetSystemMetrics.Call(smXVirtualScreen)
	vy, _, _ := procGetSystemMetrics.Call(smYVirtualScreen)
	return Offset{
		X: int(r.Left) - int(int32(vx)),
		Y: int(r.Top) - int(int32(vy)),
	}
}

func className(hwnd uintptr) string {
	var buf [64]uint16
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func utf16Arg(s string) uintptr {
	p, _ := windows.UTF16PtrFromString(s)
	return uintptr(unsafe.Pointer(p))
}
