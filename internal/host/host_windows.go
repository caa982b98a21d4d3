//go:build windows

package host

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/weizlogy/desktop-grouping/internal/controller"
	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/logging"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	shell32  = windows.NewLazySystemDLL("shell32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW           = user32.NewProc("RegisterClassExW")
	procCreateWindowExW            = user32.NewProc("CreateWindowExW")
	procDestroyWindow              = user32.NewProc("DestroyWindow")
	procDefWindowProcW             = user32.NewProc("DefWindowProcW")
	procGetMessageW                = user32.NewProc("GetMessageW")
	procTranslateMessage           = user32.NewProc("TranslateMessage")
	procDispatchMessageW           = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW         = user32.NewProc("PostThreadMessageW")
	procLoadCursorW                = user32.NewProc("LoadCursorW")
	procShowWindow                 = user32.NewProc("ShowWindow")
	procMoveWindow                 = user32.NewProc("MoveWindow")
	procGetWindowRect              = user32.NewProc("GetWindowRect")
	procGetClientRect              = user32.NewProc("GetClientRect")
	procGetParent                  = user32.NewProc("GetParent")
	procMapWindowPoints            = user32.NewProc("MapWindowPoints")
	procInvalidateRect             = user32.NewProc("InvalidateRect")
	procBeginPaint                 = user32.NewProc("BeginPaint")
	procEndPaint                   = user32.NewProc("EndPaint")
	procFillRect                   = user32.NewProc("FillRect")
	procFrameRect                  = user32.NewProc("FrameRect")
	procDrawTextW                  = user32.NewProc("DrawTextW")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procTrackMouseEvent            = user32.NewProc("TrackMouseEvent")

	procCreateSolidBrush = gdi32.NewProc("CreateSolidBrush")
	procDeleteObject     = gdi32.NewProc("DeleteObject")
	procStretchDIBits    = gdi32.NewProc("StretchDIBits")
	procSetBkMode        = gdi32.NewProc("SetBkMode")
	procSetTextColor     = gdi32.NewProc("SetTextColor")

	procDragAcceptFiles = shell32.NewProc("DragAcceptFiles")
	procDragQueryFileW  = shell32.NewProc("DragQueryFileW")
	procDragFinish      = shell32.NewProc("DragFinish")

	procGetCurrentThreadId = kernel32.NewProc("GetCurrentThreadId")
)

const (
	className = "DesktopGroupingGroup"

	wsPopup        = 0x80000000
	wsExLayered    = 0x00080000
	wsExToolWindow = 0x00000080

	wmDestroy      = 0x0002
	wmPaint        = 0x000F
	wmClose        = 0x0010
	wmEraseBkgnd   = 0x0014
	wmQuit         = 0x0012
	wmMouseMove    = 0x0200
	wmMouseLeave   = 0x02A3
	wmExitSizeMove = 0x0232
	wmDropFiles    = 0x0233

	swShowNoActivate = 4
	swHide           = 0

	lwaAlpha    = 0x02
	tmeLeave    = 0x02
	idcArrow    = 32512
	transparent = 1

	dtCenter       = 0x0001
	dtWordEllipsis = 0x00040000

	cellSize = 72
	iconSize = 48
	cellPad  = 8
	textH    = 16

	biRGB        = 0
	dibRGBColors = 0
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type msg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	PtX     int32
	PtY     int32
}

type rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type point struct {
	X int32
	Y int32
}

type paintStruct struct {
	Hdc         windows.Handle
	Erase       int32
	Paint       rect
	Restore     int32
	IncUpdate   int32
	RgbReserved [32]byte
}

type trackMouseEventArg struct {
	Size      uint32
	Flags     uint32
	HwndTrack windows.Handle
	HoverTime uint32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

func init() {
	// CreateWindowExW ties a window to the calling OS thread and
	// GetMessageW only drains that thread's queue. Pin the main goroutine
	// before any window can exist so creation and the loop share one
	// thread.
	runtime.LockOSThread()
	NewHostFunc = func(log *logging.Logger) (Host, error) {
		return newWinHost(log)
	}
}

type winHost struct {
	log      *logging.Logger
	threadID uint32

	mu      sync.Mutex
	windows map[uintptr]*winWindow
}

func newWinHost(log *logging.Logger) (*winHost, error) {
	if log == nil {
		log = logging.NewNop()
	}
	tid, _, _ := procGetCurrentThreadId.Call()
	h := &winHost{log: log, threadID: uint32(tid), windows: make(map[uintptr]*winWindow)}
	if err := h.registerClass(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *winHost) registerClass() error {
	cursor, _, _ := procLoadCursorW.Call(0, idcArrow)
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return err
	}
	wc := wndClassEx{
		WndProc:   windows.NewCallback(h.wndProc),
		Cursor:    windows.Handle(cursor),
		ClassName: name,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	atom, _, errno := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
	if atom == 0 && errno != windows.ERROR_CLASS_ALREADY_EXISTS {
		return fmt.Errorf("RegisterClassExW: %w", errno)
	}
	return nil
}

func (h *winHost) NewWindow(ev Events) (controller.Window, error) {
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return nil, err
	}
	hwnd, _, errno := procCreateWindowExW.Call(
		wsExLayered|wsExToolWindow,
		uintptr(unsafe.Pointer(name)),
		0,
		wsPopup,
		0, 0, 300, 200,
		0, 0, 0, 0)
	if hwnd == 0 {
		return nil, fmt.Errorf("CreateWindowExW: %w", errno)
	}
	w := &winWindow{host: h, hwnd: hwnd, ev: ev, alpha: 0x80}
	h.mu.Lock()
	h.windows[hwnd] = w
	h.mu.Unlock()
	procDragAcceptFiles.Call(hwnd, 1)
	return w, nil
}

func (h *winHost) Run() error {
	tid, _, _ := procGetCurrentThreadId.Call()
	if uint32(tid) != h.threadID {
		return fmt.Errorf("message loop must run on the thread the windows were created on")
	}
	var m msg
	for {
		ret, _, errno := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(ret) {
		case 0:
			return nil
		case -1:
			return fmt.Errorf("GetMessageW: %w", errno)
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (h *winHost) Quit() {
	procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0)
}

func (h *winHost) lookup(hwnd uintptr) *winWindow {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.windows[hwnd]
}

func (h *winHost) wndProc(hwnd, message, wparam, lparam uintptr) uintptr {
	w := h.lookup(hwnd)
	if w == nil {
		ret, _, _ := procDefWindowProcW.Call(hwnd, message, wparam, lparam)
		return ret
	}
	switch message {
	case wmPaint:
		w.paint()
		return 0
	case wmEraseBkgnd:
		return 1
	case wmDropFiles:
		w.dropped(wparam)
		return 0
	case wmExitSizeMove:
		w.moved()
		return 0
	case wmMouseMove:
		w.hoverEnter()
	case wmMouseLeave:
		w.hoverLeave()
		return 0
	case wmClose:
		if w.ev.CloseRequested != nil {
			w.ev.CloseRequested()
		}
		return 0
	case wmDestroy:
		h.mu.Lock()
		delete(h.windows, hwnd)
		h.mu.Unlock()
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(hwnd, message, wparam, lparam)
	return ret
}

// winWindow is one layered popup living behind the desktop icons. Field
// access happens on the UI thread only, except through the controller
// calls, which the message loop serializes with the mutex.
type winWindow struct {
	host *winHost
	hwnd uintptr
	ev   Events

	mu         sync.Mutex
	items      []group.Item
	background group.Color
	border     group.Color
	borderSet  bool
	alpha      byte
	hovering   bool
}

func (w *winWindow) Handle() uintptr { return w.hwnd }

func (w *winWindow) SetBounds(g group.Geometry) {
	if g.Unset() {
		// Never-placed groups take the same spot first-run windows do.
		g = group.Geometry{Top: 50, Left: 50, Width: 300, Height: 200}
	}
	x, y := int32(g.Left), int32(g.Top)
	// The controller speaks screen coordinates, matching what moved()
	// reads back, but MoveWindow positions a reparented window in the
	// parent's client space. Translate once embedded.
	if parent, _, _ := procGetParent.Call(w.hwnd); parent != 0 {
		pt := point{X: x, Y: y}
		procMapWindowPoints.Call(0, parent, uintptr(unsafe.Pointer(&pt)), 1)
		x, y = pt.X, pt.Y
	}
	procMoveWindow.Call(w.hwnd,
		uintptr(x), uintptr(y),
		uintptr(int32(g.Width)), uintptr(int32(g.Height)), 1)
}

func (w *winWindow) SetAppearance(a controller.Appearance) {
	w.mu.Lock()
	w.background = a.Background
	w.border = a.Border
	w.borderSet = a.BorderSet
	w.alpha = byte(a.Opacity * 0xFF)
	hovering := w.hovering
	w.mu.Unlock()
	if !hovering {
		w.applyAlpha(w.alpha)
	}
	procInvalidateRect.Call(w.hwnd, 0, 1)
}

func (w *winWindow) SetItems(items []group.Item) {
	w.mu.Lock()
	w.items = append([]group.Item(nil), items...)
	w.mu.Unlock()
	procInvalidateRect.Call(w.hwnd, 0, 1)
}

func (w *winWindow) Show() {
	w.applyAlpha(w.alpha)
	procShowWindow.Call(w.hwnd, swShowNoActivate)
}

func (w *winWindow) Close() {
	procDestroyWindow.Call(w.hwnd)
}

func (w *winWindow) applyAlpha(alpha byte) {
	procSetLayeredWindowAttributes.Call(w.hwnd, 0, uintptr(alpha), lwaAlpha)
}

// hoverEnter lifts the window to full opacity while the pointer is inside.
// The stored opacity is untouched; hover is view state only.
func (w *winWindow) hoverEnter() {
	w.mu.Lock()
	already := w.hovering
	w.hovering = true
	w.mu.Unlock()
	if already {
		return
	}
	w.applyAlpha(0xFF)
	tme := trackMouseEventArg{
		Flags:     tmeLeave,
		HwndTrack: windows.Handle(w.hwnd),
	}
	tme.Size = uint32(unsafe.Sizeof(tme))
	procTrackMouseEvent.Call(uintptr(unsafe.Pointer(&tme)))
}

func (w *winWindow) hoverLeave() {
	w.mu.Lock()
	w.hovering = false
	alpha := w.alpha
	w.mu.Unlock()
	w.applyAlpha(alpha)
}

func (w *winWindow) dropped(hdrop uintptr) {
	defer procDragFinish.Call(hdrop)
	count, _, _ := procDragQueryFileW.Call(hdrop, 0xFFFFFFFF, 0, 0)
	if count == 0 || w.ev.Dropped == nil {
		return
	}
	paths := make([]string, 0, count)
	var buf [windows.MAX_PATH]uint16
	for i := uintptr(0); i < count; i++ {
		n, _, _ := procDragQueryFileW.Call(hdrop, i,
			uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if n == 0 {
			continue
		}
		paths = append(paths, windows.UTF16ToString(buf[:n]))
	}
	if len(paths) > 0 {
		w.host.log.Debug("drop received", zap.Int("paths", len(paths)))
		w.ev.Dropped(paths)
	}
}

func (w *winWindow) moved() {
	if w.ev.Moved == nil {
		return
	}
	var r rect
	ret, _, _ := procGetWindowRect.Call(w.hwnd, uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return
	}
	w.ev.Moved(float64(r.Top), float64(r.Left),
		float64(r.Right-r.Left), float64(r.Bottom-r.Top))
}

// paint draws the translucent panel: background fill, optional border
// frame, then the item grid with each icon above its display name.
func (w *winWindow) paint() {
	var ps paintStruct
	hdc, _, _ := procBeginPaint.Call(w.hwnd, uintptr(unsafe.Pointer(&ps)))
	if hdc == 0 {
		return
	}
	defer procEndPaint.Call(w.hwnd, uintptr(unsafe.Pointer(&ps)))

	var client rect
	procGetClientRect.Call(w.hwnd, uintptr(unsafe.Pointer(&client)))

	w.mu.Lock()
	items := w.items
	background := w.background
	border := w.border
	borderSet := w.borderSet
	w.mu.Unlock()

	brush, _, _ := procCreateSolidBrush.Call(colorref(background))
	procFillRect.Call(hdc, uintptr(unsafe.Pointer(&client)), brush)
	procDeleteObject.Call(brush)

	if borderSet {
		frame, _, _ := procCreateSolidBrush.Call(colorref(border))
		procFrameRect.Call(hdc, uintptr(unsafe.Pointer(&client)), frame)
		procDeleteObject.Call(frame)
	}

	procSetBkMode.Call(hdc, transparent)
	procSetTextColor.Call(hdc, 0x00FFFFFF)

	cols := int(client.Right-client.Left) / cellSize
	if cols < 1 {
		cols = 1
	}
	for i, it := range items {
		x := int32((i % cols) * cellSize)
		y := int32((i / cols) * cellSize)
		if it.Icon != nil {
			w.drawIcon(hdc, it.Icon, x+cellPad, y+cellPad)
		}
		label := rect{
			Left:   x,
			Top:    y + cellPad + iconSize,
			Right:  x + cellSize,
			Bottom: y + cellPad + iconSize + textH,
		}
		text, err := windows.UTF16FromString(it.DisplayName)
		if err != nil {
			continue
		}
		procDrawTextW.Call(hdc, uintptr(unsafe.Pointer(&text[0])),
			uintptr(len(text)-1), uintptr(unsafe.Pointer(&label)),
			dtCenter|dtWordEllipsis)
	}
}

// drawIcon blits a decoded bitmap into the icon slot of a cell.
func (w *winWindow) drawIcon(hdc uintptr, img image.Image, x, y int32) {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(b)
		for py := b.Min.Y; py < b.Max.Y; py++ {
			for px := b.Min.X; px < b.Max.X; px++ {
				rgba.Set(px, py, img.At(px, py))
			}
		}
	}
	b := rgba.Bounds()
	iw, ih := int32(b.Dx()), int32(b.Dy())
	if iw == 0 || ih == 0 {
		return
	}
	// StretchDIBits wants BGRA.
	pix := make([]byte, len(rgba.Pix))
	for i := 0; i+3 < len(rgba.Pix); i += 4 {
		pix[i+0] = rgba.Pix[i+2]
		pix[i+1] = rgba.Pix[i+1]
		pix[i+2] = rgba.Pix[i+0]
		pix[i+3] = rgba.Pix[i+3]
	}
	bi := bitmapInfoHeader{
		Width:       iw,
		Height:      -ih,
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}
	bi.Size = uint32(unsafe.Sizeof(bi))
	procStretchDIBits.Call(hdc,
		uintptr(x), uintptr(y), iconSize, iconSize,
		0, 0, uintptr(iw), uintptr(ih),
		uintptr(unsafe.Pointer(&pix[0])), uintptr(unsafe.Pointer(&bi)),
		dibRGBColors, 0x00CC0020) // SRCCOPY
}

// colorref converts to the 0x00BBGGRR form GDI brushes take. The alpha
// byte has no meaning at brush level; window-wide opacity carries it.
func colorref(c group.Color) uintptr {
	return uintptr(uint32(c.B)<<16 | uint32(c.G)<<8 | uint32(c.R))
}
