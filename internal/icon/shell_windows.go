//go:build windows

package icon

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	shell32  = windows.NewLazySystemDLL("shell32.dll")
	comctl32 = windows.NewLazySystemDLL("comctl32.dll")
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")

	procSHGetFileInfoW   = shell32.NewProc("SHGetFileInfoW")
	procSHGetImageList   = shell32.NewProc("SHGetImageList")
	procImageListGetIcon = comctl32.NewProc("ImageList_GetIcon")
	procGetIconInfo      = user32.NewProc("GetIconInfo")
	procDestroyIcon      = user32.NewProc("DestroyIcon")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")
	procGetObjectW       = gdi32.NewProc("GetObjectW")
	procGetDIBits        = gdi32.NewProc("GetDIBits")
	procDeleteObject     = gdi32.NewProc("DeleteObject")
)

const (
	shgfiIcon         = 0x000000100
	shgfiLargeIcon    = 0x000000000
	shgfiSysIconIndex = 0x000004000

	shilExtraLarge = 2
	ildTransparent = 1

	dibRGBColors = 0
	biRGB        = 0
)

// IID_IImageList {46EB5926-582E-4017-9FDF-E8998DAA0950}. SHGetImageList
// hands back an IImageList, which comctl32 v6 accepts wherever an
// HIMAGELIST is expected.
var iidIImageList = windows.GUID{
	Data1: 0x46EB5926,
	Data2: 0x582E,
	Data3: 0x4017,
	Data4: [8]byte{0x9F, 0xDF, 0xE8, 0x99, 0x8D, 0xAA, 0x09, 0x50},
}

type shFileInfo struct {
	HIcon        windows.Handle
	IIcon        int32
	DwAttributes uint32
	DisplayName  [260]uint16
	TypeName     [80]uint16
}

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  windows.Handle
	HbmColor windows.Handle
}

type gdiBitmap struct {
	Type       int32
	Width      int32
	Height     int32
	WidthBytes int32
	Planes     uint16
	BitsPixel  uint16
	Bits       uintptr
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

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [3]uint32
}

type shellSource struct{}

// NewShellSource returns the Source backed by the Windows shell.
func NewShellSource() Source { return shellSource{} }

// ExtraLarge resolves the path's index into the system image list and pulls
// the 48x48 entry from the SHIL_EXTRALARGE list.
func (shellSource) ExtraLarge(path string) (Icon, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	var info shFileInfo
	ret, _, _ := procSHGetFileInfoW.Call(
		uintptr(unsafe.Pointer(p)), 0,
		uintptr(unsafe.Pointer(&info)), unsafe.Sizeof(info),
		shgfiSysIconIndex)
	if ret == 0 {
		return nil, errors.New("SHGetFileInfoW: no system icon index")
	}

	var himl uintptr
	hr, _, _ := procSHGetImageList.Call(
		shilExtraLarge,
		uintptr(unsafe.Pointer(&iidIImageList)),
		uintptr(unsafe.Pointer(&himl)))
	if hr != 0 || himl == 0 {
		return nil, fmt.Errorf("SHGetImageList: %#x", hr)
	}

	hicon, _, _ := procImageListGetIcon.Call(himl, uintptr(info.IIcon), ildTransparent)
	if hicon == 0 {
		return nil, fmt.Errorf("ImageList_GetIcon: no icon at index %d", info.IIcon)
	}
	return &nativeIcon{handle: windows.Handle(hicon)}, nil
}

// Associated asks the legacy association API for the path's icon; this is
// the lower-resolution last resort when the image-list route fails.
func (shellSource) Associated(path string) (Icon, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	var info shFileInfo
	ret, _, _ := procSHGetFileInfoW.Call(
		uintptr(unsafe.Pointer(p)), 0,
		uintptr(unsafe.Pointer(&info)), unsafe.Sizeof(info),
		shgfiIcon|shgfiLargeIcon)
	if ret == 0 || info.HIcon == 0 {
		return nil, errors.New("SHGetFileInfoW: no associated icon")
	}
	return &nativeIcon{handle: info.HIcon}, nil
}

// nativeIcon owns one HICON until Release.
type nativeIcon struct {
	handle   windows.Handle
	released bool
}

func (n *nativeIcon) Release() {
	if n.released {
		return
	}
	n.released = true
	procDestroyIcon.Call(uintptr(n.handle))
}

// Render copies the icon's color bitmap into an owned image.RGBA. The HICON
// itself stays owned by the nativeIcon; the two ICONINFO bitmaps created by
// GetIconInfo are freed before returning on every path.
func (n *nativeIcon) Render() (*image.RGBA, error) {
	var ii iconInfo
	ret, _, _ := procGetIconInfo.Call(uintptr(n.handle), uintptr(unsafe.Pointer(&ii)))
	if ret == 0 {
		return nil, errors.New("GetIconInfo failed")
	}
	defer func() {
		if ii.HbmColor != 0 {
			procDeleteObject.Call(uintptr(ii.HbmColor))
		}
		if ii.HbmMask != 0 {
			procDeleteObject.Call(uintptr(ii.HbmMask))
		}
	}()
	if ii.HbmColor == 0 {
		return nil, errors.New("icon has no color bitmap")
	}

	var bmp gdiBitmap
	ret, _, _ = procGetObjectW.Call(uintptr(ii.HbmColor), unsafe.Sizeof(bmp), uintptr(unsafe.Pointer(&bmp)))
	if ret == 0 {
		return nil, errors.New("GetObjectW failed")
	}
	w, h := int(bmp.Width), int(bmp.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("degenerate icon bitmap %dx%d", w, h)
	}

	hdc, _, _ := procGetDC.Call(0)
	if hdc == 0 {
		return nil, errors.New("GetDC failed")
	}
	defer procReleaseDC.Call(0, hdc)

	// Negative height requests a top-down DIB so rows land in image order.
	bi := bitmapInfo{Header: bitmapInfoHeader{
		Size:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		Width:       int32(w),
		Height:      -int32(h),
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}}
	buf := make([]byte, w*h*4)
	lines, _, _ := procGetDIBits.Call(hdc, uintptr(ii.HbmColor), 0, uintptr(h),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&bi)), dibRGBColors)
	if lines == 0 {
		return nil, errors.New("GetDIBits failed")
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	opaque := false
	for i := 0; i+3 < len(buf); i += 4 {
		// DIB pixels are BGRA.
		img.Pix[i+0] = buf[i+2]
		img.Pix[i+1] = buf[i+1]
		img.Pix[i+2] = buf[i+0]
		img.Pix[i+3] = buf[i+3]
		if buf[i+3] != 0 {
			opaque = true
		}
	}
	// Icons older than 32bpp carry no alpha channel; without this they
	// would render fully transparent.
	if !opaque {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xFF
		}
	}
	return img, nil
}
