//go:build windows

package display

import (
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	processPerMonitorDPIAware = 2
	monitorDefaultToNearest   = 2
	mdtEffectiveDPI           = 0
	baseDPI                   = 96
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	shcore = windows.NewLazySystemDLL("shcore.dll")

	procSetProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
	procMonitorFromRect        = user32.NewProc("MonitorFromRect")
	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
	procGetDpiForMonitor       = shcore.NewProc("GetDpiForMonitor")
)

// EnableDPIAwareness must run before any window is created or any display
// metric is queried, otherwise bounds come back virtualised.
func EnableDPIAwareness() {
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		_, _, _ = procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		return
	}
	if err := procSetProcessDPIAware.Find(); err == nil {
		_, _, _ = procSetProcessDPIAware.Call()
	}
}

func platformScale(b image.Rectangle) float64 {
	if procMonitorFromRect.Find() != nil || procGetDpiForMonitor.Find() != nil {
		return 1
	}
	r := windows.Rect{
		Left:   int32(b.Min.X),
		Top:    int32(b.Min.Y),
		Right:  int32(b.Max.X),
		Bottom: int32(b.Max.Y),
	}
	hmon, _, _ := procMonitorFromRect.Call(uintptr(unsafe.Pointer(&r)), monitorDefaultToNearest)
	if hmon == 0 {
		return 1
	}
	var dpiX, dpiY uint32
	hr, _, _ := procGetDpiForMonitor.Call(hmon, mdtEffectiveDPI, uintptr(unsafe.Pointer(&dpiX)), uintptr(unsafe.Pointer(&dpiY)))
	if hr != 0 || dpiX == 0 {
		return 1
	}
	return float64(dpiX) / baseDPI
}
