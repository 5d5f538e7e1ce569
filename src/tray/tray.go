// Package tray runs the system tray menu of the resident process.
package tray

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/getlantern/systray"

	"github.com/sprintrstudio/openCap/src/compositor"
	"github.com/sprintrstudio/openCap/src/region"
)

const appTitle = "OpenCap"

// Menu describes the tray contents and where clicks go.
type Menu struct {
	Tooltip string
	// Monitors labels the "Capture Monitor" sub-items, one per display.
	Monitors []string
	// OnCapture receives the selection of the clicked item. It must not block.
	OnCapture func(sel region.Selection)
	OnQuit    func()
}

var (
	ready     atomic.Bool
	aboutMu   sync.Mutex
	aboutItem *systray.MenuItem
	aboutText string
)

// Run blocks on the systray main loop until Quit.
func Run(m Menu) {
	systray.Run(func() { onReady(m) }, func() {
		ready.Store(false)
		log.Printf("Tray: exited")
	})
}

// Quit stops Run.
func Quit() { systray.Quit() }

func onReady(m Menu) {
	systray.SetIcon(Icon())
	systray.SetTitle(appTitle)
	tooltip := m.Tooltip
	if tooltip == "" {
		tooltip = appTitle
	}
	systray.SetTooltip(tooltip)

	mFull := systray.AddMenuItem("Capture Full Screen", "Capture every display")
	mMonitor := systray.AddMenuItem("Capture Monitor", "Capture a single display")
	monitorItems := make([]*systray.MenuItem, len(m.Monitors))
	for i, label := range m.Monitors {
		monitorItems[i] = mMonitor.AddSubMenuItem(label, fmt.Sprintf("Capture display %d", i))
	}
	if len(m.Monitors) == 0 {
		mMonitor.Disable()
	}
	systray.AddSeparator()

	aboutMu.Lock()
	aboutItem = systray.AddMenuItem(aboutTitle(aboutText), "")
	aboutItem.Disable()
	aboutMu.Unlock()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")
	ready.Store(true)

	capture := func(sel region.Selection) {
		log.Printf("Tray: capture %s requested", sel)
		if m.OnCapture != nil {
			m.OnCapture(sel)
		}
	}
	go func() {
		for range mFull.ClickedCh {
			capture(region.Full())
		}
	}()
	for i, item := range monitorItems {
		go func(i int, item *systray.MenuItem) {
			for range item.ClickedCh {
				capture(region.Monitor(i))
			}
		}(i, item)
	}
	go func() {
		<-mQuit.ClickedCh
		log.Printf("Tray: quit requested")
		if m.OnQuit != nil {
			m.OnQuit()
		}
		systray.Quit()
	}()
}

// UpdateTooltip changes the tooltip once the tray is running.
func UpdateTooltip(text string) {
	if ready.Load() {
		systray.SetTooltip(text)
	}
}

// SetAboutExtra shows extra resident information in the menu.
func SetAboutExtra(text string) {
	aboutMu.Lock()
	defer aboutMu.Unlock()
	aboutText = text
	if aboutItem != nil {
		aboutItem.SetTitle(aboutTitle(text))
	}
}

func aboutTitle(extra string) string {
	if extra == "" {
		return appTitle
	}
	return appTitle + " - " + extra
}

// MonitorLabels names each display of layout for the "Capture Monitor" submenu.
func MonitorLabels(layout compositor.Layout) []string {
	labels := make([]string, len(layout.Monitors))
	for i, d := range layout.Monitors {
		labels[i] = fmt.Sprintf("Monitor %d: %dx%d at (%d,%d)", i, d.Width, d.Height, d.X, d.Y)
		if d.ScaleFactor != 1 && d.ScaleFactor > 0 {
			labels[i] += fmt.Sprintf(" @%gx", d.ScaleFactor)
		}
	}
	return labels
}
