// Package hotkey turns a global key combination into a callback.
package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

type key struct {
	name     string
	rawcodes []uint16
}

// Combo is a parsed combination such as "Ctrl+Shift+S".
type Combo struct {
	text string
	keys []key
}

func (c Combo) String() string { return c.text }

// Keys returns the normalized key names.
func (c Combo) Keys() []string {
	names := make([]string, len(c.keys))
	for i, k := range c.keys {
		names[i] = k.name
	}
	return names
}

// Parse reads a "+"-separated combination. Every key must be known.
func Parse(text string) (Combo, error) {
	if strings.TrimSpace(text) == "" {
		return Combo{}, fmt.Errorf("empty hotkey")
	}
	c := Combo{text: text}
	for _, part := range strings.Split(text, "+") {
		name := normalizeKey(part)
		codes := keyRawcodes(name)
		if len(codes) == 0 {
			return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", text, strings.TrimSpace(part))
		}
		c.keys = append(c.keys, key{name: name, rawcodes: codes})
	}
	return c, nil
}

// matcher tracks which keys of a combo are held down.
type matcher struct {
	mu      sync.Mutex
	combo   Combo
	pressed []bool
}

func newMatcher(c Combo) *matcher {
	return &matcher{combo: c, pressed: make([]bool, len(c.keys))}
}

// down records a key press and reports whether the full combination is now held.
// A completed combination resets, so holding the keys fires once.
func (m *matcher) down(rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(rawcode, true)
	for _, p := range m.pressed {
		if !p {
			return false
		}
	}
	for i := range m.pressed {
		m.pressed[i] = false
	}
	return true
}

func (m *matcher) up(rawcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(rawcode, false)
}

func (m *matcher) set(rawcode uint16, v bool) {
	for i, k := range m.combo.keys {
		for _, rc := range k.rawcodes {
			if rc == rawcode {
				m.pressed[i] = v
			}
		}
	}
}

// Listen registers combo globally and invokes callback from the hook
// goroutine whenever it is pressed. The callback must not block.
func Listen(combo string, callback func()) error {
	c, err := Parse(combo)
	if err != nil {
		return err
	}
	m := newMatcher(c)
	log.Printf("Hotkey: listener configured for %s (%v)", c, c.Keys())

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Hotkey: PANIC in hook goroutine: %v", r)
			}
		}()
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("Hotkey: gohook.Start() returned nil channel")
			return
		}
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if m.down(ev.Rawcode) {
					log.Printf("Hotkey: %s activated", c)
					if callback != nil {
						callback()
					}
				}
			case gohook.KeyUp:
				m.up(ev.Rawcode)
			}
		}
		log.Printf("Hotkey: event channel closed")
	}()
	return nil
}

// Stop ends the global hook started by Listen.
func Stop() { gohook.End() }
