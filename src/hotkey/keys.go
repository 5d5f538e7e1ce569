package hotkey

import (
	"fmt"
	"strings"
)

// Windows virtual key codes as reported in gohook's Rawcode.
var rawcodes = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"esc":       {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"insert":    {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pagedown":  {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},

	"printscreen": {44}, // VK_SNAPSHOT
}

var aliases = map[string]string{
	"control": "ctrl",
	"option":  "alt",
	"win":     "cmd",
	"super":   "cmd",
	"meta":    "cmd",
	"return":  "enter",
	"escape":  "esc",
	"del":     "delete",
	"ins":     "insert",
	"pgup":    "pageup",
	"pgdn":    "pagedown",
	"prtsc":   "printscreen",
	"print":   "printscreen",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		rawcodes[string(c)] = []uint16{uint16(c - 'a' + 65)}
	}
	for d := 0; d <= 9; d++ {
		rawcodes[fmt.Sprint(d)] = []uint16{uint16(48 + d)}
	}
	for f := 1; f <= 24; f++ {
		rawcodes[fmt.Sprintf("f%d", f)] = []uint16{uint16(111 + f)}
	}
}

// normalizeKey lowercases a key name and resolves aliases.
func normalizeKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// keyRawcodes returns the rawcodes for a key name, or nil when unknown.
// Modifiers map to both their left and right variants.
func keyRawcodes(name string) []uint16 {
	return rawcodes[normalizeKey(name)]
}
