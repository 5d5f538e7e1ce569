package hotkey

import (
	"reflect"
	"testing"
)

func TestKeyRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"Control", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"super", []uint16{91, 92}},
		{"a", []uint16{65}},
		{"S", []uint16{83}},
		{"z", []uint16{90}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},
		{"PrtSc", []uint16{44}},
		{"escape", []uint16{27}},
		{"unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			if got := keyRawcodes(tt.keyName); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("keyRawcodes(%q) = %v, expected %v", tt.keyName, got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
		wantErr  bool
	}{
		{"Ctrl+Shift+S", []string{"ctrl", "shift", "s"}, false},
		{"Ctrl+alt+e", []string{"ctrl", "alt", "e"}, false},
		{"Alt+F4", []string{"alt", "f4"}, false},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}, false},
		{" Super + PrintScreen ", []string{"cmd", "printscreen"}, false},
		{"Ctrl+Hyper", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(c.Keys(), tt.expected) {
				t.Errorf("Parse(%q) = %v, expected %v", tt.input, c.Keys(), tt.expected)
			}
		})
	}
}

func TestMatcher(t *testing.T) {
	c, err := Parse("Ctrl+Shift+S")
	if err != nil {
		t.Fatal(err)
	}
	m := newMatcher(c)

	if m.down(162) || m.down(161) {
		t.Fatal("fired before the combination was complete")
	}
	if !m.down(83) {
		t.Fatal("expected combination to fire")
	}
	// Reset after firing: pressing S again alone must not fire.
	if m.down(83) {
		t.Fatal("fired again without modifiers")
	}

	m.down(163)
	m.down(160)
	m.up(160)
	if m.down(83) {
		t.Fatal("fired after shift was released")
	}
}
