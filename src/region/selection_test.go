package region

import (
	"testing"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    Selection
		wantErr bool
	}{
		{in: "full", want: Full()},
		{in: " FULL ", want: Full()},
		{in: "monitor:1", want: Monitor(1)},
		{in: "display: 0", want: Monitor(0)},
		{in: "region:10,20,300,400", want: Region(10, 20, 300, 400)},
		{in: "rect: 1, 2, 3, 4", want: Region(1, 2, 3, 4)},
		{in: "monitor:x", wantErr: true},
		{in: "region:1,2,3", wantErr: true},
		{in: "full:1", wantErr: true},
		{in: "window", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelection(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSelection(%q) = %v, expected error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelection(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSelection(%q) = %+v, expected %+v", tt.in, got, tt.want)
			}
			if again, err := ParseSelection(got.String()); err != nil || again != got {
				t.Errorf("String() form %q did not parse back: %+v, %v", got.String(), again, err)
			}
		})
	}
}
