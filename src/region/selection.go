package region

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindRegion Kind = iota
	KindMonitor
	KindFull
)

func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindMonitor:
		return "monitor"
	case KindFull:
		return "full"
	default:
		return "unknown"
	}
}

// Selection is what the interactive surface sends back: a canvas-local
// rectangle, a monitor index into the layout, or the whole canvas.
type Selection struct {
	Kind    Kind `json:"kind"`
	X       int  `json:"x,omitempty"`
	Y       int  `json:"y,omitempty"`
	W       int  `json:"w,omitempty"`
	H       int  `json:"h,omitempty"`
	Monitor int  `json:"monitor,omitempty"`
}

func Region(x, y, w, h int) Selection {
	return Selection{Kind: KindRegion, X: x, Y: y, W: w, H: h}
}

func Monitor(index int) Selection { return Selection{Kind: KindMonitor, Monitor: index} }

func Full() Selection { return Selection{Kind: KindFull} }

// String renders the text form accepted by ParseSelection.
func (s Selection) String() string {
	switch s.Kind {
	case KindRegion:
		return fmt.Sprintf("region:%d,%d,%d,%d", s.X, s.Y, s.W, s.H)
	case KindMonitor:
		return fmt.Sprintf("monitor:%d", s.Monitor)
	case KindFull:
		return "full"
	default:
		return "unknown"
	}
}

// ParseSelection reads "full", "monitor:N" or "region:X,Y,W,H".
func ParseSelection(text string) (Selection, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	kind, args, _ := strings.Cut(text, ":")
	switch kind {
	case "full", "all":
		if args != "" {
			return Selection{}, fmt.Errorf("selection %q: full takes no arguments", text)
		}
		return Full(), nil
	case "monitor", "display":
		n, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil {
			return Selection{}, fmt.Errorf("selection %q: bad monitor index: %w", text, err)
		}
		return Monitor(n), nil
	case "region", "rect":
		parts := strings.Split(args, ",")
		if len(parts) != 4 {
			return Selection{}, fmt.Errorf("selection %q: region needs x,y,w,h", text)
		}
		var v [4]int
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return Selection{}, fmt.Errorf("selection %q: bad number %q: %w", text, p, err)
			}
			v[i] = n
		}
		return Region(v[0], v[1], v[2], v[3]), nil
	default:
		return Selection{}, fmt.Errorf("selection %q: expected full, monitor:N or region:x,y,w,h", text)
	}
}
