//go:build !windows

package display

import "image"

// EnableDPIAwareness is a no-op outside Windows.
func EnableDPIAwareness() {}

// The capture backends report bounds and frames in the same pixel space here;
// any HiDPI mismatch is picked up by the compositor from the frame size.
func platformScale(image.Rectangle) float64 { return 1 }
