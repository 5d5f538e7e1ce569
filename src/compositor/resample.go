package compositor

import (
	"image"
	"strings"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Resampler scales a frame to an exact logical size.
type Resampler interface {
	Resample(src *image.RGBA, width, height int) *image.RGBA
}

type ResamplerFunc func(src *image.RGBA, width, height int) *image.RGBA

func (f ResamplerFunc) Resample(src *image.RGBA, width, height int) *image.RGBA {
	return f(src, width, height)
}

var (
	// Lanczos3 matches the quality of the original capture pipeline.
	Lanczos3 Resampler = ResamplerFunc(lanczos3)
	// CatmullRom is a faster bicubic alternative.
	CatmullRom Resampler = ResamplerFunc(catmullRom)
)

// ResamplerByName maps a config value to a resampler; unknown names get Lanczos3.
func ResamplerByName(name string) Resampler {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "catmullrom", "catmull-rom", "bicubic":
		return CatmullRom
	default:
		return Lanczos3
	}
}

func lanczos3(src *image.RGBA, width, height int) *image.RGBA {
	out := resize.Resize(uint(width), uint(height), src, resize.Lanczos3)
	if rgba, ok := out.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(dst, dst.Rect, out, out.Bounds().Min, xdraw.Src)
	return dst
}

func catmullRom(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return dst
}
