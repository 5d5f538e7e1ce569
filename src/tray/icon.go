package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"

	xdraw "golang.org/x/image/draw"
)

const iconSize = 32

var (
	frameColor = color.RGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	lensColor  = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// iconImage draws a dashed selection frame around a camera lens.
func iconImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	for i := 2; i < iconSize-2; i++ {
		if (i/3)%2 == 0 {
			for _, p := range []image.Point{{i, 2}, {i, iconSize - 3}, {2, i}, {iconSize - 3, i}} {
				img.SetRGBA(p.X, p.Y, frameColor)
			}
		}
	}
	body := image.Rect(8, 11, iconSize-8, iconSize-9)
	xdraw.Draw(img, body, image.NewUniform(lensColor), image.Point{}, xdraw.Src)
	c := iconSize / 2
	for y := body.Min.Y; y < body.Max.Y; y++ {
		for x := body.Min.X; x < body.Max.X; x++ {
			dx, dy := x-c, y-c
			if dx*dx+dy*dy <= 9 {
				img.SetRGBA(x, y, frameColor)
			}
		}
	}
	return img
}

func iconPNG() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, iconImage())
	return buf.Bytes()
}

// wrapICO embeds a PNG in a single-image ICO container.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16
	}{0, 1, 1})
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved byte
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{dim, dim, 0, 0, 1, 32, uint32(len(pngData)), 6 + 16})
	buf.Write(pngData)
	return buf.Bytes()
}

// Icon returns the tray icon in the format systray expects on this OS.
func Icon() []byte {
	data := iconPNG()
	if runtime.GOOS == "windows" {
		return wrapICO(data, iconSize)
	}
	return data
}
