package main

import (
	"image"
	"io"

	"github.com/sprintrstudio/openCap/src/output"
)

func writePNG(w io.Writer, img image.Image) error {
	data, err := output.EncodePNG(img)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
