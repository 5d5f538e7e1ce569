package output

import (
	"encoding/base64"
	"image"
)

const dataURIPrefix = "data:image/png;base64,"

// EncodePreview renders img as a PNG data URI for the selection surface.
// It is used once per session and never for the final output.
func EncodePreview(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}
