package pdf

import (
	"bytes"
	"image"
	"image/jpeg"
)

// encodeJPEG encodes one rendered page
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
