// Package imaging prepares captured images for display and recognition.
package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

const previewQuality = 85

// PreviewDataURL renders a thumbnail of an image as a JPEG data URL.
// PDFs and anything that is not an image have no preview and yield "".
func PreviewDataURL(data []byte, mimeType string) (string, error) {
	file := types.SelectedFile{MIMEType: mimeType}
	if file.MediaType() != types.ImageMediaType {
		return "", nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", utils.NewValidationError("failed to decode image", err)
	}

	img = applyOrientation(img, Orientation(data))
	img = fit(img, constants.PreviewMaxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: previewQuality}); err != nil {
		return "", utils.NewSystemError("failed to encode preview", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// NormalizeForOCR converts formats some engines cannot read (BMP, WebP)
// to PNG. Other payloads are returned unchanged.
func NormalizeForOCR(data []byte, mimeType string) ([]byte, error) {
	switch mimeType {
	case "image/bmp", "image/webp":
	default:
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, utils.NewValidationError("failed to decode image", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, utils.NewSystemError("failed to encode image", err)
	}
	return buf.Bytes(), nil
}

// Orientation returns the EXIF orientation tag, 1 when absent
func Orientation(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return 1
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 1
	}

	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if v, ok := entry.Value.([]uint16); ok && len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
			return int(v[0])
		}
	}
	return 1
}

// fit scales img down so its longer edge is at most maxEdge
func fit(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	if w >= h {
		h = h * maxEdge / w
		w = maxEdge
	} else {
		w = w * maxEdge / h
		h = maxEdge
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
