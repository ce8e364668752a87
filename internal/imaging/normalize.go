package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Normalize decodes an icon in any registered format, scales it down to fit
// within maxEdge x maxEdge (never up), and re-encodes it as PNG.
//
// A maxEdge of zero or less keeps the original dimensions. EXIF orientation
// is applied for JPEG input.
func Normalize(data []byte, maxEdge int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon: %w", err)
	}

	var out image.Image = img
	b := img.Bounds()
	if maxEdge > 0 && (b.Dx() > maxEdge || b.Dy() > maxEdge) {
		out = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
