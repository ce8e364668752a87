package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageInfo contains metadata about an encoded image resource.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that accepted the data: "png", "jpeg", "gif",
	// "webp" or "bmp".
	Format string `json:"format"`

	// MIME is the sniffed media type of the encoded bytes.
	MIME string `json:"mime"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha reports whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the length of the encoded data.
	SizeBytes int64 `json:"size_bytes"`

	// AverageColor is the mean color of the opaque pixels as "#RRGGBB".
	AverageColor string `json:"average_color"`
}

// Decode decodes data with any registered image decoder and returns the
// image together with the decoder's format name.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("failed to decode image: empty data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DetectMIME sniffs the media type of encoded bytes.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsImageMIME reports whether mime names an image media type.
func IsImageMIME(mime string) bool {
	return len(mime) > len("image/") && mime[:len("image/")] == "image/"
}

// Describe decodes data and returns its metadata.
func Describe(data []byte) (*ImageInfo, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()

	hasAlpha := false
	if o, ok := img.(interface{ Opaque() bool }); ok {
		hasAlpha = !o.Opaque()
	}
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		Format:       format,
		MIME:         DetectMIME(data),
		ColorDepth:   colorDepth,
		HasAlpha:     hasAlpha,
		SizeBytes:    int64(len(data)),
		AverageColor: AverageColor(img),
	}, nil
}
