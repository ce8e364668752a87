package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// encodeTestImage creates a solid image of the given color and returns it
// encoded as PNG.
func encodeTestImage(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodeTestImage(t, 40, 30, color.RGBA{255, 0, 0, 255})

	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != "png" {
		t.Errorf("format: got %s, want png", format)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("unexpected dimensions: got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, _, err := Decode(nil); err == nil {
		t.Error("Decode should fail on empty data")
	}
	if _, _, err := Decode([]byte("not an image")); err == nil {
		t.Error("Decode should fail on invalid image data")
	}
}

func TestDescribe(t *testing.T) {
	data := encodeTestImage(t, 200, 150, color.RGBA{255, 0, 0, 255})

	info, err := Describe(data)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.MIME != "image/png" {
		t.Errorf("MIME: got %s, want image/png", info.MIME)
	}
	if info.HasAlpha {
		t.Error("opaque image should not report alpha")
	}
	if info.SizeBytes != int64(len(data)) {
		t.Errorf("SizeBytes: got %d, want %d", info.SizeBytes, len(data))
	}
	if info.AverageColor != "#ff0000" {
		t.Errorf("AverageColor: got %s, want #ff0000", info.AverageColor)
	}
}

func TestDescribe_Alpha(t *testing.T) {
	data := encodeTestImage(t, 10, 10, color.NRGBA{0, 0, 255, 100})

	info, err := Describe(data)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !info.HasAlpha {
		t.Error("translucent image should report alpha")
	}
}

func TestDescribe_JPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	info, err := Describe(buf.Bytes())
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Format != "jpeg" || info.MIME != "image/jpeg" {
		t.Errorf("got format %s mime %s, want jpeg image/jpeg", info.Format, info.MIME)
	}
}

func TestIsImageMIME(t *testing.T) {
	tests := map[string]bool{
		"image/png":                 true,
		"image/webp":                true,
		"image/":                    false,
		"text/plain; charset=utf-8": false,
		"application/octet-stream":  false,
		"":                          false,
	}
	for mime, want := range tests {
		if got := IsImageMIME(mime); got != want {
			t.Errorf("IsImageMIME(%q): got %v, want %v", mime, got, want)
		}
	}
}
