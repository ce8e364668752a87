package imaging

import (
	"image/color"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxEdge       int
		wantW, wantH  int
	}{
		{"downscale square", 400, 400, 192, 192, 192},
		{"downscale keeps aspect", 400, 200, 100, 100, 50},
		{"small icon not upscaled", 48, 48, 192, 48, 48},
		{"zero max keeps size", 300, 120, 0, 300, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := encodeTestImage(t, tt.width, tt.height, color.RGBA{0, 128, 0, 255})

			out, err := Normalize(src, tt.maxEdge)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}

			img, format, err := Decode(out)
			if err != nil {
				t.Fatalf("normalized output does not decode: %v", err)
			}
			if format != "png" {
				t.Errorf("format: got %s, want png", format)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	if _, err := Normalize([]byte("garbage"), 64); err == nil {
		t.Error("Normalize should fail on invalid data")
	}
}
