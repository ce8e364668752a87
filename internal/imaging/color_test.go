package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestAverageColor(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want string
	}{
		{"red", color.RGBA{255, 0, 0, 255}, "#ff0000"},
		{"white", color.White, "#ffffff"},
		{"black", color.Black, "#000000"},
		{"transparent", color.NRGBA{255, 0, 0, 0}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
			for y := 0; y < 10; y++ {
				for x := 0; x < 10; x++ {
					img.Set(x, y, tt.c)
				}
			}
			if got := AverageColor(img); got != tt.want {
				t.Errorf("AverageColor: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAverageColor_IgnoresTransparentPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				img.Set(x, y, color.NRGBA{0, 0, 255, 255})
			}
		}
	}
	if got := AverageColor(img); got != "#0000ff" {
		t.Errorf("AverageColor: got %q, want #0000ff", got)
	}
}

func TestDominantColors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			switch {
			case x < 6:
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			case x < 9:
				img.Set(x, y, color.RGBA{0, 255, 0, 255})
			default:
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}

	colors := DominantColors(img, 2)
	if len(colors) != 2 {
		t.Fatalf("expected 2 colors, got %d", len(colors))
	}
	if colors[0].Percentage != 60 {
		t.Errorf("first color percentage: got %.1f, want 60", colors[0].Percentage)
	}
	if colors[0].RGB.R != 240 || colors[0].RGB.G != 0 {
		t.Errorf("first color should be quantized red, got %+v", colors[0].RGB)
	}
	if colors[0].HSL.H != 0 || colors[0].HSL.S != 100 {
		t.Errorf("first color HSL: got %+v", colors[0].HSL)
	}
	if colors[1].Percentage != 30 {
		t.Errorf("second color percentage: got %.1f, want 30", colors[1].Percentage)
	}
}

func TestDominantColors_AllTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if colors := DominantColors(img, 5); len(colors) != 0 {
		t.Errorf("expected no colors for transparent image, got %d", len(colors))
	}
}
