package imaging

import (
	"image"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of opaque pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
	HSL        HSLColor `json:"hsl"`        // HSL representation
}

// minAlpha is the 16-bit alpha below which a pixel is treated as background.
const minAlpha = 0x8000

// AverageColor returns the mean color of the mostly-opaque pixels of img,
// averaged in CIE L*a*b* space, as "#rrggbb". Fully transparent images
// yield the empty string.
func AverageColor(img image.Image) string {
	bounds := img.Bounds()
	var sl, sa, sb float64
	n := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a < minAlpha {
				continue
			}
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, ca, cb := c.Lab()
			sl += l
			sa += ca
			sb += cb
			n++
		}
	}
	if n == 0 {
		return ""
	}

	f := float64(n)
	return colorful.Lab(sl/f, sa/f, sb/f).Clamped().Hex()
}

// DominantColors extracts the count most common colors of img.
//
// RGB components are quantized to multiples of 16 so that near-identical
// shades are grouped, and pixels that are mostly transparent are ignored.
// Colors are sorted by frequency, most common first.
func DominantColors(img image.Image, count int) []ColorFrequency {
	bounds := img.Bounds()
	counts := make(map[RGBColor]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a < minAlpha {
				continue
			}
			// Un-premultiply before quantizing.
			r, g, b = r*0xffff/a, g*0xffff/a, b*0xffff/a
			key := RGBColor{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
			}
			counts[key]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for rgb, cnt := range counts {
		c := colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
		h, s, l := c.Hsl()
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(cnt) / float64(total) * 100,
			RGB:        rgb,
			HSL:        HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count > 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors
}
