package preprocess

import (
	"context"
	"encoding/base64"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/ironsheep/image-preprocess-mcp/internal/apk/apktest"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

func TestBase64Image_Process(t *testing.T) {
	icon := apktest.PNG(t, 4, 4, color.RGBA{0, 255, 0, 255})
	std := base64.StdEncoding.EncodeToString(icon)
	raw := base64.RawStdEncoding.EncodeToString(icon)
	urlSafe := base64.RawURLEncoding.EncodeToString(icon)

	wrapped := ""
	for i := 0; i < len(std); i += 16 {
		end := i + 16
		if end > len(std) {
			end = len(std)
		}
		wrapped += std[i:end] + "\r\n"
	}

	tests := []struct {
		name string
		uri  string
	}{
		{"padded", "data:image/png;base64," + std},
		{"unpadded", "data:image/png;base64," + raw},
		{"url safe", "data:image/png;base64," + urlSafe},
		{"line wrapped", "data:image/png;base64," + wrapped},
		{"img alias", "data:img/png;base64," + std},
		{"declared type ignored", "data:image/jpeg;base64," + std},
		{"extra params", "data:image/png;name=icon.png;BASE64," + std},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := source.New(tt.uri, nil)
			p := Base64Image{}
			if !p.Match(src) {
				t.Fatal("Match should accept inline payloads")
			}

			res, err := p.Process(context.Background(), src)
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			if string(res.Data) != string(icon) {
				t.Error("decoded data differs from the original")
			}
			if res.MIME != "image/png" {
				t.Errorf("MIME: got %s, want image/png", res.MIME)
			}
			if res.From != FromMemory || res.Path != "" {
				t.Errorf("inline result should be memory only: %+v", res)
			}
		})
	}
}

func TestBase64Image_Errors(t *testing.T) {
	text := base64.StdEncoding.EncodeToString([]byte("hello, world"))

	tests := []struct {
		name string
		uri  string
		want error
	}{
		{"no comma", "data:image/png;base64", ErrNotBase64},
		{"not base64 encoded", "data:image/png,rawbytes", ErrNotBase64},
		{"invalid characters", "data:image/png;base64,@@@@", ErrNotBase64},
		{"empty payload", "data:image/png;base64,", ErrNotBase64},
		{"not an image", "data:image/png;base64," + text, ErrNotImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Base64Image{}.Process(context.Background(), source.New(tt.uri, nil))
			if !errors.Is(err, tt.want) {
				t.Errorf("Process: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBase64Image_Match(t *testing.T) {
	p := Base64Image{}
	for _, uri := range []string{"data:text/plain;base64,aGk=", "/tmp/a.png", "https://x/y.png"} {
		if p.Match(source.New(uri, nil)) {
			t.Errorf("Match(%q) should be false", uri)
		}
	}
	if !p.Match(source.New(strings.ToUpper("data:image/png;base64,"), nil)) {
		t.Error("Match should ignore prefix case")
	}
}
