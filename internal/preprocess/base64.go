package preprocess

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/image-preprocess-mcp/internal/imaging"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

// KeyBase64Image is the key of the inline base64 image preprocessor.
const KeyBase64Image = "base64-image"

// Base64Image decodes data:image/...;base64,<payload> sources in memory.
type Base64Image struct{}

func (Base64Image) Key() string { return KeyBase64Image }

func (Base64Image) Match(src source.Source) bool {
	return src.Scheme == source.SchemeBase64
}

// Process decodes the payload. The result carries the bytes and the
// sniffed MIME type; nothing touches the filesystem.
func (Base64Image) Process(ctx context.Context, src source.Source) (*Result, error) {
	header, payload, ok := strings.Cut(src.Content, ",")
	if !ok || !hasBase64Param(header) {
		return nil, ErrNotBase64
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotBase64, err)
	}

	mime := imaging.DetectMIME(data)
	if !imaging.IsImageMIME(mime) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return &Result{Data: data, MIME: mime, From: FromMemory}, nil
}

// hasBase64Param reports whether the media type parameters in header
// include "base64".
func hasBase64Param(header string) bool {
	params := strings.Split(header, ";")
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			return true
		}
	}
	return false
}

// decodeBase64 accepts the standard and URL-safe alphabets, with or
// without padding. ASCII whitespace is ignored.
func decodeBase64(payload string) ([]byte, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return -1
		}
		return r
	}, payload)
	s = strings.TrimRight(s, "=")
	if s == "" {
		return nil, errors.New("empty payload")
	}

	enc := base64.RawStdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.RawURLEncoding
	}
	return enc.DecodeString(s)
}
