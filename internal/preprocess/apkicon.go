package preprocess

import (
	"context"
	"errors"
	"strings"

	"github.com/ironsheep/image-preprocess-mcp/internal/apk"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

// KeyAPKIcon is the key of the package archive icon preprocessor.
const KeyAPKIcon = "apk-icon"

// APKIcon resolves a local package archive path to its launcher icon.
type APKIcon struct {
	inspector ArchiveInspector
	cache     IconCache
}

// NewAPKIcon returns the package archive icon preprocessor. A nil inspector
// uses apk.Archive.
func NewAPKIcon(inspector ArchiveInspector, cache IconCache) *APKIcon {
	if inspector == nil {
		inspector = apk.Archive{}
	}
	return &APKIcon{inspector: inspector, cache: cache}
}

func (p *APKIcon) Key() string { return KeyAPKIcon }

// Match accepts file sources whose path ends in .apk.
func (p *APKIcon) Match(src source.Source) bool {
	return src.Scheme == source.SchemeFile && strings.HasSuffix(strings.ToLower(src.Content), ".apk")
}

// Process reads the archive manifest and returns the icon cached under its
// package name and version code.
func (p *APKIcon) Process(ctx context.Context, src source.Source) (*Result, error) {
	if p.cache == nil {
		return nil, errors.New("no icon cache configured")
	}
	m, err := p.inspector.Manifest(src.Content)
	if err != nil {
		return nil, err
	}
	return cachedIcon(ctx, p.cache, p.inspector, src.Content, m.Package, m.VersionCode, src.LoadOptions())
}
