package preprocess

import (
	"github.com/ironsheep/image-preprocess-mcp/internal/logger"
)

// Deps are the collaborators of the built-in preprocessors.
type Deps struct {
	// Inspector reads package archives; nil uses apk.Archive.
	Inspector ArchiveInspector

	// Cache stores extracted icons. Icon preprocessors fail without one.
	Cache IconCache

	// Apps finds installed applications; nil makes every app.icon://
	// source fail with apk.ErrAppNotFound.
	Apps AppLookup

	Log logger.Logger
}

// NewDefault returns a Registry with the built-in preprocessors in
// dispatch order: package archive icon, installed application icon,
// inline base64 image.
func NewDefault(d Deps) *Registry {
	r := New(d.Log)
	r.Register(NewAPKIcon(d.Inspector, d.Cache))
	r.Register(NewInstalledAppIcon(d.Apps, d.Inspector, d.Cache, d.Log))
	r.Register(Base64Image{})
	return r
}
