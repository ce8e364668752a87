package preprocess

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ironsheep/image-preprocess-mcp/internal/apk"
	"github.com/ironsheep/image-preprocess-mcp/internal/logger"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

// KeyInstalledAppIcon is the key of the installed application icon
// preprocessor.
const KeyInstalledAppIcon = "installed-app-icon"

// AppLookup finds installed applications. *apk.DirRegistry implements it.
type AppLookup interface {
	Lookup(ctx context.Context, pkg string) (*apk.InstalledApp, error)
}

// InstalledAppIcon resolves app.icon://<package>[?versionCode=N] to the
// launcher icon of the installed application.
type InstalledAppIcon struct {
	apps      AppLookup
	inspector ArchiveInspector
	cache     IconCache
	log       logger.Logger
}

// NewInstalledAppIcon returns the installed application icon preprocessor.
// A nil inspector uses apk.Archive.
func NewInstalledAppIcon(apps AppLookup, inspector ArchiveInspector, cache IconCache, log logger.Logger) *InstalledAppIcon {
	if inspector == nil {
		inspector = apk.Archive{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InstalledAppIcon{
		apps:      apps,
		inspector: inspector,
		cache:     cache,
		log:       log.With("preprocessor", KeyInstalledAppIcon),
	}
}

func (p *InstalledAppIcon) Key() string { return KeyInstalledAppIcon }

func (p *InstalledAppIcon) Match(src source.Source) bool {
	return src.Scheme == source.SchemeInstalledApp
}

// Process looks the package up and returns its icon. The installed version
// always wins over a requested versionCode.
func (p *InstalledAppIcon) Process(ctx context.Context, src source.Source) (*Result, error) {
	pkg, wantVersion, err := parseAppIcon(src.Content)
	if err != nil {
		return nil, err
	}
	if p.apps == nil {
		return nil, fmt.Errorf("%w: %s (no application registry)", apk.ErrAppNotFound, pkg)
	}
	if p.cache == nil {
		return nil, errors.New("no icon cache configured")
	}

	app, err := p.apps.Lookup(ctx, pkg)
	if err != nil {
		return nil, err
	}
	if wantVersion >= 0 && wantVersion != app.VersionCode {
		p.log.Warn("requested version is not installed",
			"package", pkg, "requested", wantVersion, "installed", app.VersionCode)
	}
	return cachedIcon(ctx, p.cache, p.inspector, app.ArchivePath, app.Package, app.VersionCode, src.LoadOptions())
}

// parseAppIcon splits "<package>[?versionCode=N]". The version is -1 when
// absent.
func parseAppIcon(content string) (string, int64, error) {
	pkg, rawQuery, _ := strings.Cut(content, "?")
	pkg = strings.TrimSuffix(pkg, "/")
	if pkg == "" {
		return "", 0, errors.New("missing package name")
	}

	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", 0, fmt.Errorf("invalid query %q: %w", rawQuery, err)
	}
	v := q.Get("versionCode")
	if v == "" {
		return pkg, -1, nil
	}
	version, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid versionCode %q: %w", v, err)
	}
	return pkg, version, nil
}
