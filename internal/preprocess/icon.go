package preprocess

import (
	"context"

	"github.com/ironsheep/image-preprocess-mcp/internal/apk"
	"github.com/ironsheep/image-preprocess-mcp/internal/iconcache"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

// ArchiveInspector reads package archives. apk.Archive implements it.
type ArchiveInspector interface {
	Manifest(path string) (*apk.Manifest, error)
	Icon(path string) ([]byte, error)
}

// IconCache stores extracted icons. *iconcache.Store implements it.
type IconCache interface {
	Get(ctx context.Context, k iconcache.Key, opts iconcache.GetOptions, extract iconcache.ExtractFunc) (*iconcache.Entry, error)
}

// cachedIcon returns the icon of the archive at path through cache, keyed
// by pkg, version and the requested edge. The archive is only opened on a
// cache miss.
func cachedIcon(ctx context.Context, cache IconCache, inspector ArchiveInspector, path, pkg string, version int64, opts source.LoadOptions) (*Result, error) {
	app := iconcache.Key{Package: pkg, Version: version}
	k := app
	k.Edge = opts.IconMaxSize
	e, err := cache.Get(ctx, k, iconcache.GetOptions{
		MemoryOnly: opts.DisableDiskCache,
	}, func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return inspector.Icon(path)
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path: e.Path,
		MIME: "image/png",
		From: fromCacheOrigin(e.Origin),
		Key:  app.String(),
	}
	if res.Path == "" {
		res.Data = e.Data
	}
	return res, nil
}

func fromCacheOrigin(o iconcache.Origin) Origin {
	switch o {
	case iconcache.OriginMemory:
		return FromMemoryCache
	case iconcache.OriginDisk:
		return FromDiskCache
	default:
		return FromLocal
	}
}
