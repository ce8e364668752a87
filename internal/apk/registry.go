package apk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ironsheep/image-preprocess-mcp/internal/logger"
)

// InstalledApp is one entry of an application registry.
type InstalledApp struct {
	Package     string `json:"package"`
	VersionCode int64  `json:"version_code"`
	VersionName string `json:"version_name,omitempty"`
	ArchivePath string `json:"archive_path"`
}

// ManifestReader reads the manifest of an archive on disk. Archive
// implements it.
type ManifestReader interface {
	Manifest(path string) (*Manifest, error)
}

// DirRegistry is an application registry backed by a directory tree of
// installed archives, laid out like /data/app (one or more .apk files per
// package, at any depth).
//
// The index is built on the first Lookup and rebuilt whenever it has been
// marked stale by Invalidate or Watch. DirRegistry is safe for concurrent use.
type DirRegistry struct {
	dir    string
	reader ManifestReader
	log    logger.Logger

	mu    sync.RWMutex
	apps  map[string]InstalledApp
	stale bool
	gen   uint64 // bumped by Invalidate
}

// NewDirRegistry creates a registry over dir. A nil reader uses Archive.
func NewDirRegistry(dir string, reader ManifestReader, log logger.Logger) *DirRegistry {
	if reader == nil {
		reader = Archive{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DirRegistry{
		dir:    dir,
		reader: reader,
		log:    log.With("component", "app-registry"),
		stale:  true,
	}
}

// Dir returns the scanned directory.
func (r *DirRegistry) Dir() string { return r.dir }

// Lookup returns the installed application with the given package name.
// It returns an error wrapping ErrAppNotFound if no archive declares it.
func (r *DirRegistry) Lookup(ctx context.Context, pkg string) (*InstalledApp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	stale := r.stale
	app, ok := r.apps[pkg]
	r.mu.RUnlock()

	if stale {
		if err := r.Refresh(ctx); err != nil {
			return nil, err
		}
		r.mu.RLock()
		app, ok = r.apps[pkg]
		r.mu.RUnlock()
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppNotFound, pkg)
	}
	return &app, nil
}

// Apps returns the indexed applications sorted by package name.
func (r *DirRegistry) Apps(ctx context.Context) ([]InstalledApp, error) {
	r.mu.RLock()
	stale := r.stale
	r.mu.RUnlock()
	if stale {
		if err := r.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]InstalledApp, 0, len(r.apps))
	for _, app := range r.apps {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out, nil
}

// Refresh rescans the directory and replaces the index. An Invalidate that
// arrives while the scan runs leaves the index stale.
func (r *DirRegistry) Refresh(ctx context.Context) error {
	r.mu.RLock()
	gen := r.gen
	r.mu.RUnlock()

	apps, err := r.scan(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.apps = apps
	if r.gen == gen {
		r.stale = false
	}
	r.mu.Unlock()

	r.log.Debug("app registry scanned", "dir", r.dir, "apps", len(apps))
	return nil
}

// Invalidate marks the index stale so the next Lookup rescans.
func (r *DirRegistry) Invalidate() {
	r.mu.Lock()
	r.stale = true
	r.gen++
	r.mu.Unlock()
}

func (r *DirRegistry) scan(ctx context.Context) (map[string]InstalledApp, error) {
	apps := make(map[string]InstalledApp)

	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".apk") {
			return nil
		}

		m, err := r.reader.Manifest(path)
		if err != nil {
			r.log.Warn("skipping unreadable archive", "path", path, "err", err)
			return nil
		}
		if prev, ok := apps[m.Package]; ok && prev.VersionCode >= m.VersionCode {
			return nil
		}
		apps[m.Package] = InstalledApp{
			Package:     m.Package,
			VersionCode: m.VersionCode,
			VersionName: m.VersionName,
			ArchivePath: path,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", r.dir, err)
	}
	return apps, nil
}

// Watch invalidates the index whenever the directory tree changes. It
// blocks until ctx is done or the watcher fails to start.
func (r *DirRegistry) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := r.watchTree(w, r.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// fsnotify is not recursive; follow new package directories.
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := r.watchTree(w, ev.Name); err != nil {
						r.log.Warn("failed to watch new directory", "path", ev.Name, "err", err)
					}
				}
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Write) {
				r.log.Debug("app directory changed", "path", ev.Name, "op", ev.Op.String())
				r.Invalidate()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher error", "err", err)
		}
	}
}

func (r *DirRegistry) watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}
