// Package iconcache stores normalized application icons keyed by package
// name and version code.
//
// Icons live in two tiers: an in-memory LRU of encoded PNG bytes and PNG
// artifacts on disk. Concurrent requests for the same key share a single
// extraction.
package iconcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/image-preprocess-mcp/internal/imaging"
	"github.com/ironsheep/image-preprocess-mcp/internal/logger"
)

// Key identifies one icon artifact: an application version rendered at a
// maximum edge. Edge 0 means the store's configured edge.
type Key struct {
	Package string
	Version int64
	Edge    int
}

func (k Key) String() string {
	s := k.Package + "@" + strconv.FormatInt(k.Version, 10)
	if k.Edge > 0 {
		s += "/" + strconv.Itoa(k.Edge)
	}
	return s
}

// FileName returns the artifact file name for k. Characters outside
// [A-Za-z0-9._-] are replaced so the name is safe on any filesystem; the
// edge follows an '@', which therefore never appears in the package part.
func (k Key) FileName() string {
	name := k.appFilePrefix()
	if k.Edge > 0 {
		name += "@" + strconv.Itoa(k.Edge)
	}
	return name + ".png"
}

func (k Key) appFilePrefix() string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, k.Package)
	return safe + "_" + strconv.FormatInt(k.Version, 10)
}

// Origin says where an Entry was found.
type Origin int

const (
	// OriginExtracted means the icon was extracted for this request.
	OriginExtracted Origin = iota
	// OriginMemory means the icon came from the in-memory LRU.
	OriginMemory
	// OriginDisk means the icon came from an existing disk artifact.
	OriginDisk
)

func (o Origin) String() string {
	switch o {
	case OriginMemory:
		return "memory"
	case OriginDisk:
		return "disk"
	default:
		return "extracted"
	}
}

// Entry is a cached icon.
type Entry struct {
	Key    Key
	Path   string // empty when the artifact is held in memory only
	Data   []byte
	Origin Origin
}

// ExtractFunc produces the raw (not yet normalized) icon bytes for a key.
type ExtractFunc func(ctx context.Context) ([]byte, error)

// GetOptions tune a single Get call.
type GetOptions struct {
	// MemoryOnly skips reading and writing disk artifacts.
	MemoryOnly bool
}

// Config configures a Store.
type Config struct {
	Dir           string // artifact directory; created on first write
	MemoryEntries int    // LRU capacity; must be positive
	MaxEdge       int    // maximum normalized edge in pixels; 0 keeps size
}

// Store is the icon cache. It is safe for concurrent use.
type Store struct {
	dir     string
	maxEdge int
	mem     *lru.Cache[Key, []byte]
	group   singleflight.Group
	log     logger.Logger
}

// New creates a Store.
func New(cfg Config, log logger.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("iconcache: directory is required")
	}
	mem, err := lru.New[Key, []byte](cfg.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("iconcache: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		dir:     cfg.Dir,
		maxEdge: cfg.MaxEdge,
		mem:     mem,
		log:     log.With("component", "iconcache"),
	}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the artifact path for k, whether or not it exists.
func (s *Store) Path(k Key) string {
	return filepath.Join(s.dir, s.resolve(k).FileName())
}

// resolve fills in the configured edge.
func (s *Store) resolve(k Key) Key {
	if k.Edge <= 0 {
		k.Edge = s.maxEdge
	}
	return k
}

// Get returns the icon for k, calling extract only when neither tier holds
// it. At most one extract call runs per key at a time; callers arriving
// while it runs wait for and share its result. A caller whose ctx is done
// stops waiting, but the extraction continues for the others.
func (s *Store) Get(ctx context.Context, k Key, opts GetOptions, extract ExtractFunc) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k = s.resolve(k)
	if e, ok := s.fromMemory(k, opts); ok {
		return e, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(k.String(), func() (any, error) {
		// Another flight may have finished between the check above and now.
		if e, ok := s.fromMemory(k, opts); ok {
			return e, nil
		}
		if !opts.MemoryOnly {
			if e, ok := s.fromDisk(k); ok {
				return e, nil
			}
		}
		return s.extract(flightCtx, k, opts, extract)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		s.log.Debug("shared icon extraction", "key", k.String())
	}

	e := *res.Val.(*Entry)
	if opts.MemoryOnly {
		e.Path = ""
	} else if e.Path == "" {
		// The flight leader asked for memory only.
		e.Path = s.ensureArtifact(k, e.Data)
	}
	return &e, nil
}

func (s *Store) fromMemory(k Key, opts GetOptions) (*Entry, bool) {
	data, ok := s.mem.Get(k)
	if !ok {
		return nil, false
	}
	e := &Entry{Key: k, Data: data, Origin: OriginMemory}
	if !opts.MemoryOnly {
		e.Path = s.ensureArtifact(k, data)
	}
	return e, true
}

// ensureArtifact returns the artifact path for k, writing data first when
// the artifact is missing. It returns "" if the artifact cannot be written.
func (s *Store) ensureArtifact(k Key, data []byte) string {
	path := s.Path(k)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	path, err := s.write(k, data)
	if err != nil {
		s.log.Warn("failed to store icon artifact", "key", k.String(), "err", err)
		return ""
	}
	return path
}

func (s *Store) fromDisk(k Key) (*Entry, bool) {
	path := s.Path(k)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("unreadable icon artifact", "path", path, "err", err)
		}
		return nil, false
	}
	s.mem.Add(k, data)
	return &Entry{Key: k, Path: path, Data: data, Origin: OriginDisk}, true
}

func (s *Store) extract(ctx context.Context, k Key, opts GetOptions, extract ExtractFunc) (*Entry, error) {
	raw, err := extract(ctx)
	if err != nil {
		return nil, err
	}

	data, err := imaging.Normalize(raw, k.Edge)
	if err != nil {
		return nil, fmt.Errorf("icon %s: %w", k, err)
	}

	e := &Entry{Key: k, Data: data, Origin: OriginExtracted}
	if !opts.MemoryOnly {
		path, err := s.write(k, data)
		if err != nil {
			return nil, err
		}
		e.Path = path
	}
	s.mem.Add(k, data)

	s.log.Debug("icon extracted", "key", k.String(), "bytes", len(data), "path", e.Path)
	return e, nil
}

// write stores data atomically: readers never observe a partial artifact.
func (s *Store) write(k Key, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".icon-*")
	if err != nil {
		return "", fmt.Errorf("failed to create artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	path := s.Path(k)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}
	return path, nil
}

// Evict removes every cached size of k's package version from both tiers.
// k.Edge is ignored.
func (s *Store) Evict(k Key) error {
	for _, mk := range s.mem.Keys() {
		if mk.Package == k.Package && mk.Version == k.Version {
			s.mem.Remove(mk)
		}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to list artifacts: %w", err)
	}
	prefix := k.appFilePrefix()
	for _, de := range entries {
		name := de.Name()
		if name != prefix+".png" && !(strings.HasPrefix(name, prefix+"@") && strings.HasSuffix(name, ".png")) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove artifact: %w", err)
		}
	}
	return nil
}

// PurgeMemory empties the in-memory tier; disk artifacts are kept.
func (s *Store) PurgeMemory() {
	s.mem.Purge()
}

// Len returns the number of icons held in memory.
func (s *Store) Len() int {
	return s.mem.Len()
}
