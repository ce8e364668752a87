package preprocess

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Origin says where the bytes of a Result came from.
type Origin int

const (
	// FromLocal means the resource was produced locally for this request.
	FromLocal Origin = iota
	// FromDiskCache means an existing on-disk artifact was reused.
	FromDiskCache
	// FromMemoryCache means an in-memory cached artifact was reused.
	FromMemoryCache
	// FromMemory means the resource was decoded in memory and never stored.
	FromMemory
)

func (o Origin) String() string {
	switch o {
	case FromDiskCache:
		return "disk_cache"
	case FromMemoryCache:
		return "memory_cache"
	case FromMemory:
		return "memory"
	default:
		return "local"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is a normalized, locally readable resource. At least one of Path
// and Data is set.
type Result struct {
	Path string `json:"path,omitempty"`
	Data []byte `json:"-"`
	MIME string `json:"mime,omitempty"`
	From Origin `json:"from"`

	// Preprocessor is the key of the preprocessor that produced the
	// result. Registry.Resolve sets it.
	Preprocessor string `json:"preprocessor,omitempty"`

	// Key identifies the artifact for callers that cache results, for
	// example "com.example.app@3". Empty for inline payloads.
	Key string `json:"key,omitempty"`
}

// Open returns a reader over the resource, preferring in-memory data.
func (r *Result) Open() (io.ReadCloser, error) {
	switch {
	case len(r.Data) > 0:
		return io.NopCloser(bytes.NewReader(r.Data)), nil
	case r.Path != "":
		return os.Open(r.Path)
	}
	return nil, errors.New("result has neither data nor path")
}

// Size returns the resource length in bytes, or -1 if it cannot be known.
func (r *Result) Size() int64 {
	if len(r.Data) > 0 {
		return int64(len(r.Data))
	}
	if r.Path != "" {
		if fi, err := os.Stat(r.Path); err == nil {
			return fi.Size()
		}
	}
	return -1
}

func (r *Result) empty() bool {
	return r == nil || (r.Path == "" && len(r.Data) == 0)
}
