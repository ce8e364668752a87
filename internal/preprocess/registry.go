package preprocess

import (
	"context"

	"github.com/ironsheep/image-preprocess-mcp/internal/logger"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

// Preprocessor converts one family of sources into a readable Result.
type Preprocessor interface {
	// Key is a stable identifier; a Registry holds at most one
	// preprocessor per key.
	Key() string

	// Match reports whether the preprocessor handles src. It must be
	// cheap and free of side effects.
	Match(src source.Source) bool

	// Process performs the transformation. It may do I/O.
	Process(ctx context.Context, src source.Source) (*Result, error)
}

// Registry dispatches sources to the first matching Preprocessor.
//
// Register and Insert are meant for setup time and are not synchronized;
// once configured, a Registry may be used for Matches, Lookup and Resolve
// from many goroutines.
type Registry struct {
	list []Preprocessor
	log  logger.Logger
}

// New returns an empty Registry. A nil log discards output.
func New(log logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{log: log.With("component", "preprocess")}
}

// Register appends p. It returns false, leaving the registry unchanged,
// if a preprocessor with p's key is already present.
func (r *Registry) Register(p Preprocessor) bool {
	return r.Insert(len(r.list), p)
}

// Insert places p at index, shifting later entries back. Index is clamped
// to [0, Len()]. It returns false if p's key is already present.
func (r *Registry) Insert(index int, p Preprocessor) bool {
	if p == nil || r.indexOf(p.Key()) >= 0 {
		return false
	}
	if index < 0 {
		index = 0
	}
	if index > len(r.list) {
		index = len(r.list)
	}
	r.list = append(r.list, nil)
	copy(r.list[index+1:], r.list[index:])
	r.list[index] = p
	r.log.Debug("preprocessor registered", "key", p.Key(), "index", index)
	return true
}

func (r *Registry) indexOf(key string) int {
	for i, p := range r.list {
		if p.Key() == key {
			return i
		}
	}
	return -1
}

// Len returns the number of registered preprocessors.
func (r *Registry) Len() int { return len(r.list) }

// Keys returns the registered keys in dispatch order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.list))
	for i, p := range r.list {
		keys[i] = p.Key()
	}
	return keys
}

// Matches reports whether any registered preprocessor handles src.
func (r *Registry) Matches(src source.Source) bool {
	_, ok := r.Lookup(src)
	return ok
}

// Lookup returns the first preprocessor, in registration order, whose
// Match accepts src.
func (r *Registry) Lookup(src source.Source) (Preprocessor, bool) {
	for _, p := range r.list {
		if p.Match(src) {
			return p, true
		}
	}
	return nil, false
}

// Resolve runs the first matching preprocessor on src.
//
// It returns ErrNoMatch when nothing matches. When the matched preprocessor
// fails the error is an *Error and later candidates are not tried.
func (r *Registry) Resolve(ctx context.Context, src source.Source) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, ok := r.Lookup(src)
	if !ok {
		return nil, ErrNoMatch
	}

	res, err := p.Process(ctx, src)
	if err == nil && res.empty() {
		err = ErrEmptyResult
	}
	if err != nil {
		r.log.Debug("preprocess failed", "key", p.Key(), "uri", src.URI, "err", err)
		return nil, &Error{Preprocessor: p.Key(), URI: src.URI, Err: err}
	}

	res.Preprocessor = p.Key()
	r.log.Debug("preprocessed", "key", p.Key(), "uri", src.URI, "from", res.From.String())
	return res, nil
}
