// Package preprocess turns image source identifiers that a plain loader
// cannot read into locally readable resources.
//
// A Registry holds an ordered list of Preprocessors. For a given Source the
// first preprocessor whose Match returns true handles it; Resolve makes
// that decision exactly once and runs exactly one Process:
//
//	reg := preprocess.NewDefault(deps)
//	res, err := reg.Resolve(ctx, source.New(uri, nil))
//	switch {
//	case errors.Is(err, preprocess.ErrNoMatch):
//		// load uri normally
//	case err != nil:
//		// the matched preprocessor failed
//	default:
//		// read res.Path or res.Data
//	}
//
// Built-in preprocessors cover package archive icons (apk-icon), installed
// application icons (installed-app-icon) and inline base64 images
// (base64-image).
package preprocess
