// Package source classifies image source identifiers.
//
// A source identifier is an opaque URI-like string. Classify maps it to a
// Scheme and the scheme-specific content that preprocessors interpret.
package source

import "strings"

// Scheme is the kind of an image source.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeNet
	SchemeFile
	SchemeContent
	SchemeAsset
	SchemeDrawable
	SchemeBase64
	SchemeInstalledApp
)

// URI prefixes recognized by Classify.
const (
	PrefixHTTP         = "http://"
	PrefixHTTPS        = "https://"
	PrefixFile         = "file://"
	PrefixContent      = "content://"
	PrefixAsset        = "asset://"
	PrefixDrawable     = "drawable://"
	PrefixBase64       = "data:image/"
	PrefixBase64Alt    = "data:img/"
	PrefixInstalledApp = "app.icon://"

	dataPrefix = "data:"
)

var schemeNames = map[Scheme]string{
	SchemeUnknown:      "unknown",
	SchemeNet:          "net",
	SchemeFile:         "file",
	SchemeContent:      "content",
	SchemeAsset:        "asset",
	SchemeDrawable:     "drawable",
	SchemeBase64:       "base64",
	SchemeInstalledApp: "installed_app",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseScheme is the inverse of Scheme.String.
func ParseScheme(name string) (Scheme, bool) {
	for s, n := range schemeNames {
		if n == name {
			return s, true
		}
	}
	return SchemeUnknown, false
}

// Classify returns the scheme of uri and its scheme-specific content.
//
// Prefixes are matched case-insensitively. The content is:
//   - net, content: the whole URI
//   - file: the path, with any file:// prefix removed
//   - asset, drawable, installed_app: everything after the prefix
//   - base64: everything after "data:", i.e. "<mediatype>[;params],<payload>"
//   - unknown: the whole URI
func Classify(uri string) (Scheme, string) {
	lower := strings.ToLower(uri)

	switch {
	case uri == "":
		return SchemeUnknown, ""
	case strings.HasPrefix(lower, PrefixHTTP), strings.HasPrefix(lower, PrefixHTTPS):
		return SchemeNet, uri
	case strings.HasPrefix(lower, PrefixFile):
		return SchemeFile, uri[len(PrefixFile):]
	case strings.HasPrefix(uri, "/"):
		return SchemeFile, uri
	case strings.HasPrefix(lower, PrefixContent):
		return SchemeContent, uri
	case strings.HasPrefix(lower, PrefixAsset):
		return SchemeAsset, uri[len(PrefixAsset):]
	case strings.HasPrefix(lower, PrefixDrawable):
		return SchemeDrawable, uri[len(PrefixDrawable):]
	case strings.HasPrefix(lower, PrefixBase64), strings.HasPrefix(lower, PrefixBase64Alt):
		return SchemeBase64, uri[len(dataPrefix):]
	case strings.HasPrefix(lower, PrefixInstalledApp):
		return SchemeInstalledApp, uri[len(PrefixInstalledApp):]
	}
	return SchemeUnknown, uri
}

// LoadOptions carries caller-specified options through preprocessing.
// Preprocessors read the fields they understand and ignore the rest.
type LoadOptions struct {
	// DisableDiskCache keeps extracted artifacts in memory only; results
	// then carry bytes instead of a filesystem path.
	DisableDiskCache bool

	// IconMaxSize overrides the configured maximum icon edge. Zero keeps
	// the configured value.
	IconMaxSize int

	// Extras is free-form data for custom preprocessors.
	Extras map[string]string
}

// Source describes one image request. It is not modified during resolution.
type Source struct {
	URI     string
	Scheme  Scheme
	Content string
	Options *LoadOptions
}

// New classifies uri into a Source.
func New(uri string, opts *LoadOptions) Source {
	scheme, content := Classify(uri)
	return Source{
		URI:     uri,
		Scheme:  scheme,
		Content: content,
		Options: opts,
	}
}

// LoadOptions returns the options, or the zero value when none were given.
func (s Source) LoadOptions() LoadOptions {
	if s.Options == nil {
		return LoadOptions{}
	}
	return *s.Options
}
