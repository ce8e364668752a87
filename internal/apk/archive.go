package apk

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

const (
	manifestEntry = "AndroidManifest.xml"

	maxManifestSize = 4 << 20
	maxIconSize     = 8 << 20
)

// iconPattern matches launcher icon entries produced by aapt/aapt2.
var iconPattern = regexp.MustCompile(`^res/(?:mipmap|drawable)((?:-[a-z0-9]+)*)/(ic_launcher|ic_launcher_round|icon|app_icon)\.(?:png|webp)$`)

var densities = map[string]int{
	"ldpi":    120,
	"mdpi":    160,
	"tvdpi":   213,
	"hdpi":    240,
	"xhdpi":   320,
	"xxhdpi":  480,
	"xxxhdpi": 640,
}

var iconNameRank = map[string]int{
	"ic_launcher":       4,
	"icon":              3,
	"app_icon":          2,
	"ic_launcher_round": 1,
}

// Archive reads package archives from disk. The zero value is ready to use
// and safe for concurrent use.
type Archive struct{}

// Manifest returns the package identity of the archive at path.
func (Archive) Manifest(path string) (*Manifest, error) {
	zr, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	f := findEntry(&zr.Reader, manifestEntry)
	if f == nil {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotArchive, path, manifestEntry)
	}
	data, err := readEntry(f, maxManifestSize)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// IconEntry returns the name of the launcher icon entry that Icon would read.
func (Archive) IconEntry(path string) (string, error) {
	zr, err := openArchive(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	name, ok := SelectIcon(entryNames(&zr.Reader))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoIcon, path)
	}
	return name, nil
}

// Icon returns the encoded bytes of the archive's launcher icon.
func (Archive) Icon(path string) ([]byte, error) {
	zr, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	name, ok := SelectIcon(entryNames(&zr.Reader))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoIcon, path)
	}
	return readEntry(findEntry(&zr.Reader, name), maxIconSize)
}

// SelectIcon picks the launcher icon from a list of archive entry names.
//
// The highest screen density wins; entries without a density qualifier
// count as mdpi. Ties prefer ic_launcher, then icon, app_icon and
// ic_launcher_round, then the lexically smallest name.
func SelectIcon(names []string) (string, bool) {
	type candidate struct {
		name    string
		density int
		rank    int
	}
	var found []candidate
	for _, n := range names {
		m := iconPattern.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		found = append(found, candidate{name: n, density: density(m[1]), rank: iconNameRank[m[2]]})
	}
	if len(found) == 0 {
		return "", false
	}

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.density != b.density {
			return a.density > b.density
		}
		if a.rank != b.rank {
			return a.rank > b.rank
		}
		return a.name < b.name
	})
	return found[0].name, true
}

func density(qualifiers string) int {
	for _, q := range strings.Split(qualifiers, "-") {
		if d, ok := densities[q]; ok {
			return d
		}
	}
	return densities["mdpi"]
}

func openArchive(path string) (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotArchive, path, err)
	}
	return zr, nil
}

func entryNames(r *zip.Reader) []string {
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func findEntry(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%s: entry too large (%d bytes)", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: entry too large", f.Name)
	}
	return data, nil
}
