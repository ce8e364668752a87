// Package apktest builds package archive fixtures for tests.
package apktest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"unicode/utf16"
)

const androidNS = "http://schemas.android.com/apk/res/android"

var le = binary.LittleEndian

// Manifest returns a compiled AndroidManifest.xml with a UTF-8 string pool.
func Manifest(pkg string, versionCode int64, versionName string) []byte {
	return encodeManifest(pkg, versionCode, versionName, false)
}

// ManifestUTF16 is like Manifest but uses a UTF-16 string pool.
func ManifestUTF16(pkg string, versionCode int64, versionName string) []byte {
	return encodeManifest(pkg, versionCode, versionName, true)
}

func encodeManifest(pkg string, versionCode int64, versionName string, wide bool) []byte {
	strs := []string{"android", androidNS, "manifest", "package", "versionCode", "versionName", "versionCodeMajor", pkg, versionName}
	const (
		iPrefix = iota
		iNS
		iManifest
		iPackage
		iVersionCode
		iVersionName
		iVersionMajor
		iPkgValue
		iVersionNameValue
	)
	const none = 0xFFFFFFFF

	type attr struct {
		ns, name, raw uint32
		typ           uint8
		data          uint32
	}
	attrs := []attr{
		{none, iPackage, iPkgValue, 0x03, iPkgValue},
		{iNS, iVersionCode, none, 0x10, uint32(versionCode)},
		{iNS, iVersionName, iVersionNameValue, 0x03, iVersionNameValue},
	}
	if major := uint32(versionCode >> 32); major != 0 {
		attrs = append(attrs, attr{iNS, iVersionMajor, none, 0x10, major})
	}

	var body bytes.Buffer
	body.Write(stringPool(strs, wide))

	// Start namespace.
	ns := make([]byte, 24)
	le.PutUint16(ns[0:], 0x0100)
	le.PutUint16(ns[2:], 16)
	le.PutUint32(ns[4:], 24)
	le.PutUint32(ns[8:], 1)
	le.PutUint32(ns[12:], none)
	le.PutUint32(ns[16:], iPrefix)
	le.PutUint32(ns[20:], iNS)
	body.Write(ns)

	// Start element <manifest>.
	elem := make([]byte, 36+20*len(attrs))
	le.PutUint16(elem[0:], 0x0102)
	le.PutUint16(elem[2:], 16)
	le.PutUint32(elem[4:], uint32(len(elem)))
	le.PutUint32(elem[8:], 2)
	le.PutUint32(elem[12:], none)
	le.PutUint32(elem[16:], none)
	le.PutUint32(elem[20:], iManifest)
	le.PutUint16(elem[24:], 20)
	le.PutUint16(elem[26:], 20)
	le.PutUint16(elem[28:], uint16(len(attrs)))
	for i, a := range attrs {
		off := 36 + 20*i
		le.PutUint32(elem[off:], a.ns)
		le.PutUint32(elem[off+4:], a.name)
		le.PutUint32(elem[off+8:], a.raw)
		le.PutUint16(elem[off+12:], 8)
		elem[off+15] = a.typ
		le.PutUint32(elem[off+16:], a.data)
	}
	body.Write(elem)

	doc := make([]byte, 8, 8+body.Len())
	le.PutUint16(doc[0:], 0x0003)
	le.PutUint16(doc[2:], 8)
	le.PutUint32(doc[4:], uint32(8+body.Len()))
	return append(doc, body.Bytes()...)
}

func stringPool(strs []string, wide bool) []byte {
	var data bytes.Buffer
	offsets := make([]uint32, len(strs))
	for i, s := range strs {
		offsets[i] = uint32(data.Len())
		units := utf16.Encode([]rune(s))
		if wide {
			var b [2]byte
			le.PutUint16(b[:], uint16(len(units)))
			data.Write(b[:])
			for _, u := range units {
				le.PutUint16(b[:], u)
				data.Write(b[:])
			}
			data.Write([]byte{0, 0})
			continue
		}
		data.Write(len8(len(units)))
		data.Write(len8(len(s)))
		data.WriteString(s)
		data.WriteByte(0)
	}
	for data.Len()%4 != 0 {
		data.WriteByte(0)
	}

	const header = 28
	stringsStart := header + 4*len(strs)
	chunk := make([]byte, stringsStart, stringsStart+data.Len())
	le.PutUint16(chunk[0:], 0x0001)
	le.PutUint16(chunk[2:], header)
	le.PutUint32(chunk[4:], uint32(stringsStart+data.Len()))
	le.PutUint32(chunk[8:], uint32(len(strs)))
	if !wide {
		le.PutUint32(chunk[16:], 1<<8)
	}
	le.PutUint32(chunk[20:], uint32(stringsStart))
	for i, off := range offsets {
		le.PutUint32(chunk[header+4*i:], off)
	}
	return append(chunk, data.Bytes()...)
}

func len8(n int) []byte {
	if n > 0x7f {
		return []byte{byte(0x80 | n>>8), byte(n)}
	}
	return []byte{byte(n)}
}

// PNG returns a solid-color PNG image of the given size.
func PNG(t testing.TB, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes a zip archive containing entries to path and
// returns path. Entries are written in name order.
func WriteArchive(t testing.TB, path string, entries map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("failed to write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create archive dir: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return path
}

// App writes a minimal installable archive for pkg at path: a manifest and
// an xhdpi launcher icon of the given color.
func App(t testing.TB, path, pkg string, versionCode int64, c color.Color) string {
	t.Helper()
	return WriteArchive(t, path, map[string][]byte{
		"AndroidManifest.xml":                 Manifest(pkg, versionCode, "1.0"),
		"classes.dex":                         []byte("dex\n035\x00"),
		"res/mipmap-xhdpi-v4/ic_launcher.png": PNG(t, 96, 96, c),
		"res/mipmap-mdpi-v4/ic_launcher.png":  PNG(t, 48, 48, c),
	})
}
