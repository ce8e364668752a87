package apk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
)

// Binary XML chunk types.
const (
	chunkStringPool   = 0x0001
	chunkXML          = 0x0003
	chunkStartElement = 0x0102

	chunkHeaderSize = 8
	poolHeaderSize  = 28
	attrMinSize     = 20

	poolUTF8Flag = 1 << 8
	noIndex      = 0xFFFFFFFF

	valueString = 0x03
	valueIntDec = 0x10
	valueIntHex = 0x11
)

var le = binary.LittleEndian

// Manifest holds the package identity read from AndroidManifest.xml.
type Manifest struct {
	Package     string `json:"package"`
	VersionCode int64  `json:"version_code"`
	VersionName string `json:"version_name,omitempty"`
}

type attribute struct {
	name     string
	raw      string
	dataType uint8
	data     uint32
}

func (a attribute) stringValue(pool []string) string {
	if a.dataType == valueString {
		if s, ok := poolString(pool, a.data); ok {
			return s
		}
	}
	return a.raw
}

// ParseManifest decodes the compiled binary form of AndroidManifest.xml and
// returns the attributes of its root <manifest> element.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) < chunkHeaderSize || le.Uint16(data) != chunkXML {
		return nil, fmt.Errorf("%w: not a binary XML document", ErrBadManifest)
	}
	end := int(le.Uint32(data[4:]))
	if end > len(data) {
		end = len(data)
	}

	var pool []string
	off := int(le.Uint16(data[2:]))
	for off+chunkHeaderSize <= end {
		typ := le.Uint16(data[off:])
		hdr := int(le.Uint16(data[off+2:]))
		size := int(le.Uint32(data[off+4:]))
		if size < chunkHeaderSize || hdr < chunkHeaderSize || hdr > size || off+size > end {
			return nil, fmt.Errorf("%w: bad chunk at offset %d", ErrBadManifest, off)
		}
		chunk := data[off : off+size]

		switch typ {
		case chunkStringPool:
			p, err := parseStringPool(chunk, hdr)
			if err != nil {
				return nil, err
			}
			pool = p
		case chunkStartElement:
			name, attrs, err := parseStartElement(chunk, hdr, pool)
			if err != nil {
				return nil, err
			}
			if name == "manifest" {
				return manifestFromAttrs(attrs, pool)
			}
		}
		off += size
	}
	return nil, fmt.Errorf("%w: no <manifest> element", ErrBadManifest)
}

func manifestFromAttrs(attrs []attribute, pool []string) (*Manifest, error) {
	m := &Manifest{}
	var major uint32
	for _, a := range attrs {
		switch a.name {
		case "package":
			m.Package = a.stringValue(pool)
		case "versionName":
			m.VersionName = a.stringValue(pool)
		case "versionCode":
			if a.dataType == valueIntDec || a.dataType == valueIntHex {
				m.VersionCode |= int64(a.data)
			}
		case "versionCodeMajor":
			if a.dataType == valueIntDec || a.dataType == valueIntHex {
				major = a.data
			}
		}
	}
	m.VersionCode |= int64(major) << 32
	if m.Package == "" {
		return nil, fmt.Errorf("%w: missing package attribute", ErrBadManifest)
	}
	return m, nil
}

func parseStringPool(chunk []byte, hdr int) ([]string, error) {
	if len(chunk) < poolHeaderSize || hdr < poolHeaderSize {
		return nil, fmt.Errorf("%w: short string pool", ErrBadManifest)
	}
	count := int(le.Uint32(chunk[8:]))
	flags := le.Uint32(chunk[16:])
	stringsStart := int(le.Uint32(chunk[20:]))
	if hdr+4*count > len(chunk) || stringsStart > len(chunk) {
		return nil, fmt.Errorf("%w: string pool overflows chunk", ErrBadManifest)
	}

	decode := decodeUTF16
	if flags&poolUTF8Flag != 0 {
		decode = decodeUTF8
	}

	out := make([]string, count)
	for i := range out {
		off := stringsStart + int(le.Uint32(chunk[hdr+4*i:]))
		if off >= len(chunk) {
			return nil, fmt.Errorf("%w: string %d out of range", ErrBadManifest, i)
		}
		s, err := decode(chunk[off:])
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func readLen8(b []byte) (n, width int, err error) {
	if len(b) < 1 {
		return 0, 0, errShortString
	}
	if b[0]&0x80 == 0 {
		return int(b[0]), 1, nil
	}
	if len(b) < 2 {
		return 0, 0, errShortString
	}
	return int(b[0]&0x7f)<<8 | int(b[1]), 2, nil
}

var errShortString = fmt.Errorf("%w: truncated string", ErrBadManifest)

func decodeUTF8(b []byte) (string, error) {
	// UTF-16 length first, then the UTF-8 byte length.
	_, w, err := readLen8(b)
	if err != nil {
		return "", err
	}
	b = b[w:]
	n, w, err := readLen8(b)
	if err != nil {
		return "", err
	}
	b = b[w:]
	if n > len(b) {
		return "", errShortString
	}
	return string(b[:n]), nil
}

func decodeUTF16(b []byte) (string, error) {
	if len(b) < 2 {
		return "", errShortString
	}
	n := int(le.Uint16(b))
	b = b[2:]
	if n&0x8000 != 0 {
		if len(b) < 2 {
			return "", errShortString
		}
		n = (n&0x7fff)<<16 | int(le.Uint16(b))
		b = b[2:]
	}
	if 2*n > len(b) {
		return "", errShortString
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = le.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units)), nil
}

func parseStartElement(chunk []byte, hdr int, pool []string) (string, []attribute, error) {
	body := chunk[hdr:]
	if len(body) < 20 {
		return "", nil, fmt.Errorf("%w: short start element", ErrBadManifest)
	}
	name, _ := poolString(pool, le.Uint32(body[4:]))
	attrStart := int(le.Uint16(body[8:]))
	attrSize := int(le.Uint16(body[10:]))
	attrCount := int(le.Uint16(body[12:]))
	if attrCount == 0 {
		return name, nil, nil
	}

	base := hdr + attrStart
	if attrSize < attrMinSize || base+attrCount*attrSize > len(chunk) {
		return "", nil, fmt.Errorf("%w: attributes overflow element %q", ErrBadManifest, name)
	}

	attrs := make([]attribute, attrCount)
	for i := range attrs {
		a := chunk[base+i*attrSize:]
		attrs[i].name, _ = poolString(pool, le.Uint32(a[4:]))
		attrs[i].raw, _ = poolString(pool, le.Uint32(a[8:]))
		attrs[i].dataType = a[15]
		attrs[i].data = le.Uint32(a[16:])
	}
	return name, attrs, nil
}

func poolString(pool []string, idx uint32) (string, bool) {
	if idx == noIndex || int64(idx) >= int64(len(pool)) {
		return "", false
	}
	return pool[idx], true
}

// Sentinel errors.
var (
	ErrNotArchive  = errors.New("not a package archive")
	ErrBadManifest = errors.New("malformed binary manifest")
	ErrNoIcon      = errors.New("no launcher icon in archive")
	ErrAppNotFound = errors.New("application not installed")
)
