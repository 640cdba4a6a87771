package codec

import (
	"strings"

	"github.com/matzehuels/graphwire/pkg/errors"
)

// Version is the document format version written in the "emf" header field.
type Version int

const (
	// Version1_0 documents carry no style field and always use
	// StyleBinaryFloatingPoint.
	Version1_0 Version = iota + 1
	// Version1_1 documents carry an explicit style bitmask.
	Version1_1
)

// DefaultVersion is used when no version is configured.
const DefaultVersion = Version1_1

func (v Version) String() string {
	switch v {
	case Version1_0:
		return "VERSION_1_0"
	case Version1_1:
		return "VERSION_1_1"
	}
	return "VERSION_UNKNOWN"
}

// HasStyle reports whether documents of this version carry a style field.
func (v Version) HasStyle() bool { return v > Version1_0 }

// ParseVersion parses a header version tag. Short forms "1.0" and "1.1" are
// accepted too.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "VERSION_1_0", "1.0":
		return Version1_0, nil
	case "VERSION_1_1", "1.1":
		return Version1_1, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidFormat, "unknown format version %q", s)
}

// Style is the bitmask of encoding choices recorded in a document header.
type Style int

const (
	// StyleBinaryFloatingPoint has no effect on JSON output.
	StyleBinaryFloatingPoint Style = 1 << iota
	// StyleBinaryDate has no effect on JSON output; dates are always
	// milliseconds since the epoch.
	StyleBinaryDate
	// StyleProxyAttributes writes the features of objects referenced from
	// other documents after their location.
	StyleProxyAttributes
	// StyleBinaryEnumerator writes enum values as ordinals instead of
	// literals.
	StyleBinaryEnumerator
)

var styleNames = []struct {
	flag Style
	name string
}{
	{StyleBinaryFloatingPoint, "binary-floating-point"},
	{StyleBinaryDate, "binary-date"},
	{StyleProxyAttributes, "proxy-attributes"},
	{StyleBinaryEnumerator, "binary-enumerator"},
}

// Has reports whether every bit of flag is set.
func (s Style) Has(flag Style) bool { return s&flag == flag }

func (s Style) String() string {
	var names []string
	for _, n := range styleNames {
		if s.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseStyle parses a "|" or "," separated list of style names.
func ParseStyle(s string) (Style, error) {
	var style Style
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part == "" || part == "none" {
			continue
		}
		found := false
		for _, n := range styleNames {
			if n.name == part {
				style |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q", part)
		}
	}
	return style, nil
}
