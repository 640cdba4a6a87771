// Package location resolves and deresolves document URIs against a base.
//
// The codec writes references to other documents relative to the document
// being written, so that a set of documents can move together. Only absolute,
// hierarchical bases take part; any other base leaves references untouched.
package location

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FromPath returns the file URI of a local path.
func FromPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String(), nil
}

// SplitFragment splits uri at its first '#'.
func SplitFragment(uri string) (base, fragment string, ok bool) {
	return strings.Cut(uri, "#")
}

// TrimFragment returns uri without its fragment.
func TrimFragment(uri string) string {
	base, _, _ := SplitFragment(uri)
	return base
}

// AppendFragment returns uri with fragment, replacing any existing fragment.
func AppendFragment(uri, fragment string) string {
	return TrimFragment(uri) + "#" + fragment
}

// IsBase reports whether uri can serve as a base: absolute and hierarchical.
func IsBase(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.IsAbs() && u.Opaque == ""
}

// Resolve returns ref resolved against base. ref is returned unchanged when
// base is not an absolute hierarchical URI or ref is already absolute.
func Resolve(ref, base string) string {
	if base == "" || ref == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() || b.Opaque != "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	return b.ResolveReference(r).String()
}

// Deresolve returns uri relative to base when both share scheme and
// authority and have a path segment in common. Otherwise uri is returned
// unchanged.
func Deresolve(uri, base string) string {
	if base == "" || uri == "" {
		return uri
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() || b.Opaque != "" {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil || !u.IsAbs() || u.Opaque != "" {
		return uri
	}
	if !strings.EqualFold(u.Scheme, b.Scheme) || u.User.String() != b.User.String() || !strings.EqualFold(u.Host, b.Host) {
		return uri
	}

	baseDir := segments(b.EscapedPath())
	if len(baseDir) > 0 {
		baseDir = baseDir[:len(baseDir)-1]
	}
	target := segments(u.EscapedPath())
	if len(target) == 0 {
		return uri
	}
	targetDir, last := target[:len(target)-1], target[len(target)-1]

	common := 0
	for common < len(baseDir) && common < len(targetDir) && baseDir[common] == targetDir[common] {
		common++
	}
	if common == 0 && len(baseDir) > 0 {
		return uri
	}

	var sb strings.Builder
	for range len(baseDir) - common {
		sb.WriteString("../")
	}
	for _, s := range targetDir[common:] {
		sb.WriteString(s)
		sb.WriteByte('/')
	}
	if last == "" && sb.Len() == 0 {
		sb.WriteString("./")
	}
	if strings.Contains(last, ":") && sb.Len() == 0 {
		// Keep a colon in the first segment from reading as a scheme.
		sb.WriteString("./")
	}
	sb.WriteString(last)
	if u.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(u.EscapedFragment())
	}
	return sb.String()
}

func segments(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
