package index

import (
	"path"
	"strings"
)

// RelPath is an archive-relative path using forward-slash semantics
// regardless of host OS. The empty RelPath ("") denotes the archive
// root directory. RelPath values never carry a leading slash or a
// ".." component.
type RelPath string

// Clean normalizes p: forward slashes, no trailing slash, no leading
// slash, "." collapses to the root ("").
func Clean(p string) RelPath {
	p = filepathToSlash(p)
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return RelPath("")
	}
	return RelPath(path.Clean(p))
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Join joins a base RelPath with a single path component.
func (p RelPath) Join(name string) RelPath {
	if p == "" {
		return Clean(name)
	}
	return RelPath(string(p) + "/" + name)
}

// String returns the path as a plain string.
func (p RelPath) String() string {
	return string(p)
}

// IsRoot reports whether p is the archive root ("").
func (p RelPath) IsRoot() bool {
	return p == ""
}

// HasPrefixDir reports whether p lies strictly under prefix, i.e. p
// equals prefix plus at least one more path component. The root
// prefix ("") is a strict prefix of every non-root path.
func (p RelPath) HasPrefixDir(prefix RelPath) bool {
	if prefix == "" {
		return p != ""
	}
	s := string(p)
	base := string(prefix)
	return strings.HasPrefix(s, base+"/")
}

// HasPrefixDirOrEqual reports whether p equals prefix or lies under it.
func (p RelPath) HasPrefixDirOrEqual(prefix RelPath) bool {
	return p == prefix || p.HasPrefixDir(prefix)
}

// StripPrefix removes prefix (and the following separator) from p. The
// caller must ensure p.HasPrefixDirOrEqual(prefix).
func (p RelPath) StripPrefix(prefix RelPath) RelPath {
	if prefix == "" {
		return p
	}
	if p == prefix {
		return RelPath("")
	}
	return RelPath(strings.TrimPrefix(string(p), string(prefix)+"/"))
}

// Basename returns the last path component, or "" for the root.
func (p RelPath) Basename() string {
	if p == "" {
		return ""
	}
	return path.Base(string(p))
}

// Parent returns the parent RelPath, or ("", false) if p is already
// the root.
func (p RelPath) Parent() (RelPath, bool) {
	if p == "" {
		return "", false
	}
	dir := path.Dir(string(p))
	if dir == "." {
		return RelPath(""), true
	}
	return RelPath(dir), true
}

// FirstComponent returns the first path component of p.
func (p RelPath) FirstComponent() string {
	s := string(p)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}
