// Package pathutil provides helpers for the store's hierarchical path
// model. Paths are slash-separated; "/" denotes the root.
package pathutil

import "strings"

// DenotesRoot reports whether the path is the root path.
func DenotesRoot(p string) bool {
	return p == "/"
}

// IsAbsolute reports whether the path is absolute.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// Parent returns the parent path. The parent of the root (and of an
// empty path) is the empty string.
func Parent(p string) string {
	if p == "" || DenotesRoot(p) {
		return ""
	}
	p = strings.TrimSuffix(p, "/")
	idx := strings.LastIndex(p, "/")
	switch {
	case idx < 0:
		return ""
	case idx == 0:
		return "/"
	default:
		return p[:idx]
	}
}

// Name returns the last path segment, or "" for the root.
func Name(p string) string {
	if p == "" || DenotesRoot(p) {
		return ""
	}
	p = strings.TrimSuffix(p, "/")
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// IsAncestor reports whether ancestor is a strict ancestor of path.
func IsAncestor(ancestor, path string) bool {
	if ancestor == "" || path == "" || ancestor == path {
		return false
	}
	if DenotesRoot(ancestor) {
		return IsAbsolute(path) && !DenotesRoot(path)
	}
	return strings.HasPrefix(path, strings.TrimSuffix(ancestor, "/")+"/")
}

// Concat joins a parent path and a relative path, normalizing the
// separator between them.
func Concat(parent, sub string) string {
	if sub == "" {
		return parent
	}
	if parent == "" {
		return sub
	}
	return strings.TrimSuffix(parent, "/") + "/" + strings.TrimPrefix(sub, "/")
}

// Relativize returns path relative to parent. It returns "" when the
// paths are equal and path unchanged when it is not under parent.
func Relativize(parent, path string) string {
	if parent == path {
		return ""
	}
	if DenotesRoot(parent) {
		return strings.TrimPrefix(path, "/")
	}
	prefix := strings.TrimSuffix(parent, "/") + "/"
	if strings.HasPrefix(path, prefix) {
		return path[len(prefix):]
	}
	return path
}
