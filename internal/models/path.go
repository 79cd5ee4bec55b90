package models

import (
	"fmt"
	"strconv"
	"strings"
)

// pathSeparator joins indices in the textual path form, e.g. "0-2-1".
const pathSeparator = "-"

// Path locates a Block by descending through child indices from a report root.
// The empty path is the root itself. A Path is only meaningful against the
// snapshot it was computed from; inserts and removals shift sibling indices.
type Path []int

// ParsePath decodes the textual form produced by Path.String.
func ParsePath(raw string) (Path, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Path{}, nil
	}
	parts := strings.Split(raw, pathSeparator)
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid path segment %q", part)
		}
		path = append(path, idx)
	}
	return path, nil
}

// String renders the path as dash separated indices.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, pathSeparator)
}

// Child returns a new path addressing child i of p. p is left untouched.
func (p Path) Child(i int) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, i)
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}
