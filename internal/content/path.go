package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Dot-path patch engine. A dot-path such as "hero.title" or
// "cards.items.2.question" addresses a leaf or subtree inside a page's
// merged content. Paths are parsed once into typed segments instead of
// being re-split at every hop; numeric segments index arrays.

type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// ParsePath splits a dot-path into segments. Empty paths and empty
// segments ("a..b") are rejected.
func ParsePath(path string) ([]Segment, error) {
	if path == "" {
		return nil, fmt.Errorf("empty content path")
	}
	parts := strings.Split(path, ".")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("content path %q has an empty segment", path)
		}
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			segments = append(segments, Segment{Index: idx, IsIndex: true})
			continue
		}
		segments = append(segments, Segment{Key: part})
	}
	return segments, nil
}

// JoinPath is the inverse of ParsePath.
func JoinPath(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// SetValue returns a deep copy of doc with value written at path.
// The input document is never mutated. Missing or non-container
// intermediate segments are created as objects; numeric segments write
// into arrays, growing them with nulls when the index is past the end
// (matching how the same write behaves after a JSON round trip).
func SetValue(doc map[string]any, path string, value any) (map[string]any, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	out, err := setRec(cloneMap(doc), segments, value)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// setRec writes value at segs inside container and returns the
// container, which may have been re-allocated (array growth) or
// replaced (a non-container in the middle of the path becomes an
// object, matching plain JSON object semantics).
func setRec(container any, segs []Segment, value any) (any, error) {
	seg := segs[0]
	last := len(segs) == 1
	switch c := container.(type) {
	case map[string]any:
		key := seg.String()
		if last {
			c[key] = cloneValue(value)
			return c, nil
		}
		child := c[key]
		if !isContainer(child) {
			child = map[string]any{}
		}
		newChild, err := setRec(child, segs[1:], value)
		if err != nil {
			return nil, err
		}
		c[key] = newChild
		return c, nil
	case []any:
		if !seg.IsIndex {
			// Non-numeric key against an array replaces the array
			// with an object.
			return setRec(map[string]any{}, segs, value)
		}
		for seg.Index >= len(c) {
			c = append(c, nil)
		}
		if last {
			c[seg.Index] = cloneValue(value)
			return c, nil
		}
		child := c[seg.Index]
		if !isContainer(child) {
			child = map[string]any{}
		}
		newChild, err := setRec(child, segs[1:], value)
		if err != nil {
			return nil, err
		}
		c[seg.Index] = newChild
		return c, nil
	default:
		return setRec(map[string]any{}, segs, value)
	}
}

// DeleteValue returns a deep copy of doc with the node at path removed.
// Deleting a path that does not resolve is a no-op; array elements are
// spliced out rather than left as null holes.
func DeleteValue(doc map[string]any, path string) (map[string]any, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	out := cloneMap(doc)
	deleteRec(out, segments)
	return out, nil
}

// deleteRec removes segs from container, returning the container (which
// may shrink when an array element is deleted) and whether the target
// was found.
func deleteRec(container any, segs []Segment) (any, bool) {
	seg := segs[0]
	last := len(segs) == 1
	switch c := container.(type) {
	case map[string]any:
		key := seg.String()
		child, ok := c[key]
		if !ok {
			return c, false
		}
		if last {
			delete(c, key)
			return c, true
		}
		newChild, found := deleteRec(child, segs[1:])
		c[key] = newChild
		return c, found
	case []any:
		if !seg.IsIndex || seg.Index >= len(c) {
			return c, false
		}
		if last {
			return append(c[:seg.Index], c[seg.Index+1:]...), true
		}
		newChild, found := deleteRec(c[seg.Index], segs[1:])
		c[seg.Index] = newChild
		return c, found
	default:
		return container, false
	}
}

// Value resolves path inside doc, reporting whether it exists.
func Value(doc map[string]any, path string) (any, bool) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	var current any = doc
	for _, seg := range segments {
		switch c := current.(type) {
		case map[string]any:
			v, ok := c[seg.String()]
			if !ok {
				return nil, false
			}
			current = v
		case SectionData:
			v, ok := c[seg.String()]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			if !seg.IsIndex || seg.Index >= len(c) {
				return nil, false
			}
			current = c[seg.Index]
		default:
			return nil, false
		}
	}
	return current, true
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// Flatten walks a merged section tree and returns every addressable
// path with its value. Arrays appear both as a leaf (the whole array)
// and element-wise, so "cards.items" and "cards.items.0.question" are
// both readable.
func Flatten(sections PageSections) map[string]any {
	out := map[string]any{}
	for key, data := range sections {
		flattenInto(out, string(key), map[string]any(data))
	}
	return out
}

func flattenInto(out map[string]any, prefix string, v any) {
	switch tv := v.(type) {
	case map[string]any:
		for k, child := range tv {
			flattenInto(out, prefix+"."+k, child)
		}
	case []any:
		out[prefix] = tv
		for i, child := range tv {
			flattenInto(out, prefix+"."+strconv.Itoa(i), child)
		}
	default:
		out[prefix] = v
	}
}

// SortedPaths returns the flattened paths in lexical order; handy for
// stable API responses and tests.
func SortedPaths(flat map[string]any) []string {
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
