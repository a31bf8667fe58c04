package values

import (
	"fmt"
	"strconv"
	"strings"
)

// GetPath implements GET_PROPERTY/GET_PROPERTY_REG's attribute-path access:
// dotted segments ("a.b") are map lookups, bracketed integers ("a[2]") are
// list lookups, and a *URI exposes its fixed field set through the same
// syntax. A missing map key, an out-of-range list index, or navigating
// through null all return (Null{}, nil) rather than an error — only a
// structurally invalid path (e.g. indexing a string) or the initial
// NoSuchAttrError from a URI field is an error.
func GetPath(root Value, path string) (Value, error) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	cur := root
	for _, seg := range segments {
		if _, isNull := cur.(Null); isNull || cur == nil {
			return Null{}, nil
		}

		if seg.isIndex {
			l, ok := cur.(*List)
			if !ok {
				return nil, fmt.Errorf("getAttr %q: %s is not a list", path, cur.Type())
			}
			v, found := l.Index(seg.index)
			if !found {
				return Null{}, nil
			}
			cur = v
			continue
		}

		switch v := cur.(type) {
		case *Map:
			mv, found := v.Get(seg.name)
			if !found {
				return Null{}, nil
			}
			cur = mv
		case interface {
			Attr(string) (Value, error)
		}:
			av, err := v.Attr(seg.name)
			if err != nil {
				return nil, err
			}
			cur = av
		default:
			return nil, fmt.Errorf("getAttr %q: %s has no attributes", path, cur.Type())
		}
	}
	return cur, nil
}

type pathSegment struct {
	name    string
	index   int
	isIndex bool
}

// parsePath splits a path like "a.b[2].c" into its dotted/bracketed
// segments. The first segment has no leading dot.
func parsePath(path string) ([]pathSegment, error) {
	var segs []pathSegment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("getAttr %q: empty path segment", path)
		}
		name := part
		var indices []string
		if i := strings.IndexByte(part, '['); i >= 0 {
			name = part[:i]
			rest := part[i:]
			for len(rest) > 0 {
				if rest[0] != '[' {
					return nil, fmt.Errorf("getAttr %q: malformed index near %q", path, rest)
				}
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					return nil, fmt.Errorf("getAttr %q: unterminated '['", path)
				}
				indices = append(indices, rest[1:end])
				rest = rest[end+1:]
			}
		}
		if name != "" {
			segs = append(segs, pathSegment{name: name})
		}
		for _, idxStr := range indices {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("getAttr %q: invalid index %q", path, idxStr)
			}
			segs = append(segs, pathSegment{index: idx, isIndex: true})
		}
	}
	return segs, nil
}
