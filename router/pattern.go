package router

import (
	"fmt"
	"strings"
)

type segmentKind uint8

const (
	segmentStatic segmentKind = iota
	segmentParam
	segmentWildcard
)

type segment struct {
	kind  segmentKind
	value string // literal text, or capture name
}

// Pattern is a compiled route pattern: literal segments, ":name" captures
// of a single segment, and an optional trailing "*name" wildcard that
// captures the rest of the path, possibly empty.
type Pattern struct {
	raw      string
	segments []segment
}

// ParsePattern compiles and validates a route pattern.
func ParsePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("%w %q: must start with '/'", ErrInvalidPattern, raw)
	}

	p := Pattern{raw: raw}
	seen := map[string]bool{}
	parts := splitPath(raw)
	for i, part := range parts {
		seg := segment{kind: segmentStatic, value: part}
		switch part[0] {
		case ':':
			seg = segment{kind: segmentParam, value: part[1:]}
		case '*':
			seg = segment{kind: segmentWildcard, value: part[1:]}
			if i != len(parts)-1 {
				return Pattern{}, fmt.Errorf("%w %q: wildcard *%s must be the last segment", ErrInvalidPattern, raw, seg.value)
			}
		}

		if seg.kind != segmentStatic {
			if seg.value == "" {
				return Pattern{}, fmt.Errorf("%w %q: empty capture name", ErrInvalidPattern, raw)
			}
			if seen[seg.value] {
				return Pattern{}, fmt.Errorf("%w %q: duplicate capture name %q", ErrInvalidPattern, raw, seg.value)
			}
			seen[seg.value] = true
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

// MustParsePattern is ParsePattern that panics on an invalid pattern.
func MustParsePattern(raw string) Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) String() string { return p.raw }

// prefixed returns the pattern mounted under prefix, which must itself be a
// valid pattern.
func (p Pattern) prefixed(prefix Pattern) (Pattern, error) {
	raw := strings.TrimRight(prefix.raw, "/") + p.raw
	if p.raw == "/" && prefix.raw != "/" {
		raw = strings.TrimRight(prefix.raw, "/")
	}
	return ParsePattern(raw)
}

// params maps the captured values, in segment order, to capture names.
func (p Pattern) params(captured []string) map[string]string {
	out := make(map[string]string, len(captured))
	i := 0
	for _, seg := range p.segments {
		if seg.kind == segmentStatic {
			continue
		}
		out[seg.value] = captured[i]
		i++
	}
	return out
}

// splitPath splits a path into its non-empty segments, so "/a//b/" and
// "/a/b" are the same path.
func splitPath(path string) []string {
	var parts []string
	for part := range strings.SplitSeq(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
