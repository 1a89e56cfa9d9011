package fingerprint

import (
	"fmt"
	"strings"
)

// SegmentKind distinguishes literal key segments from file segments.
type SegmentKind int

const (
	// LiteralSegment contributes its text to the key verbatim.
	LiteralSegment SegmentKind = iota
	// FileSegment contributes a digest of the files its globs select.
	FileSegment
)

// String returns the string representation of SegmentKind.
func (k SegmentKind) String() string {
	switch k {
	case LiteralSegment:
		return "literal"
	case FileSegment:
		return "file"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SegmentKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "literal":
		*k = LiteralSegment
	case "file":
		*k = FileSegment
	default:
		return fmt.Errorf("unknown segment kind %q", text)
	}
	return nil
}

// KeySegment is one "|"-separated part of a key spec.
type KeySegment struct {
	// Raw is the segment as written, surrounding whitespace removed
	Raw  string
	Kind SegmentKind

	// Value is the literal text (quotes removed) of a LiteralSegment
	Value string

	// Includes and Excludes are the globs of a FileSegment. Excludes apply
	// to every include of the segment.
	Includes []string
	Excludes []string
}

// fileSegmentMarkers are the characters that make an unquoted segment a file segment.
const fileSegmentMarkers = `/\*!,.`

// ParseKeySpec splits a cache key spec into segments.
//
// Segments are separated by "|". A segment in double quotes is a string
// literal and may contain "|". An unquoted segment containing a path
// separator, "*", "!", "," or "." is a file segment: a comma-separated list
// of include globs and "!"-prefixed exclude globs. Any other unquoted
// segment is a literal.
//
//	npm | "linux" | **/package-lock.json, !**/node_modules/**
func ParseKeySpec(spec string) ([]KeySegment, error) {
	raws, err := splitSegments(spec)
	if err != nil {
		return nil, err
	}

	segments := make([]KeySegment, 0, len(raws))
	for i, raw := range raws {
		seg, err := parseSegment(raw)
		if err != nil {
			return nil, fmt.Errorf("key segment %d: %w", i+1, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// splitSegments splits on "|" outside double quotes.
func splitSegments(spec string) ([]string, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("key spec is empty")
	}

	var (
		segments []string
		current  strings.Builder
		quoted   bool
	)
	for _, r := range spec {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
		case r == '|' && !quoted:
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, fmt.Errorf("key spec has an unterminated quote: %s", spec)
	}
	segments = append(segments, strings.TrimSpace(current.String()))

	for i, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("key segment %d is empty", i+1)
		}
	}
	return segments, nil
}

func parseSegment(raw string) (KeySegment, error) {
	if strings.HasPrefix(raw, `"`) {
		if len(raw) < 2 || !strings.HasSuffix(raw, `"`) || strings.Count(raw, `"`) != 2 {
			return KeySegment{}, fmt.Errorf("malformed quoted segment %s", raw)
		}
		return KeySegment{Raw: raw, Kind: LiteralSegment, Value: raw[1 : len(raw)-1]}, nil
	}

	if !strings.ContainsAny(raw, fileSegmentMarkers) {
		return KeySegment{Raw: raw, Kind: LiteralSegment, Value: raw}, nil
	}

	seg := KeySegment{Raw: raw, Kind: FileSegment}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.HasPrefix(item, "!") {
			exclude := strings.TrimSpace(item[1:])
			if exclude == "" {
				return KeySegment{}, fmt.Errorf("empty exclude pattern in %s", raw)
			}
			seg.Excludes = append(seg.Excludes, exclude)
			continue
		}
		seg.Includes = append(seg.Includes, item)
	}

	if len(seg.Includes) == 0 {
		return KeySegment{}, fmt.Errorf("file segment %s has no include pattern", raw)
	}
	return seg, nil
}
