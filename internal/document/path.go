package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is matched by every resolution failure.
	ErrNotFound = errors.New("path not found")
	// ErrInvalidPath is returned for address strings that do not parse.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotText is returned when a translation targets a node that is not a string.
	ErrNotText = errors.New("target is not a string")
)

// NotFoundError reports the segment at which resolution stopped.
type NotFoundError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resolve %q: segment %q: %s", e.Path, e.Segment, e.Reason)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Segment is one navigation step: an optional object field followed by
// zero or more array indices. An empty Field means the indices apply to the
// current position.
type Segment struct {
	Field   string
	Indices []int
}

func (s Segment) String() string {
	var sb strings.Builder
	sb.WriteString(s.Field)
	for _, idx := range s.Indices {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(idx))
		sb.WriteByte(']')
	}
	return sb.String()
}

func (s Segment) equal(o Segment) bool {
	if s.Field != o.Field || len(s.Indices) != len(o.Indices) {
		return false
	}
	for i := range s.Indices {
		if s.Indices[i] != o.Indices[i] {
			return false
		}
	}
	return true
}

// Path is a parsed address such as "[3].pages[0].list[12].parameters[0]".
type Path []Segment

// ParsePath parses an address string. Segments are separated by '.', each of
// the form "name", "name[i]", "name[i][j]" or "[i]". A purely numeric segment
// ("list.3") is accepted as a bare index. Bare-index segments that follow
// another segment are folded into it, so "list.3" and "list[3]" parse to the
// same Path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, s, err)
		}
		if seg.Field == "" && len(p) > 0 {
			last := &p[len(p)-1]
			last.Indices = append(last.Indices, seg.Indices...)
			continue
		}
		p = append(p, seg)
	}
	return p, nil
}

// MustParsePath is ParsePath for addresses built from constants.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, errors.New("empty segment")
	}
	if n, err := strconv.Atoi(part); err == nil {
		if n < 0 {
			return Segment{}, fmt.Errorf("negative index in %q", part)
		}
		return Segment{Indices: []int{n}}, nil
	}

	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.ContainsRune(part, ']') {
			return Segment{}, fmt.Errorf("unbalanced bracket in %q", part)
		}
		return Segment{Field: part}, nil
	}

	seg := Segment{Field: part[:open]}
	rest := part[open:]
	for rest != "" {
		if rest[0] != '[' {
			return Segment{}, fmt.Errorf("unexpected %q after index in %q", rest, part)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Segment{}, fmt.Errorf("unterminated index in %q", part)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil || n < 0 {
			return Segment{}, fmt.Errorf("bad index %q in %q", rest[1:end], part)
		}
		seg.Indices = append(seg.Indices, n)
		rest = rest[end+1:]
	}
	return seg, nil
}

// String renders the canonical bracket form.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// Append returns a new Path with segs added; p is not modified.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// LeadingIndex splits off the first index of a path that starts with a bare
// index segment, e.g. "[4].name" yields 4 and "name".
func (p Path) LeadingIndex() (int, Path, bool) {
	if len(p) == 0 || p[0].Field != "" || len(p[0].Indices) == 0 {
		return 0, nil, false
	}
	idx := p[0].Indices[0]
	rest := make(Path, 0, len(p))
	if remaining := p[0].Indices[1:]; len(remaining) > 0 {
		rest = append(rest, Segment{Indices: append([]int(nil), remaining...)})
	}
	return idx, append(rest, p[1:]...), true
}

// TrimPrefix returns the remainder of p after prefix. The last segment of
// prefix may name a field whose indices continue in p: trimming "[1].list"
// from "[1].list[0].parameters[0]" leaves "[0].parameters[0]".
func (p Path) TrimPrefix(prefix Path) (Path, bool) {
	if len(prefix) == 0 {
		return p, true
	}
	if len(p) < len(prefix) {
		return nil, false
	}
	for i := 0; i < len(prefix)-1; i++ {
		if !p[i].equal(prefix[i]) {
			return nil, false
		}
	}
	last := prefix[len(prefix)-1]
	seg := p[len(prefix)-1]
	if seg.Field != last.Field || len(seg.Indices) < len(last.Indices) {
		return nil, false
	}
	for i := range last.Indices {
		if seg.Indices[i] != last.Indices[i] {
			return nil, false
		}
	}

	rest := make(Path, 0, len(p)-len(prefix)+1)
	if remaining := seg.Indices[len(last.Indices):]; len(remaining) > 0 {
		rest = append(rest, Segment{Indices: append([]int(nil), remaining...)})
	}
	return append(rest, p[len(prefix):]...), true
}

// Resolve walks doc along p and returns the node found there.
func Resolve(doc any, p Path) (any, error) {
	cur := doc
	for _, seg := range p {
		next, reason := step(cur, seg, len(seg.Indices))
		if reason != "" {
			return nil, &NotFoundError{Path: p.String(), Segment: seg.String(), Reason: reason}
		}
		cur = next
	}
	return cur, nil
}

// SetString overwrites the node addressed by p with text, whatever its
// previous type. The container holding the terminal node must already exist;
// object fields are never created.
func SetString(doc any, p Path, text string) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty path cannot be assigned", ErrInvalidPath)
	}
	parent, err := Resolve(doc, p[:len(p)-1])
	if err != nil {
		return err
	}

	last := p[len(p)-1]
	notFound := func(reason string) error {
		return &NotFoundError{Path: p.String(), Segment: last.String(), Reason: reason}
	}

	if len(last.Indices) == 0 {
		obj, ok := parent.(map[string]any)
		if !ok {
			return notFound(fmt.Sprintf("expected object, found %s", kindOf(parent)))
		}
		if _, ok := obj[last.Field]; !ok {
			return notFound("missing field")
		}
		obj[last.Field] = text
		return nil
	}

	container, reason := step(parent, last, len(last.Indices)-1)
	if reason != "" {
		return notFound(reason)
	}
	arr, ok := container.([]any)
	if !ok {
		return notFound(fmt.Sprintf("expected array, found %s", kindOf(container)))
	}
	idx := last.Indices[len(last.Indices)-1]
	if idx >= len(arr) {
		return notFound(fmt.Sprintf("index %d out of range (len %d)", idx, len(arr)))
	}
	arr[idx] = text
	return nil
}

// ReplaceString is SetString restricted to nodes that already hold a string,
// so a translation can never overwrite numbers, lists or objects.
func ReplaceString(doc any, p Path, text string) error {
	node, err := Resolve(doc, p)
	if err != nil {
		return err
	}
	if _, ok := node.(string); !ok {
		return fmt.Errorf("%w: %q holds %s", ErrNotText, p.String(), kindOf(node))
	}
	return SetString(doc, p, text)
}

// step applies the field of seg and its first n indices to node. A non-empty
// reason reports why navigation failed.
func step(node any, seg Segment, n int) (any, string) {
	if seg.Field != "" {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Sprintf("expected object, found %s", kindOf(node))
		}
		v, ok := obj[seg.Field]
		if !ok {
			return nil, "missing field"
		}
		node = v
	}
	for _, idx := range seg.Indices[:n] {
		arr, ok := node.([]any)
		if !ok {
			return nil, fmt.Sprintf("expected array, found %s", kindOf(node))
		}
		if idx >= len(arr) {
			return nil, fmt.Sprintf("index %d out of range (len %d)", idx, len(arr))
		}
		node = arr[idx]
	}
	return node, ""
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}
