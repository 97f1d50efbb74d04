package headers

import (
	"bytes"
	"iter"
	"maps"
	"net/http"
	"regexp"
	"slices"
	"strings"
)

// https://datatracker.ietf.org/doc/html/rfc9110#name-tokens
var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*\+\-.^_\x60\|~]+$`)

// Headers is a case-insensitive collection of HTTP header fields. Repeated
// fields are folded into one comma separated value, except Set-Cookie,
// whose lines are kept apart, and Cookie, which folds with "; ". The zero
// value is ready to use.
type Headers struct {
	headers map[string][]string
}

func isValidFieldName(key string) bool {
	return fieldNameRegex.MatchString(key)
}

func validHeaderValueByte(c byte) bool {
	switch {
	case c == 0x09: // HTAB
		return true
	case c == 0x20: // SP
		return true
	case 0x21 <= c && c <= 0x7E: // VCHAR
		return true
	case c >= 0x80: // obs-text
		return true
	}
	return false
}

func isValidFieldValue(val []byte) bool {
	for _, b := range val {
		if !validHeaderValueByte(b) {
			return false
		}
	}
	return true
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}

func (h *Headers) init() {
	if h.headers == nil {
		h.headers = map[string][]string{}
	}
}

// Add adds a header. If the header already exists, the new value is appended
// to the existing value, separated by a comma.
func (h *Headers) Add(key, value string) {
	if !isValidFieldName(key) || !isValidFieldValue([]byte(value)) {
		// drop invalid headers to prevent response splitting
		return
	}
	h.init()

	key = normalizeKey(key)
	existing, ok := h.headers[key]
	switch {
	case !ok:
		h.headers[key] = []string{value}
	case key == "set-cookie":
		h.headers[key] = append(existing, value)
	case key == "cookie":
		existing[0] += "; " + value
	default:
		existing[0] += ", " + value
	}
}

// Set replaces any existing value of a header.
func (h *Headers) Set(key, value string) {
	if !isValidFieldName(key) || !isValidFieldValue([]byte(value)) {
		return
	}
	h.init()
	h.headers[normalizeKey(key)] = []string{value}
}

// Get returns the value of a header, or "" if it is absent. The lines of
// a Set-Cookie field are joined with ", ".
func (h *Headers) Get(key string) string {
	return strings.Join(h.headers[normalizeKey(key)], ", ")
}

// Values returns every line of a header. Only Set-Cookie has more than one.
func (h *Headers) Values(key string) []string {
	return slices.Clone(h.headers[normalizeKey(key)])
}

// Has reports whether the header is present, even with an empty value.
func (h *Headers) Has(key string) bool {
	_, ok := h.headers[normalizeKey(key)]
	return ok
}

// Remove removes a header.
func (h *Headers) Remove(key string) {
	delete(h.headers, normalizeKey(key))
}

// All returns an iterator over all header lines. Keys are lower case.
func (h *Headers) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for key, values := range h.headers {
			for _, v := range values {
				if !yield(key, v) {
					return
				}
			}
		}
	}
}

// Keys returns the lower case header names in sorted order.
func (h *Headers) Keys() []string {
	return slices.Sorted(maps.Keys(h.headers))
}

// Clone returns an independent copy.
func (h *Headers) Clone() *Headers {
	c := &Headers{headers: make(map[string][]string, len(h.headers))}
	for key, values := range h.headers {
		c.headers[key] = slices.Clone(values)
	}
	return c
}

// ParseFieldLine parses a single "Name: value" field line and adds it.
func (h *Headers) ParseFieldLine(data []byte) (err error) {
	colonPos := bytes.IndexByte(data, ':')
	if colonPos == -1 {
		return ErrMalformedHeader
	}

	// leading whitespace in header key is allowed
	hkey := bytes.TrimLeft(data[:colonPos], " \t")
	hvalue := bytes.Trim(data[colonPos+1:], " \t")

	if !bytes.Equal(hkey, bytes.TrimRight(hkey, " ")) {
		// space between key and colon, invalid
		return ErrMalformedHeader
	}

	if !fieldNameRegex.Match(hkey) || !isValidFieldValue(hvalue) {
		return ErrMalformedHeader
	}

	h.Add(string(hkey), string(hvalue))
	return nil
}

// Size returns the number of headers.
func (h *Headers) Size() int {
	return len(h.headers)
}

// NewHeaders creates an empty Headers.
func NewHeaders() *Headers {
	return &Headers{
		headers: map[string][]string{},
	}
}

// FromHTTP copies a net/http header map. Multi-valued fields are folded
// as Add does.
func FromHTTP(src http.Header) *Headers {
	h := NewHeaders()
	for key, values := range src {
		for _, v := range values {
			h.Add(key, v)
		}
	}
	return h
}

// CopyTo writes every header into dst, replacing existing values.
func (h *Headers) CopyTo(dst http.Header) {
	for key, values := range h.headers {
		dst.Del(key)
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
