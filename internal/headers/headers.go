package headers

import (
	"bytes"
	"errors"
	"strings"
	"unicode"
)

var Crlf = []byte("\r\n")
var CrlfLen = len(Crlf)

// Headers holds request header fields keyed by their lowercased name.
type Headers map[string][]string

func NewHeaders() Headers {
	return make(Headers)
}

func (h Headers) Get(key string) (string, bool) {
	vals, ok := h[strings.ToLower(key)]
	str := strings.Join(vals, ",")
	return str, ok
}

// Value is Get without the presence flag.
func (h Headers) Value(key string) string {
	val, _ := h.Get(key)
	return val
}

// Values returns every value received for key, in arrival order.
func (h Headers) Values(key string) []string {
	return h[strings.ToLower(key)]
}

func (h Headers) Add(key, val string) {
	lower := strings.ToLower(key)
	h[lower] = append(h[lower], val)
}

func (h Headers) Set(key, val string) {
	lower := strings.ToLower(key)
	h[lower] = []string{val}
}

// Parse consumes header lines from data up to and including the empty line
// that terminates the block. It reports how many bytes were consumed and
// whether the terminator was seen.
func (h Headers) Parse(data []byte) (n int, done bool, err error) {
	read := 0
	for {
		i := bytes.Index(data, Crlf)
		if i == -1 {
			return read, false, nil
		}
		if i == 0 {
			read += CrlfLen
			break
		}
		err := h.ParseLine(data[:i])
		if err != nil {
			return 0, false, err
		}
		lineLen := i + CrlfLen
		data = data[lineLen:]
		read += lineLen
	}
	return read, true, nil
}

func (h Headers) ParseLine(line []byte) (err error) {
	parts := bytes.SplitN(line, []byte(":"), 2)
	if len(parts) != 2 {
		return ErrMalformedHeader
	}

	key := bytes.TrimLeftFunc(parts[0], unicode.IsSpace)
	val := bytes.TrimSpace(parts[1])

	if !ValidFieldName(key) {
		return ErrMalformedHeader
	}

	// Repeated field names append.
	h.Add(string(key), string(val))
	return nil
}

// ValidFieldName reports whether name is a non-empty RFC 9110 token.
func ValidFieldName(name []byte) bool {
	if len(name) == 0 {
		return false
	}
	for _, c := range name {
		if !isTokenChar(c) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

var ErrMalformedHeader = errors.New("malformed header")
