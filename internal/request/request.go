package request

import (
	"bytes"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/yanshuy/vhost-server/internal/headers"
)

var Crlf = []byte("\r\n")
var CrlfLen = len(Crlf)

type RequestLine struct {
	Method      string
	Target      string
	HttpVersion string
}

type Request struct {
	*RequestLine
	headers.Headers
	Body []byte
}

func NewRequest() *Request {
	return &Request{
		Headers: headers.NewHeaders(),
	}
}

// Path returns the path component of the request target with the query
// string dropped. It reports false when the target has no absolute path,
// such as an unparseable target or the asterisk form.
func (r *Request) Path() (string, bool) {
	u, err := url.ParseRequestURI(r.Target)
	if err != nil || !strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	return u.Path, true
}

// Host returns the raw Host header value.
func (r *Request) Host() (string, bool) {
	return r.Headers.Get("Host")
}

// KeepAlive reports whether the connection may carry another request after
// this one has been answered.
func (r *Request) KeepAlive() bool {
	for _, val := range r.Headers.Values("Connection") {
		for _, opt := range strings.Split(strings.ToLower(val), ",") {
			switch strings.TrimSpace(opt) {
			case "close":
				return false
			case "keep-alive":
				return true
			}
		}
	}
	return r.HttpVersion == "1.1"
}

type parseState int

const (
	StateStart parseState = iota
	StateHeaders
	StateHeadersDone
	StateBody
	StateDone
)

type RequestParser struct {
	*Request
	currentPos int
	state      parseState
}

func NewRequestParser() *RequestParser {
	return &RequestParser{
		Request:    NewRequest(),
		currentPos: 0,
		state:      StateStart,
	}
}

func (rp *RequestParser) Done() bool {
	return rp.state == StateDone
}

// parse advances the state machine over data, which always starts at the
// first byte of the request. It returns the number of bytes the request
// occupies once the request is complete, and 0 while more input is needed.
func (rp *RequestParser) parse(data []byte) (int, error) {
	for {
		switch rp.state {
		case StateStart:
			i := bytes.Index(data, Crlf)
			if i == -1 {
				return 0, nil
			}
			reqline, err := parseRequestLine(data[:i])
			if err != nil {
				return 0, err
			}
			rp.currentPos = i + CrlfLen
			rp.RequestLine = reqline
			rp.state = StateHeaders

		case StateHeaders:
			n, done, err := rp.Headers.Parse(data[rp.currentPos:])
			if err != nil {
				return 0, err
			}
			rp.currentPos += n
			if !done {
				return 0, nil
			}
			rp.state = StateHeadersDone

		case StateHeadersDone:
			if _, chunked := rp.Headers.Get("Transfer-Encoding"); chunked {
				return 0, ErrUnsupportedTransferEncoding
			}
			contLenStr, ok := rp.Headers.Get("Content-Length")
			if !ok {
				rp.state = StateDone
				continue
			}
			contLen, err := strconv.ParseInt(contLenStr, 10, 64)
			if err != nil || contLen < 0 {
				return 0, ErrInvalidContentLength
			}
			if contLen > MaxRequestSize {
				return 0, ErrRequestTooLarge
			}
			if contLen == 0 {
				rp.state = StateDone
				continue
			}
			rp.Body = make([]byte, 0, contLen)
			rp.state = StateBody

		case StateBody:
			avail := data[rp.currentPos:]
			if len(avail) == 0 {
				return 0, nil
			}
			// Bytes past the declared length belong to the next request.
			remaining := cap(rp.Body) - len(rp.Body)
			if len(avail) > remaining {
				avail = avail[:remaining]
			}
			rp.Body = append(rp.Body, avail...)
			rp.currentPos += len(avail)

			if cap(rp.Body) == len(rp.Body) {
				rp.state = StateDone
			}

		case StateDone:
			return rp.currentPos, nil
		}
	}
}

func parseRequestLine(line []byte) (*RequestLine, error) {
	parts := bytes.Split(line, []byte(" "))
	if len(parts) != 3 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return nil, ErrMalformedRequestLine
	}

	name, version, ok := strings.Cut(string(parts[2]), "/")
	if !ok || name != "HTTP" {
		return nil, ErrMalformedRequestLine
	}
	if !IsVersionSupported(version) {
		return nil, ErrUnsupportedVersion
	}

	return &RequestLine{
		Method:      string(parts[0]),
		Target:      string(parts[1]),
		HttpVersion: version,
	}, nil
}

var ErrMalformedRequestLine = errors.New("malformed request line")
var ErrUnsupportedVersion = errors.New("version not supported")
var ErrInvalidContentLength = errors.New("invalid content length")
var ErrUnsupportedTransferEncoding = errors.New("transfer encoding not supported")
var ErrRequestTooLarge = errors.New("request too large")

func IsVersionSupported(httpVersion string) bool {
	return httpVersion == "1.1" || httpVersion == "1.0"
}
