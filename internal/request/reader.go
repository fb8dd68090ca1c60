package request

import (
	"errors"
	"fmt"
	"io"
)

const (
	initialBufferSize = 4096
	// MaxRequestSize bounds the bytes buffered for a single request,
	// head and body together.
	MaxRequestSize = 1 << 20
)

// Reader reads successive requests from one stream. Bytes that arrive after
// the end of a request are kept for the next call to Next.
type Reader struct {
	src    io.Reader
	buf    []byte
	bufLen int
}

func NewReader(src io.Reader) *Reader {
	return &Reader{
		src: src,
		buf: make([]byte, initialBufferSize),
	}
}

// Next parses the next request. It returns io.EOF when the stream ends
// cleanly between requests.
func (r *Reader) Next() (*Request, error) {
	rp := NewRequestParser()
	for {
		if r.bufLen > 0 {
			readN, err := rp.parse(r.buf[:r.bufLen])
			if err != nil {
				return nil, err
			}
			if rp.Done() {
				copy(r.buf, r.buf[readN:r.bufLen])
				r.bufLen -= readN
				return rp.Request, nil
			}
		}

		if err := r.grow(); err != nil {
			return nil, err
		}

		n, err := r.src.Read(r.buf[r.bufLen:])
		r.bufLen += n
		if err != nil {
			if n > 0 {
				// parse what arrived before reporting the error
				readN, perr := rp.parse(r.buf[:r.bufLen])
				if perr != nil {
					return nil, perr
				}
				if rp.Done() {
					copy(r.buf, r.buf[readN:r.bufLen])
					r.bufLen -= readN
					return rp.Request, nil
				}
			}
			if errors.Is(err, io.EOF) && r.bufLen == 0 {
				return nil, io.EOF
			}
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("unexpected %w", io.ErrUnexpectedEOF)
			}
			return nil, err
		}
	}
}

func (r *Reader) grow() error {
	if r.bufLen < len(r.buf) {
		return nil
	}
	if len(r.buf) >= MaxRequestSize {
		return ErrRequestTooLarge
	}
	next := make([]byte, min(len(r.buf)*2, MaxRequestSize))
	copy(next, r.buf[:r.bufLen])
	r.buf = next
	return nil
}

// RequestFromReader parses a single request from reader.
func RequestFromReader(reader io.Reader) (*Request, error) {
	req, err := NewReader(reader).Next()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected %w", io.ErrUnexpectedEOF)
	}
	return req, err
}
