package response

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yanshuy/vhost-server/internal/headers"
)

type writeStatus int

const (
	StateInitial writeStatus = iota
	StateWroteStatus
	StateWroteHeader
	StateWroteBody
)

// Writer serializes one HTTP/1.1 response. Status line, header block and
// body must be written in that order, each exactly once.
type Writer struct {
	writer io.Writer
	writeStatus
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer:      w,
		writeStatus: StateInitial,
	}
}

func (w *Writer) WriteStatus(statusCode int) error {
	if w.writeStatus != StateInitial {
		return ErrStatusAlreadyWritten
	}

	reason := http.StatusText(statusCode)
	if reason == "" {
		return ErrBadStatusCode
	}

	w.writeStatus = StateWroteStatus
	_, err := fmt.Fprintf(w.writer, "HTTP/1.1 %d %s\r\n", statusCode, reason)
	return err
}

// WriteHeaders writes h verbatim in order and terminates the header block.
func (w *Writer) WriteHeaders(h headers.List) error {
	if w.writeStatus != StateWroteStatus {
		return ErrOutOfOrder
	}

	hLines := []byte{}
	for _, f := range h {
		hLines = fmt.Appendf(hLines, "%s: %s\r\n", f.Name, f.Value)
	}
	hLines = append(hLines, "\r\n"...)

	w.writeStatus = StateWroteHeader
	_, err := w.writer.Write(hLines)
	return err
}

func (w *Writer) WriteBody(p []byte) error {
	if w.writeStatus != StateWroteHeader {
		return ErrOutOfOrder
	}
	w.writeStatus = StateWroteBody
	if len(p) == 0 {
		return nil
	}
	_, err := w.writer.Write(p)
	return err
}

// WriteResponse writes resp in full.
func (w *Writer) WriteResponse(resp *Response) error {
	if err := w.WriteStatus(resp.StatusCode); err != nil {
		return err
	}
	if err := w.WriteHeaders(resp.Headers); err != nil {
		return err
	}
	return w.WriteBody(resp.Body)
}

// Write serializes resp to dst.
func Write(dst io.Writer, resp *Response) error {
	return NewWriter(dst).WriteResponse(resp)
}

var (
	ErrStatusAlreadyWritten = errors.New("status already written")
	ErrBadStatusCode        = errors.New("bad status code")
	ErrOutOfOrder           = errors.New("response parts written out of order")
)
