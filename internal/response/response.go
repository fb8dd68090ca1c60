package response

import (
	"net/http"
	"strconv"

	"github.com/yanshuy/vhost-server/internal/headers"
	"github.com/yanshuy/vhost-server/internal/static"
)

const (
	ContentType   = "content-type"
	ContentLength = "content-length"
	Connection    = "connection"
)

// Response is a complete response held in memory.
type Response struct {
	StatusCode int
	Headers    headers.List
	Body       []byte
}

// OK carries a file. The content headers come first, followed by extra in
// the order given; duplicate names are kept.
func OK(file *static.FileData, extra headers.List) *Response {
	h := make(headers.List, 0, 2+len(extra))
	h.Add(ContentType, file.MIMEType)
	h.Add(ContentLength, strconv.Itoa(file.Length))
	h.Append(extra)
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    h,
		Body:       file.Body,
	}
}

func NotFound() *Response {
	return canned(http.StatusNotFound, "Not Found")
}

func InternalError() *Response {
	return canned(http.StatusInternalServerError, "Internal Server Error")
}

// BadRequest answers a request that could not be framed.
func BadRequest() *Response {
	return canned(http.StatusBadRequest, "Bad Request")
}

func canned(code int, body string) *Response {
	var h headers.List
	h.Add(ContentType, "text/plain")
	h.Add(ContentLength, strconv.Itoa(len(body)))
	return &Response{
		StatusCode: code,
		Headers:    h,
		Body:       []byte(body),
	}
}
