package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Date headers use RFC 2822 formatting.
const dateLayout = time.RFC1123Z

// now is swapped in tests.
var now = time.Now

func baseHeaders() HTTPHeader {
	return HTTPHeader{
		"Server": ServerName,
		"Date":   now().Format(dateLayout),
	}
}

// NewPageResponse returns a 200 carrying body, with Content-Type and
// Content-Length set.
func NewPageResponse(body []byte) *Response {
	h := baseHeaders()
	h["Content-Type"] = "text/html; charset=UTF-8"
	h["Content-Length"] = strconv.Itoa(len(body))
	return &Response{Status: StatusOK, Headers: h, Body: body}
}

func NewErrorResponse(status int) *Response {
	return &Response{Status: status, Headers: baseHeaders()}
}

func NewMethodNotAllowedResponse(allowed []string) *Response {
	res := NewErrorResponse(StatusMethodNotAllowed)
	res.Headers["Allow"] = strings.Join(allowed, ", ")
	return res
}

// RenderResponse renders res into wire format. It never adds headers on
// its own; callers set Content-Length when there is a body.
func RenderResponse(res *Response) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s%s", HTTPVersion, StatusLine(res.Status), CRLF)
	for k, v := range res.Headers {
		fmt.Fprintf(&b, "%s: %s%s", k, v, CRLF)
	}
	b.WriteString(CRLF)
	if res.Body != nil {
		b.Write(res.Body)
	}
	return b.Bytes()
}

func WriteResponse(w io.Writer, res *Response) error {
	buf := RenderResponse(res)
	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("write response: %w", io.ErrShortWrite)
	}
	return nil
}
