package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

const readChunkSize = 4096

// RequestReader reads one request head from a connection into a buffer it
// keeps between calls. Only the bytes returned by the latest Read are ever
// handed out.
type RequestReader struct {
	buf     []byte
	maxSize int
}

func NewRequestReader(maxSize int) *RequestReader {
	return &RequestReader{
		buf:     make([]byte, 0, min(readChunkSize, maxSize)),
		maxSize: maxSize,
	}
}

// ReadRequest reads from r until the head/body delimiter shows up, the peer
// closes or maxSize bytes have been read. The returned slice aliases the
// reader's buffer and is valid until the next call.
func (rr *RequestReader) ReadRequest(r io.Reader) ([]byte, error) {
	buf := rr.buf[:0]
	defer func() { rr.buf = buf[:0] }()

	for {
		if len(buf) >= rr.maxSize {
			return buf, ErrRequestTooLarge
		}
		if len(buf) == cap(buf) {
			grow := min(max(cap(buf), readChunkSize), rr.maxSize-len(buf))
			buf = append(buf, make([]byte, grow)...)[:len(buf)]
		}
		scanFrom := max(0, len(buf)-len(BodyDelimiter)+1)
		n, err := r.Read(buf[len(buf):min(cap(buf), rr.maxSize)])
		buf = buf[:len(buf)+n]
		if bytes.Contains(buf[scanFrom:], []byte(BodyDelimiter)) {
			return buf, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, fmt.Errorf("read request: %w", err)
		}
	}
}

// ParseRequest splits raw once on the head/body delimiter and parses the
// request line and headers. Anything after the delimiter is the body.
func ParseRequest(raw string) (*Request, error) {
	head, body, ok := strings.Cut(raw, BodyDelimiter)
	if !ok {
		return nil, fmt.Errorf("%w: no head/body delimiter", ErrMalformedRequest)
	}
	lines := strings.Split(head, "\n")

	req := &Request{Body: body}
	if err := parseRequestLine(req, trimCR(lines[0])); err != nil {
		return nil, err
	}
	headers, err := parseHeaders(lines[1:])
	if err != nil {
		return nil, err
	}
	req.Headers = headers
	return req, nil
}

func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}

func parseRequestLine(req *Request, line string) error {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
		return fmt.Errorf("%w: invalid request line %q", ErrMalformedRequest, line)
	}
	req.Method = fields[0]
	req.Path = fields[1]
	// The version is optional and never used.
	if len(fields) == 3 {
		req.Version = fields[2]
	}
	return nil
}

// Last occurrence of a key wins.
func parseHeaders(lines []string) (HTTPHeader, error) {
	headers := make(HTTPHeader, len(lines))
	for _, line := range lines {
		line = trimCR(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: invalid header %q", ErrMalformedRequest, line)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}
