package main

import (
	"errors"
	"strconv"
)

const (
	ServerName    = "will-serv/0.0.1"
	HTTPVersion   = "HTTP/1.1"
	BodyDelimiter = "\r\n\r\n"
	CRLF          = "\r\n"
)

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrRequestTooLarge  = errors.New("request too large")
	ErrInvalidEncoding  = errors.New("invalid UTF-8")
)

// Not map[string][]string, unlike http.Header. Keys are case-sensitive.
type HTTPHeader map[string]string

type Request struct {
	Method  string
	Path    string
	Version string
	Headers HTTPHeader
	Body    string
}

// Response with a nil Body renders only the head.
type Response struct {
	Status  int
	Headers HTTPHeader
	Body    []byte
}

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusPayloadTooLarge     = 413
	StatusInternalServerError = 500
)

var statusText = map[int]string{
	StatusOK:                  "OK",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusPayloadTooLarge:     "Payload Too Large",
	StatusInternalServerError: "Internal Server Error",
}

// StatusLine returns "<code> <text>". Unknown codes fall back to 500.
func StatusLine(status int) string {
	text, ok := statusText[status]
	if !ok {
		status, text = StatusInternalServerError, statusText[StatusInternalServerError]
	}
	return strconv.Itoa(status) + " " + text
}
