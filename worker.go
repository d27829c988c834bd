package main

import (
	"errors"
	"net"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

type closeReader interface {
	CloseRead() error
}

type closeWriter interface {
	CloseWrite() error
}

type flusher interface {
	Flush() error
}

type WorkerOptions struct {
	AllowedMethods []string
	MaxRequestSize int
	ReadTimeout    time.Duration
}

// Worker serves the connections of one queue, one at a time and in order.
type Worker struct {
	id        int
	queue     <-chan net.Conn
	resources *ResourceMap
	allowed   []string
	timeout   time.Duration
	reader    *RequestReader
	log       zerolog.Logger

	// per connection
	conn net.Conn
	raw  []byte
	req  *Request
	res  *Response
	clog zerolog.Logger
}

type stateFunc func(*Worker) stateFunc

func NewWorker(id int, queue <-chan net.Conn, resources *ResourceMap, opts WorkerOptions, log zerolog.Logger) *Worker {
	return &Worker{
		id:        id,
		queue:     queue,
		resources: resources,
		allowed:   opts.AllowedMethods,
		timeout:   opts.ReadTimeout,
		reader:    NewRequestReader(opts.MaxRequestSize),
		log:       log.With().Int("worker", id).Logger(),
	}
}

// Run serves connections until the queue is closed.
func (w *Worker) Run() {
	for conn := range w.queue {
		w.Serve(conn)
	}
	w.log.Error().Msg("connection queue closed")
}

// Serve handles one connection and closes it. The worker takes the
// ownership of |conn|.
func (w *Worker) Serve(conn net.Conn) {
	w.conn = conn
	w.clog = w.log.With().Str("remote", remoteAddr(conn)).Logger()
	defer func() {
		if r := recover(); r != nil {
			w.clog.Error().Interface("panic", r).Msg("connection handler panicked")
			closeConnection(w)
		}
		w.conn, w.raw, w.req, w.res = nil, nil, nil, nil
	}()

	for state := readRequest; state != nil; {
		state = state(w)
	}
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}

func (w *Worker) isAllowed(method string) bool {
	for _, m := range w.allowed {
		if m == method {
			return true
		}
	}
	return false
}

// state funcs

func readRequest(w *Worker) stateFunc {
	if w.timeout > 0 {
		if err := w.conn.SetReadDeadline(time.Now().Add(w.timeout)); err != nil {
			w.clog.Warn().Err(err).Msg("set read deadline")
		}
	}
	raw, err := w.reader.ReadRequest(w.conn)
	switch {
	case errors.Is(err, ErrRequestTooLarge):
		w.clog.Warn().Int("bytes", len(raw)).Msg("request too large")
		w.res = NewErrorResponse(StatusPayloadTooLarge)
		return sendResponse
	case err != nil:
		w.clog.Error().Err(err).Msg("read failed, dropping connection")
		return closeConnection
	}
	if len(raw) == 0 {
		w.clog.Debug().Msg("peer closed without sending, dropping connection")
		return closeConnection
	}
	if !utf8.Valid(raw) {
		w.clog.Error().Err(ErrInvalidEncoding).Msg("dropping connection")
		return closeConnection
	}
	w.raw = raw
	return parseRequest
}

func parseRequest(w *Worker) stateFunc {
	req, err := ParseRequest(string(w.raw))
	if err != nil {
		w.clog.Warn().Err(err).Msg("bad request")
		w.res = NewErrorResponse(StatusBadRequest)
		return sendResponse
	}
	w.req = req
	return resolveResource
}

func resolveResource(w *Worker) stateFunc {
	if !w.isAllowed(w.req.Method) {
		w.res = NewMethodNotAllowedResponse(w.allowed)
		return sendResponse
	}
	body, ok := w.resources.Resolve(w.req.Path)
	if !ok {
		w.res = NewErrorResponse(StatusNotFound)
		return sendResponse
	}
	w.res = NewPageResponse(body)
	return sendResponse
}

func sendResponse(w *Worker) stateFunc {
	ev := w.clog.Info().Int("status", w.res.Status)
	if w.req != nil {
		ev = ev.Str("method", w.req.Method).Str("path", w.req.Path)
	}
	ev.Msg("response")

	if err := WriteResponse(w.conn, w.res); err != nil {
		w.clog.Error().Err(err).Msg("send response")
	}
	if f, ok := w.conn.(flusher); ok {
		if err := f.Flush(); err != nil {
			w.clog.Error().Err(err).Msg("flush")
		}
	}
	return closeConnection
}

// closeConnection shuts down both directions and releases the connection,
// whatever happened before.
func closeConnection(w *Worker) stateFunc {
	if cr, ok := w.conn.(closeReader); ok {
		if err := cr.CloseRead(); err != nil {
			w.clog.Debug().Err(err).Msg("shutdown read")
		}
	}
	if cw, ok := w.conn.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			w.clog.Debug().Err(err).Msg("shutdown write")
		}
	}
	if err := w.conn.Close(); err != nil {
		w.clog.Warn().Err(err).Msg("close")
	}
	return nil
}
