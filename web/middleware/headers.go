package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"

	"devserve/config"
)

// InjectHeaders creates middleware that sets headers on every response just
// before the status line is written. Values set earlier in the chain under the
// same name are replaced, so error paths that clear headers still carry them.
func InjectHeaders(headers []config.Header) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&headerWriter{ResponseWriter: w, headers: headers}, r)
		})
	}
}

// ResponseHeader returns headers as an http.Header, for responses written
// outside the wrapped writer such as a websocket handshake.
func ResponseHeader(headers []config.Header) http.Header {
	h := make(http.Header, len(headers))
	for _, header := range headers {
		h.Set(header.Name, header.Value)
	}
	return h
}

type headerWriter struct {
	http.ResponseWriter
	headers     []config.Header
	wroteHeader bool
}

func (hw *headerWriter) WriteHeader(code int) {
	if !hw.wroteHeader {
		hw.inject()
	}
	hw.ResponseWriter.WriteHeader(code)
}

func (hw *headerWriter) Write(b []byte) (int, error) {
	if !hw.wroteHeader {
		hw.WriteHeader(http.StatusOK)
	}
	return hw.ResponseWriter.Write(b)
}

func (hw *headerWriter) inject() {
	hw.wroteHeader = true
	h := hw.ResponseWriter.Header()
	for _, header := range hw.headers {
		h.Set(header.Name, header.Value)
	}
}

// Flush implements http.Flusher.
func (hw *headerWriter) Flush() {
	if !hw.wroteHeader {
		hw.WriteHeader(http.StatusOK)
	}
	if f, ok := hw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// ReadFrom implements io.ReaderFrom so http.ServeContent keeps the sendfile
// path of the underlying connection.
func (hw *headerWriter) ReadFrom(src io.Reader) (int64, error) {
	if !hw.wroteHeader {
		hw.WriteHeader(http.StatusOK)
	}
	if rf, ok := hw.ResponseWriter.(io.ReaderFrom); ok {
		return rf.ReadFrom(src)
	}
	return io.Copy(hw.ResponseWriter, src)
}

// Hijack implements http.Hijacker so websocket upgrades pass through.
func (hw *headerWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := hw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (hw *headerWriter) Unwrap() http.ResponseWriter {
	return hw.ResponseWriter
}
