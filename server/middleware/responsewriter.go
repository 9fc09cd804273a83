package middleware

import "net/http"

// accessRecorder captures status and body size for the access log.
type accessRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newAccessRecorder(w http.ResponseWriter) *accessRecorder {
	return &accessRecorder{ResponseWriter: w}
}

func (a *accessRecorder) WriteHeader(code int) {
	if a.status == 0 {
		a.status = code
	}
	a.ResponseWriter.WriteHeader(code)
}

func (a *accessRecorder) Write(b []byte) (int, error) {
	if a.status == 0 {
		a.status = http.StatusOK
	}
	n, err := a.ResponseWriter.Write(b)
	a.bytes += n
	return n, err
}

// Status is the written status, 200 if the handler wrote nothing.
func (a *accessRecorder) Status() int {
	if a.status == 0 {
		return http.StatusOK
	}
	return a.status
}

func (a *accessRecorder) Flush() {
	if f, ok := a.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the original writer.
func (a *accessRecorder) Unwrap() http.ResponseWriter {
	return a.ResponseWriter
}
