package middleware

import (
	"encoding/json"
	"net"
	"net/http"
)

// responseData статус и размер ответа, снятые обёрткой.
type responseData struct {
	status int
	size   int
}

type recordingResponseWriter struct {
	http.ResponseWriter
	data        *responseData
	wroteHeader bool
}

func newRecorder(w http.ResponseWriter) *recordingResponseWriter {
	return &recordingResponseWriter{ResponseWriter: w, data: &responseData{status: http.StatusOK}}
}

func (r *recordingResponseWriter) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	size, err := r.ResponseWriter.Write(b)
	r.data.size += size
	return size, err
}

func (r *recordingResponseWriter) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.data.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *recordingResponseWriter) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *recordingResponseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// writeError ответ в общем JSON-конверте.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

// ClientIP адрес клиента из RemoteAddr. Заголовки прокси здесь не читаются,
// за доверенным прокси RemoteAddr подменяет chi RealIP (TRUSTED_PROXY).
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
