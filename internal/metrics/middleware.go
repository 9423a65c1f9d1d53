package metrics

import (
	"net/http"
	"strings"
	"time"
)

// responseWriter records the status code and body size of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

const jobsPrefix = "/api/v1/jobs/"

// RouteLabel maps a request path to a bounded metric label. Job ids collapse
// into "{id}" and paths outside the API become "other", so scanners probing
// random URLs cannot grow the label set.
func RouteLabel(path string) string {
	switch {
	case strings.HasPrefix(path, jobsPrefix) && len(path) > len(jobsPrefix):
		return jobsPrefix + "{id}"
	case strings.HasPrefix(path, "/api/"), path == "/metrics":
		return path
	default:
		return "other"
	}
}

// HTTPMiddleware returns middleware that records request count, latency and
// in-flight gauge per route.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			reg.RecordRequest(r.Method, RouteLabel(r.URL.Path), rw.statusCode, time.Since(start).Seconds())
		})
	}
}
