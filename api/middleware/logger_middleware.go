package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// Logger creates a middleware wrapper around a zap Sugared logger that logs
// HTTP requests.
func Logger(l *zap.SugaredLogger) func(next http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			lw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			h.ServeHTTP(lw, r)
			status := lw.Status()
			if status == 0 {
				status = http.StatusOK
			}
			line := newRequestLogger().
				requestType(r.Method).
				request(r.URL.String()).
				params(r.URL.String()).
				status(status).
				duration(time.Since(t1)).
				render()
			fields := []interface{}{
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
				"bytes", lw.BytesWritten(),
			}
			if status < 500 {
				l.Infow(line, fields...)
			} else {
				l.Warnw(line, fields...)
			}
		}
		return http.HandlerFunc(fn)
	}
}
