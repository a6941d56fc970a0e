package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/vova616/xxhash"
)

// requestLogger renders a single access log line.  Query strings are replaced by their
// hash so that tokens passed as parameters never reach the logs.
type requestLogger struct {
	buf strings.Builder
}

func newRequestLogger() *requestLogger {
	return &requestLogger{}
}

func (r *requestLogger) write(format string, args ...interface{}) {
	fmt.Fprintf(&r.buf, format, args...)
}

func (r *requestLogger) requestType(reqType string) *requestLogger {
	r.write("%s ", reqType)
	return r
}

// request writes the path with empty segments collapsed.
func (r *requestLogger) request(request string) *requestLogger {
	path := strings.SplitN(request, "?", 2)[0]
	segments := 0
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			r.write("/%s", c)
			segments++
		}
	}
	if segments == 0 {
		r.write("/")
	}
	return r
}

func (r *requestLogger) params(request string) *requestLogger {
	parts := strings.SplitN(request, "?", 2)
	if len(parts) > 1 && parts[1] != "" {
		r.write("?%#x ", xxhash.Checksum32([]byte(parts[1])))
	} else {
		r.buf.WriteString(" ")
	}
	return r
}

func (r *requestLogger) status(status int) *requestLogger {
	r.write("%03d", status)
	return r
}

func (r *requestLogger) duration(duration time.Duration) *requestLogger {
	r.write(" in %.2fms", duration.Seconds()*1000)
	return r
}

func (r *requestLogger) render() string {
	return r.buf.String()
}
