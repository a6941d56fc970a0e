package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerLine(t *testing.T) {
	line := newRequestLogger().
		requestType("POST").
		request("//webhook//notifications/").
		params("/webhook/notifications").
		status(202).
		duration(1500 * time.Microsecond).
		render()
	assert.Equal(t, "POST /webhook/notifications 202 in 1.50ms", line)
}

func TestRequestLoggerRoot(t *testing.T) {
	line := newRequestLogger().request("/").render()
	assert.Equal(t, "/", line)
}

func TestRequestLoggerHashesParams(t *testing.T) {
	line := newRequestLogger().params("/webhook?token=secret").render()
	assert.True(t, strings.HasPrefix(line, "?0x"))
	assert.NotContains(t, line, "secret")
}

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Logger(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/webhook/status", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.True(t, strings.HasPrefix(entries[0].Message, "GET /webhook/status 200"))
	assert.Equal(t, int64(2), entries[0].ContextMap()["bytes"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
