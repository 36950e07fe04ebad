package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRequestLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	util.InitLoggerWithWriter("debug", "production", buf)
	t.Cleanup(func() { util.InitLoggerWithWriter("info", "test", &bytes.Buffer{}) })
	return buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestLogger_BasicRequest(t *testing.T) {
	buf := captureRequestLog(t)
	setGinTestMode()
	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	r.GET("/api/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items/7?x=1", nil))

	entry := lastLogLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/items/7", entry["path"])
	assert.Equal(t, "/api/items/:id", entry["route"])
	assert.EqualValues(t, 200, entry["status"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), entry["request_id"])
}

func TestRequestLogger_WithIdentity(t *testing.T) {
	buf := captureRequestLog(t)
	setGinTestMode()
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/me", func(c *gin.Context) {
		c.Set(identityKey, util.Identity{ID: 9, Username: "doc", Role: "Doctor"})
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))

	entry := lastLogLine(t, buf)
	assert.EqualValues(t, 9, entry["user_id"])
	assert.Equal(t, "Doctor", entry["role"])
}

func TestRequestLogger_ErrorStatusLevels(t *testing.T) {
	buf := captureRequestLog(t)
	setGinTestMode()
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, "warn", lastLogLine(t, buf)["level"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, "error", lastLogLine(t, buf)["level"])
}
