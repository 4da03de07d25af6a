package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func clientIP(headers map[string]string) string {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.1:5555"
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return GetRealClientIP(c)
}

func TestGetRealClientIP(t *testing.T) {
	assert.Equal(t, "198.51.100.7", clientIP(map[string]string{"X-Real-IP": "198.51.100.7", "X-Forwarded-For": "203.0.113.9"}))
	assert.Equal(t, "203.0.113.9", clientIP(map[string]string{"X-Forwarded-For": "unknown, 203.0.113.9, 10.0.0.1"}))
	assert.Equal(t, "203.0.113.9", clientIP(map[string]string{"X-Real-IP": "garbage", "X-Forwarded-For": "203.0.113.9"}))
	assert.Equal(t, "192.0.2.1", clientIP(nil))
}
