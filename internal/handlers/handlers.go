package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskfollowup/internal/repository"
	"taskfollowup/internal/services"
	"taskfollowup/internal/utils"
)

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, log logrus.FieldLogger, status int, message string, err error) {
	log.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
	}).Errorf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// statusFor maps domain errors to HTTP statuses
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrHistoryReminderNotFound):
		return http.StatusNotFound, "History reminder not found"
	case errors.Is(err, services.ErrUnsupportedDelimiter):
		return http.StatusBadRequest, "Unsupported delimiter, expected comma, semicolon or tab"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// RequestLogger logs one line per request with the real client IP
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": utils.GetRealClientIP(c),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("Request failed")
			return
		}
		entry.Debug("Request handled")
	}
}
