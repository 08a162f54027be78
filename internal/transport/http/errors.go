package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/domain"
)

var statusByError = []struct {
	err    error
	status int
}{
	{domain.ErrNotSignedIn, http.StatusUnauthorized},
	{domain.ErrNotAssigned, http.StatusForbidden},
	{domain.ErrRoleNotPermitted, http.StatusForbidden},
	{domain.ErrQuizNotFound, http.StatusNotFound},
	{domain.ErrAttemptNotFound, http.StatusNotFound},
	{domain.ErrSubmissionNotFound, http.StatusNotFound},
	{domain.ErrQuizInactive, http.StatusConflict},
	{domain.ErrAttemptNotInProgress, http.StatusConflict},
	{domain.ErrAttemptAlreadyStarted, http.StatusConflict},
	{domain.ErrAttemptComplete, http.StatusConflict},
	{domain.ErrAttemptIncomplete, http.StatusConflict},
	{domain.ErrAttemptAlreadyPersisted, http.StatusConflict},
	{domain.ErrNoMatchingQuestions, http.StatusUnprocessableEntity},
	{domain.ErrNoActiveSelection, http.StatusUnprocessableEntity},
	{domain.ErrOptionNotFound, http.StatusUnprocessableEntity},
}

// statusFor maps a use case error to an HTTP status and a message safe to show the user.
func statusFor(err error) (int, string) {
	for _, entry := range statusByError {
		if errors.Is(err, entry.err) {
			return entry.status, entry.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
