package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/domain"
)

// HeaderUserID carries the caller id set by the upstream session layer.
const HeaderUserID = "X-User-ID"

// Directory resolves user ids into users.
type Directory interface {
	Lookup(ctx context.Context, userID string) (domain.User, error)
}

// Middleware resolves the X-User-ID header into a principal in the request context.
//
// Requests without the header continue anonymously. It aborts with 401 for unknown users.
func Middleware(dir Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.Next()
			return
		}

		user, err := dir.Lookup(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
				return
			}
			slog.Error("failed to resolve user", "error", err, "user_id", userID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}

		ctx := WithPrincipal(c.Request.Context(), domain.Principal{UserID: user.ID, Role: user.Role})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
