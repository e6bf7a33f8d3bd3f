package middleware

import (
	"net/http"

	"github.com/ThanimaVITC/thanima-connect/internal/sessions"
	"github.com/ThanimaVITC/thanima-connect/internal/tokens"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding the verified *jwt.RegisteredClaims.
const ClaimsKey = "claims"

// AdminSession gates admin routes on a valid, unrevoked session cookie.
// Anything else is redirected to loginPath with 303 See Other.
func AdminSession(secret []byte, cookieName, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			toLogin(c, loginPath)
			return
		}
		claims, err := tokens.ParseAdminToken(secret, raw)
		if err != nil {
			logger.DebugCtx(c.Request.Context(), "admin session rejected: %v", err)
			toLogin(c, loginPath)
			return
		}
		revoked, err := sessions.IsTokenRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// fail closed when the revocation list is unreachable
			logger.WarnCtx(c.Request.Context(), "revocation check failed: %v", err)
			toLogin(c, loginPath)
			return
		}
		if revoked {
			toLogin(c, loginPath)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func toLogin(c *gin.Context, loginPath string) {
	c.Redirect(http.StatusSeeOther, loginPath)
	c.Abort()
}
