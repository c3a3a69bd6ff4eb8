package api

import (
	"github.com/gin-gonic/gin"

	"github.com/memestream/memestream/internal/auth"
)

// requireSelf rejects requests that act on an identity other than the
// verified caller's. When no verifier is configured there is no
// principal and the check passes (dev mode).
func requireSelf(c *gin.Context, email string) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return nil
	}
	if principal.Email != email {
		return Forbidden("operation not permitted for another user")
	}
	return nil
}
