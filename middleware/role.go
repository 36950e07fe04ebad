package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
)

// Authorize reports ErrForbidden unless the identity's role is one of allowed.
func Authorize(ident util.Identity, allowed []model.Role) error {
	for _, role := range allowed {
		if ident.Role == string(role) {
			return nil
		}
	}
	return util.ErrForbidden
}

// RequireRole gates a route group to the given roles. It must run after Authenticate.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := append([]model.Role(nil), roles...)
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	resource := strings.Join(names, "|")

	return func(c *gin.Context) {
		ident, ok := GetIdentity(c)
		if !ok {
			rejectUnauthenticated(c, getRouteMode(c), util.ErrUnauthenticated)
			return
		}
		if err := Authorize(ident, allowed); err != nil {
			util.LogUnauthorizedAccess(GetDB(c), fmt.Sprintf("%d", ident.ID), ident.Username, c.ClientIP(),
				c.Request.URL.Path, fmt.Sprintf("role %s not in %s", ident.Role, resource))
			if getRouteMode(c) == PageRoute {
				c.String(http.StatusForbidden, "Access denied: insufficient role")
			} else {
				util.CallForbidden(c, util.APIErrorParams{Msg: "Access denied: insufficient role", Err: err})
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
