package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/util"
)

// RouteMode selects how an unauthenticated or forbidden request is answered.
type RouteMode int

const (
	// APIRoute answers with JSON status codes.
	APIRoute RouteMode = iota
	// PageRoute redirects to the login page.
	PageRoute
)

const (
	identityKey  = "identity"
	claimsKey    = "claims"
	routeModeKey = "route_mode"

	LoginPage = "/login.html"
)

// SetAuthCookie stores the session token in an httpOnly cookie living as long as the token.
func SetAuthCookie(c *gin.Context, token string) {
	cfg := GetConfig(c)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, int(util.TokenTTL/time.Second), "/", "", cfg.CookieSecure, true)
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(c *gin.Context) {
	cfg := GetConfig(c)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.CookieSecure, true)
}

// Authenticate requires a valid, unrevoked session token. On success the
// identity is available through GetIdentity.
func Authenticate(mode RouteMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(routeModeKey, mode)

		token, err := c.Cookie(GetConfig(c).CookieName)
		if err != nil || token == "" {
			rejectUnauthenticated(c, mode, errors.New("missing session token"))
			return
		}

		claims, err := util.VerifyToken(token)
		if err != nil {
			if errors.Is(err, util.ErrMissingSecret) {
				util.CallServerError(c, util.APIErrorParams{Msg: "Authentication unavailable", Err: err})
				c.Abort()
				return
			}
			ClearAuthCookie(c)
			rejectUnauthenticated(c, mode, err)
			return
		}

		revoked, err := util.IsRevoked(c.Request.Context(), claims)
		if err != nil {
			util.Log().Warn().Err(err).Str("jti", claims.ID).Msg("revocation check failed")
		}
		if revoked {
			ClearAuthCookie(c)
			rejectUnauthenticated(c, mode, errors.New("session revoked"))
			return
		}

		ident, err := claims.Identity()
		if err != nil {
			ClearAuthCookie(c)
			rejectUnauthenticated(c, mode, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(identityKey, ident)
		c.Next()
	}
}

func rejectUnauthenticated(c *gin.Context, mode RouteMode, reason error) {
	if mode == PageRoute {
		c.Redirect(http.StatusFound, LoginPage)
		c.Abort()
		return
	}
	util.CallUserNotAuthorized(c, util.APIErrorParams{
		Msg: "Authentication required",
		Err: util.ErrUnauthenticated,
	})
	util.Log().Debug().Err(reason).Str("path", c.Request.URL.Path).Msg("unauthenticated request")
	c.Abort()
}

// GetIdentity returns the authenticated principal of the request.
func GetIdentity(c *gin.Context) (util.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return util.Identity{}, false
	}
	ident, ok := v.(util.Identity)
	return ident, ok
}

// GetClaims returns the verified token claims of the request.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok
}

func getRouteMode(c *gin.Context) RouteMode {
	if v, ok := c.Get(routeModeKey); ok {
		if mode, ok := v.(RouteMode); ok {
			return mode
		}
	}
	return APIRoute
}
