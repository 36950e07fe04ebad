package endpoint

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/middleware"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Role string `json:"role" example:"Student"`
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with username and password. The session token is set as an httpOnly cookie.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Username and password required"
// @Failure      401 {object} util.APIResponse "Invalid credentials"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Router       /auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Username and password required") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ip, agent := c.ClientIP(), c.Request.UserAgent()
	username := strings.TrimSpace(req.Username)

	var user model.User
	err := db.Where("U_Username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.LogLoginFailure(db, username, ip, agent, "user not found")
		respondInvalidCredentials(c)
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load user", Err: err})
		return
	}

	if !util.CheckPassword(user.Password, req.Password) {
		util.LogLoginFailure(db, username, ip, agent, "invalid password")
		respondInvalidCredentials(c)
		return
	}

	token, _, err := util.IssueToken(util.Identity{ID: user.ID, Username: user.Username, Role: string(user.Role)})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create session", Err: err})
		return
	}

	middleware.SetAuthCookie(c, token)
	if err := middleware.ResetRateLimit(c.Request.Context(), ip, c.Request.URL.Path); err != nil {
		util.Log().Warn().Err(err).Msg("failed to reset login rate limit")
	}
	util.LogLoginSuccess(db, user.ID, user.Username, ip, agent)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Role: string(user.Role)},
	})
}

func respondInvalidCredentials(c *gin.Context) {
	util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid credentials", Err: util.ErrUnauthenticated})
}

// Logout godoc
// @Summary      Logout
// @Description  Clear the session cookie and revoke its token
// @Tags         Authentication
// @Produce      json
// @Success      200 {object} util.APIResponse "Logged out"
// @Router       /auth/logout [post]
func Logout(c *gin.Context) {
	cfg := middleware.GetConfig(c)
	if token, err := c.Cookie(cfg.CookieName); err == nil && token != "" {
		if claims, err := util.VerifyToken(token); err == nil {
			if err := util.RevokeToken(c.Request.Context(), claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
				util.Log().Warn().Err(err).Str("jti", claims.ID).Msg("failed to revoke token")
			}
			if ident, err := claims.Identity(); err == nil {
				util.LogLogout(middleware.GetDB(c), ident.ID, ident.Username, c.ClientIP(), c.Request.UserAgent())
			}
		}
	}

	middleware.ClearAuthCookie(c)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logged out"})
}

// Me godoc
// @Summary      Current user
// @Description  Return the identity carried by the session token
// @Tags         Authentication
// @Produce      json
// @Success      200 {object} util.APIResponse{data=util.Identity} "Current user"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /auth/me [get]
func Me(c *gin.Context) {
	ident, ok := identityOrRespond(c)
	if !ok {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Current user", Data: ident})
}
