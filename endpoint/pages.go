package endpoint

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/middleware"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
)

const wipPage = "/wip.html"

// page is a role-gated HTML view served from VIEWSDIR.
type page struct {
	Route string
	File  string
	Role  model.Role
}

var pages = []page{
	{Route: "/admin-dashboard", File: "admin/admin-dashboard.html", Role: model.RoleAdmin},
	{Route: "/doctor-dashboard", File: "doctor/doctor-dashboard.html", Role: model.RoleDoctor},
	{Route: "/doctor-patients", File: "doctor/doctor-patients.html", Role: model.RoleDoctor},
	{Route: "/doctor-logging", File: "doctor/doctor-logging.html", Role: model.RoleDoctor},
	{Route: "/student-dashboard", File: "student/student-home.html", Role: model.RoleStudent},
	{Route: "/student-log", File: "student/student-log.html", Role: model.RoleStudent},
	{Route: "/student-trends", File: "student/student-trends.html", Role: model.RoleStudent},
	{Route: "/student-profile", File: "student/student-profile.html", Role: model.RoleStudent},
}

func registerPages(r *gin.Engine) {
	r.GET("/", redirectTo(middleware.LoginPage))

	for _, p := range pages {
		r.GET(p.Route,
			middleware.Authenticate(middleware.PageRoute),
			middleware.RequireRole(p.Role),
			servePage(p.File),
		)
	}
	r.GET("/doctor-stats",
		middleware.Authenticate(middleware.PageRoute),
		middleware.RequireRole(model.RoleDoctor),
		redirectTo(wipPage),
	)

	r.NoRoute(notFound)
}

func redirectTo(location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, location)
	}
}

func servePage(file string) gin.HandlerFunc {
	return func(c *gin.Context) {
		full := filepath.Join(middleware.GetConfig(c).ViewsDir, filepath.FromSlash(file))
		if !isRegularFile(full) {
			util.Log().Error().Str("file", full).Msg("view not found")
			c.String(http.StatusNotFound, "Page not found")
			return
		}
		c.File(full)
	}
}

// notFound answers unknown API paths with JSON, serves public assets, and
// sends every other path to the login page.
func notFound(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if reqPath == "/api" || strings.HasPrefix(reqPath, "/api/") {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Endpoint not found", Err: util.ErrNotFound})
		return
	}

	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		if file, ok := publicFile(middleware.GetConfig(c).PublicDir, reqPath); ok {
			c.File(file)
			return
		}
	}

	if reqPath == middleware.LoginPage {
		c.String(http.StatusNotFound, "Login page not found")
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPage)
}

// publicFile resolves reqPath inside dir. Cleaning against "/" keeps
// ".." segments from escaping the directory.
func publicFile(dir, reqPath string) (string, bool) {
	if dir == "" {
		return "", false
	}
	clean := path.Clean("/" + reqPath)
	if clean == "/" {
		return "", false
	}
	full := filepath.Join(dir, filepath.FromSlash(clean))
	return full, isRegularFile(full)
}

func isRegularFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
