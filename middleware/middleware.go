package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jagwell/jagwell/config"
	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const (
	dbKey        = "db"
	configKey    = "config"
	cacheKey     = "cache"
	RequestIDKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

// CORSMiddleware allows the configured origins to call the API with
// credentials. With no origins configured only same-origin requests are served.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Requested-With", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}

// DatabaseMiddleware makes the shared connection pool available to handlers.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, db)
		c.Next()
	}
}

// GetDB returns the request-scoped database handle, or nil when none was injected.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbKey)
	if !ok {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok || db == nil {
		return nil
	}
	return db.WithContext(c.Request.Context())
}

// ConfigMiddleware exposes the application config to handlers.
func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(configKey, cfg)
		c.Next()
	}
}

// GetConfig returns the injected config, falling back to defaults.
func GetConfig(c *gin.Context) *config.Config {
	if v, ok := c.Get(configKey); ok {
		if cfg, ok := v.(*config.Config); ok && cfg != nil {
			return cfg
		}
	}
	return &config.Config{CookieName: "token", MaxPageLimit: 100}
}

// CacheMiddleware injects the per-engine response cache.
func CacheMiddleware(store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cacheKey, store)
		c.Next()
	}
}

// GetCache returns the injected cache or nil.
func GetCache(c *gin.Context) *cache.Cache {
	if v, ok := c.Get(cacheKey); ok {
		if store, ok := v.(*cache.Cache); ok {
			return store
		}
	}
	return nil
}

// RequestID tags each request with an id, reusing a client supplied X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
