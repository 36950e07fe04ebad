package endpoint

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/config"
	"github.com/jagwell/jagwell/docs"
	"github.com/jagwell/jagwell/middleware"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	cache "github.com/patrickmn/go-cache"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const (
	cacheDefaultTTL      = 5 * time.Minute
	cacheCleanupInterval = 10 * time.Minute
)

// SetupRouter builds the engine with every API route and page.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	util.UseJSONFieldNames()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		middleware.ConfigMiddleware(cfg),
		middleware.DatabaseMiddleware(db),
		middleware.CacheMiddleware(cache.New(cacheDefaultTTL, cacheCleanupInterval)),
	)

	if !cfg.IsProduction() {
		docs.SwaggerInfo.Title = cfg.AppName + " API"
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{}), Login)
		auth.POST("/logout", Logout)
		auth.GET("/me", middleware.Authenticate(middleware.APIRoute), Me)
	}

	admin := api.Group("/admin", middleware.Authenticate(middleware.APIRoute), middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/users", ListUsers)
		admin.GET("/users/:id", GetUser)
		admin.POST("/users", CreateUser)
		admin.PUT("/users/:id", UpdateUser)
		admin.DELETE("/users/:id", DeleteUser)

		admin.PUT("/patients/:id", UpdatePatient)
		admin.PUT("/wellness/:id", UpdateWellnessRecord)
		admin.PUT("/treatments/:id", UpdateTreatment)
		admin.DELETE("/treatments/:id", DeleteTreatment)
	}

	doctor := api.Group("/doctor", middleware.Authenticate(middleware.APIRoute), middleware.RequireRole(model.RoleDoctor, model.RoleAdmin))
	{
		doctor.GET("/patients", ListPatients)
		doctor.GET("/patients/dropdown", ListPatientOptions)
		doctor.GET("/patients/:id", GetPatient)
		doctor.POST("/patients", CreatePatient)
		doctor.GET("/patient/:id/records", ListPatientRecords)
		doctor.GET("/patient/:id/treatments", ListPatientTreatments)

		doctor.POST("/wellness", CreateWellnessRecord)
		doctor.PUT("/wellness/:id", UpdateWellnessRecord)

		doctor.GET("/treatments", ListTreatments)
		doctor.POST("/treatments", CreateTreatment)
		doctor.PUT("/treatments/:id", UpdateTreatment)

		doctor.GET("/record-treatments", ListRecordTreatments)
		doctor.POST("/record-treatments", CreateRecordTreatment)
		doctor.PUT("/record-treatments/:id", UpdateRecordTreatment)
		doctor.DELETE("/record-treatments/:id", DeleteRecordTreatment)
	}

	api.POST("/wellness", middleware.Authenticate(middleware.APIRoute), middleware.RequireRole(model.RoleStudent), LogStudentWellness)

	registerPages(r)
	return r
}
