package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/srp-api/api/swagger"
	"github.com/noah-isme/srp-api/internal/handler"
	"github.com/noah-isme/srp-api/internal/middleware"
	"github.com/noah-isme/srp-api/internal/service"
	"github.com/noah-isme/srp-api/pkg/config"
	"github.com/noah-isme/srp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/srp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/srp-api/pkg/middleware/requestid"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *service.AuthService
	Metrics *service.MetricsService

	AuthHandler    *handler.AuthHandler
	StudentHandler *handler.StudentHandler
	ResultHandler  *handler.ResultHandler
	AuditHandler   *handler.AuditHandler
	MetricsHandler *handler.MetricsHandler
}

// New assembles the gin engine with the full middleware chain and routes.
func New(d Deps) *gin.Engine {
	if d.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.Metrics))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "secure result platform", "status": "running"})
	})
	r.GET("/metrics", d.MetricsHandler.Prometheus)

	if d.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.Config.APIPrefix)
	api.GET("/health", d.MetricsHandler.Health)

	auth := api.Group("/auth")
	auth.POST("/register-admin", d.AuthHandler.RegisterAdmin)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", middleware.JWT(d.Auth), d.AuthHandler.Me)

	admin := api.Group("/admin", middleware.JWT(d.Auth), middleware.RequireAdmin())
	admin.POST("/students", d.StudentHandler.Register)
	admin.GET("/students", d.StudentHandler.List)
	admin.DELETE("/students/:matric", d.StudentHandler.Delete)
	admin.POST("/results", d.ResultHandler.Upload)
	admin.GET("/results", d.ResultHandler.ListAll)
	admin.GET("/results/export", d.ResultHandler.Export)
	admin.PUT("/results/:id", d.ResultHandler.Update)
	admin.DELETE("/results/:id", d.ResultHandler.Delete)
	admin.GET("/audit-logs", d.AuditHandler.List)

	student := api.Group("/student", middleware.JWT(d.Auth))
	student.GET("/results/:matric", middleware.RequireAdminOrOwner("matric"), d.ResultHandler.StudentResults)

	return r
}
