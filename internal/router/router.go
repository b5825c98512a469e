package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/handler"
	"github.com/swediversity/swediversity-api/internal/middleware"
	"github.com/swediversity/swediversity-api/internal/service"
	"github.com/swediversity/swediversity-api/pkg/config"
	"github.com/swediversity/swediversity-api/pkg/logger"
	corsmiddleware "github.com/swediversity/swediversity-api/pkg/middleware/cors"
	reqidmiddleware "github.com/swediversity/swediversity-api/pkg/middleware/requestid"
)

// Deps carries everything the router needs to register routes.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *service.AuthService
	Metrics *service.MetricsService

	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	UniversityHandler *handler.UniversityHandler
	ProgramHandler    *handler.ProgramHandler
	RecordHandler     *handler.RecordHandler
	PostHandler       *handler.PostHandler
	ConsentHandler    *handler.ConsentHandler
	MetricsHandler    *handler.MetricsHandler
}

// New builds the gin engine with all middleware and routes registered.
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

	r.GET("/health", d.MetricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", d.MetricsHandler.Prometheus)

	if d.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := middleware.JWT(d.Auth)
	adminOnly := middleware.AdminOnly()

	api := r.Group(d.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", d.AuthHandler.Login)
		auth.POST("/refresh", d.AuthHandler.Refresh)
		auth.POST("/register", d.AuthHandler.Register)
		auth.POST("/resetPassword/emailRequest", d.AuthHandler.ForgotPassword)
		auth.POST("/resetPassword", d.AuthHandler.ResetPassword)
	}

	universities := api.Group("/universities")
	{
		universities.GET("", d.UniversityHandler.List)
		universities.GET("/byCity", d.UniversityHandler.ByCity)
		universities.GET("/search", d.UniversityHandler.Search)
		universities.GET("/name/:name", d.UniversityHandler.ByName)
		universities.GET("/:id", d.UniversityHandler.Get)
		universities.GET("/:id/interest", d.UniversityHandler.Interest)

		universities.POST("", authRequired, adminOnly, d.UniversityHandler.Create)
		universities.PATCH("/:id", authRequired, adminOnly, d.UniversityHandler.Patch)
		universities.DELETE("/:id", authRequired, adminOnly, d.UniversityHandler.Delete)
	}

	programs := api.Group("/programs")
	{
		programs.GET("", d.ProgramHandler.List)
		programs.GET("/byPrerequisites", d.ProgramHandler.ByPrerequisites)
		programs.GET("/byUniversity", d.ProgramHandler.ByUniversity)
		programs.GET("/search", d.ProgramHandler.Search)
		programs.GET("/:id", d.ProgramHandler.Get)
		programs.GET("/:id/tuition", d.ProgramHandler.Tuition)
		programs.GET("/:id/interest", d.ProgramHandler.Interest)

		programs.POST("", authRequired, adminOnly, d.ProgramHandler.Create)
		programs.PATCH("/:id", authRequired, adminOnly, d.ProgramHandler.Patch)
		programs.DELETE("/:id", authRequired, adminOnly, d.ProgramHandler.Delete)
	}

	records := api.Group("/records")
	{
		records.GET("/stats", d.RecordHandler.Stats)
		records.GET("/export", authRequired, adminOnly, d.RecordHandler.Export)
		records.GET("/:programName", d.RecordHandler.ListByProgram)

		records.POST("", authRequired, adminOnly, d.RecordHandler.Create)
		records.DELETE("/:id", authRequired, adminOnly, d.RecordHandler.Delete)
	}

	users := api.Group("/users")
	{
		users.GET("/userName/:userName", d.UserHandler.ByUserName)

		users.GET("/all", authRequired, adminOnly, d.UserHandler.List)
		users.GET("/id/:id", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.Get)
		users.GET("/:id/grade", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.Grade)
		users.POST("/modify/:id/meritPoint", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.SetMeritPoint)
		users.POST("/modify/:id/prerequisites", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.SetPrerequisites)

		users.GET("/:id/programs", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.ProgramInterests)
		users.POST("/:id/programs", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.AddProgramInterest)
		users.DELETE("/:id/programs", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.RemoveProgramInterest)
		users.GET("/:id/universities", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.UniversityInterests)
		users.POST("/:id/universities", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.AddUniversityInterest)
		users.DELETE("/:id/universities", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.RemoveUniversityInterest)

		users.DELETE("/:id", authRequired, middleware.SelfOrAdmin("id"), d.UserHandler.Delete)
	}

	posts := api.Group("/posts", authRequired)
	{
		posts.GET("/contentType/:contentType", d.PostHandler.ListByKind)
		posts.GET("/contentId/:id", d.PostHandler.Get)
		posts.GET("/userId/:userId", d.PostHandler.ListByAuthor)
		posts.POST("/contentType/:contentType", d.PostHandler.Create)
		posts.POST("/adminContent", adminOnly, d.PostHandler.CreateAdmin)
		posts.DELETE("/contentId/:id", d.PostHandler.Delete)
	}

	consents := api.Group("/consents")
	{
		consents.GET("/:id", d.ConsentHandler.Get)
		consents.POST("", authRequired, d.ConsentHandler.Create)
	}

	return r
}
