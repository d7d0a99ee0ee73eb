package router

import (
	"log/slog"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/taskhub-api/internal/config"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/handlers"
	"github.com/yukikurage/taskhub-api/internal/middleware"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/services"
	"github.com/yukikurage/taskhub-api/internal/token"
	"gorm.io/gorm"
)

// Dependencies are the long-lived collaborators the router wires together.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Blacklist token.Blacklist
	Logger    *slog.Logger
}

var registerValidator sync.Once

// New builds the gin engine with every route mounted at the root and again
// under /api.
func New(deps Dependencies) *gin.Engine {
	registerValidator.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(apierrors.JSONTagName)
		}
	})

	cfg := deps.Config
	logger := deps.Logger

	userRepo := repository.NewUserRepository(deps.DB)
	teamRepo := repository.NewTeamRepository(deps.DB)
	taskRepo := repository.NewOwnedRepository[models.Task](deps.DB, "creator_id", "title")
	projectRepo := repository.NewOwnedRepository[models.Project](deps.DB, "created_by", "name")

	issuer := token.NewIssuer(cfg.Auth)
	authenticator := services.NewAuthenticator(issuer, deps.Blacklist, userRepo, cfg.Auth.AccessCookieName, logger)
	authService := services.NewAuthService(userRepo, issuer, deps.Blacklist, cfg.Auth, logger)

	authHandler := handlers.NewAuthHandler(authService, cfg.Auth, logger)
	teamHandler := handlers.NewTeamHandler(services.NewTeamService(teamRepo), cfg.Pagination, logger)
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(taskRepo), cfg.Pagination, logger)
	projectHandler := handlers.NewProjectHandler(services.NewProjectService(projectRepo, teamRepo), cfg.Pagination, logger)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(authenticator)
	optionalAuth := middleware.OptionalAuth(authenticator)

	for _, prefix := range []string{"", "/api"} {
		api := r.Group(prefix)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", optionalAuth, authHandler.Logout)
			auth.POST("/token/refresh", authHandler.RefreshToken)
			auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
			auth.GET("/profile", requireAuth, authHandler.GetProfile)
			auth.PATCH("/profile", requireAuth, authHandler.UpdateProfile)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/profile", authHandler.GetProfile)
			users.PATCH("/profile", authHandler.UpdateProfile)
		}

		// Team routes (protected)
		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teamID := middleware.RequireResourceID(handlers.TeamNotFoundMessage)
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("/:id", teamID, teamHandler.GetTeam)
			teams.PUT("/:id", teamID, teamHandler.ReplaceTeam)
			teams.PATCH("/:id", teamID, teamHandler.PatchTeam)
			teams.DELETE("/:id", teamID, teamHandler.DeleteTeam)
			teams.GET("/:id/members", teamID, teamHandler.ListMembers)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			taskID := middleware.RequireResourceID(handlers.TaskNotFoundMessage)
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskID, taskHandler.GetTask)
			tasks.PUT("/:id", taskID, taskHandler.ReplaceTask)
			tasks.PATCH("/:id", taskID, taskHandler.PatchTask)
			tasks.DELETE("/:id", taskID, taskHandler.DeleteTask)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projectID := middleware.RequireResourceID(handlers.ProjectNotFoundMessage)
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectID, projectHandler.GetProject)
			projects.PUT("/:id", projectID, projectHandler.ReplaceProject)
			projects.PATCH("/:id", projectID, projectHandler.PatchProject)
			projects.DELETE("/:id", projectID, projectHandler.DeleteProject)
		}
	}

	return r
}
