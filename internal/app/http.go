package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/config"
	v1 "github.com/adanyl0v/go-task-tracker/internal/delivery/http/v1"
	"github.com/adanyl0v/go-task-tracker/internal/duedate"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	authService := services.NewAuthService(
		globalLogger,
		globalPostgresPool,
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)
	sessionService := services.NewSessionService(globalLogger, globalPostgresPool)
	taskService := services.NewTaskService(
		globalLogger,
		globalPostgresPool,
		cfg.Tasks.PageSize,
		duedate.LeadTimes{
			Urgent: cfg.Tasks.LeadDaysUrgent,
			High:   cfg.Tasks.LeadDaysHigh,
			Medium: cfg.Tasks.LeadDaysMedium,
			Low:    cfg.Tasks.LeadDaysLow,
		},
	)
	categoryService := services.NewCategoryService(globalLogger, globalPostgresPool)
	userService := services.NewUserService(globalLogger, globalPostgresPool)

	v1Handler := v1.New(
		globalLogger,
		authService,
		sessionService,
		taskService,
		categoryService,
		userService,
	)
	router = router.Group("/api/v1")

	authRouter := router.Group("/auth")
	authRouter.POST("/login", v1Handler.HandleLogin)
	authRouter.POST("/refresh", v1Handler.HandleRefresh)
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/logout", v1Handler.HandleAuthMiddleware, v1Handler.HandleLogout)

	taskRouter := router.Group("/tasks", v1Handler.HandleAuthMiddleware)
	taskRouter.GET("", v1Handler.HandleListTasks)
	taskRouter.GET("/:id", v1Handler.HandleGetTask)
	taskRouter.POST("", v1Handler.HandleAdminMiddleware, v1Handler.HandleCreateTask)
	taskRouter.PUT("/:id", v1Handler.HandleAdminMiddleware, v1Handler.HandleUpdateTask)
	taskRouter.POST("/:id/status", v1Handler.HandleSetTaskStatus)

	router.GET("/categories", v1Handler.HandleAuthMiddleware, v1Handler.HandleGetCategories)
	router.GET("/users", v1Handler.HandleAuthMiddleware, v1Handler.HandleAdminMiddleware, v1Handler.HandleGetUsers)
}
