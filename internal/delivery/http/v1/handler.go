package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleAdminMiddleware(c *gin.Context)

	HandleListTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleSetTaskStatus(c *gin.Context)

	HandleGetCategories(c *gin.Context)
	HandleGetUsers(c *gin.Context)
}

type handlerImpl struct {
	logger     zerolog.Logger
	auth       services.AuthService
	sessions   services.SessionService
	tasks      services.TaskService
	categories services.CategoryService
	users      services.UserService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	sessionService services.SessionService,
	taskService services.TaskService,
	categoryService services.CategoryService,
	userService services.UserService,
) Handler {
	return &handlerImpl{
		logger:     logger,
		auth:       authService,
		sessions:   sessionService,
		tasks:      taskService,
		categories: categoryService,
		users:      userService,
	}
}
