package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type taskListItemResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Priority      string   `json:"priority"`
	Status        string   `json:"status"`
	CategoryName  *string  `json:"category_name,omitempty"`
	CategoryColor *string  `json:"category_color,omitempty"`
	CreatorName   string   `json:"creator_name"`
	Assignees     []string `json:"assignees"`
	DueDate       *string  `json:"due_date,omitempty"`
	IsDelayed     bool     `json:"is_delayed"`
	DaysDelayed   int      `json:"days_delayed,omitempty"`
}

func newTaskListItemResponse(item *models.TaskListItem) taskListItemResponse {
	return taskListItemResponse{
		ID:            item.ID,
		Title:         item.Title,
		Priority:      string(item.Priority),
		Status:        string(item.Status),
		CategoryName:  item.CategoryName,
		CategoryColor: item.CategoryColor,
		CreatorName:   item.CreatorName,
		Assignees:     item.Assignees,
		DueDate:       formatDate(item.DueDate),
		IsDelayed:     item.IsDelayed,
		DaysDelayed:   item.DaysDelayed,
	}
}

type listTasksResponse struct {
	TotalCount int64                  `json:"total_count"`
	TotalPages int                    `json:"total_pages"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	Tasks      []taskListItemResponse `json:"tasks"`
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no viewer found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	page := 1
	if rawPage := c.Query("page"); rawPage != "" {
		parsed, err := strconv.Atoi(rawPage)
		if err != nil || parsed < 1 {
			h.logger.Error().
				Str("page", rawPage).
				Msg("invalid page number")
			abort(c, newBadRequestError("invalid page number"))
			return
		}
		page = parsed
	}

	result, err := h.tasks.ListTasks(c, services.ListTasksParams{
		Viewer:     viewer,
		Status:     models.TaskStatus(c.Query("status")),
		Priority:   models.TaskPriority(c.Query("priority")),
		CategoryID: c.Query("category"),
		Page:       page,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		h.abortTaskError(c, err)
		return
	}

	response := listTasksResponse{
		TotalCount: result.TotalCount,
		TotalPages: result.TotalPages,
		Page:       result.Page,
		PageSize:   result.PageSize,
		Tasks:      make([]taskListItemResponse, len(result.Items)),
	}
	for i := range result.Items {
		response.Tasks[i] = newTaskListItemResponse(&result.Items[i])
	}

	c.JSON(http.StatusOK, response)
}

type taskAssigneeResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type taskDetailResponse struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Priority      string                 `json:"priority"`
	Status        string                 `json:"status"`
	CategoryID    *string                `json:"category_id,omitempty"`
	CategoryName  *string                `json:"category_name,omitempty"`
	CategoryColor *string                `json:"category_color,omitempty"`
	CreatorName   string                 `json:"creator_name"`
	Assignees     []taskAssigneeResponse `json:"assignees"`
	DueDate       *string                `json:"due_date,omitempty"`
	IsDelayed     bool                   `json:"is_delayed"`
	DaysDelayed   int                    `json:"days_delayed,omitempty"`
	Comments      []commentResponse      `json:"comments"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func newTaskDetailResponse(detail *models.TaskDetail) taskDetailResponse {
	response := taskDetailResponse{
		ID:            detail.ID,
		Title:         detail.Title,
		Description:   detail.Description,
		Priority:      string(detail.Priority),
		Status:        string(detail.Status),
		CategoryID:    detail.CategoryID,
		CategoryName:  detail.CategoryName,
		CategoryColor: detail.CategoryColor,
		CreatorName:   detail.CreatorName,
		Assignees:     make([]taskAssigneeResponse, len(detail.Assignees)),
		DueDate:       formatDate(detail.DueDate),
		IsDelayed:     detail.IsDelayed,
		DaysDelayed:   detail.DaysDelayed,
		Comments:      make([]commentResponse, len(detail.Comments)),
		CreatedAt:     detail.CreatedAt,
		UpdatedAt:     detail.UpdatedAt,
	}
	for i, a := range detail.Assignees {
		response.Assignees[i] = taskAssigneeResponse{
			ID:       a.ID,
			Username: a.Username,
		}
	}
	for i, comment := range detail.Comments {
		response.Comments[i] = commentResponse{
			ID:        comment.ID,
			UserID:    comment.UserID,
			Username:  comment.Username,
			Comment:   comment.Comment,
			CreatedAt: comment.CreatedAt,
		}
	}
	return response
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no viewer found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("no task id provided"))
		return
	}

	detail, err := h.tasks.GetTask(c, taskID, viewer)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		h.abortTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskDetailResponse(detail))
}

type taskFieldsRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description" binding:"required"`
	Priority    string   `json:"priority" binding:"required"`
	Status      string   `json:"status" binding:"required"`
	CategoryID  *string  `json:"category_id,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	AssigneeIDs []string `json:"assignee_ids" binding:"required"`
}

func (r *taskFieldsRequest) toTaskFields() (services.TaskFields, error) {
	fields := services.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Priority:    models.TaskPriority(r.Priority),
		Status:      models.TaskStatus(r.Status),
		CategoryID:  r.CategoryID,
		AssigneeIDs: r.AssigneeIDs,
	}

	if r.DueDate != nil && *r.DueDate != "" {
		dueDate, err := time.Parse(time.DateOnly, *r.DueDate)
		if err != nil {
			return services.TaskFields{}, err
		}
		fields.DueDate = &dueDate
	}
	return fields, nil
}

type mutateTaskResponse struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Status  string  `json:"status"`
	DueDate *string `json:"due_date,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no viewer found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req taskFieldsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fields, err := req.toTaskFields()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse due date")
		abort(c, newBadRequestError("invalid due date"))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		Viewer:     viewer,
		TaskFields: fields,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		h.abortTaskError(c, err)
		return
	}

	c.Header("Location", "/api/v1/tasks/"+task.ID)
	c.JSON(http.StatusCreated, mutateTaskResponse{
		ID:      task.ID,
		Title:   task.Title,
		Status:  string(task.Status),
		DueDate: formatDate(task.DueDate),
	})
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no viewer found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("no task id provided"))
		return
	}

	var req taskFieldsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fields, err := req.toTaskFields()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse due date")
		abort(c, newBadRequestError("invalid due date"))
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		Viewer:     viewer,
		TaskID:     taskID,
		TaskFields: fields,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		h.abortTaskError(c, err)
		return
	}

	c.Header("Location", "/api/v1/tasks/"+task.ID)
	c.JSON(http.StatusOK, mutateTaskResponse{
		ID:      task.ID,
		Title:   task.Title,
		Status:  string(task.Status),
		DueDate: formatDate(task.DueDate),
	})
}

type setTaskStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment,omitempty"`
}

func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no viewer found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("no task id provided"))
		return
	}

	var req setTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.tasks.SetTaskStatus(c, services.SetTaskStatusParams{
		Viewer:  viewer,
		TaskID:  taskID,
		Status:  models.TaskStatus(req.Status),
		Comment: req.Comment,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to set task status")
		h.abortTaskError(c, err)
		return
	}

	c.Header("Location", "/api/v1/tasks/"+taskID)
	c.Status(http.StatusOK)
}

// abortTaskError maps task service errors onto the API taxonomy:
// validation problems are 400, missing tasks 404, denied access 403,
// anything else a generic 500 that leaks no detail.
func (h *handlerImpl) abortTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
	case errors.Is(err, services.ErrTaskAccessDenied):
		abort(c, newForbiddenError(services.ErrTaskAccessDenied.Error()))
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrAssigneesRequired),
		errors.Is(err, services.ErrInvalidTaskPriority),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrUnknownAssignee),
		errors.Is(err, services.ErrUnknownCategory):
		abort(c, newBadRequestError(err.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.DateOnly)
	return &formatted
}
