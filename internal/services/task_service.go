package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/duedate"
	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type taskServiceImpl struct {
	logger    zerolog.Logger
	pgPool    *pgxpool.Pool
	pageSize  int
	leadTimes duedate.LeadTimes
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	pageSize int,
	leadTimes duedate.LeadTimes,
) TaskService {
	return &taskServiceImpl{
		logger:    logger,
		pgPool:    pgPool,
		pageSize:  pageSize,
		leadTimes: leadTimes,
	}
}

const countTasksQueryFmt = `
SELECT COUNT(DISTINCT t.id)
FROM tasks t
LEFT JOIN task_assignments ta ON t.id = ta.task_id
%s
`

const selectTasksQueryFmt = `
SELECT t.id,
       t.title,
       t.priority,
       t.status,
       t.due_date,
       tc.name,
       tc.color,
       u.username,
       COALESCE(array_agg(DISTINCT a.username) FILTER (WHERE a.username IS NOT NULL), '{}')
FROM tasks t
LEFT JOIN task_assignments ta ON t.id = ta.task_id
LEFT JOIN users u ON t.user_id = u.id
LEFT JOIN task_categories tc ON t.category_id = tc.id
LEFT JOIN task_assignments taa ON t.id = taa.task_id
LEFT JOIN users a ON taa.user_id = a.id
%s
GROUP BY t.id, tc.name, tc.color, u.username
%s
LIMIT $%d OFFSET $%d
`

func (s *taskServiceImpl) ListTasks(ctx context.Context, params ListTasksParams) (*models.TaskPage, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if params.Priority != "" && !params.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	filters := newTaskFilters(params)
	where, args := filters.whereClause()

	var total int64
	err := s.pgPool.QueryRow(
		ctx,
		fmt.Sprintf(countTasksQueryFmt, where),
		args...,
	).Scan(&total)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return nil, err
	}

	query := fmt.Sprintf(selectTasksQueryFmt,
		where, taskOrderByClause(), len(args)+1, len(args)+2)
	args = append(args, s.pageSize, pageOffset(page, s.pageSize))

	rows, err := s.pgPool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	items := make([]models.TaskListItem, 0, s.pageSize)
	for rows.Next() {
		var item models.TaskListItem
		err = rows.Scan(
			&item.ID,
			&item.Title,
			&item.Priority,
			&item.Status,
			&item.DueDate,
			&item.CategoryName,
			&item.CategoryColor,
			&item.CreatorName,
			&item.Assignees,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}

		item.IsDelayed, item.DaysDelayed = delayInfo(item.Status, item.DueDate, now)
		items = append(items, item)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(items)).
		Int64("total", total).
		Int("page", page).
		Msg("selected tasks")

	s.logger.Info().
		Str("viewer_id", params.Viewer.ID).
		Int("count", len(items)).
		Msg("listed tasks")
	return &models.TaskPage{
		TotalCount: total,
		TotalPages: totalPages(total, s.pageSize),
		Page:       page,
		PageSize:   s.pageSize,
		Items:      items,
	}, nil
}

const selectTaskQuery = `
SELECT t.id,
       t.category_id,
       t.user_id,
       t.title,
       t.description,
       t.priority,
       t.status,
       t.due_date,
       t.created_at,
       t.updated_at,
       tc.name,
       tc.color,
       u.username
FROM tasks t
LEFT JOIN task_categories tc ON t.category_id = tc.id
LEFT JOIN users u ON t.user_id = u.id
WHERE t.id = $1
`

const selectTaskAssigneesQuery = `
SELECT u.id,
       u.username
FROM task_assignments ta
JOIN users u ON ta.user_id = u.id
WHERE ta.task_id = $1
ORDER BY u.username
`

const selectTaskCommentsQuery = `
SELECT c.id,
       c.user_id,
       u.username,
       c.comment,
       c.created_at
FROM task_comments c
JOIN users u ON c.user_id = u.id
WHERE c.task_id = $1
ORDER BY c.created_at DESC
`

func (s *taskServiceImpl) GetTask(ctx context.Context, taskID string, viewer models.Viewer) (*models.TaskDetail, error) {
	detail := &models.TaskDetail{}
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		taskID,
	).Scan(
		&detail.ID,
		&detail.CategoryID,
		&detail.CreatorID,
		&detail.Title,
		&detail.Description,
		&detail.Priority,
		&detail.Status,
		&detail.DueDate,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.CategoryName,
		&detail.CategoryColor,
		&detail.CreatorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}

	assignees, err := s.selectAssignees(ctx, taskID)
	if err != nil {
		return nil, err
	}
	detail.Assignees = assignees

	assigneeIDs := make([]string, len(assignees))
	for i, a := range assignees {
		assigneeIDs[i] = a.ID
	}
	if !canViewTask(viewer, assigneeIDs) {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("viewer_id", viewer.ID).
			Msg("task access denied")
		return nil, ErrTaskAccessDenied
	}

	comments, err := s.selectComments(ctx, taskID)
	if err != nil {
		return nil, err
	}
	detail.Comments = comments

	detail.IsDelayed, detail.DaysDelayed = delayInfo(detail.Status, detail.DueDate, time.Now())

	s.logger.Info().
		Str("task_id", taskID).
		Str("viewer_id", viewer.ID).
		Msg("fetched task")
	return detail, nil
}

func (s *taskServiceImpl) selectAssignees(ctx context.Context, taskID string) ([]models.TaskAssignee, error) {
	rows, err := s.pgPool.Query(ctx, selectTaskAssigneesQuery, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select assignees")
		return nil, err
	}
	defer rows.Close()

	var assignees []models.TaskAssignee
	for rows.Next() {
		var a models.TaskAssignee
		err = rows.Scan(&a.ID, &a.Username)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan assignee")
			return nil, err
		}
		assignees = append(assignees, a)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return assignees, nil
}

func (s *taskServiceImpl) selectComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	rows, err := s.pgPool.Query(ctx, selectTaskCommentsQuery, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select comments")
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment := models.Comment{TaskID: taskID}
		err = rows.Scan(
			&comment.ID,
			&comment.UserID,
			&comment.Username,
			&comment.Comment,
			&comment.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan comment")
			return nil, err
		}
		comments = append(comments, comment)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return comments, nil
}

const insertTaskQuery = `
INSERT INTO tasks (id,
                   category_id,
                   user_id,
                   title,
                   description,
                   priority,
                   status,
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	err := validateTaskFields(params.TaskFields)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("invalid task fields")
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		CategoryID:  params.CategoryID,
		CreatorID:   params.Viewer.ID,
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		Status:      params.Status,
		DueDate:     s.resolveDueDate(params.DueDate, params.Priority, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.CategoryID,
		task.CreatorID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Warn().
				Err(err).
				Msg("unknown category reference")
			return nil, ErrUnknownCategory
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")

	err = s.insertAssignments(ctx, tx, task.ID, params.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	err = s.insertActivity(ctx, tx, params.Viewer.ID, "create_task", "Created task: "+task.Title)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("creator_id", task.CreatorID).
		Msg("created task")
	return task, nil
}

const selectTaskCreatedAtQuery = `
SELECT created_at
FROM tasks
WHERE id = $1
`

const updateTaskQuery = `
UPDATE tasks
SET category_id = $1,
    title = $2,
    description = $3,
    priority = $4,
    status = $5,
    due_date = $6,
    updated_at = $7
WHERE id = $8
`

const deleteTaskAssignmentsQuery = `
DELETE FROM task_assignments
WHERE task_id = $1
`

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	err := validateTaskFields(params.TaskFields)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("invalid task fields")
		return nil, err
	}

	task := &models.Task{
		ID:          params.TaskID,
		CategoryID:  params.CategoryID,
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		Status:      params.Status,
		UpdatedAt:   time.Now(),
	}

	err = s.pgPool.QueryRow(
		ctx,
		selectTaskCreatedAtQuery,
		task.ID,
	).Scan(&task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to select task")
		return nil, err
	}

	// A recomputed due date is seeded from the original creation date,
	// not from the time of the edit.
	task.DueDate = s.resolveDueDate(params.DueDate, params.Priority, task.CreatedAt)

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(
		ctx,
		updateTaskQuery,
		task.CategoryID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Warn().
				Err(err).
				Msg("unknown category reference")
			return nil, ErrUnknownCategory
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	tag, err := tx.Exec(ctx, deleteTaskAssignmentsQuery, task.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to delete assignments")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted assignments")

	err = s.insertAssignments(ctx, tx, task.ID, params.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	err = s.insertActivity(ctx, tx, params.Viewer.ID, "edit_task", "Updated task: "+task.Title)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("viewer_id", params.Viewer.ID).
		Msg("updated task")
	return task, nil
}

const selectTaskAssigneeIDsQuery = `
SELECT user_id
FROM task_assignments
WHERE task_id = $1
`

const updateTaskStatusQuery = `
UPDATE tasks
SET status = $1,
    updated_at = $2
WHERE id = $3
`

const insertCommentQuery = `
INSERT INTO task_comments (id,
                           task_id,
                           user_id,
                           comment,
                           created_at)
VALUES ($1, $2, $3, $4, $5)
`

func (s *taskServiceImpl) SetTaskStatus(ctx context.Context, params SetTaskStatusParams) error {
	if !params.Status.Valid() {
		return ErrInvalidTaskStatus
	}

	var currentStatus models.TaskStatus
	err := s.pgPool.QueryRow(
		ctx,
		`SELECT status FROM tasks WHERE id = $1`,
		params.TaskID,
	).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", params.TaskID).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to select task")
		return err
	}

	assigneeIDs, err := s.selectAssigneeIDs(ctx, params.TaskID)
	if err != nil {
		return err
	}
	if !canViewTask(params.Viewer, assigneeIDs) {
		s.logger.Warn().
			Str("task_id", params.TaskID).
			Str("viewer_id", params.Viewer.ID).
			Msg("task access denied")
		return ErrTaskAccessDenied
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	_, err = tx.Exec(
		ctx,
		updateTaskStatusQuery,
		params.Status,
		now,
		params.TaskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to update task status")
		return err
	}

	if params.Comment != "" {
		commentUUID, err := uuid.NewV7()
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to generate comment uuid")
			return err
		}

		_, err = tx.Exec(
			ctx,
			insertCommentQuery,
			commentUUID.String(),
			params.TaskID,
			params.Viewer.ID,
			params.Comment,
			now,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", params.TaskID).
				Msg("failed to insert comment")
			return err
		}
		s.logger.Debug().
			Str("comment_id", commentUUID.String()).
			Msg("inserted comment")
	}

	err = s.insertActivity(ctx, tx, params.Viewer.ID, "update_task",
		"Updated task status to: "+string(params.Status))
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}

	s.logger.Info().
		Str("task_id", params.TaskID).
		Str("status", string(params.Status)).
		Str("viewer_id", params.Viewer.ID).
		Msg("updated task status")
	return nil
}

func (s *taskServiceImpl) selectAssigneeIDs(ctx context.Context, taskID string) ([]string, error) {
	rows, err := s.pgPool.Query(ctx, selectTaskAssigneeIDsQuery, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select assignee ids")
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan assignee id")
			return nil, err
		}
		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return ids, nil
}

// resolveDueDate normalizes an explicit due date to its calendar date,
// or derives one from the priority lead time seeded at the given date.
func (s *taskServiceImpl) resolveDueDate(explicit *time.Time, priority models.TaskPriority, seed time.Time) *time.Time {
	if explicit != nil {
		d := duedate.Date(*explicit)
		return &d
	}
	d := duedate.AddWorkingDays(seed, s.leadTimes.ForPriority(priority))
	return &d
}

const insertAssignmentQuery = `
INSERT INTO task_assignments (task_id,
                              user_id)
VALUES ($1, $2)
`

func (s *taskServiceImpl) insertAssignments(ctx context.Context, tx pgx.Tx, taskID string, assigneeIDs []string) error {
	for _, userID := range assigneeIDs {
		_, err := tx.Exec(ctx, insertAssignmentQuery, taskID, userID)
		if err != nil {
			if isForeignKeyViolation(err) {
				s.logger.Warn().
					Err(err).
					Str("user_id", userID).
					Msg("unknown assignee reference")
				return ErrUnknownAssignee
			}

			s.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("failed to insert assignment")
			return err
		}
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Int("count", len(assigneeIDs)).
		Msg("inserted assignments")
	return nil
}

const insertActivityQuery = `
INSERT INTO activity_log (id,
                          user_id,
                          action,
                          details,
                          created_at)
VALUES ($1, $2, $3, $4, $5)
`

func (s *taskServiceImpl) insertActivity(ctx context.Context, tx pgx.Tx, userID, action, details string) error {
	activityUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate activity uuid")
		return err
	}

	_, err = tx.Exec(
		ctx,
		insertActivityQuery,
		activityUUID.String(),
		userID,
		action,
		details,
		time.Now(),
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("action", action).
			Msg("failed to insert activity")
		return err
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
