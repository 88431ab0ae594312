package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
)

// TaskRepository persists course tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task and populates generated columns.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	const query = `INSERT INTO tasks (title, description, course_id, assigned_to, priority, status, due_date) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, task.Title, task.Description, task.CourseID, task.AssignedTo, task.Priority, task.Status, task.DueDate)
	if err := row.Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// CompleteForAssignee marks the task completed when it is assigned to the user.
// Completing an already completed task keeps its original completion time.
func (r *TaskRepository) CompleteForAssignee(ctx context.Context, taskID, userID int64) error {
	const query = `UPDATE tasks SET status = 'completed', updated_at = CASE WHEN status = 'completed' THEN updated_at ELSE NOW() END WHERE id = $1 AND assigned_to = $2`
	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return expectAffected(res)
}

// CourseOwner returns the teacher owning the task's course.
func (r *TaskRepository) CourseOwner(ctx context.Context, taskID int64) (int64, error) {
	const query = `SELECT c.teacher_id FROM tasks t JOIN courses c ON c.id = t.course_id WHERE t.id = $1`
	var teacherID int64
	if err := r.db.GetContext(ctx, &teacherID, query, taskID); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("find task owner: %w", err)
	}
	return teacherID, nil
}

// ListByTeacher returns tasks across the teacher's courses.
func (r *TaskRepository) ListByTeacher(ctx context.Context, filter models.TaskFilter) ([]dto.TeacherTask, error) {
	conditions := []string{"c.teacher_id = $1"}
	args := []interface{}{filter.TeacherID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.CourseID > 0 {
		args = append(args, filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("t.course_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
SELECT
	t.id, t.title, t.description, t.priority, t.status, t.due_date, t.created_at,
	c.id AS course_id, c.title AS course_title, u.full_name AS assignee_name
FROM tasks t
JOIN courses c ON c.id = t.course_id
JOIN users u ON u.id = t.assigned_to
WHERE %s
ORDER BY t.due_date ASC NULLS LAST, t.created_at DESC`, strings.Join(conditions, " AND "))

	var tasks []dto.TeacherTask
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher tasks: %w", err)
	}
	return tasks, nil
}
