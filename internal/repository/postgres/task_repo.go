package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const taskColumns = `id, owner_id, title, description, due_date, priority, completed, created_at, updated_at`

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) HealthCheck(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now().UTC()
	}
	if taskToCreate.UpdatedAt.IsZero() {
		taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	}

	query := `INSERT INTO tasks
				(` + taskColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		taskToCreate.ID,
		taskToCreate.OwnerID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.DueDate,
		taskToCreate.Priority,
		taskToCreate.Completed,
		taskToCreate.CreatedAt,
		taskToCreate.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// Update перезаписывает изменяемые поля; владелец и created_at не трогаются
func (r *TaskRepository) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				due_date = $3,
				priority = $4,
				completed = $5,
				updated_at = $6
			WHERE id = $7`

	tag, err := r.pool.Exec(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.DueDate,
		taskToUpdate.Priority,
		taskToUpdate.Completed,
		taskToUpdate.UpdatedAt,
		taskToUpdate.ID,
	)

	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// полное удаление из БД
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter task.Filter, page, limit int) ([]*task.Task, int, error) {
	where, args := filterClause(filter)
	return r.page(ctx, where, args, page, limit)
}

func (r *TaskRepository) ListOverdue(ctx context.Context, ownerID uuid.UUID, today time.Time, page, limit int) ([]*task.Task, int, error) {
	where := `owner_id = $1 AND completed = FALSE AND due_date IS NOT NULL AND due_date < $2`
	return r.page(ctx, where, []any{ownerID, task.TruncateDate(today)}, page, limit)
}

func (r *TaskRepository) CountOverdue(ctx context.Context, today time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tasks WHERE completed = FALSE AND due_date IS NOT NULL AND due_date < $1`
	if err := r.pool.QueryRow(ctx, query, task.TruncateDate(today)).Scan(&count); err != nil {
		logger.Error("Repository: Не удалось посчитать просроченные задачи", err)
		return 0, fmt.Errorf("подсчёт просроченных: %w", err)
	}
	return count, nil
}

// filterClause собирает WHERE из заданных критериев фильтра
func filterClause(filter task.Filter) (string, []any) {
	conditions := []string{"owner_id = $1"}
	args := []any{filter.OwnerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conditions = append(conditions, fmt.Sprintf("completed = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.DueDate != nil {
		args = append(args, task.TruncateDate(*filter.DueDate))
		conditions = append(conditions, fmt.Sprintf("due_date = $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *TaskRepository) page(ctx context.Context, where string, args []any, page, limit int) ([]*task.Task, int, error) {
	start := time.Now()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&total); err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, 0, fmt.Errorf("подсчёт задач: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
				FROM tasks
				WHERE %s
				ORDER BY created_at DESC, id DESC
				LIMIT $%d OFFSET $%d`, taskColumns, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, limit, task.Offset(page, limit))...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, 0, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, 0, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*50+time.Millisecond*10*time.Duration(limit) {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return tasks, total, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var priority string
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&priority,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = task.Priority(priority)
	if t.DueDate != nil {
		d := task.TruncateDate(*t.DueDate)
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
