package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const slowQuery = time.Millisecond * 100

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("получение sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *TaskRepository) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now().UTC()
	}
	if taskToCreate.UpdatedAt.IsZero() {
		taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	}

	err := r.db.WithContext(ctx).Create(toTaskRecord(taskToCreate)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	logSlow(start)
	return nil
}

// Update перезаписывает изменяемые поля; владелец и created_at не трогаются
func (r *TaskRepository) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	rec := toTaskRecord(taskToUpdate)
	res := r.db.WithContext(ctx).
		Model(&taskRecord{ID: rec.ID}).
		Select("title", "description", "due_date", "priority", "completed", "updated_at").
		Updates(rec)

	if res.Error != nil {
		logger.Error("Repository: Не удалось обновить задачу", res.Error, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	logSlow(start)
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	var rec taskRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	logSlow(start)
	return rec.toTask()
}

// полное удаление из БД
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	res := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id.String())
	if res.Error != nil {
		logger.Error("Repository: Полное удаление задачи", res.Error, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	logSlow(start)
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter task.Filter, page, limit int) ([]*task.Task, int, error) {
	query := r.db.WithContext(ctx).Model(&taskRecord{}).Where("owner_id = ?", filter.OwnerID.String())

	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", string(*filter.Priority))
	}
	if filter.DueDate != nil {
		query = query.Where("due_date = ?", filter.DueDate.Format(task.DateLayout))
	}

	return r.page(query, page, limit)
}

func (r *TaskRepository) ListOverdue(ctx context.Context, ownerID uuid.UUID, today time.Time, page, limit int) ([]*task.Task, int, error) {
	query := r.db.WithContext(ctx).Model(&taskRecord{}).
		Where("owner_id = ?", ownerID.String()).
		Scopes(overdue(today))
	return r.page(query, page, limit)
}

func (r *TaskRepository) CountOverdue(ctx context.Context, today time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&taskRecord{}).Scopes(overdue(today)).Count(&count).Error
	if err != nil {
		logger.Error("Repository: Не удалось посчитать просроченные задачи", err)
		return 0, fmt.Errorf("подсчёт просроченных: %w", err)
	}
	return int(count), nil
}

func overdue(today time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("completed = ? AND due_date IS NOT NULL AND due_date < ?", false, today.Format(task.DateLayout))
	}
}

func (r *TaskRepository) page(query *gorm.DB, page, limit int) ([]*task.Task, int, error) {
	start := time.Now()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, 0, fmt.Errorf("подсчёт задач: %w", err)
	}

	var records []taskRecord
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(task.Offset(page, limit)).
		Find(&records).Error
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, 0, fmt.Errorf("получение задач: %w", err)
	}

	tasks := make([]*task.Task, 0, len(records))
	for i := range records {
		t, err := records[i].toTask()
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err), zap.String("task_id", records[i].ID))
			continue
		}
		tasks = append(tasks, t)
	}

	logSlow(start)
	return tasks, int(total), nil
}

func logSlow(start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
}
