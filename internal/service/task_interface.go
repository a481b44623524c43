package service

import (
	"context"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	Delete(context.Context, uuid.UUID) error
	// List возвращает страницу задач по фильтру (новые первыми) и общее число подходящих задач
	List(ctx context.Context, filter task.Filter, page, limit int) ([]*task.Task, int, error)
	ListOverdue(ctx context.Context, ownerID uuid.UUID, today time.Time, page, limit int) ([]*task.Task, int, error)
	CountOverdue(ctx context.Context, today time.Time) (int, error)
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByID(context.Context, uuid.UUID) (*user.User, error)
	GetByEmail(context.Context, string) (*user.User, error)
}

// Cache кэш чтения с коротким TTL
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}
