package handlers

import (
	"context"
	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"
	"todoTracker/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	ListTasks(context.Context, user.Actor, service.ListQuery) (*task.Page, error)
	GetOverdueTasks(context.Context, user.Actor, int) (*task.Page, error)
	CreateTask(context.Context, user.Actor, task.Draft) (*task.Task, error)
	GetTask(context.Context, user.Actor, uuid.UUID) (*task.Task, error)
	UpdateTask(context.Context, user.Actor, uuid.UUID, task.Patch) (*task.Task, error)
	ToggleTask(context.Context, user.Actor, uuid.UUID) (*task.Task, error)
	DeleteTask(context.Context, user.Actor, uuid.UUID) error
}

type AuthService interface {
	Register(context.Context, service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

var _ TaskService = (*service.TaskService)(nil)
var _ AuthService = (*service.AuthService)(nil)
