package dto

import (
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"
	"todoTracker/internal/service"

	"github.com/google/uuid"
)

// Тела запросов на создание и обновление задачи декодируются прямо в task.Draft и task.Patch,
// чтобы различать отсутствующее поле, null и значение неверного типа

type CreateTaskRequest = task.Draft

type UpdateTaskRequest = task.Patch

type TaskResponse struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	DueDate     *string       `json:"due_date"`
	Priority    task.Priority `json:"priority"`
	Completed   bool          `json:"completed"`
	IsOverdue   bool          `json:"is_overdue"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// FromTask is_overdue считается относительно today, а не хранится
func FromTask(t *task.Task, today time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     task.FormatDate(t.DueDate),
		Priority:    t.Priority,
		Completed:   t.Completed,
		IsOverdue:   task.IsOverdue(t, today),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task, today time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, today)
	}
	return result
}

type ListResponse struct {
	Data        []TaskResponse `json:"data"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	Total       int            `json:"total"`
	LastPage    int            `json:"last_page"`
	NextPage    *int           `json:"next_page"`
}

func FromPage(p *task.Page, today time.Time) ListResponse {
	resp := ListResponse{
		Data:        FromTaskList(p.Items, today),
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       p.Total,
		LastPage:    p.LastPage,
	}
	if next, ok := p.NextPage(); ok {
		resp.NextPage = &next
	}
	return resp
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest = service.RegisterInput

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func FromSession(s *service.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token,
		TokenType: "Bearer",
		ExpiresAt: s.ExpiresAt,
		User:      FromUser(s.User),
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Time    string `json:"time"`
}
