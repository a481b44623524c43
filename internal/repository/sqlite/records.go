package sqlite

import (
	"strings"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"

	"github.com/google/uuid"
)

// taskRecord строка таблицы tasks; due_date хранится строкой YYYY-MM-DD,
// чтобы сравнение дат работало как сравнение строк
type taskRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	OwnerID     string    `gorm:"size:36;not null;index:idx_tasks_owner_created,priority:1;index:idx_tasks_owner_completed,priority:1"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	DueDate     *string   `gorm:"size:10;index"`
	Priority    string    `gorm:"size:10;not null;index"`
	Completed   bool      `gorm:"not null;default:false;index:idx_tasks_owner_completed,priority:2"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:idx_tasks_owner_created,priority:2"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func toTaskRecord(t *task.Task) *taskRecord {
	return &taskRecord{
		ID:          t.ID.String(),
		OwnerID:     t.OwnerID.String(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     task.FormatDate(t.DueDate),
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (r *taskRecord) toTask() (*task.Task, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(r.OwnerID)
	if err != nil {
		return nil, err
	}

	t := &task.Task{
		ID:          id,
		OwnerID:     owner,
		Title:       r.Title,
		Description: r.Description,
		Priority:    task.Priority(r.Priority),
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		d, err := time.Parse(task.DateLayout, *r.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}
	return t, nil
}

type userRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:255;not null"`
	Email        string    `gorm:"size:255;not null"`
	EmailKey     string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false"`
}

func (userRecord) TableName() string {
	return "users"
}

func toUserRecord(u *user.User) *userRecord {
	return &userRecord{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		EmailKey:     strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func (r *userRecord) toUser() (*user.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	return &user.User{
		ID:           id,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}, nil
}
