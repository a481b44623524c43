package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Actor аутентифицированный пользователь, от имени которого выполняется операция
type Actor struct {
	ID    uuid.UUID
	Email string
}

func (a Actor) IsAuthenticated() bool {
	return a.ID != uuid.Nil
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email}
}
