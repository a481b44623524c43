package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"todoTracker/internal/auth"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/user"
	rep "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const PasswordMinLength = 8

// PasswordMaxBytes предел bcrypt, более длинные пароли он не хеширует
const PasswordMaxBytes = 72

type TokenManager interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(token string) (*auth.Claims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

type AuthService struct {
	users  UserRepository
	tokens TokenManager
	hasher PasswordHasher
	now    func() time.Time
}

func NewAuthService(users UserRepository, tokens TokenManager, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Register заводит пользователя и сразу выдаёт токен
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	violations := Violations{}
	switch {
	case name == "":
		violations.Add("name", msgRequired("name"))
	case len([]rune(name)) > 255:
		violations.Add("name", "Поле name не может быть длиннее 255 символов.")
	}
	if email == "" {
		violations.Add("email", msgRequired("email"))
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		violations.Add("email", "Поле email должно быть корректным адресом.")
	}
	if len(in.Password) < PasswordMinLength {
		violations.Add("password", fmt.Sprintf("Пароль должен быть не короче %d символов.", PasswordMinLength))
	} else if len(in.Password) > PasswordMaxBytes {
		violations.Add("password", fmt.Sprintf("Пароль должен быть не длиннее %d байт.", PasswordMaxBytes))
	}
	if !violations.Empty() {
		return nil, NewValidationError(violations)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, s.emailTaken(email)
	} else if !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		logger.Error("Service: Не удалось захешировать пароль", err)
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	u := &user.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, s.emailTaken(email)
		}
		logger.Error("Service: Не удалось создать пользователя", err)
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("user_id", u.ID.String()))
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		logger.Info("Service: Неверный пароль", zap.String("user_id", u.ID.String()))
		return nil, invalidCredentials()
	}

	return s.issue(u)
}

// Authenticate проверяет токен и возвращает актора; пользователь должен существовать
func (s *AuthService) Authenticate(ctx context.Context, token string) (user.Actor, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		logger.Debug("Service: Токен отклонён", zap.Error(err))
		return user.Actor{}, NewUnauthenticated()
	}

	id, err := claims.UserID()
	if err != nil {
		return user.Actor{}, NewUnauthenticated()
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return user.Actor{}, NewUnauthenticated()
		}
		return user.Actor{}, fmt.Errorf("поиск пользователя: %w", err)
	}

	return u.Actor(), nil
}

func (s *AuthService) issue(u *user.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		logger.Error("Service: Не удалось выпустить токен", err)
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (s *AuthService) emailTaken(email string) error {
	return NewConflict("Пользователь с таким email уже существует", ToDetail("email", email))
}

// одинаковый ответ для неизвестного email и неверного пароля
func invalidCredentials() error {
	return NewBusinessError(CodeInvalidCredentials, "Неверный email или пароль")
}
