package service

import (
	"errors"
	"fmt"
	"sort"
)

const CodeValidation = "VALIDATION_ERROR"
const CodeNotFound = "NOT_FOUND"
const CodeUnauthorized = "UNAUTHORIZED"
const CodeUnauthenticated = "UNAUTHENTICATED"
const CodeConflict = "CONFLICT"
const CodeInvalidCredentials = "INVALID_CREDENTIALS"

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

// Violations сообщения об ошибках по полям, как в ответе 422: {"title": ["..."]}
type Violations map[string][]string

func (v Violations) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v Violations) Empty() bool {
	return len(v) == 0
}

// Fields отсортированные имена полей с нарушениями
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func NewValidationError(violations Violations) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: "Переданные данные некорректны",
		Details: map[string]any{
			"errors": violations,
		},
	}
}

func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewUnauthorized отказ без подробностей о владельце ресурса
func NewUnauthorized(action string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, "Действие запрещено", ToDetail("action", action))
}

func NewUnauthenticated() *BusinessError {
	return NewBusinessError(CodeUnauthenticated, "Требуется аутентификация")
}

func NewConflict(message string, details ...Detail) *BusinessError {
	return NewBusinessError(CodeConflict, message, details...)
}

// IsCode проверяет, что в цепочке ошибок есть BusinessError с кодом code
func IsCode(err error, code string) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == code
}

// ViolationsOf достаёт нарушения из ошибки валидации
func ViolationsOf(err error) Violations {
	var busErr *BusinessError
	if !errors.As(err, &busErr) || busErr.Code != CodeValidation {
		return nil
	}
	v, _ := busErr.Details["errors"].(Violations)
	return v
}
