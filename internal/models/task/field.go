package task

import (
	"encoding/json"
	"time"
)

// Field значение входного поля, различающее "не передано", "null" и "не того типа".
// При декодировании JSON ошибка типа не возвращается, а помечается Invalid,
// чтобы сервис мог собрать все нарушения сразу.
type Field[T any] struct {
	Set     bool
	Null    bool
	Invalid bool
	Value   T
}

func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present: поле передано и содержит значение нужного типа
func (f Field[T]) Present() bool {
	return f.Set && !f.Null && !f.Invalid
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		f.Invalid = true
	}
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Patch набор полей частичного обновления
type Patch struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	DueDate     Field[string] `json:"due_date"`
	Priority    Field[string] `json:"priority"`
	Completed   Field[bool]   `json:"completed"`
}

// Draft поля новой задачи до валидации
type Draft struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	DueDate     Field[string] `json:"due_date"`
	Priority    Field[string] `json:"priority"`
}

func (p Patch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set && !p.Priority.Set && !p.Completed.Set
}

func dateField(d time.Time) Field[string] {
	return Value(d.Format(DateLayout))
}

// DraftOf удобный конструктор для тестов и сидов
func DraftOf(title string, priority Priority, description *string, dueDate *time.Time) Draft {
	draft := Draft{
		Title:    Value(title),
		Priority: Value(string(priority)),
	}
	if description != nil {
		draft.Description = Value(*description)
	}
	if dueDate != nil {
		draft.DueDate = dateField(*dueDate)
	}
	return draft
}
