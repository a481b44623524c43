package service

import (
	"fmt"
	"strings"
	"todoTracker/internal/models/task"
	"unicode/utf8"
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "due_date"
	FieldPriority    = "priority"
	FieldCompleted   = "completed"
)

func msgRequired(field string) string {
	return fmt.Sprintf("Поле %s обязательно.", field)
}

func msgString(field string) string {
	return fmt.Sprintf("Поле %s должно быть строкой.", field)
}

// validateDraft проверяет все поля новой задачи и возвращает изменения для применения
func validateDraft(draft task.Draft) ([]task.TaskOption, Violations) {
	violations := Violations{}
	opts := []task.TaskOption{
		validateTitle(draft.Title, violations),
		validatePriority(draft.Priority, violations),
		validateDescription(draft.Description, violations),
		validateDueDate(draft.DueDate, violations),
	}
	return opts, violations
}

// validatePatch проверяет только переданные поля, теми же правилами что и при создании
func validatePatch(patch task.Patch) ([]task.TaskOption, Violations) {
	violations := Violations{}
	var opts []task.TaskOption

	if patch.Title.Set {
		opts = append(opts, validateTitle(patch.Title, violations))
	}
	if patch.Priority.Set {
		opts = append(opts, validatePriority(patch.Priority, violations))
	}
	if patch.Description.Set {
		opts = append(opts, validateDescription(patch.Description, violations))
	}
	if patch.DueDate.Set {
		opts = append(opts, validateDueDate(patch.DueDate, violations))
	}
	if patch.Completed.Set {
		if patch.Completed.Present() {
			opts = append(opts, task.WithCompleted(patch.Completed.Value))
		} else {
			violations.Add(FieldCompleted, "Поле completed должно быть true или false.")
		}
	}

	return opts, violations
}

// validateTitle title обязателен и при создании, и при обновлении, если ключ передан
func validateTitle(f task.Field[string], violations Violations) task.TaskOption {
	if f.Invalid {
		violations.Add(FieldTitle, msgString(FieldTitle))
		return nil
	}

	title := strings.TrimSpace(f.Value)
	if !f.Present() || title == "" {
		violations.Add(FieldTitle, msgRequired(FieldTitle))
		return nil
	}
	if utf8.RuneCountInString(title) > task.TitleMaxLength {
		violations.Add(FieldTitle, fmt.Sprintf("Поле title не может быть длиннее %d символов.", task.TitleMaxLength))
		return nil
	}

	return task.WithTitle(title)
}

func validatePriority(f task.Field[string], violations Violations) task.TaskOption {
	if f.Invalid {
		violations.Add(FieldPriority, msgString(FieldPriority))
		return nil
	}

	value := strings.TrimSpace(f.Value)
	if !f.Present() || value == "" {
		violations.Add(FieldPriority, msgRequired(FieldPriority))
		return nil
	}

	priority, ok := task.ParsePriority(value)
	if !ok {
		violations.Add(FieldPriority, "Поле priority должно быть одним из: high, medium, low.")
		return nil
	}

	return task.WithPriority(priority)
}

// validateDescription пустая строка и null очищают описание
func validateDescription(f task.Field[string], violations Violations) task.TaskOption {
	if !f.Set {
		return nil
	}
	if f.Invalid {
		violations.Add(FieldDescription, msgString(FieldDescription))
		return nil
	}

	description := strings.TrimSpace(f.Value)
	if f.Null || description == "" {
		return task.WithDescription(nil)
	}
	return task.WithDescription(&description)
}

// validateDueDate принимает YYYY-MM-DD или RFC3339; пустая строка и null снимают срок
func validateDueDate(f task.Field[string], violations Violations) task.TaskOption {
	if !f.Set {
		return nil
	}
	if f.Invalid {
		violations.Add(FieldDueDate, msgString(FieldDueDate))
		return nil
	}

	value := strings.TrimSpace(f.Value)
	if f.Null || value == "" {
		return task.WithDueDate(nil)
	}

	dueDate, err := task.ParseDate(value)
	if err != nil {
		violations.Add(FieldDueDate, "Поле due_date должно быть корректной датой.")
		return nil
	}
	return task.WithDueDate(&dueDate)
}
