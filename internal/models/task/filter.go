package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const StatusCompleted = "completed"
const StatusPending = "pending"

// Filter декларативный набор критериев выборки по задачам одного владельца.
// nil означает, что критерий не применяется; все заданные критерии объединяются по AND.
type Filter struct {
	OwnerID   uuid.UUID
	Completed *bool
	Priority  *Priority
	DueDate   *time.Time
}

// FilterIssues значения фильтров, которые были проигнорированы при разборе
type FilterIssues []string

// ParseFilter собирает фильтр из сырых параметров запроса.
// Неизвестные значения не приводят к ошибке, критерий просто не применяется.
func ParseFilter(ownerID uuid.UUID, status, priority, dueDate string) (Filter, FilterIssues) {
	filter := Filter{OwnerID: ownerID}
	var issues FilterIssues

	switch status {
	case StatusCompleted:
		completed := true
		filter.Completed = &completed
	case StatusPending:
		completed := false
		filter.Completed = &completed
	case "", "all":
	default:
		// TODO: отвечать 422 на неизвестный status, когда фронтенд перестанет слать произвольные значения
		issues = append(issues, "status")
	}

	if priority != "" {
		if p, ok := ParsePriority(priority); ok {
			filter.Priority = &p
		} else {
			issues = append(issues, "priority")
		}
	}

	if dueDate != "" {
		if d, err := time.Parse(DateLayout, dueDate); err == nil {
			filter.DueDate = &d
		} else {
			issues = append(issues, "due_date")
		}
	}

	return filter, issues
}

func (f Filter) Matches(t *Task) bool {
	if t == nil || t.OwnerID != f.OwnerID {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.DueDate != nil {
		if t.DueDate == nil || !t.DueDate.Equal(TruncateDate(*f.DueDate)) {
			return false
		}
	}
	return true
}

// Key стабильное представление фильтра для ключей кэша
func (f Filter) Key() string {
	parts := []string{"status=all", "priority=any", "due=any"}
	if f.Completed != nil {
		if *f.Completed {
			parts[0] = "status=" + StatusCompleted
		} else {
			parts[0] = "status=" + StatusPending
		}
	}
	if f.Priority != nil {
		parts[1] = "priority=" + string(*f.Priority)
	}
	if f.DueDate != nil {
		parts[2] = "due=" + f.DueDate.Format(DateLayout)
	}
	return fmt.Sprintf("%s:%s", f.OwnerID, strings.Join(parts, ","))
}
