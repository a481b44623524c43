package task_test

import (
	"math"
	"testing"
	"time"
	"todoTracker/internal/models/task"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	d, err := time.Parse(task.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &d
}

// TestParseFilter тестирует разбор параметров фильтра
func TestParseFilter(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name          string
		status        string
		priority      string
		dueDate       string
		wantCompleted *bool
		wantPriority  *task.Priority
		wantDueDate   *time.Time
		wantIssues    task.FilterIssues
	}{
		{
			name: "no criteria",
		},
		{
			name:          "completed",
			status:        "completed",
			wantCompleted: func() *bool { b := true; return &b }(),
		},
		{
			name:          "pending",
			status:        "pending",
			wantCompleted: func() *bool { b := false; return &b }(),
		},
		{
			name:   "all means no status filter",
			status: "all",
		},
		{
			name:       "unknown status is ignored",
			status:     "done",
			wantIssues: task.FilterIssues{"status"},
		},
		{
			name:         "priority",
			priority:     "high",
			wantPriority: func() *task.Priority { p := task.PriorityHigh; return &p }(),
		},
		{
			name:       "unknown priority is ignored",
			priority:   "urgent",
			wantIssues: task.FilterIssues{"priority"},
		},
		{
			name:        "due date",
			dueDate:     "2026-01-15",
			wantDueDate: date("2026-01-15"),
		},
		{
			name:       "bad due date is ignored",
			dueDate:    "15/01/2026",
			wantIssues: task.FilterIssues{"due_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, issues := task.ParseFilter(owner, tt.status, tt.priority, tt.dueDate)

			assert.Equal(t, owner, filter.OwnerID)
			assert.Equal(t, tt.wantCompleted, filter.Completed)
			assert.Equal(t, tt.wantPriority, filter.Priority)
			assert.Equal(t, tt.wantDueDate, filter.DueDate)
			assert.Equal(t, tt.wantIssues, issues)
		})
	}
}

// TestFilter_Matches тестирует композицию критериев
func TestFilter_Matches(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	pendingHigh := &task.Task{OwnerID: owner, Priority: task.PriorityHigh, DueDate: date("2026-01-15")}
	doneHigh := &task.Task{OwnerID: owner, Priority: task.PriorityHigh, Completed: true}
	pendingLow := &task.Task{OwnerID: owner, Priority: task.PriorityLow}
	foreign := &task.Task{OwnerID: other, Priority: task.PriorityHigh}

	t.Run("empty filter matches every own task", func(t *testing.T) {
		filter, _ := task.ParseFilter(owner, "", "", "")
		assert.True(t, filter.Matches(pendingHigh))
		assert.True(t, filter.Matches(doneHigh))
		assert.True(t, filter.Matches(pendingLow))
		assert.False(t, filter.Matches(foreign))
	})

	t.Run("status and priority", func(t *testing.T) {
		filter, _ := task.ParseFilter(owner, "pending", "high", "")
		assert.True(t, filter.Matches(pendingHigh))
		assert.False(t, filter.Matches(doneHigh))
		assert.False(t, filter.Matches(pendingLow))
		assert.False(t, filter.Matches(foreign))
	})

	t.Run("due date exact match", func(t *testing.T) {
		filter, _ := task.ParseFilter(owner, "", "", "2026-01-15")
		assert.True(t, filter.Matches(pendingHigh))
		assert.False(t, filter.Matches(pendingLow))
	})

	t.Run("nil task", func(t *testing.T) {
		filter, _ := task.ParseFilter(owner, "", "", "")
		assert.False(t, filter.Matches(nil))
	})
}

func TestFilter_Key(t *testing.T) {
	owner := uuid.New()

	a, _ := task.ParseFilter(owner, "pending", "high", "2026-01-15")
	b, _ := task.ParseFilter(owner, "pending", "high", "2026-01-15")
	c, _ := task.ParseFilter(owner, "bogus", "", "")
	d, _ := task.ParseFilter(owner, "", "", "")

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, c.Key(), d.Key())
	assert.NotEqual(t, a.Key(), d.Key())
	assert.Contains(t, a.Key(), owner.String())
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		task *task.Task
		want bool
	}{
		{"no due date", &task.Task{}, false},
		{"due yesterday", &task.Task{DueDate: date("2026-03-09")}, true},
		{"due today", &task.Task{DueDate: date("2026-03-10")}, false},
		{"due tomorrow", &task.Task{DueDate: date("2026-03-11")}, false},
		{"completed in the past", &task.Task{DueDate: date("2026-03-01"), Completed: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, task.IsOverdue(tt.task, today))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := task.ParseDate("2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, *date("2026-01-15"), d)

	d, err = task.ParseDate("2026-01-15T23:10:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, *date("2026-01-15"), d)

	_, err = task.ParseDate("tomorrow")
	assert.Error(t, err)
}

func TestPage(t *testing.T) {
	page := task.NewPage(nil, 1, 15, 31)
	assert.Equal(t, 3, page.LastPage)
	assert.NotNil(t, page.Items)

	next, ok := page.NextPage()
	assert.True(t, ok)
	assert.Equal(t, 2, next)

	last := task.NewPage(nil, 3, 15, 31)
	_, ok = last.NextPage()
	assert.False(t, ok)

	empty := task.NewPage(nil, 1, 15, 0)
	assert.Equal(t, 1, empty.LastPage)

	assert.Equal(t, 0, task.Offset(0, 15))
	assert.Equal(t, 30, task.Offset(3, 15))
	assert.Equal(t, math.MaxInt, task.Offset(math.MaxInt/10, 15), "переполнение насыщается")
	assert.Equal(t, math.MaxInt, task.Offset(math.MaxInt, 1))
}
