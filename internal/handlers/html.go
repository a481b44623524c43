package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

var taskListTemplate = template.Must(template.ParseFS(templatesFS, "templates/tasks.html"))

type option struct {
	Value    string
	Label    string
	Selected bool
}

type taskListView struct {
	Tasks      []dto.TaskResponse
	Statuses   []option
	Priorities []option
	DueDate    string
	Page       int
	LastPage   int
	Total      int
	PrevURL    string
	NextURL    string
}

func renderTaskList(w http.ResponseWriter, r *http.Request, resp dto.ListResponse, q service.ListQuery) {
	view := taskListView{
		Tasks: resp.Data,
		Statuses: options(q.Status, []option{
			{Value: "", Label: "Все"},
			{Value: task.StatusPending, Label: "Активные"},
			{Value: task.StatusCompleted, Label: "Выполненные"},
		}),
		Priorities: options(q.Priority, []option{
			{Value: "", Label: "Любой"},
			{Value: string(task.PriorityHigh), Label: "Высокий"},
			{Value: string(task.PriorityMedium), Label: "Средний"},
			{Value: string(task.PriorityLow), Label: "Низкий"},
		}),
		DueDate:  q.DueDate,
		Page:     resp.CurrentPage,
		LastPage: resp.LastPage,
		Total:    resp.Total,
	}
	if resp.CurrentPage > 1 {
		view.PrevURL = pageURL(q, resp.CurrentPage-1)
	}
	if resp.NextPage != nil {
		view.NextURL = pageURL(q, *resp.NextPage)
	}

	// рендерим в буфер, чтобы ошибка шаблона не оставила полуотправленную страницу
	var buf bytes.Buffer
	if err := taskListTemplate.Execute(&buf, view); err != nil {
		logger.Error("HTTP: Ошибка рендера шаблона", err)
		responseWithError(w, r, http.StatusInternalServerError, ErrInternal, "Внутренняя ошибка сервера")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func options(selected string, opts []option) []option {
	for i := range opts {
		opts[i].Selected = opts[i].Value == selected
	}
	return opts
}

// pageURL ссылка на страницу списка с сохранением фильтров
func pageURL(q service.ListQuery, page int) string {
	values := url.Values{}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Priority != "" {
		values.Set("priority", q.Priority)
	}
	if q.DueDate != "" {
		values.Set("due_date", q.DueDate)
	}
	values.Set("page", strconv.Itoa(page))
	return "/tasks?" + values.Encode()
}
