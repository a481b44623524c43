package handlers

import (
	"net/http"
	"time"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const ServiceName = "todo-tracker"

type TaskHandler struct {
	TaskService TaskService
	now         func() time.Time
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Routes маршруты задач, монтируются под /tasks за middleware аутентификации
func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/", h.ListTasks)
	r.Post("/", h.PostTask)
	r.Get("/overdue", h.GetOverdueTasks)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetTask)
		r.Put("/", h.UpdateTask)
		r.Patch("/", h.UpdateTask)
		r.Delete("/", h.DeleteTask)
		r.Patch("/toggle", h.ToggleTask)
	})
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	resp := dto.HealthResponse{
		Status:  "ok",
		Service: ServiceName,
		Time:    h.now().Format(time.RFC3339),
	}

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис нездоров", err)
		resp.Status = "unavailable"
		responseWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	responseWithJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	actor := middleware.ActorFromContext(r.Context())

	query := r.URL.Query()
	q := service.ListQuery{
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
		DueDate:  query.Get("due_date"),
		Page:     queryPage(r),
	}

	page, err := h.TaskService.ListTasks(r.Context(), actor, q)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	resp := dto.FromPage(page, h.today())

	logger.Info("HTTP_OUT: Список задач получен",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.Int("count", len(resp.Data)),
		zap.Int("total", resp.Total),
		zap.Duration("ms", time.Since(start)))

	if wantsHTML(r) {
		renderTaskList(w, r, resp, q)
		return
	}
	responseWithJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	page, err := h.TaskService.GetOverdueTasks(r.Context(), actor, queryPage(r))
	if err != nil {
		handleError(w, r, err, "overdue_tasks")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromPage(page, h.today()))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	actor := middleware.ActorFromContext(r.Context())

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), actor, request)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromTask(created, h.today()))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	found, err := h.TaskService.GetTask(r.Context(), middleware.ActorFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTask(found, h.today()))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), middleware.ActorFromContext(r.Context()), id, request)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTask(updated, h.today()))
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	toggled, err := h.TaskService.ToggleTask(r.Context(), middleware.ActorFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err, "toggle_task")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTask(toggled, h.today()))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.MessageResponse{Message: "Задача удалена"})
}

func (h *TaskHandler) today() time.Time {
	return task.TruncateDate(h.now())
}
