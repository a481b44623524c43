package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"todoTracker/internal/handlers"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/middleware"
	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"
	"todoTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) ListTasks(ctx context.Context, actor user.Actor, q service.ListQuery) (*task.Page, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Page), args.Error(1)
}

func (m *MockTaskService) GetOverdueTasks(ctx context.Context, actor user.Actor, page int) (*task.Page, error) {
	args := m.Called(ctx, actor, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Page), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, actor user.Actor, draft task.Draft) (*task.Task, error) {
	args := m.Called(ctx, actor, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, actor user.Actor, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, actor user.Actor, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ToggleTask(ctx context.Context, actor user.Actor, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

// MockAuthService - мок сервиса аккаунтов
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

var _ handlers.AuthService = (*MockAuthService)(nil)

var testActor = user.Actor{ID: uuid.New(), Email: "ana@example.com"}

// newRouter собирает маршруты как в приложении, актор подставляется вместо проверки токена
func newRouter(svc handlers.TaskService, actor user.Actor) http.Handler {
	h := handlers.NewTaskHandler(svc)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/health", h.HealthCheck)
	r.Route("/tasks", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), actor)))
			})
		})
		h.Routes(r)
	})
	return r
}

func sampleTask(id uuid.UUID) *task.Task {
	due := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	desc := "молоко"
	now := time.Now().UTC()
	return &task.Task{
		ID:          id,
		OwnerID:     testActor.ID,
		Title:       "Купить молоко",
		Description: &desc,
		DueDate:     &due,
		Priority:    task.PriorityHigh,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// TestTaskHandler_HealthCheck тестирует HealthCheck
func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("service unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, newRouter(mockService, testActor), http.MethodGet, "/health", "", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), handlers.ServiceName)

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_PostTask тестирует создание задачи
func TestTaskHandler_PostTask(t *testing.T) {
	taskID := uuid.New()

	violations := service.Violations{}
	violations.Add("title", "Поле title обязательно.")
	violations.Add("priority", "Поле priority обязательно.")

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
		check          func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:        "success - create task",
			requestBody: `{"title": "Купить молоко", "priority": "high", "due_date": "2000-01-01", "description": null}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, testActor, mock.MatchedBy(func(d task.Draft) bool {
					return d.Title.Value == "Купить молоко" && d.Priority.Value == "high" &&
						d.DueDate.Value == "2000-01-01" && d.Description.Null
				})).Return(sampleTask(taskID), nil)
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var response dto.TaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, taskID, response.ID)
				assert.Equal(t, testActor.ID, response.OwnerID)
				require.NotNil(t, response.DueDate)
				assert.Equal(t, "2000-01-01", *response.DueDate)
				assert.True(t, response.IsOverdue)
			},
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - validation",
			requestBody: `{}`,
			contentType: "application/json; charset=utf-8",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, testActor, mock.Anything).
					Return(nil, service.NewValidationError(violations))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var body struct {
					Error   string `json:"error"`
					Details struct {
						Errors map[string][]string `json:"errors"`
					} `json:"details"`
				}
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, service.CodeValidation, body.Error)
				assert.Contains(t, body.Details.Errors, "title")
				assert.Contains(t, body.Details.Errors, "priority")
			},
		},
		{
			name:        "error - service error",
			requestBody: `{"title": "x", "priority": "low"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, testActor, mock.Anything).
					Return(nil, errors.New("db is down"))
			},
			expectedStatus: http.StatusInternalServerError,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.NotContains(t, w.Body.String(), "db is down")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, newRouter(mockService, testActor), http.MethodPost, "/tasks", tt.requestBody,
				map[string]string{"Content-Type": tt.contentType})

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, w)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_GetTask тестирует получение задачи по ID
func TestTaskHandler_GetTask(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		taskID         string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:   "success - get task",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, testActor, taskID).Return(sampleTask(taskID), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - invalid UUID",
			taskID:         "invalid-uuid",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "error - task not found",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, testActor, taskID).
					Return(nil, service.NewNotFound("задача", taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "error - foreign task",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, testActor, taskID).
					Return(nil, service.NewUnauthorized("view"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "error - service error",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, testActor, taskID).
					Return(nil, errors.New("internal error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, newRouter(mockService, testActor), http.MethodGet, "/tasks/"+tt.taskID, "", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_UpdateTask тестирует частичное обновление через PATCH и PUT
func TestTaskHandler_UpdateTask(t *testing.T) {
	taskID := uuid.New()
	titleOnly := mock.MatchedBy(func(p task.Patch) bool {
		return p.Title.Present() && p.Title.Value == "Новое" &&
			!p.Description.Set && !p.DueDate.Set && !p.Priority.Set && !p.Completed.Set
	})

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		t.Run("success - title only via "+method, func(t *testing.T) {
			mockService := new(MockTaskService)
			updated := sampleTask(taskID)
			updated.Title = "Новое"
			mockService.On("UpdateTask", mock.Anything, testActor, taskID, titleOnly).Return(updated, nil)

			w := do(t, newRouter(mockService, testActor), method, "/tasks/"+taskID.String(), `{"title": "Новое"}`, jsonHeaders)

			require.Equal(t, http.StatusOK, w.Code)
			var response dto.TaskResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, "Новое", response.Title)
			mockService.AssertExpectations(t)
		})
	}

	t.Run("error - wrong type is passed to validation", func(t *testing.T) {
		mockService := new(MockTaskService)
		violations := service.Violations{}
		violations.Add("completed", "Поле completed должно быть логическим значением.")
		mockService.On("UpdateTask", mock.Anything, testActor, taskID, mock.MatchedBy(func(p task.Patch) bool {
			return p.Completed.Invalid
		})).Return(nil, service.NewValidationError(violations))

		w := do(t, newRouter(mockService, testActor), http.MethodPatch, "/tasks/"+taskID.String(), `{"completed": "yes"}`, jsonHeaders)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockService.AssertExpectations(t)
	})
}

// TestTaskHandler_ToggleTask тестирует переключение выполненности
func TestTaskHandler_ToggleTask(t *testing.T) {
	taskID := uuid.New()
	mockService := new(MockTaskService)
	toggled := sampleTask(taskID)
	toggled.Completed = true
	mockService.On("ToggleTask", mock.Anything, testActor, taskID).Return(toggled, nil)

	w := do(t, newRouter(mockService, testActor), http.MethodPatch, "/tasks/"+taskID.String()+"/toggle", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.TaskResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Completed)
	assert.False(t, response.IsOverdue, "выполненная задача не просрочена")
	mockService.AssertExpectations(t)
}

// TestTaskHandler_DeleteTask тестирует удаление
func TestTaskHandler_DeleteTask(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - deleted",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, testActor, taskID).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - foreign task",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, testActor, taskID).Return(service.NewUnauthorized("delete"))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			w := do(t, newRouter(mockService, testActor), http.MethodDelete, "/tasks/"+taskID.String(), "", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var response dto.MessageResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.NotEmpty(t, response.Message)
			}
			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_ListTasks тестирует разбор фильтров, формат страницы и HTML
func TestTaskHandler_ListTasks(t *testing.T) {
	items := []*task.Task{sampleTask(uuid.New()), sampleTask(uuid.New())}
	query := service.ListQuery{Status: "pending", Priority: "high", DueDate: "2000-01-01", Page: 1}

	t.Run("success - json", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasks", mock.Anything, testActor, query).
			Return(task.NewPage(items, 1, 2, 3), nil)

		w := do(t, newRouter(mockService, testActor), http.MethodGet,
			"/tasks?status=pending&priority=high&due_date=2000-01-01", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var response dto.ListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Len(t, response.Data, 2)
		assert.Equal(t, 1, response.CurrentPage)
		assert.Equal(t, 2, response.LastPage)
		assert.Equal(t, 3, response.Total)
		require.NotNil(t, response.NextPage)
		assert.Equal(t, 2, *response.NextPage)
		mockService.AssertExpectations(t)
	})

	t.Run("success - bad page falls back to first", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasks", mock.Anything, testActor, service.ListQuery{Page: 1}).
			Return(task.NewPage(nil, 1, 15, 0), nil)

		w := do(t, newRouter(mockService, testActor), http.MethodGet, "/tasks?page=abc", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
		assert.Contains(t, w.Body.String(), `"next_page":null`)
		mockService.AssertExpectations(t)
	})

	t.Run("success - html", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasks", mock.Anything, testActor, query).
			Return(task.NewPage(items, 1, 2, 3), nil)

		w := do(t, newRouter(mockService, testActor), http.MethodGet,
			"/tasks?status=pending&priority=high&due_date=2000-01-01", "",
			map[string]string{"Accept": "text/html,application/xhtml+xml,*/*;q=0.8"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		body := w.Body.String()
		assert.Contains(t, body, "Купить молоко")
		assert.Contains(t, body, "page=2")
		assert.Contains(t, body, "status=pending")
		mockService.AssertExpectations(t)
	})

	t.Run("error - unauthenticated actor", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasks", mock.Anything, user.Actor{}, mock.Anything).
			Return(nil, service.NewUnauthenticated())

		w := do(t, newRouter(mockService, user.Actor{}), http.MethodGet, "/tasks", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertExpectations(t)
	})
}

// TestTaskHandler_GetOverdueTasks тестирует список просроченных
func TestTaskHandler_GetOverdueTasks(t *testing.T) {
	mockService := new(MockTaskService)
	mockService.On("GetOverdueTasks", mock.Anything, testActor, 3).
		Return(task.NewPage([]*task.Task{}, 3, 15, 31), nil)

	w := do(t, newRouter(mockService, testActor), http.MethodGet, "/tasks/overdue?page=3", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.ListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 3, response.CurrentPage)
	assert.Nil(t, response.NextPage)
	mockService.AssertExpectations(t)
}

// TestAuthHandler тестирует регистрацию и вход
func TestAuthHandler(t *testing.T) {
	u := &user.User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", CreatedAt: time.Now().UTC()}
	session := &service.Session{Token: "token", ExpiresAt: time.Now().Add(time.Hour), User: u}

	newAuthRouter := func(svc handlers.AuthService) http.Handler {
		r := chi.NewRouter()
		r.Route("/auth", handlers.NewAuthHandler(svc).Routes)
		return r
	}

	tests := []struct {
		name           string
		path           string
		body           string
		setupMock      func(*MockAuthService)
		expectedStatus int
	}{
		{
			name: "success - register",
			path: "/auth/register",
			body: `{"name": "Ana", "email": "ana@example.com", "password": "secret123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, service.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret123"}).
					Return(session, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "error - email taken",
			path: "/auth/register",
			body: `{"name": "Ana", "email": "ana@example.com", "password": "secret123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, service.NewConflict("Email уже занят"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "success - login",
			path: "/auth/login",
			body: `{"email": "ana@example.com", "password": "secret123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "ana@example.com", "secret123").Return(session, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - invalid credentials",
			path: "/auth/login",
			body: `{"email": "ana@example.com", "password": "wrong"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "ana@example.com", "wrong").
					Return(nil, service.NewBusinessError(service.CodeInvalidCredentials, "Неверный email или пароль"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			w := do(t, newAuthRouter(mockService), http.MethodPost, tt.path, tt.body, jsonHeaders)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus < 300 {
				var response dto.AuthResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, "token", response.Token)
				assert.Equal(t, "Bearer", response.TokenType)
				assert.Equal(t, u.ID, response.User.ID)

				cookies := w.Result().Cookies()
				require.Len(t, cookies, 1)
				assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
				assert.True(t, cookies[0].HttpOnly)
			}
			mockService.AssertExpectations(t)
		})
	}
}
