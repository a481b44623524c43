package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/metrics"
	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"
	"todoTracker/internal/policy"
	rep "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PageSize фиксированный размер страницы списка задач
const PageSize = 15

const resourceTask = "задача"

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo   TaskRepository
	policy *policy.TaskPolicy
	cache  Cache
	group  singleflight.Group
	now    func() time.Time
}

type Option func(*TaskService)

// WithCache включает кэш чтения списков и задач
func WithCache(cache Cache) Option {
	return func(s *TaskService) {
		s.cache = cache
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func NewTaskService(repo TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{
		repo:   repo,
		policy: policy.NewTaskPolicy(),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListQuery сырые параметры списка в том виде, в каком они пришли от клиента
type ListQuery struct {
	Status   string
	Priority string
	DueDate  string
	Page     int
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		logger.Error("Service: Хранилище недоступно", err)
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			logger.Error("Service: Кэш недоступен", err)
			return fmt.Errorf("проверка здоровья сервиса: кэш: %w", err)
		}
	}
	return nil
}

// ListTasks страница задач актора, новые первыми.
// Некорректные значения фильтров не приводят к ошибке, критерий просто не применяется.
func (s *TaskService) ListTasks(ctx context.Context, actor user.Actor, q ListQuery) (page *task.Page, err error) {
	defer s.record("list", &err)

	if !s.policy.CanListOwn(actor) {
		return nil, NewUnauthenticated()
	}

	filter, issues := task.ParseFilter(actor.ID, q.Status, q.Priority, q.DueDate)
	if len(issues) > 0 {
		logger.Warn("Service: Проигнорированы некорректные фильтры",
			zap.Strings("filters", issues),
			zap.String("status", q.Status),
			zap.String("priority", q.Priority),
			zap.String("due_date", q.DueDate),
			zap.String("actor_id", actor.ID.String()))
	}

	pageNum := normalizePage(q.Page)
	key := cacheKey(actor.ID, "list", filter.Key(), strconv.Itoa(pageNum))

	return s.cachedPage(ctx, key, func(ctx context.Context) ([]*task.Task, int, error) {
		return s.repo.List(ctx, filter, pageNum, PageSize)
	}, pageNum)
}

// GetOverdueTasks страница просроченных задач актора
func (s *TaskService) GetOverdueTasks(ctx context.Context, actor user.Actor, pageNum int) (page *task.Page, err error) {
	defer s.record("overdue", &err)

	if !s.policy.CanListOwn(actor) {
		return nil, NewUnauthenticated()
	}

	pageNum = normalizePage(pageNum)
	today := task.TruncateDate(s.now())
	key := cacheKey(actor.ID, "overdue", today.Format(task.DateLayout), strconv.Itoa(pageNum))

	return s.cachedPage(ctx, key, func(ctx context.Context) ([]*task.Task, int, error) {
		return s.repo.ListOverdue(ctx, actor.ID, today, pageNum, PageSize)
	}, pageNum)
}

func (s *TaskService) CreateTask(ctx context.Context, actor user.Actor, draft task.Draft) (created *task.Task, err error) {
	defer s.record("create", &err)

	if !s.policy.CanCreate(actor) {
		return nil, NewUnauthenticated()
	}

	opts, violations := validateDraft(draft)
	if !violations.Empty() {
		logger.Info("Service: Ошибка валидации при создании задачи",
			zap.Strings("fields", violations.Fields()),
			zap.String("actor_id", actor.ID.String()))
		return nil, NewValidationError(violations)
	}

	now := s.now()
	newTask := &task.Task{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   actor.ID,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.Apply(newTask, opts...)

	if err := s.repo.Create(ctx, newTask); err != nil {
		logger.Error("Service: Не удалось создать задачу", err, zap.String("actor_id", actor.ID.String()))
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	s.invalidate(ctx, actor.ID)
	logger.Info("Service: Задача создана", zap.String("task_id", newTask.ID.String()))
	return newTask, nil
}

func (s *TaskService) GetTask(ctx context.Context, actor user.Actor, id uuid.UUID) (found *task.Task, err error) {
	defer s.record("get", &err)

	if !actor.IsAuthenticated() {
		return nil, NewUnauthenticated()
	}

	key := cacheKey(actor.ID, "task", id.String())
	if s.cache != nil {
		var cached task.Task
		if s.cacheGet(ctx, key, &cached) {
			return &cached, nil
		}
	}

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanView(actor, t) {
		return nil, s.deny(policy.ActionView, actor, id)
	}

	s.cacheSet(ctx, key, t)
	return t, nil
}

// UpdateTask применяет только переданные поля; отсутствующие остаются как были
func (s *TaskService) UpdateTask(ctx context.Context, actor user.Actor, id uuid.UUID, patch task.Patch) (updated *task.Task, err error) {
	defer s.record("update", &err)

	if !actor.IsAuthenticated() {
		return nil, NewUnauthenticated()
	}

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanUpdate(actor, t) {
		return nil, s.deny(policy.ActionUpdate, actor, id)
	}

	opts, violations := validatePatch(patch)
	if !violations.Empty() {
		logger.Info("Service: Ошибка валидации при обновлении задачи",
			zap.Strings("fields", violations.Fields()),
			zap.String("task_id", id.String()))
		return nil, NewValidationError(violations)
	}

	task.Apply(t, opts...)
	return s.save(ctx, t)
}

// ToggleTask переключает признак выполнения на противоположный
func (s *TaskService) ToggleTask(ctx context.Context, actor user.Actor, id uuid.UUID) (toggled *task.Task, err error) {
	defer s.record("toggle", &err)

	if !actor.IsAuthenticated() {
		return nil, NewUnauthenticated()
	}

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanUpdate(actor, t) {
		return nil, s.deny(policy.ActionUpdate, actor, id)
	}

	task.Apply(t, task.WithCompleted(!t.Completed))
	return s.save(ctx, t)
}

// DeleteTask полное удаление; повторное удаление вернёт NOT_FOUND
func (s *TaskService) DeleteTask(ctx context.Context, actor user.Actor, id uuid.UUID) (err error) {
	defer s.record("delete", &err)

	if !actor.IsAuthenticated() {
		return NewUnauthenticated()
	}

	t, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(actor, t) {
		return s.deny(policy.ActionDelete, actor, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(resourceTask, id.String())
		}
		logger.Error("Service: Не удалось удалить задачу", err, zap.String("task_id", id.String()))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	s.invalidate(ctx, t.OwnerID)
	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) load(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(resourceTask, id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) save(ctx context.Context, t *task.Task) (*task.Task, error) {
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(resourceTask, t.ID.String())
		}
		logger.Error("Service: Не удалось обновить задачу", err, zap.String("task_id", t.ID.String()))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	s.invalidate(ctx, t.OwnerID)
	return t, nil
}

// deny владелец задачи в ответ не попадает, только в лог
func (s *TaskService) deny(action policy.Action, actor user.Actor, id uuid.UUID) error {
	logger.Warn("Service: Действие запрещено политикой",
		zap.String("action", string(action)),
		zap.String("actor_id", actor.ID.String()),
		zap.String("task_id", id.String()))
	return NewUnauthorized(string(action))
}

// cachedPage читает страницу из кэша, а при промахе один раз на ключ идёт в хранилище.
// Загрузка общая для всех ожидающих, поэтому отмена контекста первого вызова её не прерывает
func (s *TaskService) cachedPage(ctx context.Context, key string, fetch func(context.Context) ([]*task.Task, int, error), pageNum int) (*task.Page, error) {
	if s.cache != nil {
		var cached task.Page
		if s.cacheGet(ctx, key, &cached) {
			return &cached, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		fillCtx := context.WithoutCancel(ctx)
		items, total, err := fetch(fillCtx)
		if err != nil {
			return nil, err
		}
		page := task.NewPage(items, pageNum, PageSize, total)
		s.cacheSet(fillCtx, key, page)
		return page, nil
	})
	if err != nil {
		logger.Error("Service: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	return v.(*task.Page), nil
}

func (s *TaskService) cacheGet(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn("Cache: Ошибка чтения, идём в хранилище", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *TaskService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		logger.Warn("Cache: Ошибка записи", zap.String("key", key), zap.Error(err))
	}
}

// invalidate сбрасывает всё, что закэшировано для владельца
func (s *TaskService) invalidate(ctx context.Context, ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, ownerPrefix(ownerID)); err != nil {
		logger.Warn("Cache: Ошибка инвалидации", zap.String("owner_id", ownerID.String()), zap.Error(err))
	}
}

func (s *TaskService) record(operation string, err *error) {
	result := "ok"
	if *err != nil {
		var busErr *BusinessError
		if errors.As(*err, &busErr) {
			result = strings.ToLower(busErr.Code)
		} else {
			result = "error"
		}
	}
	metrics.TaskOperations.WithLabelValues(operation, result).Inc()
}

func ownerPrefix(ownerID uuid.UUID) string {
	return "tasks:" + ownerID.String() + ":"
}

// cacheKey ключ в пространстве владельца: tasks:<owner>:<parts...>
func cacheKey(ownerID uuid.UUID, parts ...string) string {
	return ownerPrefix(ownerID) + strings.Join(parts, ":")
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
