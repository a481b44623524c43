package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
)

// TaskStorage хранит копии задач; наружу также отдаются копии,
// поэтому изменения вне хранилища не видны до Update
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToCreate.ID]; ok {
		return repo.ErrAlreadyExists
	}
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now().UTC()
	}
	if taskToCreate.UpdatedAt.IsZero() {
		taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	}

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

// Update заменяет запись целиком, последняя запись побеждает
func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	updated := taskToUpdate.Clone()
	// владелец и дата создания не меняются
	updated.OwnerID = existed.OwnerID
	updated.CreatedAt = existed.CreatedAt
	s.storage[taskToUpdate.ID] = updated

	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// полное удаление
func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

func (s *TaskStorage) List(ctx context.Context, filter task.Filter, page, limit int) ([]*task.Task, int, error) {
	return s.collect(page, limit, filter.Matches)
}

func (s *TaskStorage) ListOverdue(ctx context.Context, ownerID uuid.UUID, today time.Time, page, limit int) ([]*task.Task, int, error) {
	return s.collect(page, limit, func(t *task.Task) bool {
		return t.OwnerID == ownerID && task.IsOverdue(t, today)
	})
}

func (s *TaskStorage) CountOverdue(ctx context.Context, today time.Time) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, t := range s.storage {
		if task.IsOverdue(t, today) {
			count++
		}
	}
	return count, nil
}

// collect отбирает задачи по предикату, сортирует новые первыми и режет страницу
func (s *TaskStorage) collect(page, limit int, match func(*task.Task) bool) ([]*task.Task, int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*task.Task{}
	// обратный порядок вставки, чтобы при равном created_at новее была позже добавленная
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.storage[s.ids[i]]
		if match(t) {
			matched = append(matched, t)
		}
	}

	slices.SortStableFunc(matched, func(a, b *task.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(matched)
	offset := task.Offset(page, limit)
	res := []*task.Task{}
	for i := offset; i < total && len(res) < limit; i++ {
		res = append(res, matched[i].Clone())
	}

	return res, total, nil
}
