package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
	"todoTracker/internal/auth"
	"todoTracker/internal/cache"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/repository/inmemory"
	"todoTracker/internal/repository/postgres"
	"todoTracker/internal/repository/sqlite"
	"todoTracker/internal/service"
	"todoTracker/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

type App struct {
	config      *config.Config
	server      *http.Server
	router      *chi.Mux
	handler     http.Handler
	repository  service.TaskRepository
	users       service.UserRepository
	cache       service.Cache
	service     *service.TaskService
	authService *service.AuthService
	worker      *worker.OverdueWorker
	shutdowns   []func() // функции для graceful shutdown, выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.onShutdown(func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initStorage(ctx); err != nil {
		return err
	}
	if err := a.initCache(ctx); err != nil {
		return err
	}

	opts := []service.Option{}
	if a.cache != nil {
		opts = append(opts, service.WithCache(a.cache))
	}
	a.service = service.NewTaskService(a.repository, opts...)
	a.authService = service.NewAuthService(
		a.users,
		auth.NewJWTManager(a.config.Auth),
		auth.NewPasswordHasher(auth.DefaultBcryptCost),
	)
	a.worker = worker.NewOverdueWorker(a.repository, a.config.Worker.OverdueInterval)

	a.initRouter()
	// входящий traceparent становится контекстом запроса, его trace id служит request id
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	a.handler = otelhttp.NewHandler(a.router, handlers.ServiceName)
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("cache", a.config.Cache.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

// Handler обработчик сервера целиком, для тестов
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run запускает сервер и воркер и блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.worker.Start(workerCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP: Сервер остановился с ошибкой", err)
			runErr = fmt.Errorf("http сервер: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP: Ошибка остановки сервера", err)
	}

	cancelWorker()
	wg.Wait()
	a.Shutdown()

	return runErr
}

// Migrate применяет (или откатывает при down) схему БД и закрывает соединение
func (a *App) Migrate(ctx context.Context, down bool) error {
	defer a.Shutdown()

	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return err
		}
		defer storage.Close()
		if down {
			return storage.Down()
		}
		return storage.Migrate()
	case config.RepositorySQLite:
		if down {
			return fmt.Errorf("откат схемы для sqlite не поддерживается")
		}
		// схема создаётся при открытии
		storage, err := sqlite.New(a.config.SQLite.Path, a.config.Logging.Development)
		if err != nil {
			return err
		}
		storage.Close()
		return nil
	default:
		return fmt.Errorf("хранилищу %q миграции не нужны", a.config.Repository.Type)
	}
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func (a *App) onShutdown(fn func()) {
	a.shutdowns = append(a.shutdowns, fn)
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.onShutdown(func() {
			logger.Info("Закрытие пула соединений postgres...")
			storage.Close()
		})
		if err := storage.Migrate(); err != nil {
			return err
		}
		a.repository = storage.Tasks()
		a.users = storage.Users()

	case config.RepositorySQLite:
		storage, err := sqlite.New(a.config.SQLite.Path, a.config.Logging.Development)
		if err != nil {
			return fmt.Errorf("открытие sqlite: %w", err)
		}
		a.onShutdown(func() {
			logger.Info("Закрытие sqlite...")
			storage.Close()
		})
		a.repository = storage.Tasks()
		a.users = storage.Users()

	default:
		logger.Warn("Данные хранятся в памяти и пропадут после перезапуска")
		a.repository = inmemory.NewTaskStorage()
		a.users = inmemory.NewUserStorage()
	}
	return nil
}

func (a *App) initCache(ctx context.Context) error {
	cfg := a.config.Cache

	switch cfg.Type {
	case config.CacheMemory:
		memoryCache := cache.NewMemory(cfg.Size, cfg.TTL)
		a.onShutdown(func() {
			stats := memoryCache.GetStats()
			logger.Info("Cache: Итоговая статистика", zap.Any("stats", stats))
			_ = memoryCache.Close()
		})
		a.cache = memoryCache

	case config.CacheRedis:
		client := cache.NewRedisClient(cfg.Redis)
		redisCache := cache.NewRedis(client, cache.DefaultPrefix, cfg.TTL)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			_ = redisCache.Close()
			return fmt.Errorf("подключение к redis %s: %w", cfg.Redis.Addr, err)
		}
		a.onShutdown(func() {
			logger.Info("Закрытие соединения с redis...")
			_ = redisCache.Close()
		})
		a.cache = redisCache

	default:
		logger.Info("Кэш чтения отключён")
	}
	return nil
}

func (a *App) initRouter() {
	taskHandler := handlers.NewTaskHandler(a.service)
	authHandler := handlers.NewAuthHandler(a.authService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(a.config.RateLimit))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}

	r.Get("/health", taskHandler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.NoCache)
		authHandler.Routes(r)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Use(middleware.Authenticate(a.authService))
		taskHandler.Routes(r)
	})

	a.router = r
}
