package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"todoTracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeConfig сериализует фикстуру в YAML во временный файл
func writeConfig(t *testing.T, fixture map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(fixture)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// TestLoad_File тестирует чтение YAML и значения по умолчанию
func TestLoad_File(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"server": map[string]any{"port": "9090"},
		"repository": map[string]any{
			"type": "sqlite",
		},
		"sqlite": map[string]any{"path": "test.db"},
		"cache": map[string]any{
			"type": "redis",
			"ttl":  "30s",
			"redis": map[string]any{
				"addr": "redis:6379",
			},
		},
		"auth": map[string]any{"jwt_secret": "secret"},
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
	assert.Equal(t, config.RepositorySQLite, cfg.Repository.Type)
	assert.Equal(t, "test.db", cfg.SQLite.Path)
	assert.Equal(t, config.CacheRedis, cfg.Cache.Type)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)

	// не заданные в файле ключи берутся из умолчаний
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.Equal(t, 5*time.Minute, cfg.Worker.OverdueInterval)
}

// TestLoad_Env тестирует переопределение переменными окружения
func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"auth": map[string]any{"jwt_secret": "from-file"},
	})

	t.Setenv("TODO_AUTH_JWT_SECRET", "from-env")
	t.Setenv("TODO_REPOSITORY_TYPE", "postgres")
	t.Setenv("TODO_DATABASE_URL", "postgres://u:p@db:5432/todo")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, config.RepositoryPostgres, cfg.Repository.Type)
	assert.Equal(t, "postgres://u:p@db:5432/todo", cfg.Database.URL)
}

// TestLoad_Errors тестирует ошибки загрузки
func TestLoad_Errors(t *testing.T) {
	t.Run("error - missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("error - no jwt secret", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, map[string]any{}))
		assert.ErrorContains(t, err, "jwt_secret")
	})
}

// TestConfig_Validate тестирует проверку значений
func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Repository: config.RepositoryConfig{Type: config.RepositoryInMemory},
			Cache:      config.CacheConfig{Type: config.CacheNone},
			Auth:       config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "success - valid", mutate: func(c *config.Config) {}},
		{name: "error - unknown repository", mutate: func(c *config.Config) { c.Repository.Type = "mongo" }, wantErr: true},
		{name: "error - unknown cache", mutate: func(c *config.Config) { c.Cache.Type = "memcached" }, wantErr: true},
		{name: "error - zero token ttl", mutate: func(c *config.Config) { c.Auth.TokenTTL = 0 }, wantErr: true},
		{name: "error - postgres without url", mutate: func(c *config.Config) { c.Repository.Type = config.RepositoryPostgres }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
