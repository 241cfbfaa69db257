package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/database"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// Config selects where the session snapshot lives.
type Config struct {
	Backend   string // file | postgres | redis | memory
	File      string
	Profile   string
	TenantTTL time.Duration
	RedisAddr string
	RedisDB   int
}

// ConfigFromEnv reads session config from environment variables.
func ConfigFromEnv() Config {
	file := os.Getenv("STATE_FILE")
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		file = filepath.Join(home, ".hotelit", "session.json")
	}
	return Config{
		Backend:   utilities.GetEnv("STATE_BACKEND", "file"),
		File:      file,
		Profile:   utilities.GetEnv("STATE_PROFILE", "default"),
		TenantTTL: utilities.GetEnvAsDuration("TENANT_CACHE_TTL", 10*time.Minute),
		RedisAddr: utilities.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   utilities.GetEnvAsInt("REDIS_DB", 0),
	}
}

// OpenRepo builds the configured repo. The returned close func releases any
// connection it opened and is never nil.
func OpenRepo(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (repo.Repo, func(), error) {
	logger = utilities.OrNop(logger)
	noop := func() {}
	switch cfg.Backend {
	case "", "file":
		logger.Debugw("session state in file", "path", cfg.File)
		return repo.NewFileRepo(cfg.File), noop, nil
	case "memory":
		return repo.NewMemory(), noop, nil
	case "postgres":
		db, err := database.Connect(database.ConfigFromEnv())
		if err != nil {
			return nil, noop, err
		}
		r := repo.NewPGRepo(db, cfg.Profile)
		if err := r.EnsureTable(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("ensure console_sessions: %w", err)
		}
		logger.Debugw("session state in postgres", "profile", cfg.Profile)
		return r, func() { _ = db.Close() }, nil
	case "redis":
		c := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		logger.Debugw("session state in redis", "addr", cfg.RedisAddr, "profile", cfg.Profile)
		return repo.NewRedisRepo(c, cfg.Profile), func() { _ = c.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown STATE_BACKEND %q", cfg.Backend)
	}
}
