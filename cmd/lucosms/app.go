package main

import (
	"context"
	"fmt"

	"lucosms-backend/internal/config"
	"lucosms-backend/internal/database"
	"lucosms-backend/internal/extractor"
	"lucosms-backend/internal/lock"
	"lucosms-backend/internal/logger"
	"lucosms-backend/internal/repository"
	"lucosms-backend/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const lockPrefix = "lucosms:lock:"

// stores bundles the backends picked from configuration.
type stores struct {
	Contacts  service.ContactStore
	Messages  service.MessageStore
	Templates service.TemplateStore
	Locker    lock.Locker
	close     []func() error
}

func (s *stores) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if !cfg.EnvFileLoaded {
		l.Debug(".env file not found, using environment only")
	}
	return l, nil
}

// openStores uses Postgres when DATABASE_URL is set and memory otherwise, and Redis
// for the import lock when REDIS_ADDR is set.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	s := &stores{}

	if cfg.DatabaseURL != "" {
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.close = append(s.close, db.Close)

		if err := database.RunMigrations(ctx, db, database.Migrations, log); err != nil {
			s.Close()
			return nil, err
		}
		s.Contacts = repository.NewContactRepository(db)
		s.Messages = repository.NewMessageRepository(db)
		s.Templates = repository.NewTemplateRepository(db)
	} else {
		log.Warn("DATABASE_URL not set, contacts, templates and message history are kept in memory")
		s.Contacts = repository.NewMemoryContactRepository()
		s.Messages = repository.NewMemoryMessageRepository()
		s.Templates = repository.NewMemoryTemplateRepository()
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			s.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.close = append(s.close, client.Close)
		s.Locker = lock.NewRedisLocker(client, lockPrefix, cfg.ImportLockTTL, log)
	} else {
		s.Locker = lock.NewLocalLocker()
	}

	return s, nil
}

func newExtractor(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.NumberExtractor, error) {
	switch cfg.Extractor {
	case config.ExtractorGemini:
		return extractor.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	case config.ExtractorWebhook:
		if cfg.ExtractorURL == "" {
			return nil, fmt.Errorf("EXTRACTOR_URL is required for the webhook extractor")
		}
		return extractor.NewWebhookExtractor(cfg.ExtractorURL, cfg.ExtractorTimeout, log), nil
	case config.ExtractorRules:
		return extractor.NewRuleExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q (want gemini, webhook or rules)", cfg.Extractor)
	}
}
