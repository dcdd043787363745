package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/catalog"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend builds the store selected by config.Type and wraps it in an
// ExpenseService together with the category reader and, if configured, an
// AMQP publisher.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store storage.Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		f.logger.Info("Initialized SQLite backend", "db_path", repo.Path())
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	reader := catalog.NewReader(config.CategoriesPath, config.CategoriesCacheTTL)

	// A broker outage must not keep the service from starting.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			amqpClient = client
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewExpenseService(store, reader, publisher)

	f.logger.Info("Backend ready",
		"type", config.Type,
		"categories_path", reader.Path(),
		"categories_cache_ttl", config.CategoriesCacheTTL,
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Service: svc,
		Catalog: reader,
		Cleanup: func() error {
			if amqpClient == nil {
				return nil
			}
			if err := amqpClient.Close(); err != nil {
				return fmt.Errorf("close amqp client: %w", err)
			}
			return nil
		},
	}, nil
}
