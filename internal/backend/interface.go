package backend

import (
	"context"
	"time"

	"expensetracker/internal/catalog"
	"expensetracker/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult carries the wired service and what is needed to tear it down.
type BackendResult struct {
	Service *services.ExpenseService
	Catalog *catalog.Reader
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Category catalog, shared by every backend
	CategoriesPath     string
	CategoriesCacheTTL time.Duration

	// Event publishing, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
