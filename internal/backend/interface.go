package backend

import (
	"context"

	"finboard/internal/amqp"
	"finboard/internal/services"
	"finboard/internal/storage"
)

// CleanupFunc releases the resources of a backend.
type CleanupFunc func() error

// Result is a ready repository plus the optional AMQP client.
type Result struct {
	Repository storage.Repository
	AMQP       *amqp.Client
	Cleanup    CleanupFunc
}

// Publisher returns the AMQP client as an event publisher, or nil when AMQP
// is disabled.
func (r *Result) Publisher() services.EventPublisher {
	if r.AMQP == nil {
		return nil
	}
	return r.AMQP
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP is optional for every backend type.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireAMQP turns a failed AMQP connection into an error instead of a
	// warning. The worker cannot run without it.
	RequireAMQP bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
