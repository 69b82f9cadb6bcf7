package database

import (
	"context"

	"github.com/surrealdb/surrealdb.go"
)

// DBConnection is a managed database connection. It abstracts the driver
// and handles reconnection so stores can run operations without owning
// connection state.
type DBConnection interface {
	DB() (*surrealdb.DB, error)
	WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error
	Close(ctx context.Context) error
	IsHealthy() bool
	StartMonitoring()
	Connect(ctx context.Context) error
}

// Client is a type-safe database client for records of type T.
type Client[T any] interface {
	// Create inserts a record into table. Returns the stored record with
	// server-generated fields populated.
	Create(ctx context.Context, table string, data any) (*T, error)

	// Select retrieves a record by its full ID (e.g. "card:kaeya").
	// Returns ErrNotFound when no record exists.
	Select(ctx context.Context, id string) (*T, error)

	// Update merges data into the record with the given ID.
	Update(ctx context.Context, id string, data any) (*T, error)

	// Delete removes the record with the given ID.
	Delete(ctx context.Context, id string) error

	// Query runs a raw query with $param placeholders and returns all rows.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)

	// QueryOne runs a raw query and returns the first row, or (nil, nil)
	// when there is none.
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)

	// Execute runs a query whose rows are not needed.
	Execute(ctx context.Context, query string, params map[string]any) error

	// Close releases the client's resources.
	Close() error
}

// QueryExecutor runs queries for records of type T. Used internally by the
// Client implementation and swappable in tests.
type QueryExecutor[T any] interface {
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)
	Execute(ctx context.Context, query string, params map[string]any) error
}

// ClientOption configures a Client.
type ClientOption[T any] func(*client[T])

// WithExecutor swaps in a custom QueryExecutor, usually a fake in tests.
func WithExecutor[T any](executor QueryExecutor[T]) ClientOption[T] {
	return func(c *client[T]) {
		c.executor = executor
	}
}
