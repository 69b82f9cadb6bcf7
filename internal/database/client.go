package database

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
)

type client[T any] struct {
	db             *surrealdb.DB
	executor       QueryExecutor[T]
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a type-safe database client for records of type T.
func NewClient[T any](db *surrealdb.DB, opts ...ClientOption[T]) (Client[T], error) {
	c := &client[T]{
		db:             db,
		queryTimeout:   defaultQueryTimeout,
		executeTimeout: defaultExecuteTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.executor == nil {
		if db == nil {
			return nil, NewDBError(ErrInvalidInput, "db cannot be nil")
		}
		c.executor = NewSurrealExecutor[T](db)
	}
	return c, nil
}

func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.Query(ctx, query, params)
}

func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.QueryOne(ctx, query, params)
}

func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()
	return c.executor.Execute(ctx, query, params)
}

func (c *client[T]) Create(ctx context.Context, table string, data any) (*T, error) {
	if table == "" {
		return nil, NewDBError(ErrInvalidInput, "table cannot be empty")
	}
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "CREATE type::table($table) CONTENT $data"
	result, err := c.executor.QueryOne(ctx, query, map[string]any{"table": table, "data": data})
	if err != nil {
		return nil, NewDBError(err, "create operation failed")
	}
	return result, nil
}

func (c *client[T]) Select(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, NewDBError(ErrInvalidInput, "id cannot be empty")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT * FROM %s", id)
	result, err := c.executor.QueryOne(ctx, query, nil)
	if err != nil {
		return nil, NewDBError(err, "select operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrNotFound, "record not found")
	}
	return result, nil
}

func (c *client[T]) Update(ctx context.Context, id string, data any) (*T, error) {
	if id == "" {
		return nil, NewDBError(ErrInvalidInput, "id cannot be empty")
	}
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "UPDATE type::thing($id) MERGE $data"
	result, err := c.executor.QueryOne(ctx, query, map[string]any{"id": id, "data": data})
	if err != nil {
		return nil, NewDBError(err, "update operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrNotFound, "record not found")
	}
	return result, nil
}

func (c *client[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewDBError(ErrInvalidInput, "id cannot be empty")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "DELETE type::thing($id)"
	return c.executor.Execute(ctx, query, map[string]any{"id": id})
}

func (c *client[T]) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close(context.Background())
}
