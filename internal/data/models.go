package data

import (
	"context"
	"errors"
)

var (
	// ErrRecordNotFound is returned when no book matches the requested id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrNilDatabaseConnection is returned when a store is built without a connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	// ErrUnsupportedDriver is returned by Open for an unknown driver name.
	ErrUnsupportedDriver = errors.New("unsupported store driver")
	// ErrBuildingQueryFailed wraps goqu rendering failures.
	ErrBuildingQueryFailed = errors.New("building query failed")
)

// BookStore is the persistence contract the HTTP handlers consume.
// Lookups by id that match nothing return ErrRecordNotFound.
type BookStore interface {
	// FindAll returns every stored book in the order the back end yields them.
	FindAll(ctx context.Context) ([]*Book, error)
	FindByID(ctx context.Context, id string) (*Book, error)
	// Create assigns a new ID to book and persists it.
	Create(ctx context.Context, book *Book) error
	// UpdateByID applies input and returns the post-update record.
	UpdateByID(ctx context.Context, id string, input UpdateBookInput) (*Book, error)
	// DeleteByID removes the book and returns it as it was before removal.
	DeleteByID(ctx context.Context, id string) (*Book, error)
}

// Models is a top-level container that groups all store types together.
// It is passed around the application via applicationDependencies so every
// handler has access to persistence without knowing which back end is used.
type Models struct {
	Books BookStore
	close func() error
}

// NewModels wraps an already constructed store. Close on the result is a no-op.
func NewModels(books BookStore) Models {
	return Models{Books: books}
}

// Close releases the connection held by the underlying store, if any.
func (m Models) Close() error {
	if m.close == nil {
		return nil
	}
	return m.close()
}
