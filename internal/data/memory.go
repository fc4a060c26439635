package data

import (
	"context"
	"sync"
)

// MemoryBookStore keeps books in process memory. Listing follows
// insertion order.
type MemoryBookStore struct {
	mu    sync.RWMutex
	books map[string]Book
	order []string
}

// NewMemoryBookStore constructs an empty MemoryBookStore.
func NewMemoryBookStore() *MemoryBookStore {
	return &MemoryBookStore{books: make(map[string]Book)}
}

// FindAll returns copies of all books.
func (m *MemoryBookStore) FindAll(_ context.Context) ([]*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Book, 0, len(m.order))
	for _, id := range m.order {
		book := m.books[id]
		result = append(result, &book)
	}
	return result, nil
}

// FindByID retrieves a book by its ID.
func (m *MemoryBookStore) FindByID(_ context.Context, id string) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &book, nil
}

// Create adds a new book, automatically assigning an ID.
func (m *MemoryBookStore) Create(_ context.Context, book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book.ID = NewID()
	m.books[book.ID] = *book
	m.order = append(m.order, book.ID)
	return nil
}

// UpdateByID applies input to the book with the given ID if it exists.
func (m *MemoryBookStore) UpdateByID(_ context.Context, id string, input UpdateBookInput) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	input.Apply(&book)
	m.books[id] = book
	return &book, nil
}

// DeleteByID removes the book with the provided ID if it exists.
func (m *MemoryBookStore) DeleteByID(_ context.Context, id string) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	delete(m.books, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return &book, nil
}
