// Package data provides the data models and persistence back ends
// for the books API.
package data

import (
	"strings"

	"github.com/google/uuid"

	"github.com/aoideee/books-api/internal/validator"
)

// maxFieldBytes caps title and author length.
const maxFieldBytes = 500

// Book represents a single book record owned by the store.
type Book struct {
	ID     string `json:"id"`     // Opaque identifier assigned by the store
	Title  string `json:"title"`  // Title of the book
	Author string `json:"author"` // Author of the book
}

// CreateBookInput holds the fields a client must supply when creating a new book.
type CreateBookInput struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// UpdateBookInput holds the fields a client may supply when updating a book.
// Every field is a pointer so we can distinguish between "not provided" (nil)
// and "intentionally set to empty". Only non-nil fields are applied.
type UpdateBookInput struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
}

// Empty reports whether the input carries no field at all.
func (in UpdateBookInput) Empty() bool {
	return in.Title == nil && in.Author == nil
}

// Apply copies the provided fields onto book. The ID is never touched.
func (in UpdateBookInput) Apply(book *Book) {
	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.Author != nil {
		book.Author = *in.Author
	}
}

// NewID returns a fresh opaque book identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidateBook checks the schema every store enforces on a full record.
func ValidateBook(v *validator.Validator, book *Book) {
	checkField(v, "title", book.Title)
	checkField(v, "author", book.Author)
}

// ValidateUpdate checks only the fields present in the input.
func ValidateUpdate(v *validator.Validator, in UpdateBookInput) {
	if in.Title != nil {
		checkField(v, "title", *in.Title)
	}
	if in.Author != nil {
		checkField(v, "author", *in.Author)
	}
}

func checkField(v *validator.Validator, key, value string) {
	v.Check(strings.TrimSpace(value) != "", key, "must be provided")
	v.Check(len(value) <= maxFieldBytes, key, "must not be more than 500 bytes long")
}
