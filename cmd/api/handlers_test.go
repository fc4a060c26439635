package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/books-api/internal/data"
)

// bookStoreSpy is a data.BookStore that answers with canned values and
// records how it was called.
type bookStoreSpy struct {
	books    []*data.Book
	book     *data.Book
	err      error
	panicMsg string
	newID    string

	calls      map[string]int
	lastID     string
	lastCreate data.Book
	lastUpdate data.UpdateBookInput
}

func newBookStoreSpy() *bookStoreSpy {
	return &bookStoreSpy{calls: make(map[string]int), newID: "1"}
}

func (s *bookStoreSpy) record(op string) {
	s.calls[op]++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
}

func (s *bookStoreSpy) FindAll(_ context.Context) ([]*data.Book, error) {
	s.record("FindAll")
	return s.books, s.err
}

func (s *bookStoreSpy) FindByID(_ context.Context, id string) (*data.Book, error) {
	s.record("FindByID")
	s.lastID = id
	return s.book, s.err
}

func (s *bookStoreSpy) Create(_ context.Context, book *data.Book) error {
	s.record("Create")
	s.lastCreate = *book
	if s.err != nil {
		return s.err
	}
	book.ID = s.newID
	return nil
}

func (s *bookStoreSpy) UpdateByID(_ context.Context, id string, input data.UpdateBookInput) (*data.Book, error) {
	s.record("UpdateByID")
	s.lastID = id
	s.lastUpdate = input
	return s.book, s.err
}

func (s *bookStoreSpy) DeleteByID(_ context.Context, id string) (*data.Book, error) {
	s.record("DeleteByID")
	s.lastID = id
	return s.book, s.err
}

func newTestApplication(store data.BookStore) *applicationDependencies {
	app := &applicationDependencies{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.NewModels(store),
	}
	app.config.environment = "testing"
	app.config.storeTimeout = time.Second
	return app
}

func serve(t *testing.T, app *applicationDependencies, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)
	return rr
}

func strPtr(s string) *string { return &s }

func TestListBooksReturnsStoreResultUnmodified(t *testing.T) {
	store := newBookStoreSpy()
	store.books = []*data.Book{
		{ID: "1", Title: "Libro 1", Author: "Autor 1"},
		{ID: "2", Title: "Libro 2", Author: "Autor 2"},
	}
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodGet, "/v1/books", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `[
		{"id": "1", "title": "Libro 1", "author": "Autor 1"},
		{"id": "2", "title": "Libro 2", "author": "Autor 2"}
	]`, rr.Body.String())
	assert.Equal(t, 1, store.calls["FindAll"])
}

func TestListBooksEmptyStore(t *testing.T) {
	store := newBookStoreSpy()
	store.books = []*data.Book{}
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodGet, "/v1/books", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestShowBook(t *testing.T) {
	store := newBookStoreSpy()
	store.book = &data.Book{ID: "1", Title: "Libro encontrado", Author: "Autor encontrado"}
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodGet, "/v1/books/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id": "1", "title": "Libro encontrado", "author": "Autor encontrado"}`, rr.Body.String())
	assert.Equal(t, "1", store.lastID)
	assert.Equal(t, 1, store.calls["FindByID"])
}

func TestShowBookNotFound(t *testing.T) {
	store := newBookStoreSpy()
	store.err = data.ErrRecordNotFound
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodGet, "/v1/books/99", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error": "Book not found"}`, rr.Body.String())
}

func TestCreateBook(t *testing.T) {
	store := newBookStoreSpy()
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodPost, "/v1/books", `{"title": "Nuevo libro", "author": "Nuevo autor"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id": "1", "title": "Nuevo libro", "author": "Nuevo autor"}`, rr.Body.String())
	assert.Equal(t, "/v1/books/1", rr.Header().Get("Location"))
	assert.Equal(t, 1, store.calls["Create"])
	assert.Equal(t, data.Book{Title: "Nuevo libro", Author: "Nuevo autor"}, store.lastCreate)
}

func TestCreateBookRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty body", body: "", want: http.StatusBadRequest},
		{name: "malformed", body: `{"title": `, want: http.StatusBadRequest},
		{name: "two values", body: `{"title": "T", "author": "A"} {"title": "U"}`, want: http.StatusBadRequest},
		{name: "trailing bracket", body: `{"title": "T", "author": "A"}]`, want: http.StatusBadRequest},
		{name: "trailing brace", body: `{"title": "T", "author": "A"}}`, want: http.StatusBadRequest},
		{name: "wrong type", body: `{"title": 42, "author": "A"}`, want: http.StatusBadRequest},
		{name: "missing fields", body: `{}`, want: http.StatusUnprocessableEntity},
		{name: "blank title", body: `{"title": "   ", "author": "A"}`, want: http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newBookStoreSpy()
			app := newTestApplication(store)

			rr := serve(t, app, http.MethodPost, "/v1/books", tc.body)

			assert.Equal(t, tc.want, rr.Code)
			assert.Zero(t, store.calls["Create"])
		})
	}
}

func TestCreateBookDecodeErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty body", body: "", want: `{"error": "body must not be empty"}`},
		{name: "malformed", body: `{"title": `, want: `{"error": "body contains badly-formed JSON"}`},
		{name: "wrong type", body: `{"title": 42, "author": "A"}`, want: `{"error": "body contains badly-formed JSON"}`},
		{name: "trailing data", body: `{"title": "T", "author": "A"}]`, want: `{"error": "body must only contain a single JSON value"}`},
		{
			name: "too large",
			body: `{"title": "` + strings.Repeat("a", 2*maxBodyBytes) + `", "author": "A"}`,
			want: `{"error": "body must not be larger than 1048576 bytes"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newBookStoreSpy()
			app := newTestApplication(store)

			rr := serve(t, app, http.MethodPost, "/v1/books", tc.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, tc.want, rr.Body.String())
			assert.Zero(t, store.calls["Create"])
		})
	}
}

func TestCreateBookAcceptsTrailingWhitespace(t *testing.T) {
	store := newBookStoreSpy()
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodPost, "/v1/books", "{\"title\": \"T\", \"author\": \"A\"}\n\t \n")

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, store.calls["Create"])
}

func TestCreateBookIgnoresClientID(t *testing.T) {
	store := newBookStoreSpy()
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodPost, "/v1/books", `{"id": "42", "title": "Nuevo libro", "author": "Nuevo autor"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id": "1", "title": "Nuevo libro", "author": "Nuevo autor"}`, rr.Body.String())
	assert.Equal(t, "/v1/books/1", rr.Header().Get("Location"))
	assert.Equal(t, data.Book{Title: "Nuevo libro", Author: "Nuevo autor"}, store.lastCreate)
}

func TestResponsesAreIndentedJSON(t *testing.T) {
	store := newBookStoreSpy()
	store.book = &data.Book{ID: "1", Title: "T", Author: "A"}
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodGet, "/v1/books/1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "{\n  \"id\": \"1\",\n  \"title\": \"T\",\n  \"author\": \"A\"\n}\n", rr.Body.String())
}

func TestCreateBookValidationErrorsAreListedPerField(t *testing.T) {
	store := newBookStoreSpy()
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodPost, "/v1/books", `{"title": ""}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error": {"title": "must be provided", "author": "must be provided"}}`, rr.Body.String())
	assert.Zero(t, store.calls["Create"])
}

func TestUpdateBook(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			store := newBookStoreSpy()
			store.book = &data.Book{ID: "1", Title: "Titulo actualizado", Author: "Autor actualizado"}
			app := newTestApplication(store)

			rr := serve(t, app, method, "/v1/books/1", `{"title": "Titulo actualizado", "author": "Autor actualizado"}`)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, `{"id": "1", "title": "Titulo actualizado", "author": "Autor actualizado"}`, rr.Body.String())
			assert.Equal(t, "1", store.lastID)
			assert.Equal(t, data.UpdateBookInput{
				Title:  strPtr("Titulo actualizado"),
				Author: strPtr("Autor actualizado"),
			}, store.lastUpdate)
			assert.Equal(t, 1, store.calls["UpdateByID"])
		})
	}
}

func TestUpdateBookNotFound(t *testing.T) {
	store := newBookStoreSpy()
	store.err = data.ErrRecordNotFound
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodPut, "/v1/books/99", `{"title": "Libro actualizado"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error": "Book not found"}`, rr.Body.String())
	assert.Equal(t, "99", store.lastID)
}

func TestUpdateBookRejectsBlankField(t *testing.T) {
	store := newBookStoreSpy()
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodPatch, "/v1/books/1", `{"author": ""}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Zero(t, store.calls["UpdateByID"])
}

func TestDeleteBook(t *testing.T) {
	store := newBookStoreSpy()
	store.book = &data.Book{ID: "1", Title: "Titulo eliminado", Author: "Autor eliminado"}
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodDelete, "/v1/books/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id": "1", "title": "Titulo eliminado", "author": "Autor eliminado"}`, rr.Body.String())
	assert.Equal(t, "1", store.lastID)
	assert.Equal(t, 1, store.calls["DeleteByID"])
}

func TestDeleteBookNotFound(t *testing.T) {
	store := newBookStoreSpy()
	store.err = data.ErrRecordNotFound
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodDelete, "/v1/books/99", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error": "Book not found"}`, rr.Body.String())
}

func TestStoreFailuresBecomeServerErrors(t *testing.T) {
	requests := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/v1/books", ""},
		{http.MethodGet, "/v1/books/1", ""},
		{http.MethodPost, "/v1/books", `{"title": "T", "author": "A"}`},
		{http.MethodPut, "/v1/books/1", `{"title": "T"}`},
		{http.MethodDelete, "/v1/books/1", ""},
	}

	for _, req := range requests {
		t.Run(req.method+" "+req.target, func(t *testing.T) {
			store := newBookStoreSpy()
			store.err = errors.New("connection refused")
			app := newTestApplication(store)

			rr := serve(t, app, req.method, req.target, req.body)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.NotContains(t, rr.Body.String(), "connection refused")
		})
	}
}

func TestPanicInStoreIsRecovered(t *testing.T) {
	store := newBookStoreSpy()
	store.panicMsg = "boom"
	app := newTestApplication(store)

	rr := serve(t, app, http.MethodGet, "/v1/books", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

func TestRouterErrorsAreJSON(t *testing.T) {
	app := newTestApplication(newBookStoreSpy())

	rr := serve(t, app, http.MethodGet, "/v1/authors", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error": "the requested resource could not be found"}`, rr.Body.String())

	rr = serve(t, app, http.MethodDelete, "/v1/books", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error": "the DELETE method is not supported for this resource"}`, rr.Body.String())
}

func TestHealthcheck(t *testing.T) {
	app := newTestApplication(newBookStoreSpy())

	rr := serve(t, app, http.MethodGet, "/v1/healthcheck", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "available", "system_info": {"environment": "testing", "version": "1.0.0"}}`, rr.Body.String())
}

// TestBookLifecycle drives every endpoint against a real in-memory store.
func TestBookLifecycle(t *testing.T) {
	app := newTestApplication(data.NewMemoryBookStore())

	rr := serve(t, app, http.MethodPost, "/v1/books", `{"title": "Nuevo libro", "author": "Nuevo autor"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created data.Book
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	path := "/v1/books/" + created.ID

	rr = serve(t, app, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id": "`+created.ID+`", "title": "Nuevo libro", "author": "Nuevo autor"}`, rr.Body.String())

	rr = serve(t, app, http.MethodPatch, path, `{"title": "Titulo actualizado"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id": "`+created.ID+`", "title": "Titulo actualizado", "author": "Nuevo autor"}`, rr.Body.String())

	rr = serve(t, app, http.MethodGet, "/v1/books", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id": "`+created.ID+`", "title": "Titulo actualizado", "author": "Nuevo autor"}]`, rr.Body.String())

	rr = serve(t, app, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id": "`+created.ID+`", "title": "Titulo actualizado", "author": "Nuevo autor"}`, rr.Body.String())

	rr = serve(t, app, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(t, app, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
