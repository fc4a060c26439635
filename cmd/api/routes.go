// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router
// wrapped in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	logRequest → recoverPanic → rateLimit → router
//
// Current endpoints:
//
//	GET    /v1/healthcheck  – service status
//	GET    /v1/books        – list all books
//	POST   /v1/books        – create a new book
//	GET    /v1/books/:id    – retrieve a single book by ID
//	PUT    /v1/books/:id    – update an existing book
//	PATCH  /v1/books/:id    – update an existing book
//	DELETE /v1/books/:id    – delete a book by ID
//
// Book routes require the bearer token when one is configured.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/v1/books", app.requireBearerToken(app.listBooksHandler))
	router.HandlerFunc(http.MethodPost, "/v1/books", app.requireBearerToken(app.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.requireBearerToken(app.showBookHandler))
	router.HandlerFunc(http.MethodPut, "/v1/books/:id", app.requireBearerToken(app.updateBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id", app.requireBearerToken(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.requireBearerToken(app.deleteBookHandler))

	return app.logRequest(app.recoverPanic(app.rateLimit(router)))
}
