// cmd/api/helpers.go
// This file contains general-purpose helper functions for the application.
// Error-response helpers live in errors.go; only non-error utilities are here.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	jsoniter "github.com/json-iterator/go"
)

// maxBodyBytes caps request bodies at 1 MB.
const maxBodyBytes = 1_048_576

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope wraps error and status payloads, e.g. {"error": "..."}.
// Book payloads are written bare.
type envelope map[string]any

// readIDParam extracts the ":id" URL parameter added by httprouter.
// Book ids are opaque, so the only check is that one is present.
func (app *applicationDependencies) readIDParam(r *http.Request) (string, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id := strings.TrimSpace(params.ByName("id"))
	if id == "" {
		return "", errors.New("invalid id parameter")
	}
	return id, nil
}

// storeContext derives the context for a single store call from the
// request, bounded by the configured store timeout.
func (app *applicationDependencies) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	if app.config.storeTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), app.config.storeTimeout)
}

// writeJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type to "application/json", writes the status code, and
// streams the body to the client.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	// jsoniter only accepts spaces as the indent string.
	js, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	js = append(js, '\n') // Trailing newline makes curl output nicer.

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON decodes a single JSON value from the request body into dst.
// It enforces a 1 MB size limit and ensures the body contains exactly one
// JSON value (no trailing data). Fields dst does not declare are ignored.
func (app *applicationDependencies) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	// Cap the request body to 1 MB to prevent large-payload attacks.
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)

	err := dec.Decode(dst)
	if err != nil {
		return decodeError(err)
	}

	// Whatever follows the first value, buffered or still unread, must be
	// whitespace only.
	rest, err := io.ReadAll(io.MultiReader(dec.Buffered(), r.Body))
	if err != nil {
		return decodeError(err)
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// decodeError turns a decoding failure into a message safe to show the
// client. jsoniter flattens errors into strings, so the size limit is
// recognised by its text as well as by type.
func decodeError(err error) error {
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")
	case errors.As(err, &maxBytesError), strings.Contains(err.Error(), "request body too large"):
		return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
	default:
		return errors.New("body contains badly-formed JSON")
	}
}
