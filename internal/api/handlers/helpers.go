// Package handlers holds the HTTP surface: one file per resource, each
// following parse → service call → sentinel mapping → envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hackpoint/server/internal/api/middleware"
	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/refs"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads the request body into dst, rejecting oversized and
// malformed payloads.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID parses the named integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// callerID resolves the authenticated user from the request context.
func callerID(r *http.Request) (int64, string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return 0, "", errors.New("no authenticated caller")
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, "", err
	}
	return id, claims.Role, nil
}

// fieldErrors flattens validator/v10 errors into the envelope shape.
func fieldErrors(err error) []respond.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []respond.FieldError{{Field: "body", Message: err.Error()}}
	}
	out := make([]respond.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, respond.FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		})
	}
	return out
}

// writeReferenceError maps an unresolvable-reference rejection onto a
// 400 with per-field errors. Returns false when err is something else.
func writeReferenceError(w http.ResponseWriter, r *http.Request, err error) bool {
	var refErr *refs.ReferenceError
	if !errors.As(err, &refErr) {
		return false
	}
	errs := make([]respond.FieldError, 0, len(refErr.Violations))
	for _, v := range refErr.Violations {
		errs = append(errs, respond.FieldError{Field: v.Field, Message: v.Message})
	}
	respond.FieldErrors(w, r, http.StatusBadRequest, "referenced resource not found", errs)
	return true
}

// writeValidationError maps validator failures onto a 400 envelope.
// Returns false when err carries no validation detail.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	respond.FieldErrors(w, r, http.StatusBadRequest, "validation failed", fieldErrors(err))
	return true
}
