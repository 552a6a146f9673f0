// Package problem writes RFC 9457 problem details and plain JSON bodies.
package problem

import (
	"encoding/json"
	"net/http"
)

const ContentType = "application/problem+json"

const (
	TypeValidation      = "https://proptrack.app/problems/validation-error"
	TypeUnauthenticated = "https://proptrack.app/problems/unauthenticated"
	TypeForbidden       = "https://proptrack.app/problems/forbidden"
	TypeNotFound        = "https://proptrack.app/problems/not-found"
	TypeConflict        = "https://proptrack.app/problems/conflict"
	TypeUnavailable     = "https://proptrack.app/problems/backend-unavailable"
	TypeInternal        = "https://proptrack.app/problems/internal-error"
)

type Details struct {
	Type   *string              `json:"type,omitempty"`
	Title  string               `json:"title"`
	Status int                  `json:"status"`
	Detail *string              `json:"detail,omitempty"`
	Errors *map[string][]string `json:"errors,omitempty"`
	// RedirectTo tells the client where to send an unauthenticated user.
	RedirectTo *string `json:"redirectTo,omitempty"`
}

// New builds a problem; empty detail/type and empty field errors are omitted.
func New(title, detail, problemType string, status int, fieldErrors map[string][]string) Details {
	problem := Details{
		Title:  title,
		Status: status,
	}

	if detail != "" {
		problem.Detail = &detail
	}
	if problemType != "" {
		problem.Type = &problemType
	}

	if len(fieldErrors) > 0 {
		copied := make(map[string][]string, len(fieldErrors))
		for field, messages := range fieldErrors {
			copied[field] = append([]string(nil), messages...)
		}
		problem.Errors = &copied
	}

	return problem
}

// Unauthenticated signals a missing session; the client decides how to reach redirectTo.
func Unauthenticated(detail, redirectTo string) Details {
	p := New("Unauthorized", detail, TypeUnauthenticated, http.StatusUnauthorized, nil)
	if redirectTo != "" {
		p.RedirectTo = &redirectTo
	}
	return p
}

func Write(w http.ResponseWriter, p Details) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// JSON writes a regular application/json body.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
