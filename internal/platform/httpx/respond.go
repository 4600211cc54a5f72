// Package httpx writes JSON and RFC 7807 problem responses.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// ProblemDetail is an RFC 7807 problem document. Kind names the domain error
// kind so clients need not parse Detail.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends a problem document without a domain kind.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, ProblemDetail{Title: title, Status: status, Detail: detail})
}

func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// DecodeJSON decodes a single JSON document from the request body. Failures
// are validation errors that say what was wrong with the body.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return shared.Validation("Request body is required.")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return shared.Validation("Field " + typeErr.Field + " has the wrong type.")
		default:
			return shared.Validation("Request body must be valid JSON.")
		}
	}
	if dec.More() {
		return shared.Validation("Request body must contain a single JSON object.")
	}
	return nil
}

// IDParam parses a positive int64 chi URL parameter. Camel-case names read
// as words in the message: "companyID" becomes "company ID".
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Validation("Invalid " + paramLabel(name) + ".")
	}
	return id, nil
}

func paramLabel(name string) string {
	if name == "id" {
		return "ID"
	}
	if base, ok := strings.CutSuffix(name, "ID"); ok && base != "" {
		return base + " ID"
	}
	return name
}
