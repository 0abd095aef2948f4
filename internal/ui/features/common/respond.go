// Package common provides the envelope, session and settings helpers
// shared by the dashboard feature handlers.
package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/indexlens/indexlens/internal/filterquery"
	"github.com/indexlens/indexlens/internal/search"
)

// envelope is the JSON wrapper every API route answers with. Exactly
// one of Response and Error is set.
type envelope struct {
	OK       bool   `json:"ok"`
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RespondOK writes v wrapped in a success envelope.
func RespondOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{OK: true, Response: v})
}

// RespondError writes err wrapped in a failure envelope with the given
// status.
func RespondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{OK: false, Error: err.Error()})
}

// RespondErr writes err with the status its kind maps to.
func RespondErr(w http.ResponseWriter, err error) {
	RespondError(w, StatusFor(err), err)
}

// StatusFor maps an error kind to a response status: filter parse
// errors are the caller's input (400), backend transport and status
// failures are upstream faults (502), everything else is this server's
// problem (500).
func StatusFor(err error) int {
	var parseErr *filterquery.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}
	var backendErr *search.BackendError
	if errors.Is(err, search.ErrUnavailable) || errors.As(err, &backendErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
