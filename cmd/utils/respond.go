package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorKind is the machine-checkable half of every error response.
type ErrorKind string

const (
    ErrUnauthorized ErrorKind = "unauthorized"
    ErrForbidden    ErrorKind = "forbidden"
    ErrNotFound     ErrorKind = "not_found"
    ErrInvalidInput ErrorKind = "invalid_input"
    ErrConflict     ErrorKind = "conflict"
    ErrInternal     ErrorKind = "internal"
)

// StatusCode maps an error kind to its HTTP status.
func (k ErrorKind) StatusCode() int {
    switch k {
    case ErrUnauthorized:
        return http.StatusUnauthorized
    case ErrForbidden:
        return http.StatusForbidden
    case ErrNotFound:
        return http.StatusNotFound
    case ErrInvalidInput:
        return http.StatusBadRequest
    case ErrConflict:
        return http.StatusConflict
    default:
        return http.StatusInternalServerError
    }
}

type errorBody struct {
    Error   ErrorKind `json:"error"`
    Message string    `json:"message"`
}

// WriteError writes a structured error response.
func WriteError(w http.ResponseWriter, kind ErrorKind, message string) {
    WriteJSON(w, kind.StatusCode(), errorBody{Error: kind, Message: message})
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(v)
}
