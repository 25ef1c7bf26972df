package api

import (
	"encoding/json"
	"net/http"
)

// result is the response envelope every engine-backed route returns:
// status 0 means success, anything else is the engine's failure code.
type result struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(data any) result {
	return result{Status: 0, Message: "ok", Data: data}
}

func fail(status int) result {
	return result{Status: status, Message: "failed"}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope for request-level failures.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
