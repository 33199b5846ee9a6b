// Package httpx provides the JSON result envelope shared by all API handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Result is the uniform response envelope: a status code, an optional
// human-readable message and an optional payload. Authentication failures
// deliberately travel inside a 200 response so that account existence
// cannot be probed through HTTP status codes.
type Result struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// OK builds a success envelope carrying a payload.
func OK(result any) Result {
	return Result{Code: http.StatusOK, Result: result}
}

// OKMessage builds a success envelope carrying only a message.
func OKMessage(message string) Result {
	return Result{Code: http.StatusOK, Message: message}
}

// Fail builds a failure envelope carrying a message.
func Fail(message string) Result {
	return Result{Code: http.StatusBadRequest, Message: message}
}

// JSON writes the envelope with HTTP status 200.
func JSON(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(res)
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
