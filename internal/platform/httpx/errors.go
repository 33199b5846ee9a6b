package httpx

import (
	"log/slog"
	"net/http"
)

// InternalError logs the failure and answers with a plain 500. Storage-layer
// detail never reaches the client.
func InternalError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if logger != nil {
		logger.Error(op, slog.Any("error", err))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
