package server

import (
	"context"
	"net/http"
)

// favicon is a method handler on AppServer answering the commonly browser
// requested resource with an empty 204. The service hosts no web assets, and
// without this route every browser visit logs a noisy 404.
func (h AppServer) favicon(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	w.Header().Set("Content-Type", "image/x-icon")
	w.WriteHeader(http.StatusNoContent)
	return nil
}
