package server

import (
	"context"
	"net/http"
)

// This endpoint should return a 200 to only denote the availability of a registered instance.
// This exists because errors at the level of nginx return their own error codes, making it
// ambiguous when trying to determine if at least one instance is being served up through the proxy.
func (h AppServer) ping(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	return nil
}
