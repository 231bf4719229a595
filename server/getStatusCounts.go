package server

import (
	"context"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
)

// getStatusCounts returns the tally of check statuses for a checklist. The
// counts are derived from the check rows on every call and never stored, so
// they cannot drift from the checks they summarize.
func (h AppServer) getStatusCounts(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	dao := DAOFromContext(ctx)

	id, err := parseChecklistID(ctx)
	if err != nil {
		return NewAppError(500, err, "Error parsing URI")
	}

	counts, err := dao.GetStatusCounts(id)
	if err != nil {
		return appErrorFromDAO(err, "error retrieving status counts")
	}

	apiResponse := mapping.MapStatusCountsToStatusCounts(counts)
	jsonResponse(w, apiResponse)
	return nil
}
