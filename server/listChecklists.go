package server

import (
	"context"
	"net/http"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
)

// listChecklists returns a page of checklists newest first. Each entry carries
// its derived status counts but not the individual checks. Fetch a single
// checklist for those.
func (h AppServer) listChecklists(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	d := DAOFromContext(ctx)

	// Parse paging info
	pagingRequest, err := protocol.NewPagingRequest(r)
	if err != nil {
		return NewAppError(http.StatusBadRequest, err, "Error parsing request")
	}

	filter, err := parseChecklistFilter(r)
	if err != nil {
		return NewAppError(http.StatusBadRequest, err, "Error parsing filters")
	}

	results, err := d.ListChecklists(mapping.MapPagingRequestToDAOPagingRequest(pagingRequest), filter)
	if err != nil {
		return appErrorFromDAO(err, "database call failed listing checklists")
	}

	apiResponse := mapping.MapECChecklistResultsetToChecklistResultset(&results)
	jsonResponse(w, apiResponse)
	return nil
}

func parseChecklistFilter(r *http.Request) (dao.ChecklistFilter, error) {
	var filter dao.ChecklistFilter
	if v := r.URL.Query().Get("status"); len(v) > 0 {
		status, err := models.ParseChecklistStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	return filter, nil
}
