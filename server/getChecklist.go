package server

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
)

func (h AppServer) getChecklist(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	dao := DAOFromContext(ctx)

	id, err := parseChecklistID(ctx)
	if err != nil {
		return NewAppError(500, err, "Error parsing URI")
	}

	dbChecklist, err := dao.GetChecklist(id)
	if err != nil {
		return appErrorFromDAO(err, "error retrieving checklist")
	}

	// The detail view inlines every check with its snapshot of the rule, plus
	// the tally derived from them.
	apiResponse := mapping.MapECChecklistToChecklistDetail(&dbChecklist)
	jsonResponse(w, apiResponse)
	return nil
}

func parseChecklistID(ctx context.Context) ([]byte, error) {
	// Get capture groups from ctx.
	captured, ok := CaptureGroupsFromContext(ctx)
	if !ok {
		return nil, errors.New("Could not get capture groups")
	}

	if captured["checklistId"] == "" {
		return nil, errors.New("Could not extract checklistId from URI")
	}
	bytesChecklistID, err := hex.DecodeString(captured["checklistId"])
	if err != nil {
		return nil, errors.New("Invalid checklistId in URI.")
	}
	return bytesChecklistID, nil
}
