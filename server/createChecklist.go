package server

import (
	"context"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/protocol"
	"github.com/enercheck/compliance-server/util"
)

// createChecklist opens an audit checklist over a selection of active rules.
// The selection is snapshotted into one pending check per rule inside a single
// transaction, so a failure on any id creates no rows at all. Later edits to a
// rule never rewrite what this checklist captured.
func (h AppServer) createChecklist(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	caller, _ := CallerFromContext(ctx)
	dao := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem.Action = "create"
	gem.Payload.ObjectType = "checklist"

	herr := validateJSONHeader(r)
	if herr != nil {
		h.publishError(gem, herr)
		return herr
	}

	var jsonChecklist protocol.CreateChecklistRequest
	if err := util.FullDecode(r.Body, &jsonChecklist); err != nil {
		herr := NewAppError(400, err, "Could not parse json object as a protocol.CreateChecklistRequest")
		h.publishError(gem, herr)
		return herr
	}

	ruleIDs, err := mapping.MapIdsToByteIds(jsonChecklist.RuleIds)
	if err != nil {
		herr := NewAppError(400, err, "Rule ids must be hex encoded identifiers")
		h.publishError(gem, herr)
		return herr
	}

	checklist := mapping.MapCreateChecklistRequestToECChecklist(&jsonChecklist)
	checklist.CreatedBy = caller.DistinguishedName

	createdChecklist, err := dao.CreateChecklist(&checklist, ruleIDs)
	if err != nil {
		herr := appErrorFromDAO(err, "error storing checklist")
		h.publishError(gem, herr)
		return herr
	}

	apiResponse := mapping.MapECChecklistToChecklistDetail(&createdChecklist)
	gem.Payload.ObjectID = apiResponse.ID
	gem.Payload.ChecklistID = apiResponse.ID
	gem.Payload.Status = apiResponse.Status
	gem.Payload.PendingCount = apiResponse.Counts.Pending
	jsonResponse(w, apiResponse)

	h.publishSuccess(gem, w)
	return nil
}
