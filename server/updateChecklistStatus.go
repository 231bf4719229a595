package server

import (
	"context"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
	"github.com/enercheck/compliance-server/util"
)

// updateChecklistStatus moves a checklist through its lifecycle. Drafts
// activate only once no checks remain pending, active checklists archive, and
// archived checklists may be restored to active. Every other transition is
// rejected.
func (h AppServer) updateChecklistStatus(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	caller, _ := CallerFromContext(ctx)
	dao := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem.Action = "update"
	gem.Payload.ObjectType = "checklist"

	id, err := parseChecklistID(ctx)
	if err != nil {
		herr := NewAppError(500, err, "Error parsing URI")
		h.publishError(gem, herr)
		return herr
	}

	herr := validateJSONHeader(r)
	if herr != nil {
		h.publishError(gem, herr)
		return herr
	}

	var jsonStatus protocol.UpdateChecklistStatusRequest
	if err := util.FullDecode(r.Body, &jsonStatus); err != nil {
		herr := NewAppError(400, err, "Could not parse json object as a protocol.UpdateChecklistStatusRequest")
		h.publishError(gem, herr)
		return herr
	}

	updatedChecklist, err := dao.UpdateChecklistStatus(id, models.ChecklistStatus(jsonStatus.Status), caller.DistinguishedName)
	if err != nil {
		herr := appErrorFromDAO(err, "error updating checklist status")
		h.publishError(gem, herr)
		return herr
	}

	apiResponse := mapping.MapECChecklistToChecklist(&updatedChecklist)
	gem.Payload.ObjectID = apiResponse.ID
	gem.Payload.ChecklistID = apiResponse.ID
	gem.Payload.Status = apiResponse.Status
	gem.Payload.PendingCount = apiResponse.Counts.Pending
	jsonResponse(w, apiResponse)

	h.publishSuccess(gem, w)
	return nil
}
