package server

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
	"github.com/enercheck/compliance-server/util"
)

// updateCheck records an inspection result on a single check. Moving a check
// out of pending stamps the acting inspector and the verification time.
// Moving it back to pending clears both. When the owning draft checklist
// reaches zero pending checks a readiness event rides the queue behind the
// update event, so downstream consumers can prompt for activation.
func (h AppServer) updateCheck(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	caller, _ := CallerFromContext(ctx)
	dao := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem.Action = "update"
	gem.Payload.ObjectType = "check"

	checklistID, checkID, err := parseCheckIDs(ctx)
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

	var jsonCheck protocol.UpdateCheckRequest
	if err := util.FullDecode(r.Body, &jsonCheck); err != nil {
		herr := NewAppError(400, err, "Could not parse json object as a protocol.UpdateCheckRequest")
		h.publishError(gem, herr)
		return herr
	}
	patch := mapping.MapUpdateCheckRequestToCheckPatch(&jsonCheck)

	update, err := dao.UpdateCheck(checklistID, checkID, patch, caller.DistinguishedName)
	if err != nil {
		herr := appErrorFromDAO(err, "error updating check")
		h.publishError(gem, herr)
		return herr
	}

	apiResponse := mapping.MapCheckUpdateToCheckUpdateResponse(&update)
	gem.Payload.ObjectID = apiResponse.Check.ID
	gem.Payload.CheckID = apiResponse.Check.ID
	gem.Payload.ChecklistID = hex.EncodeToString(checklistID)
	gem.Payload.RuleID = apiResponse.Check.RuleID
	gem.Payload.RuleCode = apiResponse.Check.RuleCode
	gem.Payload.Status = apiResponse.Check.Status
	gem.Payload.PendingCount = update.PendingCount
	jsonResponse(w, apiResponse)

	h.publishSuccess(gem, w)

	// The ready event fires only on the update that resolved the last pending
	// check. Edits to an already settled checklist do not repeat it.
	if update.ReadyForActivation && update.PriorStatus == models.CheckStatusPending {
		readyGem := gem
		readyGem.ID = newGUID()
		readyGem.EventChain = []string{gem.ID}
		readyGem.Action = "ready"
		readyGem.Payload.Status = models.ChecklistStatusDraft.String()
		readyGem.Payload.ActionResult = "SUCCESS"
		readyGem.Payload.Messages = []string{"all checks resolved, checklist is ready for activation"}
		h.EventQueue.Publish(readyGem)
	}
	return nil
}

func parseCheckIDs(ctx context.Context) ([]byte, []byte, error) {
	captured, ok := CaptureGroupsFromContext(ctx)
	if !ok {
		return nil, nil, errors.New("Could not get capture groups")
	}

	if captured["checklistId"] == "" {
		return nil, nil, errors.New("Could not extract checklistId from URI")
	}
	bytesChecklistID, err := hex.DecodeString(captured["checklistId"])
	if err != nil {
		return nil, nil, errors.New("Invalid checklistId in URI.")
	}
	if captured["checkId"] == "" {
		return nil, nil, errors.New("Could not extract checkId from URI")
	}
	bytesCheckID, err := hex.DecodeString(captured["checkId"])
	if err != nil {
		return nil, nil, errors.New("Invalid checkId in URI.")
	}
	return bytesChecklistID, bytesCheckID, nil
}
