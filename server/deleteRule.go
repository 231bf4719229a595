package server

import (
	"context"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
)

// deleteRule removes a rule from the catalog. A rule referenced by checklist
// checks is never hard deleted. The data layer deactivates it instead, and
// the response reports which of the two happened.
func (h AppServer) deleteRule(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	caller, _ := CallerFromContext(ctx)
	dao := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem.Action = "delete"
	gem.Payload.ObjectType = "rule"

	id, err := parseRuleID(ctx)
	if err != nil {
		herr := NewAppError(500, err, "Error parsing URI")
		h.publishError(gem, herr)
		return herr
	}

	deletion, err := dao.DeleteRule(id, caller.DistinguishedName)
	if err != nil {
		herr := appErrorFromDAO(err, "error deleting rule")
		h.publishError(gem, herr)
		return herr
	}

	apiResponse := mapping.MapRuleDeletionToDeletedRuleResponse(&deletion)
	gem.Payload.ObjectID = apiResponse.ID
	gem.Payload.RuleID = apiResponse.ID
	gem.Payload.RuleCode = deletion.Rule.RuleCode
	if apiResponse.Deactivated {
		gem.Payload.Status = "deactivated"
	} else {
		gem.Payload.Status = "deleted"
	}
	jsonResponse(w, apiResponse)

	h.publishSuccess(gem, w)
	return nil
}
