package server

import (
	"context"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/protocol"
	"github.com/enercheck/compliance-server/util"
)

// updateRule applies a partial update to a rule. Fields absent from the
// request body retain their stored values. Rule edits never rewrite the
// snapshot a checklist took at creation time.
func (h AppServer) updateRule(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	caller, _ := CallerFromContext(ctx)
	dao := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem.Action = "update"
	gem.Payload.ObjectType = "rule"

	id, err := parseRuleID(ctx)
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

	var jsonRule protocol.UpdateRuleRequest
	if err := util.FullDecode(r.Body, &jsonRule); err != nil {
		herr := NewAppError(400, err, "Could not parse json object as a protocol.UpdateRuleRequest")
		h.publishError(gem, herr)
		return herr
	}
	patch := mapping.MapUpdateRuleRequestToRulePatch(&jsonRule)

	if patch.SectionRef != nil && len(*patch.SectionRef) > 0 {
		if herr := h.verifySectionRef(ctx, *patch.SectionRef); herr != nil {
			h.publishError(gem, herr)
			return herr
		}
	}

	updatedRule, err := dao.UpdateRule(id, patch, caller.DistinguishedName)
	if err != nil {
		herr := appErrorFromDAO(err, "error updating rule")
		h.publishError(gem, herr)
		return herr
	}

	apiResponse := mapping.MapECRuleToRule(&updatedRule)
	gem.Payload.ObjectID = apiResponse.ID
	gem.Payload.RuleID = apiResponse.ID
	gem.Payload.RuleCode = apiResponse.RuleCode
	jsonResponse(w, apiResponse)

	h.publishSuccess(gem, w)
	return nil
}
