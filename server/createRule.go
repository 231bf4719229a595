package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
	"github.com/enercheck/compliance-server/util"
)

// createRule adds a rule to the compliance catalog.
func (h AppServer) createRule(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	caller, _ := CallerFromContext(ctx)
	dao := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem.Action = "create"
	gem.Payload.ObjectType = "rule"

	herr := validateJSONHeader(r)
	if herr != nil {
		h.publishError(gem, herr)
		return herr
	}

	rule, herr := parseCreateRuleRequestAsJSON(r)
	if herr != nil {
		h.publishError(gem, herr)
		return herr
	}

	if rule.SectionRef.Valid && len(rule.SectionRef.String) > 0 {
		if herr := h.verifySectionRef(ctx, rule.SectionRef.String); herr != nil {
			h.publishError(gem, herr)
			return herr
		}
	}

	rule.CreatedBy = caller.DistinguishedName

	createdRule, err := dao.CreateRule(&rule)
	if err != nil {
		herr := appErrorFromDAO(err, "error storing rule")
		h.publishError(gem, herr)
		return herr
	}

	apiResponse := mapping.MapECRuleToRule(&createdRule)
	gem.Payload.ObjectID = apiResponse.ID
	gem.Payload.RuleID = apiResponse.ID
	gem.Payload.RuleCode = apiResponse.RuleCode
	jsonResponse(w, apiResponse)

	h.publishSuccess(gem, w)
	return nil
}

func parseCreateRuleRequestAsJSON(r *http.Request) (models.ECRule, *AppError) {
	var jsonRule protocol.CreateRuleRequest

	err := util.FullDecode(r.Body, &jsonRule)
	if err != nil {
		return models.ECRule{}, NewAppError(400, err, "Could not parse json object as a protocol.CreateRuleRequest")
	}

	return mapping.MapCreateRuleRequestToECRule(&jsonRule), nil
}

func validateJSONHeader(r *http.Request) *AppError {
	if !util.IsApplicationJSON(r.Header.Get("Content-Type")) {
		err := fmt.Errorf("Content-Type is '%s', expected application/json", r.Header.Get("Content-Type"))
		return NewAppError(400, err, "expected Content-Type application/json")
	}
	return nil
}
