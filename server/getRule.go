package server

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/enercheck/compliance-server/mapping"
)

func (h AppServer) getRule(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	dao := DAOFromContext(ctx)

	id, err := parseRuleID(ctx)
	if err != nil {
		return NewAppError(500, err, "Error parsing URI")
	}

	// Retrieve existing rule from the data store. Deactivated rules remain
	// retrievable here so referenced history stays inspectable.
	dbRule, err := dao.GetRule(id)
	if err != nil {
		return appErrorFromDAO(err, "error retrieving rule")
	}

	apiResponse := mapping.MapECRuleToRule(&dbRule)
	jsonResponse(w, apiResponse)
	return nil
}

func parseRuleID(ctx context.Context) ([]byte, error) {
	// Get capture groups from ctx.
	captured, ok := CaptureGroupsFromContext(ctx)
	if !ok {
		return nil, errors.New("Could not get capture groups")
	}

	if captured["ruleId"] == "" {
		return nil, errors.New("Could not extract ruleId from URI")
	}
	bytesRuleID, err := hex.DecodeString(captured["ruleId"])
	if err != nil {
		return nil, errors.New("Invalid ruleId in URI.")
	}
	return bytesRuleID, nil
}
