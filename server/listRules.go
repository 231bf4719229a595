package server

import (
	"context"
	"net/http"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
)

func (h AppServer) listRules(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	d := DAOFromContext(ctx)

	// Parse paging info
	pagingRequest, err := protocol.NewPagingRequest(r)
	if err != nil {
		return NewAppError(http.StatusBadRequest, err, "Error parsing request")
	}

	filter, err := parseRuleFilter(r)
	if err != nil {
		return NewAppError(http.StatusBadRequest, err, "Error parsing filters")
	}

	results, err := d.ListRules(mapping.MapPagingRequestToDAOPagingRequest(pagingRequest), filter)
	if err != nil {
		return appErrorFromDAO(err, "database call failed listing rules")
	}

	apiResponse := mapping.MapECRuleResultsetToRuleResultset(&results)
	jsonResponse(w, apiResponse)
	return nil
}

// parseRuleFilter reads the optional query parameters constraining a rule
// listing. Unknown enum values are rejected rather than silently ignored.
func parseRuleFilter(r *http.Request) (dao.RuleFilter, error) {
	var filter dao.RuleFilter
	qv := r.URL.Query()
	if v := qv.Get("severity"); len(v) > 0 {
		severity, err := models.ParseRuleSeverity(v)
		if err != nil {
			return filter, err
		}
		filter.Severity = severity
	}
	if v := qv.Get("ruleType"); len(v) > 0 {
		ruleType, err := models.ParseRuleType(v)
		if err != nil {
			return filter, err
		}
		filter.RuleType = ruleType
	}
	filter.SectionRef = qv.Get("sectionRef")
	filter.AllRules = qv.Get("includeInactive") == "true"
	return filter, nil
}
