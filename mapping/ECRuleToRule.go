package mapping

import (
	"encoding/hex"
	"fmt"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
)

// MapECRuleToRule converts an internal ECRule model object into an API
// exposable protocol Rule
func MapECRuleToRule(i *models.ECRule) protocol.Rule {
	o := protocol.Rule{}
	o.ID = hex.EncodeToString(i.ID)
	o.CreatedDate = i.CreatedDate
	o.CreatedBy = i.CreatedBy
	o.ModifiedDate = i.ModifiedDate
	o.ModifiedBy = i.ModifiedBy
	o.SectionRef = i.SectionRef.String
	o.RuleCode = i.RuleCode
	o.Title = i.Title
	o.Description = i.Description
	o.Severity = i.Severity.String()
	o.RuleType = i.RuleType.String()
	o.VerificationMethod = i.VerificationMethod.String
	o.EvaluationCriteria = i.EvaluationCriteria.String
	o.FailureImpact = i.FailureImpact.String
	o.RemediationAdvice = i.RemediationAdvice.String
	o.IsActive = i.IsActive
	return o
}

// MapECRulesToRules converts an array of internal ECRule model objects into an
// array of API exposable protocol Rules
func MapECRulesToRules(i *[]models.ECRule) []protocol.Rule {
	o := make([]protocol.Rule, len(*i))
	for p, q := range *i {
		o[p] = MapECRuleToRule(&q)
	}
	return o
}

// MapECRuleResultsetToRuleResultset converts an internal resultset of ECRules
// into a corresponding protocol resultset of Rules
func MapECRuleResultsetToRuleResultset(i *models.ECRuleResultset) protocol.RuleResultset {
	o := protocol.RuleResultset{}
	o.Resultset.TotalRows = i.Resultset.TotalRows
	o.Resultset.PageCount = i.Resultset.PageCount
	o.Resultset.PageNumber = i.Resultset.PageNumber
	o.Resultset.PageSize = i.Resultset.PageSize
	o.Resultset.PageRows = i.Resultset.PageRows
	o.Rules = MapECRulesToRules(&i.Rules)
	return o
}

// MapCreateRuleRequestToECRule converts an API exposable protocol object used
// for create requests into an internally usable model object. Enum values and
// required fields are validated downstream where the rule is stored.
func MapCreateRuleRequestToECRule(i *protocol.CreateRuleRequest) models.ECRule {
	o := models.ECRule{}
	o.SectionRef = models.ToNullString(i.SectionRef)
	o.RuleCode = i.RuleCode
	o.Title = i.Title
	o.Description = i.Description
	o.Severity = models.RuleSeverity(i.Severity)
	o.RuleType = models.RuleType(i.RuleType)
	o.VerificationMethod = models.ToNullString(i.VerificationMethod)
	o.EvaluationCriteria = models.ToNullString(i.EvaluationCriteria)
	o.FailureImpact = models.ToNullString(i.FailureImpact)
	o.RemediationAdvice = models.ToNullString(i.RemediationAdvice)
	return o
}

// MapUpdateRuleRequestToRulePatch converts an API exposable protocol object
// used for update requests into the partial update applied by the data layer.
// Nil fields pass through as nil so omitted values retain what is stored.
func MapUpdateRuleRequestToRulePatch(i *protocol.UpdateRuleRequest) dao.RulePatch {
	o := dao.RulePatch{}
	o.SectionRef = i.SectionRef
	o.RuleCode = i.RuleCode
	o.Title = i.Title
	o.Description = i.Description
	if i.Severity != nil {
		severity := models.RuleSeverity(*i.Severity)
		o.Severity = &severity
	}
	if i.RuleType != nil {
		ruleType := models.RuleType(*i.RuleType)
		o.RuleType = &ruleType
	}
	o.VerificationMethod = i.VerificationMethod
	o.EvaluationCriteria = i.EvaluationCriteria
	o.FailureImpact = i.FailureImpact
	o.RemediationAdvice = i.RemediationAdvice
	o.IsActive = i.IsActive
	return o
}

// MapRuleDeletionToDeletedRuleResponse converts the result of a rule deletion
// into the API response reporting which action the guard took
func MapRuleDeletionToDeletedRuleResponse(i *dao.RuleDeletion) protocol.DeletedRuleResponse {
	o := protocol.DeletedRuleResponse{}
	o.ID = hex.EncodeToString(i.Rule.ID)
	o.Deleted = i.Deleted
	o.Deactivated = i.Deactivated
	if i.Deactivated {
		rule := MapECRuleToRule(&i.Rule)
		o.Rule = &rule
	}
	return o
}

// MapIdsToByteIds converts a list of hex encoded identifiers from a request
// into the binary form used by the data layer
func MapIdsToByteIds(i []string) ([][]byte, error) {
	o := make([][]byte, len(i))
	for p, q := range i {
		id, err := hex.DecodeString(q)
		if err != nil || len(id) == 0 {
			return nil, fmt.Errorf("unable to decode id from %s", q)
		}
		o[p] = id
	}
	return o, nil
}
