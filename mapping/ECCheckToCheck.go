package mapping

import (
	"encoding/hex"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
)

// MapECCheckToCheck converts an internal ECCheck model object into an API
// exposable protocol Check
func MapECCheckToCheck(i *models.ECCheck) protocol.Check {
	o := protocol.Check{}
	o.ID = hex.EncodeToString(i.ID)
	o.CreatedDate = i.CreatedDate
	o.CreatedBy = i.CreatedBy
	o.ModifiedDate = i.ModifiedDate
	o.ModifiedBy = i.ModifiedBy
	o.ChecklistID = hex.EncodeToString(i.ChecklistID)
	o.RuleID = hex.EncodeToString(i.RuleID)
	o.RuleCode = i.RuleCode
	o.RuleTitle = i.RuleTitle
	o.Status = i.Status.String()
	o.Notes = i.Notes.String
	o.Evidence = i.Evidence.String
	o.CheckedBy = i.CheckedBy.String
	if i.CheckedAt.Valid {
		checkedAt := i.CheckedAt.Time
		o.CheckedAt = &checkedAt
	}
	return o
}

// MapECChecksToChecks converts an array of internal ECCheck model objects into
// an array of API exposable protocol Checks
func MapECChecksToChecks(i *[]models.ECCheck) []protocol.Check {
	o := make([]protocol.Check, len(*i))
	for p, q := range *i {
		o[p] = MapECCheckToCheck(&q)
	}
	return o
}

// MapUpdateCheckRequestToCheckPatch converts an API exposable protocol object
// used for check updates into the partial update applied by the data layer.
// Nil notes or evidence pass through as nil so omitted values retain what is
// stored.
func MapUpdateCheckRequestToCheckPatch(i *protocol.UpdateCheckRequest) dao.CheckPatch {
	o := dao.CheckPatch{}
	o.Status = models.CheckStatus(i.Status)
	o.Notes = i.Notes
	o.Evidence = i.Evidence
	return o
}

// MapCheckUpdateToCheckUpdateResponse converts the result of recording a
// verification outcome into the API response carrying activation readiness
func MapCheckUpdateToCheckUpdateResponse(i *dao.CheckUpdate) protocol.CheckUpdateResponse {
	o := protocol.CheckUpdateResponse{}
	o.Check = MapECCheckToCheck(&i.Check)
	o.PendingCount = i.PendingCount
	o.ReadyForActivation = i.ReadyForActivation
	return o
}
