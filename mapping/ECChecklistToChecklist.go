package mapping

import (
	"encoding/hex"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
)

// MapECChecklistToChecklist converts an internal ECChecklist model object into
// an API exposable protocol Checklist. Checks are not carried; the detail
// mapper inlines them.
func MapECChecklistToChecklist(i *models.ECChecklist) protocol.Checklist {
	o := protocol.Checklist{}
	o.ID = hex.EncodeToString(i.ID)
	o.CreatedDate = i.CreatedDate
	o.CreatedBy = i.CreatedBy
	o.ModifiedDate = i.ModifiedDate
	o.ModifiedBy = i.ModifiedBy
	o.Name = i.Name
	o.Description = i.Description.String
	o.Status = i.Status.String()
	o.Counts = MapStatusCountsToStatusCounts(i.Counts)
	return o
}

// MapECChecklistsToChecklists converts an array of internal ECChecklist model
// objects into an array of API exposable protocol Checklists
func MapECChecklistsToChecklists(i *[]models.ECChecklist) []protocol.Checklist {
	o := make([]protocol.Checklist, len(*i))
	for p, q := range *i {
		o[p] = MapECChecklistToChecklist(&q)
	}
	return o
}

// MapECChecklistResultsetToChecklistResultset converts an internal resultset
// of ECChecklists into a corresponding protocol resultset of Checklists
func MapECChecklistResultsetToChecklistResultset(i *models.ECChecklistResultset) protocol.ChecklistResultset {
	o := protocol.ChecklistResultset{}
	o.Resultset.TotalRows = i.Resultset.TotalRows
	o.Resultset.PageCount = i.Resultset.PageCount
	o.Resultset.PageNumber = i.Resultset.PageNumber
	o.Resultset.PageSize = i.Resultset.PageSize
	o.Resultset.PageRows = i.Resultset.PageRows
	o.Checklists = MapECChecklistsToChecklists(&i.Checklists)
	return o
}

// MapECChecklistToChecklistDetail converts an internal ECChecklist model
// object into the full retrieval form inlining its checks
func MapECChecklistToChecklistDetail(i *models.ECChecklist) protocol.ChecklistDetail {
	o := protocol.ChecklistDetail{}
	o.Checklist = MapECChecklistToChecklist(i)
	o.Checks = MapECChecksToChecks(&i.Checks)
	return o
}

// MapCreateChecklistRequestToECChecklist converts an API exposable protocol
// object used for create requests into an internally usable model object. The
// rule selection travels separately as decoded ids.
func MapCreateChecklistRequestToECChecklist(i *protocol.CreateChecklistRequest) models.ECChecklist {
	o := models.ECChecklist{}
	o.Name = i.Name
	o.Description = models.ToNullString(i.Description)
	return o
}
