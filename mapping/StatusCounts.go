package mapping

import (
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/protocol"
)

// MapStatusCountsToStatusCounts converts the internal status tally into its
// API form, deriving the total and completion percentage
func MapStatusCountsToStatusCounts(i models.StatusCounts) protocol.StatusCounts {
	o := protocol.StatusCounts{}
	o.Pending = i.Pending
	o.Passed = i.Passed
	o.Failed = i.Failed
	o.NotApplicable = i.NotApplicable
	o.Total = i.Total()
	o.CompletionPercent = i.CompletionPercent()
	return o
}
