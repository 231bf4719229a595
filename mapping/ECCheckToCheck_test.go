package mapping_test

import (
	"testing"
	"time"

	"github.com/enercheck/compliance-server/mapping"
	"github.com/enercheck/compliance-server/metadata/models"
)

func TestMapECCheckToCheck(t *testing.T) {

	var pending models.ECCheck
	pending.Status = models.CheckStatusPending
	pending.RuleCode = "NEC-210.8"
	pending.RuleTitle = "GFCI protection for personnel"

	o := mapping.MapECCheckToCheck(&pending)
	if o.Status != "pending" {
		t.Errorf("expected pending, got %s", o.Status)
	}
	if o.CheckedAt != nil || o.CheckedBy != "" {
		t.Error("a pending check must not surface a verification stamp")
	}
	if o.RuleCode != "NEC-210.8" || o.RuleTitle == "" {
		t.Error("rule annotations must carry over")
	}

	var verified models.ECCheck
	verified.Status = models.CheckStatusPassed
	verified.CheckedBy = models.ToNullString("cn=casey reviewer,ou=field,o=enercheck,c=us")
	verified.CheckedAt = models.ToNullTime(time.Now().UTC())
	verified.Notes = models.ToNullString("outlet spacing verified")

	o = mapping.MapECCheckToCheck(&verified)
	if o.CheckedAt == nil || o.CheckedBy == "" {
		t.Error("a verified check must surface its stamp")
	}
	if o.Notes != "outlet spacing verified" {
		t.Error("notes must carry over")
	}
}

func TestMapStatusCountsToStatusCounts(t *testing.T) {

	i := models.StatusCounts{Pending: 1, Passed: 2, Failed: 1, NotApplicable: 0}
	o := mapping.MapStatusCountsToStatusCounts(i)

	if o.Total != 4 {
		t.Errorf("expected total 4, got %d", o.Total)
	}
	if o.CompletionPercent != 75 {
		t.Errorf("expected 75, got %d", o.CompletionPercent)
	}
}
