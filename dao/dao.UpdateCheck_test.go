package dao_test

import (
	"testing"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/metadata/models"
)

func TestDAOUpdateCheck(t *testing.T) {
	skipIfNoDB(t)

	first := createRuleFixture(t, uniqueCode("NEC-240.4"))
	second := createRuleFixture(t, uniqueCode("NEC-310.16"))
	checklist := createChecklistFixture(t, "Check update audit", [][]byte{first.ID, second.ID})
	if len(checklist.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checklist.Checks))
	}
	target := checklist.Checks[0]

	notes := "conductor ampacity matches table values"
	evidence := "photos/feeder-panel.jpg"
	update, err := d.UpdateCheck(checklist.ID, target.ID, dao.CheckPatch{
		Status:   models.CheckStatusPassed,
		Notes:    &notes,
		Evidence: &evidence,
	}, testInspector)
	if err != nil {
		t.Fatal(err)
	}
	if update.Check.Status != models.CheckStatusPassed {
		t.Errorf("expected passed, got %s", update.Check.Status)
	}
	if update.Check.Notes.String != notes || update.Check.Evidence.String != evidence {
		t.Error("notes and evidence should store as given")
	}
	if !update.Check.CheckedBy.Valid || update.Check.CheckedBy.String != testInspector {
		t.Error("verification must stamp the acting user")
	}
	if !update.Check.CheckedAt.Valid {
		t.Error("verification must stamp the time")
	}
	if update.PendingCount != 1 {
		t.Errorf("expected 1 pending check remaining, got %d", update.PendingCount)
	}
	if update.ReadyForActivation {
		t.Error("checklist with pending checks must not report ready")
	}

	// Omitted notes carry forward, empty evidence clears.
	cleared := ""
	update, err = d.UpdateCheck(checklist.ID, target.ID, dao.CheckPatch{
		Status:   models.CheckStatusFailed,
		Evidence: &cleared,
	}, testInspector)
	if err != nil {
		t.Fatal(err)
	}
	if update.Check.Notes.String != notes {
		t.Error("omitted notes should retain the stored value")
	}
	if update.Check.Evidence.Valid {
		t.Error("empty evidence should clear the stored value")
	}

	update, err = d.UpdateCheck(checklist.ID, checklist.Checks[1].ID, dao.CheckPatch{Status: models.CheckStatusNotApplicable}, testInspector)
	if err != nil {
		t.Fatal(err)
	}
	if update.PendingCount != 0 {
		t.Errorf("expected no pending checks, got %d", update.PendingCount)
	}
	if !update.ReadyForActivation {
		t.Error("draft checklist with all checks resolved should report ready")
	}

	// Returning to pending wipes the verification stamp.
	update, err = d.UpdateCheck(checklist.ID, target.ID, dao.CheckPatch{Status: models.CheckStatusPending}, testInspector)
	if err != nil {
		t.Fatal(err)
	}
	if update.Check.CheckedBy.Valid || update.Check.CheckedAt.Valid {
		t.Error("pending checks must not carry a verification stamp")
	}
	if update.ReadyForActivation {
		t.Error("reopened checklist must not report ready")
	}

	// A check is addressable only through its own checklist.
	other := createChecklistFixture(t, "Unrelated audit", [][]byte{first.ID})
	if _, err := d.UpdateCheck(other.ID, target.ID, dao.CheckPatch{Status: models.CheckStatusPassed}, testInspector); !dao.IsNotFound(err) {
		t.Errorf("expected not found for mismatched checklist, got %v", err)
	}
	if _, err := d.UpdateCheck(checklist.ID, target.ID, dao.CheckPatch{Status: models.CheckStatus("skipped")}, testInspector); !dao.IsValidation(err) {
		t.Errorf("unknown status should be rejected, got %v", err)
	}
}
