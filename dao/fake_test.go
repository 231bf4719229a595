package dao_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/metadata/models"
)

const fakeInspector = "cn=jordan inspector,ou=field,o=enercheck,c=us"

func newFakeRule(code string) *models.ECRule {
	var rule models.ECRule
	rule.RuleCode = code
	rule.Title = "Service equipment accessibility " + code
	rule.Description = "Service equipment must remain accessible and labeled."
	rule.CreatedBy = fakeInspector
	return &rule
}

func uniqueCode(prefix string) string {
	return prefix + "-" + strconv.Itoa(time.Now().UTC().Nanosecond())
}

func TestFakeDAOCreateRuleDefaults(t *testing.T) {
	fake := dao.NewFakeDAO()

	created, err := fake.CreateRule(newFakeRule("NEC-110.26"))
	if err != nil {
		t.Fatal(err)
	}
	if len(created.ID) == 0 {
		t.Error("expected ID to be set")
	}
	if created.Severity != models.RuleSeverityMajor {
		t.Errorf("expected default severity major, got %s", created.Severity)
	}
	if created.RuleType != models.RuleTypeMandatory {
		t.Errorf("expected default type mandatory, got %s", created.RuleType)
	}
	if !created.IsActive {
		t.Error("new rules must be active")
	}
	if created.ModifiedBy != created.CreatedBy {
		t.Error("expected ModifiedBy to match CreatedBy")
	}
}

func TestFakeDAOCreateRuleValidation(t *testing.T) {
	fake := dao.NewFakeDAO()

	missingCode := newFakeRule("")
	if _, err := fake.CreateRule(missingCode); !dao.IsValidation(err) {
		t.Errorf("expected validation error for missing code, got %v", err)
	}

	missingTitle := newFakeRule("NEC-110.3")
	missingTitle.Title = "   "
	if _, err := fake.CreateRule(missingTitle); !dao.IsValidation(err) {
		t.Errorf("expected validation error for missing title, got %v", err)
	}

	badSeverity := newFakeRule("NEC-110.3")
	badSeverity.Severity = models.RuleSeverity("catastrophic")
	if _, err := fake.CreateRule(badSeverity); !dao.IsValidation(err) {
		t.Errorf("expected validation error for unknown severity, got %v", err)
	}

	withSection := newFakeRule("NEC-110.3")
	withSection.SectionRef = models.ToNullString("110.3")
	if _, err := fake.CreateRule(withSection); !dao.IsNotFound(err) {
		t.Errorf("expected not found for unknown section, got %v", err)
	}
	fake.AddSection("110.3")
	if _, err := fake.CreateRule(newFakeRuleWithSection("NEC-110.3", "110.3")); err != nil {
		t.Errorf("expected create to succeed once section exists, got %v", err)
	}
}

func newFakeRuleWithSection(code, section string) *models.ECRule {
	rule := newFakeRule(code)
	rule.SectionRef = models.ToNullString(section)
	return rule
}

func TestFakeDAODuplicateRuleCode(t *testing.T) {
	fake := dao.NewFakeDAO()

	if _, err := fake.CreateRule(newFakeRule("NEC-210.8")); err != nil {
		t.Fatal(err)
	}
	if _, err := fake.CreateRule(newFakeRule("NEC-210.8")); !dao.IsConflict(err) {
		t.Errorf("expected conflict for duplicate rule code, got %v", err)
	}
}

func TestFakeDAOUpdateRuleMerge(t *testing.T) {
	fake := dao.NewFakeDAO()
	fake.AddSection("210.8")

	rule := newFakeRuleWithSection("NEC-210.8", "210.8")
	rule.VerificationMethod = models.ToNullString("visual inspection")
	created, err := fake.CreateRule(rule)
	if err != nil {
		t.Fatal(err)
	}

	newTitle := "GFCI protection for dwelling units"
	severity := models.RuleSeverityCritical
	clearSection := ""
	clearedEvidence := ""
	updated, err := fake.UpdateRule(created.ID, dao.RulePatch{
		Title:              &newTitle,
		Severity:           &severity,
		SectionRef:         &clearSection,
		EvaluationCriteria: &clearedEvidence,
	}, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != newTitle {
		t.Errorf("expected title replaced, got %s", updated.Title)
	}
	if updated.Severity != models.RuleSeverityCritical {
		t.Errorf("expected severity critical, got %s", updated.Severity)
	}
	if updated.RuleCode != created.RuleCode {
		t.Error("omitted fields must retain their values")
	}
	if updated.SectionRef.Valid {
		t.Error("empty section ref must clear the association")
	}
	if !updated.VerificationMethod.Valid || updated.VerificationMethod.String != "visual inspection" {
		t.Error("omitted optional fields must retain their values")
	}
	if updated.EvaluationCriteria.Valid {
		t.Error("empty optional fields must clear")
	}
	if updated.ModifiedBy != fakeInspector {
		t.Errorf("expected ModifiedBy %s, got %s", fakeInspector, updated.ModifiedBy)
	}
}

func TestFakeDAOChecklistSnapshot(t *testing.T) {
	fake := dao.NewFakeDAO()

	ruleIDs := make([][]byte, 0, 3)
	for _, code := range []string{"NEC-110.26", "NEC-210.8", "NEC-240.4"} {
		created, err := fake.CreateRule(newFakeRule(code))
		if err != nil {
			t.Fatal(err)
		}
		ruleIDs = append(ruleIDs, created.ID)
	}

	var checklist models.ECChecklist
	checklist.Name = "Panel upgrade audit"
	checklist.CreatedBy = fakeInspector
	created, err := fake.CreateChecklist(&checklist, ruleIDs)
	if err != nil {
		t.Fatal(err)
	}
	if created.Status != models.ChecklistStatusDraft {
		t.Errorf("expected draft status, got %s", created.Status)
	}
	if len(created.Checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(created.Checks))
	}
	for i, check := range created.Checks {
		if check.Status != models.CheckStatusPending {
			t.Errorf("check %d not pending: %s", i, check.Status)
		}
		if check.RuleCode == "" || check.RuleTitle == "" {
			t.Errorf("check %d missing rule annotations", i)
		}
		if i > 0 && created.Checks[i-1].RuleCode > check.RuleCode {
			t.Error("checks must order by rule code")
		}
	}
	if created.Counts.Pending != 3 || created.Counts.Total() != 3 {
		t.Errorf("expected counts pending 3 of 3, got %+v", created.Counts)
	}
	if created.Counts.CompletionPercent() != 0 {
		t.Errorf("expected completion 0, got %d", created.Counts.CompletionPercent())
	}

	// deactivating a referenced rule leaves the existing checks in place
	inactive := false
	if _, err := fake.UpdateRule(ruleIDs[0], dao.RulePatch{IsActive: &inactive}, fakeInspector); err != nil {
		t.Fatal(err)
	}
	fetched, err := fake.GetChecklist(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fetched.Checks) != 3 {
		t.Errorf("expected checks to survive rule deactivation, got %d", len(fetched.Checks))
	}
	var second models.ECChecklist
	second.Name = "Second audit"
	second.CreatedBy = fakeInspector
	if _, err := fake.CreateChecklist(&second, ruleIDs); !dao.IsValidation(err) {
		t.Errorf("expected validation error for inactive rule in new checklist, got %v", err)
	}
}

func TestFakeDAOCreateChecklistAllOrNothing(t *testing.T) {
	fake := dao.NewFakeDAO()

	created, err := fake.CreateRule(newFakeRule("NEC-110.26"))
	if err != nil {
		t.Fatal(err)
	}
	bogus := make([]byte, 16)
	var checklist models.ECChecklist
	checklist.Name = "Rough-in inspection"
	checklist.CreatedBy = fakeInspector
	if _, err := fake.CreateChecklist(&checklist, [][]byte{created.ID, bogus}); !dao.IsValidation(err) {
		t.Errorf("expected validation error for unknown rule id, got %v", err)
	}

	listed, err := fake.ListChecklists(dao.PagingRequest{}, dao.ChecklistFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if listed.TotalRows != 0 {
		t.Errorf("failed create must persist nothing, found %d checklists", listed.TotalRows)
	}
}

func TestFakeDAOCheckUpdateMergeAndStamping(t *testing.T) {
	fake := dao.NewFakeDAO()

	created, err := fake.CreateRule(newFakeRule("NEC-110.26"))
	if err != nil {
		t.Fatal(err)
	}
	var checklist models.ECChecklist
	checklist.Name = "Final walkthrough"
	checklist.CreatedBy = fakeInspector
	list, err := fake.CreateChecklist(&checklist, [][]byte{created.ID})
	if err != nil {
		t.Fatal(err)
	}
	check := list.Checks[0]

	notes := "clearances verified at 36 inches"
	evidence := "photos/panel-042.jpg"
	update, err := fake.UpdateCheck(list.ID, check.ID, dao.CheckPatch{
		Status:   models.CheckStatusPassed,
		Notes:    &notes,
		Evidence: &evidence,
	}, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if update.Check.Status != models.CheckStatusPassed {
		t.Errorf("expected passed, got %s", update.Check.Status)
	}
	if !update.Check.CheckedBy.Valid || update.Check.CheckedBy.String != fakeInspector {
		t.Error("expected checkedBy to record the actor")
	}
	if !update.Check.CheckedAt.Valid {
		t.Error("expected checkedAt to be stamped")
	}
	if update.PendingCount != 0 {
		t.Errorf("expected no pending checks, got %d", update.PendingCount)
	}
	if !update.ReadyForActivation {
		t.Error("draft checklist with zero pending must signal ready")
	}
	if update.PriorStatus != models.CheckStatusPending {
		t.Errorf("expected prior status pending, got %s", update.PriorStatus)
	}

	// repeating the same status re-records the stamp for the new actor
	secondInspector := "cn=casey inspector,ou=field,o=enercheck,c=us"
	update, err = fake.UpdateCheck(list.ID, check.ID, dao.CheckPatch{Status: models.CheckStatusPassed}, secondInspector)
	if err != nil {
		t.Fatal(err)
	}
	if !update.Check.CheckedBy.Valid || update.Check.CheckedBy.String != secondInspector {
		t.Error("a repeated status must restamp checkedBy with the acting inspector")
	}
	if update.PriorStatus != models.CheckStatusPassed {
		t.Errorf("expected prior status passed on a repeat, got %s", update.PriorStatus)
	}

	// omitted notes retain, empty evidence clears
	cleared := ""
	update, err = fake.UpdateCheck(list.ID, check.ID, dao.CheckPatch{
		Status:   models.CheckStatusFailed,
		Evidence: &cleared,
	}, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if !update.Check.Notes.Valid || update.Check.Notes.String != notes {
		t.Error("omitted notes must retain the prior value")
	}
	if update.Check.Evidence.Valid {
		t.Error("empty evidence must clear the prior value")
	}

	// returning to pending wipes the actor stamp
	update, err = fake.UpdateCheck(list.ID, check.ID, dao.CheckPatch{Status: models.CheckStatusPending}, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if update.Check.CheckedBy.Valid || update.Check.CheckedAt.Valid {
		t.Error("pending checks carry no checkedBy or checkedAt")
	}
	if update.ReadyForActivation {
		t.Error("a pending check must clear the ready signal")
	}

	// a check can only be addressed through its own checklist
	otherID := make([]byte, 16)
	if _, err := fake.UpdateCheck(otherID, check.ID, dao.CheckPatch{Status: models.CheckStatusPassed}, fakeInspector); !dao.IsNotFound(err) {
		t.Errorf("expected not found for mismatched checklist, got %v", err)
	}
}

func TestFakeDAOActivationGuard(t *testing.T) {
	fake := dao.NewFakeDAO()

	created, err := fake.CreateRule(newFakeRule("NEC-110.26"))
	if err != nil {
		t.Fatal(err)
	}
	var checklist models.ECChecklist
	checklist.Name = "Service inspection"
	checklist.CreatedBy = fakeInspector
	list, err := fake.CreateChecklist(&checklist, [][]byte{created.ID})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fake.UpdateChecklistStatus(list.ID, models.ChecklistStatusActive, fakeInspector); !dao.IsConflict(err) {
		t.Errorf("expected conflict while pending checks remain, got %v", err)
	}
	if _, err := fake.UpdateChecklistStatus(list.ID, models.ChecklistStatusArchived, fakeInspector); !dao.IsValidation(err) {
		t.Errorf("expected illegal transition draft to archived, got %v", err)
	}

	if _, err := fake.UpdateCheck(list.ID, list.Checks[0].ID, dao.CheckPatch{Status: models.CheckStatusNotApplicable}, fakeInspector); err != nil {
		t.Fatal(err)
	}
	active, err := fake.UpdateChecklistStatus(list.ID, models.ChecklistStatusActive, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if active.Status != models.ChecklistStatusActive {
		t.Errorf("expected active, got %s", active.Status)
	}
	if _, err := fake.UpdateChecklistStatus(list.ID, models.ChecklistStatusActive, fakeInspector); !dao.IsValidation(err) {
		t.Errorf("expected illegal transition active to active, got %v", err)
	}
	archived, err := fake.UpdateChecklistStatus(list.ID, models.ChecklistStatusArchived, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if archived.Status != models.ChecklistStatusArchived {
		t.Errorf("expected archived, got %s", archived.Status)
	}
	restored, err := fake.UpdateChecklistStatus(list.ID, models.ChecklistStatusActive, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Status != models.ChecklistStatusActive {
		t.Errorf("expected unarchive back to active, got %s", restored.Status)
	}
}

func TestFakeDAODeleteRuleGuard(t *testing.T) {
	fake := dao.NewFakeDAO()

	unreferenced, err := fake.CreateRule(newFakeRule(uniqueCode("NEC-300.5")))
	if err != nil {
		t.Fatal(err)
	}
	result, err := fake.DeleteRule(unreferenced.ID, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Deleted || result.Deactivated {
		t.Errorf("unreferenced rules must hard delete, got %+v", result)
	}
	if _, err := fake.GetRule(unreferenced.ID); !dao.IsNotFound(err) {
		t.Errorf("expected rule gone after delete, got %v", err)
	}

	referenced, err := fake.CreateRule(newFakeRule(uniqueCode("NEC-310.16")))
	if err != nil {
		t.Fatal(err)
	}
	var checklist models.ECChecklist
	checklist.Name = "Conductor sizing audit"
	checklist.CreatedBy = fakeInspector
	if _, err := fake.CreateChecklist(&checklist, [][]byte{referenced.ID}); err != nil {
		t.Fatal(err)
	}
	result, err = fake.DeleteRule(referenced.ID, fakeInspector)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Deactivated || result.Deleted {
		t.Errorf("referenced rules must deactivate, got %+v", result)
	}
	kept, err := fake.GetRule(referenced.ID)
	if err != nil {
		t.Fatal(err)
	}
	if kept.IsActive {
		t.Error("deactivated rule must not stay active")
	}
	var second models.ECChecklist
	second.Name = "Follow-up audit"
	second.CreatedBy = fakeInspector
	if _, err := fake.CreateChecklist(&second, [][]byte{referenced.ID}); !dao.IsValidation(err) {
		t.Errorf("expected inactive rule rejected from new checklists, got %v", err)
	}
}

func TestFakeDAOListRulesFilters(t *testing.T) {
	fake := dao.NewFakeDAO()

	critical := newFakeRule("NEC-110.26")
	critical.Severity = models.RuleSeverityCritical
	if _, err := fake.CreateRule(critical); err != nil {
		t.Fatal(err)
	}
	minor := newFakeRule("NEC-210.52")
	minor.Severity = models.RuleSeverityMinor
	createdMinor, err := fake.CreateRule(minor)
	if err != nil {
		t.Fatal(err)
	}
	inactive := false
	if _, err := fake.UpdateRule(createdMinor.ID, dao.RulePatch{IsActive: &inactive}, fakeInspector); err != nil {
		t.Fatal(err)
	}

	activeOnly, err := fake.ListRules(dao.PagingRequest{}, dao.RuleFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if activeOnly.TotalRows != 1 {
		t.Errorf("expected 1 active rule, got %d", activeOnly.TotalRows)
	}

	everything, err := fake.ListRules(dao.PagingRequest{}, dao.RuleFilter{AllRules: true})
	if err != nil {
		t.Fatal(err)
	}
	if everything.TotalRows != 2 {
		t.Errorf("expected 2 rules with AllRules, got %d", everything.TotalRows)
	}
	if everything.PageRows != len(everything.Rules) {
		t.Error("page rows must match returned rules")
	}

	bySeverity, err := fake.ListRules(dao.PagingRequest{}, dao.RuleFilter{Severity: models.RuleSeverityCritical})
	if err != nil {
		t.Fatal(err)
	}
	if bySeverity.TotalRows != 1 || bySeverity.Rules[0].RuleCode != "NEC-110.26" {
		t.Errorf("expected only the critical rule, got %+v", bySeverity.Rules)
	}
}

func TestFakeDAOForcedError(t *testing.T) {
	fake := dao.NewFakeDAO()
	fake.Err = dao.NewStorageError(nil, "forced failure")

	if _, err := fake.ListRules(dao.PagingRequest{}, dao.RuleFilter{}); err == nil {
		t.Error("expected forced error from ListRules")
	}
	if _, err := fake.GetDBState(); err == nil {
		t.Error("expected forced error from GetDBState")
	}
}
