package server_test

import (
	"net/http"
	"testing"

	"github.com/enercheck/compliance-server/protocol"
)

func TestActivateChecklistBlockedWhilePending(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	rule := makeRule(t, s, "EC-110.26")
	checklist := makeChecklist(t, s, "Service audit", []string{rule.ID})

	w := doRequest(s, newRequest(t, "PUT", "/checklists/"+checklist.ID+"/status",
		protocol.UpdateChecklistStatusRequest{Status: "active"}))

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 activating with pending checks, got %v: %s", w.Code, w.Body.String())
	}
}

func TestActivateChecklistAfterAllChecksResolved(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	rule1 := makeRule(t, s, "EC-110.26")
	rule2 := makeRule(t, s, "EC-210.8")
	checklist := makeChecklist(t, s, "Service audit", []string{rule1.ID, rule2.ID})

	setCheckStatus(t, s, checklist.ID, checklist.Checks[0].ID, "passed")
	setCheckStatus(t, s, checklist.ID, checklist.Checks[1].ID, "not_applicable")

	w := doRequest(s, newRequest(t, "PUT", "/checklists/"+checklist.ID+"/status",
		protocol.UpdateChecklistStatusRequest{Status: "active"}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK, got %v: %s", w.Code, w.Body.String())
	}
	var updated protocol.Checklist
	decodeResponse(t, w, &updated)
	if updated.Status != "active" {
		t.Errorf("Expected status active, got %s", updated.Status)
	}
	if updated.ModifiedBy != fakeDN1 {
		t.Errorf("Expected modifiedBy to be the caller, got %s", updated.ModifiedBy)
	}
}

func TestArchiveAndRestoreChecklist(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	rule := makeRule(t, s, "EC-110.26")
	checklist := makeChecklist(t, s, "Service audit", []string{rule.ID})
	resolveAllChecks(t, s, checklist)

	statusURI := "/checklists/" + checklist.ID + "/status"

	w := doRequest(s, newRequest(t, "PUT", statusURI, protocol.UpdateChecklistStatusRequest{Status: "active"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK activating, got %v: %s", w.Code, w.Body.String())
	}

	w = doRequest(s, newRequest(t, "PUT", statusURI, protocol.UpdateChecklistStatusRequest{Status: "archived"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK archiving, got %v: %s", w.Code, w.Body.String())
	}

	// An archived audit can be brought back into service.
	w = doRequest(s, newRequest(t, "PUT", statusURI, protocol.UpdateChecklistStatusRequest{Status: "active"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK restoring, got %v: %s", w.Code, w.Body.String())
	}
	var restored protocol.Checklist
	decodeResponse(t, w, &restored)
	if restored.Status != "active" {
		t.Errorf("Expected status active after restore, got %s", restored.Status)
	}
}

func TestChecklistStatusIllegalTransitions(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	rule := makeRule(t, s, "EC-110.26")
	checklist := makeChecklist(t, s, "Service audit", []string{rule.ID})

	statusURI := "/checklists/" + checklist.ID + "/status"

	// draft straight to archived skips the lifecycle.
	w := doRequest(s, newRequest(t, "PUT", statusURI, protocol.UpdateChecklistStatusRequest{Status: "archived"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for draft to archived, got %v: %s", w.Code, w.Body.String())
	}

	// Transition to the current status is also illegal.
	w = doRequest(s, newRequest(t, "PUT", statusURI, protocol.UpdateChecklistStatusRequest{Status: "draft"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for draft to draft, got %v: %s", w.Code, w.Body.String())
	}
}

func TestChecklistStatusRejectsUnknownValue(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	rule := makeRule(t, s, "EC-110.26")
	checklist := makeChecklist(t, s, "Service audit", []string{rule.ID})

	w := doRequest(s, newRequest(t, "PUT", "/checklists/"+checklist.ID+"/status",
		protocol.UpdateChecklistStatusRequest{Status: "finished"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for status outside the closed set, got %v", w.Code)
	}
}

func TestChecklistStatusUnknownChecklistIs404(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()

	w := doRequest(s, newRequest(t, "PUT", "/checklists/ffffffffffffffffffffffffffffffff/status",
		protocol.UpdateChecklistStatusRequest{Status: "active"}))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %v", w.Code)
	}
}
