package server_test

import (
	"net/http"
	"testing"

	"github.com/enercheck/compliance-server/protocol"
)

func TestDeleteRuleUnreferencedIsRemoved(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	created := makeRule(t, s, "EC-110.26")

	w := doRequest(s, newRequest(t, "DELETE", "/rules/"+created.ID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK, got %v: %s", w.Code, w.Body.String())
	}
	var deleted protocol.DeletedRuleResponse
	decodeResponse(t, w, &deleted)
	if !deleted.Deleted || deleted.Deactivated {
		t.Errorf("Expected a hard delete for an unreferenced rule: %+v", deleted)
	}

	// The row is gone.
	w = doRequest(s, newRequest(t, "GET", "/rules/"+created.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 retrieving a deleted rule, got %v", w.Code)
	}
}

func TestDeleteRuleReferencedIsDeactivated(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	created := makeRule(t, s, "EC-110.26")
	makeChecklist(t, s, "Panel upgrade audit", []string{created.ID})

	w := doRequest(s, newRequest(t, "DELETE", "/rules/"+created.ID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK, got %v: %s", w.Code, w.Body.String())
	}
	var deleted protocol.DeletedRuleResponse
	decodeResponse(t, w, &deleted)
	if deleted.Deleted || !deleted.Deactivated {
		t.Errorf("Expected a deactivation for a referenced rule: %+v", deleted)
	}
	if deleted.Rule == nil {
		t.Fatalf("Expected the surviving rule in the response")
	}
	if deleted.Rule.IsActive {
		t.Errorf("Surviving rule should be inactive")
	}

	// Still retrievable, checks keep resolving against it.
	w = doRequest(s, newRequest(t, "GET", "/rules/"+created.ID, nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 retrieving a deactivated rule, got %v", w.Code)
	}
}

func TestDeleteRuleUnknownIDIs404(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()

	w := doRequest(s, newRequest(t, "DELETE", "/rules/ffffffffffffffffffffffffffffffff", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %v", w.Code)
	}
}

func TestDeleteRuleBlocksSelectionIntoNewChecklists(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()
	referenced := makeRule(t, s, "EC-110.26")
	makeChecklist(t, s, "First audit", []string{referenced.ID})

	// Deactivates, does not remove.
	w := doRequest(s, newRequest(t, "DELETE", "/rules/"+referenced.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK, got %v", w.Code)
	}

	// A new checklist can no longer select the deactivated rule.
	payload := protocol.CreateChecklistRequest{
		Name:    "Second audit",
		RuleIds: []string{referenced.ID},
	}
	w = doRequest(s, newRequest(t, "POST", "/checklists", payload))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 selecting an inactive rule, got %v: %s", w.Code, w.Body.String())
	}
}
