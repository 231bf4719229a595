package events

import (
	"encoding/json"
	"testing"
)

func TestGEMYield(t *testing.T) {

	e := GEM{
		ID:            "deadbeef",
		SchemaVersion: "1.0",
		EventType:     "enercheck-event",
		Action:        "update",
		Payload: ComplianceEvent{
			ObjectType:   "check",
			CheckID:      "11e5e4867a6e27bca0ab58889bb0a832",
			Status:       "passed",
			PendingCount: 2,
			ActionResult: "SUCCESS",
			UserDN:       "cn=casey reviewer,ou=field,o=enercheck,c=us",
			SessionID:    "a83e194d",
		},
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(e.Yield(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["eventId"] != "deadbeef" {
		t.Error("envelope fields must serialize with lower camel keys")
	}
	payload, ok := decoded["payload"].(map[string]interface{})
	if !ok {
		t.Fatal("payload must nest under the envelope")
	}
	if payload["status"] != "passed" {
		t.Errorf("payload status did not serialize, got %v", payload["status"])
	}

	if e.EventAction() != "update" {
		t.Errorf("expected update, got %s", e.EventAction())
	}
	if !e.IsSuccessful() {
		t.Error("an event not marked failed is successful")
	}
	e.Payload.ActionResult = "FAILURE"
	if e.IsSuccessful() {
		t.Error("a failed event must report unsuccessful")
	}
}
