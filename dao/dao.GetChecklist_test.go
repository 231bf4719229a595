package dao_test

import (
	"bytes"
	"testing"

	"github.com/enercheck/compliance-server/dao"
)

func TestDAOGetChecklist(t *testing.T) {
	skipIfNoDB(t)

	rule := createRuleFixture(t, uniqueCode("NEC-310.16"))
	created := createChecklistFixture(t, "Conductor audit", [][]byte{rule.ID})

	fetched, err := d.GetChecklist(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fetched.ID, created.ID) {
		t.Error("expected the same checklist back")
	}
	if fetched.Name != created.Name {
		t.Errorf("expected name %s, got %s", created.Name, fetched.Name)
	}
	if len(fetched.Checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(fetched.Checks))
	}
	if fetched.Checks[0].RuleCode != rule.RuleCode {
		t.Errorf("expected snapshot %s, got %s", rule.RuleCode, fetched.Checks[0].RuleCode)
	}
	if fetched.Counts.Total() != 1 {
		t.Errorf("expected tally of 1, got %+v", fetched.Counts)
	}

	if _, err := d.GetChecklist(make([]byte, 16)); !dao.IsNotFound(err) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}
}
