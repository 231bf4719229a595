package dao_test

import (
	"bytes"
	"testing"

	"github.com/enercheck/compliance-server/dao"
)

func TestDAOGetRule(t *testing.T) {
	skipIfNoDB(t)

	created := createRuleFixture(t, uniqueCode("NEC-210.8"))

	fetched, err := d.GetRule(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fetched.ID, created.ID) {
		t.Error("expected the same rule back")
	}
	if fetched.RuleCode != created.RuleCode {
		t.Errorf("expected rule code %s, got %s", created.RuleCode, fetched.RuleCode)
	}
	if fetched.Title != created.Title {
		t.Errorf("expected title %s, got %s", created.Title, fetched.Title)
	}

	if _, err := d.GetRule(make([]byte, 16)); !dao.IsNotFound(err) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}
}
