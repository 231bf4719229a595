package dao_test

import (
	"testing"

	"github.com/enercheck/compliance-server/dao"
)

func TestDAOGetDBState(t *testing.T) {
	skipIfNoDB(t)

	state, err := d.GetDBState()
	if err != nil {
		t.Fatal(err)
	}
	if state.SchemaVersion != dao.SchemaVersion {
		t.Errorf("schema version %s does not match code version %s", state.SchemaVersion, dao.SchemaVersion)
	}
	if len(state.Identifier) == 0 {
		t.Error("database identifier should be set at initialization")
	}
}
