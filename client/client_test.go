package client

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/protocol"
	"github.com/enercheck/compliance-server/server"
	"github.com/enercheck/compliance-server/services/kafka"
	"github.com/stretchr/testify/assert"
)

// mountPoint matches the default base path that routes are registered under.
const mountPoint = "/services/enercheck/1.0"

var (
	inspectorDN = `cn=test inspector01,ou=people,ou=enercheck,o=enercheck project,c=us`
	systemDN    = `cn=enercheck-proxy,ou=services,ou=enercheck,o=enercheck project,c=us`
)

// startTestEngine serves a full engine over an in memory DAO so client calls
// exercise the real routes without a live deployment.
func startTestEngine(t *testing.T) *httptest.Server {
	t.Helper()
	fakeDAO := dao.NewFakeDAO()
	for _, refCode := range []string{"110.26", "210.8", "240.4"} {
		fakeDAO.AddSection(refCode)
	}
	settings := config.ServerSettingsConfiguration{
		BasePath:                  mountPoint,
		ListenPort:                "4430",
		ListenBind:                "127.0.0.1",
		ACLImpersonationWhitelist: []string{systemDN},
	}
	s, err := server.NewAppServer(settings)
	if err != nil {
		t.Fatalf("Could not create AppServer: %v", err)
	}
	s.RootDAO = fakeDAO
	s.EventQueue = kafka.NewFakeAsyncProducer(nil)
	return httptest.NewServer(s)
}

// newTestClient connects over plain HTTP as a whitelisted system acting for
// an inspector, the same posture a front end proxy presents.
func newTestClient(t *testing.T, remote string) *Client {
	t.Helper()
	me, err := NewClient(Config{
		Remote:        remote + mountPoint,
		DN:            systemDN,
		Impersonation: inspectorDN,
	})
	if err != nil {
		t.Fatalf("ERROR creating new client: %s", err)
	}
	return me
}

// TestNewClientRequiresIdentity verifies that a client without certificates
// must declare who it is before it can be constructed.
func TestNewClientRequiresIdentity(t *testing.T) {
	_, err := NewClient(Config{Remote: "http://localhost:4430" + mountPoint})
	assert.NotNil(t, err, "Expected an error constructing a client with no certs and no DN")
}

// TestRoundTrip walks an audit from catalog to activation: define rules,
// build a checklist over them, record outcomes, and activate.
func TestRoundTrip(t *testing.T) {
	engine := startTestEngine(t)
	defer engine.Close()
	me := newTestClient(t, engine.URL)

	up, err := me.Ping()
	assert.Nil(t, err, fmt.Sprintf("Ping hit an error: %s", err))
	assert.True(t, up, "Expected the engine to report up")

	clearance, err := me.CreateRule(protocol.CreateRuleRequest{
		RuleCode:    "NEC-110.26",
		Title:       "Working space about electrical equipment",
		Description: "Equipment operating at 600 volts or less must have sufficient working clearance.",
		SectionRef:  "110.26",
		Severity:    "critical",
	})
	assert.Nil(t, err, fmt.Sprintf("Creating rule hit an error: %s", err))
	assert.Equal(t, "critical", clearance.Severity)
	assert.True(t, clearance.IsActive, "Expected a new rule to be active")

	gfci, err := me.CreateRule(protocol.CreateRuleRequest{
		RuleCode:    "NEC-210.8",
		Title:       "GFCI protection for personnel",
		Description: "Receptacles in the named locations must have ground-fault circuit-interrupter protection.",
		SectionRef:  "210.8",
	})
	assert.Nil(t, err, fmt.Sprintf("Creating rule hit an error: %s", err))
	assert.Equal(t, "major", gfci.Severity)

	checklist, err := me.CreateChecklist(protocol.CreateChecklistRequest{
		Name:        "Service entrance rough-in",
		Description: "Rough-in inspection",
		RuleIds:     []string{clearance.ID, gfci.ID},
	})
	assert.Nil(t, err, fmt.Sprintf("Creating checklist hit an error: %s", err))
	assert.Equal(t, "draft", checklist.Status)
	assert.Equal(t, 2, len(checklist.Checks))
	// Checks come back ordered by the rule code frozen at creation
	assert.Equal(t, "NEC-110.26", checklist.Checks[0].RuleCode)
	assert.Equal(t, inspectorDN, checklist.CreatedBy)

	outcome, err := me.UpdateCheck(checklist.ID, checklist.Checks[0].ID,
		protocol.UpdateCheckRequest{Status: "passed"})
	assert.Nil(t, err, fmt.Sprintf("Recording outcome hit an error: %s", err))
	assert.Equal(t, 1, outcome.PendingCount)
	assert.Equal(t, inspectorDN, outcome.Check.CheckedBy)

	counts, err := me.GetStatusCounts(checklist.ID)
	assert.Nil(t, err, fmt.Sprintf("Fetching counts hit an error: %s", err))
	assert.Equal(t, 1, counts.Passed)
	assert.Equal(t, 1, counts.Pending)
	assert.Equal(t, 50, counts.CompletionPercent)

	outcome, err = me.UpdateCheck(checklist.ID, checklist.Checks[1].ID,
		protocol.UpdateCheckRequest{Status: "not_applicable"})
	assert.Nil(t, err, fmt.Sprintf("Recording outcome hit an error: %s", err))
	assert.True(t, outcome.ReadyForActivation, "Expected the checklist to be ready once nothing is pending")

	activated, err := me.UpdateChecklistStatus(checklist.ID, "active")
	assert.Nil(t, err, fmt.Sprintf("Activating checklist hit an error: %s", err))
	assert.Equal(t, "active", activated.Status)

	listed, err := me.ListChecklists(protocol.PagingRequest{PageNumber: 1, PageSize: 10}, "active")
	assert.Nil(t, err, fmt.Sprintf("Listing checklists hit an error: %s", err))
	assert.Equal(t, 1, listed.TotalRows)
}

// TestActivationRefusedWhilePending verifies the conflict surfaces through
// the client when activation is attempted too early.
func TestActivationRefusedWhilePending(t *testing.T) {
	engine := startTestEngine(t)
	defer engine.Close()
	me := newTestClient(t, engine.URL)

	rule, err := me.CreateRule(protocol.CreateRuleRequest{
		RuleCode:    "NEC-240.4",
		Title:       "Protection of conductors",
		Description: "Conductors must be protected against overcurrent per their ampacities.",
		SectionRef:  "240.4",
	})
	assert.Nil(t, err, fmt.Sprintf("Creating rule hit an error: %s", err))

	checklist, err := me.CreateChecklist(protocol.CreateChecklistRequest{
		Name:    "Feeder inspection",
		RuleIds: []string{rule.ID},
	})
	assert.Nil(t, err, fmt.Sprintf("Creating checklist hit an error: %s", err))

	_, err = me.UpdateChecklistStatus(checklist.ID, "active")
	assert.NotNil(t, err, "Expected activation to be refused while checks are pending")
	if err != nil {
		assert.True(t, strings.Contains(err.Error(), "409"), fmt.Sprintf("Expected a conflict, got: %s", err))
	}
}

// TestDeleteRuleReferencedByAudit verifies the delete guard surfaces through
// the client: an unreferenced rule is removed while a referenced one is
// deactivated and stays retrievable.
func TestDeleteRuleReferencedByAudit(t *testing.T) {
	engine := startTestEngine(t)
	defer engine.Close()
	me := newTestClient(t, engine.URL)

	unreferenced, err := me.CreateRule(protocol.CreateRuleRequest{
		RuleCode:    "NEC-240.4-A",
		Title:       "Power loss hazard",
		Description: "Branch circuit conductors supplying loads other than motor loads.",
	})
	assert.Nil(t, err, fmt.Sprintf("Creating rule hit an error: %s", err))

	referenced, err := me.CreateRule(protocol.CreateRuleRequest{
		RuleCode:    "NEC-240.4-B",
		Title:       "Overcurrent devices rated 800 amperes or less",
		Description: "The next higher standard overcurrent device rating is permitted under the named conditions.",
	})
	assert.Nil(t, err, fmt.Sprintf("Creating rule hit an error: %s", err))

	_, err = me.CreateChecklist(protocol.CreateChecklistRequest{
		Name:    "Overcurrent audit",
		RuleIds: []string{referenced.ID},
	})
	assert.Nil(t, err, fmt.Sprintf("Creating checklist hit an error: %s", err))

	gone, err := me.DeleteRule(unreferenced.ID)
	assert.Nil(t, err, fmt.Sprintf("Deleting rule hit an error: %s", err))
	assert.True(t, gone.Deleted, "Expected an unreferenced rule to be removed outright")

	kept, err := me.DeleteRule(referenced.ID)
	assert.Nil(t, err, fmt.Sprintf("Deleting rule hit an error: %s", err))
	assert.True(t, kept.Deactivated, "Expected a referenced rule to be deactivated instead")

	fetched, err := me.GetRule(referenced.ID)
	assert.Nil(t, err, fmt.Sprintf("Fetching rule hit an error: %s", err))
	assert.False(t, fetched.IsActive, "Expected the deactivated rule to remain retrievable")
}
