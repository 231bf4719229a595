package server_test

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/protocol"
	"github.com/enercheck/compliance-server/server"
	"github.com/enercheck/compliance-server/services/kafka"
)

var (
	fakeDN1       = `cn=test inspector01,ou=people,ou=enercheck,o=enercheck project,c=us`
	fakeDN2       = `cn=test inspector02,ou=people,ou=enercheck,o=enercheck project,c=us`
	whitelistedDN = `cn=enercheck-proxy,ou=services,ou=enercheck,o=enercheck project,c=us`
)

// mountPoint matches the default base path that routes are registered under.
const mountPoint = "/services/enercheck/1.0"

// knownSections are seeded into the fake DAO so rules citing them pass the
// standards catalog existence check.
var knownSections = []string{"110.26", "210.8", "240.4", "310.16", "408.4"}

// NewFakeServerWithFakeDAO builds an AppServer wired to an in memory DAO and
// a null event queue. The returned FakeDAO can be used to force errors.
func NewFakeServerWithFakeDAO() (*server.AppServer, *dao.FakeDAO) {

	fakeDAO := dao.NewFakeDAO()
	for _, refCode := range knownSections {
		fakeDAO.AddSection(refCode)
	}

	settings := config.ServerSettingsConfiguration{
		BasePath:                  mountPoint,
		ListenPort:                "4430",
		ListenBind:                "127.0.0.1",
		ACLImpersonationWhitelist: []string{whitelistedDN},
	}
	s, err := server.NewAppServer(settings)
	if err != nil {
		log.Fatalf("Could not create AppServer for tests: %v", err)
	}
	s.RootDAO = fakeDAO
	s.EventQueue = kafka.NewFakeAsyncProducer(nil)
	return s, fakeDAO
}

// newRequest builds a request with the headers that pass header validation
// over a non TLS connection: a user identity plus a whitelisted client.
func newRequest(t *testing.T, method, uri string, body interface{}) *http.Request {
	return newRequestAs(t, fakeDN1, method, uri, body)
}

// newRequestAs builds a request on behalf of the given user identity.
func newRequestAs(t *testing.T, userDN, method, uri string, body interface{}) *http.Request {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Unable to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	r, err := http.NewRequest(method, mountPoint+uri, reader)
	if err != nil {
		t.Fatalf("Unable to generate request: %v", err)
	}
	r.Header.Add("USER_DN", userDN)
	r.Header.Add("SSL_CLIENT_S_DN", whitelistedDN)
	r.Header.Add("Content-Type", "application/json")
	return r
}

func doRequest(s *server.AppServer, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("Could not decode response %s: %v", w.Body.String(), err)
	}
}

// makeRule creates a rule through the API and fails the test if it could not.
func makeRule(t *testing.T, s *server.AppServer, ruleCode string) protocol.Rule {
	t.Helper()
	payload := protocol.CreateRuleRequest{
		RuleCode:    ruleCode,
		Title:       "Working space about electrical equipment",
		Description: "Equipment operating at 600 volts or less must have sufficient working clearance.",
		SectionRef:  "110.26",
	}
	w := doRequest(s, newRequest(t, "POST", "/rules", payload))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK creating rule %s, got %v: %s", ruleCode, w.Code, w.Body.String())
	}
	var rule protocol.Rule
	decodeResponse(t, w, &rule)
	return rule
}

// makeChecklist creates a checklist over the given rule ids through the API.
func makeChecklist(t *testing.T, s *server.AppServer, name string, ruleIDs []string) protocol.ChecklistDetail {
	t.Helper()
	payload := protocol.CreateChecklistRequest{
		Name:        name,
		Description: "Rough-in inspection",
		RuleIds:     ruleIDs,
	}
	w := doRequest(s, newRequest(t, "POST", "/checklists", payload))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK creating checklist %s, got %v: %s", name, w.Code, w.Body.String())
	}
	var checklist protocol.ChecklistDetail
	decodeResponse(t, w, &checklist)
	return checklist
}

// setCheckStatus records a verification outcome on a check through the API.
func setCheckStatus(t *testing.T, s *server.AppServer, checklistID, checkID, status string) protocol.CheckUpdateResponse {
	t.Helper()
	payload := protocol.UpdateCheckRequest{Status: status}
	uri := "/checklists/" + checklistID + "/checks/" + checkID
	w := doRequest(s, newRequest(t, "PUT", uri, payload))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected OK recording %s on check %s, got %v: %s", status, checkID, w.Code, w.Body.String())
	}
	var update protocol.CheckUpdateResponse
	decodeResponse(t, w, &update)
	return update
}

// resolveAllChecks moves every check in the checklist off pending so the
// checklist becomes eligible for activation.
func resolveAllChecks(t *testing.T, s *server.AppServer, checklist protocol.ChecklistDetail) {
	t.Helper()
	for _, check := range checklist.Checks {
		setCheckStatus(t, s, checklist.ID, check.ID, "passed")
	}
}
