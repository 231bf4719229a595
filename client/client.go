package client

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/protocol"
)

// EnerCheck defines operations for our client.
type EnerCheck interface {
	CreateChecklist(protocol.CreateChecklistRequest) (protocol.ChecklistDetail, error)
	CreateRule(protocol.CreateRuleRequest) (protocol.Rule, error)
	DeleteRule(id string) (protocol.DeletedRuleResponse, error)
	GetChecklist(id string) (protocol.ChecklistDetail, error)
	GetHttpClient() *http.Client
	GetRule(id string) (protocol.Rule, error)
	GetStatusCounts(checklistID string) (protocol.StatusCounts, error)
	ListChecklists(paging protocol.PagingRequest, status string) (protocol.ChecklistResultset, error)
	ListRules(paging protocol.PagingRequest, search RuleSearch) (protocol.RuleResultset, error)
	UpdateCheck(checklistID string, checkID string, req protocol.UpdateCheckRequest) (protocol.CheckUpdateResponse, error)
	UpdateChecklistStatus(id string, status string) (protocol.Checklist, error)
	UpdateRule(id string, req protocol.UpdateRuleRequest) (protocol.Rule, error)
}

// Client implements EnerCheck.
type Client struct {
	httpClient *http.Client
	url        string
	// Verbose will print extra debug information if true.
	Verbose bool
	Conf    Config
	MyDN    string
}

// Verify that Client Implements EnerCheck.
var _ EnerCheck = (*Client)(nil)

// Config defines the bare minimum that must be statically configured for a Client.
type Config struct {
	Cert       string
	Trust      string
	Key        string
	SkipVerify bool // DO NOT SET THIS.  Set ServerName to match CN of the Remote
	// Remote specifies the full API proxy prefix: https://{host}:{port}/{prefix}
	// Actual compliance API endpoints are appended to this string.
	Remote string
	// Impersonation is a DN of a user we want to impersonate. If set, HTTP headers
	// USER_DN will be set to this value, and EXTERNAL_SYS_DN and SSL_CLIENT_S_DN
	// will be set to the Client.MyDN field.
	Impersonation string
	// DN asserts the caller identity when no certificate carries one. It is only
	// consulted when Cert, Trust, and Key are all blank, and the server will only
	// honor it from a whitelisted system.
	DN         string
	ServerName string // must match the CN of the Remote certificate, or the Dial hostname when blank
}

// NewClient instantiates a new Client that implements EnerCheck.  This client can be used to
// manage the rule catalog and perform audits against a running compliance engine instance.
//
// The client requires a configuration structure that contains the key bits of information
// necessary to establish a connection to the engine: certificates, trusts, keys, and remote
// URL. When no certificate material is configured the client connects over plain HTTP and
// asserts the identity in Config.DN through headers instead.
func NewClient(conf Config) (*Client, error) {
	if len(conf.Cert) == 0 && len(conf.Trust) == 0 && len(conf.Key) == 0 {
		if len(conf.DN) == 0 {
			return nil, errors.New("a client without certificates must declare its identity in the DN field")
		}
		mydn := config.GetNormalizedDistinguishedName(conf.DN)
		return &Client{&http.Client{}, conf.Remote, false, conf, mydn}, nil
	}

	trust, err := ioutil.ReadFile(conf.Trust)
	if err != nil {
		return nil, fmt.Errorf("while opening trust file %s: %v", conf.Trust, err)
	}
	caPool := x509.NewCertPool()
	if caPool.AppendCertsFromPEM(trust) == false {
		if len(trust) > 0 {
			return nil, fmt.Errorf("while appending certs in trust file %s", conf.Trust)
		}
		return nil, fmt.Errorf("no certificates listed in trust file %s", conf.Trust)
	}
	cert, err := tls.LoadX509KeyPair(conf.Cert, conf.Key)
	if err != nil {
		return nil, fmt.Errorf("while opening cert and key file %s, %s: %v", conf.Cert, conf.Key, err)
	}

	pub, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("while parsing public certificate from cert and key file %s, %s: %v", conf.Cert, conf.Key, err)
	}
	mydn := config.GetDistinguishedName(pub)

	tlsConfig := &tls.Config{
		InsecureSkipVerify:       conf.SkipVerify,
		Certificates:             []tls.Certificate{cert},
		ClientCAs:                caPool,
		RootCAs:                  caPool,
		PreferServerCipherSuites: true,
		MinVersion:               tls.VersionTLS10,
		ServerName:               conf.ServerName,
	}
	tlsConfig.BuildNameToCertificate()

	var c http.Client
	c.Transport = &http.Transport{TLSClientConfig: tlsConfig}

	return &Client{&c, conf.Remote, false, conf, mydn}, nil
}

// CreateRule defines a new rule in the engine's catalog from the CreateRuleRequest
// that fully specifies the requirement. Severity and ruleType default on the server
// when omitted.
func (c *Client) CreateRule(req protocol.CreateRuleRequest) (protocol.Rule, error) {
	uri := c.url + "/rules"
	var ret protocol.Rule

	resp, err := c.doPost(uri, req)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	// Send back the created rule properties
	err = json.NewDecoder(resp.Body).Decode(&ret)
	if err != nil {
		return ret, fmt.Errorf("could not decode response: %v", err)
	}

	return ret, nil
}

// GetRule fetches a rule from the catalog by its unique ID. Deactivated rules
// remain retrievable.
func (c *Client) GetRule(id string) (protocol.Rule, error) {
	var ret protocol.Rule

	ruleURL := c.url + "/rules/" + id

	resp, err := c.doGet(ruleURL, nil)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return ret, err
	}

	jsonErr := json.Unmarshal(body, &ret)
	if jsonErr != nil {
		return ret, jsonErr
	}

	return ret, nil
}

// UpdateRule applies a partial update to a rule's properties. Fields omitted
// from the request retain their stored values. Checks snapshotted onto
// existing checklists are unaffected.
func (c *Client) UpdateRule(id string, req protocol.UpdateRuleRequest) (protocol.Rule, error) {
	uri := c.url + "/rules/" + id
	var ret protocol.Rule

	resp, err := c.doPut(uri, req)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	err = json.NewDecoder(resp.Body).Decode(&ret)
	if err != nil {
		return ret, fmt.Errorf("could not decode response: %v", err)
	}

	return ret, nil
}

// DeleteRule removes a rule from the catalog. A rule referenced by any check is
// deactivated instead of removed; the response discriminates which happened.
func (c *Client) DeleteRule(id string) (protocol.DeletedRuleResponse, error) {

	url := c.url + "/rules/" + id

	var ret protocol.DeletedRuleResponse

	resp, err := c.doDelete(url, nil)
	if err != nil {
		log.Println(err)
		return ret, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	err = json.NewDecoder(resp.Body).Decode(&ret)
	if err != nil {
		return ret, err
	}

	return ret, nil
}

// RuleSearch constrains a rule listing. Zero valued fields apply no
// constraint. Listings cover active rules only unless IncludeInactive is set.
type RuleSearch struct {
	Severity        string
	RuleType        string
	SectionRef      string
	IncludeInactive bool
}

// ListRules facilitates listing the rule catalog applying the requested
// filtering and paging conditions to the results.
func (c *Client) ListRules(paging protocol.PagingRequest, search RuleSearch) (protocol.RuleResultset, error) {
	uri := c.url + "/rules?"
	if len(search.Severity) > 0 {
		uri += fmt.Sprintf("severity=%s&", url.QueryEscape(search.Severity))
	}
	if len(search.RuleType) > 0 {
		uri += fmt.Sprintf("ruleType=%s&", url.QueryEscape(search.RuleType))
	}
	if len(search.SectionRef) > 0 {
		uri += fmt.Sprintf("sectionRef=%s&", url.QueryEscape(search.SectionRef))
	}
	if search.IncludeInactive {
		uri += "includeInactive=true&"
	}
	uri += pagingParams(paging)

	var ret protocol.RuleResultset
	resp, err := c.doGet(uri, nil)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return ret, err
	}

	jsonErr := json.Unmarshal(body, &ret)
	if jsonErr != nil {
		return ret, jsonErr
	}

	return ret, nil
}

// CreateChecklist starts a new audit over the referenced rules. Every rule must
// exist and be active or the engine rejects the whole request. The response
// inlines one pending check per distinct rule, each carrying the rule's code
// and title as frozen at this moment.
func (c *Client) CreateChecklist(req protocol.CreateChecklistRequest) (protocol.ChecklistDetail, error) {
	uri := c.url + "/checklists"
	var ret protocol.ChecklistDetail

	resp, err := c.doPost(uri, req)
	if err != nil {
		log.Println(err)
		return ret, err
	}
	defer resp.Body.Close()

	if c.Verbose {
		data, _ := httputil.DumpResponse(resp, true)
		fmt.Printf("%s", string(data))
	}

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	// Send back the created checklist with its pending checks
	err = json.NewDecoder(resp.Body).Decode(&ret)
	if err != nil {
		return ret, err
	}

	return ret, nil
}

// GetChecklist fetches a checklist by its unique ID, inlining its checks and
// the derived status tally.
func (c *Client) GetChecklist(id string) (protocol.ChecklistDetail, error) {
	var ret protocol.ChecklistDetail

	checklistURL := c.url + "/checklists/" + id

	resp, err := c.doGet(checklistURL, nil)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return ret, err
	}

	jsonErr := json.Unmarshal(body, &ret)
	if jsonErr != nil {
		return ret, jsonErr
	}

	return ret, nil
}

// ListChecklists facilitates listing checklists, optionally constrained to one
// lifecycle status, applying the requested paging conditions to the results.
// Listed checklists carry their status tallies but not their checks.
func (c *Client) ListChecklists(paging protocol.PagingRequest, status string) (protocol.ChecklistResultset, error) {
	uri := c.url + "/checklists?"
	if len(status) > 0 {
		uri += fmt.Sprintf("status=%s&", url.QueryEscape(status))
	}
	uri += pagingParams(paging)

	var ret protocol.ChecklistResultset
	resp, err := c.doGet(uri, nil)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return ret, err
	}

	jsonErr := json.Unmarshal(body, &ret)
	if jsonErr != nil {
		return ret, jsonErr
	}

	return ret, nil
}

// UpdateChecklistStatus asks for a lifecycle transition on a checklist. Legal
// moves are draft to active, active to archived, and archived to active.
// Activation is refused while any check remains pending.
func (c *Client) UpdateChecklistStatus(id string, status string) (protocol.Checklist, error) {
	uri := c.url + "/checklists/" + id + "/status"
	var ret protocol.Checklist

	statusRequest := protocol.UpdateChecklistStatusRequest{
		Status: status,
	}

	resp, err := c.doPut(uri, statusRequest)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	err = json.NewDecoder(resp.Body).Decode(&ret)
	if err != nil {
		return ret, fmt.Errorf("could not decode response: %v", err)
	}

	return ret, nil
}

// UpdateCheck records a verification outcome on a check within a checklist.
// The response carries the owning checklist's remaining pending count so
// callers can surface activation readiness without a second request.
func (c *Client) UpdateCheck(checklistID string, checkID string, req protocol.UpdateCheckRequest) (protocol.CheckUpdateResponse, error) {
	uri := c.url + "/checklists/" + checklistID + "/checks/" + checkID
	var ret protocol.CheckUpdateResponse

	resp, err := c.doPut(uri, req)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if c.Verbose {
		data, _ := httputil.DumpResponse(resp, true)
		fmt.Printf("%s", string(data))
	}

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	err = json.NewDecoder(resp.Body).Decode(&ret)
	if err != nil {
		return ret, fmt.Errorf("could not decode response: %v", err)
	}

	return ret, nil
}

// GetStatusCounts fetches the derived tally of check statuses for a checklist
// without transferring the checks themselves.
func (c *Client) GetStatusCounts(checklistID string) (protocol.StatusCounts, error) {
	var ret protocol.StatusCounts

	countsURL := c.url + "/checklists/" + checklistID + "/counts"

	resp, err := c.doGet(countsURL, nil)
	if err != nil {
		return ret, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ret, errorFromResponse(resp)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return ret, err
	}

	jsonErr := json.Unmarshal(body, &ret)
	if jsonErr != nil {
		return ret, jsonErr
	}

	return ret, nil
}

func (c *Client) GetHttpClient() *http.Client {
	return c.httpClient
}

// Ping checks if the server is up
func (c *Client) Ping() (bool, error) {
	pingURL := c.url + "/ping"
	resp, err := c.doGet(pingURL, nil)
	if err != nil {
		return false, fmt.Errorf("error performing request: %v", err)
	}
	defer resp.Body.Close()
	return (resp.StatusCode == http.StatusOK), nil
}

// pagingParams renders the page constraints as query parameters, leaving out
// zero values so the server side defaults apply.
func pagingParams(paging protocol.PagingRequest) string {
	var params string
	if paging.PageNumber > 0 {
		params += fmt.Sprintf("pageNumber=%d&", paging.PageNumber)
	}
	if paging.PageSize > 0 {
		params += fmt.Sprintf("pageSize=%d&", paging.PageSize)
	}
	return params
}

func (c *Client) doDelete(uri string, body interface{}) (*http.Response, error) {
	return c.doMethod("DELETE", uri, body)
}
func (c *Client) doGet(uri string, body interface{}) (*http.Response, error) {
	return c.doMethod("GET", uri, body)
}
func (c *Client) doPost(uri string, body interface{}) (*http.Response, error) {
	return c.doMethod("POST", uri, body)
}
func (c *Client) doPut(uri string, body interface{}) (*http.Response, error) {
	return c.doMethod("PUT", uri, body)
}
func (c *Client) doMethod(method string, uri string, body interface{}) (*http.Response, error) {
	var err error
	var jsonBody []byte
	var req *http.Request
	if body != nil {
		jsonBody, err = json.MarshalIndent(body, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("could not marshall json body: %v", err)
		}
		req, err = http.NewRequest(method, uri, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, uri, nil)
	}
	if err != nil {
		return nil, err
	}

	c.setIdentityHeaders(req)

	return c.httpClient.Do(req)
}

// setIdentityHeaders asserts who is calling. With impersonation the headers
// carry both the acted-for user and this system's DN. A plain connection has
// no peer certificate, so the client's own identity rides the headers too.
func (c *Client) setIdentityHeaders(req *http.Request) {
	if c.Conf.Impersonation != "" {
		setImpersonationHeaders(req, c.Conf.Impersonation, c.MyDN)
		return
	}
	if len(c.Conf.Cert) == 0 {
		setImpersonationHeaders(req, c.MyDN, c.MyDN)
	}
}

func errorFromResponse(resp *http.Response) error {

	statusCode := resp.StatusCode
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return fmt.Errorf("%d %s", statusCode, string(body))
}

func setImpersonationHeaders(req *http.Request, impersonating, sysDN string) {
	// who I want to become
	req.Header.Set("USER_DN", impersonating)
	// who I am
	req.Header.Set("EXTERNAL_SYS_DN", sysDN)
	req.Header.Set("SSL_CLIENT_S_DN", sysDN)
}
