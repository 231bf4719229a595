package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"

	ccache "github.com/karlseguin/ccache/v2"
	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/events"
	"github.com/enercheck/compliance-server/services/zookeeper"
	"github.com/enercheck/compliance-server/util"
)

// Constants serve as keys for setting values on a request-scoped Context.
const (
	CallerVal = iota
	CaptureGroupsVal
	GEMVal
	Logger
	SessionID
	DAO
)

// AppServer is an http.Handler implementation that holds most service dependencies.
type AppServer struct {
	// Port is the TCP port that the web server listens on.
	Port string
	// Bind is the Network Address that the web server will use.
	Bind string
	// Addr is the combined network address and port the server listens on.
	Addr string
	// RootDAO is the interface contract with the database.
	RootDAO dao.DAO
	// Conf is the configuration passed to the application.
	Conf config.ServerSettingsConfiguration
	// ServicePrefix is the base url. Used when matching routes.
	ServicePrefix string
	// EventQueue is a Publisher interface we use to publish our main event stream.
	EventQueue events.Publisher
	// EventQueueZK is a pointer to the cluster where we discover Kafka. May be the same as DefaultZK.
	EventQueueZK *zookeeper.ZKState
	// Routes holds the compiled regular expressions used when matching routes. See InitRegex method.
	Routes *StaticRx
	// DefaultZK wraps a connection to the ZK cluster we announce to, and holds state for our registration.
	DefaultZK *zookeeper.ZKState
	// SectionsLruCache holds standards section references already confirmed to exist, with
	// support to purge those least recently used when filling. Up to 1000 refs retained in memory.
	SectionsLruCache *ccache.Cache
	// AclImpersonationWhitelist provides a list of distinguished names allowed to perform impersonation
	AclImpersonationWhitelist []string
}

// NewAppServer creates an AppServer.
func NewAppServer(conf config.ServerSettingsConfiguration) (*AppServer, error) {

	if len(conf.BasePath) == 0 || !strings.HasPrefix(conf.BasePath, "/") {
		return nil, errors.New("base path must be set and begin with a slash")
	}

	sectionsLruCache := ccache.New(ccache.Configure().MaxSize(1000).ItemsToPrune(50))

	app := AppServer{
		Port:                      conf.ListenPort,
		Bind:                      conf.ListenBind,
		Addr:                      conf.ListenBind + ":" + conf.ListenPort,
		Conf:                      conf,
		ServicePrefix:             regexp.QuoteMeta(conf.BasePath),
		SectionsLruCache:          sectionsLruCache,
		AclImpersonationWhitelist: conf.ACLImpersonationWhitelist,
	}

	app.InitRegex()

	return &app, nil
}

// InitRegex compiles static regexes and initializes the AppServer Routes field.
func (h *AppServer) InitRegex() {
	route := func(path string) *regexp.Regexp {
		return regexp.MustCompile(h.ServicePrefix + path)
	}
	h.Routes = &StaticRx{
		// Operational
		Favicon:     route("/favicon.ico$"),
		StatsObject: route("/stats$"),
		Ping:        route("/ping$"),
		// Service operations
		// - rule catalog
		Rules: route("/rules$"),
		Rule:  route("/rules/(?P<ruleId>[0-9a-fA-F]{32})$"),
		// - checklists and their checks
		Checklists:      route("/checklists$"),
		Checklist:       route("/checklists/(?P<checklistId>[0-9a-fA-F]{32})$"),
		ChecklistStatus: route("/checklists/(?P<checklistId>[0-9a-fA-F]{32})/status$"),
		ChecklistCounts: route("/checklists/(?P<checklistId>[0-9a-fA-F]{32})/counts$"),
		Check:           route("/checklists/(?P<checklistId>[0-9a-fA-F]{32})/checks/(?P<checkId>[0-9a-fA-F]{32})$"),
	}
}

//When there is a panic, all deferred functions get executed.
func logCrashInServeHTTP(logger *zap.Logger, w http.ResponseWriter) {
	if r := recover(); r != nil {
		logger.Error("server crash", zap.Any("context", r), zap.String("stack", string(debug.Stack())))
		w.WriteHeader(http.StatusInternalServerError)
		//Note: even if follow "let it crash" and explicitly return an error code,
		//we should log this and return a 500 if we plan on doing a system exit on internal 5xx errors.
	}
}

// ServeHTTP handles the routing of requests
func (h AppServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	sessionID := newSessionID()
	w.Header().Add("sessionid", sessionID)

	caller := CallerFromRequest(r)
	logger := config.RootLogger.With(zap.String("session", sessionID))
	defer logCrashInServeHTTP(logger, w)

	// Authentication check GEM
	authGem := globalEventFromRequest(r)
	authGem.Action = "authenticate"
	authGem.Payload.SessionID = sessionID
	authGem.Payload.UserDN = caller.DistinguishedName

	if err := caller.ValidateHeaders(h.AclImpersonationWhitelist, r); err != nil {
		herr := NewAppError(401, err, err.Error())
		h.publishError(authGem, herr)
		sendErrorResponse(logger, &w, 401, err, err.Error())
		return
	}
	authGem.Payload.ActionResult = "SUCCESS"
	h.EventQueue.Publish(authGem)

	// Request GEM routed through
	gem := globalEventFromRequest(r)
	gem.Payload.UserDN = caller.DistinguishedName
	gem.Payload.SessionID = sessionID

	ctx := context.Background()
	ctx = ContextWithLogger(ctx, logger)
	ctx = ContextWithCaller(ctx, caller)
	ctx = ContextWithSession(ctx, sessionID)
	ctx = ContextWithDAO(ctx, h.RootDAO)
	ctx = ContextWithGEM(ctx, gem)

	logger.Info(
		"transaction start",
		zap.String("dn", caller.DistinguishedName),
		zap.String("cn", caller.CommonName),
		zap.String("xdn", caller.ExternalSystemDistinguishedName),
		zap.String("sdn", caller.SSLClientSDistinguishedName),
		zap.String("udn", caller.UserDistinguishedName),
		zap.String("method", r.Method),
		zap.String("uri", r.RequestURI),
	)

	var uri = r.URL.Path
	var herr *AppError

	// CORS support - if it specifies an origin, then reflect back an access control origin
	if reqOrigin := r.Header.Get("Origin"); reqOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", reqOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Vary", "Origin")

	// The following routes can be handled without calls to the database
	withoutDatabase := false
	switch r.Method {
	case "OPTIONS":
		// Handle the pre-flight request here
		herr = h.cors(ctx, w, r)
		withoutDatabase = true
	case "GET":
		switch {
		case h.Routes.Favicon.MatchString(uri):
			herr = h.favicon(ctx, w, r)
			withoutDatabase = true
		case h.Routes.StatsObject.MatchString(uri):
			herr = h.getStats(ctx, w, r)
			withoutDatabase = true
		// - basic HTTP 200 health check
		case h.Routes.Ping.MatchString(uri):
			herr = h.ping(ctx, w, r)
			withoutDatabase = true
		}
	}
	if withoutDatabase {
		if herr != nil {
			sendAppErrorResponse(logger, &w, herr)
		} else {
			countOKResponse(logger)
		}
		return
	}

	switch r.Method {
	case "GET":
		switch {
		// API
		// - list rules in the catalog
		case h.Routes.Rules.MatchString(uri):
			herr = h.listRules(ctx, w, r)
		// - get rule properties
		case h.Routes.Rule.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Rule)
			herr = h.getRule(ctx, w, r)
		// - list checklists
		case h.Routes.Checklists.MatchString(uri):
			herr = h.listChecklists(ctx, w, r)
		// - derived status tallies for a checklist
		case h.Routes.ChecklistCounts.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.ChecklistCounts)
			herr = h.getStatusCounts(ctx, w, r)
		// - get checklist with its checks
		case h.Routes.Checklist.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Checklist)
			herr = h.getChecklist(ctx, w, r)
		default:
			herr = do404(ctx, w, r)
			h.publishError(gem, herr)
		}

	case "POST":
		switch {
		// - add a rule to the catalog
		case h.Routes.Rules.MatchString(uri):
			herr = h.createRule(ctx, w, r)
		// - create a checklist from current active rules
		case h.Routes.Checklists.MatchString(uri):
			herr = h.createChecklist(ctx, w, r)
		default:
			herr = do404(ctx, w, r)
			h.publishError(gem, herr)
		}

	case "PUT":
		switch {
		// - update rule properties
		case h.Routes.Rule.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Rule)
			herr = h.updateRule(ctx, w, r)
		// - checklist lifecycle transition
		case h.Routes.ChecklistStatus.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.ChecklistStatus)
			herr = h.updateChecklistStatus(ctx, w, r)
		// - record an inspection result on a check
		case h.Routes.Check.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Check)
			herr = h.updateCheck(ctx, w, r)
		default:
			herr = do404(ctx, w, r)
			h.publishError(gem, herr)
		}

	case "DELETE":
		switch {
		// - delete a rule, or deactivate it when referenced
		case h.Routes.Rule.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Rule)
			herr = h.deleteRule(ctx, w, r)
		default:
			herr = do404(ctx, w, r)
			h.publishError(gem, herr)
		}
	default:
		herr = do404(ctx, w, r)
		h.publishError(gem, herr)
	}

	if herr != nil {
		sendAppErrorResponse(logger, &w, herr)
	} else {
		countOKResponse(logger)
	}
}

func (h *AppServer) publishError(gem events.GEM, herr *AppError) {
	gem.Payload.ActionResult = "FAILURE"
	gem.Payload.Messages = append(gem.Payload.Messages, strconv.Itoa(herr.Code))
	if herr.Error != nil {
		errMsg := herr.Error.Error()
		if len(errMsg) > 0 {
			gem.Payload.Messages = append(gem.Payload.Messages, errMsg)
		}
	}
	if len(herr.Msg) > 0 {
		gem.Payload.Messages = append(gem.Payload.Messages, herr.Msg)
	}
	h.EventQueue.Publish(gem)
}
func (h *AppServer) publishSuccess(gem events.GEM, w http.ResponseWriter) {
	gem.Payload.ActionResult = "SUCCESS"
	status := w.Header().Get("Status")
	if len(status) == 0 {
		status = "200"
	}
	gem.Payload.Messages = append(gem.Payload.Messages, status)
	h.EventQueue.Publish(gem)
}

func newSessionID() string {
	return config.RandomID()
}

// newGUID is a helper that ignores the error from util.NewGUID. If that function ever returns
// an error, something is seriously wrong with underlying hardware.
func newGUID() string {
	guid, err := util.NewGUID()
	if err != nil {
		log.Printf("could not create GUID: %s", err.Error())
	}
	return guid
}

// ContextWithSession puts the sessionID on the context, used for log correlation
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionID, sessionID)
}

// ContextWithCaller returns a new Context object with a Caller value set. The const CallerVal acts
// as the key that maps to the caller value.
func ContextWithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, CallerVal, caller)
}

// ContextWithGEM attaches a GEM to the context object.
func ContextWithGEM(ctx context.Context, gem events.GEM) context.Context {
	return context.WithValue(ctx, GEMVal, gem)
}

// ContextWithDAO puts the DAO on the context bound with a logger, so that SQL can be correlated
func ContextWithDAO(ctx context.Context, d dao.DAO) context.Context {
	return context.WithValue(ctx, DAO, d)
}

// DAOFromContext returns the DAO associated with the context
func DAOFromContext(ctx context.Context) dao.DAO {
	d, ok := ctx.Value(DAO).(dao.DAO)
	if !ok {
		//Should be *completely* impossible as setting these up are preconditions setup in an obvious location
		LoggerFromContext(ctx).Error("cannot get dao from context")
	}
	return d
}

// CallerFromContext extracts a Caller from a context, if set.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	// ctx.Value returns nil if ctx has no value for the key
	// the Caller type assertion returns ok=false for nil.
	caller, ok := ctx.Value(CallerVal).(Caller)
	return caller, ok
}

// GEMFromContext extracts a GEM from a context, if set.
func GEMFromContext(ctx context.Context) (events.GEM, bool) {
	gem, ok := ctx.Value(GEMVal).(events.GEM)
	return gem, ok
}

// ContextWithLogger puts the logger on the context
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, Logger, logger)
}

// SessionIDFromContext extracts the session id from the context
func SessionIDFromContext(ctx context.Context) string {
	sessionID, ok := ctx.Value(SessionID).(string)
	if !ok {
		return "unknown"
	}
	return sessionID
}

// LoggerFromContext gets a zap logger from our context
func LoggerFromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(Logger).(*zap.Logger)
	if !ok {
		log.Print("!!! Any ctx object you get should have a logger set on it")
		return config.RootLogger
	}
	return logger
}

func parseCaptureGroups(ctx context.Context, path string, regex *regexp.Regexp) context.Context {
	captured := util.GetRegexCaptureGroups(path, regex)
	return context.WithValue(ctx, CaptureGroupsVal, captured)
}

// CaptureGroupsFromContext extracts the capture groups from a context, if set
func CaptureGroupsFromContext(ctx context.Context) (map[string]string, bool) {
	captured, ok := ctx.Value(CaptureGroupsVal).(map[string]string)
	return captured, ok
}

func do404(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	// Get caller value from ctx.
	caller, ok := CallerFromContext(ctx)
	if !ok {
		caller = Caller{DistinguishedName: "UnknownUser"}
	}
	uri := r.URL.Path
	msg := caller.DistinguishedName + " from address " + r.RemoteAddr + " using " + r.UserAgent() + " unhandled operation " + r.Method + " " + uri
	return NewAppError(404, nil, fmt.Sprintf("Resource not found %s", msg))
}

// jsonResponse writes a response, and should be called for all HTTP handlers that return JSON.
func jsonResponse(w http.ResponseWriter, i interface{}) {
	w.Header().Set("Content-Type", "application/json")
	jsonData, _ := json.MarshalIndent(i, "", "  ")
	w.Write(jsonData)
}

// StaticRx statically references compiled regular expressions.
type StaticRx struct {
	Favicon         *regexp.Regexp
	StatsObject     *regexp.Regexp
	Ping            *regexp.Regexp
	Rules           *regexp.Regexp
	Rule            *regexp.Regexp
	Checklists      *regexp.Regexp
	Checklist       *regexp.Regexp
	ChecklistStatus *regexp.Regexp
	ChecklistCounts *regexp.Regexp
	Check           *regexp.Regexp
}
