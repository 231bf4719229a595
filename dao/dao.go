package dao

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SchemaVersion marks compatibility with previously created databases.
// On startup, we should be checking the schema, and raise some alarm if
// the schema is out of date, or trigger a migration, etc.
var SchemaVersion = "20250601"

// DAO defines the contract our app has with the database.
type DAO interface {
	CreateChecklist(checklist *models.ECChecklist, ruleIDs [][]byte) (models.ECChecklist, error)
	CreateRule(rule *models.ECRule) (models.ECRule, error)
	DeleteRule(id []byte, actor string) (RuleDeletion, error)
	GetChecklist(id []byte) (models.ECChecklist, error)
	GetDBState() (models.DBState, error)
	GetPendingCount(checklistID []byte) (int, error)
	GetRule(id []byte) (models.ECRule, error)
	GetStatusCounts(checklistID []byte) (models.StatusCounts, error)
	ListChecklists(pagingRequest PagingRequest, filter ChecklistFilter) (models.ECChecklistResultset, error)
	ListRules(pagingRequest PagingRequest, filter RuleFilter) (models.ECRuleResultset, error)
	SectionExists(refCode string) (bool, error)
	UpdateCheck(checklistID []byte, checkID []byte, patch CheckPatch, actor string) (CheckUpdate, error)
	UpdateChecklistStatus(id []byte, newStatus models.ChecklistStatus, actor string) (models.ECChecklist, error)
	UpdateRule(id []byte, patch RulePatch, actor string) (models.ECRule, error)
	GetLogger() *zap.Logger
}

// RuleFilter constrains ListRules. Zero valued fields do not filter, except
// that inactive rules are excluded unless AllRules is set.
type RuleFilter struct {
	SectionRef string
	Severity   models.RuleSeverity
	RuleType   models.RuleType
	AllRules   bool
}

// ChecklistFilter constrains ListChecklists. A zero valued status does not
// filter.
type ChecklistFilter struct {
	Status models.ChecklistStatus
}

// RulePatch carries a partial update for a rule. Nil fields retain the stored
// value. An empty string assigned to a nullable text field clears it.
type RulePatch struct {
	SectionRef         *string
	RuleCode           *string
	Title              *string
	Description        *string
	Severity           *models.RuleSeverity
	RuleType           *models.RuleType
	VerificationMethod *string
	EvaluationCriteria *string
	FailureImpact      *string
	RemediationAdvice  *string
	IsActive           *bool
}

// CheckPatch carries an update for a check. Status is always required on the
// wire. Nil notes or evidence retain the stored value; an empty string clears
// the field.
type CheckPatch struct {
	Status   models.CheckStatus
	Notes    *string
	Evidence *string
}

// CheckUpdate reports the stored check after an update together with the
// owning checklist context needed to surface activation readiness.
// PriorStatus is the status the check held before this update, so callers
// can tell a resolving update apart from an edit to an already settled one.
type CheckUpdate struct {
	Check              models.ECCheck
	PriorStatus        models.CheckStatus
	ChecklistStatus    models.ChecklistStatus
	PendingCount       int
	ReadyForActivation bool
}

// RuleDeletion reports which action the deactivation guard took for a rule.
// When Deleted is set the row is gone; when Deactivated is set the rule
// remains retrievable with IsActive false.
type RuleDeletion struct {
	Rule        models.ECRule
	Deleted     bool
	Deactivated bool
}

// DataAccessLayer is a concrete DAO implementation with a true DB connection.
type DataAccessLayer struct {
	// MetadataDB is the connection.
	MetadataDB *sqlx.DB
	// Logger has a default, but can be updated by passing options to constructor.
	Logger *zap.Logger
	// DeadlockRetryCounter is the number of times a transaction failing from
	// deadlocks or lock wait timeouts will be retried before giving up.
	DeadlockRetryCounter int64
	// DeadlockRetryDelay is the number of milliseconds to wait between retries.
	DeadlockRetryDelay int64
}

// Opt sets an option on DataAccessLayer.
type Opt func(*DataAccessLayer)

// WithLogger sets a custom logger on DataAccessLayer.
func WithLogger(logger *zap.Logger) Opt {
	return func(d *DataAccessLayer) {
		d.Logger = logger
	}
}

// NewDataAccessLayer constructs a new DataAccessLayer with defaults and options. A string database
// identifier is also returned.
func NewDataAccessLayer(conf config.DatabaseConfiguration, opts ...Opt) (*DataAccessLayer, string, error) {

	db, err := conf.GetDatabaseHandle()
	if err != nil {
		return nil, "", err
	}
	d := DataAccessLayer{MetadataDB: db}

	defaults(&d)
	d.DeadlockRetryCounter = conf.DeadlockRetryCounter
	d.DeadlockRetryDelay = conf.DeadlockRetryDelay
	for _, opt := range opts {
		opt(&d)
	}

	if err := pingDB(&d); err != nil {
		return nil, "", fmt.Errorf("could not ping database: %v", err)
	}

	state, err := d.GetDBState()
	if err != nil {
		return nil, "", fmt.Errorf("getting db state failed: %v", err)
	}
	if state.SchemaVersion != SchemaVersion {
		d.GetLogger().Warn("database schema version does not match code",
			zap.String("databaseVersion", state.SchemaVersion),
			zap.String("codeVersion", SchemaVersion))
	}

	return &d, state.Identifier, nil
}

func defaults(d *DataAccessLayer) {
	d.Logger = config.RootLogger.With(zap.String("node", config.NodeID))
	d.DeadlockRetryCounter = 30
	d.DeadlockRetryDelay = 55
}

// GetLogger is a logger, probably for this session
func (d *DataAccessLayer) GetLogger() *zap.Logger {
	return d.Logger
}

func daoCompileCheck() DAO {
	// function exists to make compiler complain when interface changes.
	return &DataAccessLayer{}
}

func pingDB(d *DataAccessLayer) error {

	logger := d.GetLogger()

	attempts := 0
	max := 20
	sleep := 3

	var err error

	for attempts < max {

		attempts++

		err = d.MetadataDB.Ping()
		if err != nil {
			logger.Info("db sleep for retry")
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}
		if _, err = d.GetDBState(); err != nil {
			logger.Info("db available but schema not populated")
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}
		break
	}
	return err
}

// retryOnErrorMessageContains are the transient MySQL failures worth
// restarting a transaction for. Duplicate key failures are terminal for this
// schema and map to conflicts instead.
var retryOnErrorMessageContains = []string{"Deadlock", "Lock wait timeout exceeded"}

// newID generates a fresh 16 byte identifier for a row
func newID() ([]byte, error) {
	guid, err := util.NewGUID()
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(guid)
}
