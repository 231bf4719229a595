package dao_test

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/dao"
)

var db *sqlx.DB
var d *dao.DataAccessLayer

// newAppConfigurationWithDefaults provides some defaults to the constructor
// function for AppConfiguration. Normally these parameters are specified
// on the command line.
func newAppConfigurationWithDefaults() config.AppConfiguration {
	whitelist := []string{"cn=edge-proxy-01,ou=gateways,o=enercheck,c=us"}
	opts := config.CommandLineOpts{
		Ciphers:           []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"},
		Conf:              filepath.Join("testfixtures", "testconf.yml"),
		TLSMinimumVersion: "1.2",
	}
	conf := config.NewAppConfiguration(opts)
	conf.ServerSettings.ACLImpersonationWhitelist = whitelist
	return conf
}

func init() {
	appConfiguration := newAppConfigurationWithDefaults()
	dbConfig := appConfiguration.DatabaseConnection

	// DAO tests hit a locally-running database directly. Local test databases
	// commonly run without TLS; EC_DB_USE_TLS can force it back on.
	if os.Getenv(config.EC_DB_USE_TLS) == "" {
		dbConfig.UseTLS = false
	}

	var err error
	db, err = dbConfig.GetDatabaseHandle()
	if err != nil {
		log.Printf("DAO tests will skip: cannot open metadata database: %v", err)
		return
	}
	if err = db.Ping(); err != nil {
		log.Printf("DAO tests will skip: metadata database not reachable: %v", err)
		db = nil
		return
	}

	d = &dao.DataAccessLayer{MetadataDB: db, Logger: config.RootLogger, DeadlockRetryCounter: 30, DeadlockRetryDelay: 55}
}

// skipIfNoDB marks database-backed tests as skipped in short mode or when no
// metadata database answered at startup.
func skipIfNoDB(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	if d == nil {
		t.Skip("metadata database is not reachable")
	}
}
