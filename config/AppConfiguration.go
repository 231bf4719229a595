package config

import (
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/util"
)

var (
	defaultDBDriver = "mysql"
	defaultDBHost   = "metadatadb"
	defaultDBPort   = "3306"
)

var empty []string

// AppConfiguration is a structure that defines the known configuration format
// for this application.
type AppConfiguration struct {
	DatabaseConnection DatabaseConfiguration       `yaml:"database"`
	ServerSettings     ServerSettingsConfiguration `yaml:"server"`
	ZK                 ZKSettings                  `yaml:"zk"`
	EventQueue         EventQueueConfiguration     `yaml:"event_queue"`
}

// CommandLineOpts holds command line options parsed on application start. This
// object is passed to many higher level constructors, so that command line params
// can override certain configurations.
type CommandLineOpts struct {
	// Ciphers is a list of TLS ciphers we are willing to accept.
	Ciphers []string
	// UseTLS specifies whether we will only accept TLS connections.
	UseTLS bool
	// TLSMinimumVersion is the minimum TLS version we accept.
	TLSMinimumVersion string
	// Conf is a path to our YAML configuration file.
	Conf string
	// Whitelist holds ACL whitelist entries passed at the command line.
	Whitelist []string
}

// DatabaseConfiguration is a structure that defines the attributes
// needed for setting up database connection
type DatabaseConfiguration struct {
	// Driver specifies the database driver. Only "mysql" is supported.
	Driver string `yaml:"driver"`
	// Username is the database username.
	Username string `yaml:"username"`
	// Password is the database password. If the configuration is intended
	// to execute DDL, a user with write permissions is required.
	Password string `yaml:"password"`
	// Protocol specifies the network protocol. Only "tcp" is supported.
	Protocol string `yaml:"protocol"`
	// Host is the database hostname.
	Host string `yaml:"host"`
	// Port is the database port. Commonly 3306 for MySQL.
	Port string `yaml:"port"`
	// Schema is the database name to connect to. A single server can host
	// many logical schemas. The compliance engine default is "compliancedb".
	Schema string `yaml:"schema"`
	// Params are custom connection params injected into the DSN. These
	// will vary depending on your server's configuration.
	Params string `yaml:"conn_params"`
	// UseTLS determines whether we connect to the database with TLS. On
	// unless explicitly disabled in the environment.
	UseTLS bool `yaml:"use_tls"`
	// SkipVerify controls whether the hostname of an SSL peer is verified.
	// Kept true for compatibility with certs that lack a SAN for the
	// database host alias.
	SkipVerify bool `yaml:"insecure_skip_verify"`
	// CAPath is the path to a PEM encoded certificate. For connecting to
	// some test databases this might be the only SSL asset required, if
	// 2-way SSL is not enforced.
	CAPath string `yaml:"trust"`
	// ClientCert is the path to our PEM encoded client certificate.
	ClientCert string `yaml:"cert"`
	// ClientKey is the path to our PEM encoded client key.
	ClientKey string `yaml:"key"`
	// DeadlockRetryCounter is the number of times to retry statements in a
	// transaction that are failing due to a deadlock
	DeadlockRetryCounter int64 `yaml:"deadlock_retrycounter"`
	// DeadlockRetryDelay is the time to wait in milliseconds before retrying
	// a statement in a transaction that is failing due to a deadlock
	DeadlockRetryDelay int64 `yaml:"deadlock_retrydelay"`
}

// EventQueueConfiguration configures publishing to the Kafka event queue.
type EventQueueConfiguration struct {
	// KafkaAddrs is a list of host:port pairs of Kafka brokers. If provided,
	// a direct connection to the brokers is established.
	KafkaAddrs []string `yaml:"kafka_addrs"`
	// ZKAddrs is a list of host:port pairs of ZK nodes. A common
	// architecture is to have a ZK cluster entirely dedicated to Kafka. This
	// config option handles that scenario.
	ZKAddrs []string `yaml:"zk_addrs"`
	// PublishSuccessActions, if provided, specifies the types of success actions
	// to publish to Kafka. If empty, all success actions are published.
	PublishSuccessActions []string `yaml:"publish_success_actions"`
	// PublishFailureActions, if provided, specifies the types of failure actions
	// to publish to Kafka. If empty, all failure actions are published.
	PublishFailureActions []string `yaml:"publish_failure_actions"`
	// Topic denotes the name of the topic to publish events to in Kafka.
	Topic string `yaml:"topic"`
}

// ServerSettingsConfiguration holds the attributes needed for
// setting up an AppServer listener.
type ServerSettingsConfiguration struct {
	// BasePath is the URL prefix the service operations are registered under.
	BasePath string `yaml:"base_path"`
	// ListenPort is the port the server listens on. Default is 4430.
	ListenPort string `yaml:"port"`
	// ListenBind is the address to bind to. Default is 0.0.0.0
	ListenBind string `yaml:"bind"`
	// UseTLS controls whether the server requires TLS. Default is true.
	UseTLS bool `yaml:"use_tls"`
	// CAPath is the path to a PEM encoded certificate of our CA.
	CAPath string `yaml:"trust"`
	// ServerCertChain is the path to our server's PEM encoded cert.
	ServerCertChain string `yaml:"cert"`
	// ServerKey is the path to our server's PEM encoded key.
	ServerKey string `yaml:"key"`
	// RequireClientCert specifies whether clients must present a certificate
	// signed by our CA. Default is true.
	RequireClientCert bool `yaml:"require_client_cert"`
	// CipherSuites specifies the ciphers we will accept. Common values are
	// TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256 and TLS_RSA_WITH_AES_128_CBC_SHA
	CipherSuites []string `yaml:"ciphers"`
	// MinimumVersion is the minimum TLS protocol version we support. Currently TLS 1.2
	MinimumVersion string `yaml:"min_version"`
	// ACLImpersonationWhitelist is a list of Distinguished Names. If a client
	// (usually another machine) is on this list, it may pass us another DN in
	// an HTTP header, and "impersonate" that identity. The common use case
	// is for an edge proxy (such as nginx) to pass through requests from
	// inspectors outside the network. This configuration option must be
	// specified in YAML or on the command line.
	ACLImpersonationWhitelist []string `yaml:"acl_whitelist"`
	// IdleTimeout is the seconds to hold an idle keep-alive connection open.
	IdleTimeout int64 `yaml:"timeout_idle"`
	// ReadTimeout is the seconds allowed for reading an entire request.
	ReadTimeout int64 `yaml:"timeout_read"`
	// ReadHeaderTimeout is the seconds allowed for reading request headers.
	ReadHeaderTimeout int64 `yaml:"timeout_readheader"`
	// WriteTimeout is the seconds allowed for writing a response.
	WriteTimeout int64 `yaml:"timeout_write"`
}

// ZKSettings holds the data required to communicate with default Zookeeper.
type ZKSettings struct {
	// The IP address of our server, as reported to Zookeeper. If configured,
	// we override the value detected as the server's IP address on startup.
	IP string `yaml:"ip"`
	// The Port of our server, announced to Zookeeper.
	Port string `yaml:"port"`
	// Address is the address of the Zookeeper cluster we attempt to connect to.
	Address string `yaml:"address"`
	// Basepath is a Zookeeper path. We register ourselves as an ephemeral
	// node under this path.
	Basepath string `yaml:"register_as"`
	// Timeout configures a timeout for the Zookeeper driver in seconds.
	Timeout int64 `yaml:"timeout"`
	// RetryDelay is the seconds to wait before retrying a failed registration.
	RetryDelay int64 `yaml:"retry_delay"`
	// RecheckTime is the seconds between keepalive checks verifying that our
	// ephemeral announcement still exists.
	RecheckTime int64 `yaml:"recheck_time"`
}

// NewAppConfiguration loads the configuration from the different sources in the environment.
// If multiple configuration sources can be used, the order of precedence is: env var overrides
// config file. When no config file path is given, the configuration comes entirely
// from environment variables and defaults.
func NewAppConfiguration(opts CommandLineOpts) AppConfiguration {

	var confFile AppConfiguration
	if opts.Conf != "" {
		if ok, err := util.PathExists(opts.Conf); !ok || err != nil {
			logger.Error("yaml configuration path is not readable", zap.String("path", opts.Conf), zap.Error(err))
			os.Exit(1)
		}
		var err error
		confFile, err = LoadYAMLConfig(opts.Conf)
		if err != nil {
			logger.Error("error loading yaml configuration", zap.String("path", opts.Conf), zap.Error(err))
			os.Exit(1)
		}
	}

	dbConf := NewDatabaseConfigFromEnv(confFile, opts)
	serverSettings := NewServerSettingsFromEnv(confFile, opts)
	zkSettings := NewZKSettingsFromEnv(confFile, opts)
	if zkSettings.Port == "" {
		zkSettings.Port = serverSettings.ListenPort
	}
	eventQueue := NewEventQueueConfiguration(confFile, opts)

	return AppConfiguration{
		DatabaseConnection: dbConf,
		EventQueue:         eventQueue,
		ServerSettings:     serverSettings,
		ZK:                 zkSettings,
	}
}

// NewCommandLineOpts instantiates CommandLineOpts from a pointer to the parsed command line
// context. The actual parsing is handled by the cli framework.
func NewCommandLineOpts(clictx *cli.Context) CommandLineOpts {
	ciphers := clictx.StringSlice("addCipher")
	useTLS := clictx.BoolT("useTLS")
	// NOTE: cli lib appends to []string that already contains the "default" value. Must trim
	// the default cipher if addCipher is passed at command line.
	if len(ciphers) > 1 {
		ciphers = ciphers[1:]
	}

	// Config file YAML is parsed elsewhere. This is just the path.
	confPath := clictx.String("conf")

	// TLS Minimum Version (Optional. Has a default, but can be made a lower version)
	tlsMinimumVersion := clictx.String("tlsMinimumVersion")

	// Whitelist (Optional. Usually provided via yaml configuration.)
	whitelist := clictx.StringSlice("whitelist")

	return CommandLineOpts{
		Ciphers:           ciphers,
		UseTLS:            useTLS,
		Conf:              confPath,
		TLSMinimumVersion: tlsMinimumVersion,
		Whitelist:         whitelist,
	}
}

// NewDatabaseConfigFromEnv inspects the environment and returns a DatabaseConfiguration.
func NewDatabaseConfigFromEnv(confFile AppConfiguration, opts CommandLineOpts) DatabaseConfiguration {

	var dbConf DatabaseConfiguration

	// From environment
	dbConf.Username = cascade(EC_DB_USERNAME, confFile.DatabaseConnection.Username, "")
	dbConf.Password = cascade(EC_DB_PASSWORD, confFile.DatabaseConnection.Password, "")
	dbConf.Host = cascade(EC_DB_HOST, confFile.DatabaseConnection.Host, "")
	dbConf.Port = cascade(EC_DB_PORT, confFile.DatabaseConnection.Port, "3306")
	dbConf.Schema = cascade(EC_DB_SCHEMA, confFile.DatabaseConnection.Schema, "compliancedb")
	dbConf.CAPath = cascade(EC_DB_CA, confFile.DatabaseConnection.CAPath, "")
	dbConf.ClientCert = cascade(EC_DB_CERT, confFile.DatabaseConnection.ClientCert, "")
	dbConf.ClientKey = cascade(EC_DB_KEY, confFile.DatabaseConnection.ClientKey, "")
	dbConf.Params = cascade(EC_DB_CONN_PARAMS, confFile.DatabaseConnection.Params, "parseTime=true&collation=utf8_unicode_ci&readTimeout=30s")

	// Defaults
	dbConf.Protocol = "tcp"
	dbConf.Driver = defaultDBDriver
	dbConf.UseTLS = CascadeBoolFromString(EC_DB_USE_TLS, "", true)
	dbConf.SkipVerify = true

	// Parameters necessary to handle deadlock situations
	dbConf.DeadlockRetryCounter = cascadeInt(EC_DB_DEADLOCK_RETRYCOUNTER, confFile.DatabaseConnection.DeadlockRetryCounter, 30)
	dbConf.DeadlockRetryDelay = cascadeInt(EC_DB_DEADLOCK_RETRYDELAYMS, confFile.DatabaseConnection.DeadlockRetryDelay, 55)

	return dbConf
}

// NewEventQueueConfiguration reads the environment to provide the configuration for the Kafka event queue.
func NewEventQueueConfiguration(confFile AppConfiguration, opts CommandLineOpts) EventQueueConfiguration {
	var eqc EventQueueConfiguration
	eqc.KafkaAddrs = CascadeStringSlice(EC_EVENT_KAFKA_ADDRS, confFile.EventQueue.KafkaAddrs, empty)
	eqc.ZKAddrs = CascadeStringSlice(EC_EVENT_ZK_ADDRS, confFile.EventQueue.ZKAddrs, empty)
	eqc.PublishSuccessActions = CascadeStringSlice(EC_EVENT_PUBLISH_SUCCESS_ACTIONS, confFile.EventQueue.PublishSuccessActions, []string{"*"})
	eqc.PublishFailureActions = CascadeStringSlice(EC_EVENT_PUBLISH_FAILURE_ACTIONS, confFile.EventQueue.PublishFailureActions, []string{"*"})
	eqc.Topic = cascade(EC_EVENT_TOPIC, confFile.EventQueue.Topic, "enercheck-event")
	return eqc
}

// NewServerSettingsFromEnv inspects the environment and returns a ServerSettingsConfiguration.
func NewServerSettingsFromEnv(confFile AppConfiguration, opts CommandLineOpts) ServerSettingsConfiguration {

	var settings ServerSettingsConfiguration

	// From env
	settings.BasePath = cascade(EC_SERVER_BASEPATH, confFile.ServerSettings.BasePath, "/services/enercheck/1.0")
	settings.ListenPort = cascade(EC_SERVER_PORT, confFile.ServerSettings.ListenPort, "4430")
	settings.ListenBind = cascade(EC_SERVER_BINDADDRESS, confFile.ServerSettings.ListenBind, "0.0.0.0")
	settings.CAPath = cascade(EC_SERVER_CA, confFile.ServerSettings.CAPath, "")
	settings.ServerCertChain = cascade(EC_SERVER_CERT, confFile.ServerSettings.ServerCertChain, "")
	settings.ServerKey = cascade(EC_SERVER_KEY, confFile.ServerSettings.ServerKey, "")

	// Use environment, configuration file, or cli options (includes a default) for the Cipher Suites (whichever has values first is used)
	settings.CipherSuites = selectNonEmptyStringSlice(CascadeStringSlice(EC_SERVER_CIPHERS, confFile.ServerSettings.CipherSuites, opts.Ciphers))

	// Use cli options, environment, or configuration file for the ACL whitelist (whichever has values first is used)
	settings.ACLImpersonationWhitelist = selectNonEmptyStringSlice(opts.Whitelist, getEnvSliceFromPrefix(EC_SERVER_ACL_WHITELIST), confFile.ServerSettings.ACLImpersonationWhitelist)

	// Timeouts on the listener, in seconds
	settings.IdleTimeout = cascadeInt(EC_SERVER_TIMEOUT_IDLE, confFile.ServerSettings.IdleTimeout, 60)
	settings.ReadTimeout = cascadeInt(EC_SERVER_TIMEOUT_READ, confFile.ServerSettings.ReadTimeout, 60)
	settings.ReadHeaderTimeout = cascadeInt(EC_SERVER_TIMEOUT_READHEADER, confFile.ServerSettings.ReadHeaderTimeout, 5)
	settings.WriteTimeout = cascadeInt(EC_SERVER_TIMEOUT_WRITE, confFile.ServerSettings.WriteTimeout, 60)

	// Defaults
	settings.UseTLS = opts.UseTLS
	settings.RequireClientCert = true
	settings.MinimumVersion = opts.TLSMinimumVersion

	return settings
}

// NewZKSettingsFromEnv inspects the environment and returns a ZKSettings.
func NewZKSettingsFromEnv(confFile AppConfiguration, opts CommandLineOpts) ZKSettings {

	var conf ZKSettings
	conf.Address = cascade(EC_ZK_URL, confFile.ZK.Address, "zk:2181")
	conf.Basepath = cascade(EC_ZK_ANNOUNCE, confFile.ZK.Basepath, "/services/enercheck/1.0")
	conf.IP = cascade(EC_ZK_MYIP, confFile.ZK.IP, util.GetIP(logger))
	conf.Port = cascade(EC_ZK_MYPORT, confFile.ZK.Port, "")
	conf.Timeout = cascadeInt(EC_ZK_TIMEOUT, confFile.ZK.Timeout, 5)
	conf.RetryDelay = cascadeInt(EC_ZK_RETRYDELAY, confFile.ZK.RetryDelay, 15)
	conf.RecheckTime = cascadeInt(EC_ZK_RECHECK_TIME, confFile.ZK.RecheckTime, 30)

	return conf
}

// GetDatabaseHandle initializes database connection using the configuration
func (r *DatabaseConfiguration) GetDatabaseHandle() (*sqlx.DB, error) {
	// Establish configuration settings for Database Connection using
	// the TLS settings in config file
	if r.UseTLS {
		dbTLS := r.buildTLSConfig()
		switch r.Driver {
		case defaultDBDriver:
			mysql.RegisterTLSConfig("custom", &dbTLS)
		default:
			panic("Driver not supported")
		}
	}
	// Setup handle to the database
	db, err := sqlx.Open(r.Driver, r.buildDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(int(getEnvOrDefaultInt(EC_DB_MAXIDLECONNS, 10)))
	db.SetMaxOpenConns(int(getEnvOrDefaultInt(EC_DB_MAXOPENCONNS, 10)))
	db.SetConnMaxLifetime(time.Duration(getEnvOrDefaultInt(EC_DB_CONNMAXLIFETIME, 30)) * time.Second)
	return db, nil
}

// GetTLSConfig returns the built TLS Configuration object based upon Server
// Settings Configuration
func (r *ServerSettingsConfiguration) GetTLSConfig() tls.Config {
	return r.buildTLSConfig()
}

// buildDSN prepares a Data Source Name (DSN) suitable for mysql using the
// driver and documentation found here: https://github.com/go-sql-driver/mysql.
func (r *DatabaseConfiguration) buildDSN() string {
	var dbDSN = ""
	if len(r.Username) > 0 {
		dbDSN += r.Username
		if len(r.Password) > 0 {
			dbDSN += ":" + r.Password
		}
	}
	if len(dbDSN) > 0 {
		dbDSN += "@"
	}
	if len(r.Protocol) > 0 {
		dbDSN += r.Protocol + "("
		if len(r.Host) > 0 {
			dbDSN += r.Host
		} else {
			// default to the common host alias
			dbDSN += defaultDBHost
		}
		dbDSN += ":"
		if len(r.Port) > 0 {
			dbDSN += r.Port
		} else {
			// default port by database type
			switch r.Driver {
			case defaultDBDriver:
				dbDSN += defaultDBPort
			default:
				panic("Driver not supported")
			}
		}
		dbDSN += ")"
	}
	dbDSN += "/"
	if len(r.Schema) > 0 {
		dbDSN += r.Schema
	}
	if (len(r.Params) > 0) || (r.UseTLS) {
		dbDSN += "?"
		if r.UseTLS {
			dbDSN += "tls=custom"
			if len(r.Params) > 0 {
				dbDSN += "&"
			}
		}
		if len(r.Params) > 0 {
			dbDSN += r.Params
		}
	}
	logDSN := dbDSN
	if len(r.Password) > 0 {
		logDSN = strings.Replace(logDSN, r.Password, "{password}", -1)
	}
	if len(r.Username) > 0 {
		logDSN = strings.Replace(logDSN, r.Username, "{username}", -1)
	}
	logger.Info("Using this connection string", zap.String("dbdsn", logDSN))
	return dbDSN
}

// buildTLSConfig prepares a standard go tls.Config with RootCAs and client
// Certificates for communicating with the database securely.
func (conf *DatabaseConfiguration) buildTLSConfig() tls.Config {

	// The set of root certificate authorities that this client will use when
	// verifying the server certificate indicated as the identity of the
	// server this config will be used to connect to.
	rootCAsCertPool := buildCertPoolFromPath(conf.CAPath, "for client")

	// Client public and private certificate
	if len(conf.ClientCert) == 0 || len(conf.ClientKey) == 0 {
		return tls.Config{
			RootCAs:            rootCAsCertPool,
			ServerName:         conf.Host,
			InsecureSkipVerify: conf.SkipVerify,
		}
	}
	clientCert := buildx509Identity(conf.ClientCert, conf.ClientKey)

	return tls.Config{
		RootCAs:            rootCAsCertPool,
		Certificates:       clientCert,
		ServerName:         conf.Host,
		InsecureSkipVerify: conf.SkipVerify,
	}

}

// buildTLSConfig prepares a standard go tls.Config with trusted CAs and
// server identity certificates to listen for connecting clients
func (r *ServerSettingsConfiguration) buildTLSConfig() tls.Config {
	return buildServerTLSConfig(r.CAPath, r.ServerCertChain, r.ServerKey, r.RequireClientCert, r.CipherSuites, r.MinimumVersion)
}

func cascade(fromEnv, fromFile, defaultVal string) string {
	if envVal := os.Getenv(fromEnv); envVal != "" {
		return envVal
	}
	if fromFile != "" {
		return fromFile
	}
	return defaultVal
}

func cascadeInt(fromEnv string, fromFile, defaultVal int64) int64 {
	if parsed, err := strconv.ParseInt(os.Getenv(fromEnv), 10, 64); err == nil {
		return parsed
	}
	if fromFile != 0 {
		return fromFile
	}
	return defaultVal
}

// CascadeBoolFromString selects a boolean from an env var, a string form in
// the config file, or a default.
func CascadeBoolFromString(fromEnv string, fromFile string, defaultVal bool) bool {
	if parsed, err := strconv.ParseBool(os.Getenv(fromEnv)); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseBool(fromFile); err == nil {
		return parsed
	}
	return defaultVal
}

// CascadeStringSlice will select a configuration slice from a splitted env var,
// the config file, or a default slice.
func CascadeStringSlice(fromEnv string, fromFile, defaultVal []string) []string {

	if splitted := strings.Split(os.Getenv(fromEnv), ","); len(splitted) > 0 {
		if splitted[0] != "" {
			return splitted
		}
	}
	if len(fromFile) > 0 {
		if fromFile[0] != "" {
			return fromFile
		}
	}
	return defaultVal
}

func selectNonEmptyStringSlice(slices ...[]string) []string {
	for _, sl := range slices {
		if len(sl) > 0 {
			return sl
		}
	}
	sl := make([]string, 0)
	return sl
}

func getEnvOrDefaultInt(envVar string, defaultVal int64) int64 {
	if parsed, err := strconv.ParseInt(os.Getenv(envVar), 10, 64); err == nil {
		return parsed
	}
	return defaultVal
}

func getEnvSliceFromPrefix(envVar string) []string {
	sl := make([]string, 0)
	for _, e := range os.Environ() {
		i := strings.Index(e, "=")
		k := e[:i]
		v := e[i+1:]
		if strings.HasPrefix(strings.ToUpper(k), strings.ToUpper(envVar)) && len(v) > 0 {
			sl = append(sl, v)
		}
	}
	return sl
}
