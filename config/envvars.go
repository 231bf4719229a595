package config

import (
	"fmt"
	"os"
	"text/template"
)

// Environment variables
const (
	EC_DB_CA                         = "EC_DB_CA"
	EC_DB_CERT                       = "EC_DB_CERT"
	EC_DB_CONN_PARAMS                = "EC_DB_CONN_PARAMS"
	EC_DB_CONNMAXLIFETIME            = "EC_DB_CONNMAXLIFETIME"
	EC_DB_DEADLOCK_RETRYCOUNTER      = "EC_DB_DEADLOCK_RETRYCOUNTER"
	EC_DB_DEADLOCK_RETRYDELAYMS      = "EC_DB_DEADLOCK_RETRYDELAYMS"
	EC_DB_HOST                       = "EC_DB_HOST"
	EC_DB_KEY                        = "EC_DB_KEY"
	EC_DB_MAXIDLECONNS               = "EC_DB_MAXIDLECONNS"
	EC_DB_MAXOPENCONNS               = "EC_DB_MAXOPENCONNS"
	EC_DB_PASSWORD                   = "EC_DB_PASSWORD"
	EC_DB_PORT                       = "EC_DB_PORT"
	EC_DB_SCHEMA                     = "EC_DB_SCHEMA"
	EC_DB_USE_TLS                    = "EC_DB_USE_TLS"
	EC_DB_USERNAME                   = "EC_DB_USERNAME"
	EC_EVENT_KAFKA_ADDRS             = "EC_EVENT_KAFKA_ADDRS"
	EC_EVENT_PUBLISH_FAILURE_ACTIONS = "EC_EVENT_PUBLISH_FAILURE_ACTIONS"
	EC_EVENT_PUBLISH_SUCCESS_ACTIONS = "EC_EVENT_PUBLISH_SUCCESS_ACTIONS"
	EC_EVENT_TOPIC                   = "EC_EVENT_TOPIC"
	EC_EVENT_ZK_ADDRS                = "EC_EVENT_ZK_ADDRS"
	EC_LOG_LEVEL                     = "EC_LOG_LEVEL"
	EC_LOG_LOCATION                  = "EC_LOG_LOCATION"
	EC_LOG_MODE                      = "EC_LOG_MODE"
	EC_SERVER_ACL_WHITELIST          = "EC_SERVER_ACL_WHITELIST"
	EC_SERVER_BASEPATH               = "EC_SERVER_BASEPATH"
	EC_SERVER_BINDADDRESS            = "EC_SERVER_BINDADDRESS"
	EC_SERVER_CA                     = "EC_SERVER_CA"
	EC_SERVER_CERT                   = "EC_SERVER_CERT"
	EC_SERVER_CIPHERS                = "EC_SERVER_CIPHERS"
	EC_SERVER_KEY                    = "EC_SERVER_KEY"
	EC_SERVER_PORT                   = "EC_SERVER_PORT"
	EC_SERVER_TIMEOUT_IDLE           = "EC_SERVER_TIMEOUT_IDLE"
	EC_SERVER_TIMEOUT_READ           = "EC_SERVER_TIMEOUT_READ"
	EC_SERVER_TIMEOUT_READHEADER     = "EC_SERVER_TIMEOUT_READHEADER"
	EC_SERVER_TIMEOUT_WRITE          = "EC_SERVER_TIMEOUT_WRITE"
	EC_ZK_ANNOUNCE                   = "EC_ZK_ANNOUNCE"
	EC_ZK_MYIP                       = "EC_ZK_MYIP"
	EC_ZK_MYPORT                     = "EC_ZK_MYPORT"
	EC_ZK_RECHECK_TIME               = "EC_ZK_RECHECK_TIME"
	EC_ZK_RETRYDELAY                 = "EC_ZK_RETRYDELAY"
	EC_ZK_TIMEOUT                    = "EC_ZK_TIMEOUT"
	EC_ZK_URL                        = "EC_ZK_URL"
)

// Vars must contain every const. We should be able to use the values in this slice
// to inspect all the config in the current environment provided by env vars.
var Vars = []string{
	EC_DB_CA,
	EC_DB_CERT,
	EC_DB_CONN_PARAMS,
	EC_DB_CONNMAXLIFETIME,
	EC_DB_DEADLOCK_RETRYCOUNTER,
	EC_DB_DEADLOCK_RETRYDELAYMS,
	EC_DB_HOST,
	EC_DB_KEY,
	EC_DB_MAXIDLECONNS,
	EC_DB_MAXOPENCONNS,
	EC_DB_PASSWORD,
	EC_DB_PORT,
	EC_DB_SCHEMA,
	EC_DB_USE_TLS,
	EC_DB_USERNAME,
	EC_EVENT_KAFKA_ADDRS,
	EC_EVENT_PUBLISH_FAILURE_ACTIONS,
	EC_EVENT_PUBLISH_SUCCESS_ACTIONS,
	EC_EVENT_TOPIC,
	EC_EVENT_ZK_ADDRS,
	EC_LOG_LEVEL,
	EC_LOG_LOCATION,
	EC_LOG_MODE,
	EC_SERVER_ACL_WHITELIST,
	EC_SERVER_BASEPATH,
	EC_SERVER_BINDADDRESS,
	EC_SERVER_CA,
	EC_SERVER_CERT,
	EC_SERVER_CIPHERS,
	EC_SERVER_KEY,
	EC_SERVER_PORT,
	EC_SERVER_TIMEOUT_IDLE,
	EC_SERVER_TIMEOUT_READ,
	EC_SERVER_TIMEOUT_READHEADER,
	EC_SERVER_TIMEOUT_WRITE,
	EC_ZK_ANNOUNCE,
	EC_ZK_MYIP,
	EC_ZK_MYPORT,
	EC_ZK_RECHECK_TIME,
	EC_ZK_RETRYDELAY,
	EC_ZK_TIMEOUT,
	EC_ZK_URL,
}

// PrintECEnvironment prints the content of all environment variables required
// by enercheck. Sensitive values are redacted
func PrintECEnvironment() {
	var filtered = []string{
		EC_DB_PASSWORD,
	}
	redact := func(envVar, value string) string {
		for _, restricted := range filtered {
			if envVar == restricted {
				return "<redacted>"
			}
		}
		return value
	}
	fmt.Println("enercheck environment variables. Number of vars:", len(Vars))
	for _, variable := range Vars {
		fmt.Printf("%s=%s\n", variable, redact(variable, os.Getenv(variable)))
	}
}

// GenerateStartScript creates a bash script that can be used
// as a template with all the variables exported and then running
// the enercheck binary with redirected output for logging
func GenerateStartScript() {
	tmpl, err := template.New("script").Parse(`#!/bin/bash

{{ range $i, $v := .Variables }}export {{ $v }}=
{{ end }}

# enercheck must be on your PATH
enercheck --conf /opt/services/enercheck/enercheck.yml &>> /opt/services/enercheck/log/enercheck.log 2>&1&

`)
	exitOnErr(err)
	data := struct{ Variables []string }{Variables: Vars}
	tmpl.Execute(os.Stdout, data)
}

// GenerateSourceEnvScript creates a bash script that can be used
// as a template with all the variables exported.
func GenerateSourceEnvScript() {
	tmpl, err := template.New("script").Parse(`#!/bin/bash

#
# Source this file to establish an environment for the enercheck service.
#

{{ range $i, $v := .Variables }}export {{ $v }}=
{{ end }}

`)
	exitOnErr(err)
	data := struct{ Variables []string }{Variables: Vars}
	tmpl.Execute(os.Stdout, data)
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
