package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NodeID distinguishes this process instance in logs and service
// announcements when several nodes run behind the same address.
var NodeID = newNodeID()

// RootLogger is the base logger for the process. Components derive their own
// loggers from it with additional fields. Level, mode, and output location
// are controlled by EC_LOG_LEVEL, EC_LOG_MODE, and EC_LOG_LOCATION.
var RootLogger = newRootLogger()

// logger carries configuration-time messages emitted by this package.
var logger = RootLogger

func newNodeID() string {
	return RandomID()
}

// RandomID returns 8 random hex characters, used for node identity and for
// correlating the log entries of a session.
func RandomID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("pid%d", os.Getpid())
	}
	return hex.EncodeToString(b)
}

func newRootLogger() *zap.Logger {
	lvl := zapcore.InfoLevel
	if v := os.Getenv(EC_LOG_LEVEL); v != "" {
		if err := lvl.Set(strings.ToLower(v)); err != nil {
			lvl = zapcore.InfoLevel
		}
	}

	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(os.Getenv(EC_LOG_MODE), "console") {
		enc = zapcore.NewConsoleEncoder(encConf)
	} else {
		enc = zapcore.NewJSONEncoder(encConf)
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
	if loc := os.Getenv(EC_LOG_LOCATION); loc != "" {
		if f, err := os.OpenFile(loc, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
			out = zapcore.Lock(f)
		}
	}

	return zap.New(zapcore.NewCore(enc, out, lvl))
}
