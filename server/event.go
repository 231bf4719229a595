package server

import (
	"net/http"
	"time"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/events"
	"github.com/enercheck/compliance-server/util"
)

// globalEventFromRequest extracts data from the request and sets up a
// standard set of fields on the global event model.
func globalEventFromRequest(r *http.Request) events.GEM {
	e := events.GEM{
		ID:              newGUID(),
		SchemaVersion:   "1.0",
		EventType:       "enercheck-event",
		SystemIP:        util.GetIP(config.RootLogger),
		XForwardedForIP: r.Header.Get("X-Forwarded-For"),
		Timestamp:       time.Now().Unix(),
		Action:          "unknown",
	}
	if len(r.Header.Get("EXTERNAL_SYS_DN")) > 0 {
		e.OriginatorTokens = append(e.OriginatorTokens, r.Header.Get("EXTERNAL_SYS_DN"))
	}
	if len(r.Header.Get("USER_DN")) > 0 {
		e.OriginatorTokens = append(e.OriginatorTokens, r.Header.Get("USER_DN"))
	}

	return e
}
