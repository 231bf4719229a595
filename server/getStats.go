package server

import (
	"context"
	"fmt"
	"net/http"

	metrics "github.com/rcrowley/go-metrics"
)

// getStats renders a plain text operational summary. The deferred timers the
// data layer registers per operation are dumped after the error counters.
func (h AppServer) getStats(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	renderErrorCounters(w)

	fmt.Fprintf(w, "\nOperation timings:\n")
	metrics.WriteOnce(metrics.DefaultRegistry, w)

	return nil
}

// writeCounters lets us write the counters out to stats
func renderErrorCounters(w http.ResponseWriter) {
	doWriteCounters(w)
}

// Write the counters out.  Make sure we are in the thread of the datastructure when we do this
func doWriteCounters(w http.ResponseWriter) {

	//Count the total number of events per endpoint, and report for each line
	totalQueries := int64(0)
	totalErrors := int64(0)
	var lines = make([]string, 0)

	//We are under the lock, so don't do IO in here yet.
	mutex.Lock()
	for _, v := range counters {
		totalQueries += v
	}
	for k, v := range counters {
		//Unless it's 400 or greater, it's not an error.
		if k.Code >= 400 {
			lines = append(
				lines,
				fmt.Sprintf("%d\t%d\t%s:%d", v, k.Code, k.File, k.Line),
			)
			totalErrors += v
		}
	}
	mutex.Unlock()

	//Do io outside the mutex!
	if len(lines) == 0 {
		fmt.Fprintf(w, "Errors: none\n")
	} else {
		fmt.Fprintf(w, "Errors: %d in %d queries\n", totalErrors, totalQueries)
		fmt.Fprintf(w, "count\tcode\tfile:line\n")
		for i := range lines {
			fmt.Fprintf(w, "%s\n", lines[i])
		}
	}
}
