package protocol

// CheckUpdateResponse is returned after recording a verification outcome. It
// carries the stored check together with the owning checklist's pending count
// so clients can surface activation readiness without a second request.
type CheckUpdateResponse struct {
	// Check is the verification record as stored.
	Check Check `json:"check"`
	// PendingCount is the number of checks still pending in the owning
	// checklist.
	PendingCount int `json:"pendingCount"`
	// ReadyForActivation indicates the owning checklist is a draft with no
	// pending checks remaining.
	ReadyForActivation bool `json:"readyForActivation"`
}
