package protocol

// UpdateCheckRequest records a verification outcome for a check. Status is
// required. Notes and evidence merge with the stored record: omitted fields
// retain their values and empty strings clear them.
type UpdateCheckRequest struct {
	// Status is the verification state to record. One of pending, passed,
	// failed, not_applicable.
	Status string `json:"status"`
	// Notes holds auditor remarks.
	Notes *string `json:"notes,omitempty"`
	// Evidence references supporting material recorded by the auditor.
	Evidence *string `json:"evidence,omitempty"`
}
