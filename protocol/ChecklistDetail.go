package protocol

// ChecklistDetail is the full retrieval form of a checklist, inlining the
// owned checks alongside the derived status tally. Listings return the
// Checklist form without checks; detail requests return this.
type ChecklistDetail struct {
	Checklist
	// Checks contains every verification record owned by this checklist.
	Checks []Check `json:"checks"`
}
