package protocol

// UpdateChecklistStatusRequest asks for a lifecycle transition on a
// checklist. Legal moves are draft to active, active to archived, and
// archived to active; activation additionally requires that no check remain
// pending.
type UpdateChecklistStatusRequest struct {
	// Status is the lifecycle state to move to. One of draft, active, archived.
	Status string `json:"status"`
}
