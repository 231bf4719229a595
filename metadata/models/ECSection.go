package models

// ECSection is a row of the read only standards reference data. The engine
// only consults it to validate that a section referenced from a rule exists;
// browsing and search belong to the standards subsystem.
type ECSection struct {
	ECCommonMeta
	// RefCode is the unique section reference (e.g., 1075.3)
	RefCode string `db:"refCode"`
	// Title is the section heading
	Title string `db:"title"`
	// Body is the section text, when loaded
	Body NullString `db:"body"`
}
