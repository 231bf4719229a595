package models

import "time"

// DBState is the single bookkeeping row describing the database instance
type DBState struct {
	// Date of first schema
	CreatedDate time.Time `db:"createdDate"`
	// Date of last schema change
	ModifiedDate time.Time `db:"modifiedDate"`
	// Code should be using the same schema version as us
	SchemaVersion string `db:"schemaVersion"`
	// A unique id for this database instance
	Identifier string `db:"identifier"`
}
