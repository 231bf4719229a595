package models

// ECID is a nestable structure defining an ID for EnerCheck elements
type ECID struct {
	// ID is the unique identifier for an item in EnerCheck. It is structured
	// here as a byte array, intended to be used for storing a GUID/UUID.
	ID []byte `db:"id"`
}
