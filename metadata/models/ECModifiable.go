package models

import "time"

/*
ECModifiable is a nestable structure defining the attributes tracked for
EnerCheck elements that may be modified
*/
type ECModifiable struct {
	ModifiedDate time.Time `db:"modifiedDate"`
	ModifiedBy   string    `db:"modifiedBy"`
}
