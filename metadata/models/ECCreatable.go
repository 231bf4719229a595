package models

import "time"

/*
ECCreatable is a nestable structure defining the attributes tracked for
EnerCheck elements that may be created
*/
type ECCreatable struct {
	CreatedDate time.Time `db:"createdDate"`
	CreatedBy   string    `db:"createdBy"`
}
