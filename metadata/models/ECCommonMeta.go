package models

// ECCommonMeta is a nestable structure defining the attributes most common for
// EnerCheck elements
type ECCommonMeta struct {
	ECID
	ECCreatable
	ECModifiable
}
