package dao

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// Kind classifies a domain error so callers can map it to a stable response
// category instead of a generic failure.
type Kind int

// The error kinds returned by DAO operations. Anything that is not one of the
// three domain kinds is a storage failure.
const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

// Error is a typed domain error with a kind, a caller readable message, and
// an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the cause for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError describes malformed or missing caller input
func NewValidationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NewNotFoundError describes a reference to a row that does not exist
func NewNotFoundError(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// NewConflictError describes a uniqueness violation or a structurally legal
// but currently disallowed state change
func NewConflictError(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// NewStorageError wraps an infrastructure failure from the database layer
func NewStorageError(err error, msg string) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindStorage, false
}

// IsValidation reports whether err is a domain validation error
func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

// IsNotFound reports whether err is a domain not found error
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

// IsConflict reports whether err is a domain conflict error
func IsConflict(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConflict
}

// asDomainOrStorage passes typed domain errors through untouched and wraps
// anything else as a storage failure, keeping infrastructure causes distinct
// from the domain kinds.
func asDomainOrStorage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return NewStorageError(err, "storage failure")
}

// isDuplicateEntry reports whether err is the MySQL duplicate key error. The
// unique key on the table is the authoritative uniqueness guard; in
// transaction pre-checks are a fast path only.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
