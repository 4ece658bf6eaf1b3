package rowmap

import (
	"errors"
	"fmt"

	"github.com/syssam/rowmap/dialect/sql/sqlerr"
)

// Standard sentinel errors. Every typed error below matches its sentinel
// through errors.Is.
var (
	// ErrSchemaConfig is returned when an entity descriptor is invalid.
	ErrSchemaConfig = errors.New("rowmap: invalid schema configuration")

	// ErrMissingPrimaryKey is returned when a primary key value is absent
	// or, for numeric keys, not strictly positive.
	ErrMissingPrimaryKey = errors.New("rowmap: missing primary key")

	// ErrAmbiguousResult is returned when more than one row matched where
	// at most one was expected.
	ErrAmbiguousResult = errors.New("rowmap: ambiguous result")

	// ErrUnexpectedMultiRowEffect is returned when an update or delete
	// by primary key touched more than one row.
	ErrUnexpectedMultiRowEffect = errors.New("rowmap: statement affected more than one row")

	// ErrEmptyEntity is returned when no column is eligible for a statement.
	ErrEmptyEntity = errors.New("rowmap: nothing to persist")

	// ErrMalformedQuery is returned when a built statement cannot be rendered.
	ErrMalformedQuery = errors.New("rowmap: malformed query")

	// ErrStorage matches any failure reported by the underlying store.
	ErrStorage = errors.New("rowmap: storage failure")
)

// SchemaConfigError describes an invalid entity descriptor.
type SchemaConfigError struct {
	Entity string
	Msg    string
}

// Error returns the error string.
func (e *SchemaConfigError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("rowmap: schema %s: %s", e.Entity, e.Msg)
	}
	return fmt.Sprintf("rowmap: schema: %s", e.Msg)
}

// Is reports whether the target error matches ErrSchemaConfig.
func (e *SchemaConfigError) Is(err error) bool {
	return err == ErrSchemaConfig
}

// NewSchemaConfigError returns a new SchemaConfigError.
func NewSchemaConfigError(entity, format string, args ...any) *SchemaConfigError {
	return &SchemaConfigError{Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// IsSchemaConfigError returns true if the error is a SchemaConfigError.
func IsSchemaConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaConfigError
	return errors.As(err, &e) || errors.Is(err, ErrSchemaConfig)
}

// MissingPrimaryKeyError reports the first primary key field that had
// no usable value.
type MissingPrimaryKeyError struct {
	Entity string
	Field  string
	Value  any
}

// Error returns the error string.
func (e *MissingPrimaryKeyError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("rowmap: %s: primary key %q is not positive (%v)", e.Entity, e.Field, e.Value)
	}
	return fmt.Sprintf("rowmap: %s: primary key %q is not set", e.Entity, e.Field)
}

// Is reports whether the target error matches ErrMissingPrimaryKey.
func (e *MissingPrimaryKeyError) Is(err error) bool {
	return err == ErrMissingPrimaryKey
}

// NewMissingPrimaryKeyError returns a new MissingPrimaryKeyError.
func NewMissingPrimaryKeyError(entity, field string, value any) *MissingPrimaryKeyError {
	return &MissingPrimaryKeyError{Entity: entity, Field: field, Value: value}
}

// IsMissingPrimaryKey returns true if the error is a MissingPrimaryKeyError.
func IsMissingPrimaryKey(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingPrimaryKeyError
	return errors.As(err, &e) || errors.Is(err, ErrMissingPrimaryKey)
}

// AmbiguousResultError is returned when a lookup that allows at most
// one row received more.
type AmbiguousResultError struct {
	Entity string
	Count  int // -1 if unknown
}

// Error returns the error string.
func (e *AmbiguousResultError) Error() string {
	if e.Count >= 0 {
		return fmt.Sprintf("rowmap: %s: ambiguous result (got %d rows, expected at most 1)", e.Entity, e.Count)
	}
	return fmt.Sprintf("rowmap: %s: ambiguous result", e.Entity)
}

// Is reports whether the target error matches ErrAmbiguousResult.
func (e *AmbiguousResultError) Is(err error) bool {
	return err == ErrAmbiguousResult
}

// NewAmbiguousResultError returns a new AmbiguousResultError.
func NewAmbiguousResultError(entity string, count int) *AmbiguousResultError {
	return &AmbiguousResultError{Entity: entity, Count: count}
}

// IsAmbiguousResult returns true if the error is an AmbiguousResultError.
func IsAmbiguousResult(err error) bool {
	if err == nil {
		return false
	}
	var e *AmbiguousResultError
	return errors.As(err, &e) || errors.Is(err, ErrAmbiguousResult)
}

// UnexpectedMultiRowEffectError signals that a statement addressed by
// primary key affected several rows. It is never retried.
type UnexpectedMultiRowEffectError struct {
	Entity string
	Op     string
	Rows   int64
}

// Error returns the error string.
func (e *UnexpectedMultiRowEffectError) Error() string {
	return fmt.Sprintf("rowmap: %s %s affected %d rows, expected at most 1", e.Op, e.Entity, e.Rows)
}

// Is reports whether the target error matches ErrUnexpectedMultiRowEffect.
func (e *UnexpectedMultiRowEffectError) Is(err error) bool {
	return err == ErrUnexpectedMultiRowEffect
}

// NewUnexpectedMultiRowEffectError returns a new UnexpectedMultiRowEffectError.
func NewUnexpectedMultiRowEffectError(entity, op string, rows int64) *UnexpectedMultiRowEffectError {
	return &UnexpectedMultiRowEffectError{Entity: entity, Op: op, Rows: rows}
}

// IsUnexpectedMultiRowEffect returns true if the error is an UnexpectedMultiRowEffectError.
func IsUnexpectedMultiRowEffect(err error) bool {
	if err == nil {
		return false
	}
	var e *UnexpectedMultiRowEffectError
	return errors.As(err, &e) || errors.Is(err, ErrUnexpectedMultiRowEffect)
}

// EmptyEntityError is returned when an entity has no column eligible
// for the requested statement.
type EmptyEntityError struct {
	Entity string
	Op     string
}

// Error returns the error string.
func (e *EmptyEntityError) Error() string {
	return fmt.Sprintf("rowmap: %s %s: nothing to %s", e.Op, e.Entity, e.Op)
}

// Is reports whether the target error matches ErrEmptyEntity.
func (e *EmptyEntityError) Is(err error) bool {
	return err == ErrEmptyEntity
}

// NewEmptyEntityError returns a new EmptyEntityError.
func NewEmptyEntityError(entity, op string) *EmptyEntityError {
	return &EmptyEntityError{Entity: entity, Op: op}
}

// IsEmptyEntity returns true if the error is an EmptyEntityError.
func IsEmptyEntity(err error) bool {
	if err == nil {
		return false
	}
	var e *EmptyEntityError
	return errors.As(err, &e) || errors.Is(err, ErrEmptyEntity)
}

// MalformedQueryError is returned when a statement cannot be rendered
// or executed as built.
type MalformedQueryError struct {
	Msg string
}

// Error returns the error string.
func (e *MalformedQueryError) Error() string {
	return "rowmap: malformed query: " + e.Msg
}

// Is reports whether the target error matches ErrMalformedQuery.
func (e *MalformedQueryError) Is(err error) bool {
	return err == ErrMalformedQuery
}

// NewMalformedQueryError returns a new MalformedQueryError.
func NewMalformedQueryError(format string, args ...any) *MalformedQueryError {
	return &MalformedQueryError{Msg: fmt.Sprintf(format, args...)}
}

// IsMalformedQuery returns true if the error is a MalformedQueryError.
func IsMalformedQuery(err error) bool {
	if err == nil {
		return false
	}
	var e *MalformedQueryError
	return errors.As(err, &e) || errors.Is(err, ErrMalformedQuery)
}

// StorageError wraps a failure of the relational connection. The driver
// error stays reachable through errors.Unwrap and errors.As.
type StorageError struct {
	Op    string // e.g. "insert", "load", "create table"
	Query string // statement text, if one was issued
	Err   error
}

// Error returns the error string.
func (e *StorageError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("rowmap: %s: %v (query: %s)", e.Op, e.Err, e.Query)
	}
	return fmt.Sprintf("rowmap: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrStorage.
func (e *StorageError) Is(err error) bool {
	return err == ErrStorage
}

// IsUniqueViolation reports whether the store rejected the statement
// because of a unique constraint.
func (e *StorageError) IsUniqueViolation() bool {
	return sqlerr.IsUniqueConstraintError(e.Err)
}

// IsForeignKeyViolation reports whether the store rejected the statement
// because of a foreign key constraint.
func (e *StorageError) IsForeignKeyViolation() bool {
	return sqlerr.IsForeignKeyConstraintError(e.Err)
}

// IsCheckViolation reports whether the store rejected the statement
// because of a check constraint.
func (e *StorageError) IsCheckViolation() bool {
	return sqlerr.IsCheckConstraintError(e.Err)
}

// NewStorageError returns a new StorageError. A nil err yields nil.
func NewStorageError(op, query string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Query: query, Err: err}
}

// IsStorageError returns true if the error is a StorageError.
func IsStorageError(err error) bool {
	if err == nil {
		return false
	}
	var e *StorageError
	return errors.As(err, &e)
}

// IsConstraintError returns true if err is a storage failure caused by any
// constraint violation.
func IsConstraintError(err error) bool {
	var e *StorageError
	if !errors.As(err, &e) {
		return false
	}
	return sqlerr.IsConstraintError(e.Err)
}
