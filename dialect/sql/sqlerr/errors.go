// Package sqlerr classifies errors returned by the supported SQL drivers.
package sqlerr

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Kind is the class of a constraint violation.
type Kind int

// Constraint violation kinds.
const (
	None Kind = iota
	Unique
	ForeignKey
	Check
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case ForeignKey:
		return "foreign key"
	case Check:
		return "check"
	default:
		return "none"
	}
}

// PostgreSQL SQLSTATE codes for constraint violations (class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// Classify returns the constraint kind that caused err, or None.
func Classify(err error) Kind {
	if err == nil {
		return None
	}
	if code, ok := sqlState(err); ok {
		switch code {
		case pgUniqueViolation:
			return Unique
		case pgForeignKeyViolation:
			return ForeignKey
		case pgCheckViolation:
			return Check
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return Unique
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return ForeignKey
		case mysqlCheckConstraintViolate:
			return Check
		}
	}
	// SQLite drivers expose no stable typed error, match on messages.
	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed", "violates unique constraint", "Error 1062"):
		return Unique
	case containsAny(msg, "FOREIGN KEY constraint failed", "violates foreign key constraint", "Error 1451", "Error 1452"):
		return ForeignKey
	case containsAny(msg, "CHECK constraint failed", "violates check constraint", "Error 3819"):
		return Check
	}
	return None
}

// sqlState extracts the SQLSTATE of a PostgreSQL error from either lib/pq
// or pgx.
func sqlState(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return Classify(err) != None
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	return Classify(err) == Unique
}

// IsForeignKeyConstraintError reports if the error resulted from a foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return Classify(err) == ForeignKey
}

// IsCheckConstraintError reports if the error resulted from a check constraint violation.
func IsCheckConstraintError(err error) bool {
	return Classify(err) == Check
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
