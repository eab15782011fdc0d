package database

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE codes raised by Postgres.
const (
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeUndefinedTable      pq.ErrorCode = "42P01"
)

// IsForeignKeyViolation reports whether err is a dangling reference rejected by the store.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// IsUniqueViolation reports whether err is a primary or unique key collision.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsUndefinedTable reports whether err references a relation that does not exist.
func IsUndefinedTable(err error) bool {
	return hasCode(err, codeUndefinedTable)
}

// Constraint returns the violated constraint name, if the driver reported one.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
