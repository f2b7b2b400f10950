package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint or unique index.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraintName
}

// IsUniqueViolation reports any unique violation, whatever the constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Codes raised by PostgreSQL when a value does not fit its column.
const (
	stringDataRightTruncation = "22001"
	numericValueOutOfRange    = "22003"
	invalidDatetimeFormat     = "22007"
	datetimeFieldOverflow     = "22008"
	invalidTextRepresentation = "22P02"
	checkViolation            = "23514"
)

// IsInvalidInput reports errors caused by the submitted values rather than
// by the server: data exceptions (class 22) and check violations.
func IsInvalidInput(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case stringDataRightTruncation, numericValueOutOfRange, invalidDatetimeFormat,
		datetimeFieldOverflow, invalidTextRepresentation, checkViolation:
		return true
	}
	return len(pgErr.Code) == 5 && pgErr.Code[:2] == "22"
}
