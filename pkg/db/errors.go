package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique
// constraint violation. Covers the Postgres and SQLite message shapes; when
// constraintName is provided, the message must also reference it. FK or NOT
// NULL errors that merely mention the constraint name do not qualify.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	unique := strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !unique {
		return false
	}
	if constraintName == "" {
		return true
	}
	return strings.Contains(msg, constraintName)
}
