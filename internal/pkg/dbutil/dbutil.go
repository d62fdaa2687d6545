package dbutil

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Rebind converts gendry's ?-style placeholders to the $N form postgres
// expects.
func Rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation. Callers treat this as "another request already cached the same
// rows", not as a fatal store error.
func IsUniqueViolation(err error) bool {
	if pgErr, ok := err.(*pq.Error); ok {
		return pgErr.Code == "23505"
	}
	return false
}
