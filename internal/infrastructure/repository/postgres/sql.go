package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
