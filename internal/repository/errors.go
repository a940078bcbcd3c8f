package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductMissing = errors.New("product does not exist")
	ErrEmailTaken     = errors.New("email already taken")
	ErrUserNameTaken  = errors.New("user name already taken")
)

const uniqueViolation = "23505"

// constraintViolated reports the constraint name of a unique violation.
func constraintViolated(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
