package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"taxiledger/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// TranslateError maps constraint violations to AppErrors and returns other errors unchanged.
func TranslateError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return apperror.NewConflict(entity+" already exists").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeForeignKeyViolation:
		return apperror.NewValidation("referenced record does not exist").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeCheckViolation:
		return apperror.NewValidation("value violates a constraint").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
