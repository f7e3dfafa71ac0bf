package data

import (
	"database/sql"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/pitabwire/i18nutils/model"
	"github.com/pitabwire/i18nutils/multilingual"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgUndefinedColumn     = "42703"
)

// ErrorIsNoRows validate if supplied error is because of record missing in DB.
func ErrorIsNoRows(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows)
}

// ErrorIsDuplicateKey reports a unique constraint violation, for example two rows sharing a
// translated slug.
func ErrorIsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ErrorIsInvalidInput reports errors caused by the caller's data rather than the database.
func ErrorIsInvalidInput(err error) bool {
	return errors.Is(err, model.ErrInvalidValue) ||
		errors.Is(err, model.ErrUnsupportedLanguage) ||
		errors.Is(err, model.ErrUnknownColumn) ||
		errors.Is(err, multilingual.ErrUnsupportedValue)
}

// ErrorConvertToAPI maps datastore and model errors to connect errors for service handlers.
func ErrorConvertToAPI(err error) *connect.Error {
	if err == nil {
		return nil
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case ErrorIsNoRows(err):
		return connect.NewError(connect.CodeNotFound, err)
	case ErrorIsDuplicateKey(err):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case ErrorIsInvalidInput(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation, pgUndefinedColumn:
			return connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case strings.Contains(msg, "violates"):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "serialization"):
		return connect.NewError(connect.CodeAborted, err)
	case strings.Contains(msg, "dial tcp"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "timeout"):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
