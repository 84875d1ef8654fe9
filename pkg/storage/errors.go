package storage

import "errors"

var (
	ErrFailedToParseConfig     = errors.New("storage: failed to parse database configuration")
	ErrFailedToOpenConnection  = errors.New("storage: failed to open database connection")
	ErrFailedToCloseConnection = errors.New("storage: failed to close database connection")
	ErrSetDialect              = errors.New("storage migrator: failed to set dialect")
	ErrApplyMigrations         = errors.New("storage migrator: failed to apply migrations")
)
