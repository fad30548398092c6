package audit

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes configuration defects.
type ConfigErrorCode string

const (
	// ErrCodeMissingTable indicates a configured table does not exist.
	ErrCodeMissingTable ConfigErrorCode = "MISSING_TABLE"

	// ErrCodeMissingRevisionColumn indicates an audit table lacks the
	// revision type or revision id column.
	ErrCodeMissingRevisionColumn ConfigErrorCode = "MISSING_REVISION_COLUMN"

	// ErrCodeUnmappedRevisionType indicates an audit row whose revision type
	// cannot be determined.
	ErrCodeUnmappedRevisionType ConfigErrorCode = "UNMAPPED_REVISION_TYPE"

	// ErrCodeMissingPrimaryKey indicates a content table without a primary
	// key, so no identity can be computed.
	ErrCodeMissingPrimaryKey ConfigErrorCode = "MISSING_PRIMARY_KEY"
)

// ConfigError is a defect in how a table is configured, as opposed to a
// defect in its data. It aborts evaluation of that table only.
type ConfigError struct {
	Code    ConfigErrorCode
	Table   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Table, e.Message)
}

// NewConfigError creates a ConfigError.
func NewConfigError(code ConfigErrorCode, table, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Table: table, Message: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func unmappedRevisionType(table, id string, types RevisionTypes) *ConfigError {
	return NewConfigError(ErrCodeUnmappedRevisionType, table,
		"identity %s has a row without a recognizable %s value (add=%q modify=%q remove=%q)",
		id, types.Column, types.Add, types.Modify, types.Remove)
}
