package service

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyAdded     = errors.New("number already added")
	ErrContactNotFound  = errors.New("contact not found")
	ErrImportInProgress = errors.New("an import is already in progress")
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrNoRecipients     = errors.New("at least one recipient is required")
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateInvalid  = errors.New("template name and content are required")
)

// Import failure stages.
const (
	OpRead       = "read"
	OpValidation = "validation"
	OpMerge      = "merge"
)

// ImportError is the single error an import reports when it fails. The contact
// store is left as it was.
type ImportError struct {
	Op  string
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
