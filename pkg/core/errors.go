package core

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	// ErrIO is the category of filesystem failures (scan, read, write, remove).
	ErrIO = errors.New("filesystem i/o failure")

	// ErrParse is returned when a file cannot be turned into documents.
	ErrParse = errors.New("cannot parse file")

	// ErrStaleMetadata is returned when a written file never reports a new
	// modification time within the retry budget.
	ErrStaleMetadata = errors.New("stale file metadata after write")

	// ErrNotFound is returned when a document is unknown to the store.
	ErrNotFound = errors.New("document not found")

	// ErrPathConflict is returned when a path is already owned by another document.
	ErrPathConflict = errors.New("path already owned by another document")

	ErrReadOnly = errors.New("repository is in read-only mode")
)

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Is(target error) bool { return target == ErrIO }
func (e *IOError) Unwrap() error        { return e.Err }

// ParseError reports a file whose content could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }
func (e *ParseError) Unwrap() error        { return e.Err }

// StaleMetadataError means the file was written but its modification time
// could not be observed to change after Attempts stats.
type StaleMetadataError struct {
	Path     string
	Attempts int
}

func (e *StaleMetadataError) Error() string {
	return fmt.Sprintf("%s: modification time unchanged after %d attempts", e.Path, e.Attempts)
}

func (e *StaleMetadataError) Is(target error) bool { return target == ErrStaleMetadata }

// NotFoundError names the missing document.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CleanupError collects secondary failures of a delete whose primary file
// was removed. The delete itself is not undone.
type CleanupError struct {
	Path string
	Errs []error
}

func (e *CleanupError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("cleanup after removing %s: %s", e.Path, strings.Join(msgs, "; "))
}

func (e *CleanupError) Is(target error) bool { return target == ErrIO }
func (e *CleanupError) Unwrap() []error      { return e.Errs }
