package core

import (
	"errors"
	"fmt"
)

// Client-side failures of the ingestion pipeline.
var (
	ErrNoFileUploaded      = errors.New("no file provided")
	ErrEmptyOrMalformedCSV = errors.New("empty file or invalid csv")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUploadInterrupted   = errors.New("upload body could not be read")
)

// Store operations reported in StoreError.Op.
const (
	OpInsert = "insert"
	OpSelect = "select"
	OpCount  = "count"
	OpDelete = "delete"
)

// StoreError wraps a failure returned by the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreOp reports whether err is a StoreError for the given operation.
func IsStoreOp(err error, op string) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Op == op
}
