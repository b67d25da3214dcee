package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Upload is one file submitted for import.
type Upload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	// Size is the declared size in bytes, or 0 when unknown.
	Size int64
	// SlotAcquired, when set, is called once an import slot is held and
	// before Reader is consumed.
	SlotAcquired func()
}

// UploadResult summarizes a completed import.
type UploadResult struct {
	UploadID string        `json:"uploadId"`
	FileName string        `json:"fileName"`
	Count    int           `json:"count"`
	Rejected int           `json:"rejected"`
	Duration time.Duration `json:"duration"`
}

// Message is the human readable outcome shown to the uploader.
func (r UploadResult) Message() string {
	return SuccessMessage(r.Count)
}

// SuccessMessage pluralizes the import confirmation for n inserted entries.
func SuccessMessage(n int) string {
	suffix := "ies"
	if n == 1 {
		suffix = "y"
	}
	return fmt.Sprintf("Successfully uploaded and added %d feedback entr%s.", n, suffix)
}

// Upload outcomes reported to a Recorder.
const (
	OutcomeSuccess    = "success"
	OutcomeNoFile     = "no_file"
	OutcomeMalformed  = "malformed"
	OutcomeTooLarge   = "too_large"
	OutcomeBusy       = "busy"
	OutcomeStoreError = "store_error"
	OutcomeCancelled  = "cancelled"
	OutcomeReadError  = "read_error"
	OutcomeError      = "error"
)

// uploadOutcome classifies the error returned by ImportCSV.
func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrNoFileUploaded):
		return OutcomeNoFile
	case errors.Is(err, ErrEmptyOrMalformedCSV):
		return OutcomeMalformed
	case errors.Is(err, ErrFileTooLarge):
		return OutcomeTooLarge
	case errors.Is(err, ErrUploadInterrupted):
		return OutcomeReadError
	case errors.Is(err, ErrTooManyUploads):
		return OutcomeBusy
	case IsStoreOp(err, OpInsert):
		return OutcomeStoreError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}
