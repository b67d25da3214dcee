package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, ""},
		{"no file", ErrNoFileUploaded, "FILE004"},
		{"malformed wrapped", fmt.Errorf("%w: bare quote", ErrEmptyOrMalformedCSV), "FILE002"},
		{"too large", fmt.Errorf("%w: 6MB", ErrFileTooLarge), "FILE001"},
		{"busy", ErrTooManyUploads, "UPL002"},
		{"cancelled", context.Canceled, "UPL004"},
		{"deadline", context.DeadlineExceeded, "UPL005"},
		{"duplicate key", &StoreError{Op: OpInsert, Err: errors.New(`ERROR: duplicate key value violates unique constraint "feedback_pkey"`)}, "DB001"},
		{"connection refused", &StoreError{Op: OpSelect, Err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")}, "DB004"},
		{"timeout", errors.New("i/o timeout"), "DB006"},
		{"case insensitive", errors.New("DUPLICATE KEY"), "DB001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestMapError_SentinelMessages(t *testing.T) {
	tests := map[error]string{
		ErrNoFileUploaded:      "No CSV file uploaded.",
		ErrEmptyOrMalformedCSV: "CSV file is empty or malformed.",
		ErrFileTooLarge:        "CSV file exceeds the maximum upload size.",
		ErrTooManyUploads:      "Too many concurrent uploads, please try again later.",
	}
	for err, want := range tests {
		if got := MapError(err).Message; got != want {
			t.Errorf("MapError(%v).Message = %q, want %q", err, got, want)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(MapError(ErrNoFileUploaded)); got != "No CSV file uploaded. [FILE004]" {
		t.Errorf("unexpected format: %q", got)
	}
	if got := FormatUserError(UserMessage{Message: "plain"}); got != "plain" {
		t.Errorf("unexpected format: %q", got)
	}
}

func TestStoreError(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("list: %w", &StoreError{Op: OpCount, Err: inner})

	if !errors.Is(err, inner) {
		t.Error("StoreError should unwrap to its cause")
	}
	if !IsStoreOp(err, OpCount) || IsStoreOp(err, OpInsert) {
		t.Error("IsStoreOp mismatched")
	}
	if got := (&StoreError{Op: OpInsert, Err: inner}).Error(); got != "store insert: boom" {
		t.Errorf("Error() = %q", got)
	}
}
