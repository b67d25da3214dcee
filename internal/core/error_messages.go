package core

// error_messages.go maps technical errors to messages that can be shown to
// the person uploading a file, each with a short code support staff can
// look up.
//
//	FILE001 - CSV file exceeds the maximum upload size
//	FILE002 - CSV file is empty or malformed
//	FILE004 - No CSV file uploaded
//	UPL002  - Too many concurrent uploads
//	UPL003  - Upload body could not be read
//	UPL004  - Request was cancelled
//	UPL005  - Request timed out
//	DB001   - Duplicate feedback id
//	DB004   - Database unreachable
//	DB006   - Database operation timed out
//	ERR000  - Anything else; check the server logs
//
// Sentinel errors are classified with errors.Is first. Driver errors carry
// no stable type across stores, so they fall back to case-insensitive
// substring patterns; the first matching pattern wins.

import (
	"context"
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

var (
	msgNoFile = UserMessage{
		Message: "No CSV file uploaded.",
		Action:  "Attach a .csv file in the csvFile form field",
		Code:    "FILE004",
	}
	msgMalformed = UserMessage{
		Message: "CSV file is empty or malformed.",
		Action:  "Include a header row with id, postId, name, email and body columns",
		Code:    "FILE002",
	}
	msgTooLarge = UserMessage{
		Message: "CSV file exceeds the maximum upload size.",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgBusy = UserMessage{
		Message: "Too many concurrent uploads, please try again later.",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgInterrupted = UserMessage{
		Message: "The upload was interrupted before the file was received.",
		Action:  "Check your connection and upload the file again",
		Code:    "UPL003",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled.",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out.",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgUnknown = UserMessage{
		Message: "An unexpected error occurred.",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A feedback entry with this id already exists.",
			Action:  "Remove rows whose id is already stored",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database.",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Database operation timed out.",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
}

// MapError converts a technical error to a user-friendly message.
// A nil error yields the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrNoFileUploaded):
		return msgNoFile
	case errors.Is(err, ErrEmptyOrMalformedCSV):
		return msgMalformed
	case errors.Is(err, ErrFileTooLarge):
		return msgTooLarge
	case errors.Is(err, ErrTooManyUploads):
		return msgBusy
	case errors.Is(err, ErrUploadInterrupted):
		return msgInterrupted
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}
	return msgUnknown
}

// FormatUserError renders a UserMessage as a single line including the code.
func FormatUserError(msg UserMessage) string {
	if msg.Code == "" {
		return msg.Message
	}
	return msg.Message + " [" + msg.Code + "]"
}
