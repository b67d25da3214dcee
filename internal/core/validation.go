package core

// validation.go decides whether an uploaded file is accepted as CSV and turns
// decoded rows into Feedback records.
//
// Row validation never fails the upload. A row that is missing a field, has
// a blank one, or has a non-numeric id is dropped and the caller counts it.

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// CSV column names read by ParseFeedbackRow.
const (
	ColumnID     = "id"
	ColumnPostID = "postId"
	ColumnName   = "name"
	ColumnEmail  = "email"
	ColumnBody   = "body"
)

// Columns lists the CSV header in the order export and seed files use.
var Columns = []string{ColumnID, ColumnPostID, ColumnName, ColumnEmail, ColumnBody}

const csvMediaType = "text/csv"

// IsCSVUpload reports whether a file is acceptable for import: either its
// declared media type is text/csv (parameters and case ignored) or its name
// ends in .csv.
func IsCSVUpload(fileName, contentType string) bool {
	if contentType != "" && mimetype.EqualsAny(contentType, csvMediaType) {
		return true
	}
	return strings.EqualFold(filepath.Ext(fileName), ".csv")
}

// ParseFeedbackRow validates one decoded row. It reports false when the row
// must be dropped.
//
// id must be a non-zero integer and postId any integer. name, email and body
// must be non-blank but are stored as sent, except that every literal `\n`
// in body becomes a line break.
func ParseFeedbackRow(row Row) (Feedback, bool) {
	id, ok := parseInt(row[ColumnID])
	if !ok || id == 0 {
		return Feedback{}, false
	}
	postID, ok := parseInt(row[ColumnPostID])
	if !ok {
		return Feedback{}, false
	}

	name, email, body := row[ColumnName], row[ColumnEmail], row[ColumnBody]
	if isBlank(name) || isBlank(email) || isBlank(body) {
		return Feedback{}, false
	}

	return Feedback{
		ID:     id,
		PostID: postID,
		Name:   name,
		Email:  email,
		Body:   strings.ReplaceAll(body, `\n`, "\n"),
	}, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseInt(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
