// Package core holds the business logic of the feedback service.
//
// It has no HTTP or database dependencies of its own: records reach storage
// through the [Store] port, and the web, CLI and test code all drive the same
// [Service].
//
// # Ingestion
//
// [Service.ImportCSV] accepts one uploaded CSV file and runs it through a
// fixed pipeline:
//
//  1. Acceptance: the upload must be declared text/csv or be named *.csv
//  2. Decoding: [DecodeRows] yields one header-keyed [Row] at a time
//  3. Validation: [ParseFeedbackRow] turns a row into a [Feedback] or drops it
//  4. Persistence: every surviving record is written by one Store.InsertMany
//
// Rows that fail validation are dropped silently. If nothing survives, the
// whole upload fails with [ErrEmptyOrMalformedCSV].
//
// # Listing
//
// [Service.ListFeedback] serves one page of records ordered by id, optionally
// filtered by a case-insensitive search over name and body, together with the
// total count for the same filter.
//
// # Error Handling
//
// Client-side failures are sentinel errors ([ErrNoFileUploaded],
// [ErrEmptyOrMalformedCSV], [ErrFileTooLarge], [ErrTooManyUploads]); store
// failures are wrapped in [*StoreError]. [MapError] turns any of them into a
// user-facing message with a support code.
package core
