package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/feedbacks/internal/logging"
)

// ImportCSV runs one upload through the ingestion pipeline and persists every
// valid row with a single Store.InsertMany call.
//
// The upload is rejected with ErrNoFileUploaded when it is missing or not a
// CSV file, ErrFileTooLarge when it exceeds the size cap, ErrTooManyUploads
// when no import slot frees up in time, ErrEmptyOrMalformedCSV when the
// stream is not valid CSV or no row survives validation, and
// ErrUploadInterrupted when reading the stream itself fails. Store failures are
// returned as *StoreError with Op "insert"; nothing is persisted in any of
// these cases.
func (s *Service) ImportCSV(ctx context.Context, up Upload) (result UploadResult, err error) {
	start := time.Now()
	result = UploadResult{
		UploadID: uuid.New().String(),
		FileName: up.FileName,
	}
	log := logging.WithFields(ctx,
		"upload_id", result.UploadID,
		"file", up.FileName,
	)
	defer func() {
		result.Duration = time.Since(start)
		s.recorder.UploadFinished(uploadOutcome(err), result.Count, result.Rejected, result.Duration)
	}()

	if up.Reader == nil || !IsCSVUpload(up.FileName, up.ContentType) {
		return result, ErrNoFileUploaded
	}
	if s.maxFileSize > 0 && up.Size > s.maxFileSize {
		return result, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, up.Size, s.maxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return result, err
	}
	defer s.limiter.Release()
	if up.SlotAcquired != nil {
		up.SlotAcquired()
	}

	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	records, rejected, err := s.collectRecords(ctx, up)
	result.Rejected = rejected
	if err != nil {
		log.Warn("upload rejected", "error", err, "rejected", rejected)
		return result, err
	}

	inserted, err := s.store.InsertMany(ctx, records)
	if err != nil {
		log.Error("bulk insert failed", "error", err, "rows", len(records))
		return result, wrapStoreError(OpInsert, err)
	}
	result.Count = int(inserted)

	log.Info("upload completed",
		"inserted", result.Count,
		"rejected", result.Rejected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// collectRecords drains the decoded rows of up, keeping valid records in file
// order and counting the rows dropped by validation. It stops early when
// ctx is done.
func (s *Service) collectRecords(ctx context.Context, up Upload) ([]Feedback, int, error) {
	reader, capped := wrapForStreaming(up.Reader, s.maxFileSize)

	log := logging.FromContext(ctx)
	var (
		records  []Feedback
		rejected int
		rowNum   int
	)
	for row, err := range DecodeRows(reader) {
		rowNum++
		if err != nil {
			if capped.exceeded {
				return nil, rejected, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxFileSize)
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, rejected, fmt.Errorf("%w: %v", ErrEmptyOrMalformedCSV, err)
			}
			return nil, rejected, fmt.Errorf("%w: %w", ErrUploadInterrupted, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, rejected, err
		}
		fb, ok := ParseFeedbackRow(row)
		if !ok {
			rejected++
			log.Debug("row rejected", "row", rowNum)
			continue
		}
		records = append(records, fb)
	}

	log.Debug("csv decoded",
		"bytes", capped.BytesRead(),
		"rows", len(records),
		"rejected", rejected,
	)
	if len(records) == 0 {
		return nil, rejected, ErrEmptyOrMalformedCSV
	}
	return records, rejected, nil
}

// ImportFile imports a CSV file from disk through the same pipeline as an
// HTTP upload.
func (s *Service) ImportFile(ctx context.Context, path string) (UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	return s.ImportCSV(ctx, Upload{
		Reader:   f,
		FileName: filepath.Base(path),
		Size:     info.Size(),
	})
}

func wrapStoreError(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
