// Package seed holds the sample feedback data set used for demos and tests.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/feedbacks/internal/core"
)

// Size is the number of sample records.
const Size = 50

// Records returns the sample data set: ids 1..50 spread over posts 100..104,
// alternating positive and constructive feedback.
func Records() []core.Feedback {
	records := make([]core.Feedback, Size)
	for i := range records {
		tone := "Positive feedback."
		if i%2 != 0 {
			tone = "Constructive criticism."
		}
		n := i + 1
		records[i] = core.Feedback{
			ID:     int64(n),
			PostID: int64(100 + i%5),
			Name:   fmt.Sprintf("User %d", n),
			Email:  fmt.Sprintf("user%d@example.com", n),
			Body:   fmt.Sprintf("This is feedback number %d. %s", n, tone),
		}
	}
	return records
}

// Insert stores the sample data set in one batch.
func Insert(ctx context.Context, store core.Store) (int64, error) {
	n, err := store.InsertMany(ctx, Records())
	if err != nil {
		return 0, fmt.Errorf("seed feedback: %w", err)
	}
	return n, nil
}

// WriteCSV writes records in the upload format, header first. Line breaks in
// bodies are written as a literal \n so the file round-trips through import.
func WriteCSV(w io.Writer, records []core.Feedback) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(core.Columns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.PostID, 10),
			r.Name,
			r.Email,
			strings.ReplaceAll(r.Body, "\n", `\n`),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
