// Package admin provides administrative operations on the feedback store.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/feedbacks/internal/core"
	"github.com/JonMunkholm/feedbacks/internal/logging"
)

// ResetTimeout is the maximum duration for a reset.
const ResetTimeout = 30 * time.Second

// ErrResetUnsupported is returned when the store cannot delete records.
var ErrResetUnsupported = errors.New("store does not support reset")

// ResetAll deletes every feedback record and reports how many were removed.
// This is destructive; callers are expected to confirm with the operator.
func ResetAll(ctx context.Context, store core.Store) (int64, error) {
	resetter, ok := store.(core.Resetter)
	if !ok {
		return 0, ErrResetUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	n, err := resetter.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset feedback: %w", &core.StoreError{Op: core.OpDelete, Err: err})
	}

	logging.FromContext(ctx).Warn("feedback store reset", "deleted", n)
	return n, nil
}
