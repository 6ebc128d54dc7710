package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// BatchAction identifies the operation applied to each key of a batch.
type BatchAction string

const (
	// BatchDelete deletes each key.
	BatchDelete BatchAction = "delete"

	// BatchMove relocates each key under the target prefix (copy + delete).
	BatchMove BatchAction = "move"

	// BatchCopy copies each key under the target prefix, leaving the
	// source in place.
	BatchCopy BatchAction = "copy"
)

// Valid reports whether a is a known batch action.
func (a BatchAction) Valid() bool {
	return a == BatchDelete || a == BatchMove || a == BatchCopy
}

// BatchItem records one relocated key of a move/copy batch.
type BatchItem struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BatchResult reports the outcome of a fully successful batch.
type BatchResult struct {
	// Count is the number of keys processed.
	Count int

	// Items lists the from/to pairs of a move or copy batch. Nil for
	// delete batches.
	Items []BatchItem
}

// Errors returned by ApplyBatch before any backend call is made.
var (
	ErrEmptyBatch          = errors.New("batch: key list is empty")
	ErrInvalidBatchAction  = errors.New("batch: unknown action")
	ErrMissingTargetPrefix = errors.New("batch: targetPrefix is required for move and copy")
)

// ApplyBatch applies action to each key in order, strictly sequentially.
//
// The first error aborts the loop: keys already processed are NOT rolled
// back and keys after the failing one are never attempted. This
// abort-on-first-failure contract is intentional and matches the
// interactive console use case, where the operator re-issues the batch on
// the remaining selection after fixing the cause.
//
// For move and copy, each key's final path segment is re-joined under
// targetPrefix; the original directory structure is discarded.
func ApplyBatch(ctx context.Context, s ObjectStore, action BatchAction, keys []string, targetPrefix string) (*BatchResult, error) {
	if !action.Valid() {
		return nil, ErrInvalidBatchAction
	}
	if len(keys) == 0 {
		return nil, ErrEmptyBatch
	}

	if action == BatchDelete {
		for _, key := range keys {
			if err := s.Delete(ctx, key); err != nil {
				return nil, fmt.Errorf("batch delete %s: %w", key, err)
			}
		}
		return &BatchResult{Count: len(keys)}, nil
	}

	targetPrefix = strings.TrimSuffix(strings.TrimSpace(targetPrefix), "/")
	if targetPrefix == "" {
		return nil, ErrMissingTargetPrefix
	}

	items := make([]BatchItem, 0, len(keys))
	for _, key := range keys {
		to := targetPrefix + "/" + baseName(key)
		switch action {
		case BatchCopy:
			if err := s.Copy(ctx, key, to); err != nil {
				return nil, fmt.Errorf("batch copy %s: %w", key, err)
			}
		case BatchMove:
			if err := Rename(ctx, s, key, to); err != nil {
				return nil, fmt.Errorf("batch move %s: %w", key, err)
			}
		}
		items = append(items, BatchItem{From: key, To: to})
	}

	return &BatchResult{Count: len(keys), Items: items}, nil
}

// baseName returns the final path segment of an object key.
func baseName(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}
