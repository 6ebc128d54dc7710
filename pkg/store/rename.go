package store

import (
	"context"
	"fmt"
)

// Rename relocates an object from oldKey to newKey as a copy followed by a
// delete of the source.
//
// No S3 primitive exists for atomic cross-key rename, so this is an
// explicit two-phase operation. If the delete fails after a successful
// copy, BOTH keys remain in the bucket; the error reports that
// intermediate state so callers can retry the delete phase or reconcile
// the orphaned source key.
func Rename(ctx context.Context, s ObjectStore, oldKey, newKey string) error {
	if err := s.Copy(ctx, oldKey, newKey); err != nil {
		return fmt.Errorf("rename %s -> %s: copy: %w", oldKey, newKey, err)
	}
	if err := s.Delete(ctx, oldKey); err != nil {
		// Copy succeeded, delete pending: the source key is now an orphan.
		return fmt.Errorf("rename %s -> %s: copy succeeded but source delete failed, both keys present: %w", oldKey, newKey, err)
	}
	return nil
}
