package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ObjectStore for exercising the package-level
// helpers. Operations can be forced to fail per key.
type fakeStore struct {
	objects    map[string]ObjectSummary
	failDelete map[string]error
	failCopy   map[string]error

	// calls records every mutating call in order, e.g. "delete:a/b.txt".
	calls []string

	// pages, when set, scripts the List responses in order.
	pages []*ListResult
	// listTokens records the continuation token of every List call.
	listTokens []string
}

func newFakeStore(keys ...string) *fakeStore {
	f := &fakeStore{
		objects:    make(map[string]ObjectSummary),
		failDelete: make(map[string]error),
		failCopy:   make(map[string]error),
	}
	for _, k := range keys {
		f.objects[k] = ObjectSummary{Key: k, Size: 1}
	}
	return f
}

func (f *fakeStore) SignPut(ctx context.Context, key, contentType, cacheControl string) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeStore) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	f.listTokens = append(f.listTokens, opts.ContinuationToken)
	if len(f.pages) > 0 {
		page := f.pages[0]
		f.pages = f.pages[1:]
		return page, nil
	}

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	res := &ListResult{KeyCount: len(keys)}
	for _, k := range keys {
		res.Objects = append(res.Objects, f.objects[k])
	}
	return res, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.calls = append(f.calls, "delete:"+key)
	if err := f.failDelete[key]; err != nil {
		return err
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Copy(ctx context.Context, oldKey, newKey string) error {
	f.calls = append(f.calls, fmt.Sprintf("copy:%s->%s", oldKey, newKey))
	if err := f.failCopy[oldKey]; err != nil {
		return err
	}
	src, ok := f.objects[oldKey]
	if !ok {
		return &OpError{Op: "Copy", Key: oldKey, Err: ErrNotFound}
	}
	src.Key = newKey
	f.objects[newKey] = src
	return nil
}

func (f *fakeStore) Head(ctx context.Context, key string) (*ObjectMeta, error) {
	obj, ok := f.objects[key]
	if !ok {
		return nil, &OpError{Op: "Head", Key: key, Err: ErrNotFound}
	}
	return &ObjectMeta{ObjectSummary: obj}, nil
}

func (f *fakeStore) PublicURL(key string) (string, bool) { return "", false }
func (f *fakeStore) Close() error                        { return nil }

func (f *fakeStore) has(key string) bool {
	_, ok := f.objects[key]
	return ok
}

func TestRename(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the object", func(t *testing.T) {
		f := newFakeStore("old/a.txt")

		err := Rename(ctx, f, "old/a.txt", "new/a.txt")
		require.NoError(t, err)
		assert.False(t, f.has("old/a.txt"))
		assert.True(t, f.has("new/a.txt"))
	})

	t.Run("copy failure leaves source untouched", func(t *testing.T) {
		f := newFakeStore("old/a.txt")
		f.failCopy["old/a.txt"] = &OpError{Op: "Copy", Key: "old/a.txt", Err: ErrAccessDenied}

		err := Rename(ctx, f, "old/a.txt", "new/a.txt")
		require.Error(t, err)
		assert.True(t, IsAccessDenied(err))
		assert.True(t, f.has("old/a.txt"))
		assert.False(t, f.has("new/a.txt"))
	})

	t.Run("delete failure after copy leaves both keys", func(t *testing.T) {
		f := newFakeStore("old/a.txt")
		f.failDelete["old/a.txt"] = &OpError{Op: "Delete", Key: "old/a.txt", Err: ErrStoreUnavailable}

		err := Rename(ctx, f, "old/a.txt", "new/a.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both keys present")

		// The documented intermediate state: copy succeeded, delete pending.
		assert.True(t, f.has("old/a.txt"))
		assert.True(t, f.has("new/a.txt"))
	})
}

func TestApplyBatch_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes all keys in order", func(t *testing.T) {
		f := newFakeStore("a", "b", "c")

		res, err := ApplyBatch(ctx, f, BatchDelete, []string{"a", "b", "c"}, "")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Count)
		assert.Nil(t, res.Items)
		assert.Equal(t, []string{"delete:a", "delete:b", "delete:c"}, f.calls)
	})

	t.Run("aborts on first failure", func(t *testing.T) {
		f := newFakeStore("a", "b", "c")
		f.failDelete["b"] = &OpError{Op: "Delete", Key: "b", Err: ErrAccessDenied}

		_, err := ApplyBatch(ctx, f, BatchDelete, []string{"a", "b", "c"}, "")
		require.Error(t, err)

		// A was processed, B failed, C was never attempted.
		assert.False(t, f.has("a"))
		assert.True(t, f.has("b"))
		assert.True(t, f.has("c"))
		assert.Equal(t, []string{"delete:a", "delete:b"}, f.calls)
	})
}

func TestApplyBatch_MoveAndCopy(t *testing.T) {
	ctx := context.Background()

	t.Run("move re-joins basename under target prefix", func(t *testing.T) {
		f := newFakeStore("dev/2025/01/aa/photo.png", "loose.txt")

		res, err := ApplyBatch(ctx, f, BatchMove, []string{"dev/2025/01/aa/photo.png", "loose.txt"}, "archive/")
		require.NoError(t, err)
		assert.Equal(t, []BatchItem{
			{From: "dev/2025/01/aa/photo.png", To: "archive/photo.png"},
			{From: "loose.txt", To: "archive/loose.txt"},
		}, res.Items)
		assert.True(t, f.has("archive/photo.png"))
		assert.False(t, f.has("dev/2025/01/aa/photo.png"))
	})

	t.Run("copy leaves sources in place", func(t *testing.T) {
		f := newFakeStore("a/x.txt")

		res, err := ApplyBatch(ctx, f, BatchCopy, []string{"a/x.txt"}, "b")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Count)
		assert.True(t, f.has("a/x.txt"))
		assert.True(t, f.has("b/x.txt"))
	})

	t.Run("missing target prefix rejected before any call", func(t *testing.T) {
		f := newFakeStore("a/x.txt")

		_, err := ApplyBatch(ctx, f, BatchMove, []string{"a/x.txt"}, "  ")
		assert.ErrorIs(t, err, ErrMissingTargetPrefix)
		assert.Empty(t, f.calls)
	})

	t.Run("empty key list rejected", func(t *testing.T) {
		_, err := ApplyBatch(ctx, newFakeStore(), BatchDelete, nil, "")
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		_, err := ApplyBatch(ctx, newFakeStore(), BatchAction("purge"), []string{"a"}, "")
		assert.ErrorIs(t, err, ErrInvalidBatchAction)
	})
}

func TestCursorStack_PaginationRoundTrip(t *testing.T) {
	ctx := context.Background()

	f := newFakeStore()
	f.pages = []*ListResult{
		{Objects: []ObjectSummary{{Key: "p1"}}, ContinuationToken: "T1", IsTruncated: true, KeyCount: 1},
		{Objects: []ObjectSummary{{Key: "p2"}}, ContinuationToken: "T2", IsTruncated: true, KeyCount: 1},
		{Objects: []ObjectSummary{{Key: "p3"}}, KeyCount: 1},
		// Re-fetch of page 2 after Back.
		{Objects: []ObjectSummary{{Key: "p2"}}, ContinuationToken: "T2", IsTruncated: true, KeyCount: 1},
	}

	stack := NewCursorStack()

	// Page forward: "" -> T1 -> T2, then exhaustion.
	var visited []string
	for {
		res, err := f.List(ctx, ListOptions{ContinuationToken: stack.Current()})
		require.NoError(t, err)
		visited = append(visited, res.Objects[0].Key)
		if !res.IsTruncated || !stack.Advance(res.ContinuationToken) {
			break
		}
	}
	assert.Equal(t, []string{"p1", "p2", "p3"}, visited)
	assert.Equal(t, []string{"", "T1", "T2"}, f.listTokens)
	assert.Equal(t, 3, stack.Depth())

	// Previous page re-uses the token the backend issued for page 2;
	// no invented token ever reaches the backend.
	require.True(t, stack.Back())
	assert.Equal(t, "T1", stack.Current())

	res, err := f.List(ctx, ListOptions{ContinuationToken: stack.Current()})
	require.NoError(t, err)
	assert.Equal(t, "p2", res.Objects[0].Key)
	assert.Equal(t, []string{"", "T1", "T2", "T1"}, f.listTokens)

	// Back to the first page, then no further.
	require.True(t, stack.Back())
	assert.Equal(t, "", stack.Current())
	assert.False(t, stack.Back())
	assert.Equal(t, 1, stack.Depth())
}

func TestCursorStack_AdvanceEmptyToken(t *testing.T) {
	stack := NewCursorStack()
	assert.False(t, stack.Advance(""))
	assert.Equal(t, 1, stack.Depth())
}

func TestOpError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OpError
		want string
	}{
		{
			name: "with key",
			err:  &OpError{Op: "Head", Bucket: "media", Key: "a/b.png", Err: ErrNotFound},
			want: "store Head: media/a/b.png: object not found",
		},
		{
			name: "bucket only",
			err:  &OpError{Op: "List", Bucket: "media", Err: ErrAccessDenied},
			want: "store List: media: access denied",
		},
		{
			name: "bare",
			err:  &OpError{Op: "SignPut", Err: ErrNotConfigured},
			want: "store SignPut: object store not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestSentinelHelpers(t *testing.T) {
	wrapped := &OpError{Op: "Head", Key: "k", Err: ErrNotFound}
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsAccessDenied(wrapped))
	assert.True(t, IsThrottled(&OpError{Op: "List", Err: ErrThrottled}))
	assert.True(t, IsInvalidCredentials(&OpError{Op: "List", Err: ErrInvalidCredentials}))
	assert.True(t, IsBucketNotFound(&OpError{Op: "List", Err: ErrBucketNotFound}))
	assert.True(t, IsStoreUnavailable(&OpError{Op: "List", Err: ErrStoreUnavailable}))
	assert.True(t, IsNotConfigured(ErrNotConfigured))
}
