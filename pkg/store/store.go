// Package store defines the object store adapter surface used by the
// gateway: presigned upload URLs, paginated listing, and object CRUD
// against a single configured bucket.
//
// Implementations should:
//   - Treat the bucket as fixed for the lifetime of the adapter
//   - Support pagination via opaque continuation tokens
//   - Be safe for concurrent use
package store

import (
	"context"
	"time"
)

// ObjectStore abstracts the backing S3-compatible object store.
//
// The adapter never transfers object bytes itself; uploads happen directly
// between the client and the store using the URL returned by SignPut.
type ObjectStore interface {
	// SignPut returns a time-boxed URL authorizing one PUT of key with the
	// given content type. cacheControl is bound into the signature when
	// non-empty. The store itself is not touched: no existence check and
	// no pre-creation.
	SignPut(ctx context.Context, key, contentType, cacheControl string) (string, error)

	// List returns one page of objects with the given prefix.
	// Use ContinuationToken from ListResult for subsequent pages.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Delete removes an object. Deleting a key that does not exist is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Copy performs a server-side copy from oldKey to newKey, carrying
	// metadata over as-is.
	Copy(ctx context.Context, oldKey, newKey string) error

	// Head returns metadata for a single object.
	// Returns ErrNotFound if the object does not exist.
	Head(ctx context.Context, key string) (*ObjectMeta, error)

	// PublicURL composes the public URL for key from the configured public
	// base. The second return is false when no public base is configured.
	// A returned URL is pure string composition; it does not imply the
	// object is actually publicly readable.
	PublicURL(key string) (string, bool)

	// Close releases any resources held by the adapter.
	Close() error
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Prefix filters results to keys starting with this value.
	// Empty string lists all objects.
	Prefix string

	// ContinuationToken resumes listing from a previous ListResult.
	// Empty string starts from the beginning.
	ContinuationToken string

	// MaxKeys limits the number of objects returned per page.
	// Zero uses the adapter default. The gateway boundary clamps
	// caller-supplied values to [1, 1000]; the adapter passes them
	// through.
	MaxKeys int
}

// ListResult contains one page of objects from a List operation.
type ListResult struct {
	// Objects contains the object summaries for this page.
	Objects []ObjectSummary

	// ContinuationToken retrieves the next page. Empty means no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool

	// KeyCount is the number of keys in this page as reported by the
	// backend.
	KeyCount int
}

// ObjectSummary contains the listing metadata for one object.
type ObjectSummary struct {
	// Key is the full object key (path) in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag with surrounding quotes stripped.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time

	// StorageClass is the backend storage class, when reported.
	StorageClass string
}

// ObjectMeta contains full metadata for a single object, as returned by
// Head operations.
type ObjectMeta struct {
	ObjectSummary

	// ContentType is the MIME type of the object.
	ContentType string

	// CacheControl is the object's cache-control directive, if any.
	CacheControl string

	// Metadata contains user-defined metadata key-value pairs.
	Metadata map[string]string
}
