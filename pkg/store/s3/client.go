package s3

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/stowgate/stowgate/pkg/store"
)

// Adapter implements store.ObjectStore against AWS S3 and S3-compatible
// storage.
type Adapter struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	publicBase    string
	presignExpiry time.Duration
}

var _ store.ObjectStore = (*Adapter)(nil)

// New creates a new S3 adapter with the given configuration.
//
// The adapter uses AWS SDK v2's default credential chain unless explicit
// credentials are provided in the config.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &store.OpError{Op: "New", Bucket: cfg.Bucket, Err: err}
	}

	// Build S3 client options
	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}

	// Custom endpoint for S3-compatible stores
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	expiry := cfg.PresignExpiry
	if expiry == 0 {
		expiry = DefaultPresignExpiry
	}

	return &Adapter{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBase:    strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		presignExpiry: expiry,
	}, nil
}

// loadAWSConfig builds the AWS configuration with appropriate credentials.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	// Only apply explicit region if user set one in config.
	// Let SDK resolve from env/profile first.
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	// Use explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for long-term credentials)
		)
		opts = append(opts, config.WithCredentialsProvider(staticCreds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	awsCfg.Region = resolveRegion(cfg.Endpoint, awsCfg.Region)

	return awsCfg, nil
}

// SignPut returns a presigned PUT URL for key. The content type and, when
// non-empty, the cache-control directive are bound into the signature, so
// the eventual upload must send the same values.
func (a *Adapter) SignPut(ctx context.Context, key, contentType, cacheControl string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if cacheControl != "" {
		input.CacheControl = aws.String(cacheControl)
	}

	req, err := a.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(a.presignExpiry))
	if err != nil {
		return "", a.wrapError("SignPut", key, err)
	}
	return req.URL, nil
}

// List returns a page of objects with the given prefix.
func (a *Adapter) List(ctx context.Context, opts store.ListOptions) (*store.ListResult, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
	}

	if opts.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(opts.MaxKeys))
	}

	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}

	if opts.ContinuationToken != "" {
		input.ContinuationToken = aws.String(opts.ContinuationToken)
	}

	output, err := a.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, a.wrapError("List", "", err)
	}

	objects := make([]store.ObjectSummary, 0, len(output.Contents))
	for _, obj := range output.Contents {
		objects = append(objects, store.ObjectSummary{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			ETag:         cleanETag(aws.ToString(obj.ETag)),
			LastModified: aws.ToTime(obj.LastModified),
			StorageClass: string(obj.StorageClass),
		})
	}

	result := &store.ListResult{
		Objects:     objects,
		IsTruncated: aws.ToBool(output.IsTruncated),
		KeyCount:    int(aws.ToInt32(output.KeyCount)),
	}

	if output.NextContinuationToken != nil {
		result.ContinuationToken = *output.NextContinuationToken
	}

	return result, nil
}

// Delete removes an object. S3 delete is idempotent: deleting a
// non-existent key succeeds.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err != nil {
		return a.wrapError("Delete", key, err)
	}
	return nil
}

// Copy performs a server-side copy from oldKey to newKey within the
// bucket, carrying object metadata over unchanged.
func (a *Adapter) Copy(ctx context.Context, oldKey, newKey string) error {
	input := &s3.CopyObjectInput{
		Bucket:            aws.String(a.bucket),
		Key:               aws.String(newKey),
		CopySource:        aws.String(a.bucket + "/" + url.PathEscape(oldKey)),
		MetadataDirective: types.MetadataDirectiveCopy,
	}

	_, err := a.client.CopyObject(ctx, input)
	if err != nil {
		return a.wrapError("Copy", oldKey, err)
	}
	return nil
}

// Head returns metadata for a single object.
func (a *Adapter) Head(ctx context.Context, key string) (*store.ObjectMeta, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}

	output, err := a.client.HeadObject(ctx, input)
	if err != nil {
		return nil, a.wrapError("Head", key, err)
	}

	meta := &store.ObjectMeta{
		ObjectSummary: store.ObjectSummary{
			Key:          key,
			Size:         aws.ToInt64(output.ContentLength),
			ETag:         cleanETag(aws.ToString(output.ETag)),
			LastModified: aws.ToTime(output.LastModified),
			StorageClass: string(output.StorageClass),
		},
		ContentType:  aws.ToString(output.ContentType),
		CacheControl: aws.ToString(output.CacheControl),
		Metadata:     output.Metadata,
	}

	return meta, nil
}

// PublicURL composes the public URL for key. Returns false when no public
// base URL is configured. The composition says nothing about whether the
// object is actually publicly readable.
func (a *Adapter) PublicURL(key string) (string, bool) {
	if a.publicBase == "" {
		return "", false
	}
	return a.publicBase + "/" + escapeKeyPath(key), true
}

// Close releases any resources held by the adapter.
// The S3 client doesn't require explicit cleanup, but this satisfies the
// interface.
func (a *Adapter) Close() error {
	return nil
}

// Bucket returns the bucket this adapter operates on.
func (a *Adapter) Bucket() string {
	return a.bucket
}

// wrapError converts S3 errors to store errors with appropriate sentinel
// errors.
func (a *Adapter) wrapError(op, key string, err error) error {
	wrapped := &store.OpError{
		Op:     op,
		Bucket: a.bucket,
		Key:    key,
		Err:    err,
	}

	// Check for specific S3 error types first
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket

	switch {
	case errors.As(err, &notFound), errors.As(err, &noSuchKey):
		wrapped.Err = store.ErrNotFound
		return wrapped
	case errors.As(err, &noSuchBucket):
		wrapped.Err = store.ErrBucketNotFound
		return wrapped
	}

	// Check smithy API errors for error codes
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			wrapped.Err = store.ErrNotFound
		case "NoSuchBucket":
			wrapped.Err = store.ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			wrapped.Err = store.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = store.ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			wrapped.Err = store.ErrThrottled
		case "ServiceUnavailable", "InternalError":
			wrapped.Err = store.ErrStoreUnavailable
		}
		return wrapped
	}

	// Fallback: check error message for common cases
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "NoSuchKey") || strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "404"):
		wrapped.Err = store.ErrNotFound
	case strings.Contains(errMsg, "NoSuchBucket"):
		wrapped.Err = store.ErrBucketNotFound
	case strings.Contains(errMsg, "AccessDenied") || strings.Contains(errMsg, "Forbidden") || strings.Contains(errMsg, "403"):
		wrapped.Err = store.ErrAccessDenied
	case strings.Contains(errMsg, "InvalidAccessKeyId") || strings.Contains(errMsg, "SignatureDoesNotMatch"):
		wrapped.Err = store.ErrInvalidCredentials
	case strings.Contains(errMsg, "SlowDown") || strings.Contains(errMsg, "Throttling") || strings.Contains(errMsg, "429"):
		wrapped.Err = store.ErrThrottled
	case strings.Contains(errMsg, "ServiceUnavailable") || strings.Contains(errMsg, "503"):
		wrapped.Err = store.ErrStoreUnavailable
	}

	return wrapped
}

// cleanETag removes surrounding quotes from an ETag value.
// S3 returns ETags with quotes, e.g., "d41d8cd98f00b204e9800998ecf8427e".
func cleanETag(etag string) string {
	return strings.Trim(etag, "\"")
}

// escapeKeyPath percent-encodes each segment of an object key while
// preserving the '/' separators, matching how browsers encode paths.
func escapeKeyPath(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// resolveRegion determines the final region to use after SDK config
// loading.
//
// The sdkRegion parameter already incorporates explicit config (if set)
// or env/profile resolution. This function only applies the fallback
// default:
//   - If sdkRegion is still empty AND no custom endpoint, default to us-east-1
//   - For S3-compatible stores (endpoint set), no defaulting occurs
func resolveRegion(endpoint, sdkRegion string) string {
	// SDK already resolved region (from explicit config, env, or profile)
	if sdkRegion != "" {
		return sdkRegion
	}

	// Only default for AWS S3 (no custom endpoint)
	if endpoint == "" {
		return DefaultAWSRegion
	}

	// S3-compatible: no default, endpoint may not need a region
	return ""
}
