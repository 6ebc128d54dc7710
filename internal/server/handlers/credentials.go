package handlers

import (
	"net/http"

	apperrors "github.com/stowgate/stowgate/internal/errors"
	"github.com/stowgate/stowgate/pkg/store"
	"github.com/stowgate/stowgate/pkg/store/s3"
)

// Per-request credential override headers. A request carrying a complete
// bundle (endpoint + access key + secret key) is served by an ephemeral
// adapter built from those values; bucket and public base fall back to
// the static configuration when not overridden.
//
// Header values are used for the one request and discarded. They are
// never persisted and never logged.
const (
	HeaderEndpoint   = "X-Store-Endpoint"
	HeaderAccessKey  = "X-Store-Access-Key"
	HeaderSecretKey  = "X-Store-Secret-Key"
	HeaderBucket     = "X-Store-Bucket"
	HeaderPublicBase = "X-Store-Public-Base"
)

// credContext is the per-request credential resolution: either the static
// process-wide adapter or an override bundle. Resolved once per request.
type credContext struct {
	override bool
	cfg      s3.Config
}

// resolveCredentials inspects the override headers and decides the
// credential mode for this request.
//
// A partial bundle (some but not all of endpoint/access key/secret key)
// is rejected rather than silently falling back to the static context:
// it almost always means a misconfigured client about to operate on the
// wrong bucket.
func (h *Handler) resolveCredentials(r *http.Request) (credContext, error) {
	endpoint := r.Header.Get(HeaderEndpoint)
	accessKey := r.Header.Get(HeaderAccessKey)
	secretKey := r.Header.Get(HeaderSecretKey)

	present := 0
	for _, v := range []string{endpoint, accessKey, secretKey} {
		if v != "" {
			present++
		}
	}

	switch present {
	case 0:
		return credContext{}, nil
	case 3:
		bucket := r.Header.Get(HeaderBucket)
		if bucket == "" {
			bucket = h.cfg.Store.Bucket
		}
		if bucket == "" {
			return credContext{}, apperrors.Validation("credential override requires " + HeaderBucket + " when no static bucket is configured")
		}

		publicBase := r.Header.Get(HeaderPublicBase)
		if publicBase == "" {
			publicBase = h.cfg.Store.PublicBaseURL
		}

		return credContext{
			override: true,
			cfg: s3.Config{
				Endpoint:        endpoint,
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				Bucket:          bucket,
				PublicBaseURL:   publicBase,
				ForcePathStyle:  true,
				PresignExpiry:   h.cfg.Uploads.PresignExpiry,
			},
		}, nil
	default:
		return credContext{}, apperrors.Validation("incomplete credential override: endpoint, access key, and secret key must all be provided")
	}
}

// resolveStore turns the request's credential context into a usable
// adapter. The returned release func closes ephemeral override adapters;
// it is a no-op for the shared static adapter.
//
// Override adapters are built fresh per request and discarded: no
// caching, no pooling, so one tenant's credentials can never bleed into
// another's request.
func (h *Handler) resolveStore(r *http.Request) (store.ObjectStore, func(), error) {
	cred, err := h.resolveCredentials(r)
	if err != nil {
		return nil, nil, err
	}

	if cred.override {
		s, err := h.factory(r.Context(), cred.cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	if h.static == nil {
		return nil, nil, store.ErrNotConfigured
	}
	return h.static, func() {}, nil
}
