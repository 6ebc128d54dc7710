// Package handlers implements the gateway's JSON endpoints over the
// object store adapter. The gateway mediates metadata operations only;
// object bytes travel directly between the client and the store via
// presigned URLs.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stowgate/stowgate/internal/config"
	apperrors "github.com/stowgate/stowgate/internal/errors"
	"github.com/stowgate/stowgate/pkg/store"
	"github.com/stowgate/stowgate/pkg/store/s3"
)

// StoreFactory builds an ephemeral adapter for a per-request credential
// override. Injected so tests can substitute fakes.
type StoreFactory func(ctx context.Context, cfg s3.Config) (store.ObjectStore, error)

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	cfg     *config.Config
	static  store.ObjectStore // nil when no static store is configured
	factory StoreFactory
}

// New creates a Handler. static may be nil (desktop mode: every request
// must carry its own credentials). factory nil means the real S3 adapter.
func New(cfg *config.Config, static store.ObjectStore, factory StoreFactory) *Handler {
	if factory == nil {
		factory = func(ctx context.Context, c s3.Config) (store.ObjectStore, error) {
			return s3.New(ctx, c)
		}
	}
	return &Handler{cfg: cfg, static: static, factory: factory}
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Validation("invalid JSON body: " + err.Error())
	}
	return nil
}
