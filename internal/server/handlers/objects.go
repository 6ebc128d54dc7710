package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/stowgate/stowgate/internal/errors"
	"github.com/stowgate/stowgate/pkg/match"
	"github.com/stowgate/stowgate/pkg/store"
)

const (
	defaultListPageSize = 100
	maxListPageSize     = 1000
)

type listObjectsResponse struct {
	Prefix                string          `json:"prefix"`
	Contents              []objectSummary `json:"contents"`
	KeyCount              int             `json:"keyCount"`
	IsTruncated           bool            `json:"isTruncated"`
	NextContinuationToken *string         `json:"nextContinuationToken"`
}

type objectSummary struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"eTag"`
	LastModified time.Time `json:"lastModified"`
	StorageClass string    `json:"storageClass,omitempty"`
}

// ListObjects returns one page of the bucket listing. maxKeys is clamped
// to [1, 1000] with a default of 100; an optional glob query filters the
// page after the backend call, so a filtered page may come back short
// while still carrying a continuation token.
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxKeys := defaultListPageSize
	if raw := q.Get("maxKeys"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.RespondWithError(w, r, apperrors.Validation("maxKeys must be an integer"))
			return
		}
		maxKeys = n
	}
	if maxKeys < 1 {
		maxKeys = 1
	}
	if maxKeys > maxListPageSize {
		maxKeys = maxListPageSize
	}

	var filter *match.Filter
	if glob := q.Get("glob"); glob != "" {
		f, err := match.NewFilter(glob)
		if err != nil {
			apperrors.RespondWithError(w, r, apperrors.Validation("invalid glob pattern"))
			return
		}
		filter = f
	}

	s, release, err := h.resolveStore(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer release()

	page, err := s.List(r.Context(), store.ListOptions{
		Prefix:            q.Get("prefix"),
		ContinuationToken: q.Get("continuationToken"),
		MaxKeys:           maxKeys,
	})
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	if filter != nil {
		page = filter.Apply(page)
	}

	resp := listObjectsResponse{
		Prefix:      q.Get("prefix"),
		Contents:    make([]objectSummary, 0, len(page.Objects)),
		KeyCount:    page.KeyCount,
		IsTruncated: page.IsTruncated,
	}
	if page.ContinuationToken != "" {
		token := page.ContinuationToken
		resp.NextContinuationToken = &token
	}
	for _, o := range page.Objects {
		resp.Contents = append(resp.Contents, objectSummary{
			Key:          o.Key,
			Size:         o.Size,
			ETag:         o.ETag,
			LastModified: o.LastModified,
			StorageClass: o.StorageClass,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// DeleteObject removes a single object. The key arrives as the URL
// wildcard and may be percent-encoded.
func (h *Handler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromWildcard(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	s, release, err := h.resolveStore(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer release()

	if err := s.Delete(r.Context(), key); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": key})
}

type headObjectResponse struct {
	Key           string            `json:"key"`
	ContentLength int64             `json:"contentLength"`
	ETag          string            `json:"eTag"`
	ContentType   string            `json:"contentType"`
	LastModified  time.Time         `json:"lastModified"`
	CacheControl  string            `json:"cacheControl,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// HeadObject returns the full metadata for a single object.
func (h *Handler) HeadObject(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromWildcard(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	s, release, err := h.resolveStore(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer release()

	meta, err := s.Head(r.Context(), key)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, headObjectResponse{
		Key:           meta.Key,
		ContentLength: meta.Size,
		ETag:          meta.ETag,
		ContentType:   meta.ContentType,
		LastModified:  meta.LastModified,
		CacheControl:  meta.CacheControl,
		Metadata:      meta.Metadata,
	})
}

type renameRequest struct {
	OldKey string `json:"oldKey"`
	NewKey string `json:"newKey"`
}

// RenameObject relocates one object via server-side copy plus delete.
// Not atomic: a crash between the two steps leaves both keys present.
func (h *Handler) RenameObject(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	if req.OldKey == "" || req.NewKey == "" {
		apperrors.RespondWithError(w, r, apperrors.Validation("oldKey and newKey are required"))
		return
	}
	if req.OldKey == req.NewKey {
		apperrors.RespondWithError(w, r, apperrors.Validation("oldKey and newKey must differ"))
		return
	}

	s, release, err := h.resolveStore(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer release()

	if err := store.Rename(r.Context(), s, req.OldKey, req.NewKey); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"oldKey": req.OldKey,
		"newKey": req.NewKey,
	})
}

type batchRequest struct {
	Action       string   `json:"action"`
	Keys         []string `json:"keys"`
	TargetPrefix string   `json:"targetPrefix,omitempty"`
}

type batchResponse struct {
	Action string            `json:"action"`
	Count  int               `json:"count"`
	Items  []store.BatchItem `json:"items,omitempty"`
}

// BatchObjects applies delete, move, or copy to a list of keys. Keys are
// processed in order and the first failure aborts the batch; completed
// keys are not rolled back.
func (h *Handler) BatchObjects(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	action := store.BatchAction(req.Action)
	if !action.Valid() {
		apperrors.RespondWithError(w, r, apperrors.Validation("action must be \"delete\", \"move\", or \"copy\""))
		return
	}
	if len(req.Keys) == 0 {
		apperrors.RespondWithError(w, r, apperrors.Validation("keys must not be empty"))
		return
	}
	if action != store.BatchDelete && req.TargetPrefix == "" {
		apperrors.RespondWithError(w, r, apperrors.Validation("targetPrefix is required for move and copy"))
		return
	}

	s, release, err := h.resolveStore(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer release()

	res, err := store.ApplyBatch(r.Context(), s, action, req.Keys, req.TargetPrefix)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, batchResponse{
		Action: req.Action,
		Count:  res.Count,
		Items:  res.Items,
	})
}

// keyFromWildcard extracts and decodes the object key from the route's
// trailing wildcard.
func keyFromWildcard(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "*")
	if raw == "" {
		return "", apperrors.Validation("object key is required")
	}
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperrors.Validation("object key is not valid percent-encoding")
	}
	return key, nil
}
