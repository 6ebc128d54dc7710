package handlers

import (
	"net/http"

	apperrors "github.com/stowgate/stowgate/internal/errors"
	"github.com/stowgate/stowgate/pkg/keygen"
)

// signUploadRequest is the body of POST /api/sign-upload.
type signUploadRequest struct {
	Filename     string `json:"filename"`
	ContentType  string `json:"contentType"`
	Prefix       string `json:"prefix,omitempty"`
	CacheControl string `json:"cacheControl,omitempty"`
	Strategy     string `json:"strategy,omitempty"`
}

// signUploadResponse returns the minted key, the presigned PUT URL, and
// the public URL when a public base is configured (null otherwise).
type signUploadResponse struct {
	Key       string  `json:"key"`
	URL       string  `json:"url"`
	PublicURL *string `json:"publicUrl"`
}

// SignUpload validates the upload descriptor, generates the object key,
// and returns a presigned PUT URL. The store is never touched here; the
// client performs the actual upload directly against the returned URL.
func (h *Handler) SignUpload(w http.ResponseWriter, r *http.Request) {
	var req signUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	if req.Filename == "" {
		apperrors.RespondWithError(w, r, apperrors.Validation("filename is required"))
		return
	}
	if req.ContentType == "" {
		apperrors.RespondWithError(w, r, apperrors.Validation("contentType is required"))
		return
	}

	strategy := keygen.Strategy(req.Strategy)
	if req.Strategy == "" {
		strategy = keygen.Strategy(h.cfg.Uploads.Strategy)
	}
	if !strategy.Valid() {
		apperrors.RespondWithError(w, r, apperrors.Validation("strategy must be \"hash\" or \"original\""))
		return
	}

	var key string
	switch strategy {
	case keygen.StrategyOriginal:
		key = keygen.OriginalKey(req.Filename, req.Prefix)
	default:
		k, err := keygen.Generate(keygen.Params{
			Filename: req.Filename,
			Env:      h.cfg.Uploads.Env,
			Prefix:   req.Prefix,
		})
		if err != nil {
			apperrors.RespondWithError(w, r, err)
			return
		}
		key = k
	}

	s, release, err := h.resolveStore(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer release()

	cacheControl := req.CacheControl
	if cacheControl == "" {
		cacheControl = h.cfg.Uploads.CacheControl
	}

	signedURL, err := s.SignPut(r.Context(), key, req.ContentType, cacheControl)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	resp := signUploadResponse{Key: key, URL: signedURL}
	if publicURL, ok := s.PublicURL(key); ok {
		resp.PublicURL = &publicURL
	}

	respondJSON(w, http.StatusOK, resp)
}
