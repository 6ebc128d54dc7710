package handlers

import (
	"net/http"

	apperrors "github.com/stowgate/stowgate/internal/errors"
	"github.com/stowgate/stowgate/pkg/store"
)

// Health reports process liveness. It deliberately does not touch the
// backend: a wedged store must not make the gateway look dead.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// StoreHealth probes connectivity to the resolved credential context with
// a one-key listing. Used by clients as a "test connection" check after
// entering credentials.
func (h *Handler) StoreHealth(w http.ResponseWriter, r *http.Request) {
	s, release, err := h.resolveStore(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer release()

	if _, err := s.List(r.Context(), store.ListOptions{MaxKeys: 1}); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}
