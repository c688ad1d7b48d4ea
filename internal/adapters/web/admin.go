package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// adminList handles GET /api/admin/{entity} — unscoped listing of users,
// companies, shareholders, share-classes or issuances.
func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	records, err := h.svc.AdminList(r.Context(), actorFromContext(r.Context()), entity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, records)
}

// adminDelete handles DELETE /api/admin/{entity}/{id}. Deleting a user also
// removes every company they own.
func (h *Handler) adminDelete(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.AdminDelete(r.Context(), actorFromContext(r.Context()), entity, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
