package web

import (
	"net/http"

	"captable/internal/app"
)

// ── Shareholders ──────────────────────────────────────────────────────────────

// listShareholders handles GET /api/companies/{id}/shareholders.
func (h *Handler) listShareholders(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	shareholders, err := h.svc.ListShareholders(r.Context(), actorFromContext(r.Context()), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, shareholders)
}

// createShareholder handles POST /api/companies/{id}/shareholders.
func (h *Handler) createShareholder(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.ShareholderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sh, err := h.svc.CreateShareholder(r.Context(), actorFromContext(r.Context()), companyID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, sh)
}

// updateShareholder handles PUT /api/shareholders/{id}.
func (h *Handler) updateShareholder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid shareholder id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.ShareholderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sh, err := h.svc.UpdateShareholder(r.Context(), actorFromContext(r.Context()), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sh)
}

// deleteShareholder handles DELETE /api/shareholders/{id}.
func (h *Handler) deleteShareholder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid shareholder id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteShareholder(r.Context(), actorFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Share classes ─────────────────────────────────────────────────────────────

// listShareClasses handles GET /api/companies/{id}/share-classes.
func (h *Handler) listShareClasses(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	classes, err := h.svc.ListShareClasses(r.Context(), actorFromContext(r.Context()), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, classes)
}

// createShareClass handles POST /api/companies/{id}/share-classes.
func (h *Handler) createShareClass(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.ShareClassRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sc, err := h.svc.CreateShareClass(r.Context(), actorFromContext(r.Context()), companyID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, sc)
}

// deleteShareClass handles DELETE /api/share-classes/{id}. Issuances that
// referenced the class survive and aggregate under "Unknown".
func (h *Handler) deleteShareClass(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid share class id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteShareClass(r.Context(), actorFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Issuances ─────────────────────────────────────────────────────────────────

// listIssuances handles GET /api/companies/{id}/issuances — enriched rows.
func (h *Handler) listIssuances(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	issuances, err := h.svc.ListIssuances(r.Context(), actorFromContext(r.Context()), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, issuances)
}

// createIssuance handles POST /api/companies/{id}/issuances.
func (h *Handler) createIssuance(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.IssuanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	iss, err := h.svc.CreateIssuance(r.Context(), actorFromContext(r.Context()), companyID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, iss)
}

// deleteIssuance handles DELETE /api/issuances/{id}.
func (h *Handler) deleteIssuance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid issuance id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteIssuance(r.Context(), actorFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
