package web

import (
	"net/http"

	"captable/internal/app"
)

// listCompanies handles GET /api/companies.
func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.ListCompanies(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, companies)
}

// createCompany handles POST /api/companies.
func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var req app.CompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	company, err := h.svc.CreateCompany(r.Context(), actorFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, company)
}

// getCompany handles GET /api/companies/{id}.
func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	company, err := h.svc.GetCompany(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, company)
}

// updateCompany handles PUT /api/companies/{id}.
func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.CompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	company, err := h.svc.UpdateCompany(r.Context(), actorFromContext(r.Context()), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, company)
}

// deleteCompany handles DELETE /api/companies/{id}. The database cascades the
// delete to every equity record under the company.
func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteCompany(r.Context(), actorFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
