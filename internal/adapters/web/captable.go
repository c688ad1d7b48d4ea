package web

import (
	"fmt"
	"io"
	"net/http"

	"captable/internal/app"
)

// getCapTable handles GET /api/companies/{id}/captable — the full company
// summary: enriched issuances, class and shareholder aggregations, valuation.
func (h *Handler) getCapTable(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	capTable, err := h.svc.GetCapTable(r.Context(), actorFromContext(r.Context()), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, capTable)
}

// exportCapTable handles GET /api/companies/{id}/captable/export — CSV
// download. ?view=classes exports the per-class summary instead of the
// default per-holding rows.
func (h *Handler) exportCapTable(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	view := r.URL.Query().Get("view")
	if view != "" && view != "holdings" && view != "classes" {
		writeError(w, r, "view must be holdings or classes", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=captable-%d.csv", companyID))
	actor := actorFromContext(r.Context())
	if view == "classes" {
		err = h.svc.ExportClassSummaryCSV(r.Context(), actor, companyID, w)
	} else {
		err = h.svc.ExportHoldingsCSV(r.Context(), actor, companyID, w)
	}
	if err != nil {
		// Headers may already be out; log-and-abort is all that is left.
		writeServiceError(w, r, err)
	}
}

// runScenario handles POST /api/companies/{id}/scenario — models a
// hypothetical issuance without persisting anything.
func (h *Handler) runScenario(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.ScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.RunScenario(r.Context(), actorFromContext(r.Context()), companyID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// interpretScenario handles POST /api/companies/{id}/scenario/interpret —
// natural-language what-if via the AI agent.
func (h *Handler) interpretScenario(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.InterpretScenario(r.Context(), actorFromContext(r.Context()), companyID, req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// importIssuances handles POST /api/companies/{id}/issuances/import.
// The body is raw CSV text; malformed lines are skipped and reported.
func (h *Handler) importIssuances(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, "failed to read request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	report, err := h.svc.ImportIssuancesCSV(r.Context(), actorFromContext(r.Context()), companyID, string(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// notifyShareholders handles POST /api/companies/{id}/notify — e-mails each
// selected shareholder their current holdings.
func (h *Handler) notifyShareholders(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		ShareholderIDs []int `json:"shareholder_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.NotifyShareholders(r.Context(), actorFromContext(r.Context()), companyID, req.ShareholderIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listRaiseNotes handles GET /api/companies/{id}/raise-notes.
func (h *Handler) listRaiseNotes(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	notes, err := h.svc.ListRaiseNotes(r.Context(), actorFromContext(r.Context()), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, notes)
}

// createRaiseNote handles POST /api/companies/{id}/raise-notes.
func (h *Handler) createRaiseNote(w http.ResponseWriter, r *http.Request) {
	companyID, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid company id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.RaiseNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.svc.CreateRaiseNote(r.Context(), actorFromContext(r.Context()), companyID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, note)
}
