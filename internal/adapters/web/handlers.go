package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"captable/internal/app"
	webui "captable/web"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc        app.ApplicationService
	router     chi.Router
	jwtSecret  string
	fileServer http.Handler
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, logger *slog.Logger) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}

	h := &Handler{
		svc:        svc,
		jwtSecret:  jwtSecret,
		fileServer: http.FileServer(http.FS(staticFS)),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public API) ─────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/logout", h.logout)
	})

	// ── Static SPA shell ──────────────────────────────────────────────────────
	r.Get("/", h.index)
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// CSV import: larger limit, text body handled in the handler.
		r.With(RequestBodyLimit(5 << 20)).Post("/api/companies/{id}/issuances/import", h.importIssuances)

		// All other protected endpoints: 1 MB body limit to prevent unbounded request abuse.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			// Auth
			r.Get("/api/auth/me", h.me)
			r.Put("/api/auth/profile", h.updateProfile)

			// ── Companies ─────────────────────────────────────────────────────────
			r.Get("/api/companies", h.listCompanies)
			r.Post("/api/companies", h.createCompany)
			r.Get("/api/companies/{id}", h.getCompany)
			r.Put("/api/companies/{id}", h.updateCompany)
			r.Delete("/api/companies/{id}", h.deleteCompany)

			// ── Equity records ────────────────────────────────────────────────────
			r.Get("/api/companies/{id}/shareholders", h.listShareholders)
			r.Post("/api/companies/{id}/shareholders", h.createShareholder)
			r.Put("/api/shareholders/{id}", h.updateShareholder)
			r.Delete("/api/shareholders/{id}", h.deleteShareholder)

			r.Get("/api/companies/{id}/share-classes", h.listShareClasses)
			r.Post("/api/companies/{id}/share-classes", h.createShareClass)
			r.Delete("/api/share-classes/{id}", h.deleteShareClass)

			r.Get("/api/companies/{id}/issuances", h.listIssuances)
			r.Post("/api/companies/{id}/issuances", h.createIssuance)
			r.Delete("/api/issuances/{id}", h.deleteIssuance)

			// ── Cap table ─────────────────────────────────────────────────────────
			r.Get("/api/companies/{id}/captable", h.getCapTable)
			r.Get("/api/companies/{id}/captable/export", h.exportCapTable)
			r.Post("/api/companies/{id}/scenario", h.runScenario)
			r.Post("/api/companies/{id}/scenario/interpret", h.interpretScenario)

			// ── Notifications / capital raising ───────────────────────────────────
			r.Post("/api/companies/{id}/notify", h.notifyShareholders)
			r.Get("/api/companies/{id}/raise-notes", h.listRaiseNotes)
			r.Post("/api/companies/{id}/raise-notes", h.createRaiseNote)

			// Dataroom document storage — future phase.
			r.Get("/api/companies/{id}/dataroom", notImplemented)
			r.Post("/api/companies/{id}/dataroom", notImplemented)

			// ── Admin ─────────────────────────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Get("/api/admin/{entity}", h.adminList)
				r.Delete("/api/admin/{entity}/{id}", h.adminDelete)
			})
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// index serves the SPA shell.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	req := r.Clone(r.Context())
	req.URL.Path = "/index.html"
	h.fileServer.ServeHTTP(w, req)
}

// idParam extracts the {id} URL parameter as an int.
func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
