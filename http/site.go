package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fwojciec/sitepulse"
	"github.com/go-chi/chi/v5"
)

func (s *Server) registerSiteRoutes(r chi.Router) {
	r.Route("/sites", func(r chi.Router) {
		r.Use(s.requireSiteService)
		r.Get("/", s.handleSiteIndex)
		r.Post("/", s.handleSiteCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSiteView)
			r.Patch("/", s.handleSiteUpdate)
			r.Delete("/", s.handleSiteDelete)
		})
	})
}

func (s *Server) requireSiteService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.SiteService == nil {
			writeError(w, http.StatusServiceUnavailable, "site storage unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleSiteIndex handles GET /v1/sites?offset=&limit=.
func (s *Server) handleSiteIndex(w http.ResponseWriter, r *http.Request) {
	var filter sitepulse.SiteFilter
	var err error
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		s.Error(w, r, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		s.Error(w, r, err)
		return
	}

	sites, err := s.SiteService.FindSites(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

// handleSiteCreate handles POST /v1/sites with a {"origin": "..."} body.
func (s *Server) handleSiteCreate(w http.ResponseWriter, r *http.Request) {
	var site sitepulse.Site
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		s.Error(w, r, sitepulse.Errorf(sitepulse.EINVALID, "invalid JSON body"))
		return
	}

	if err := s.SiteService.CreateSite(r.Context(), &site); err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"site": &site})
}

// handleSiteView handles GET /v1/sites/{id}.
func (s *Server) handleSiteView(w http.ResponseWriter, r *http.Request) {
	site, err := s.SiteService.FindSiteByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"site": site})
}

// handleSiteUpdate handles PATCH /v1/sites/{id}.
func (s *Server) handleSiteUpdate(w http.ResponseWriter, r *http.Request) {
	var upd sitepulse.SiteUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.Error(w, r, sitepulse.Errorf(sitepulse.EINVALID, "invalid JSON body"))
		return
	}

	site, err := s.SiteService.UpdateSite(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"site": site})
}

// handleSiteDelete handles DELETE /v1/sites/{id}.
func (s *Server) handleSiteDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.SiteService.DeleteSite(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, sitepulse.Errorf(sitepulse.EINVALID, "invalid %s", name)
	}
	return n, nil
}
