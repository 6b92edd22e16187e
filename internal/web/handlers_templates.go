package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/DataForge/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleListTemplates returns all saved templates.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.service.ListTemplates(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, templates)
}

// handleCreateTemplate saves a new template.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Fields      []core.Field `json:"fields"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	tmpl, err := s.service.CreateTemplate(r.Context(), req.Name, req.Description, req.Fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, tmpl)
}

// handleGetTemplate returns a single template by ID.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.service.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, tmpl)
}

// handleDeleteTemplate removes a template.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

// handleMatchTemplates scores saved templates against comma-separated headers.
func (s *Server) handleMatchTemplates(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("headers")
	if strings.TrimSpace(raw) == "" {
		s.fail(w, r, badRequestf("missing headers parameter"))
		return
	}

	headers := strings.Split(raw, ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	matches, err := s.service.MatchTemplates(r.Context(), headers)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, matches)
}
