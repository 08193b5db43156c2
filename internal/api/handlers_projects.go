package api

import (
	"net/http"

	"github.com/randalmurphal/opengrid/internal/db"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{"status": "ok", "version": s.version})
}

// handleStats returns row counts per entity kind.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.studio.Stats(r.Context())
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponse(w, st)
}

// handleListProjects returns projects, optionally filtered by ?status=.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.studio.FindProjects(r.Context(), db.ProjectFilter{
		Status:   r.URL.Query().Get("status"),
		Metadata: metadataCriteria(r),
	})
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponse(w, projects)
}

// handleCreateProject creates a project from the request body.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in studio.NewProject
	if err := decodeJSON(r, w, &in); err != nil {
		s.HandleError(w, r, err)
		return
	}

	p, err := s.studio.CreateProject(r.Context(), in)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponseStatus(w, p, http.StatusCreated)
}

// handleGetProject returns a project by code.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	if p := s.projectFromPath(w, r); p != nil {
		JSONResponse(w, p)
	}
}

// projectFromPath resolves the {code} path segment. It writes the error
// response itself and returns nil when the project cannot be used.
func (s *Server) projectFromPath(w http.ResponseWriter, r *http.Request) *db.Project {
	code := r.PathValue("code")
	p, err := s.studio.GetProject(r.Context(), code)
	if err != nil {
		s.HandleError(w, r, err)
		return nil
	}
	if p == nil {
		s.notFound(w, r, "project", code)
		return nil
	}
	return p
}
