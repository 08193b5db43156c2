package api

import (
	"net/http"

	"github.com/randalmurphal/opengrid/internal/db"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// handleListShots returns a project's shots, filtered by ?sequence= and ?status=.
func (s *Server) handleListShots(w http.ResponseWriter, r *http.Request) {
	p := s.projectFromPath(w, r)
	if p == nil {
		return
	}

	q := r.URL.Query()
	shots, err := s.studio.FindShots(r.Context(), db.ShotFilter{
		ProjectID: p.ID,
		Sequence:  q.Get("sequence"),
		Status:    q.Get("status"),
		Metadata:  metadataCriteria(r),
	})
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponse(w, shots)
}

// handleCreateShot creates a shot in the project named by {code}.
func (s *Server) handleCreateShot(w http.ResponseWriter, r *http.Request) {
	var in studio.NewShot
	if err := decodeJSON(r, w, &in); err != nil {
		s.HandleError(w, r, err)
		return
	}

	sh, err := s.studio.CreateShot(r.Context(), studio.ProjectCode(r.PathValue("code")), in)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponseStatus(w, sh, http.StatusCreated)
}

// handleGetShot returns a shot by project code and name.
func (s *Server) handleGetShot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	sh, err := s.studio.GetShot(r.Context(), studio.ProjectCode(r.PathValue("code")), name)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	if sh == nil {
		s.notFound(w, r, "shot", name)
		return
	}
	JSONResponse(w, sh)
}
