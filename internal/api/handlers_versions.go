package api

import (
	"net/http"

	"github.com/randalmurphal/opengrid/internal/db"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// handleListVersions returns a task's versions in version order, filtered by
// ?status= and ?created_by=.
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.HandleError(w, r, err)
		return
	}

	q := r.URL.Query()
	versions, err := s.studio.FindVersions(r.Context(), db.VersionFilter{
		TaskID:    id,
		Status:    q.Get("status"),
		CreatedBy: q.Get("created_by"),
		Metadata:  metadataCriteria(r),
	})
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponse(w, versions)
}

// handleCreateVersion publishes the next version of task {id}.
func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.HandleError(w, r, err)
		return
	}

	var in studio.NewVersion
	if err := decodeJSON(r, w, &in); err != nil {
		s.HandleError(w, r, err)
		return
	}

	v, err := s.studio.CreateVersion(r.Context(), id, in)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponseStatus(w, v, http.StatusCreated)
}
