package api

import (
	"net/http"

	"github.com/randalmurphal/opengrid/internal/db"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// handleListAssets returns a project's assets, filtered by ?asset_type= and ?status=.
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	p := s.projectFromPath(w, r)
	if p == nil {
		return
	}

	q := r.URL.Query()
	assets, err := s.studio.FindAssets(r.Context(), db.AssetFilter{
		ProjectID: p.ID,
		AssetType: q.Get("asset_type"),
		Status:    q.Get("status"),
		Metadata:  metadataCriteria(r),
	})
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponse(w, assets)
}

// handleCreateAsset creates an asset in the project named by {code}.
func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var in studio.NewAsset
	if err := decodeJSON(r, w, &in); err != nil {
		s.HandleError(w, r, err)
		return
	}

	a, err := s.studio.CreateAsset(r.Context(), studio.ProjectCode(r.PathValue("code")), in)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponseStatus(w, a, http.StatusCreated)
}

// handleGetAsset returns an asset by project code and name.
func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	a, err := s.studio.GetAsset(r.Context(), studio.ProjectCode(r.PathValue("code")), name)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	if a == nil {
		s.notFound(w, r, "asset", name)
		return
	}
	JSONResponse(w, a)
}
