package api

import (
	"net/http"
	"strconv"

	"github.com/randalmurphal/opengrid/internal/db"
	"github.com/randalmurphal/opengrid/internal/studio"
)

func (s *Server) handleListAssetTasks(w http.ResponseWriter, r *http.Request) {
	s.listOwnerTasks(w, r, db.KindAsset)
}

func (s *Server) handleListShotTasks(w http.ResponseWriter, r *http.Request) {
	s.listOwnerTasks(w, r, db.KindShot)
}

func (s *Server) handleCreateAssetTask(w http.ResponseWriter, r *http.Request) {
	s.createOwnerTask(w, r, db.KindAsset)
}

func (s *Server) handleCreateShotTask(w http.ResponseWriter, r *http.Request) {
	s.createOwnerTask(w, r, db.KindShot)
}

// listOwnerTasks returns the tasks of the asset or shot {id}, filtered by
// ?status= and ?assignee=.
func (s *Server) listOwnerTasks(w http.ResponseWriter, r *http.Request, kind db.EntityKind) {
	id, err := pathID(r, "id")
	if err != nil {
		s.HandleError(w, r, err)
		return
	}

	owner := db.EntityRef{Kind: kind, ID: id}
	q := r.URL.Query()
	tasks, err := s.studio.FindTasks(r.Context(), db.TaskFilter{
		Entity:   &owner,
		Status:   q.Get("status"),
		Assignee: q.Get("assignee"),
		Metadata: metadataCriteria(r),
	})
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponse(w, tasks)
}

// createOwnerTask creates a task on the asset or shot {id}.
func (s *Server) createOwnerTask(w http.ResponseWriter, r *http.Request, kind db.EntityKind) {
	id, err := pathID(r, "id")
	if err != nil {
		s.HandleError(w, r, err)
		return
	}

	var in studio.NewTask
	if err := decodeJSON(r, w, &in); err != nil {
		s.HandleError(w, r, err)
		return
	}

	t, err := s.studio.CreateTask(r.Context(), db.EntityRef{Kind: kind, ID: id}, in)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	JSONResponseStatus(w, t, http.StatusCreated)
}

// handleGetTask returns a task by id.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.HandleError(w, r, err)
		return
	}

	t, err := s.studio.GetTaskByID(r.Context(), id)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	if t == nil {
		s.notFound(w, r, "task", strconv.FormatInt(id, 10))
		return
	}
	JSONResponse(w, t)
}

// handleUpdateTask applies a sparse patch and returns the updated task.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.HandleError(w, r, err)
		return
	}

	var patch db.TaskPatch
	if err := decodeJSON(r, w, &patch); err != nil {
		s.HandleError(w, r, err)
		return
	}

	if err := s.studio.UpdateTask(r.Context(), id, patch); err != nil {
		s.HandleError(w, r, err)
		return
	}

	t, err := s.studio.GetTaskByID(r.Context(), id)
	if err != nil {
		s.HandleError(w, r, err)
		return
	}
	if t == nil {
		s.notFound(w, r, "task", strconv.FormatInt(id, 10))
		return
	}
	JSONResponse(w, t)
}
