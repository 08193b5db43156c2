package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// APIError is the standard error response format.
type APIError struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// JSONResponse writes a successful JSON response.
func JSONResponse(w http.ResponseWriter, data any) {
	JSONResponseStatus(w, data, http.StatusOK)
}

// JSONResponseStatus writes a JSON response with a specific status code.
func JSONResponseStatus(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// JSONError writes a simple error response.
func JSONError(w http.ResponseWriter, message string, status int) {
	JSONResponseStatus(w, APIError{Error: message}, status)
}

// HandleError maps GridErrors to their HTTP status; anything else is a 500.
func (s *Server) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var gridErr *grid.GridError
	if errors.As(err, &gridErr) {
		if gridErr.HTTPStatus() >= http.StatusInternalServerError {
			s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		}
		JSONResponseStatus(w, APIError{
			Error:  gridErr.What,
			Code:   string(gridErr.Code),
			Detail: gridErr.Why,
		}, gridErr.HTTPStatus())
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
	JSONError(w, err.Error(), http.StatusInternalServerError)
}

// notFound writes a NOT_FOUND error for kind/key.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request, kind, key string) {
	s.HandleError(w, r, grid.ErrNotFound(kind, key))
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return grid.ErrValidation("request body", err.Error())
	}
	return nil
}

// pathID parses an integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, grid.ErrValidation(name, fmt.Sprintf("%q is not a positive integer id", raw))
	}
	return id, nil
}

// metadataCriteria collects ?metadata.<path>=<value> query parameters.
func metadataCriteria(r *http.Request) map[string]string {
	var criteria map[string]string
	for key, values := range r.URL.Query() {
		path, ok := strings.CutPrefix(key, "metadata.")
		if !ok || path == "" || len(values) == 0 {
			continue
		}
		if criteria == nil {
			criteria = make(map[string]string)
		}
		criteria[path] = values[0]
	}
	return criteria
}
