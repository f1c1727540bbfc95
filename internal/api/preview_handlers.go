package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleStartPreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	s.logger.Info("start preview", "project_id", id)
	if err := s.manager.StartPreview(r.Context(), id); err != nil {
		s.logger.Error("start preview", "project_id", id, "error", err)
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true, ProjectID: id})
}

func (s *Server) handleStopPreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	if err := s.manager.StopPreview(r.Context(), id); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"stopped": true})
}

func (s *Server) handlePreviewStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	status, err := s.manager.PreviewStatus(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handlePreviewLogs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	lines := 100
	if raw := r.URL.Query().Get("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 10000 {
			writeValidationError(w, "lines must be an integer between 1 and 10000", nil)
			return
		}
		lines = n
	}

	logs, err := s.manager.PreviewLogs(r.Context(), id, lines)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
