package api

import (
	"net/http"
)

type createProjectRequest struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	InitialInstruction string `json:"initial_instruction,omitempty"`
	Provider           string `json:"provider,omitempty"`
}

type acceptedResponse struct {
	Accepted  bool   `json:"accepted"`
	ProjectID string `json:"project_id"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if err := validateCreateProjectRequest(req); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	s.logger.Info("create project", "project_id", req.ID, "provider", req.Provider)
	if err := s.manager.Create(r.Context(), req.ID, req.Name, req.InitialInstruction, req.Provider); err != nil {
		s.logger.Error("create project", "project_id", req.ID, "error", err)
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true, ProjectID: req.ID})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.manager.List(r.Context())
	if err != nil {
		s.logger.Error("list projects", "error", err)
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	status, err := s.manager.Status(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	s.logger.Info("delete project", "project_id", id)
	if err := s.manager.Delete(r.Context(), id); err != nil {
		s.logger.Error("delete project", "project_id", id, "error", err)
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true, ProjectID: id})
}
