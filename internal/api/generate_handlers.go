package api

import (
	"net/http"
)

type generateRequest struct {
	Instruction string `json:"instruction"`
	Model       string `json:"model,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	var req generateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if err := validateGenerateRequest(req); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	s.logger.Info("generate", "project_id", id, "model", req.Model)
	if err := s.manager.Generate(r.Context(), id, req.Instruction, req.Model, req.Provider); err != nil {
		s.logger.Error("generate", "project_id", id, "error", err)
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true, ProjectID: id})
}

func (s *Server) handleCancelGeneration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	s.logger.Info("cancel generation", "project_id", id)
	if err := s.manager.CancelGeneration(id); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}
