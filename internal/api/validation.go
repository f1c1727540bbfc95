package api

import (
	"fmt"
	"regexp"
)

var (
	// projectIDPattern matches valid project IDs: lowercase letters, numbers, hyphens
	projectIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
)

// ValidateProjectID checks a project identifier for use in paths and
// sandbox labels.
func ValidateProjectID(id string) error {
	if id == "" {
		return fmt.Errorf("project id is required")
	}
	if len(id) < 3 {
		return fmt.Errorf("project id must be at least 3 characters")
	}
	if len(id) > 64 {
		return fmt.Errorf("project id must not exceed 64 characters")
	}
	if !projectIDPattern.MatchString(id) {
		return fmt.Errorf("project id must contain only lowercase letters, numbers, and hyphens, and cannot start or end with a hyphen")
	}
	return nil
}

// validateCreateProjectRequest validates project creation parameters
func validateCreateProjectRequest(req createProjectRequest) error {
	if err := ValidateProjectID(req.ID); err != nil {
		return err
	}
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(req.Name) > 128 {
		return fmt.Errorf("name must not exceed 128 characters")
	}
	if len(req.InitialInstruction) > 32*1024 {
		return fmt.Errorf("initial_instruction must not exceed 32768 characters")
	}
	return nil
}

// validateGenerateRequest validates generation parameters
func validateGenerateRequest(req generateRequest) error {
	if req.Instruction == "" {
		return fmt.Errorf("instruction is required")
	}
	if len(req.Instruction) > 32*1024 {
		return fmt.Errorf("instruction must not exceed 32768 characters")
	}
	return nil
}
