package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/p-arndt/werkbank/protocol"
)

const metadataFileName = "sandbox_metadata.json"

// writeMetadata persists the per-project record under
// <projectsRoot>/<projectID>/sandbox_metadata.json so external tooling can
// discover sandbox projects without the database.
func writeMetadata(projectsRoot string, meta protocol.SandboxMetadata) error {
	dir := filepath.Join(projectsRoot, meta.ProjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// removeMetadata deletes the project's metadata file and its directory when
// empty. A missing file is not an error.
func removeMetadata(projectsRoot, projectID string) error {
	dir := filepath.Join(projectsRoot, projectID)
	if err := os.Remove(filepath.Join(dir, metadataFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove metadata: %w", err)
	}
	// Best effort; the directory may hold other files.
	os.Remove(dir)
	return nil
}

// readMetadata loads the project's metadata record if present.
func readMetadata(projectsRoot, projectID string) (*protocol.SandboxMetadata, error) {
	data, err := os.ReadFile(filepath.Join(projectsRoot, projectID, metadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta protocol.SandboxMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}
