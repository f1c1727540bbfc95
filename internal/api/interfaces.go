package api

import (
	"context"

	"github.com/p-arndt/werkbank/internal/lifecycle"
	"github.com/p-arndt/werkbank/internal/store"
)

// ProjectService abstracts the lifecycle operations needed by API handlers.
type ProjectService interface {
	Create(ctx context.Context, id, name, initialInstruction, providerType string) error
	Generate(ctx context.Context, id, instruction, model, providerType string) error
	CancelGeneration(id string) error
	StartPreview(ctx context.Context, id string) error
	StopPreview(ctx context.Context, id string) error
	PreviewStatus(ctx context.Context, id string) (*lifecycle.PreviewStatus, error)
	PreviewLogs(ctx context.Context, id string, lines int) (*lifecycle.PreviewLogs, error)
	Delete(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (*lifecycle.ProjectStatus, error)
	List(ctx context.Context) ([]*store.Project, error)
}
