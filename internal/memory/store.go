package memory

import (
	"context"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// Store persists review lessons and retrieves them by semantic similarity.
//
// Add scrubs the lesson text of secrets and PII before it is persisted.
// Search returns stored texts ranked most-similar first; it returns an
// empty slice when nothing is stored. Callers are expected to treat any
// Search error as "no lessons available" rather than failing.
type Store interface {
	Add(ctx context.Context, text, category string) (string, error)
	Search(ctx context.Context, query string, topK int) ([]string, error)
	List(ctx context.Context) ([]*models.Lesson, error)
	Migrate(ctx context.Context) error
	Close() error
}
