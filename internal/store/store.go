package store

import (
	"context"

	"github.com/joescharf/boardcfg/internal/models"
)

// Store defines the persistence interface for the workflow configuration.
// Each Replace call is a total overwrite of one table, atomic with respect to
// readers of that table; no cross-table atomicity is provided.
type Store interface {
	GetConfiguration(ctx context.Context) (*models.Configuration, error)

	ReplaceRoles(ctx context.Context, roles []models.Role) ([]models.Role, error)
	ReplaceIssueTypes(ctx context.Context, issueTypes []models.IssueTypeMapping) ([]models.IssueTypeMapping, error)
	ReplaceStatuses(ctx context.Context, statuses []models.StatusMapping) ([]models.StatusMapping, error)
	ReplaceLinkTypes(ctx context.Context, linkTypes []models.LinkTypeMapping) ([]models.LinkTypeMapping, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
