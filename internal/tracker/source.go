// Package tracker reads taxonomy metadata (issue types, statuses, link types)
// from an issue tracker. All operations are read-only.
package tracker

import (
	"context"

	"github.com/joescharf/boardcfg/internal/models"
)

// Source supplies the three tracker metadata lists.
type Source interface {
	ListIssueTypes(ctx context.Context) ([]models.TrackerIssueType, error)
	ListStatusesByIssueType(ctx context.Context) ([]models.IssueTypeStatuses, error)
	ListLinkTypes(ctx context.Context) ([]models.TrackerLinkType, error)
}

// ParseCategory normalizes a tracker status category key.
func ParseCategory(key string) models.TrackerCategory {
	return models.TrackerCategory(key).Normalize()
}
