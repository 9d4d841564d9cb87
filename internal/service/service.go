// Package service exposes the workflow configuration operations: reading and
// replacing tables, validation, tracker fetches and auto-detect.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joescharf/boardcfg/internal/classify"
	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/store"
	"github.com/joescharf/boardcfg/internal/tracker"
	"github.com/joescharf/boardcfg/internal/validate"
)

// ErrNoSource is returned by tracker operations when no tracker is configured.
var ErrNoSource = errors.New("no tracker source configured")

// PersistError reports which table failed during a multi-table commit.
// Tables before it in commit order were already written.
type PersistError struct {
	Table models.Table
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Table, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Service wires the store, the tracker source and the validation rules.
type Service struct {
	store  store.Store
	source tracker.Source
	log    *slog.Logger
}

// New creates a Service. source may be nil when only stored configuration
// is used; logger may be nil to use slog.Default().
func New(s store.Store, source tracker.Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, source: source, log: logger}
}

// GetConfiguration returns the committed configuration.
func (s *Service) GetConfiguration(ctx context.Context) (*models.Configuration, error) {
	return s.store.GetConfiguration(ctx)
}

func (s *Service) ReplaceRoles(ctx context.Context, roles []models.Role) ([]models.Role, error) {
	stored, err := s.store.ReplaceRoles(ctx, roles)
	if err != nil {
		return nil, err
	}
	s.log.Info("replaced table", "table", models.TableRoles, "rows", len(stored))
	return stored, nil
}

func (s *Service) ReplaceIssueTypes(ctx context.Context, issueTypes []models.IssueTypeMapping) ([]models.IssueTypeMapping, error) {
	stored, err := s.store.ReplaceIssueTypes(ctx, issueTypes)
	if err != nil {
		return nil, err
	}
	s.log.Info("replaced table", "table", models.TableIssueTypes, "rows", len(stored))
	return stored, nil
}

func (s *Service) ReplaceStatuses(ctx context.Context, statuses []models.StatusMapping) ([]models.StatusMapping, error) {
	stored, err := s.store.ReplaceStatuses(ctx, statuses)
	if err != nil {
		return nil, err
	}
	s.log.Info("replaced table", "table", models.TableStatuses, "rows", len(stored))
	return stored, nil
}

func (s *Service) ReplaceLinkTypes(ctx context.Context, linkTypes []models.LinkTypeMapping) ([]models.LinkTypeMapping, error) {
	stored, err := s.store.ReplaceLinkTypes(ctx, linkTypes)
	if err != nil {
		return nil, err
	}
	s.log.Info("replaced table", "table", models.TableLinkTypes, "rows", len(stored))
	return stored, nil
}

// Validate checks the committed configuration. It never fails: if the
// configuration cannot be read, a synthetic invalid result is returned.
func (s *Service) Validate(ctx context.Context) models.ValidationResult {
	cfg, err := s.store.GetConfiguration(ctx)
	if err != nil {
		s.log.Warn("validation could not read configuration", "error", err)
		return validate.Failed(err)
	}
	return validate.Configuration(*cfg)
}

// Fetch reads the three metadata lists from the tracker concurrently. Any
// single failure fails the whole fetch; no partial result is returned.
func (s *Service) Fetch(ctx context.Context) (models.TrackerMetadata, error) {
	if s.source == nil {
		return models.TrackerMetadata{}, ErrNoSource
	}

	var meta models.TrackerMetadata
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		types, err := s.source.ListIssueTypes(gctx)
		if err != nil {
			return fmt.Errorf("list issue types: %w", err)
		}
		meta.IssueTypes = types
		return nil
	})
	g.Go(func() error {
		statuses, err := s.source.ListStatusesByIssueType(gctx)
		if err != nil {
			return fmt.Errorf("list statuses: %w", err)
		}
		meta.Statuses = statuses
		return nil
	})
	g.Go(func() error {
		links, err := s.source.ListLinkTypes(gctx)
		if err != nil {
			return fmt.Errorf("list link types: %w", err)
		}
		meta.LinkTypes = links
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.TrackerMetadata{}, fmt.Errorf("fetch tracker metadata: %w", err)
	}

	s.log.Debug("fetched tracker metadata",
		"issue_types", len(meta.IssueTypes),
		"status_groups", len(meta.Statuses),
		"link_types", len(meta.LinkTypes))
	return meta, nil
}

// Commit persists all four tables in commit order: roles, issue types,
// statuses, link types. It stops at the first failure and returns a
// *PersistError; tables already written are not rolled back.
func (s *Service) Commit(ctx context.Context, cfg models.Configuration) (models.Configuration, error) {
	var out models.Configuration
	for _, table := range models.CommitOrder {
		var err error
		switch table {
		case models.TableRoles:
			out.Roles, err = s.ReplaceRoles(ctx, cfg.Roles)
		case models.TableIssueTypes:
			out.IssueTypes, err = s.ReplaceIssueTypes(ctx, cfg.IssueTypes)
		case models.TableStatuses:
			out.Statuses, err = s.ReplaceStatuses(ctx, cfg.Statuses)
		case models.TableLinkTypes:
			out.LinkTypes, err = s.ReplaceLinkTypes(ctx, cfg.LinkTypes)
		}
		if err != nil {
			s.log.Error("commit stopped; configuration may be partially updated", "table", table, "error", err)
			return out, &PersistError{Table: table, Err: err}
		}
	}
	return out, nil
}

// RunAutoDetect fetches tracker metadata, classifies it and commits all four
// tables without any intermediate edit.
func (s *Service) RunAutoDetect(ctx context.Context) (models.AutoDetectResult, error) {
	meta, err := s.Fetch(ctx)
	if err != nil {
		return models.AutoDetectResult{}, err
	}

	suggestion := classify.Suggest(meta)
	stored, err := s.Commit(ctx, suggestion.Config)
	if err != nil {
		return models.AutoDetectResult{}, err
	}

	warnings := suggestion.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	result := models.AutoDetectResult{
		IssueTypeCount:     len(stored.IssueTypes),
		RoleCount:          len(stored.Roles),
		StatusMappingCount: len(stored.Statuses),
		LinkTypeCount:      len(stored.LinkTypes),
		Warnings:           warnings,
	}
	s.log.Info("auto-detect complete",
		"issue_types", result.IssueTypeCount,
		"roles", result.RoleCount,
		"statuses", result.StatusMappingCount,
		"link_types", result.LinkTypeCount,
		"warnings", len(result.Warnings))
	return result, nil
}
