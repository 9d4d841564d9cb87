package service

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/joescharf/boardcfg/internal/models"
)

// mockStore implements store.Store in memory with optional error injection.
type mockStore struct {
	cfg models.Configuration

	// Order of replaced tables, for verification.
	replaced []models.Table

	getErr   error
	failOn   models.Table
	failWith error
}

func (m *mockStore) fail(table models.Table) error {
	if m.failOn == table {
		return m.failWith
	}
	m.replaced = append(m.replaced, table)
	return nil
}

func (m *mockStore) GetConfiguration(_ context.Context) (*models.Configuration, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	cfg := m.cfg.Clone()
	return &cfg, nil
}

func (m *mockStore) ReplaceRoles(_ context.Context, roles []models.Role) ([]models.Role, error) {
	if err := m.fail(models.TableRoles); err != nil {
		return nil, err
	}
	m.cfg.Roles = append([]models.Role(nil), roles...)
	return roles, nil
}

func (m *mockStore) ReplaceIssueTypes(_ context.Context, issueTypes []models.IssueTypeMapping) ([]models.IssueTypeMapping, error) {
	if err := m.fail(models.TableIssueTypes); err != nil {
		return nil, err
	}
	m.cfg.IssueTypes = append([]models.IssueTypeMapping(nil), issueTypes...)
	return issueTypes, nil
}

func (m *mockStore) ReplaceStatuses(_ context.Context, statuses []models.StatusMapping) ([]models.StatusMapping, error) {
	if err := m.fail(models.TableStatuses); err != nil {
		return nil, err
	}
	m.cfg.Statuses = append([]models.StatusMapping(nil), statuses...)
	return statuses, nil
}

func (m *mockStore) ReplaceLinkTypes(_ context.Context, linkTypes []models.LinkTypeMapping) ([]models.LinkTypeMapping, error) {
	if err := m.fail(models.TableLinkTypes); err != nil {
		return nil, err
	}
	m.cfg.LinkTypes = append([]models.LinkTypeMapping(nil), linkTypes...)
	return linkTypes, nil
}

func (m *mockStore) Migrate(_ context.Context) error { return nil }
func (m *mockStore) Close() error                    { return nil }

// mockSource implements tracker.Source from fixed metadata.
type mockSource struct {
	meta models.TrackerMetadata

	issueTypesErr error
	statusesErr   error
	linkTypesErr  error

	calls atomic.Int32
}

func (m *mockSource) ListIssueTypes(_ context.Context) ([]models.TrackerIssueType, error) {
	m.calls.Add(1)
	return m.meta.IssueTypes, m.issueTypesErr
}

func (m *mockSource) ListStatusesByIssueType(_ context.Context) ([]models.IssueTypeStatuses, error) {
	m.calls.Add(1)
	return m.meta.Statuses, m.statusesErr
}

func (m *mockSource) ListLinkTypes(_ context.Context) ([]models.TrackerLinkType, error) {
	m.calls.Add(1)
	return m.meta.LinkTypes, m.linkTypesErr
}

var errBoom = errors.New("boom")

func sampleMetadata() models.TrackerMetadata {
	return models.TrackerMetadata{
		IssueTypes: []models.TrackerIssueType{
			{ID: "1", Name: "Epic"},
			{ID: "2", Name: "Story"},
			{ID: "3", Name: "Sub-task Analytics", Subtask: true},
			{ID: "4", Name: "Sub-task", Subtask: true},
		},
		Statuses: []models.IssueTypeStatuses{
			{IssueTypeName: "Epic", Statuses: []models.TrackerStatus{
				{Name: "To Do", Category: models.TrackerCategoryNew},
				{Name: "Done", Category: models.TrackerCategoryDone},
			}},
			{IssueTypeName: "Story", Statuses: []models.TrackerStatus{
				{Name: "To Do", Category: models.TrackerCategoryNew},
				{Name: "In Progress", Category: models.TrackerCategoryIndeterminate},
				{Name: "Done", Category: models.TrackerCategoryDone},
			}},
		},
		LinkTypes: []models.TrackerLinkType{
			{ID: "1", Name: "Blocks"},
			{ID: "2", Name: "Cloners"},
		},
	}
}
