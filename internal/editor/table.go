package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/joescharf/boardcfg/internal/models"
)

// ErrNotLoaded is returned when a table is edited or saved before Load.
var ErrNotLoaded = errors.New("table not loaded")

// Backend is the subset of the configuration service the editor needs.
type Backend interface {
	GetConfiguration(ctx context.Context) (*models.Configuration, error)
	ReplaceRoles(ctx context.Context, roles []models.Role) ([]models.Role, error)
	ReplaceIssueTypes(ctx context.Context, issueTypes []models.IssueTypeMapping) ([]models.IssueTypeMapping, error)
	ReplaceStatuses(ctx context.Context, statuses []models.StatusMapping) ([]models.StatusMapping, error)
	ReplaceLinkTypes(ctx context.Context, linkTypes []models.LinkTypeMapping) ([]models.LinkTypeMapping, error)
}

// Table edits one configuration table outside the wizard: load it, change
// rows locally, then save it. Saving replaces only this table.
type Table[T any] struct {
	name      models.Table
	normalize func(*T)
	get       func(context.Context) (*models.Configuration, error)
	pick      func(*models.Configuration) []T
	replace   func(context.Context, []T) ([]T, error)

	rows  *Rows[T]
	dirty bool
}

// Name returns the table being edited.
func (t *Table[T]) Name() models.Table { return t.name }

// Load reads the committed table, discarding any local edits.
func (t *Table[T]) Load(ctx context.Context) error {
	cfg, err := t.get(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", t.name, err)
	}
	t.rows = NewRows(t.pick(cfg), t.normalize)
	t.dirty = false
	return nil
}

// All returns a copy of the local rows.
func (t *Table[T]) All() ([]T, error) {
	if t.rows == nil {
		return nil, ErrNotLoaded
	}
	return t.rows.All(), nil
}

// Edit applies fn to the local rows and marks the table dirty.
func (t *Table[T]) Edit(fn func(*Rows[T]) error) error {
	if t.rows == nil {
		return ErrNotLoaded
	}
	if err := fn(t.rows); err != nil {
		return err
	}
	t.dirty = true
	return nil
}

// Dirty reports whether there are unsaved local edits.
func (t *Table[T]) Dirty() bool { return t.dirty }

// Save replaces the committed table with the local rows.
func (t *Table[T]) Save(ctx context.Context) ([]T, error) {
	if t.rows == nil {
		return nil, ErrNotLoaded
	}
	stored, err := t.replace(ctx, t.rows.All())
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", t.name, err)
	}
	t.rows = NewRows(stored, t.normalize)
	t.dirty = false
	return stored, nil
}

// RolesTable returns an editor for the roles table.
func RolesTable(b Backend) *Table[models.Role] {
	return &Table[models.Role]{
		name:    models.TableRoles,
		get:     b.GetConfiguration,
		pick:    func(c *models.Configuration) []models.Role { return c.Roles },
		replace: b.ReplaceRoles,
	}
}

// IssueTypesTable returns an editor for the issue type mappings.
func IssueTypesTable(b Backend) *Table[models.IssueTypeMapping] {
	return &Table[models.IssueTypeMapping]{
		name:      models.TableIssueTypes,
		normalize: NormalizeIssueType,
		get:       b.GetConfiguration,
		pick:      func(c *models.Configuration) []models.IssueTypeMapping { return c.IssueTypes },
		replace:   b.ReplaceIssueTypes,
	}
}

// StatusesTable returns an editor for the status mappings.
func StatusesTable(b Backend) *Table[models.StatusMapping] {
	return &Table[models.StatusMapping]{
		name:    models.TableStatuses,
		get:     b.GetConfiguration,
		pick:    func(c *models.Configuration) []models.StatusMapping { return c.Statuses },
		replace: b.ReplaceStatuses,
	}
}

// LinkTypesTable returns an editor for the link type mappings.
func LinkTypesTable(b Backend) *Table[models.LinkTypeMapping] {
	return &Table[models.LinkTypeMapping]{
		name:    models.TableLinkTypes,
		get:     b.GetConfiguration,
		pick:    func(c *models.Configuration) []models.LinkTypeMapping { return c.LinkTypes },
		replace: b.ReplaceLinkTypes,
	}
}
