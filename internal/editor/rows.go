// Package editor provides local, uncommitted editing of configuration tables.
package editor

import (
	"errors"
	"fmt"

	"github.com/joescharf/boardcfg/internal/models"
)

// ErrRowOutOfRange is returned when an index does not address a row.
var ErrRowOutOfRange = errors.New("row index out of range")

// Rows is an ordered, locally editable list of table rows. The normalize
// hook, if set, runs on every row that enters the list.
type Rows[T any] struct {
	items     []T
	normalize func(*T)
}

// NewRows copies items into a new editable list.
func NewRows[T any](items []T, normalize func(*T)) *Rows[T] {
	r := &Rows[T]{normalize: normalize}
	r.Replace(items)
	return r
}

// All returns a copy of the rows.
func (r *Rows[T]) All() []T {
	return append(make([]T, 0, len(r.items)), r.items...)
}

// Len returns the number of rows.
func (r *Rows[T]) Len() int { return len(r.items) }

// Get returns the row at i.
func (r *Rows[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(r.items) {
		return zero, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	return r.items[i], nil
}

// Add appends row and returns its index.
func (r *Rows[T]) Add(row T) int {
	r.apply(&row)
	r.items = append(r.items, row)
	return len(r.items) - 1
}

// Update overwrites the row at i.
func (r *Rows[T]) Update(i int, row T) error {
	if i < 0 || i >= len(r.items) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	r.apply(&row)
	r.items[i] = row
	return nil
}

// Delete removes the row at i, keeping the order of the rest.
func (r *Rows[T]) Delete(i int) error {
	if i < 0 || i >= len(r.items) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// Replace swaps in a copy of items.
func (r *Rows[T]) Replace(items []T) {
	r.items = make([]T, 0, len(items))
	for _, row := range items {
		r.apply(&row)
		r.items = append(r.items, row)
	}
}

func (r *Rows[T]) apply(row *T) {
	if r.normalize != nil {
		r.normalize(row)
	}
}

// NormalizeIssueType enforces that only SUBTASK mappings carry a role.
func NormalizeIssueType(m *models.IssueTypeMapping) {
	m.SetBoardCategory(m.BoardCategory)
}

// NewRoleRows, NewIssueTypeRows, NewStatusRows and NewLinkTypeRows build
// editable lists with the normalization each table needs.
func NewRoleRows(items []models.Role) *Rows[models.Role] {
	return NewRows(items, nil)
}

func NewIssueTypeRows(items []models.IssueTypeMapping) *Rows[models.IssueTypeMapping] {
	return NewRows(items, NormalizeIssueType)
}

func NewStatusRows(items []models.StatusMapping) *Rows[models.StatusMapping] {
	return NewRows(items, nil)
}

func NewLinkTypeRows(items []models.LinkTypeMapping) *Rows[models.LinkTypeMapping] {
	return NewRows(items, nil)
}

// SetIssueTypeCategory changes the board category of the issue type at i,
// clearing its role when it stops being a SUBTASK.
func SetIssueTypeCategory(rows *Rows[models.IssueTypeMapping], i int, c models.BoardCategory) error {
	row, err := rows.Get(i)
	if err != nil {
		return err
	}
	row.SetBoardCategory(c)
	return rows.Update(i, row)
}
