package editor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTable_EditAndSaveOnlyTouchesOneTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRoles(ctx, []models.Role{{Code: "DEV", DisplayName: "Development", IsDefault: true}})
	require.NoError(t, err)
	_, err = s.ReplaceLinkTypes(ctx, []models.LinkTypeMapping{{JiraLinkTypeName: "Blocks", LinkCategory: models.LinkCategoryBlocks}})
	require.NoError(t, err)

	roles := RolesTable(s)
	require.NoError(t, roles.Load(ctx))
	assert.False(t, roles.Dirty())

	err = roles.Edit(func(r *Rows[models.Role]) error {
		r.Add(models.Role{Code: "QA", DisplayName: "Testing", SortOrder: 3})
		return nil
	})
	require.NoError(t, err)
	assert.True(t, roles.Dirty())

	// Nothing is written before Save.
	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.Len(t, cfg.Roles, 1)

	stored, err := roles.Save(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.False(t, roles.Dirty())

	cfg, err = s.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.Len(t, cfg.Roles, 2)
	assert.Len(t, cfg.LinkTypes, 1)
}

func TestTable_IssueTypeNormalization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceIssueTypes(ctx, []models.IssueTypeMapping{
		{JiraTypeName: "Sub-task", BoardCategory: models.BoardCategorySubtask, WorkflowRoleCode: models.StringPtr("DEV")},
	})
	require.NoError(t, err)

	tbl := IssueTypesTable(s)
	require.NoError(t, tbl.Load(ctx))
	require.NoError(t, tbl.Edit(func(r *Rows[models.IssueTypeMapping]) error {
		return SetIssueTypeCategory(r, 0, models.BoardCategoryIgnore)
	}))
	_, err = tbl.Save(ctx)
	require.NoError(t, err)

	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.IssueTypes, 1)
	assert.Equal(t, models.BoardCategoryIgnore, cfg.IssueTypes[0].BoardCategory)
	assert.Nil(t, cfg.IssueTypes[0].WorkflowRoleCode)
}

func TestTable_NotLoaded(t *testing.T) {
	tbl := StatusesTable(newTestStore(t))

	_, err := tbl.All()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, tbl.Edit(func(*Rows[models.StatusMapping]) error { return nil }), ErrNotLoaded)
	_, err = tbl.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestTable_FailedEditIsNotDirty(t *testing.T) {
	tbl := LinkTypesTable(newTestStore(t))
	require.NoError(t, tbl.Load(context.Background()))

	errEdit := errors.New("rejected")
	err := tbl.Edit(func(*Rows[models.LinkTypeMapping]) error { return errEdit })
	assert.ErrorIs(t, err, errEdit)
	assert.False(t, tbl.Dirty())
	assert.Equal(t, models.TableLinkTypes, tbl.Name())
}
