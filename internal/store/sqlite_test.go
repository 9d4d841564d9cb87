package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/boardcfg/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestGetConfiguration_Empty(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.GetConfiguration(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cfg.Roles)
	assert.Empty(t, cfg.IssueTypes)
	assert.Empty(t, cfg.Statuses)
	assert.Empty(t, cfg.LinkTypes)
}

func TestReplaceRoles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.ReplaceRoles(ctx, []models.Role{
		{Code: "QA", DisplayName: "Testing", Color: "#FF991F", SortOrder: 3},
		{Code: "DEV", DisplayName: "Development", Color: "#36B37E", SortOrder: 2, IsDefault: true},
		{ID: "fixed-id", Code: "SA", DisplayName: "Analysis", Color: "#0065FF", SortOrder: 1},
	})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.NotEmpty(t, stored[0].ID)
	assert.Equal(t, "fixed-id", stored[2].ID)

	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.Roles, 3)
	assert.Equal(t, "SA", cfg.Roles[0].Code)
	assert.Equal(t, "fixed-id", cfg.Roles[0].ID)
	assert.Equal(t, "DEV", cfg.Roles[1].Code)
	assert.True(t, cfg.Roles[1].IsDefault)
	assert.Equal(t, "#36B37E", cfg.Roles[1].Color)
	assert.Equal(t, "QA", cfg.Roles[2].Code)

	// Total overwrite, not a merge.
	_, err = s.ReplaceRoles(ctx, []models.Role{{Code: "OPS", DisplayName: "Operations"}})
	require.NoError(t, err)

	cfg, err = s.GetConfiguration(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.Roles, 1)
	assert.Equal(t, "OPS", cfg.Roles[0].Code)
}

func TestReplaceIssueTypes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceIssueTypes(ctx, []models.IssueTypeMapping{
		{JiraTypeName: "Story", BoardCategory: models.BoardCategoryStory},
		{JiraTypeName: "Sub-task", BoardCategory: models.BoardCategorySubtask, WorkflowRoleCode: models.StringPtr("DEV")},
	})
	require.NoError(t, err)

	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.IssueTypes, 2)
	assert.Equal(t, "Story", cfg.IssueTypes[0].JiraTypeName)
	assert.Nil(t, cfg.IssueTypes[0].WorkflowRoleCode)
	assert.Equal(t, models.BoardCategorySubtask, cfg.IssueTypes[1].BoardCategory)
	assert.Equal(t, "DEV", models.StringValue(cfg.IssueTypes[1].WorkflowRoleCode))
}

func TestReplaceStatuses_SameNameAcrossCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceStatuses(ctx, []models.StatusMapping{
		{JiraStatusName: "In Progress", IssueCategory: models.BoardCategorySubtask, StatusCategory: models.StatusCategoryInProgress, WorkflowRoleCode: models.StringPtr("DEV"), SortOrder: 2, ScoreWeight: 50},
		{JiraStatusName: "In Progress", IssueCategory: models.BoardCategoryStory, StatusCategory: models.StatusCategoryInProgress, SortOrder: 1, ScoreWeight: 60, Color: models.StringPtr("#abcdef")},
	})
	require.NoError(t, err)

	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.Statuses, 2)

	story := cfg.Statuses[0]
	assert.Equal(t, models.BoardCategoryStory, story.IssueCategory)
	assert.Equal(t, 60, story.ScoreWeight)
	assert.Equal(t, "#abcdef", models.StringValue(story.Color))
	assert.Nil(t, story.WorkflowRoleCode)

	sub := cfg.Statuses[1]
	assert.Equal(t, models.BoardCategorySubtask, sub.IssueCategory)
	assert.Equal(t, "DEV", models.StringValue(sub.WorkflowRoleCode))
	assert.Nil(t, sub.Color)
}

func TestReplaceStatuses_DuplicateKeyKeepsPreviousTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceStatuses(ctx, []models.StatusMapping{
		{JiraStatusName: "Done", IssueCategory: models.BoardCategoryStory, StatusCategory: models.StatusCategoryDone, ScoreWeight: 100},
	})
	require.NoError(t, err)

	_, err = s.ReplaceStatuses(ctx, []models.StatusMapping{
		{JiraStatusName: "Open", IssueCategory: models.BoardCategoryStory, StatusCategory: models.StatusCategoryNew},
		{JiraStatusName: "Open", IssueCategory: models.BoardCategoryStory, StatusCategory: models.StatusCategoryNew},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace status_mappings")

	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.Statuses, 1)
	assert.Equal(t, "Done", cfg.Statuses[0].JiraStatusName)
}

func TestReplaceLinkTypes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.ReplaceLinkTypes(ctx, []models.LinkTypeMapping{
		{JiraLinkTypeName: "Relates", LinkCategory: models.LinkCategoryRelated},
		{JiraLinkTypeName: "Blocks", LinkCategory: models.LinkCategoryBlocks},
	})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.LinkTypes, 2)
	assert.Equal(t, "Blocks", cfg.LinkTypes[0].JiraLinkTypeName)
	assert.Equal(t, models.LinkCategoryBlocks, cfg.LinkTypes[0].LinkCategory)
}

func TestReplace_LeavesOtherTablesAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRoles(ctx, []models.Role{{Code: "DEV", DisplayName: "Development"}})
	require.NoError(t, err)
	_, err = s.ReplaceLinkTypes(ctx, []models.LinkTypeMapping{{JiraLinkTypeName: "Blocks", LinkCategory: models.LinkCategoryBlocks}})
	require.NoError(t, err)

	_, err = s.ReplaceIssueTypes(ctx, []models.IssueTypeMapping{{JiraTypeName: "Epic", BoardCategory: models.BoardCategoryEpic}})
	require.NoError(t, err)
	_, err = s.ReplaceIssueTypes(ctx, nil)
	require.NoError(t, err)

	cfg, err := s.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.Len(t, cfg.Roles, 1)
	assert.Empty(t, cfg.IssueTypes)
	assert.Len(t, cfg.LinkTypes, 1)
}
