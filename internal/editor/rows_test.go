package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/boardcfg/internal/models"
)

func TestRows_AddUpdateDelete(t *testing.T) {
	src := []models.LinkTypeMapping{{JiraLinkTypeName: "Blocks", LinkCategory: models.LinkCategoryBlocks}}
	rows := NewLinkTypeRows(src)

	i := rows.Add(models.LinkTypeMapping{JiraLinkTypeName: "Relates", LinkCategory: models.LinkCategoryRelated})
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, rows.Len())

	require.NoError(t, rows.Update(0, models.LinkTypeMapping{JiraLinkTypeName: "Blocks", LinkCategory: models.LinkCategoryIgnore}))
	require.NoError(t, rows.Delete(1))

	assert.Equal(t, []models.LinkTypeMapping{{JiraLinkTypeName: "Blocks", LinkCategory: models.LinkCategoryIgnore}}, rows.All())

	// The source slice is never touched.
	assert.Equal(t, models.LinkCategoryBlocks, src[0].LinkCategory)
}

func TestRows_OutOfRange(t *testing.T) {
	rows := NewRoleRows(nil)

	_, err := rows.Get(0)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
	assert.ErrorIs(t, rows.Update(-1, models.Role{}), ErrRowOutOfRange)
	assert.ErrorIs(t, rows.Delete(3), ErrRowOutOfRange)
}

func TestRows_AllReturnsCopy(t *testing.T) {
	rows := NewRoleRows([]models.Role{{Code: "DEV"}})
	all := rows.All()
	all[0].Code = "XXX"

	got, err := rows.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "DEV", got.Code)
}

func TestIssueTypeRows_ClearRoleWhenLeavingSubtask(t *testing.T) {
	rows := NewIssueTypeRows([]models.IssueTypeMapping{
		{JiraTypeName: "Sub-task", BoardCategory: models.BoardCategorySubtask, WorkflowRoleCode: models.StringPtr("DEV")},
	})

	require.NoError(t, SetIssueTypeCategory(rows, 0, models.BoardCategoryStory))
	got, err := rows.Get(0)
	require.NoError(t, err)
	assert.Equal(t, models.BoardCategoryStory, got.BoardCategory)
	assert.Nil(t, got.WorkflowRoleCode)

	// Setting back to SUBTASK does not invent a role.
	require.NoError(t, SetIssueTypeCategory(rows, 0, models.BoardCategorySubtask))
	got, _ = rows.Get(0)
	assert.Nil(t, got.WorkflowRoleCode)

	// A full-row update that moves away from SUBTASK also clears the role.
	require.NoError(t, rows.Update(0, models.IssueTypeMapping{
		JiraTypeName: "Sub-task", BoardCategory: models.BoardCategoryIgnore, WorkflowRoleCode: models.StringPtr("QA"),
	}))
	got, _ = rows.Get(0)
	assert.Nil(t, got.WorkflowRoleCode)

	assert.ErrorIs(t, SetIssueTypeCategory(rows, 5, models.BoardCategoryEpic), ErrRowOutOfRange)
}
