package models

// BoardCategory is how a tracker issue type participates in the board hierarchy.
type BoardCategory string

const (
	BoardCategoryEpic    BoardCategory = "EPIC"
	BoardCategoryStory   BoardCategory = "STORY"
	BoardCategorySubtask BoardCategory = "SUBTASK"
	BoardCategoryIgnore  BoardCategory = "IGNORE"
)

// BoardCategories lists the categories that host status mappings, in board order.
var BoardCategories = []BoardCategory{BoardCategoryEpic, BoardCategoryStory, BoardCategorySubtask}

// Valid reports whether c is a known board category.
func (c BoardCategory) Valid() bool {
	switch c {
	case BoardCategoryEpic, BoardCategoryStory, BoardCategorySubtask, BoardCategoryIgnore:
		return true
	}
	return false
}

// StatusCategory is the coarse lifecycle bucket of a status mapping.
type StatusCategory string

const (
	StatusCategoryNew          StatusCategory = "NEW"
	StatusCategoryRequirements StatusCategory = "REQUIREMENTS"
	StatusCategoryPlanned      StatusCategory = "PLANNED"
	StatusCategoryInProgress   StatusCategory = "IN_PROGRESS"
	StatusCategoryDone         StatusCategory = "DONE"
)

// Valid reports whether c is a known status category.
func (c StatusCategory) Valid() bool {
	switch c {
	case StatusCategoryNew, StatusCategoryRequirements, StatusCategoryPlanned,
		StatusCategoryInProgress, StatusCategoryDone:
		return true
	}
	return false
}

// LinkCategory classifies a tracker link type for dependency tracking.
type LinkCategory string

const (
	LinkCategoryBlocks  LinkCategory = "BLOCKS"
	LinkCategoryRelated LinkCategory = "RELATED"
	LinkCategoryIgnore  LinkCategory = "IGNORE"
)

// Valid reports whether c is a known link category.
func (c LinkCategory) Valid() bool {
	switch c {
	case LinkCategoryBlocks, LinkCategoryRelated, LinkCategoryIgnore:
		return true
	}
	return false
}

// IssueTypeMapping maps a tracker issue type onto a board category.
// WorkflowRoleCode is only meaningful for SUBTASK mappings.
type IssueTypeMapping struct {
	ID               string        `json:"id,omitempty" yaml:"id,omitempty"`
	JiraTypeName     string        `json:"jiraTypeName" yaml:"jiraTypeName"`
	BoardCategory    BoardCategory `json:"boardCategory" yaml:"boardCategory"`
	WorkflowRoleCode *string       `json:"workflowRoleCode,omitempty" yaml:"workflowRoleCode,omitempty"`
}

// SetBoardCategory changes the board category, clearing the role code when
// the mapping stops being a subtask.
func (m *IssueTypeMapping) SetBoardCategory(c BoardCategory) {
	m.BoardCategory = c
	if c != BoardCategorySubtask {
		m.WorkflowRoleCode = nil
	}
}

// StatusMapping maps a tracker status, within one issue category, onto a
// status category with an optional role and a progress weight.
type StatusMapping struct {
	ID               string         `json:"id,omitempty" yaml:"id,omitempty"`
	JiraStatusName   string         `json:"jiraStatusName" yaml:"jiraStatusName"`
	IssueCategory    BoardCategory  `json:"issueCategory" yaml:"issueCategory"`
	StatusCategory   StatusCategory `json:"statusCategory" yaml:"statusCategory"`
	WorkflowRoleCode *string        `json:"workflowRoleCode,omitempty" yaml:"workflowRoleCode,omitempty"`
	SortOrder        int            `json:"sortOrder" yaml:"sortOrder"`
	ScoreWeight      int            `json:"scoreWeight" yaml:"scoreWeight"`
	Color            *string        `json:"color,omitempty" yaml:"color,omitempty"`
}

// StatusKey identifies a status mapping within a configuration.
type StatusKey struct {
	StatusName    string
	IssueCategory BoardCategory
}

// Key returns the (status name, issue category) key of the mapping.
func (m StatusMapping) Key() StatusKey {
	return StatusKey{StatusName: m.JiraStatusName, IssueCategory: m.IssueCategory}
}

// LinkTypeMapping maps a tracker link type onto a dependency category.
type LinkTypeMapping struct {
	ID               string       `json:"id,omitempty" yaml:"id,omitempty"`
	JiraLinkTypeName string       `json:"jiraLinkTypeName" yaml:"jiraLinkTypeName"`
	LinkCategory     LinkCategory `json:"linkCategory" yaml:"linkCategory"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
