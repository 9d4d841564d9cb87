package models

// Role is a named phase of work (analysis, development, testing) that status
// mappings and subtask issue types refer to by Code.
type Role struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Code        string `json:"code" yaml:"code"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Color       string `json:"color" yaml:"color"`
	SortOrder   int    `json:"sortOrder" yaml:"sortOrder"`
	IsDefault   bool   `json:"isDefault" yaml:"isDefault"`
}

// Well-known role codes.
const (
	RoleCodeSA  = "SA"
	RoleCodeDEV = "DEV"
	RoleCodeQA  = "QA"
)
