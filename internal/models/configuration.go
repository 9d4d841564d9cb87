package models

// Configuration is the full workflow configuration: the four mapping tables.
type Configuration struct {
	Roles      []Role             `json:"roles" yaml:"roles"`
	IssueTypes []IssueTypeMapping `json:"issueTypes" yaml:"issueTypes"`
	Statuses   []StatusMapping    `json:"statuses" yaml:"statuses"`
	LinkTypes  []LinkTypeMapping  `json:"linkTypes" yaml:"linkTypes"`
}

// Clone returns a deep copy, including pointer fields.
func (c Configuration) Clone() Configuration {
	out := Configuration{
		Roles:      append([]Role(nil), c.Roles...),
		IssueTypes: make([]IssueTypeMapping, len(c.IssueTypes)),
		Statuses:   make([]StatusMapping, len(c.Statuses)),
		LinkTypes:  append([]LinkTypeMapping(nil), c.LinkTypes...),
	}
	for i, it := range c.IssueTypes {
		it.WorkflowRoleCode = clonePtr(it.WorkflowRoleCode)
		out.IssueTypes[i] = it
	}
	for i, st := range c.Statuses {
		st.WorkflowRoleCode = clonePtr(st.WorkflowRoleCode)
		st.Color = clonePtr(st.Color)
		out.Statuses[i] = st
	}
	return out
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Table names one of the four mapping tables.
type Table string

const (
	TableRoles      Table = "roles"
	TableIssueTypes Table = "issue_types"
	TableStatuses   Table = "statuses"
	TableLinkTypes  Table = "link_types"
)

// CommitOrder is the order tables must be persisted in: later tables may
// reference role codes established by earlier ones.
var CommitOrder = []Table{TableRoles, TableIssueTypes, TableStatuses, TableLinkTypes}

// ValidationResult reports structural problems in a configuration.
// Valid is true if and only if Errors is empty.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AutoDetectResult summarizes a one-shot auto-detect run.
type AutoDetectResult struct {
	IssueTypeCount     int      `json:"issueTypeCount"`
	RoleCount          int      `json:"roleCount"`
	StatusMappingCount int      `json:"statusMappingCount"`
	LinkTypeCount      int      `json:"linkTypeCount"`
	Warnings           []string `json:"warnings"`
}
