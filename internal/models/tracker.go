package models

import "strings"

// TrackerCategory is the tracker's own coarse status category.
type TrackerCategory string

const (
	TrackerCategoryNew           TrackerCategory = "new"
	TrackerCategoryIndeterminate TrackerCategory = "indeterminate"
	TrackerCategoryDone          TrackerCategory = "done"
	TrackerCategoryUndefined     TrackerCategory = "undefined"
)

// Normalize maps the spellings trackers use for a status category onto the
// four known values. Anything unrecognised is undefined.
func (c TrackerCategory) Normalize() TrackerCategory {
	switch strings.ToLower(strings.TrimSpace(string(c))) {
	case "new", "to do", "todo":
		return TrackerCategoryNew
	case "indeterminate", "in-progress", "in_progress", "in progress":
		return TrackerCategoryIndeterminate
	case "done", "complete":
		return TrackerCategoryDone
	default:
		return TrackerCategoryUndefined
	}
}

// TrackerIssueType is an issue type as reported by the tracker.
type TrackerIssueType struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Subtask     bool   `json:"subtask" yaml:"subtask"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TrackerStatus is a workflow status as reported by the tracker.
type TrackerStatus struct {
	Name             string          `json:"name" yaml:"name"`
	UntranslatedName string          `json:"untranslatedName,omitempty" yaml:"untranslatedName,omitempty"`
	Category         TrackerCategory `json:"category" yaml:"category"`
}

// IssueTypeStatuses lists the statuses available to one issue type.
type IssueTypeStatuses struct {
	IssueTypeName string          `json:"issueTypeName" yaml:"issueTypeName"`
	Statuses      []TrackerStatus `json:"statuses" yaml:"statuses"`
}

// TrackerLinkType is an issue link type as reported by the tracker.
type TrackerLinkType struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Inward  string `json:"inward" yaml:"inward"`
	Outward string `json:"outward" yaml:"outward"`
}

// TrackerMetadata bundles the three metadata lists fetched from the tracker.
type TrackerMetadata struct {
	IssueTypes []TrackerIssueType  `json:"issueTypes" yaml:"issueTypes"`
	Statuses   []IssueTypeStatuses `json:"statuses" yaml:"statuses"`
	LinkTypes  []TrackerLinkType   `json:"linkTypes" yaml:"linkTypes"`
}
