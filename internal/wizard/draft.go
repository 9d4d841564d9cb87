package wizard

import (
	"github.com/joescharf/boardcfg/internal/classify"
	"github.com/joescharf/boardcfg/internal/editor"
	"github.com/joescharf/boardcfg/internal/models"
)

// Draft is the wizard's uncommitted copy of the configuration.
type Draft struct {
	Metadata   models.TrackerMetadata
	Roles      *editor.Rows[models.Role]
	IssueTypes *editor.Rows[models.IssueTypeMapping]
	Statuses   *editor.Rows[models.StatusMapping]
	LinkTypes  *editor.Rows[models.LinkTypeMapping]
	Warnings   []string
}

func newDraft(meta models.TrackerMetadata, s classify.Suggestion) *Draft {
	return &Draft{
		Metadata:   meta,
		Roles:      editor.NewRoleRows(s.Config.Roles),
		IssueTypes: editor.NewIssueTypeRows(s.Config.IssueTypes),
		Statuses:   editor.NewStatusRows(s.Config.Statuses),
		LinkTypes:  editor.NewLinkTypeRows(s.Config.LinkTypes),
		Warnings:   append([]string{}, s.Warnings...),
	}
}

// Config returns a copy of the draft as a configuration.
func (d *Draft) Config() models.Configuration {
	return models.Configuration{
		Roles:      d.Roles.All(),
		IssueTypes: d.IssueTypes.All(),
		Statuses:   d.Statuses.All(),
		LinkTypes:  d.LinkTypes.All(),
	}
}

// Summary is the read-only review of a draft.
type Summary struct {
	Roles      int      `json:"roles"`
	IssueTypes int      `json:"issueTypes"`
	Statuses   int      `json:"statuses"`
	LinkTypes  int      `json:"linkTypes"`
	Warnings   []string `json:"warnings"`
}

func (d *Draft) summary() Summary {
	return Summary{
		Roles:      d.Roles.Len(),
		IssueTypes: d.IssueTypes.Len(),
		Statuses:   d.Statuses.Len(),
		LinkTypes:  d.LinkTypes.Len(),
		Warnings:   append([]string{}, d.Warnings...),
	}
}
