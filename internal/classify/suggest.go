package classify

import (
	"fmt"

	"github.com/joescharf/boardcfg/internal/models"
)

// Suggestion is the complete suggested configuration for one metadata fetch.
type Suggestion struct {
	Config   models.Configuration
	Warnings []string
}

// Suggest runs the four suggestion functions in dependency order: issue
// types first, then roles and statuses (both derived from suggested issue
// types), then link types.
func Suggest(meta models.TrackerMetadata) Suggestion {
	issueTypes := SuggestIssueTypes(meta.IssueTypes)
	roles := SuggestRolesFromIssueTypes(issueTypes)
	statuses := SuggestStatuses(meta.Statuses, issueTypes)
	linkTypes := SuggestLinkTypes(meta.LinkTypes)

	cfg := models.Configuration{
		Roles:      roles,
		IssueTypes: issueTypes,
		Statuses:   statuses,
		LinkTypes:  linkTypes,
	}
	return Suggestion{Config: cfg, Warnings: suggestionWarnings(cfg)}
}

func suggestionWarnings(cfg models.Configuration) []string {
	var warnings []string

	present := make(map[models.BoardCategory]bool)
	for _, it := range cfg.IssueTypes {
		present[it.BoardCategory] = true
	}
	for _, c := range models.BoardCategories {
		if !present[c] {
			warnings = append(warnings, fmt.Sprintf("no issue type was classified as %s", c))
		}
	}

	blocks := false
	for _, lt := range cfg.LinkTypes {
		if lt.LinkCategory == models.LinkCategoryBlocks {
			blocks = true
			break
		}
	}
	if len(cfg.LinkTypes) > 0 && !blocks {
		warnings = append(warnings, "no link type was classified as BLOCKS; dependencies will not be tracked")
	}
	if len(cfg.Statuses) == 0 {
		warnings = append(warnings, "no status mappings were suggested")
	}
	return warnings
}
