// Package classify derives suggested workflow configuration from tracker
// taxonomy metadata. Every function is pure and deterministic.
package classify

import (
	"sort"

	"github.com/joescharf/boardcfg/internal/models"
)

// GuessRoleFromSubtask infers the workflow role of a subtask issue type from
// its name. Analysis wins over testing; anything else is development.
func GuessRoleFromSubtask(name string) string {
	for _, r := range subtaskRoleRules {
		if r.terms.matches(name) {
			return r.role
		}
	}
	return models.RoleCodeDEV
}

// SuggestIssueTypes maps each tracker issue type to a board category.
// Subtask types always become SUBTASK with a role; otherwise epic vocabulary
// is checked before story vocabulary and unmatched types are IGNORE.
func SuggestIssueTypes(issueTypes []models.TrackerIssueType) []models.IssueTypeMapping {
	out := make([]models.IssueTypeMapping, 0, len(issueTypes))
	for _, it := range issueTypes {
		m := models.IssueTypeMapping{JiraTypeName: it.Name}
		if it.Subtask {
			m.BoardCategory = models.BoardCategorySubtask
			m.WorkflowRoleCode = models.StringPtr(GuessRoleFromSubtask(it.Name))
			out = append(out, m)
			continue
		}
		m.BoardCategory = models.BoardCategoryIgnore
		for _, r := range issueTypeRules {
			if r.terms.matches(it.Name) {
				m.BoardCategory = r.category
				break
			}
		}
		out = append(out, m)
	}
	return out
}

// SuggestRolesFromIssueTypes collects the roles used by SUBTASK suggestions,
// falling back to SA, DEV and QA when there are none. The result is never
// empty and is sorted by sort order, then code.
func SuggestRolesFromIssueTypes(suggested []models.IssueTypeMapping) []models.Role {
	seen := make(map[string]bool)
	var codes []string
	for _, m := range suggested {
		if m.BoardCategory != models.BoardCategorySubtask || m.WorkflowRoleCode == nil {
			continue
		}
		code := *m.WorkflowRoleCode
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		codes = append(codes, canonicalRoles...)
	}

	roles := make([]models.Role, 0, len(codes))
	for _, code := range codes {
		roles = append(roles, roleFor(code))
	}
	sort.SliceStable(roles, func(i, j int) bool {
		if roles[i].SortOrder != roles[j].SortOrder {
			return roles[i].SortOrder < roles[j].SortOrder
		}
		return roles[i].Code < roles[j].Code
	})
	return roles
}

func roleFor(code string) models.Role {
	if style, ok := knownRoles[code]; ok {
		return models.Role{
			Code:        code,
			DisplayName: style.displayName,
			Color:       style.color,
			SortOrder:   style.sortOrder,
			IsDefault:   style.isDefault,
		}
	}
	return models.Role{
		Code:        code,
		DisplayName: code,
		Color:       unknownRoleColor,
		SortOrder:   unknownRoleSortOrder,
	}
}

// appliesTo reports whether statuses of an issue type suggested as source
// produce a row for the target issue category. STORY sources also feed
// SUBTASK rows since stories host subtasks.
func appliesTo(source, target models.BoardCategory) bool {
	switch target {
	case models.BoardCategorySubtask:
		return source == models.BoardCategorySubtask || source == models.BoardCategoryStory
	case models.BoardCategoryEpic, models.BoardCategoryStory:
		return source == target
	}
	return false
}

// SuggestStatuses produces one status mapping per (status name, issue
// category) key. Rows are numbered by emission order starting at 1.
func SuggestStatuses(byIssueType []models.IssueTypeStatuses, suggested []models.IssueTypeMapping) []models.StatusMapping {
	categoryOf := make(map[string]models.BoardCategory, len(suggested))
	for _, m := range suggested {
		categoryOf[m.JiraTypeName] = m.BoardCategory
	}

	seen := make(map[models.StatusKey]bool)
	var out []models.StatusMapping
	for _, group := range byIssueType {
		source, ok := categoryOf[group.IssueTypeName]
		if !ok || source == models.BoardCategoryIgnore {
			continue
		}
		for _, st := range group.Statuses {
			for _, target := range models.BoardCategories {
				if !appliesTo(source, target) {
					continue
				}
				key := models.StatusKey{StatusName: st.Name, IssueCategory: target}
				if seen[key] {
					continue
				}
				seen[key] = true

				m := inferStatus(st, target)
				m.SortOrder = len(out) + 1
				out = append(out, m)
			}
		}
	}
	return out
}

// inferStatus derives status category, role and weight for one status row.
func inferStatus(st models.TrackerStatus, target models.BoardCategory) models.StatusMapping {
	m := models.StatusMapping{
		JiraStatusName: st.Name,
		IssueCategory:  target,
	}

	switch st.Category.Normalize() {
	case models.TrackerCategoryDone:
		m.StatusCategory = models.StatusCategoryDone
		m.ScoreWeight = 100
		return m
	case models.TrackerCategoryIndeterminate:
	default:
		m.StatusCategory = models.StatusCategoryNew
		m.ScoreWeight = 0
		return m
	}

	text := st.Name + " " + st.UntranslatedName

	if target == models.BoardCategoryEpic {
		m.StatusCategory = models.StatusCategoryInProgress
		m.ScoreWeight = epicInProgressWeight
		for _, r := range epicStatusRules {
			if r.terms.matches(text) {
				m.StatusCategory = r.category
				m.ScoreWeight = r.weight
				break
			}
		}
		return m
	}

	m.StatusCategory = models.StatusCategoryInProgress
	m.ScoreWeight = unmatchedStatusWeight
	for _, r := range statusRoleRules {
		if r.terms.matches(text) {
			m.WorkflowRoleCode = models.StringPtr(r.role)
			m.ScoreWeight = r.weight
			break
		}
	}
	return m
}

// SuggestLinkTypes classifies tracker link types by name.
func SuggestLinkTypes(linkTypes []models.TrackerLinkType) []models.LinkTypeMapping {
	out := make([]models.LinkTypeMapping, 0, len(linkTypes))
	for _, lt := range linkTypes {
		m := models.LinkTypeMapping{JiraLinkTypeName: lt.Name, LinkCategory: models.LinkCategoryIgnore}
		for _, r := range linkRules {
			if r.terms.matches(lt.Name) {
				m.LinkCategory = r.category
				break
			}
		}
		out = append(out, m)
	}
	return out
}
