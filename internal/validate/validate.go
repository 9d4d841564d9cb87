// Package validate reports structural problems in a workflow configuration.
package validate

import (
	"fmt"

	"github.com/joescharf/boardcfg/internal/models"
)

// Configuration checks cfg and returns its errors and warnings. It never
// mutates cfg. Valid is true if and only if there are no errors.
func Configuration(cfg models.Configuration) models.ValidationResult {
	v := &validator{}

	roles := v.checkRoles(cfg.Roles)
	categories := v.checkIssueTypes(cfg.IssueTypes, roles)
	v.checkStatuses(cfg.Statuses, roles, categories)
	v.checkLinkTypes(cfg.LinkTypes)

	return v.result()
}

// Failed is the result reported when validation itself could not run.
func Failed(err error) models.ValidationResult {
	return models.ValidationResult{
		Valid:    false,
		Errors:   []string{fmt.Sprintf("validation failed: %v", err)},
		Warnings: []string{},
	}
}

type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) errorf(format string, a ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, a...))
}

func (v *validator) warnf(format string, a ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, a...))
}

func (v *validator) result() models.ValidationResult {
	r := models.ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	return r
}

func (v *validator) checkRoles(roles []models.Role) map[string]bool {
	codes := make(map[string]bool, len(roles))
	defaults := 0
	for _, r := range roles {
		if r.Code == "" {
			v.errorf("role %q has an empty code", r.DisplayName)
			continue
		}
		if codes[r.Code] {
			v.errorf("duplicate role code %q", r.Code)
		}
		codes[r.Code] = true
		if r.IsDefault {
			defaults++
		}
	}

	switch {
	case len(roles) == 0:
		v.warnf("no roles are configured")
	case defaults == 0:
		v.warnf("no role is marked as default")
	case defaults > 1:
		v.warnf("%d roles are marked as default; expected one", defaults)
	}
	return codes
}

// checkIssueTypes returns the board categories that have at least one
// non-IGNORE issue type.
func (v *validator) checkIssueTypes(issueTypes []models.IssueTypeMapping, roles map[string]bool) map[models.BoardCategory]bool {
	names := make(map[string]bool, len(issueTypes))
	used := make(map[models.BoardCategory]bool)
	for _, it := range issueTypes {
		if names[it.JiraTypeName] {
			v.errorf("duplicate issue type mapping %q", it.JiraTypeName)
		}
		names[it.JiraTypeName] = true

		if !it.BoardCategory.Valid() {
			v.errorf("issue type %q has unknown board category %q", it.JiraTypeName, it.BoardCategory)
			continue
		}
		if it.BoardCategory != models.BoardCategoryIgnore {
			used[it.BoardCategory] = true
		}

		code := models.StringValue(it.WorkflowRoleCode)
		if it.BoardCategory != models.BoardCategorySubtask {
			if code != "" {
				v.errorf("issue type %q is %s but has role %q; only SUBTASK issue types carry a role", it.JiraTypeName, it.BoardCategory, code)
			}
			continue
		}
		switch {
		case code == "":
			v.errorf("subtask issue type %q has no workflow role", it.JiraTypeName)
		case !roles[code]:
			v.errorf("subtask issue type %q references unknown role %q", it.JiraTypeName, code)
		}
	}
	return used
}

func (v *validator) checkStatuses(statuses []models.StatusMapping, roles map[string]bool, categories map[models.BoardCategory]bool) {
	keys := make(map[models.StatusKey]bool, len(statuses))
	done := make(map[models.BoardCategory]bool)
	for _, st := range statuses {
		if keys[st.Key()] {
			v.errorf("duplicate status mapping %q for %s", st.JiraStatusName, st.IssueCategory)
		}
		keys[st.Key()] = true

		if !st.IssueCategory.Valid() {
			v.errorf("status %q has unknown issue category %q", st.JiraStatusName, st.IssueCategory)
		}
		if !st.StatusCategory.Valid() {
			v.errorf("status %q has unknown status category %q", st.JiraStatusName, st.StatusCategory)
		}
		if st.ScoreWeight < 0 || st.ScoreWeight > 100 {
			v.errorf("status %q for %s has score weight %d outside 0-100", st.JiraStatusName, st.IssueCategory, st.ScoreWeight)
		}
		if code := models.StringValue(st.WorkflowRoleCode); code != "" && !roles[code] {
			v.warnf("status %q for %s references unknown role %q", st.JiraStatusName, st.IssueCategory, code)
		}
		if st.StatusCategory == models.StatusCategoryDone {
			done[st.IssueCategory] = true
		}
	}

	for _, c := range models.BoardCategories {
		if categories[c] && !done[c] {
			v.warnf("%s has no status mapped to DONE; its items can never complete", c)
		}
	}
}

func (v *validator) checkLinkTypes(linkTypes []models.LinkTypeMapping) {
	names := make(map[string]bool, len(linkTypes))
	for _, lt := range linkTypes {
		if names[lt.JiraLinkTypeName] {
			v.errorf("duplicate link type mapping %q", lt.JiraLinkTypeName)
		}
		names[lt.JiraLinkTypeName] = true
		if !lt.LinkCategory.Valid() {
			v.errorf("link type %q has unknown link category %q", lt.JiraLinkTypeName, lt.LinkCategory)
		}
	}
}
