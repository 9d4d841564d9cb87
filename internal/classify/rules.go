package classify

import (
	"strings"
	"unicode"

	"github.com/joescharf/boardcfg/internal/models"
)

// term is a single vocabulary entry. Word terms only match on word
// boundaries, so "sa" does not fire on "usability".
type term struct {
	text string
	word bool
}

// vocabulary is an ordered set of lowercase terms.
type vocabulary []term

func sub(words ...string) vocabulary {
	v := make(vocabulary, len(words))
	for i, w := range words {
		v[i] = term{text: w}
	}
	return v
}

func (v vocabulary) with(words ...string) vocabulary {
	out := append(vocabulary(nil), v...)
	for _, w := range words {
		out = append(out, term{text: w, word: true})
	}
	return out
}

// matches reports whether any term occurs in text (case-insensitive).
func (v vocabulary) matches(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range v {
		if t.word {
			if containsWord(lower, t.text) {
				return true
			}
			continue
		}
		if strings.Contains(lower, t.text) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if f == word {
			return true
		}
	}
	return false
}

var (
	analysisTerms    = sub("analy", "анализ", "аналит", "requirement", "требован").with("sa")
	developmentTerms = sub("develop", "разработ", "coding", "implement", "in progress", "в работе").with("dev")
	testingTerms     = sub("test", "тест", "quality", "review", "ревью", "verif", "провер").with("qa")

	epicTerms  = sub("epic", "эпик")
	storyTerms = sub("story", "истори", "bug", "баг", "ошибка", "task", "задача", "improvement", "улучшение", "feature", "доработка")

	epicRequirementTerms = sub("requirement", "требован")
	epicPlanTerms        = sub("plan", "план")

	blockTerms   = sub("block", "блок")
	relatedTerms = sub("relat", "связ")
)

// roleRule assigns a role (and a status weight) when its vocabulary matches.
type roleRule struct {
	role   string
	weight int
	terms  vocabulary
}

// subtaskRoleRules are checked in order; DEV is the fallback.
var subtaskRoleRules = []roleRule{
	{role: models.RoleCodeSA, terms: analysisTerms},
	{role: models.RoleCodeQA, terms: testingTerms},
}

// statusRoleRules attribute an in-progress STORY/SUBTASK status to a role.
var statusRoleRules = []roleRule{
	{role: models.RoleCodeSA, weight: 25, terms: analysisTerms},
	{role: models.RoleCodeDEV, weight: 50, terms: developmentTerms},
	{role: models.RoleCodeQA, weight: 75, terms: testingTerms},
}

// unmatchedStatusWeight applies to in-progress STORY/SUBTASK statuses with no role.
const unmatchedStatusWeight = 50

// categoryRule assigns a board category to a non-subtask issue type.
type categoryRule struct {
	category models.BoardCategory
	terms    vocabulary
}

var issueTypeRules = []categoryRule{
	{category: models.BoardCategoryEpic, terms: epicTerms},
	{category: models.BoardCategoryStory, terms: storyTerms},
}

// epicStatusRule maps an in-progress EPIC status to a status category.
type epicStatusRule struct {
	category models.StatusCategory
	weight   int
	terms    vocabulary
}

var epicStatusRules = []epicStatusRule{
	{category: models.StatusCategoryRequirements, weight: 25, terms: epicRequirementTerms},
	{category: models.StatusCategoryPlanned, weight: 50, terms: epicPlanTerms},
}

const epicInProgressWeight = 75

type linkRule struct {
	category models.LinkCategory
	terms    vocabulary
}

var linkRules = []linkRule{
	{category: models.LinkCategoryBlocks, terms: blockTerms},
	{category: models.LinkCategoryRelated, terms: relatedTerms},
}

// roleStyle is the canonical presentation of a well-known role.
type roleStyle struct {
	displayName string
	color       string
	sortOrder   int
	isDefault   bool
}

var knownRoles = map[string]roleStyle{
	models.RoleCodeSA:  {displayName: "Analysis", color: "#0065FF", sortOrder: 1},
	models.RoleCodeDEV: {displayName: "Development", color: "#36B37E", sortOrder: 2, isDefault: true},
	models.RoleCodeQA:  {displayName: "Testing", color: "#FF991F", sortOrder: 3},
}

// canonicalRoles seed the role set when no subtask suggests any.
var canonicalRoles = []string{models.RoleCodeSA, models.RoleCodeDEV, models.RoleCodeQA}

const (
	unknownRoleColor     = "#6B778C"
	unknownRoleSortOrder = 10
)
