// Package wizard guides a user from tracker metadata to a committed workflow
// configuration through a fixed sequence of editing steps.
package wizard

import (
	"errors"
	"fmt"

	"github.com/joescharf/boardcfg/internal/models"
)

// Step is a wizard state.
type Step string

const (
	StepFetch      Step = "FETCH"
	StepIssueTypes Step = "ISSUE_TYPES"
	StepRoles      Step = "ROLES"
	StepStatuses   Step = "STATUSES"
	StepLinkTypes  Step = "LINK_TYPES"
	StepReview     Step = "REVIEW"

	// Terminal phases.
	StepSaved     Step = "SAVED"
	StepCancelled Step = "CANCELLED"
)

// Steps lists the non-terminal steps in order.
var Steps = []Step{StepFetch, StepIssueTypes, StepRoles, StepStatuses, StepLinkTypes, StepReview}

// Terminal reports whether no further action is possible.
func (s Step) Terminal() bool {
	return s == StepSaved || s == StepCancelled
}

// Table returns the configuration table edited in this step.
func (s Step) Table() (models.Table, bool) {
	t, ok := stepTables[s]
	return t, ok
}

var stepTables = map[Step]models.Table{
	StepIssueTypes: models.TableIssueTypes,
	StepRoles:      models.TableRoles,
	StepStatuses:   models.TableStatuses,
	StepLinkTypes:  models.TableLinkTypes,
}

// StepForTable returns the step in which table is edited.
func StepForTable(table models.Table) (Step, bool) {
	for step, t := range stepTables {
		if t == table {
			return step, true
		}
	}
	return "", false
}

// Action moves the wizard between steps.
type Action string

const (
	ActionFetched Action = "fetched"
	ActionNext    Action = "next"
	ActionBack    Action = "back"
	ActionSave    Action = "save"
	ActionCancel  Action = "cancel"
)

// ErrIllegalTransition is returned when an action is not available in the
// current step. The session is left unchanged.
var ErrIllegalTransition = errors.New("illegal wizard transition")

var transitions = map[Step]map[Action]Step{
	StepFetch: {
		ActionFetched: StepIssueTypes,
		ActionCancel:  StepCancelled,
	},
	StepIssueTypes: {
		ActionNext:   StepRoles,
		ActionCancel: StepCancelled,
	},
	StepRoles: {
		ActionNext:   StepStatuses,
		ActionBack:   StepIssueTypes,
		ActionCancel: StepCancelled,
	},
	StepStatuses: {
		ActionNext:   StepLinkTypes,
		ActionBack:   StepRoles,
		ActionCancel: StepCancelled,
	},
	StepLinkTypes: {
		ActionNext:   StepReview,
		ActionBack:   StepStatuses,
		ActionCancel: StepCancelled,
	},
	StepReview: {
		ActionBack:   StepLinkTypes,
		ActionSave:   StepSaved,
		ActionCancel: StepCancelled,
	},
}

func transition(from Step, action Action) (Step, error) {
	to, ok := transitions[from][action]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, from)
	}
	return to, nil
}

func allowed(from Step, action Action) bool {
	_, ok := transitions[from][action]
	return ok
}
