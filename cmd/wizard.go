package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/boardcfg/internal/classify"
	"github.com/joescharf/boardcfg/internal/editor"
	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/output"
	"github.com/joescharf/boardcfg/internal/service"
	"github.com/joescharf/boardcfg/internal/wizard"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Build a configuration step by step from Jira metadata",
	Long: `Fetch Jira metadata, review the suggested issue types, roles, statuses
and link types one step at a time, then save. Nothing is written until
'save' in the review step. Type 'help' at any prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSource(); err != nil {
			return err
		}
		svc, err := getService(newLogger(ui.ErrOut, false))
		if err != nil {
			return err
		}
		return wizardRun(context.Background(), cmd.InOrStdin(), svc)
	},
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}

// wizardRun drives a wizard session from line commands read from in.
// End of input cancels the session.
func wizardRun(ctx context.Context, in io.Reader, b wizard.Backend) error {
	session := wizard.NewSession("cli", b)
	if err := session.Start(ctx); err != nil {
		ui.Error("Fetch failed: %v", err)
	}

	sc := bufio.NewScanner(in)
	var shown wizard.Step
	for {
		step := session.Step()
		if step.Terminal() {
			return nil
		}
		if step != shown {
			printStep(session)
			shown = step
		}

		fmt.Fprintf(ui.Out, "%s> ", strings.ToLower(string(step)))
		if !sc.Scan() {
			_ = session.Cancel()
			fmt.Fprintln(ui.Out)
			ui.Warning("Input closed; wizard cancelled, nothing saved")
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := wizardCommand(ctx, session, fields); err != nil {
			ui.Error("%v", err)
		}
	}
}

func wizardCommand(ctx context.Context, s *wizard.Session, fields []string) error {
	switch fields[0] {
	case "next", "n":
		return s.Advance()
	case "back", "b":
		return s.Back()
	case "retry", "r":
		return s.RetryFetch(ctx)
	case "cancel", "quit", "q":
		if err := s.Cancel(); err != nil {
			return err
		}
		ui.Warning("Wizard cancelled; nothing saved")
		return nil
	case "save":
		result, err := s.Save(ctx)
		if err != nil {
			var pe *service.PersistError
			if errors.As(err, &pe) {
				return fmt.Errorf("save stopped at %s, earlier tables were saved: %w", pe.Table, pe.Err)
			}
			return err
		}
		ui.Success("Configuration saved")
		ui.Validation(result.Valid, result.Errors, result.Warnings)
		return nil
	case "show", "ls":
		printStep(s)
		return nil
	case "help", "?":
		printWizardHelp(s.Step())
		return nil
	}
	return wizardEdit(s, fields)
}

func wizardEdit(s *wizard.Session, fields []string) error {
	cmd := fields[0]
	switch s.Step() {
	case wizard.StepIssueTypes:
		switch cmd {
		case "add":
			if len(fields) < 3 {
				return fmt.Errorf("usage: add <category> <jira type name>")
			}
			c := models.BoardCategory(strings.ToUpper(fields[1]))
			if !c.Valid() {
				return fmt.Errorf("unknown board category %q", fields[1])
			}
			name := strings.Join(fields[2:], " ")
			row := models.IssueTypeMapping{JiraTypeName: name, BoardCategory: c}
			if c == models.BoardCategorySubtask {
				row.WorkflowRoleCode = models.StringPtr(classify.GuessRoleFromSubtask(name))
			}
			return s.EditIssueTypes(func(rows *editor.Rows[models.IssueTypeMapping]) error {
				rows.Add(row)
				return nil
			})
		case "rm":
			i, err := index(fields)
			if err != nil {
				return err
			}
			return s.EditIssueTypes(func(rows *editor.Rows[models.IssueTypeMapping]) error {
				return rows.Delete(i)
			})
		case "cat":
			i, value, err := indexAndValue(fields)
			if err != nil {
				return err
			}
			c := models.BoardCategory(strings.ToUpper(value))
			if !c.Valid() {
				return fmt.Errorf("unknown board category %q", value)
			}
			return s.SetIssueTypeCategory(i, c)
		case "role":
			i, code, err := indexAndValue(fields)
			if err != nil {
				return err
			}
			return s.EditIssueTypes(func(rows *editor.Rows[models.IssueTypeMapping]) error {
				row, err := rows.Get(i)
				if err != nil {
					return err
				}
				if row.BoardCategory != models.BoardCategorySubtask {
					return fmt.Errorf("only SUBTASK issue types carry a role")
				}
				row.WorkflowRoleCode = models.StringPtr(strings.ToUpper(code))
				return rows.Update(i, row)
			})
		}
	case wizard.StepRoles:
		switch cmd {
		case "add":
			if len(fields) < 3 {
				return fmt.Errorf("usage: add <code> <display name>")
			}
			return s.EditRoles(func(rows *editor.Rows[models.Role]) error {
				rows.Add(models.Role{
					Code:        strings.ToUpper(fields[1]),
					DisplayName: strings.Join(fields[2:], " "),
					Color:       "#6B778C",
					SortOrder:   rows.Len() + 1,
				})
				return nil
			})
		case "rm":
			i, err := index(fields)
			if err != nil {
				return err
			}
			return s.EditRoles(func(rows *editor.Rows[models.Role]) error {
				return rows.Delete(i)
			})
		case "default":
			i, err := index(fields)
			if err != nil {
				return err
			}
			return s.EditRoles(func(rows *editor.Rows[models.Role]) error {
				if _, err := rows.Get(i); err != nil {
					return err
				}
				for j, r := range rows.All() {
					r.IsDefault = j == i
					if err := rows.Update(j, r); err != nil {
						return err
					}
				}
				return nil
			})
		}
	case wizard.StepStatuses:
		switch cmd {
		case "add":
			if len(fields) < 4 {
				return fmt.Errorf("usage: add <issue category> <status category> <jira status name>")
			}
			ic := models.BoardCategory(strings.ToUpper(fields[1]))
			if !ic.Valid() || ic == models.BoardCategoryIgnore {
				return fmt.Errorf("issue category must be EPIC, STORY or SUBTASK, got %q", fields[1])
			}
			sc := models.StatusCategory(strings.ToUpper(fields[2]))
			if !sc.Valid() {
				return fmt.Errorf("unknown status category %q", fields[2])
			}
			return s.EditStatuses(func(rows *editor.Rows[models.StatusMapping]) error {
				rows.Add(models.StatusMapping{
					JiraStatusName: strings.Join(fields[3:], " "),
					IssueCategory:  ic,
					StatusCategory: sc,
					SortOrder:      rows.Len() + 1,
					ScoreWeight:    defaultWeight(sc),
				})
				return nil
			})
		case "rm":
			i, err := index(fields)
			if err != nil {
				return err
			}
			return s.EditStatuses(func(rows *editor.Rows[models.StatusMapping]) error {
				return rows.Delete(i)
			})
		case "cat":
			i, value, err := indexAndValue(fields)
			if err != nil {
				return err
			}
			c := models.StatusCategory(strings.ToUpper(value))
			if !c.Valid() {
				return fmt.Errorf("unknown status category %q", value)
			}
			return editStatus(s, i, func(st *models.StatusMapping) error {
				st.StatusCategory = c
				return nil
			})
		case "weight":
			i, value, err := indexAndValue(fields)
			if err != nil {
				return err
			}
			w, err := strconv.Atoi(value)
			if err != nil || w < 0 || w > 100 {
				return fmt.Errorf("weight must be a number from 0 to 100")
			}
			return editStatus(s, i, func(st *models.StatusMapping) error {
				st.ScoreWeight = w
				return nil
			})
		case "role":
			i, code, err := indexAndValue(fields)
			if err != nil {
				return err
			}
			return editStatus(s, i, func(st *models.StatusMapping) error {
				if code == "-" {
					st.WorkflowRoleCode = nil
				} else {
					st.WorkflowRoleCode = models.StringPtr(strings.ToUpper(code))
				}
				return nil
			})
		}
	case wizard.StepLinkTypes:
		switch cmd {
		case "add":
			if len(fields) < 3 {
				return fmt.Errorf("usage: add <category> <jira link type name>")
			}
			c := models.LinkCategory(strings.ToUpper(fields[1]))
			if !c.Valid() {
				return fmt.Errorf("unknown link category %q", fields[1])
			}
			return s.EditLinkTypes(func(rows *editor.Rows[models.LinkTypeMapping]) error {
				rows.Add(models.LinkTypeMapping{JiraLinkTypeName: strings.Join(fields[2:], " "), LinkCategory: c})
				return nil
			})
		case "rm":
			i, err := index(fields)
			if err != nil {
				return err
			}
			return s.EditLinkTypes(func(rows *editor.Rows[models.LinkTypeMapping]) error {
				return rows.Delete(i)
			})
		case "cat":
			i, value, err := indexAndValue(fields)
			if err != nil {
				return err
			}
			c := models.LinkCategory(strings.ToUpper(value))
			if !c.Valid() {
				return fmt.Errorf("unknown link category %q", value)
			}
			return s.EditLinkTypes(func(rows *editor.Rows[models.LinkTypeMapping]) error {
				row, err := rows.Get(i)
				if err != nil {
					return err
				}
				row.LinkCategory = c
				return rows.Update(i, row)
			})
		}
	}
	return fmt.Errorf("unknown command %q (type help)", cmd)
}

// defaultWeight is the progress weight given to a status added by hand.
func defaultWeight(c models.StatusCategory) int {
	switch c {
	case models.StatusCategoryNew:
		return 0
	case models.StatusCategoryDone:
		return 100
	default:
		return 50
	}
}

func editStatus(s *wizard.Session, i int, fn func(*models.StatusMapping) error) error {
	return s.EditStatuses(func(rows *editor.Rows[models.StatusMapping]) error {
		row, err := rows.Get(i)
		if err != nil {
			return err
		}
		if err := fn(&row); err != nil {
			return err
		}
		return rows.Update(i, row)
	})
}

func index(fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("usage: %s <row>", fields[0])
	}
	i, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("row must be a number: %q", fields[1])
	}
	return i, nil
}

func indexAndValue(fields []string) (int, string, error) {
	if len(fields) < 3 {
		return 0, "", fmt.Errorf("usage: %s <row> <value>", fields[0])
	}
	i, err := index(fields)
	if err != nil {
		return 0, "", err
	}
	return i, fields[2], nil
}

func printStep(s *wizard.Session) {
	step := s.Step()
	fmt.Fprintf(ui.Out, "\n== %s%s ==\n", output.Cyan(string(step)), stepPosition(step))

	if step == wizard.StepFetch {
		if err := s.Err(); err != nil {
			ui.Error("%v", err)
			ui.Info("Type 'retry' to fetch again or 'cancel' to stop.")
		}
		return
	}

	draft, ok := s.Draft()
	if !ok {
		return
	}
	switch step {
	case wizard.StepIssueTypes:
		printIssueTypes(draft.IssueTypes)
	case wizard.StepRoles:
		printRoles(draft.Roles)
	case wizard.StepStatuses:
		printStatuses(draft.Statuses)
	case wizard.StepLinkTypes:
		printLinkTypes(draft.LinkTypes)
	case wizard.StepReview:
		sum := s.Summary()
		fmt.Fprintf(ui.Out, "  %-12s %d\n", "Roles", sum.Roles)
		fmt.Fprintf(ui.Out, "  %-12s %d\n", "Issue types", sum.IssueTypes)
		fmt.Fprintf(ui.Out, "  %-12s %d\n", "Statuses", sum.Statuses)
		fmt.Fprintf(ui.Out, "  %-12s %d\n", "Link types", sum.LinkTypes)
		for _, w := range sum.Warnings {
			ui.Warning("%s", w)
		}
		if err := s.Err(); err != nil {
			ui.Error("Last save failed: %v", err)
		}
		ui.Info("Type 'save' to write the configuration, 'back' to edit.")
	}
}

// stepPosition renders " (n/total)" for a non-terminal step.
func stepPosition(step wizard.Step) string {
	for i, st := range wizard.Steps {
		if st == step {
			return fmt.Sprintf(" (%d/%d)", i+1, len(wizard.Steps))
		}
	}
	return ""
}

func printWizardHelp(step wizard.Step) {
	lines := []string{"next | back | show | cancel"}
	switch step {
	case wizard.StepFetch:
		lines = []string{"retry | cancel"}
	case wizard.StepIssueTypes:
		lines = append(lines, "add <EPIC|STORY|SUBTASK|IGNORE> <name>", "rm <row>", "cat <row> <EPIC|STORY|SUBTASK|IGNORE>", "role <row> <code>")
	case wizard.StepRoles:
		lines = append(lines, "add <code> <display name>", "rm <row>", "default <row>")
	case wizard.StepStatuses:
		lines = append(lines, "add <EPIC|STORY|SUBTASK> <status category> <name>", "rm <row>",
			"cat <row> <NEW|REQUIREMENTS|PLANNED|IN_PROGRESS|DONE>", "weight <row> <0-100>", "role <row> <code|->")
	case wizard.StepLinkTypes:
		lines = append(lines, "add <BLOCKS|RELATED|IGNORE> <name>", "rm <row>", "cat <row> <BLOCKS|RELATED|IGNORE>")
	case wizard.StepReview:
		lines = []string{"save | back | cancel"}
	}
	for _, l := range lines {
		fmt.Fprintf(ui.Out, "  %s\n", l)
	}
}
