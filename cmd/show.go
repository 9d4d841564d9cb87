package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show [roles|issue-types|statuses|link-types]",
	Short: "Show the committed configuration",
	Long:  "Show the committed workflow configuration, or one table of it.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := ""
		if len(args) == 1 {
			table = args[0]
		}
		return showRun(table)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// tableArgs maps command line table names to configuration tables.
var tableArgs = map[string]models.Table{
	"roles":       models.TableRoles,
	"issue-types": models.TableIssueTypes,
	"statuses":    models.TableStatuses,
	"link-types":  models.TableLinkTypes,
}

func parseTableArg(arg string) (models.Table, error) {
	if t, ok := tableArgs[arg]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown table %q (expected roles, issue-types, statuses or link-types)", arg)
}

func showRun(table string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	cfg, err := s.GetConfiguration(context.Background())
	if err != nil {
		return err
	}

	tables := models.CommitOrder
	if table != "" {
		t, err := parseTableArg(table)
		if err != nil {
			return err
		}
		tables = []models.Table{t}
	}
	printConfiguration(*cfg, tables...)
	return nil
}

func printConfiguration(cfg models.Configuration, tables ...models.Table) {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(ui.Out)
		}
		switch t {
		case models.TableRoles:
			printRoles(cfg.Roles)
		case models.TableIssueTypes:
			printIssueTypes(cfg.IssueTypes)
		case models.TableStatuses:
			printStatuses(cfg.Statuses)
		case models.TableLinkTypes:
			printLinkTypes(cfg.LinkTypes)
		}
	}
}

func printRoles(roles []models.Role) {
	fmt.Fprintf(ui.Out, "Roles (%d)\n", len(roles))
	if len(roles) == 0 {
		return
	}
	table := ui.Table([]string{"#", "Code", "Name", "Color", "Default"})
	for i, r := range roles {
		def := ""
		if r.IsDefault {
			def = output.Green("yes")
		}
		_ = table.Append([]string{strconv.Itoa(i), output.Cyan(r.Code), r.DisplayName, r.Color, def})
	}
	_ = table.Render()
}

func printIssueTypes(issueTypes []models.IssueTypeMapping) {
	fmt.Fprintf(ui.Out, "Issue types (%d)\n", len(issueTypes))
	if len(issueTypes) == 0 {
		return
	}
	table := ui.Table([]string{"#", "Jira type", "Category", "Role"})
	for i, it := range issueTypes {
		_ = table.Append([]string{
			strconv.Itoa(i),
			it.JiraTypeName,
			output.CategoryColor(string(it.BoardCategory)),
			models.StringValue(it.WorkflowRoleCode),
		})
	}
	_ = table.Render()
}

func printStatuses(statuses []models.StatusMapping) {
	fmt.Fprintf(ui.Out, "Statuses (%d)\n", len(statuses))
	if len(statuses) == 0 {
		return
	}
	table := ui.Table([]string{"#", "Jira status", "Issue category", "Status category", "Role", "Weight"})
	for i, st := range statuses {
		_ = table.Append([]string{
			strconv.Itoa(i),
			st.JiraStatusName,
			output.CategoryColor(string(st.IssueCategory)),
			output.CategoryColor(string(st.StatusCategory)),
			models.StringValue(st.WorkflowRoleCode),
			output.WeightColor(st.ScoreWeight),
		})
	}
	_ = table.Render()
}

func printLinkTypes(linkTypes []models.LinkTypeMapping) {
	fmt.Fprintf(ui.Out, "Link types (%d)\n", len(linkTypes))
	if len(linkTypes) == 0 {
		return
	}
	table := ui.Table([]string{"#", "Jira link type", "Category"})
	for i, lt := range linkTypes {
		_ = table.Append([]string{strconv.Itoa(i), lt.JiraLinkTypeName, output.CategoryColor(string(lt.LinkCategory))})
	}
	_ = table.Render()
}
