package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/boardcfg/internal/editor"
	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/output"
)

var (
	roleColor     string
	roleSortOrder int
	roleDefault   bool
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage workflow roles",
	Long:  "List, add and remove workflow roles. Only the roles table is changed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun("roles")
	},
}

var rolesAddCmd = &cobra.Command{
	Use:   "add <code> <display-name>",
	Short: "Add a workflow role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rolesAddRun(args[0], args[1])
	},
}

var rolesRemoveCmd = &cobra.Command{
	Use:     "remove <code>",
	Aliases: []string{"rm"},
	Short:   "Remove a workflow role",
	Long: `Remove a workflow role. Mappings that still reference the role are
kept; 'boardcfg validate' reports them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rolesRemoveRun(args[0])
	},
}

func init() {
	rolesAddCmd.Flags().StringVar(&roleColor, "color", "#6B778C", "Display color")
	rolesAddCmd.Flags().IntVar(&roleSortOrder, "sort", 10, "Sort order")
	rolesAddCmd.Flags().BoolVar(&roleDefault, "default", false, "Make this the default role")
	rolesCmd.AddCommand(rolesAddCmd)
	rolesCmd.AddCommand(rolesRemoveCmd)
	rootCmd.AddCommand(rolesCmd)
}

func loadRoles(ctx context.Context) (*editor.Table[models.Role], error) {
	svc, err := getService(newLogger(ui.ErrOut, false))
	if err != nil {
		return nil, err
	}
	tbl := editor.RolesTable(svc)
	if err := tbl.Load(ctx); err != nil {
		return nil, err
	}
	return tbl, nil
}

func findRole(rows *editor.Rows[models.Role], code string) int {
	for i, r := range rows.All() {
		if r.Code == code {
			return i
		}
	}
	return -1
}

func rolesAddRun(code, name string) error {
	ctx := context.Background()
	tbl, err := loadRoles(ctx)
	if err != nil {
		return err
	}

	err = tbl.Edit(func(rows *editor.Rows[models.Role]) error {
		if findRole(rows, code) >= 0 {
			return fmt.Errorf("role %s already exists", code)
		}
		if roleDefault {
			for i, r := range rows.All() {
				r.IsDefault = false
				if err := rows.Update(i, r); err != nil {
					return err
				}
			}
		}
		rows.Add(models.Role{
			Code:        code,
			DisplayName: name,
			Color:       roleColor,
			SortOrder:   roleSortOrder,
			IsDefault:   roleDefault,
		})
		return nil
	})
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would add role: %s", code)
		return nil
	}
	if _, err := tbl.Save(ctx); err != nil {
		return err
	}
	ui.Success("Added role: %s", output.Cyan(code))
	return nil
}

func rolesRemoveRun(code string) error {
	ctx := context.Background()
	tbl, err := loadRoles(ctx)
	if err != nil {
		return err
	}

	err = tbl.Edit(func(rows *editor.Rows[models.Role]) error {
		i := findRole(rows, code)
		if i < 0 {
			return fmt.Errorf("role not found: %s", code)
		}
		return rows.Delete(i)
	})
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would remove role: %s", code)
		return nil
	}
	if _, err := tbl.Save(ctx); err != nil {
		return err
	}
	ui.Success("Removed role: %s", output.Cyan(code))
	return nil
}
