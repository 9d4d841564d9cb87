package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/boardcfg/internal/editor"
	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/service"
)

var (
	exportOut   string
	importTable string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the committed configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(exportOut)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the configuration from a YAML file",
	Long: `Replace the configuration from a YAML file written by 'boardcfg export'.

All four tables are replaced in order (roles, issue types, statuses, link
types) unless --table names a single table; the others are then left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importRun(args[0], importTable)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default stdout)")
	importCmd.Flags().StringVarP(&importTable, "table", "t", "", "Import only this table (roles, issue-types, statuses, link-types)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func exportRun(path string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	cfg, err := s.GetConfiguration(context.Background())
	if err != nil {
		return err
	}

	var w io.Writer = ui.Out
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if path != "" {
		ui.Success("Exported configuration to %s", path)
	}
	return nil
}

func readConfigurationFile(path string) (models.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Configuration{}, fmt.Errorf("read %s: %w", path, err)
	}
	var cfg models.Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.Configuration{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func importRun(path, table string) error {
	cfg, err := readConfigurationFile(path)
	if err != nil {
		return err
	}
	svc, err := getService(newLogger(ui.ErrOut, false))
	if err != nil {
		return err
	}
	ctx := context.Background()

	if table == "" {
		if dryRun {
			ui.DryRunMsg("Would replace all tables from %s", path)
			return nil
		}
		if _, err := svc.Commit(ctx, cfg); err != nil {
			return err
		}
		ui.Success("Imported %d roles, %d issue types, %d statuses, %d link types",
			len(cfg.Roles), len(cfg.IssueTypes), len(cfg.Statuses), len(cfg.LinkTypes))
	} else {
		t, err := parseTableArg(table)
		if err != nil {
			return err
		}
		if dryRun {
			ui.DryRunMsg("Would replace %s from %s", t, path)
			return nil
		}
		n, err := importTableRows(ctx, svc, t, cfg)
		if err != nil {
			return err
		}
		ui.Success("Imported %d rows into %s", n, t)
	}

	result := svc.Validate(ctx)
	ui.Validation(result.Valid, result.Errors, result.Warnings)
	return nil
}

// importTableRows replaces one table through the editor so the other three
// are untouched.
func importTableRows(ctx context.Context, svc *service.Service, t models.Table, cfg models.Configuration) (int, error) {
	switch t {
	case models.TableRoles:
		return replaceRows(ctx, editor.RolesTable(svc), cfg.Roles)
	case models.TableIssueTypes:
		return replaceRows(ctx, editor.IssueTypesTable(svc), cfg.IssueTypes)
	case models.TableStatuses:
		return replaceRows(ctx, editor.StatusesTable(svc), cfg.Statuses)
	case models.TableLinkTypes:
		return replaceRows(ctx, editor.LinkTypesTable(svc), cfg.LinkTypes)
	}
	return 0, fmt.Errorf("unknown table %q", t)
}

func replaceRows[T any](ctx context.Context, tbl *editor.Table[T], rows []T) (int, error) {
	if err := tbl.Load(ctx); err != nil {
		return 0, err
	}
	if err := tbl.Edit(func(local *editor.Rows[T]) error {
		local.Replace(rows)
		return nil
	}); err != nil {
		return 0, err
	}
	stored, err := tbl.Save(ctx)
	if err != nil {
		return 0, err
	}
	return len(stored), nil
}
