package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/boardcfg/internal/classify"
	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/output"
	"github.com/joescharf/boardcfg/internal/service"
)

var detectForce bool

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Auto-detect and save a configuration from Jira",
	Long: `Fetch Jira metadata, classify it and overwrite all four configuration
tables without review. Use 'boardcfg wizard' to review first, or
'boardcfg suggest' to preview.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return detectRun()
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Preview the configuration auto-detect would save",
	RunE: func(cmd *cobra.Command, args []string) error {
		return suggestRun()
	},
}

func init() {
	detectCmd.Flags().BoolVarP(&detectForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(suggestCmd)
}

func requireSource() error {
	if getSource() == nil {
		return fmt.Errorf("%w: set jira.url or --fixture", service.ErrNoSource)
	}
	return nil
}

func detectRun() error {
	svc, err := getService(newLogger(ui.ErrOut, false))
	if err != nil {
		return err
	}
	if err := requireSource(); err != nil {
		return err
	}
	ctx := context.Background()

	cfg, err := svc.GetConfiguration(ctx)
	if err != nil {
		return err
	}
	if !isEmpty(*cfg) && !detectForce {
		return fmt.Errorf("a configuration already exists (use --force to overwrite)")
	}

	if dryRun {
		ui.DryRunMsg("Would fetch Jira metadata and overwrite roles, issue types, statuses and link types")
		return nil
	}

	result, err := svc.RunAutoDetect(ctx)
	if err != nil {
		return fmt.Errorf("auto-detect: %w", err)
	}

	ui.Success("Saved %s issue types, %s roles, %s status mappings, %s link types",
		output.Cyan(fmt.Sprint(result.IssueTypeCount)),
		output.Cyan(fmt.Sprint(result.RoleCount)),
		output.Cyan(fmt.Sprint(result.StatusMappingCount)),
		output.Cyan(fmt.Sprint(result.LinkTypeCount)))
	for _, w := range result.Warnings {
		ui.Warning("%s", w)
	}
	return nil
}

func suggestRun() error {
	svc, err := getService(newLogger(ui.ErrOut, false))
	if err != nil {
		return err
	}
	if err := requireSource(); err != nil {
		return err
	}

	meta, err := svc.Fetch(context.Background())
	if err != nil {
		return err
	}
	suggestion := classify.Suggest(meta)
	printConfiguration(suggestion.Config, models.CommitOrder...)
	for _, w := range suggestion.Warnings {
		ui.Warning("%s", w)
	}
	ui.Info("Nothing was saved. Run 'boardcfg detect' or 'boardcfg wizard' to save.")
	return nil
}

func isEmpty(cfg models.Configuration) bool {
	return len(cfg.Roles) == 0 && len(cfg.IssueTypes) == 0 && len(cfg.Statuses) == 0 && len(cfg.LinkTypes) == 0
}
