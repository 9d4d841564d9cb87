package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var validateJSON bool

// errInvalid makes the command exit non-zero without repeating the report.
var errInvalid = errors.New("configuration is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the committed configuration",
	Long:  "Check the committed configuration for structural errors and warnings. Exits non-zero when there are errors.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateRun()
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(validateCmd)
}

func validateRun() error {
	svc, err := getService(newLogger(ui.ErrOut, false))
	if err != nil {
		return err
	}

	result := svc.Validate(context.Background())
	if validateJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out, string(data))
	} else {
		ui.Validation(result.Valid, result.Errors, result.Warnings)
	}

	if !result.Valid {
		return errInvalid
	}
	return nil
}
