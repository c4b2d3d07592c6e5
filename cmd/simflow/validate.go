package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/simflow/internal/cli"
	"github.com/aretw0/simflow/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <form>...",
	Short: "Check forms for consistency",
	Long: `Reports dangling leads_to and add_block references, duplicate ids,
malformed blueprints and unreachable questions. Warnings do not fail.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		out := cmd.OutOrStdout()

		failed := 0
		var reports []validator.Report
		for _, path := range args {
			form, err := cli.LoadForm(path)
			if err != nil {
				return err
			}
			report := validator.Validate(form)
			reports = append(reports, report)
			if report.Err() != nil {
				failed++
			}
			if asJSON {
				continue
			}
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "%s: %s\n", path, issue)
			}
			if report.Err() == nil {
				fmt.Fprintf(out, "%s: form %q is valid ✅\n", path, report.FormID)
			}
		}

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(reports); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("validation failed for %d of %d forms", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the reports as JSON")
}
