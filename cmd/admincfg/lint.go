package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"admincfg/internal/dsl"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check definitions for contradictions",
	Long: `Checks every view of every entity:

  - at most one field flagged as identifier
  - an identifier can be resolved
  - choice fields have choices
  - references have a target entity and field
  - no two fields share an order`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		issues := dsl.Lint(reg.Entities())
		if issues == nil {
			issues = []dsl.Issue{}
		}
		if err := output.Encode(os.Stdout, issues); err != nil {
			return err
		}
		if len(issues) > 0 && cfg.FailOnIssues {
			return fmt.Errorf("%d issue(s) found", len(issues))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
