package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nickblackbourn/nfl-process-mining/internal/transform"
)

func newRulesetCommand(ctx *commandContext) *cobra.Command {
	rulesetCmd := &cobra.Command{
		Use:   "ruleset",
		Short: "SQL ruleset utilities",
	}

	rulesetCmd.AddCommand(newRulesetShowCommand(ctx))
	rulesetCmd.AddCommand(newRulesetCheckCommand(ctx))

	return rulesetCmd
}

// activeRuleset resolves the ruleset the configuration selects: an external
// file when transform.ruleset_path is set, otherwise the embedded default.
func activeRuleset(ctx *commandContext) (transform.Ruleset, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return transform.Ruleset{}, err
	}
	if path := cfg.Transform.RulesetPath; path != "" {
		return transform.LoadRuleset(path)
	}
	return transform.Embedded(), nil
}

func newRulesetShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active SQL ruleset",
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := activeRuleset(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			// The origin line is a SQL comment so the output stays a
			// valid ruleset when redirected to a file.
			fmt.Fprintf(out, "-- origin: %s\n\n", rs.Origin())
			text := rs.Text()
			fmt.Fprint(out, text)
			if !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newRulesetCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Parse the active ruleset without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := activeRuleset(ctx)
			if err != nil {
				return err
			}
			stmts, err := rs.Statements()
			if err != nil {
				return err
			}

			mentionsResult := false
			for _, stmt := range stmts {
				if strings.Contains(strings.ToLower(stmt), transform.ResultTableName) {
					mentionsResult = true
					break
				}
			}
			if !mentionsResult {
				return fmt.Errorf("ruleset never references %s; a run could not produce an event log", transform.ResultTableName)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ruleset origin: %s\n", rs.Origin())
			fmt.Fprintf(out, "Statements: %d\n", len(stmts))
			fmt.Fprintln(out, "Ruleset OK")
			return nil
		},
	}
}
