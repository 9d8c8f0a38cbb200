package main

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var renderDiff bool

var renderCmd = &cobra.Command{
	Use:   "render <template> [inputs...]",
	Short: "Resolve a template with literal inputs",
	Long: `Resolves a template the way a task would: the i-th input replaces
!<INPUT i>! and the commentary block is removed. With --diff, prints a
unified diff from the template body to the rendered prompt instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(logger)
		if err != nil {
			return err
		}

		id := args[0]
		inputs := make([]any, len(args)-1)
		for i, a := range args[1:] {
			inputs[i] = a
		}

		prompt, err := e.templates.Resolve(id, inputs)
		if err != nil {
			return err
		}
		if !renderDiff {
			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		}

		body, err := e.templates.Load(id)
		if err != nil {
			return err
		}
		diff, err := renderedDiff(id, body, prompt)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), diff)
		return nil
	},
}

func renderedDiff(id, body, prompt string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(body),
		B:        difflib.SplitLines(prompt),
		FromFile: id,
		ToFile:   id + " (rendered)",
		Context:  1,
	})
}

func init() {
	renderCmd.Flags().BoolVar(&renderDiff, "diff", false, "show a diff from the template body to the prompt")
}
