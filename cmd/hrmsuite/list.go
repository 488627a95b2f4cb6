package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testforge/hrm-e2e/internal/runner"
)

func newListCmd(a *app) *cobra.Command {
	var patterns []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := runner.Select(runner.Catalog(), patterns...)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, sc := range scenarios {
				cyan.Fprintf(w, "%-32s", sc.Name)
				fmt.Fprintf(w, " %s\n", sc.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&patterns, "scenario", "s", nil, "only list scenarios matching these globs")
	return cmd
}
