package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	genagents "github.com/wafo210715/generative-agents"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured models per role",
	Long: `Lists every configured model grouped by role. The model each role
resolves to is marked with '*'. A role without an active model is
reported as degraded: it falls back to its first registered model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(logger)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\t\tNAME\tMODEL\tHOST\tDRIVER\tACTIVE\tCREDENTIAL")
		for _, role := range genagents.Roles() {
			configs := e.providers.Configs(role)
			if len(configs) == 0 {
				fmt.Fprintf(w, "%s\t\t-\t-\t-\t-\t-\t-\n", role)
				continue
			}
			resolved, _ := e.providers.ActiveConfig(role)
			for _, c := range configs {
				mark := ""
				if c.Name == resolved.Name {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
					role, mark, c.Name, c.ModelID, c.Host(), c.DriverName(), c.Active, credentialState(c.HasCredential()))
			}
			if e.providers.Degraded(role) {
				fmt.Fprintf(w, "%s\t\t(degraded: no active model)\t\t\t\t\t\n", role)
			}
		}
		return w.Flush()
	},
}

func credentialState(ok bool) string {
	if ok {
		return "set"
	}
	return "missing"
}
