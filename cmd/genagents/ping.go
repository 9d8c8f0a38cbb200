package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/gateway"
)

const pingPrompt = `Reply with the JSON object {"output": "pong"} and nothing else.`

var pingRole string

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send one request to the model of a role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := genagents.Role(pingRole)
		e, err := loadEnv(logger)
		if err != nil {
			return err
		}
		if err := e.gateway.WithDelay(0).Check(role); err != nil {
			return err
		}
		cfg, _ := e.providers.ActiveConfig(role)

		start := time.Now()
		text := e.gateway.Complete(cmd.Context(), pingPrompt, role)
		elapsed := time.Since(start)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "model:    %s (%s)\n", cfg.Name, cfg.ModelID)
		fmt.Fprintf(out, "host:     %s\n", cfg.Host())
		fmt.Fprintf(out, "duration: %s\n", formatDuration(elapsed))
		fmt.Fprintf(out, "response: %s\n", text)
		if gateway.IsSentinel(text) {
			return fmt.Errorf("provider %s failed", cfg.Host())
		}
		return nil
	},
}

func init() {
	pingCmd.Flags().StringVarP(&pingRole, "role", "r", string(genagents.RoleGeneral), "model role to ping")
}
