package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/gateway"
	"github.com/wafo210715/generative-agents/observe"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

var (
	chatRole        string
	chatMetricsAddr string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send raw prompts to the model of a role",
	Long: `Opens a prompt loop. Every line is sent through the completion gateway
as-is and the raw response is printed. Provider failures show up as the
"<provider> ERROR" sentinel, exactly as tasks see them.

With --metrics-addr, model-call metrics are served at /metrics while the
loop runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := genagents.Role(chatRole)
		reg := prometheus.NewRegistry()
		e, err := loadEnv(logger, observe.NewMetrics(reg))
		if err != nil {
			return err
		}
		if err := e.gateway.Check(role); err != nil {
			return err
		}

		if chatMetricsAddr != "" {
			srv := &http.Server{
				Addr:              chatMetricsAddr,
				Handler:           metricsHandler(reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server stopped", zap.Error(err))
				}
			}()
			defer srv.Close()
			logger.Info("serving metrics", zap.String("addr", chatMetricsAddr))
		}

		rl, err := readline.New(colorCyan + string(role) + "> " + colorReset)
		if err != nil {
			return fmt.Errorf("failed to create readline: %w", err)
		}
		defer rl.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%sType a prompt, or 'q' to quit.%s\n", colorDim, colorReset)
		for {
			line, err := rl.Readline()
			if err != nil {
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					fmt.Fprintf(out, "%sGoodbye!%s\n", colorGreen, colorReset)
					return nil
				}
				return fmt.Errorf("failed to read input: %w", err)
			}

			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "q", "Q", "quit", "exit":
				fmt.Fprintf(out, "%sGoodbye!%s\n", colorGreen, colorReset)
				return nil
			}

			start := time.Now()
			text := e.gateway.Complete(cmd.Context(), line, role)
			color := colorReset
			if gateway.IsSentinel(text) {
				color = colorRed
			}
			fmt.Fprintf(out, "%s%s%s\n", color, text, colorReset)
			fmt.Fprintf(out, "%s(%s)%s\n\n", colorYellow, formatDuration(time.Since(start)), colorReset)

			if cmd.Context().Err() != nil {
				return nil
			}
		}
	},
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

func init() {
	chatCmd.Flags().StringVarP(&chatRole, "role", "r", string(genagents.RoleGeneral), "model role to chat with")
	chatCmd.Flags().StringVar(&chatMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}
