package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/debugtrace"
	"github.com/wafo210715/generative-agents/observe"
	"github.com/wafo210715/generative-agents/task"
	"github.com/wafo210715/generative-agents/tasks"
	"go.opentelemetry.io/otel"
	"gopkg.in/yaml.v3"
)

var (
	runInputs   []string
	runTrace    bool
	runOTel     bool
	runAttempts int
	runRole     string
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a task with literal template inputs",
	Long: `Runs a task by name. The task's input builder is bypassed: each
--input flag becomes the next template input, in order. Without a task
name, lists the available tasks.

The result and its audit record are printed as YAML. --trace also streams
every hook event; --otel exports the run's span to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listTasks(cmd.OutOrStdout())
		}
		entry, ok := tasks.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown task %q (run without arguments to list tasks)", args[0])
		}

		var extra []any
		var trace *debugtrace.YAML
		if runTrace {
			trace = debugtrace.NewYAMLWithWriter(cmd.OutOrStdout())
			extra = append(extra, trace)
		}
		if runOTel {
			extra = append(extra, observe.NewTracing())
		}
		extra = append(extra, debugtrace.NewLogHook(logger))

		e, err := loadEnv(logger, extra...)
		if err != nil {
			return err
		}
		rt := e.runtime(logger)

		if runOTel {
			tp, err := observe.NewWriterTracerProvider(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = tp.Shutdown(context.WithoutCancel(cmd.Context())) }()
			otel.SetTracerProvider(tp)
			rt.Tracer = observe.Tracer(tp)
		}

		opts := []task.Option{task.WithTestInput(stringsToAny(runInputs)...)}
		if trace != nil {
			rt.Trace = trace
			opts = append(opts, task.WithVerbose())
		}
		if runAttempts > 0 {
			opts = append(opts, task.WithMaxAttempts(runAttempts))
		}
		if runRole != "" {
			opts = append(opts, task.WithRole(genagents.Role(runRole)))
		}

		value, record, err := entry.Run(cmd.Context(), rt, opts...)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), value, record)
	},
}

func listTasks(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tTEMPLATE")
	for _, e := range tasks.Catalog() {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.TemplateID)
	}
	return tw.Flush()
}

func printResult(w io.Writer, value any, record genagents.RunRecord) error {
	out, err := yaml.Marshal(struct {
		Value  any                 `yaml:"value"`
		Record genagents.RunRecord `yaml:"record"`
	}{value, record})
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = io.WriteString(w, strings.TrimRight(string(out), "\n")+"\n")
	return err
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func init() {
	runCmd.Flags().StringArrayVarP(&runInputs, "input", "i", nil, "template input, repeatable; the n-th flag fills !<INPUT n-1>!")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "stream hook events and the run record as YAML")
	runCmd.Flags().BoolVar(&runOTel, "otel", false, "export the run span to stderr")
	runCmd.Flags().IntVar(&runAttempts, "attempts", 0, "override the attempt bound")
	runCmd.Flags().StringVarP(&runRole, "role", "r", "", "override the model role")
}
