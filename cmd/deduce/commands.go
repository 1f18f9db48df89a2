package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/deduce/pkg/deduce"
	"github.com/cognicore/deduce/pkg/deduce/export"
)

// withEngine builds the engine from the root flags and runs fn against it.
func withEngine(flags *rootFlags, fn func(*deduce.Engine) error) error {
	engine, cleanup, err := buildEngine(flags.configPath, flags.kbPaths)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(engine)
}

func newAskCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ask <fact>",
		Short:   "Report whether a ground fact holds",
		Example: `  deduce --kb family.kb ask "(ancestor ann dan)"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *deduce.Engine) error {
				return runAsk(cmd.OutOrStdout(), e, strings.Join(args, " "))
			})
		},
	}
}

func newQueryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "query <pattern>",
		Short:   "List variable bindings for every fact matching a pattern",
		Example: `  deduce --kb family.kb query "(ancestor ann ?who)"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *deduce.Engine) error {
				return runQuery(cmd.OutOrStdout(), e, strings.Join(args, " "))
			})
		},
	}
}

func newExplainCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <statement>",
		Short: "Show how a fact or rule was derived",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *deduce.Engine) error {
				return runExplain(cmd.OutOrStdout(), e, strings.Join(args, " "))
			})
		},
	}
}

func newDumpCmd(flags *rootFlags) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every stored fact and rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *deduce.Engine) error {
				runDump(cmd.OutOrStdout(), e)
				if stats {
					runStats(cmd.OutOrStdout(), e)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "Also print counts and metrics")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the asserted facts and rules as a knowledge base file",
		Long:  "Write the asserted facts and rules as a knowledge base file. Without a file argument the text goes to stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *deduce.Engine) error {
				if len(args) == 0 {
					fmt.Fprint(cmd.OutOrStdout(), export.Render(e.KB()))
					return nil
				}
				return runExport(cmd.Context(), e, args[0])
			})
		},
	}
}

func runExport(ctx context.Context, e *deduce.Engine, path string) error {
	exporter := export.Exporter{Writer: export.FileWriter{Path: path}}
	if err := exporter.Export(ctx, e.KB()); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func runAsk(w io.Writer, e *deduce.Engine, text string) error {
	ok, err := e.Ask(text)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(w, "yes")
	} else {
		fmt.Fprintln(w, "no")
	}
	return nil
}

func runQuery(w io.Writer, e *deduce.Engine, text string) error {
	bindings, err := e.Query(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, deduce.FormatBindings(bindings))
	return nil
}

func runExplain(w io.Writer, e *deduce.Engine, text string) error {
	j, err := e.Explain(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, j)
	return nil
}

func runDump(w io.Writer, e *deduce.Engine) {
	origin := func(asserted bool) string {
		if asserted {
			return "asserted"
		}
		return "derived "
	}

	facts := e.KB().Facts()
	fmt.Fprintf(w, "Facts (%d):\n", len(facts))
	for _, f := range facts {
		fmt.Fprintf(w, "  %s %s %s\n", f.ID(), origin(f.Asserted()), f)
	}

	rules := e.KB().Rules()
	fmt.Fprintf(w, "Rules (%d):\n", len(rules))
	for _, r := range rules {
		fmt.Fprintf(w, "  %s %s %s\n", r.ID(), origin(r.Asserted()), r)
	}
}

func runStats(w io.Writer, e *deduce.Engine) {
	fmt.Fprintln(w, e.KB().Stats())

	reg := e.Registry()
	if reg == nil {
		return
	}
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintln(w, "metrics:", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "  %s %g\n", name, m.GetCounter().GetValue())
		}
	}
}
