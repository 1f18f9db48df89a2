package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/deduce/pkg/deduce"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	kbPaths    []string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "deduce",
		Short:         "Forward-chaining knowledge base",
		Long:          "deduce loads facts and rules, derives their consequences, and answers questions about them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file (YAML)")
	root.PersistentFlags().StringArrayVarP(&flags.kbPaths, "kb", "k", nil, "Knowledge base file to load (repeatable)")

	root.AddCommand(
		newReplCmd(flags),
		newAskCmd(flags),
		newQueryCmd(flags),
		newExplainCmd(flags),
		newDumpCmd(flags),
		newExportCmd(flags),
		newWatchCmd(flags),
	)
	return root
}

func buildEngine(configPath string, kbPaths []string) (*deduce.Engine, func(), error) {
	engine, err := deduce.Open(configPath, kbPaths...)
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}

	cleanup := func() {
		engine.Close()
	}

	return engine, cleanup, nil
}
