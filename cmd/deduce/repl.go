package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/deduce/pkg/deduce"
)

const replHelp = `Statements:
  fact: (pred arg ...);               assert a fact
  rule: ((pred ?x ...) ...) -> (...); assert a rule
Commands:
  ask <fact>          does the fact hold?
  query <pattern>     bindings for every matching fact
  retract <statement> remove an asserted fact or rule
  explain <statement> show the derivation tree
  load <file>         load a knowledge base file
  dump                print everything stored
  save <file>         write asserted statements to a file
  stats               counts and metrics
  help                this text
  quit                leave`

func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *deduce.Engine) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "deduce: type help for commands (Ctrl+D to exit)")
				return runRepl(cmd.InOrStdin(), out, e)
			})
		},
	}
}

func runRepl(in io.Reader, out io.Writer, e *deduce.Engine) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if err := executeLine(out, e, line); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func executeLine(w io.Writer, e *deduce.Engine, line string) error {
	if strings.HasPrefix(line, "fact:") || strings.HasPrefix(line, "rule:") {
		st, err := e.Tell(line)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "stored", st)
		return nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "ask":
		return runAsk(w, e, arg)
	case "query":
		return runQuery(w, e, arg)
	case "retract":
		if err := e.Retract(arg); err != nil {
			return err
		}
		fmt.Fprintln(w, "retracted")
		return nil
	case "explain":
		return runExplain(w, e, arg)
	case "load":
		res, err := e.Load(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "loaded %d facts, %d rules (%d skipped)\n", res.Facts, res.Rules, res.Skipped)
		return nil
	case "dump":
		runDump(w, e)
		return nil
	case "save":
		if err := runExport(context.Background(), e, arg); err != nil {
			return err
		}
		fmt.Fprintln(w, "saved", arg)
		return nil
	case "stats":
		runStats(w, e)
		return nil
	case "help":
		fmt.Fprintln(w, replHelp)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}
