package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/repl"
)

func newREPLCmd(opts *globalOptions) *cobra.Command {
	var docs documentFlags
	var historyFile string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Run queries interactively with completion and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, context, err := docs.load(opts, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if historyFile == "" {
				historyFile = opts.config.HistoryFile
			}

			session := repl.NewSession(cmd.OutOrStdout(), data, context, methods.Builtins())
			session.Format = opts.config.Format
			return repl.Run(session, historyFile, version)
		},
	}

	cmd.Flags().StringVarP(&docs.data, "data", "d", "", "data file (json or yaml)")
	cmd.Flags().StringVarP(&docs.context, "context", "c", "", "context file bound to #")
	cmd.Flags().StringVar(&historyFile, "history", "", "history file (defaults to the configured one)")

	return cmd
}
