package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/trail/lsp"
	"github.com/dhamidi/trail/query/methods"
)

func newLSPCmd(opts *globalOptions) *cobra.Command {
	var docs documentFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Serve query documents over stdio.

Completions are computed against the data and context files, which are
reloaded when they change on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataPath, contextPath := docs.data, docs.context
			if dataPath == "" {
				dataPath = opts.config.Data
			}
			if contextPath == "" {
				contextPath = opts.config.Context
			}
			source := lsp.NewDataSource(dataPath, contextPath)
			server := lsp.NewLSPServer(version, source, methods.Builtins())
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVarP(&docs.data, "data", "d", "", "data file (json or yaml)")
	cmd.Flags().StringVarP(&docs.context, "context", "c", "", "context file bound to #")

	return cmd
}
