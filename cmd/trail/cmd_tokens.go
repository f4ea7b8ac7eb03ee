package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/trail/format"
	"github.com/dhamidi/trail/query/parser"
)

func newTokensCmd() *cobra.Command {
	var trivia bool

	cmd := &cobra.Command{
		Use:   "tokens <query>",
		Short: "List the tokens of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return format.NewTokenEncoder(cmd.OutOrStdout(), trivia).Encode(parser.Tokenize(args[0]))
		},
	}

	cmd.Flags().BoolVar(&trivia, "trivia", false, "include whitespace and comments")

	return cmd
}
