package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/trail/format"
	"github.com/dhamidi/trail/query"
	"github.com/dhamidi/trail/query/eval"
	"github.com/dhamidi/trail/query/methods"
)

func newEvalCmd(opts *globalOptions) *cobra.Command {
	var docs documentFlags
	var outputFormat string
	var substring bool

	cmd := &cobra.Command{
		Use:   "eval <query>",
		Short: "Evaluate a query against a data document",
		Long: `Evaluate a query and print the result.

The data document is bound to $. The query starts from the context
document, bound to #, or from the data when no context is given. Both
default to the files named in the configuration; use - to read one of
them from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, context, err := docs.load(opts, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if outputFormat == "" {
				outputFormat = opts.config.Format
			}
			enc, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			compileOpts := []query.Option{query.WithMethods(methods.Builtins())}
			if substring {
				compileOpts = append(compileOpts, query.WithMatcher(eval.SubstringMatcher))
			}
			q, err := query.Compile(args[0], compileOpts...)
			if err != nil {
				return err
			}

			result, err := q.Evaluate(data, context)
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&docs.data, "data", "d", "", "data file (json or yaml, - for stdin)")
	cmd.Flags().StringVarP(&docs.context, "context", "c", "", "context file bound to #")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (json, yaml, line)")
	cmd.Flags().BoolVar(&substring, "substring", false, "make ~= test for a substring instead of a regular expression")

	return cmd
}
