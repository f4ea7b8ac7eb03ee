package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/trail/format"
	"github.com/dhamidi/trail/query/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var recovery bool
	var includePositions bool

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a query and dump its syntax tree",
		Long: `Parse a query and dump its syntax tree.

With --suggest the parser repairs syntax errors the way completion
does: missing pieces become placeholder nodes, and the completion
slots are included in the JSON output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parseOpts []parser.Option
			if recovery {
				parseOpts = append(parseOpts, parser.WithRecovery())
			}
			p := parser.NewParser(parser.Tokenize(args[0]), parseOpts...)
			root, err := p.Parse()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				result := format.ParseResult{Root: root, Err: p.Err()}
				if recovery {
					result.Slots = p.Slots()
				}
				return format.NewASTJSONEncoder(out).Encode(result)
			case "tree":
				if includePositions {
					fmt.Fprint(out, root.StringWithPositions())
				} else {
					fmt.Fprint(out, root.String())
				}
				if err := p.Err(); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), errorFmt("repaired: %v", err))
				}
				return nil
			}
			return fmt.Errorf("unknown format: %s", outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (json, tree)")
	cmd.Flags().BoolVar(&recovery, "suggest", false, "parse in recovery mode and include completion slots")
	cmd.Flags().BoolVar(&includePositions, "positions", true, "include byte spans in tree output")

	return cmd
}
