package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/trail/format"
	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/suggest"
)

// cursorMarker marks the cursor in a query when --pos is not given.
const cursorMarker = "|"

func newSuggestCmd(opts *globalOptions) *cobra.Command {
	var docs documentFlags
	var pos int

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Print the completions at a cursor position as JSON",
		Long: `Print the completions for a possibly incomplete query.

The cursor is the byte offset given by --pos. Without --pos the first |
in the query marks the cursor and is removed; without a marker the
cursor is at the end. Prints null when nothing can be completed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, offset, err := cursor(args[0], pos)
			if err != nil {
				return err
			}

			data, context, err := docs.load(opts, cmd.InOrStdin())
			if err != nil {
				return err
			}

			engine := suggest.New(suggest.WithMethods(methods.Builtins()))
			result := engine.Suggest(source, data, context, offset)
			log.Debugf("suggestion at %d: %+v", offset, result)
			return format.NewJSONEncoder(cmd.OutOrStdout()).Encode(result)
		},
	}

	cmd.Flags().StringVarP(&docs.data, "data", "d", "", "data file (json or yaml, - for stdin)")
	cmd.Flags().StringVarP(&docs.context, "context", "c", "", "context file bound to #")
	cmd.Flags().IntVarP(&pos, "pos", "p", -1, "cursor byte offset")

	return cmd
}

func cursor(source string, pos int) (string, int, error) {
	if pos >= 0 {
		if pos > len(source) {
			return "", 0, fmt.Errorf("position %d is past the end of the query", pos)
		}
		return source, pos, nil
	}
	if i := strings.Index(source, cursorMarker); i >= 0 {
		return source[:i] + source[i+len(cursorMarker):], i, nil
	}
	return source, len(source), nil
}
