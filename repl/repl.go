// Package repl is an interactive prompt for running queries against a
// loaded data document, with history and tab completion driven by the
// suggestion engine.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/trail/format"
	"github.com/dhamidi/trail/query"
	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/suggest"
	"github.com/dhamidi/trail/query/value"
)

const (
	prompt             = "trail> "
	continuationPrompt = "  ...> "
)

var (
	log = commonlog.GetLogger("trail.repl")

	errorFmt  = color.New(color.FgRed).SprintfFunc()
	headerFmt = color.New(color.FgBlue, color.Bold).SprintFunc()
	dimFmt    = color.New(color.Faint).SprintFunc()
)

// Session holds the documents and settings queries run against. It is
// driven by Run, but Eval, Command and Complete work without a terminal.
type Session struct {
	Data    any
	Context any
	Format  string

	methods methods.Registry
	engine  *suggest.Engine
	out     io.Writer
}

func NewSession(out io.Writer, data, context any, registry methods.Registry) *Session {
	return &Session{
		Data:    data,
		Context: context,
		Format:  "json",
		methods: registry,
		engine:  suggest.New(suggest.WithMethods(registry)),
		out:     out,
	}
}

// Eval compiles and evaluates input, writing the result or the error.
func (s *Session) Eval(input string) {
	log.Debugf("evaluating %q", input)

	q, err := query.Compile(input, query.WithMethods(s.methods))
	if err != nil {
		s.printError(err)
		return
	}
	result, err := q.Evaluate(s.Data, s.Context)
	if err != nil {
		s.printError(err)
		return
	}

	enc, err := format.NewEncoder(s.Format, s.out)
	if err != nil {
		s.printError(err)
		return
	}
	if err := enc.Encode(result); err != nil {
		s.printError(err)
	}
}

func (s *Session) printError(err error) {
	fmt.Fprintln(s.out, errorFmt("error: %v", err))
}

// Command runs a `:name args` meta command. It reports false when the
// command is unknown.
func (s *Session) Command(line string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		s.printHelp()
	case ":data":
		s.loadInto(&s.Data, arg)
	case ":context":
		s.loadInto(&s.Context, arg)
	case ":format":
		if arg == "" {
			fmt.Fprintln(s.out, s.Format)
			return true
		}
		if _, err := format.NewEncoder(arg, io.Discard); err != nil {
			s.printError(err)
			return true
		}
		s.Format = arg
	case ":methods":
		s.printMethods()
	case ":ast":
		p := parser.NewParser(parser.Tokenize(arg), parser.WithRecovery())
		root, _ := p.Parse()
		fmt.Fprint(s.out, root.StringWithPositions())
		if err := p.Err(); err != nil {
			s.printError(err)
		}
	case ":tokens":
		if err := format.NewTokenEncoder(s.out, false).Encode(parser.Tokenize(arg)); err != nil {
			s.printError(err)
		}
	case ":fmt":
		out, err := format.PrettyPrintQuery([]byte(arg))
		if err != nil {
			s.printError(err)
			return true
		}
		s.out.Write(out)
	default:
		return false
	}
	return true
}

func (s *Session) loadInto(target *any, path string) {
	if path == "" {
		s.printError(errors.New("missing file argument"))
		return
	}
	v, err := value.LoadFile(path)
	if err != nil {
		s.printError(err)
		return
	}
	*target = v
	log.Infof("loaded %s", path)
	fmt.Fprintln(s.out, dimFmt("loaded "+path))
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, headerFmt("Commands:"))
	fmt.Fprintln(s.out, "  :help              show this help")
	fmt.Fprintln(s.out, "  :data <file>       load the data document ($)")
	fmt.Fprintln(s.out, "  :context <file>    load the context document (#)")
	fmt.Fprintln(s.out, "  :format [name]     show or set the output format (json, yaml, line)")
	fmt.Fprintln(s.out, "  :methods           list the callable methods")
	fmt.Fprintln(s.out, "  :ast <query>       show the syntax tree of a query")
	fmt.Fprintln(s.out, "  :tokens <query>    show the tokens of a query")
	fmt.Fprintln(s.out, "  :fmt <query>       print a query in canonical form")
	fmt.Fprintln(s.out, "  exit, quit         leave the prompt")
}

func (s *Session) printMethods() {
	for _, name := range s.methods.Names() {
		m := s.methods[name]
		line := fmt.Sprintf("  %-10s", name)
		if m.Arity != "" {
			line += dimFmt(" args: " + m.Arity)
		}
		if m.Description != "" {
			line += "  " + m.Description
		}
		fmt.Fprintln(s.out, line)
	}
}

// Complete is a liner.WordCompleter. pos counts runes. The word being
// completed is the suggestion's replacement span, and only candidates
// starting with the text typed so far are offered.
func (s *Session) Complete(line string, pos int) (head string, completions []string, tail string) {
	offset := len(string([]rune(line)[:pos]))

	sug := s.engine.Suggest(line, s.Data, s.Context, offset)
	if sug == nil {
		return line[:offset], nil, line[offset:]
	}

	typed := line[sug.From:offset]
	for _, candidate := range sug.Candidates {
		name := strings.TrimPrefix(strings.TrimPrefix(candidate, suggest.MethodPrefix), suggest.PropertyPrefix)
		if strings.HasPrefix(name, typed) {
			completions = append(completions, name)
		}
	}
	sort.Strings(completions)
	return line[:sug.From], completions, line[sug.To:]
}

// NeedsMoreInput reports whether input has an unclosed bracket or string,
// so the prompt should continue on the next line.
func NeedsMoreInput(input string) bool {
	depth := 0
	for _, tok := range parser.Tokenize(input) {
		switch tok.Kind {
		case parser.TokenLParen, parser.TokenLBracket, parser.TokenLBrace:
			depth++
		case parser.TokenRParen, parser.TokenRBracket, parser.TokenRBrace:
			depth--
		case parser.TokenError:
			if strings.HasPrefix(tok.Literal, "'") || strings.HasPrefix(tok.Literal, `"`) {
				return true
			}
		}
	}
	return depth > 0
}

// Run reads queries from the terminal until exit, quit or end of input.
// History is read from and written back to historyFile when it is set.
func Run(s *Session, historyFile, version string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetWordCompleter(s.Complete)
	line.SetTabCompletionStyle(liner.TabPrints)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			if _, err := line.ReadHistory(f); err != nil {
				log.Errorf("read history: %s", err)
			}
			f.Close()
		}
		defer func() {
			f, err := os.Create(historyFile)
			if err != nil {
				log.Errorf("write history: %s", err)
				return
			}
			defer f.Close()
			if _, err := line.WriteHistory(f); err != nil {
				log.Errorf("write history: %s", err)
			}
		}()
	}

	fmt.Fprintf(s.out, "trail %s\n", version)
	fmt.Fprintln(s.out, dimFmt("Type ':help' for commands, 'exit' or Ctrl+D to quit"))

	var buffer strings.Builder
	for {
		current := prompt
		if buffer.Len() > 0 {
			current = continuationPrompt
		}
		input, err := line.Prompt(current)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				buffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		trimmed := strings.TrimSpace(input)
		if buffer.Len() == 0 {
			switch {
			case trimmed == "":
				continue
			case trimmed == "exit" || trimmed == "quit":
				return nil
			case strings.HasPrefix(trimmed, ":"):
				line.AppendHistory(trimmed)
				if !s.Command(trimmed) {
					s.printError(fmt.Errorf("unknown command %s", strings.Fields(trimmed)[0]))
				}
				continue
			}
		}

		if buffer.Len() > 0 {
			buffer.WriteByte('\n')
		}
		buffer.WriteString(input)
		full := buffer.String()
		if NeedsMoreInput(full) {
			continue
		}

		line.AppendHistory(full)
		s.Eval(full)
		buffer.Reset()
	}
}
