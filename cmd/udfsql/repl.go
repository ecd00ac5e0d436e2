package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/rulego/udfsql"
	"github.com/rulego/udfsql/rsql"
)

const (
	prompt             = ">> "
	continuationPrompt = ".. "
)

const replHelp = `Statements end with ';' and may span several lines.

Commands:
  :help            show this help
  :functions       list registered functions
  :tables          list registered tables
  :run <file>      execute a script file
  exit, quit       leave the shell (or Ctrl+D)
`

// session holds the REPL state that does not depend on the terminal.
type session struct {
	engine *udfsql.Engine
	out    io.Writer
	dumpIR bool
	buf    strings.Builder
}

func newSession(e *udfsql.Engine, out io.Writer, dumpIR bool) *session {
	return &session{engine: e, out: out, dumpIR: dumpIR}
}

// prompt returns the prompt for the next line.
func (s *session) prompt() string {
	if s.buf.Len() > 0 {
		return continuationPrompt
	}
	return prompt
}

// reset drops buffered input.
func (s *session) reset() bool {
	had := s.buf.Len() > 0
	s.buf.Reset()
	return had
}

// handleLine consumes one input line. It returns the completed statement
// text, if any, and false once the user asked to leave.
func (s *session) handleLine(ctx context.Context, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if s.buf.Len() == 0 {
		switch {
		case trimmed == "":
			return "", true
		case trimmed == "exit" || trimmed == "quit":
			return "", false
		case strings.HasPrefix(trimmed, ":"):
			s.command(ctx, trimmed[1:])
			return "", true
		case strings.HasPrefix(trimmed, "run "):
			s.command(ctx, trimmed)
			return "", true
		}
	}

	if s.buf.Len() > 0 {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(line)
	input := s.buf.String()
	if !statementComplete(input) {
		return "", true
	}
	s.buf.Reset()
	printResults(s.out, s.engine.Execute(ctx, input), s.dumpIR)
	return input, true
}

func (s *session) command(ctx context.Context, cmd string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "help", "h":
		fmt.Fprint(s.out, replHelp)
	case "functions", "f":
		printFunctions(s.out, s.engine.Functions())
	case "tables", "t":
		for _, t := range s.engine.Catalog().Names() {
			fmt.Fprintln(s.out, t)
		}
	case "run", "r":
		if arg == "" {
			fmt.Fprintln(s.out, "usage: :run <file>")
			return
		}
		if err := runFile(ctx, s.engine, arg, s.out, s.dumpIR); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	default:
		fmt.Fprintf(s.out, "unknown command %q, type :help\n", name)
	}
}

// completions returns the keywords and names starting with the last word
// of line.
func (s *session) completions(line string) []string {
	start := strings.LastIndexAny(line, " \t\n(,") + 1
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	candidates := rsql.Keywords()
	for _, def := range s.engine.Functions() {
		candidates = append(candidates, def.Name)
	}
	candidates = append(candidates, s.engine.Catalog().Names()...)

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(word)) {
			out = append(out, prefix+c)
		}
	}
	sort.Strings(out)
	return out
}

// statementComplete reports whether input ends with a ';' outside of any
// BEGIN ... END or IF ... END IF block.
func statementComplete(input string) bool {
	l := rsql.NewLexer(input)
	depth := 0
	var last rsql.TokenType
	pending := l.NextToken()
	for pending.Type != rsql.TokenEOF {
		tok := pending
		pending = l.NextToken()
		switch tok.Type {
		case rsql.TokenIllegal:
			// let the parser report it
			return true
		case rsql.TokenBEGIN:
			depth++
		case rsql.TokenEND:
			depth--
			if pending.Type == rsql.TokenIF {
				pending = l.NextToken()
			}
		case rsql.TokenIF:
			// DROP FUNCTION IF EXISTS
			if pending.Type != rsql.TokenEXISTS {
				depth++
			}
		}
		last = tok.Type
	}
	return depth <= 0 && last == rsql.TokenSemicolon
}

func startREPL(e *udfsql.Engine, out io.Writer, historyFile string, dumpIR bool) error {
	s := newSession(e, out, dumpIR)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	line.SetCompleter(s.completions)

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "udfsql %s\n", version)
	fmt.Fprintln(out, "Type ':help' for commands, 'exit' or Ctrl+D to quit")

	ctx := context.Background()
	for {
		input, err := line.Prompt(s.prompt())
		if err == liner.ErrPromptAborted {
			if s.reset() {
				fmt.Fprintln(out, "^C (cleared)")
			}
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		stmt, more := s.handleLine(ctx, input)
		if stmt != "" {
			line.AppendHistory(stmt)
		}
		if !more {
			return nil
		}
	}
}
