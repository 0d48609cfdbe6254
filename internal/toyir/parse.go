package toyir

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

// ParseFile reads and parses path into a Program, the same two-step
// read-then-parse the teacher's grammar.ParseFile performs.
func ParseFile(path string) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses already-read source text, reporting a caret-style
// error on failure the way the teacher's cmd/kanso-cli reports one.
func ParseSource(path, source string) (*Program, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(tokenLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	prog, err := parser.ParseString(path, source)
	if err != nil {
		reportParseError(source, err)
		return nil, err
	}
	return prog, nil
}

func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(pos.Column-1, 0)) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
