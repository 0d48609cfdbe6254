package toyir

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// tokenLexer is the flow language's lexer, built the same way the
// teacher's grammar package builds KansoLexer.
var tokenLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Operator", `(==|!=|<=|>=|&&|\|\||[-+*/%<>=!])`, nil},
		{"Punctuation", `[{}().,;:]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
