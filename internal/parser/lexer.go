package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer splits a REPL line into tokens. Keywords must precede Ident and
// Dice must precede Int so "d6" and "3d6" are not read as names or numbers.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(?:deal|roll|keep|lock|for|unlock|preserve|restore|remove|end|attack|damage|from|heal|gold|buy|relic|wave|reward|zone|shield|status|help|quit|exit)\b`},
	{Name: "Dice", Pattern: `\b\d*[dD]\d+\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:,]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// Build creates the parser from the struct tags in ast.go.
func Build() *participle.Parser[Command] {
	return participle.MustBuild[Command](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Keyword"),
	)
}

var defaultParser = Build()

// Parse reads one REPL line. Parse failures are mapped to usage guidance.
func Parse(input string) (*Command, error) {
	cmd, err := defaultParser.ParseString("", input)
	if err != nil {
		return nil, MapError(input, err)
	}
	return cmd, nil
}
