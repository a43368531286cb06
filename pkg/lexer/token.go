package lexer

import "bhasha/interpreter-go/pkg/diagnostic"

// Kind identifies the lexical category of a token.
type Kind int

const (
	// EOF is returned once the source is exhausted; repeated calls keep
	// returning it.
	EOF Kind = iota

	// Literals and identifiers.
	Ident
	Number
	String

	// Keywords. The surface spellings live in the keywords table below; the
	// parser only ever sees these kinds.
	Banao
	Def
	Return
	If
	Else
	While
	For
	True
	False
	Null

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Semicolon

	// Operators. Compound spellings must be matched before their prefixes.
	Eq
	NotEq
	LessEq
	GreaterEq
	Less
	Greater
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	Assign
	And
	Or
	Plus
	Minus
	Star
	Slash
	Bang
)

var kindNames = map[Kind]string{
	EOF:         "end of input",
	Ident:       "identifier",
	Number:      "number",
	String:      "string",
	Banao:       "'banao'",
	Def:         "'def'",
	Return:      "'return'",
	If:          "'if'",
	Else:        "'else'",
	While:       "'while'",
	For:         "'for'",
	True:        "'true'",
	False:       "'false'",
	Null:        "'null'",
	LParen:      "'('",
	RParen:      "')'",
	LBrace:      "'{'",
	RBrace:      "'}'",
	Comma:       "','",
	Semicolon:   "';'",
	Eq:          "'=='",
	NotEq:       "'!='",
	LessEq:      "'<='",
	GreaterEq:   "'>='",
	Less:        "'<'",
	Greater:     "'>'",
	PlusAssign:  "'+='",
	MinusAssign: "'-='",
	StarAssign:  "'*='",
	SlashAssign: "'/='",
	Assign:      "'='",
	And:         "'&&'",
	Or:          "'||'",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	Bang:        "'!'",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown token"
}

// Token is a classified slice of the source. Span holds zero-based byte
// offsets; Literal is the raw matched text.
type Token struct {
	Kind    Kind
	Literal string
	Span    diagnostic.Span
}
