// Package lexer turns bhasha source text into a lazily produced token
// stream. Recognition is table driven: an ordered list of rules is tried at
// the current offset and the first match wins, so keyword rules precede the
// generic identifier rule and two-character operators precede their
// one-character prefixes.
package lexer

import "bhasha/interpreter-go/pkg/diagnostic"

// rule pairs a matcher with the kind it produces. Discard rules (whitespace,
// comments) consume text without emitting a token.
type rule struct {
	kind    Kind
	discard bool
	match   func(src string, pos int) int
}

// rules is consulted in order; the first rule returning a nonzero length
// wins. Ordering is load bearing.
var rules = buildRules()

func buildRules() []rule {
	rs := []rule{
		{discard: true, match: matchWhitespace},
		{discard: true, match: matchLineComment},
		{discard: true, match: matchBlockComment},
	}
	for _, kw := range keywords {
		rs = append(rs, rule{kind: kw.kind, match: matchWord(kw.spelling)})
	}
	rs = append(rs,
		rule{kind: Number, match: matchNumber},
		rule{kind: String, match: matchString},
		rule{kind: Ident, match: matchIdent},
	)
	for _, op := range operators {
		rs = append(rs, rule{kind: op.kind, match: matchExact(op.spelling)})
	}
	return rs
}

// keywords maps surface spellings to token kinds. These rules run before the
// identifier rule so a keyword is never classified as an identifier.
var keywords = []struct {
	spelling string
	kind     Kind
}{
	{"banao", Banao},
	{"def", Def},
	{"return", Return},
	{"if", If},
	{"else", Else},
	{"while", While},
	{"for", For},
	{"true", True},
	{"false", False},
	{"null", Null},
}

// operators are ordered longest spelling first within each shared prefix.
var operators = []struct {
	spelling string
	kind     Kind
}{
	{"==", Eq},
	{"!=", NotEq},
	{"<=", LessEq},
	{">=", GreaterEq},
	{"&&", And},
	{"||", Or},
	{"+=", PlusAssign},
	{"-=", MinusAssign},
	{"*=", StarAssign},
	{"/=", SlashAssign},
	{"=", Assign},
	{"<", Less},
	{">", Greater},
	{"+", Plus},
	{"-", Minus},
	{"*", Star},
	{"/", Slash},
	{"!", Bang},
	{"(", LParen},
	{")", RParen},
	{"{", LBrace},
	{"}", RBrace},
	{",", Comma},
	{";", Semicolon},
}

// Lexer walks the source one token at a time. It keeps no state beyond the
// current offset, so for a given source the token sequence is always
// identical.
type Lexer struct {
	source string
	pos    int
}

// New returns a lexer positioned at the start of source.
func New(source string) *Lexer {
	return &Lexer{source: source}
}

// NextToken returns the next token, or an EOF token once the source is
// exhausted. Calling NextToken after EOF keeps returning EOF.
func (l *Lexer) NextToken() (Token, error) {
	for l.pos < len(l.source) {
		matched := false
		for _, r := range rules {
			n := r.match(l.source, l.pos)
			if n == 0 {
				continue
			}
			start := l.pos
			l.pos += n
			if r.discard {
				matched = true
				break
			}
			return Token{
				Kind:    r.kind,
				Literal: l.source[start : start+n],
				Span:    diagnostic.Span{Start: start, End: start + n},
			}, nil
		}
		if matched {
			continue
		}
		return Token{}, l.fail()
	}
	return Token{Kind: EOF, Literal: "", Span: diagnostic.Span{Start: len(l.source), End: len(l.source)}}, nil
}

// fail builds the LexError for the character no rule matched. An opening
// quote that reaches this point is an unterminated string, since the string
// rule only matches closed literals.
func (l *Lexer) fail() error {
	kind := diagnostic.UnrecognizedCharacter
	end := l.pos + 1
	if l.source[l.pos] == '"' {
		kind = diagnostic.UnterminatedString
		end = len(l.source)
	}
	return &diagnostic.LexError{
		Kind: kind,
		Text: l.source[l.pos:end],
		Span: diagnostic.Span{Start: l.pos, End: end},
	}
}

func matchWhitespace(src string, pos int) int {
	n := 0
	for pos+n < len(src) {
		switch src[pos+n] {
		case ' ', '\t', '\r', '\n':
			n++
		default:
			return n
		}
	}
	return n
}

func matchLineComment(src string, pos int) int {
	if pos+1 >= len(src) || src[pos] != '/' || src[pos+1] != '/' {
		return 0
	}
	n := 2
	for pos+n < len(src) && src[pos+n] != '\n' {
		n++
	}
	return n
}

func matchBlockComment(src string, pos int) int {
	if pos+1 >= len(src) || src[pos] != '/' || src[pos+1] != '*' {
		return 0
	}
	n := 2
	for pos+n+1 < len(src) {
		if src[pos+n] == '*' && src[pos+n+1] == '/' {
			return n + 2
		}
		n++
	}
	// Unclosed block comments swallow the rest of the file.
	return len(src) - pos
}

// matchWord matches spelling only when the following character cannot extend
// an identifier, so 'fortune' never lexes as 'for'.
func matchWord(spelling string) func(string, int) int {
	return func(src string, pos int) int {
		end := pos + len(spelling)
		if end > len(src) || src[pos:end] != spelling {
			return 0
		}
		if end < len(src) && isIdentChar(src[end]) {
			return 0
		}
		return len(spelling)
	}
}

func matchExact(spelling string) func(string, int) int {
	return func(src string, pos int) int {
		end := pos + len(spelling)
		if end > len(src) || src[pos:end] != spelling {
			return 0
		}
		return len(spelling)
	}
}

func matchNumber(src string, pos int) int {
	n := 0
	for pos+n < len(src) && isDigit(src[pos+n]) {
		n++
	}
	if n == 0 {
		return 0
	}
	if pos+n+1 < len(src) && src[pos+n] == '.' && isDigit(src[pos+n+1]) {
		n += 2
		for pos+n < len(src) && isDigit(src[pos+n]) {
			n++
		}
	}
	return n
}

// matchString only matches a fully closed double-quoted literal; an opening
// quote with no closing quote falls through to the error path.
func matchString(src string, pos int) int {
	if src[pos] != '"' {
		return 0
	}
	n := 1
	for pos+n < len(src) {
		switch src[pos+n] {
		case '\\':
			n += 2
		case '"':
			return n + 1
		case '\n':
			return 0
		default:
			n++
		}
	}
	return 0
}

func matchIdent(src string, pos int) int {
	if !isIdentStart(src[pos]) {
		return 0
	}
	n := 1
	for pos+n < len(src) && isIdentChar(src[pos+n]) {
		n++
	}
	return n
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
