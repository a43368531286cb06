// Package parser builds bhasha ASTs by recursive descent with one token of
// lookahead. The grammar is LL(1); the first lex or grammar error aborts the
// parse and no partial tree is returned.
package parser

import (
	"bhasha/interpreter-go/pkg/ast"
	"bhasha/interpreter-go/pkg/diagnostic"
	"bhasha/interpreter-go/pkg/lexer"
)

// Parser holds the token stream state for one parse.
type Parser struct {
	lexer     *lexer.Lexer
	lookahead lexer.Token
	lastEnd   int
}

// Parse tokenizes and parses a complete source string into a Program.
func Parse(source string) (*ast.Program, error) {
	p := &Parser{lexer: lexer.New(source)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

// advance consumes the lookahead token and fetches the next one.
func (p *Parser) advance() error {
	p.lastEnd = p.lookahead.Span.End
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.lookahead = tok
	return nil
}

// expect consumes the lookahead if it has the wanted kind, or fails with a
// ParseError naming the expected and actual kinds.
func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	if p.lookahead.Kind != kind {
		return lexer.Token{}, p.unexpected(kind.String())
	}
	tok := p.lookahead
	if err := p.advance(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

func (p *Parser) unexpected(expected string) error {
	actual := p.lookahead.Kind.String()
	switch p.lookahead.Kind {
	case lexer.Ident, lexer.Number, lexer.String:
		actual += " '" + p.lookahead.Literal + "'"
	}
	return &diagnostic.ParseError{
		Expected: expected,
		Actual:   actual,
		Span:     p.lookahead.Span,
	}
}

// terminator consumes the statement terminator. Omission is legal only at
// the true end of input.
func (p *Parser) terminator() error {
	if p.lookahead.Kind == lexer.EOF {
		return nil
	}
	_, err := p.expect(lexer.Semicolon)
	return err
}

// start marks where the node about to be parsed begins.
func (p *Parser) start() int {
	return p.lookahead.Span.Start
}

// finish stamps a node with the span from start to the last consumed token.
func (p *Parser) finish(node ast.Node, start int) {
	ast.SetSpan(node, ast.Span{Start: start, End: p.lastEnd})
}
