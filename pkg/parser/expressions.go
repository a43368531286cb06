package parser

import (
	"strconv"
	"strings"

	"bhasha/interpreter-go/pkg/ast"
	"bhasha/interpreter-go/pkg/lexer"
)

// Expression grammar, precedence low to high:
//
//	Assignment -> LogicalOr -> LogicalAnd -> Equality -> Relational ->
//	Additive -> Multiplicative -> Unary -> Call -> Primary
//
// Each level parses its operand at the next-higher level and loops while the
// lookahead is an operator of its own level, associating to the left.
// Assignment alone associates to the right.

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignmentExpression()
}

var assignmentOps = map[lexer.Kind]string{
	lexer.Assign:      "=",
	lexer.PlusAssign:  "+=",
	lexer.MinusAssign: "-=",
	lexer.StarAssign:  "*=",
	lexer.SlashAssign: "/=",
}

func (p *Parser) parseAssignmentExpression() (ast.Expression, error) {
	start := p.start()
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	op, ok := assignmentOps[p.lookahead.Kind]
	if !ok {
		return left, nil
	}
	target, ok := left.(*ast.Identifier)
	if !ok {
		return nil, p.unexpected("assignment target (identifier)")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	assign := ast.NewAssignmentExpression(op, target, value)
	p.finish(assign, start)
	return assign, nil
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	start := p.start()
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.lookahead.Kind == lexer.Or {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		node := ast.NewLogicalExpression("||", left, right)
		p.finish(node, start)
		left = node
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	start := p.start()
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.lookahead.Kind == lexer.And {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		node := ast.NewLogicalExpression("&&", left, right)
		p.finish(node, start)
		left = node
	}
	return left, nil
}

var (
	equalityOps   = map[lexer.Kind]string{lexer.Eq: "==", lexer.NotEq: "!="}
	relationalOps = map[lexer.Kind]string{
		lexer.Less:      "<",
		lexer.Greater:   ">",
		lexer.LessEq:    "<=",
		lexer.GreaterEq: ">=",
	}
	additiveOps       = map[lexer.Kind]string{lexer.Plus: "+", lexer.Minus: "-"}
	multiplicativeOps = map[lexer.Kind]string{lexer.Star: "*", lexer.Slash: "/"}
)

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinaryLevel(equalityOps, p.parseRelational)
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	return p.parseBinaryLevel(relationalOps, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinaryLevel(additiveOps, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinaryLevel(multiplicativeOps, p.parseUnary)
}

// parseBinaryLevel builds one left-associative precedence level.
func (p *Parser) parseBinaryLevel(ops map[lexer.Kind]string, next func() (ast.Expression, error)) (ast.Expression, error) {
	start := p.start()
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.lookahead.Kind]
		if !ok {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		node := ast.NewBinaryExpression(op, left, right)
		p.finish(node, start)
		left = node
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	var op string
	switch p.lookahead.Kind {
	case lexer.Minus:
		op = "-"
	case lexer.Plus:
		op = "+"
	case lexer.Bang:
		op = "!"
	default:
		return p.parseCall()
	}
	start := p.start()
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	node := ast.NewUnaryExpression(op, operand)
	p.finish(node, start)
	return node, nil
}

// parseCall parses a primary expression followed by zero or more adjacent
// argument lists, so chained calls like f(1)(2) work.
func (p *Parser) parseCall() (ast.Expression, error) {
	start := p.start()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.lookahead.Kind == lexer.LParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []ast.Expression
		if p.lookahead.Kind != lexer.RParen {
			for {
				arg, err := p.parseAssignmentExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.lookahead.Kind != lexer.Comma {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		call := ast.NewCallExpression(expr, args)
		p.finish(call, start)
		expr = call
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.lookahead
	switch tok.Kind {
	case lexer.Number:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.unexpected("numeric literal")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		node := ast.NewNumericLiteral(value)
		ast.SetSpan(node, tok.Span)
		return node, nil
	case lexer.String:
		node := ast.NewStringLiteral(unescapeString(tok.Literal))
		ast.SetSpan(node, tok.Span)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case lexer.True, lexer.False:
		node := ast.NewBooleanLiteral(tok.Kind == lexer.True)
		ast.SetSpan(node, tok.Span)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case lexer.Null:
		node := ast.NewNullLiteral()
		ast.SetSpan(node, tok.Span)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case lexer.Ident:
		node := ast.NewIdentifier(tok.Literal)
		ast.SetSpan(node, tok.Span)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil
	case lexer.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.unexpected("expression")
	}
}

// unescapeString strips the surrounding quotes and decodes the escape
// sequences the lexer admits.
func unescapeString(literal string) string {
	body := literal[1 : len(literal)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i+1 == len(body) {
			b.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
