package parser

import (
	"bhasha/interpreter-go/pkg/ast"
	"bhasha/interpreter-go/pkg/lexer"
)

func (p *Parser) parseProgram() (*ast.Program, error) {
	start := p.start()
	var body []ast.Statement
	for p.lookahead.Kind != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	program := ast.NewProgram(body)
	p.finish(program, start)
	return program, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.lookahead.Kind {
	case lexer.LBrace:
		return p.parseBlockStatement()
	case lexer.Banao:
		return p.parseVariableStatement()
	case lexer.If:
		return p.parseIfStatement()
	case lexer.While:
		return p.parseWhileStatement()
	case lexer.For:
		return p.parseForStatement()
	case lexer.Def:
		return p.parseFunctionDeclaration()
	case lexer.Return:
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlockStatement() (*ast.BlockStatement, error) {
	start := p.start()
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	var body []ast.Statement
	for p.lookahead.Kind != lexer.RBrace {
		if p.lookahead.Kind == lexer.EOF {
			return nil, p.unexpected(lexer.RBrace.String())
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	block := ast.NewBlockStatement(body)
	p.finish(block, start)
	return block, nil
}

func (p *Parser) parseVariableStatement() (*ast.VariableStatement, error) {
	stmt, err := p.parseVariableDeclarations()
	if err != nil {
		return nil, err
	}
	if err := p.terminator(); err != nil {
		return nil, err
	}
	p.finish(stmt, stmt.Span().Start)
	return stmt, nil
}

// parseVariableDeclarations reads the 'banao' form without its terminator so
// it can serve as a for-loop init clause.
func (p *Parser) parseVariableDeclarations() (*ast.VariableStatement, error) {
	start := p.start()
	if _, err := p.expect(lexer.Banao); err != nil {
		return nil, err
	}
	var decls []*ast.VariableDeclarator
	for {
		declStart := p.start()
		nameTok, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		id := ast.NewIdentifier(nameTok.Literal)
		ast.SetSpan(id, nameTok.Span)
		var init ast.Expression
		if p.lookahead.Kind == lexer.Assign {
			if err := p.advance(); err != nil {
				return nil, err
			}
			init, err = p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
		}
		decl := ast.NewVariableDeclarator(id, init)
		p.finish(decl, declStart)
		decls = append(decls, decl)
		if p.lookahead.Kind != lexer.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	stmt := ast.NewVariableStatement(decls)
	p.finish(stmt, start)
	return stmt, nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	start := p.start()
	if _, err := p.expect(lexer.If); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	consequent, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var alternate ast.Statement
	if p.lookahead.Kind == lexer.Else {
		if err := p.advance(); err != nil {
			return nil, err
		}
		alternate, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	stmt := ast.NewIfStatement(test, consequent, alternate)
	p.finish(stmt, start)
	return stmt, nil
}

func (p *Parser) parseWhileStatement() (*ast.WhileStatement, error) {
	start := p.start()
	if _, err := p.expect(lexer.While); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewWhileStatement(test, body)
	p.finish(stmt, start)
	return stmt, nil
}

// parseForStatement reads the C-style loop. Each clause may be omitted; an
// omitted test is recorded as nil and treated as always true by the
// evaluator.
func (p *Parser) parseForStatement() (*ast.ForStatement, error) {
	start := p.start()
	if _, err := p.expect(lexer.For); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}

	var init ast.Statement
	switch p.lookahead.Kind {
	case lexer.Semicolon:
		// no init clause
	case lexer.Banao:
		varStmt, err := p.parseVariableDeclarations()
		if err != nil {
			return nil, err
		}
		init = varStmt
	default:
		exprStart := p.start()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprStmt := ast.NewExpressionStatement(expr)
		p.finish(exprStmt, exprStart)
		init = exprStmt
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}

	var test ast.Expression
	if p.lookahead.Kind != lexer.Semicolon {
		var err error
		test, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}

	var update ast.Expression
	if p.lookahead.Kind != lexer.RParen {
		var err error
		update, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewForStatement(init, test, update, body)
	p.finish(stmt, start)
	return stmt, nil
}

func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	start := p.start()
	if _, err := p.expect(lexer.Def); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	name := ast.NewIdentifier(nameTok.Literal)
	ast.SetSpan(name, nameTok.Span)
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var params []*ast.Identifier
	if p.lookahead.Kind != lexer.RParen {
		for {
			paramTok, err := p.expect(lexer.Ident)
			if err != nil {
				return nil, err
			}
			param := ast.NewIdentifier(paramTok.Literal)
			ast.SetSpan(param, paramTok.Span)
			params = append(params, param)
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
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	decl := ast.NewFunctionDeclaration(name, params, body)
	p.finish(decl, start)
	return decl, nil
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	start := p.start()
	if _, err := p.expect(lexer.Return); err != nil {
		return nil, err
	}
	var argument ast.Expression
	if p.lookahead.Kind != lexer.Semicolon && p.lookahead.Kind != lexer.EOF {
		var err error
		argument, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.terminator(); err != nil {
		return nil, err
	}
	stmt := ast.NewReturnStatement(argument)
	p.finish(stmt, start)
	return stmt, nil
}

func (p *Parser) parseExpressionStatement() (*ast.ExpressionStatement, error) {
	start := p.start()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.terminator(); err != nil {
		return nil, err
	}
	stmt := ast.NewExpressionStatement(expr)
	p.finish(stmt, start)
	return stmt, nil
}
