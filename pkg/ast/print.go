package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print serializes a node back to surface syntax. Expressions are fully
// parenthesized so the output reparses to a structurally equal tree.
func Print(node Node) string {
	var p printer
	p.node(node)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) write(s string) { p.b.WriteString(s) }

func (p *printer) newline() {
	p.b.WriteByte('\n')
	p.b.WriteString(strings.Repeat("  ", p.indent))
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case *Program:
		for i, stmt := range n.Body {
			if i > 0 {
				p.newline()
			}
			p.statement(stmt)
		}
	case Statement:
		p.statement(n)
	case Expression:
		p.expression(n)
	default:
		p.write(fmt.Sprintf("/* %s */", node.NodeType()))
	}
}

func (p *printer) statement(stmt Statement) {
	switch s := stmt.(type) {
	case *ExpressionStatement:
		p.expression(s.Expression)
		p.write(";")
	case *VariableStatement:
		p.variableHead(s)
		p.write(";")
	case *BlockStatement:
		p.write("{")
		p.indent++
		for _, inner := range s.Body {
			p.newline()
			p.statement(inner)
		}
		p.indent--
		p.newline()
		p.write("}")
	case *IfStatement:
		p.write("if (")
		p.expression(s.Test)
		p.write(") ")
		p.statement(s.Consequent)
		if s.Alternate != nil {
			p.write(" else ")
			p.statement(s.Alternate)
		}
	case *WhileStatement:
		p.write("while (")
		p.expression(s.Test)
		p.write(") ")
		p.statement(s.Body)
	case *ForStatement:
		p.write("for (")
		if s.Init != nil {
			switch init := s.Init.(type) {
			case *VariableStatement:
				p.variableHead(init)
			case *ExpressionStatement:
				p.expression(init.Expression)
			}
		}
		p.write("; ")
		if s.Test != nil {
			p.expression(s.Test)
		}
		p.write("; ")
		if s.Update != nil {
			p.expression(s.Update)
		}
		p.write(") ")
		p.statement(s.Body)
	case *FunctionDeclaration:
		p.write("def ")
		p.write(s.Name.Name)
		p.write("(")
		for i, param := range s.Params {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Name)
		}
		p.write(") ")
		p.statement(s.Body)
	case *ReturnStatement:
		if s.Argument != nil {
			p.write("return ")
			p.expression(s.Argument)
			p.write(";")
		} else {
			p.write("return;")
		}
	default:
		p.write(fmt.Sprintf("/* %s */;", stmt.NodeType()))
	}
}

// variableHead prints a variable statement without its terminator so it can
// double as a for-loop init clause.
func (p *printer) variableHead(s *VariableStatement) {
	p.write("banao ")
	for i, decl := range s.Declarations {
		if i > 0 {
			p.write(", ")
		}
		p.write(decl.ID.Name)
		if decl.Init != nil {
			p.write(" = ")
			p.expression(decl.Init)
		}
	}
}

func (p *printer) expression(expr Expression) {
	switch e := expr.(type) {
	case *Identifier:
		p.write(e.Name)
	case *NumericLiteral:
		p.write(strconv.FormatFloat(e.Value, 'f', -1, 64))
	case *StringLiteral:
		p.write(strconv.Quote(e.Value))
	case *BooleanLiteral:
		if e.Value {
			p.write("true")
		} else {
			p.write("false")
		}
	case *NullLiteral:
		p.write("null")
	case *UnaryExpression:
		p.write("(")
		p.write(e.Operator)
		p.expression(e.Operand)
		p.write(")")
	case *BinaryExpression:
		p.write("(")
		p.expression(e.Left)
		p.write(" " + e.Operator + " ")
		p.expression(e.Right)
		p.write(")")
	case *LogicalExpression:
		p.write("(")
		p.expression(e.Left)
		p.write(" " + e.Operator + " ")
		p.expression(e.Right)
		p.write(")")
	case *AssignmentExpression:
		p.write("(")
		p.expression(e.Target)
		p.write(" " + e.Operator + " ")
		p.expression(e.Value)
		p.write(")")
	case *CallExpression:
		p.expression(e.Callee)
		p.write("(")
		for i, arg := range e.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.expression(arg)
		}
		p.write(")")
	default:
		p.write(fmt.Sprintf("/* %s */", expr.NodeType()))
	}
}
