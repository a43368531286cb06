package parser

import (
	"errors"
	"testing"

	"bhasha/interpreter-go/pkg/ast"
	"bhasha/interpreter-go/pkg/diagnostic"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return program
}

func parseError(t *testing.T, source string) *diagnostic.ParseError {
	t.Helper()
	_, err := Parse(source)
	if err == nil {
		t.Fatalf("Parse(%q) succeeded, want error", source)
	}
	var parseErr *diagnostic.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse(%q): got %v, want ParseError", source, err)
	}
	return parseErr
}

func onlyExpression(t *testing.T, source string) ast.Expression {
	t.Helper()
	program := parse(t, source)
	if len(program.Body) != 1 {
		t.Fatalf("got %d statements, want 1", len(program.Body))
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("got %T, want ExpressionStatement", program.Body[0])
	}
	return stmt.Expression
}

func TestVariableStatement(t *testing.T) {
	program := parse(t, "banao x = 1, y, z = x;")
	stmt, ok := program.Body[0].(*ast.VariableStatement)
	if !ok {
		t.Fatalf("got %T", program.Body[0])
	}
	if len(stmt.Declarations) != 3 {
		t.Fatalf("got %d declarators, want 3", len(stmt.Declarations))
	}
	if stmt.Declarations[0].ID.Name != "x" || stmt.Declarations[0].Init == nil {
		t.Errorf("first declarator wrong: %+v", stmt.Declarations[0])
	}
	if stmt.Declarations[1].ID.Name != "y" || stmt.Declarations[1].Init != nil {
		t.Errorf("second declarator should have no initializer")
	}
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3).
	expr := onlyExpression(t, "1 + 2 * 3;")
	add, ok := expr.(*ast.BinaryExpression)
	if !ok || add.Operator != "+" {
		t.Fatalf("got %T, want + at root", expr)
	}
	mul, ok := add.Right.(*ast.BinaryExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("right of + is %T, want *", add.Right)
	}
}

func TestLeftAssociativity(t *testing.T) {
	// 8 - 4 - 2 parses as (8 - 4) - 2.
	expr := onlyExpression(t, "8 - 4 - 2;")
	outer, ok := expr.(*ast.BinaryExpression)
	if !ok || outer.Operator != "-" {
		t.Fatalf("got %T", expr)
	}
	inner, ok := outer.Left.(*ast.BinaryExpression)
	if !ok || inner.Operator != "-" {
		t.Fatalf("left of - is %T, want nested -", outer.Left)
	}
	if lit, ok := outer.Right.(*ast.NumericLiteral); !ok || lit.Value != 2 {
		t.Errorf("right of outer - should be 2")
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	expr := onlyExpression(t, "(1 + 2) * 3;")
	mul, ok := expr.(*ast.BinaryExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("got %T, want * at root", expr)
	}
	if _, ok := mul.Left.(*ast.BinaryExpression); !ok {
		t.Errorf("left of * should be the grouped +")
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	expr := onlyExpression(t, "a = b = 3;")
	outer, ok := expr.(*ast.AssignmentExpression)
	if !ok || outer.Target.Name != "a" {
		t.Fatalf("got %T", expr)
	}
	inner, ok := outer.Value.(*ast.AssignmentExpression)
	if !ok || inner.Target.Name != "b" {
		t.Fatalf("value of outer assignment is %T, want nested assignment", outer.Value)
	}
}

func TestCompoundAssignmentOperators(t *testing.T) {
	for _, op := range []string{"+=", "-=", "*=", "/="} {
		expr := onlyExpression(t, "x "+op+" 2;")
		assign, ok := expr.(*ast.AssignmentExpression)
		if !ok || assign.Operator != op {
			t.Errorf("%s: got %T %v", op, expr, expr)
		}
	}
}

func TestAssignmentTargetMustBeIdentifier(t *testing.T) {
	perr := parseError(t, "1 = 2;")
	if perr.Expected != "assignment target (identifier)" {
		t.Errorf("got expected %q", perr.Expected)
	}
}

func TestLogicalOperatorsNest(t *testing.T) {
	// a || b && c parses as a || (b && c).
	expr := onlyExpression(t, "a || b && c;")
	or, ok := expr.(*ast.LogicalExpression)
	if !ok || or.Operator != "||" {
		t.Fatalf("got %T", expr)
	}
	and, ok := or.Right.(*ast.LogicalExpression)
	if !ok || and.Operator != "&&" {
		t.Fatalf("right of || is %T, want &&", or.Right)
	}
}

func TestUnaryNesting(t *testing.T) {
	expr := onlyExpression(t, "!!x;")
	outer, ok := expr.(*ast.UnaryExpression)
	if !ok || outer.Operator != "!" {
		t.Fatalf("got %T", expr)
	}
	if _, ok := outer.Operand.(*ast.UnaryExpression); !ok {
		t.Errorf("operand should be another unary expression")
	}
}

func TestCallExpression(t *testing.T) {
	expr := onlyExpression(t, "f(1, x + 2)(3);")
	outer, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(outer.Arguments) != 1 {
		t.Fatalf("outer call has %d args, want 1", len(outer.Arguments))
	}
	inner, ok := outer.Callee.(*ast.CallExpression)
	if !ok {
		t.Fatalf("callee is %T, want chained call", outer.Callee)
	}
	if len(inner.Arguments) != 2 {
		t.Errorf("inner call has %d args, want 2", len(inner.Arguments))
	}
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	program := parse(t, "if (a) if (b) x; else y;")
	outer, ok := program.Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("got %T", program.Body[0])
	}
	if outer.Alternate != nil {
		t.Fatalf("else bound to the outer if")
	}
	inner, ok := outer.Consequent.(*ast.IfStatement)
	if !ok {
		t.Fatalf("consequent is %T, want inner if", outer.Consequent)
	}
	if inner.Alternate == nil {
		t.Errorf("inner if lost its else branch")
	}
}

func TestForClausesMayBeOmitted(t *testing.T) {
	program := parse(t, "for (;;) {}")
	loop, ok := program.Body[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("got %T", program.Body[0])
	}
	if loop.Init != nil || loop.Test != nil || loop.Update != nil {
		t.Errorf("all three clauses should be nil: %+v", loop)
	}
}

func TestForWithDeclarationInit(t *testing.T) {
	program := parse(t, "for (banao i = 0; i < 10; i += 1) { x = i; }")
	loop := program.Body[0].(*ast.ForStatement)
	if _, ok := loop.Init.(*ast.VariableStatement); !ok {
		t.Errorf("init is %T, want VariableStatement", loop.Init)
	}
	if _, ok := loop.Update.(*ast.AssignmentExpression); !ok {
		t.Errorf("update is %T, want AssignmentExpression", loop.Update)
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := parse(t, "def add(a, b) { return a + b; }")
	fn, ok := program.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("got %T", program.Body[0])
	}
	if fn.Name.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("got name %q with %d params", fn.Name.Name, len(fn.Params))
	}
	ret, ok := fn.Body.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("body statement is %T", fn.Body.Body[0])
	}
	if ret.Argument == nil {
		t.Errorf("return should carry an argument")
	}
}

func TestBareReturn(t *testing.T) {
	program := parse(t, "def f() { return; }")
	fn := program.Body[0].(*ast.FunctionDeclaration)
	ret := fn.Body.Body[0].(*ast.ReturnStatement)
	if ret.Argument != nil {
		t.Errorf("bare return should have nil argument")
	}
}

func TestTerminatorOmissibleOnlyAtEOF(t *testing.T) {
	if _, err := Parse("banao x = 1"); err != nil {
		t.Errorf("terminator at EOF should be optional: %v", err)
	}
	perr := parseError(t, "banao x = 1 banao y = 2;")
	if perr.Expected == "" {
		t.Errorf("missing mid-program terminator should report an expectation")
	}
}

func TestMissingParenthesisReportsSpan(t *testing.T) {
	perr := parseError(t, "if (x { y; }")
	if perr.Expected != "')'" {
		t.Errorf("got expected %q, want ')'", perr.Expected)
	}
	if perr.Span.Start != 6 {
		t.Errorf("got span start %d, want 6", perr.Span.Start)
	}
}

func TestUnexpectedEOFInsideBlock(t *testing.T) {
	perr := parseError(t, "{ banao x = 1;")
	if perr.Actual != "end of input" {
		t.Errorf("got actual %q", perr.Actual)
	}
}

func TestStringEscapesAreDecoded(t *testing.T) {
	expr := onlyExpression(t, `"a\n\t\"b\"\\";`)
	lit, ok := expr.(*ast.StringLiteral)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if lit.Value != "a\n\t\"b\"\\" {
		t.Errorf("got %q", lit.Value)
	}
}

func TestPrintRoundTrip(t *testing.T) {
	sources := []string{
		"banao x = 1 + 2 * 3;",
		"def f(n) { if (n < 2) { return 1; } return n * f(n - 1); }",
		"for (banao i = 0; i < 10; i += 1) { total = total + i; }",
		`print("a" + "b", !done && ready);`,
		"while (x > 0) { x -= 1; }",
	}
	for _, source := range sources {
		first := parse(t, source)
		printed := ast.Print(first)
		second, err := Parse(printed)
		if err != nil {
			t.Fatalf("reparse of %q (printed from %q): %v", printed, source, err)
		}
		if ast.Print(second) != printed {
			t.Errorf("print is not a fixed point for %q:\nfirst  %q\nsecond %q", source, printed, ast.Print(second))
		}
	}
}

func TestSpansCoverSource(t *testing.T) {
	source := "banao x = 10;"
	program := parse(t, source)
	span := program.Body[0].Span()
	if span.Start != 0 || span.End != len(source) {
		t.Errorf("statement span [%d,%d), want [0,%d)", span.Start, span.End, len(source))
	}
}
