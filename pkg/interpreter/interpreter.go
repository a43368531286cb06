// Package interpreter executes bhasha ASTs by walking them directly. It
// dispatches per node kind, threads an Environment chain for lexical scope,
// and models `return` as a control signal that unwinds to the nearest
// enclosing function invocation.
package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"bhasha/interpreter-go/pkg/ast"
	"bhasha/interpreter-go/pkg/diagnostic"
	"bhasha/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds user-level recursion so runaway programs
// surface a StackOverflow runtime error instead of exhausting the host
// stack.
const DefaultMaxCallDepth = 10_000

// Interpreter drives evaluation of bhasha AST nodes. Evaluation is single
// threaded; callers sharing one instance across goroutines must serialize
// invocations.
type Interpreter struct {
	global   *runtime.Environment
	out      io.Writer
	depth    int
	maxDepth int
}

// New returns an interpreter whose global environment is seeded with the
// standard natives, writing to stdout.
func New() *Interpreter {
	i := &Interpreter{
		global:   runtime.NewEnvironment(nil),
		out:      os.Stdout,
		maxDepth: DefaultMaxCallDepth,
	}
	registerNatives(i)
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// SetOutput redirects where print and friends write.
func (i *Interpreter) SetOutput(w io.Writer) {
	if w != nil {
		i.out = w
	}
}

// SetMaxCallDepth overrides the recursion bound; values below one are
// ignored.
func (i *Interpreter) SetMaxCallDepth(depth int) {
	if depth > 0 {
		i.maxDepth = depth
	}
}

// EvaluateProgram executes a program against the global environment and
// returns the value of the last evaluated statement. A return at top level
// has no enclosing invocation to catch it and is fatal.
func (i *Interpreter) EvaluateProgram(program *ast.Program) (runtime.Value, error) {
	var last runtime.Value = runtime.NullValue{}
	for _, stmt := range program.Body {
		val, err := i.evaluateStatement(stmt, i.global)
		if err != nil {
			if _, ok := err.(returnSignal); ok {
				return nil, fmt.Errorf("return outside function")
			}
			return nil, err
		}
		last = val
	}
	return last, nil
}

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		return i.evaluateExpression(n.Expression, env)
	case *ast.VariableStatement:
		return i.evaluateVariableStatement(n, env)
	case *ast.BlockStatement:
		return i.evaluateBlock(n, env)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.WhileStatement:
		return i.evaluateWhileStatement(n, env)
	case *ast.ForStatement:
		return i.evaluateForStatement(n, env)
	case *ast.FunctionDeclaration:
		return i.evaluateFunctionDeclaration(n, env)
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env)
	default:
		return nil, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateVariableStatement(stmt *ast.VariableStatement, env *runtime.Environment) (runtime.Value, error) {
	for _, decl := range stmt.Declarations {
		var value runtime.Value = runtime.NullValue{}
		if decl.Init != nil {
			val, err := i.evaluateExpression(decl.Init, env)
			if err != nil {
				return nil, err
			}
			value = val
		}
		env.Define(decl.ID.Name, value)
	}
	return runtime.NullValue{}, nil
}

// evaluateBlock runs the block's statements in a fresh child scope. The
// scope is discarded on exit, including when a return signal unwinds
// through.
func (i *Interpreter) evaluateBlock(block *ast.BlockStatement, env *runtime.Environment) (runtime.Value, error) {
	scope := env.Extend()
	var result runtime.Value = runtime.NullValue{}
	for _, stmt := range block.Body {
		val, err := i.evaluateStatement(stmt, scope)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, env *runtime.Environment) (runtime.Value, error) {
	test, err := i.evaluateExpression(stmt.Test, env)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(test) {
		return i.evaluateStatement(stmt.Consequent, env)
	}
	if stmt.Alternate != nil {
		return i.evaluateStatement(stmt.Alternate, env)
	}
	return runtime.NullValue{}, nil
}

func (i *Interpreter) evaluateWhileStatement(stmt *ast.WhileStatement, env *runtime.Environment) (runtime.Value, error) {
	for {
		test, err := i.evaluateExpression(stmt.Test, env)
		if err != nil {
			return nil, err
		}
		if !runtime.Truthy(test) {
			return runtime.NullValue{}, nil
		}
		if _, err := i.evaluateStatement(stmt.Body, env); err != nil {
			return nil, err
		}
	}
}

// evaluateForStatement runs init once, then loops {test, body, update}. An
// absent test never stops the loop; that is grammar behavior, not a bug.
func (i *Interpreter) evaluateForStatement(stmt *ast.ForStatement, env *runtime.Environment) (runtime.Value, error) {
	scope := env.Extend()
	if stmt.Init != nil {
		if _, err := i.evaluateStatement(stmt.Init, scope); err != nil {
			return nil, err
		}
	}
	for {
		if stmt.Test != nil {
			test, err := i.evaluateExpression(stmt.Test, scope)
			if err != nil {
				return nil, err
			}
			if !runtime.Truthy(test) {
				return runtime.NullValue{}, nil
			}
		}
		if _, err := i.evaluateStatement(stmt.Body, scope); err != nil {
			return nil, err
		}
		if stmt.Update != nil {
			if _, err := i.evaluateExpression(stmt.Update, scope); err != nil {
				return nil, err
			}
		}
	}
}

// evaluateFunctionDeclaration constructs the function value closing over the
// environment active right now, by reference. Declaring never invokes.
func (i *Interpreter) evaluateFunctionDeclaration(decl *ast.FunctionDeclaration, env *runtime.Environment) (runtime.Value, error) {
	fn := &runtime.FunctionValue{Declaration: decl, Closure: env}
	env.Define(decl.Name.Name, fn)
	return runtime.NullValue{}, nil
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.NullValue{}
	if stmt.Argument != nil {
		val, err := i.evaluateExpression(stmt.Argument, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return nil, returnSignal{value: result}
}

// returnSignal is the non-local exit raised by a return statement. It rides
// the error channel but is control flow, not a failure; it is caught at the
// nearest enclosing function invocation.
type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return" }

// undefinedAt converts an environment miss into the user-facing runtime
// error located at the referencing node.
func undefinedAt(err error, span diagnostic.Span) error {
	if errors.Is(err, runtime.ErrUndefined) {
		return &diagnostic.RuntimeError{
			Code:    diagnostic.UndefinedVariable,
			Message: err.Error(),
			Span:    span,
		}
	}
	return err
}
