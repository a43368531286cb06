package interpreter

import (
	"fmt"

	"bhasha/interpreter-go/pkg/ast"
	"bhasha/interpreter-go/pkg/diagnostic"
	"bhasha/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumericLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NullLiteral:
		return runtime.NullValue{}, nil
	case *ast.Identifier:
		val, err := env.Get(n.Name)
		if err != nil {
			return nil, undefinedAt(err, n.Span())
		}
		return val, nil
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.LogicalExpression:
		return i.evaluateLogicalExpression(n, env)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env)
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "-":
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, diagnostic.NewRuntimeError(diagnostic.OperandMustBeNumber, expr.Span(),
				"unary '-' expects a number, got %s", operand.Kind())
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	case "+":
		return operand, nil
	case "!":
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", expr.Operator)
	}
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(expr.Operator, left, right, expr.Span())
}

// applyBinary implements the operator table shared by BinaryExpression and
// compound assignment.
func applyBinary(op string, left, right runtime.Value, span diagnostic.Span) (runtime.Value, error) {
	switch op {
	case "==":
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case "+":
		switch lv := left.(type) {
		case runtime.NumberValue:
			if rv, ok := right.(runtime.NumberValue); ok {
				return runtime.NumberValue{Val: lv.Val + rv.Val}, nil
			}
		case runtime.StringValue:
			if rv, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: lv.Val + rv.Val}, nil
			}
		}
		return nil, diagnostic.NewRuntimeError(diagnostic.TypeMismatch, span,
			"'+' expects two numbers or two strings, got %s and %s", left.Kind(), right.Kind())
	case "-", "*", "/", "<", ">", "<=", ">=":
		lv, lok := left.(runtime.NumberValue)
		rv, rok := right.(runtime.NumberValue)
		if !lok || !rok {
			return nil, diagnostic.NewRuntimeError(diagnostic.OperandMustBeNumber, span,
				"'%s' expects numbers, got %s and %s", op, left.Kind(), right.Kind())
		}
		switch op {
		case "-":
			return runtime.NumberValue{Val: lv.Val - rv.Val}, nil
		case "*":
			return runtime.NumberValue{Val: lv.Val * rv.Val}, nil
		case "/":
			// IEEE-754 semantics: dividing by zero yields an infinity
			// (or NaN), not a runtime error.
			return runtime.NumberValue{Val: lv.Val / rv.Val}, nil
		case "<":
			return runtime.BoolValue{Val: lv.Val < rv.Val}, nil
		case ">":
			return runtime.BoolValue{Val: lv.Val > rv.Val}, nil
		case "<=":
			return runtime.BoolValue{Val: lv.Val <= rv.Val}, nil
		default:
			return runtime.BoolValue{Val: lv.Val >= rv.Val}, nil
		}
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", op)
	}
}

// evaluateLogicalExpression short-circuits: the right operand runs only when
// the left one's truthiness does not already decide the result, and the
// deciding operand's own value is returned uncoerced.
func (i *Interpreter) evaluateLogicalExpression(expr *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "&&":
		if !runtime.Truthy(left) {
			return left, nil
		}
	case "||":
		if runtime.Truthy(left) {
			return left, nil
		}
	default:
		return nil, fmt.Errorf("unsupported logical operator %s", expr.Operator)
	}
	return i.evaluateExpression(expr.Right, env)
}

// compoundOps maps a compound assignment operator to the binary operator it
// applies before writing back.
var compoundOps = map[string]string{
	"+=": "+",
	"-=": "-",
	"*=": "*",
	"/=": "/",
}

func (i *Interpreter) evaluateAssignment(assign *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evaluateExpression(assign.Value, env)
	if err != nil {
		return nil, err
	}
	name := assign.Target.Name

	if op, ok := compoundOps[assign.Operator]; ok {
		current, err := env.Get(name)
		if err != nil {
			return nil, undefinedAt(err, assign.Target.Span())
		}
		value, err = applyBinary(op, current, value, assign.Span())
		if err != nil {
			return nil, err
		}
	}
	if err := env.Assign(name, value); err != nil {
		return nil, undefinedAt(err, assign.Target.Span())
	}
	return value, nil
}

func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(runtime.Callable)
	if !ok {
		return nil, diagnostic.NewRuntimeError(diagnostic.NotCallable, call.Callee.Span(),
			"value of kind %s is not callable", callee.Kind())
	}

	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	if arity := fn.Arity(); arity >= 0 && len(args) != arity {
		return nil, diagnostic.NewRuntimeError(diagnostic.ArityMismatch, call.Span(),
			"function '%s' expects %d arguments, got %d", fn.CallableName(), arity, len(args))
	}

	switch fn := fn.(type) {
	case runtime.NativeFunctionValue:
		val, err := fn.Impl(&runtime.NativeCallContext{Env: env}, args)
		if err != nil {
			return nil, locateNativeError(err, call.Span())
		}
		return val, nil
	case *runtime.FunctionValue:
		return i.invokeFunction(fn, args, call.Span())
	default:
		return nil, diagnostic.NewRuntimeError(diagnostic.NotCallable, call.Callee.Span(),
			"value of kind %s is not callable", callee.Kind())
	}
}

// invokeFunction runs a user function: a fresh environment chained to the
// captured closure, parameters bound positionally, body statements in order.
// The return signal is caught exactly here.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value, callSite diagnostic.Span) (runtime.Value, error) {
	if i.depth >= i.maxDepth {
		return nil, diagnostic.NewRuntimeError(diagnostic.StackOverflow, callSite,
			"call depth exceeded %d frames", i.maxDepth)
	}
	i.depth++
	defer func() { i.depth-- }()

	local := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		local.Define(param.Name, args[idx])
	}
	for _, stmt := range fn.Declaration.Body.Body {
		if _, err := i.evaluateStatement(stmt, local); err != nil {
			if ret, ok := err.(returnSignal); ok {
				return ret.value, nil
			}
			return nil, err
		}
	}
	return runtime.NullValue{}, nil
}

// locateNativeError fills in the call site on runtime errors a native raised
// without location information.
func locateNativeError(err error, span diagnostic.Span) error {
	if rerr, ok := err.(*diagnostic.RuntimeError); ok {
		if rerr.Span == (diagnostic.Span{}) {
			rerr.Span = span
		}
	}
	return err
}
