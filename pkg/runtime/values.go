// Package runtime holds the bhasha value representation and the lexically
// scoped environment chain. The value set is closed: number, string, bool,
// null, and the two callable forms.
package runtime

import (
	"fmt"
	"strconv"

	"bhasha/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNull
	KindFunction
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// Callable is implemented by both user-defined and native functions. A
// negative arity marks a variadic callable and disables the argument-count
// check.
type Callable interface {
	Value
	CallableName() string
	Arity() int
}

// FunctionValue is a user-defined function. Closure is the environment that
// was active at the declaration site, shared by reference with every future
// invocation.
type FunctionValue struct {
	Declaration *ast.FunctionDeclaration
	Closure     *Environment
}

func (*FunctionValue) Kind() Kind { return KindFunction }

func (f *FunctionValue) CallableName() string {
	if f.Declaration != nil && f.Declaration.Name != nil {
		return f.Declaration.Name.Name
	}
	return "<anonymous>"
}

func (f *FunctionValue) Arity() int {
	if f.Declaration == nil {
		return 0
	}
	return len(f.Declaration.Params)
}

// NativeCallContext carries the invocation environment into a native
// implementation.
type NativeCallContext struct {
	Env *Environment
}

// NativeImpl is a host-provided procedure. It may return a RuntimeError to
// abort execution.
type NativeImpl func(ctx *NativeCallContext, args []Value) (Value, error)

// NativeFunctionValue wraps a host procedure. NumParams below zero means the
// native accepts any number of arguments.
type NativeFunctionValue struct {
	Name      string
	NumParams int
	Impl      NativeImpl
}

func (NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (f NativeFunctionValue) CallableName() string { return f.Name }

func (f NativeFunctionValue) Arity() int { return f.NumParams }

//-----------------------------------------------------------------------------
// Helpers
//-----------------------------------------------------------------------------

// Truthy applies the condition rule: only false and null are falsy.
func Truthy(val Value) bool {
	switch v := val.(type) {
	case BoolValue:
		return v.Val
	case NullValue:
		return false
	default:
		return true
	}
}

// Equal compares values across heterogeneous kinds without conversion;
// values of different kinds are never equal.
func Equal(left, right Value) bool {
	switch lv := left.(type) {
	case NumberValue:
		if rv, ok := right.(NumberValue); ok {
			return lv.Val == rv.Val
		}
	case StringValue:
		if rv, ok := right.(StringValue); ok {
			return lv.Val == rv.Val
		}
	case BoolValue:
		if rv, ok := right.(BoolValue); ok {
			return lv.Val == rv.Val
		}
	case NullValue:
		_, ok := right.(NullValue)
		return ok
	case *FunctionValue:
		return left == right
	case NativeFunctionValue:
		if rv, ok := right.(NativeFunctionValue); ok {
			return lv.Name == rv.Name
		}
	}
	return false
}

// Format renders a value the way print shows it.
func Format(val Value) string {
	switch v := val.(type) {
	case NumberValue:
		return strconv.FormatFloat(v.Val, 'g', -1, 64)
	case StringValue:
		return v.Val
	case BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case NullValue:
		return "null"
	case *FunctionValue:
		return fmt.Sprintf("<fn %s>", v.CallableName())
	case NativeFunctionValue:
		return fmt.Sprintf("<native fn %s>", v.Name)
	default:
		return fmt.Sprintf("[%s]", val.Kind())
	}
}
