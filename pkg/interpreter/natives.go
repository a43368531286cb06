package interpreter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"bhasha/interpreter-go/pkg/diagnostic"
	"bhasha/interpreter-go/pkg/runtime"
)

// registerNatives seeds the global environment with the fixed standard
// library. Natives declaring a nonnegative parameter count get the same
// arity check as user functions; print is variadic.
func registerNatives(i *Interpreter) {
	define := func(name string, numParams int, impl runtime.NativeImpl) {
		i.global.Define(name, runtime.NativeFunctionValue{
			Name:      name,
			NumParams: numParams,
			Impl:      impl,
		})
	}

	define("print", -1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, runtime.Format(arg))
		}
		fmt.Fprintln(i.out, strings.Join(parts, " "))
		return runtime.NullValue{}, nil
	})

	define("clock", 0, func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
		return runtime.NumberValue{Val: float64(time.Now().UnixNano()) / 1e9}, nil
	})

	define("str", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: runtime.Format(args[0])}, nil
	})

	define("len", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		s, ok := args[0].(runtime.StringValue)
		if !ok {
			return nil, diagnostic.NewRuntimeError(diagnostic.TypeMismatch, diagnostic.Span{},
				"len expects a string, got %s", args[0].Kind())
		}
		return runtime.NumberValue{Val: float64(len(s.Val))}, nil
	})

	define("abs", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		n, ok := args[0].(runtime.NumberValue)
		if !ok {
			return nil, diagnostic.NewRuntimeError(diagnostic.OperandMustBeNumber, diagnostic.Span{},
				"abs expects a number, got %s", args[0].Kind())
		}
		return runtime.NumberValue{Val: math.Abs(n.Val)}, nil
	})

	// mod has an integral contract, so a zero divisor is an error here even
	// though '/' follows float semantics.
	define("mod", 2, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		a, aok := args[0].(runtime.NumberValue)
		b, bok := args[1].(runtime.NumberValue)
		if !aok || !bok {
			return nil, diagnostic.NewRuntimeError(diagnostic.OperandMustBeNumber, diagnostic.Span{},
				"mod expects numbers, got %s and %s", args[0].Kind(), args[1].Kind())
		}
		if b.Val == 0 {
			return nil, diagnostic.NewRuntimeError(diagnostic.DivisionByZero, diagnostic.Span{},
				"mod by zero")
		}
		return runtime.NumberValue{Val: math.Mod(a.Val, b.Val)}, nil
	})
}
