package optimize

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
)

// MethodToFunctionConversionPass would rewrite a method call whose
// receiver has no overriders (so the call can never be polymorphic) into
// a direct function call, skipping the method-table lookup codegen would
// otherwise emit. That requires the class hierarchy built by the type
// checker (internal/types), which is not passed to the optimizer (passes
// receive only the ast.Program), so this pass cannot safely resolve
// overrides here.
// Registered as a conservative no-op so pass count/order match the
// source compiler.
type MethodToFunctionConversionPass struct {
	in *interner.Interner
}

func (*MethodToFunctionConversionPass) Name() string    { return "method-to-function-conversion" }
func (*MethodToFunctionConversionPass) MinLevel() Level { return O2 }

func (*MethodToFunctionConversionPass) Run(prog *ast.Program) bool { return false }
