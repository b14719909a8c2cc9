package optimize

import (
	"strconv"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
)

// StringConcatOptimizationPass folds `+` concatenation of a string
// literal with another string, number or boolean literal, and template
// expressions whose interpolations are all
// literals into a single string literal, avoiding runtime
// table.concat/`..` chains codegen would otherwise emit. Grounded on the
// same "collapse a literal chain at compile time" shape as
// ConstantFoldingPass, scoped to the string/TemplateExpr side
// ConstantFoldingPass does not touch.
type StringConcatOptimizationPass struct {
	in *interner.Interner
}

func (*StringConcatOptimizationPass) Name() string    { return "string-concat-optimization" }
func (*StringConcatOptimizationPass) MinLevel() Level { return O2 }

func (p *StringConcatOptimizationPass) Run(prog *ast.Program) bool {
	changed := false
	for i := range prog.Stmts {
		changed = concatStmt(&prog.Stmts[i]) || changed
	}
	return changed
}

func concatStmt(s *ast.Stmt) bool {
	changed := false
	switch n := (*s).(type) {
	case *ast.VarDecl:
		if n.Init != nil {
			changed = concatExpr(&n.Init) || changed
		}
	case *ast.ExprStmt:
		changed = concatExpr(&n.Expr) || changed
	case *ast.IfStmt:
		changed = concatExpr(&n.Cond) || changed
		changed = concatBlock(n.Then) || changed
		if n.Else != nil {
			changed = concatStmt(&n.Else) || changed
		}
	case *ast.WhileStmt:
		changed = concatExpr(&n.Cond) || changed
		changed = concatBlock(n.Body) || changed
	case *ast.RepeatStmt:
		changed = concatBlock(n.Body) || changed
		changed = concatExpr(&n.Cond) || changed
	case *ast.ForNumericStmt:
		changed = concatBlock(n.Body) || changed
	case *ast.ForGenericStmt:
		changed = concatExpr(&n.Iter) || changed
		changed = concatBlock(n.Body) || changed
	case *ast.ReturnStmt:
		if n.Value != nil {
			changed = concatExpr(&n.Value) || changed
		}
	case *ast.FuncDecl:
		changed = concatBlock(n.Body) || changed
	case *ast.BlockStmt:
		changed = concatBlock(n) || changed
	case *ast.ExportDecl:
		if n.Decl != nil {
			changed = concatStmt(&n.Decl) || changed
		}
	}
	return changed
}

func concatBlock(b *ast.BlockStmt) bool {
	if b == nil {
		return false
	}
	changed := false
	for i := range b.Stmts {
		changed = concatStmt(&b.Stmts[i]) || changed
	}
	return changed
}

func concatExpr(e *ast.Expr) bool {
	switch n := (*e).(type) {
	case *ast.BinaryExpr:
		changed := concatExpr(&n.Left)
		changed = concatExpr(&n.Right) || changed
		isStr := func(x ast.Expr) bool { l, ok := x.(*ast.Literal); return ok && l.Kind == ast.LitString }
		if n.Op == "+" && (isStr(n.Left) || isStr(n.Right)) {
			if ls, lok := literalString(n.Left); lok {
				if rs, rok := literalString(n.Right); rok {
					*e = &ast.Literal{Kind: ast.LitString, Value: ls + rs, Sp: n.Sp}
					return true
				}
			}
		}
		return changed
	case *ast.TemplateExpr:
		changed := false
		for i := range n.Exprs {
			changed = concatExpr(&n.Exprs[i]) || changed
		}
		if folded, ok := foldTemplate(n); ok {
			*e = folded
			return true
		}
		return changed
	case *ast.CallExpr:
		changed := concatExpr(&n.Callee)
		for i := range n.Args {
			changed = concatExpr(&n.Args[i]) || changed
		}
		return changed
	case *ast.ParenExpr:
		return concatExpr(&n.Inner)
	}
	return false
}

// literalString extracts a literal's printable form as a string, used to
// fold `+` chains that mix string literals with numeric/bool literals
// (TL, like JS, coerces non-strings on string concatenation).
func literalString(e ast.Expr) (string, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return "", false
	}
	switch lit.Kind {
	case ast.LitString:
		v, ok := lit.Value.(string)
		return v, ok
	case ast.LitInt:
		v, ok := lit.Value.(int64)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	case ast.LitFloat:
		v, ok := lit.Value.(float64)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case ast.LitBool:
		v, ok := lit.Value.(bool)
		if !ok {
			return "", false
		}
		return strconv.FormatBool(v), true
	}
	return "", false
}

// foldTemplate collapses a template expression into a single string
// literal when every interpolation has already folded to a literal.
func foldTemplate(n *ast.TemplateExpr) (*ast.Literal, bool) {
	if len(n.Exprs) == 0 {
		if len(n.Quasis) != 1 {
			return nil, false
		}
		return &ast.Literal{Kind: ast.LitString, Value: n.Quasis[0], Sp: n.Sp}, true
	}
	var out string
	for i, q := range n.Quasis {
		out += q
		if i < len(n.Exprs) {
			s, ok := literalString(n.Exprs[i])
			if !ok {
				return nil, false
			}
			out += s
		}
	}
	return &ast.Literal{Kind: ast.LitString, Value: out, Sp: n.Sp}, true
}
