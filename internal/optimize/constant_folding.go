package optimize

import (
	"math"

	"github.com/sunholo/tlc/internal/ast"
)

// ConstantFoldingPass evaluates binary/unary operations whose operands
// are both literals, grounded on optimizer/passes/constant_folding.rs.
type ConstantFoldingPass struct{}

func (*ConstantFoldingPass) Name() string    { return "constant-folding" }
func (*ConstantFoldingPass) MinLevel() Level { return O1 }

func (p *ConstantFoldingPass) Run(prog *ast.Program) bool {
	changed := false
	for i := range prog.Stmts {
		changed = foldStmt(&prog.Stmts[i]) || changed
	}
	return changed
}

func foldStmt(s *ast.Stmt) bool {
	changed := false
	switch n := (*s).(type) {
	case *ast.VarDecl:
		if n.Init != nil {
			changed = foldExpr(&n.Init) || changed
		}
	case *ast.ExprStmt:
		changed = foldExpr(&n.Expr) || changed
	case *ast.IfStmt:
		changed = foldExpr(&n.Cond) || changed
		changed = foldBlock(n.Then) || changed
		if n.Else != nil {
			changed = foldStmt(&n.Else) || changed
		}
	case *ast.WhileStmt:
		changed = foldExpr(&n.Cond) || changed
		changed = foldBlock(n.Body) || changed
	case *ast.RepeatStmt:
		changed = foldBlock(n.Body) || changed
		changed = foldExpr(&n.Cond) || changed
	case *ast.ForNumericStmt:
		changed = foldExpr(&n.Start) || changed
		changed = foldExpr(&n.Stop) || changed
		if n.Step != nil {
			changed = foldExpr(&n.Step) || changed
		}
		changed = foldBlock(n.Body) || changed
	case *ast.ForGenericStmt:
		changed = foldExpr(&n.Iter) || changed
		changed = foldBlock(n.Body) || changed
	case *ast.ReturnStmt:
		if n.Value != nil {
			changed = foldExpr(&n.Value) || changed
		}
	case *ast.FuncDecl:
		changed = foldBlock(n.Body) || changed
	case *ast.BlockStmt:
		changed = foldBlock(n) || changed
	case *ast.ExportDecl:
		if n.Decl != nil {
			changed = foldStmt(&n.Decl) || changed
		}
	}
	return changed
}

func foldBlock(b *ast.BlockStmt) bool {
	if b == nil {
		return false
	}
	changed := false
	for i := range b.Stmts {
		changed = foldStmt(&b.Stmts[i]) || changed
	}
	return changed
}

func foldExpr(e *ast.Expr) bool {
	switch n := (*e).(type) {
	case *ast.BinaryExpr:
		changed := foldExpr(&n.Left)
		changed = foldExpr(&n.Right) || changed

		if li, lok := literalInt(n.Left); lok {
			if ri, rok := literalInt(n.Right); rok {
				if result, ok := foldIntBinary(n.Op, li, ri); ok {
					*e = &ast.Literal{Kind: ast.LitInt, Value: result, Sp: n.Sp}
					return true
				}
			}
		}
		if lv, lok := literalNumber(n.Left); lok {
			if rv, rok := literalNumber(n.Right); rok {
				if result, ok := foldNumericBinary(n.Op, lv, rv); ok {
					*e = &ast.Literal{Kind: ast.LitFloat, Value: result, Sp: n.Sp}
					return true
				}
			}
		}
		if lb, lok := literalBool(n.Left); lok {
			if rb, rok := literalBool(n.Right); rok {
				if result, ok := foldBoolBinary(n.Op, lb, rb); ok {
					*e = &ast.Literal{Kind: ast.LitBool, Value: result, Sp: n.Sp}
					return true
				}
			}
		}
		return changed
	case *ast.UnaryExpr:
		changed := foldExpr(&n.Expr)
		if v, ok := literalNumber(n.Expr); ok && n.Op == "-" {
			*e = &ast.Literal{Kind: ast.LitFloat, Value: -v, Sp: n.Sp}
			return true
		}
		if b, ok := literalBool(n.Expr); ok && (n.Op == "!" || n.Op == "not") {
			*e = &ast.Literal{Kind: ast.LitBool, Value: !b, Sp: n.Sp}
			return true
		}
		return changed
	case *ast.CallExpr:
		changed := foldExpr(&n.Callee)
		for i := range n.Args {
			changed = foldExpr(&n.Args[i]) || changed
		}
		return changed
	case *ast.MethodCallExpr:
		changed := foldExpr(&n.Receiver)
		for i := range n.Args {
			changed = foldExpr(&n.Args[i]) || changed
		}
		return changed
	case *ast.IndexExpr:
		changed := foldExpr(&n.Object)
		changed = foldExpr(&n.Index) || changed
		return changed
	case *ast.MemberExpr:
		return foldExpr(&n.Object)
	case *ast.ParenExpr:
		return foldExpr(&n.Inner)
	case *ast.ArrayExpr:
		changed := false
		for i := range n.Elements {
			changed = foldExpr(&n.Elements[i]) || changed
		}
		return changed
	case *ast.ObjectExpr:
		changed := false
		for i := range n.Props {
			if n.Props[i].Computed != nil {
				changed = foldExpr(&n.Props[i].Computed) || changed
			}
			changed = foldExpr(&n.Props[i].Value) || changed
		}
		return changed
	}
	return false
}

func literalNumber(e ast.Expr) (float64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return 0, false
	}
	switch lit.Kind {
	case ast.LitFloat:
		v, ok := lit.Value.(float64)
		return v, ok
	case ast.LitInt:
		v, ok := lit.Value.(int64)
		return float64(v), ok
	}
	return 0, false
}

func literalInt(e ast.Expr) (int64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}
	v, ok := lit.Value.(int64)
	return v, ok
}

func foldIntBinary(op string, l, r int64) (int64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "%":
		if r != 0 {
			return l % r, true
		}
	}
	return 0, false
}

func literalBool(e ast.Expr) (bool, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitBool {
		return false, false
	}
	v, ok := lit.Value.(bool)
	return v, ok
}

func foldNumericBinary(op string, l, r float64) (float64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r != 0 {
			return l / r, true
		}
		return 0, false
	case "%":
		if r != 0 {
			return math.Mod(l, r), true
		}
		return 0, false
	case "^":
		return math.Pow(l, r), true
	}
	return 0, false
}

func foldBoolBinary(op string, l, r bool) (bool, bool) {
	switch op {
	case "&&", "and":
		return l && r, true
	case "||", "or":
		return l || r, true
	case "==":
		return l == r, true
	case "!=", "~=":
		return l != r, true
	}
	return false, false
}

