package optimize

import "github.com/sunholo/tlc/internal/ast"

// AlgebraicSimplificationPass rewrites identity/absorbing-element binary
// expressions (`x + 0`, `x * 1`, `x * 0`, ...), grounded on
// optimizer/passes/algebraic_simplification.rs.
type AlgebraicSimplificationPass struct{}

func (*AlgebraicSimplificationPass) Name() string    { return "algebraic-simplification" }
func (*AlgebraicSimplificationPass) MinLevel() Level { return O1 }

func (p *AlgebraicSimplificationPass) Run(prog *ast.Program) bool {
	changed := false
	for i := range prog.Stmts {
		changed = simplifyStmt(&prog.Stmts[i]) || changed
	}
	return changed
}

func simplifyStmt(s *ast.Stmt) bool {
	changed := false
	switch n := (*s).(type) {
	case *ast.VarDecl:
		if n.Init != nil {
			changed = simplifyExpr(&n.Init) || changed
		}
	case *ast.ExprStmt:
		changed = simplifyExpr(&n.Expr) || changed
	case *ast.IfStmt:
		changed = simplifyExpr(&n.Cond) || changed
		changed = simplifyBlock(n.Then) || changed
		if n.Else != nil {
			changed = simplifyStmt(&n.Else) || changed
		}
	case *ast.WhileStmt:
		changed = simplifyExpr(&n.Cond) || changed
		changed = simplifyBlock(n.Body) || changed
	case *ast.RepeatStmt:
		changed = simplifyBlock(n.Body) || changed
		changed = simplifyExpr(&n.Cond) || changed
	case *ast.ForNumericStmt:
		changed = simplifyExpr(&n.Start) || changed
		changed = simplifyExpr(&n.Stop) || changed
		if n.Step != nil {
			changed = simplifyExpr(&n.Step) || changed
		}
		changed = simplifyBlock(n.Body) || changed
	case *ast.ForGenericStmt:
		changed = simplifyExpr(&n.Iter) || changed
		changed = simplifyBlock(n.Body) || changed
	case *ast.ReturnStmt:
		if n.Value != nil {
			changed = simplifyExpr(&n.Value) || changed
		}
	case *ast.FuncDecl:
		changed = simplifyBlock(n.Body) || changed
	case *ast.BlockStmt:
		changed = simplifyBlock(n) || changed
	case *ast.ExportDecl:
		if n.Decl != nil {
			changed = simplifyStmt(&n.Decl) || changed
		}
	}
	return changed
}

func simplifyBlock(b *ast.BlockStmt) bool {
	if b == nil {
		return false
	}
	changed := false
	for i := range b.Stmts {
		changed = simplifyStmt(&b.Stmts[i]) || changed
	}
	return changed
}

func simplifyExpr(e *ast.Expr) bool {
	n, ok := (*e).(*ast.BinaryExpr)
	if !ok {
		return simplifyNonBinary(e)
	}
	changed := simplifyExpr(&n.Left)
	changed = simplifyExpr(&n.Right) || changed

	switch n.Op {
	case "+":
		if isZero(n.Right) {
			*e = n.Left
			return true
		}
		if isZero(n.Left) {
			*e = n.Right
			return true
		}
	case "-":
		if isZero(n.Right) {
			*e = n.Left
			return true
		}
	case "*":
		if isZero(n.Right) || isZero(n.Left) {
			*e = &ast.Literal{Kind: ast.LitInt, Value: int64(0), Sp: n.Sp}
			return true
		}
		if isOne(n.Right) {
			*e = n.Left
			return true
		}
		if isOne(n.Left) {
			*e = n.Right
			return true
		}
	case "&&", "and":
		if isTrue(n.Left) {
			*e = n.Right
			return true
		}
		if isFalse(n.Left) || isFalse(n.Right) {
			*e = &ast.Literal{Kind: ast.LitBool, Value: false, Sp: n.Sp}
			return true
		}
	case "||", "or":
		if isFalse(n.Left) {
			*e = n.Right
			return true
		}
		if isTrue(n.Left) || isTrue(n.Right) {
			*e = &ast.Literal{Kind: ast.LitBool, Value: true, Sp: n.Sp}
			return true
		}
	}
	return changed
}

func simplifyNonBinary(e *ast.Expr) bool {
	switch n := (*e).(type) {
	case *ast.UnaryExpr:
		return simplifyExpr(&n.Expr)
	case *ast.ParenExpr:
		return simplifyExpr(&n.Inner)
	case *ast.CallExpr:
		changed := simplifyExpr(&n.Callee)
		for i := range n.Args {
			changed = simplifyExpr(&n.Args[i]) || changed
		}
		return changed
	case *ast.ArrayExpr:
		changed := false
		for i := range n.Elements {
			changed = simplifyExpr(&n.Elements[i]) || changed
		}
		return changed
	}
	return false
}

func isZero(e ast.Expr) bool {
	v, ok := literalNumber(e)
	return ok && v == 0
}

func isOne(e ast.Expr) bool {
	v, ok := literalNumber(e)
	return ok && v == 1
}

func isTrue(e ast.Expr) bool {
	v, ok := literalBool(e)
	return ok && v
}

func isFalse(e ast.Expr) bool {
	v, ok := literalBool(e)
	return ok && !v
}
