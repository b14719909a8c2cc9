package optimize

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
)

// DeadStoreEliminationPass drops a `local`/`const` declaration whose bound
// name is never read anywhere else in its own block and whose
// initializer has no observable side effect (no call expression anywhere
// in it). Scoped to a single block rather than full liveness across
// nested closures, since the AST this stage receives carries no resolved
// bindings.
type DeadStoreEliminationPass struct {
	in *interner.Interner
}

func (*DeadStoreEliminationPass) Name() string    { return "dead-store-elimination" }
func (*DeadStoreEliminationPass) MinLevel() Level { return O2 }

func (p *DeadStoreEliminationPass) Run(prog *ast.Program) bool {
	changed := dseBlockStmts(&prog.Stmts)
	for _, s := range prog.Stmts {
		changed = dseStmt(s) || changed
	}
	return changed
}

func dseStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.FuncDecl:
		return dseBody(n.Body)
	case *ast.IfStmt:
		changed := dseBody(n.Then)
		if n.Else != nil {
			changed = dseStmt(n.Else) || changed
		}
		return changed
	case *ast.WhileStmt:
		return dseBody(n.Body)
	case *ast.RepeatStmt:
		return dseBody(n.Body)
	case *ast.ForNumericStmt:
		return dseBody(n.Body)
	case *ast.ForGenericStmt:
		return dseBody(n.Body)
	case *ast.ClassDecl:
		changed := false
		for i := range n.Members {
			changed = dseBody(n.Members[i].Body) || changed
		}
		return changed
	case *ast.ExportDecl:
		if n.Decl != nil {
			return dseStmt(n.Decl)
		}
	}
	return false
}

func dseBody(b *ast.BlockStmt) bool {
	if b == nil {
		return false
	}
	changed := dseBlockStmts(&b.Stmts)
	for _, s := range b.Stmts {
		changed = dseStmt(s) || changed
	}
	return changed
}

func dseBlockStmts(stmts *[]ast.Stmt) bool {
	changed := false
	out := make([]ast.Stmt, 0, len(*stmts))
	for i, s := range *stmts {
		if vd, ok := s.(*ast.VarDecl); ok && !vd.Exported {
			if ip, ok := vd.Target.(*ast.IdentPattern); ok && vd.Init != nil && !hasSideEffect(vd.Init) {
				if !usedAnywhereElse(*stmts, i, ip.Name) {
					changed = true
					continue
				}
			}
		}
		out = append(out, s)
	}
	if changed {
		*stmts = out
	}
	return changed
}

func hasSideEffect(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.CallExpr, *ast.MethodCallExpr, *ast.AssignExpr:
		return true
	case *ast.BinaryExpr:
		return hasSideEffect(n.Left) || hasSideEffect(n.Right)
	case *ast.UnaryExpr:
		return hasSideEffect(n.Expr)
	case *ast.ParenExpr:
		return hasSideEffect(n.Inner)
	case *ast.ConditionalExpr:
		return hasSideEffect(n.Cond) || hasSideEffect(n.Then) || hasSideEffect(n.Else)
	case *ast.ArrayExpr:
		for _, el := range n.Elements {
			if hasSideEffect(el) {
				return true
			}
		}
		return false
	case *ast.ObjectExpr:
		for _, pr := range n.Props {
			if hasSideEffect(pr.Value) {
				return true
			}
		}
		return false
	case *ast.MemberExpr:
		return hasSideEffect(n.Object)
	case *ast.IndexExpr:
		return hasSideEffect(n.Object) || hasSideEffect(n.Index)
	case *ast.Literal, *ast.Identifier:
		return false
	}
	return true // unknown node shape: be conservative
}

func usedAnywhereElse(stmts []ast.Stmt, skipIdx int, name interner.ID) bool {
	for i, s := range stmts {
		if i == skipIdx {
			continue
		}
		if stmtReferencesName(s, name) {
			return true
		}
	}
	return false
}

func stmtReferencesName(s ast.Stmt, name interner.ID) bool {
	switch n := s.(type) {
	case *ast.VarDecl:
		return n.Init != nil && exprReferencesName(n.Init, name)
	case *ast.ExprStmt:
		return exprReferencesName(n.Expr, name)
	case *ast.IfStmt:
		if exprReferencesName(n.Cond, name) || blockReferencesName(n.Then, name) {
			return true
		}
		return n.Else != nil && stmtReferencesName(n.Else, name)
	case *ast.WhileStmt:
		return exprReferencesName(n.Cond, name) || blockReferencesName(n.Body, name)
	case *ast.RepeatStmt:
		return blockReferencesName(n.Body, name) || exprReferencesName(n.Cond, name)
	case *ast.ForNumericStmt:
		if exprReferencesName(n.Start, name) || exprReferencesName(n.Stop, name) {
			return true
		}
		if n.Step != nil && exprReferencesName(n.Step, name) {
			return true
		}
		return blockReferencesName(n.Body, name)
	case *ast.ForGenericStmt:
		return exprReferencesName(n.Iter, name) || blockReferencesName(n.Body, name)
	case *ast.ReturnStmt:
		return n.Value != nil && exprReferencesName(n.Value, name)
	case *ast.BlockStmt:
		return blockReferencesName(n, name)
	case *ast.FuncDecl:
		return blockReferencesName(n.Body, name)
	}
	return false
}

func blockReferencesName(b *ast.BlockStmt, name interner.ID) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		if stmtReferencesName(s, name) {
			return true
		}
	}
	return false
}

func exprReferencesName(e ast.Expr, name interner.ID) bool {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name == name
	case *ast.BinaryExpr:
		return exprReferencesName(n.Left, name) || exprReferencesName(n.Right, name)
	case *ast.UnaryExpr:
		return exprReferencesName(n.Expr, name)
	case *ast.ParenExpr:
		return exprReferencesName(n.Inner, name)
	case *ast.AssignExpr:
		return exprReferencesName(n.Target, name) || exprReferencesName(n.Value, name)
	case *ast.CallExpr:
		if exprReferencesName(n.Callee, name) {
			return true
		}
		for _, a := range n.Args {
			if exprReferencesName(a, name) {
				return true
			}
		}
	case *ast.MethodCallExpr:
		if exprReferencesName(n.Receiver, name) {
			return true
		}
		for _, a := range n.Args {
			if exprReferencesName(a, name) {
				return true
			}
		}
	case *ast.MemberExpr:
		return exprReferencesName(n.Object, name)
	case *ast.IndexExpr:
		return exprReferencesName(n.Object, name) || exprReferencesName(n.Index, name)
	case *ast.ConditionalExpr:
		return exprReferencesName(n.Cond, name) || exprReferencesName(n.Then, name) || exprReferencesName(n.Else, name)
	case *ast.ArrayExpr:
		for _, el := range n.Elements {
			if exprReferencesName(el, name) {
				return true
			}
		}
	case *ast.ObjectExpr:
		for _, pr := range n.Props {
			if exprReferencesName(pr.Value, name) {
				return true
			}
		}
	case *ast.TemplateExpr:
		for _, sub := range n.Exprs {
			if exprReferencesName(sub, name) {
				return true
			}
		}
	}
	return false
}
