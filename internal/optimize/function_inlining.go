package optimize

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
)

// FunctionInliningPass inlines calls to zero-parameter top-level functions
// whose body is a single `return <expr>`, grounded on the inlining shape
// described in optimizer/passes/function_inlining.rs (a call site is
// replaced by a copy of the callee's body once the callee is known not to
// recurse and carries no parameters to substitute). Parameter
// substitution and recursion/size heuristics are left out: this pipeline
// stage receives only the ast.Program, which carries no call targets
// resolved by the type checker, so anything beyond a simple same-module,
// zero-arg match would risk inlining the wrong declaration under
// shadowing.
type FunctionInliningPass struct {
	in *interner.Interner
}

func (*FunctionInliningPass) Name() string    { return "function-inlining" }
func (*FunctionInliningPass) MinLevel() Level { return O2 }

func (p *FunctionInliningPass) Run(prog *ast.Program) bool {
	candidates := collectInlineCandidates(prog.Stmts)
	if len(candidates) == 0 {
		return false
	}
	changed := false
	for i := range prog.Stmts {
		changed = inlineStmt(&prog.Stmts[i], candidates) || changed
	}
	return changed
}

// collectInlineCandidates finds top-level functions with no parameters
// and a single return statement.
func collectInlineCandidates(stmts []ast.Stmt) map[interner.ID]ast.Expr {
	out := map[interner.ID]ast.Expr{}
	for _, s := range stmts {
		fd, ok := unwrapExport(s).(*ast.FuncDecl)
		if !ok || len(fd.Params) != 0 || fd.Body == nil || len(fd.Body.Stmts) != 1 {
			continue
		}
		ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
		if !ok || ret.Value == nil {
			continue
		}
		if referencesIdent(ret.Value, fd.Name) {
			continue // self-referential; don't risk infinite inlining
		}
		out[fd.Name] = ret.Value
	}
	return out
}

func unwrapExport(s ast.Stmt) ast.Stmt {
	if ex, ok := s.(*ast.ExportDecl); ok && ex.Decl != nil {
		return ex.Decl
	}
	return s
}

func referencesIdent(e ast.Expr, name interner.ID) bool {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name == name
	case *ast.BinaryExpr:
		return referencesIdent(n.Left, name) || referencesIdent(n.Right, name)
	case *ast.UnaryExpr:
		return referencesIdent(n.Expr, name)
	case *ast.ParenExpr:
		return referencesIdent(n.Inner, name)
	case *ast.CallExpr:
		if referencesIdent(n.Callee, name) {
			return true
		}
		for _, a := range n.Args {
			if referencesIdent(a, name) {
				return true
			}
		}
	case *ast.ConditionalExpr:
		return referencesIdent(n.Cond, name) || referencesIdent(n.Then, name) || referencesIdent(n.Else, name)
	}
	return false
}

func inlineStmt(s *ast.Stmt, candidates map[interner.ID]ast.Expr) bool {
	changed := false
	switch n := (*s).(type) {
	case *ast.VarDecl:
		if n.Init != nil {
			changed = inlineExpr(&n.Init, candidates) || changed
		}
	case *ast.ExprStmt:
		changed = inlineExpr(&n.Expr, candidates) || changed
	case *ast.IfStmt:
		changed = inlineExpr(&n.Cond, candidates) || changed
		changed = inlineBlock(n.Then, candidates) || changed
		if n.Else != nil {
			changed = inlineStmt(&n.Else, candidates) || changed
		}
	case *ast.WhileStmt:
		changed = inlineExpr(&n.Cond, candidates) || changed
		changed = inlineBlock(n.Body, candidates) || changed
	case *ast.RepeatStmt:
		changed = inlineBlock(n.Body, candidates) || changed
		changed = inlineExpr(&n.Cond, candidates) || changed
	case *ast.ForNumericStmt:
		changed = inlineExpr(&n.Start, candidates) || changed
		changed = inlineExpr(&n.Stop, candidates) || changed
		if n.Step != nil {
			changed = inlineExpr(&n.Step, candidates) || changed
		}
		changed = inlineBlock(n.Body, candidates) || changed
	case *ast.ForGenericStmt:
		changed = inlineExpr(&n.Iter, candidates) || changed
		changed = inlineBlock(n.Body, candidates) || changed
	case *ast.ReturnStmt:
		if n.Value != nil {
			changed = inlineExpr(&n.Value, candidates) || changed
		}
	case *ast.FuncDecl:
		changed = inlineBlock(n.Body, candidates) || changed
	case *ast.BlockStmt:
		changed = inlineBlock(n, candidates) || changed
	case *ast.ExportDecl:
		if n.Decl != nil {
			changed = inlineStmt(&n.Decl, candidates) || changed
		}
	}
	return changed
}

func inlineBlock(b *ast.BlockStmt, candidates map[interner.ID]ast.Expr) bool {
	if b == nil {
		return false
	}
	changed := false
	for i := range b.Stmts {
		changed = inlineStmt(&b.Stmts[i], candidates) || changed
	}
	return changed
}

func inlineExpr(e *ast.Expr, candidates map[interner.ID]ast.Expr) bool {
	changed := false
	switch n := (*e).(type) {
	case *ast.CallExpr:
		for i := range n.Args {
			changed = inlineExpr(&n.Args[i], candidates) || changed
		}
		if ident, ok := n.Callee.(*ast.Identifier); ok && len(n.Args) == 0 {
			if body, ok := candidates[ident.Name]; ok {
				*e = copyExpr(body)
				return true
			}
		}
	case *ast.BinaryExpr:
		changed = inlineExpr(&n.Left, candidates) || changed
		changed = inlineExpr(&n.Right, candidates) || changed
	case *ast.UnaryExpr:
		changed = inlineExpr(&n.Expr, candidates) || changed
	case *ast.ParenExpr:
		changed = inlineExpr(&n.Inner, candidates) || changed
	case *ast.ConditionalExpr:
		changed = inlineExpr(&n.Cond, candidates) || changed
		changed = inlineExpr(&n.Then, candidates) || changed
		changed = inlineExpr(&n.Else, candidates) || changed
	case *ast.ArrayExpr:
		for i := range n.Elements {
			changed = inlineExpr(&n.Elements[i], candidates) || changed
		}
	}
	return changed
}

// copyExpr makes a shallow structural copy of an inlined expression so
// later passes mutating one call site's copy in place (constant folding,
// algebraic simplification) never touch another call site's copy or the
// original function body.
func copyExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Literal:
		c := *n
		return &c
	case *ast.Identifier:
		c := *n
		return &c
	case *ast.BinaryExpr:
		c := *n
		c.Left = copyExpr(n.Left)
		c.Right = copyExpr(n.Right)
		return &c
	case *ast.UnaryExpr:
		c := *n
		c.Expr = copyExpr(n.Expr)
		return &c
	case *ast.ParenExpr:
		c := *n
		c.Inner = copyExpr(n.Inner)
		return &c
	case *ast.ConditionalExpr:
		c := *n
		c.Cond = copyExpr(n.Cond)
		c.Then = copyExpr(n.Then)
		c.Else = copyExpr(n.Else)
		return &c
	default:
		return e
	}
}
