package optimize

import "github.com/sunholo/tlc/internal/ast"

// TailCallOptimizationPass marks call expressions in tail position
// (`return f(...)` or `return recv.m(...)`, with nothing left to do
// afterward) by setting IsTailCall. Codegen does not read the flag: it
// emits `return f(...)` as written, which Lua already executes as a
// tail call.
type TailCallOptimizationPass struct{}

func (*TailCallOptimizationPass) Name() string    { return "tail-call-optimization" }
func (*TailCallOptimizationPass) MinLevel() Level { return O2 }

func (p *TailCallOptimizationPass) Run(prog *ast.Program) bool {
	changed := false
	for _, s := range prog.Stmts {
		changed = tailCallStmt(s) || changed
	}
	return changed
}

func tailCallStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.FuncDecl:
		return tailCallBody(n.Body)
	case *ast.IfStmt:
		changed := tailCallBody(n.Then)
		if n.Else != nil {
			changed = tailCallStmt(n.Else) || changed
		}
		return changed
	case *ast.WhileStmt:
		return tailCallBody(n.Body)
	case *ast.RepeatStmt:
		return tailCallBody(n.Body)
	case *ast.ForNumericStmt:
		return tailCallBody(n.Body)
	case *ast.ForGenericStmt:
		return tailCallBody(n.Body)
	case *ast.ClassDecl:
		changed := false
		for i := range n.Members {
			changed = tailCallBody(n.Members[i].Body) || changed
		}
		return changed
	case *ast.EnumDecl:
		changed := tailCallBody(n.CtorBody)
		for i := range n.Methods {
			changed = tailCallBody(n.Methods[i].Body) || changed
		}
		return changed
	case *ast.ExportDecl:
		if n.Decl != nil {
			return tailCallStmt(n.Decl)
		}
	case *ast.BlockStmt:
		return tailCallBody(n)
	}
	return false
}

func tailCallBody(b *ast.BlockStmt) bool {
	if b == nil || len(b.Stmts) == 0 {
		return false
	}
	changed := false
	for _, s := range b.Stmts {
		changed = tailCallStmt(s) || changed
	}
	last, ok := b.Stmts[len(b.Stmts)-1].(*ast.ReturnStmt)
	if !ok || last.Value == nil {
		return changed
	}
	switch call := last.Value.(type) {
	case *ast.CallExpr:
		if !call.IsTailCall {
			call.IsTailCall = true
			changed = true
		}
	case *ast.MethodCallExpr:
		if !call.IsTailCall {
			call.IsTailCall = true
			changed = true
		}
	}
	return changed
}
