package optimize

import "github.com/sunholo/tlc/internal/ast"

// DeadCodeEliminationPass drops statements that can never execute: code
// following a return/throw/break/continue within the same block, and
// `if` branches whose condition folds to a literal boolean (constant
// folding runs first in registration order, so conditions often arrive
// already folded). Grounded on the "prune unreachable branches" shape
// every AST optimizer in the corpus implements, adapted to TL's
// statement set since the original pass source wasn't in the retrieval
// pack.
type DeadCodeEliminationPass struct{}

func (*DeadCodeEliminationPass) Name() string    { return "dead-code-elimination" }
func (*DeadCodeEliminationPass) MinLevel() Level { return O1 }

func (p *DeadCodeEliminationPass) Run(prog *ast.Program) bool {
	changed := pruneBlock(&prog.Stmts)
	for _, s := range prog.Stmts {
		changed = dceStmt(s) || changed
	}
	return changed
}

func dceStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.FuncDecl:
		return dceBody(n.Body)
	case *ast.IfStmt:
		changed := dceBody(n.Then)
		if n.Else != nil {
			changed = dceStmt(n.Else) || changed
		}
		return changed
	case *ast.WhileStmt:
		return dceBody(n.Body)
	case *ast.RepeatStmt:
		return dceBody(n.Body)
	case *ast.ForNumericStmt:
		return dceBody(n.Body)
	case *ast.ForGenericStmt:
		return dceBody(n.Body)
	case *ast.ClassDecl:
		changed := false
		for i := range n.Members {
			changed = dceBody(n.Members[i].Body) || changed
		}
		return changed
	case *ast.EnumDecl:
		changed := dceBody(n.CtorBody)
		for i := range n.Methods {
			changed = dceBody(n.Methods[i].Body) || changed
		}
		return changed
	case *ast.ExportDecl:
		if n.Decl != nil {
			return dceStmt(n.Decl)
		}
	case *ast.TryStmt:
		changed := dceBody(n.Try)
		for i := range n.Catches {
			changed = dceBody(n.Catches[i].Body) || changed
		}
		changed = dceBody(n.Finally) || changed
		return changed
	}
	return false
}

func dceBody(b *ast.BlockStmt) bool {
	if b == nil {
		return false
	}
	changed := pruneBlock(&b.Stmts)
	for _, s := range b.Stmts {
		changed = dceStmt(s) || changed
	}
	return changed
}

// pruneBlock drops every statement after the first unconditional
// terminator in stmts, and replaces a constant-condition if-statement
// with its taken branch spliced into the surrounding block.
func pruneBlock(stmts *[]ast.Stmt) bool {
	changed := false
	out := make([]ast.Stmt, 0, len(*stmts))
	for _, s := range *stmts {
		if ifs, ok := s.(*ast.IfStmt); ok {
			if lit, ok := ifs.Cond.(*ast.Literal); ok && lit.Kind == ast.LitBool {
				taken, istaken := lit.Value.(bool)
				if istaken {
					if taken {
						out = append(out, ifs.Then.Stmts...)
					} else if elseBlock, ok := ifs.Else.(*ast.BlockStmt); ok {
						out = append(out, elseBlock.Stmts...)
					} else if ifs.Else != nil {
						out = append(out, ifs.Else)
					}
					changed = true
					if len(out) > 0 && isTerminator(out[len(out)-1]) {
						break
					}
					continue
				}
			}
		}
		out = append(out, s)
		if isTerminator(s) {
			break
		}
	}
	if changed || len(out) != len(*stmts) {
		changed = true
		*stmts = out
	}
	return changed
}

func isTerminator(s ast.Stmt) bool {
	switch s.(type) {
	case *ast.ReturnStmt, *ast.ThrowStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	}
	return false
}
