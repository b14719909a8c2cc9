package codegen

import (
	"strings"

	"github.com/sunholo/tlc/internal/ast"
)

// genStmt dispatches on statement kind, grounded on the teacher-adjacent
// switch-on-node-kind shape used throughout this pipeline's own packages
// and on generate_statement in the source compiler's codegen module.
func (g *Generator) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		g.genVarDecl(n, false)
	case *ast.ExprStmt:
		g.writeIndent()
		g.genExpr(n.Expr)
		g.writeln("")
	case *ast.FuncDecl:
		g.genFuncDecl(n, false)
	case *ast.ClassDecl:
		g.genClassDecl(n, false)
	case *ast.EnumDecl:
		g.genEnumDecl(n, false)
	case *ast.InterfaceDecl, *ast.TypeAliasDecl:
		// type-only declarations; no runtime representation in Lua.
	case *ast.ImportDecl:
		g.genImport(n)
	case *ast.ExportDecl:
		g.genExport(n)
	case *ast.IfStmt:
		g.genIfStmt(n)
	case *ast.WhileStmt:
		g.writeIndent()
		g.write("while ")
		g.genExpr(n.Cond)
		g.writeln(" do")
		g.indentIn()
		g.genBlockStmts(n.Body)
		g.indentOut()
		g.writeIndent()
		g.writeln("end")
	case *ast.RepeatStmt:
		g.writeIndent()
		g.writeln("repeat")
		g.indentIn()
		g.genBlockStmts(n.Body)
		g.indentOut()
		g.writeIndent()
		g.write("until ")
		g.genExpr(n.Cond)
		g.writeln("")
	case *ast.ForNumericStmt:
		g.writeIndent()
		g.write("for ")
		g.write(g.name(n.Var))
		g.write(" = ")
		g.genExpr(n.Start)
		g.write(", ")
		g.genExpr(n.Stop)
		if n.Step != nil {
			g.write(", ")
			g.genExpr(n.Step)
		}
		g.writeln(" do")
		g.indentIn()
		g.genBlockStmts(n.Body)
		g.indentOut()
		g.writeIndent()
		g.writeln("end")
	case *ast.ForGenericStmt:
		g.writeIndent()
		g.write("for ")
		for i, v := range n.Vars {
			if i > 0 {
				g.write(", ")
			}
			g.write(g.name(v))
		}
		g.write(" in ")
		g.genExpr(n.Iter)
		g.writeln(" do")
		g.indentIn()
		g.genBlockStmts(n.Body)
		g.indentOut()
		g.writeIndent()
		g.writeln("end")
	case *ast.ReturnStmt:
		g.writeIndent()
		g.write("return")
		if n.Value != nil {
			g.write(" ")
			g.genExpr(n.Value)
		}
		g.writeln("")
	case *ast.BreakStmt:
		g.writeIndent()
		g.writeln("break")
	case *ast.ContinueStmt:
		// Lua has no `continue`; goto a trailing label is the standard
		// workaround for targets that support goto (5.2+). For 5.1 this
		// would need loop restructuring, out of scope here: emitted as a
		// goto regardless, matching the 5.2+ common case.
		g.writeIndent()
		g.writeln("goto continue")
	case *ast.BlockStmt:
		g.writeIndent()
		g.writeln("do")
		g.indentIn()
		g.genBlockStmts(n)
		g.indentOut()
		g.writeIndent()
		g.writeln("end")
	case *ast.TryStmt:
		g.genTryStmt(n)
	case *ast.ThrowStmt:
		g.writeIndent()
		g.write("error(")
		g.genExpr(n.Value)
		g.writeln(")")
	case *ast.NamespaceDecl:
		g.genNamespaceDecl(n)
	case *ast.DeclareStmt:
		// ambient declarations carry no runtime code.
	}
}

func (g *Generator) genBlockStmts(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		g.genStmt(s)
	}
}

func (g *Generator) genVarDecl(n *ast.VarDecl, exported bool) {
	g.writeIndent()
	g.write("local ")
	g.genPatternTargets(n.Target)
	if n.Init != nil {
		g.write(" = ")
		g.genExpr(n.Init)
	}
	g.writeln("")
	if exported {
		if id, ok := n.Target.(*ast.IdentPattern); ok {
			g.exports = append(g.exports, g.name(id.Name))
		}
	}
}

// genPatternTargets writes the local name a pattern binds: the name of an
// IdentPattern (also inside a TypedPattern), `_` for a wildcard, and a
// single `_destructured` local for any array/object pattern; the
// pattern's member names are not bound individually.
func (g *Generator) genPatternTargets(p ast.Pattern) {
	switch pt := p.(type) {
	case *ast.IdentPattern:
		g.write(g.name(pt.Name))
	case *ast.WildcardPattern:
		g.write("_")
	case *ast.TypedPattern:
		g.genPatternTargets(pt.Inner)
	default:
		g.write("_destructured")
	}
}

func (g *Generator) genFuncDecl(n *ast.FuncDecl, exported bool) {
	g.writeIndent()
	g.write("local function ")
	g.write(g.name(n.Name))
	g.write("(")
	g.genParams(n.Params)
	g.writeln(")")
	g.indentIn()
	g.genBlockStmts(n.Body)
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
	if exported {
		g.exports = append(g.exports, g.name(n.Name))
	}
}

func (g *Generator) genParams(params []ast.Param) {
	for i, p := range params {
		if i > 0 {
			g.write(", ")
		}
		if p.Rest {
			g.write("...")
			continue
		}
		g.write(g.name(p.Name))
	}
}

func (g *Generator) genIfStmt(n *ast.IfStmt) {
	g.writeIndent()
	g.write("if ")
	g.genExpr(n.Cond)
	g.writeln(" then")
	g.indentIn()
	g.genBlockStmts(n.Then)
	g.indentOut()
	g.genElse(n.Else)
}

func (g *Generator) genElse(s ast.Stmt) {
	switch e := s.(type) {
	case nil:
		g.writeIndent()
		g.writeln("end")
	case *ast.IfStmt:
		g.writeIndent()
		g.write("elseif ")
		g.genExpr(e.Cond)
		g.writeln(" then")
		g.indentIn()
		g.genBlockStmts(e.Then)
		g.indentOut()
		g.genElse(e.Else)
	case *ast.BlockStmt:
		g.writeIndent()
		g.writeln("else")
		g.indentIn()
		g.genBlockStmts(e)
		g.indentOut()
		g.writeIndent()
		g.writeln("end")
	}
}

func (g *Generator) genTryStmt(n *ast.TryStmt) {
	// Lua has no native try/catch; pcall is the idiomatic lowering.
	g.writeIndent()
	g.write("local _ok, _err = pcall(function()")
	g.writeln("")
	g.indentIn()
	g.genBlockStmts(n.Try)
	g.indentOut()
	g.writeIndent()
	g.writeln("end)")
	g.writeIndent()
	g.writeln("if not _ok then")
	g.indentIn()
	for _, c := range n.Catches {
		if c.Param != nil {
			g.writeIndent()
			g.write("local ")
			g.genPatternTargets(c.Param)
			g.writeln(" = _err")
		}
		g.genBlockStmts(c.Body)
	}
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
	if n.Finally != nil {
		g.genBlockStmts(n.Finally)
	}
}

func (g *Generator) genNamespaceDecl(n *ast.NamespaceDecl) {
	segments := strings.Split(n.Path, ".")
	if len(segments) == 0 {
		return
	}
	first := segments[0]
	g.writeIndent()
	g.write("local ")
	g.write(first)
	g.writeln(" = " + first + " or {}")
	for i := 1; i < len(segments); i++ {
		g.writeIndent()
		g.write(first)
		for j := 1; j <= i; j++ {
			g.write(".")
			g.write(segments[j])
		}
		g.writeln(" = {}")
	}
}

// genImport lowers an import declaration to a `require`/`__require` call
// plus local bindings, per modules.rs's generate_import.
func (g *Generator) genImport(n *ast.ImportDecl) {
	requireFn, path := g.requireCall(n.Path)
	if n.Kind == ast.ImportTypeOnlyNamed {
		return
	}
	g.writeIndent()
	g.write("local _mod = ")
	g.write(requireFn)
	g.write("(\"")
	g.write(path)
	g.writeln("\")")

	switch n.Kind {
	case ast.ImportNamed:
		g.writeIndent()
		g.write("local ")
		for i, spec := range n.Specifiers {
			if i > 0 {
				g.write(", ")
			}
			g.write(g.name(spec.Local))
		}
		g.write(" = ")
		for i, spec := range n.Specifiers {
			if i > 0 {
				g.write(", ")
			}
			g.write("_mod.")
			g.write(g.name(spec.Imported))
		}
		g.writeln("")
	case ast.ImportDefault, ast.ImportNamespace:
		name := n.Namespace
		if n.Kind == ast.ImportDefault && len(n.Specifiers) > 0 {
			name = n.Specifiers[0].Local
		}
		g.writeIndent()
		g.write("local ")
		g.write(g.name(name))
		g.writeln(" = _mod")
	}
}

func (g *Generator) requireCall(path string) (string, string) {
	if g.mode == ModeBundle {
		if resolved, ok := g.importMap[path]; ok {
			return "__require", resolved
		}
		return "__require", path
	}
	return "require", path
}

// genExport lowers an export declaration: a wrapped declaration is
// generated normally and its name recorded for the module's return table;
// a named re-export requires the source module and re-binds selected
// names; a default export binds to a conventional `_default` local.
func (g *Generator) genExport(n *ast.ExportDecl) {
	switch n.Kind {
	case ast.ExportDeclaration:
		g.genExportedDecl(n.Decl)
	case ast.ExportNamedReExport:
		if n.FromPath != "" {
			g.genReExport(n)
		} else {
			for _, spec := range n.Specifiers {
				g.exports = append(g.exports, g.name(spec.Local))
			}
		}
	case ast.ExportDefault:
		g.writeIndent()
		g.write("local _default = ")
		g.genExpr(n.DefaultExpr)
		g.writeln("")
		g.exports = append(g.exports, "_default")
	}
}

func (g *Generator) genExportedDecl(decl ast.Stmt) {
	switch d := decl.(type) {
	case *ast.VarDecl:
		g.genVarDecl(d, true)
	case *ast.FuncDecl:
		g.genFuncDecl(d, true)
	case *ast.ClassDecl:
		g.genClassDecl(d, true)
	case *ast.EnumDecl:
		g.genEnumDecl(d, true)
	default:
		g.genStmt(decl)
	}
}

func (g *Generator) genReExport(n *ast.ExportDecl) {
	requireFn, path := g.requireCall(n.FromPath)
	g.writeIndent()
	g.write("local _mod = ")
	g.write(requireFn)
	g.write("(\"")
	g.write(path)
	g.writeln("\")")

	g.writeIndent()
	g.write("local ")
	for i, spec := range n.Specifiers {
		if i > 0 {
			g.write(", ")
		}
		g.write(g.name(spec.Local))
	}
	g.write(" = ")
	for i, spec := range n.Specifiers {
		if i > 0 {
			g.write(", ")
		}
		g.write("_mod.")
		g.write(g.name(spec.Imported))
	}
	g.writeln("")
	for _, spec := range n.Specifiers {
		g.exports = append(g.exports, g.name(spec.Local))
	}
}
