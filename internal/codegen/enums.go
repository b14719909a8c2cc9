package codegen

import (
	"strconv"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/optimize"
)

// genEnumDecl lowers a simple enum (members carry only an auto/explicit
// value) to a flat table literal, and a rich enum (members carry
// constructor arguments) to a metatable-based pattern with a `__new`
// constructor plus `__values`/`__byName` lookup tables, per enums.rs.
func (g *Generator) genEnumDecl(n *ast.EnumDecl, exported bool) {
	name := g.name(n.Name)
	if n.Rich {
		g.genRichEnum(n, name)
	} else {
		g.genSimpleEnum(n, name)
	}
	if exported {
		g.exports = append(g.exports, name)
	}
}

func (g *Generator) genSimpleEnum(n *ast.EnumDecl, name string) {
	g.writeIndent()
	g.write("local " + name + " = {")
	g.writeln("")
	g.indentIn()
	nextAuto := int64(0)
	for _, m := range n.Members {
		g.writeIndent()
		g.write(g.name(m.Name) + " = ")
		if m.Value != nil {
			g.genExpr(m.Value)
		} else {
			g.write(strconv.FormatInt(nextAuto, 10))
		}
		g.writeln(",")
		nextAuto++
	}
	g.indentOut()
	g.writeIndent()
	g.writeln("}")
}

// genRichEnum emits:
//
//	local Name = {}
//	Name.__index = Name
//	function Name.__new(ctor params...) ... end
//	Name.__values = { Member = Name.__new(args), ... }  -- one instance per member
//	Name.__byName = { ["Member"] = Name.__values.Member, ... }
//	(methods)
//
// At O2+, member instantiation uses an inline struct literal instead of
// calling __new, skipping the constructor-body indirection for the fixed,
// compile-time-known argument lists of enum member declarations.
func (g *Generator) genRichEnum(n *ast.EnumDecl, name string) {
	g.writeIndent()
	g.write("local " + name + " = {}")
	g.writeln("")
	g.writeIndent()
	g.write(name + ".__index = " + name)
	g.writeln("")

	g.genEnumCtor(n, name)

	g.writeIndent()
	g.write(name + ".__values = {")
	g.writeln("")
	g.indentIn()
	for _, m := range n.Members {
		g.writeIndent()
		g.write(g.name(m.Name) + " = ")
		g.genEnumMemberInstance(n, name, m)
		g.writeln(",")
	}
	g.indentOut()
	g.writeIndent()
	g.writeln("}")

	g.writeIndent()
	g.write(name + ".__byName = {")
	g.writeln("")
	g.indentIn()
	for _, m := range n.Members {
		g.writeIndent()
		g.write("[\"" + g.name(m.Name) + "\"] = " + name + ".__values." + g.name(m.Name))
		g.writeln(",")
	}
	g.indentOut()
	g.writeIndent()
	g.writeln("}")

	for _, method := range n.Methods {
		g.genEnumMethodHint(method)
		g.genClassMember(name, method)
	}
}

func (g *Generator) genEnumCtor(n *ast.EnumDecl, name string) {
	g.writeIndent()
	g.write("function " + name + ".__new(")
	params := n.CtorParams
	if params == nil {
		params = n.Fields
	}
	g.genParams(params)
	g.writeln(")")
	g.indentIn()
	g.writeIndent()
	g.write("local self = setmetatable({}, " + name + ")")
	g.writeln("")
	for _, f := range n.Fields {
		g.writeIndent()
		g.write("self." + g.name(f.Name) + " = " + g.name(f.Name))
		g.writeln("")
	}
	if n.CtorBody != nil {
		g.genBlockStmts(n.CtorBody)
	}
	g.writeIndent()
	g.writeln("return self")
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
}

// genEnumMemberInstance emits the construction expression for one enum
// member's singleton instance. At O2+ this inlines a struct literal
// instead of calling __new, since every member's argument list is fixed
// at the declaration site and the indirection buys nothing at this
// optimization level.
func (g *Generator) genEnumMemberInstance(n *ast.EnumDecl, name string, m ast.EnumMember) {
	if g.level.Effective() >= optimize.O2 && len(m.Args) == len(n.Fields) {
		g.write("setmetatable({")
		for i, f := range n.Fields {
			if i > 0 {
				g.write(", ")
			}
			g.write(g.name(f.Name) + " = ")
			g.genExpr(m.Args[i])
		}
		g.write("}, " + name + ")")
		return
	}
	g.write(name + ".__new(")
	g.genArgs(m.Args)
	g.write(")")
}

// genEnumMethodHint emits an `@inline` hint comment ahead of a "simple"
// method (no params beyond self, body a single `return` statement) at O3, matching
// the source compiler's inlining-hint convention for downstream Lua
// JIT/minifier tooling to act on; this generator doesn't itself perform
// the inlining (InterfaceMethodInliningPass and friends are conservative
// no-ops at this AST stage), only emits the hint.
func (g *Generator) genEnumMethodHint(m ast.ClassMember) {
	if g.level.Effective() < optimize.O3 {
		return
	}
	if len(m.Params) != 0 || m.Body == nil || len(m.Body.Stmts) != 1 {
		return
	}
	if _, ok := m.Body.Stmts[0].(*ast.ReturnStmt); !ok {
		return
	}
	g.writeIndent()
	g.writeln("-- @inline")
}
