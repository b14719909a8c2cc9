package codegen

import (
	"strconv"

	"github.com/sunholo/tlc/internal/ast"
)

// genClassDecl lowers a class to the conventional Lua OOP idiom: a table
// of methods doubling as its own metatable (`__index = ClassName`), a
// `new` constructor function, and (when Extends is set) a parent metatable
// link so inherited methods resolve through the `__index` chain. Grounded
// on decorators.rs for the wrapping step and on this AST's ClassMember
// shape, which (unlike the source compiler's) has no distinct
// getter/setter member kinds — both lower to plain methods, and Lua has
// no nominal access control so private/protected members are distinguished
// only by naming convention here, not enforced at runtime.
func (g *Generator) genClassDecl(n *ast.ClassDecl, exported bool) {
	className := g.name(n.Name)

	g.writeIndent()
	g.write("local " + className + " = {}")
	g.writeln("")
	g.writeIndent()
	g.write(className + ".__index = " + className)
	g.writeln("")

	if n.Extends != nil {
		parent := g.name(n.Extends.Name)
		g.writeIndent()
		g.write("setmetatable(" + className + ", {__index = " + parent + "})")
		g.writeln("")
	}

	g.genCtor(n, className)

	for _, m := range n.Members {
		g.genClassMember(className, m)
	}

	if len(n.Decorators) > 0 {
		g.genClassDecorators(n, className)
	}

	if exported {
		g.exports = append(g.exports, className)
	}
}

func (g *Generator) genCtor(n *ast.ClassDecl, className string) {
	g.writeIndent()
	g.write("function " + className + ".new(")

	var ctorParams []ast.Param
	var ctorBody *ast.BlockStmt
	for _, m := range n.Members {
		if m.Kind == ast.MemberConstructor {
			ctorParams = m.Params
			ctorBody = m.Body
		}
	}
	if ctorParams == nil {
		ctorParams = n.PrimaryCtorParams
	}
	g.genParams(ctorParams)
	g.writeln(")")
	g.indentIn()

	g.writeIndent()
	g.write("local self = setmetatable({}, " + className + ")")
	g.writeln("")

	if n.Extends != nil && len(n.ParentCtorArgs) > 0 {
		parent := g.name(n.Extends.Name)
		g.writeIndent()
		g.write("local _super = " + parent + ".new(")
		g.genArgs(n.ParentCtorArgs)
		g.writeln(")")
		g.writeIndent()
		g.writeln("for k, v in pairs(_super) do self[k] = v end")
	}

	for _, m := range n.Members {
		if m.Kind == ast.MemberField && m.Init != nil {
			g.writeIndent()
			g.write("self." + g.name(m.Name) + " = ")
			g.genExpr(m.Init)
			g.writeln("")
		}
	}

	// primary-constructor params with a public/private/protected modifier
	// assign directly onto the instance, matching the primary-constructor
	// field-promotion convention.
	for _, p := range n.PrimaryCtorParams {
		if p.Modifier != "" {
			g.writeIndent()
			g.write("self." + g.name(p.Name) + " = " + g.name(p.Name))
			g.writeln("")
		}
	}

	if ctorBody != nil {
		g.genBlockStmts(ctorBody)
	}

	g.writeIndent()
	g.writeln("return self")
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
}

func (g *Generator) genClassMember(className string, m ast.ClassMember) {
	switch m.Kind {
	case ast.MemberConstructor, ast.MemberField:
		return // constructor and field init handled by genCtor
	case ast.MemberMethod:
		g.genMethod(className, m, g.name(m.Name))
	case ast.MemberOperator:
		g.genMethod(className, m, "__"+operatorMetamethod(g.name(m.Name)))
	}
}

// operatorMetamethod maps an overloaded operator's source spelling to the
// Lua metamethod name it's wired to via the class's metatable.
func operatorMetamethod(op string) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div"
	case "==":
		return "eq"
	case "<":
		return "lt"
	case "<=":
		return "le"
	default:
		return "call"
	}
}

func (g *Generator) genMethod(className string, m ast.ClassMember, luaName string) {
	g.writeIndent()
	if m.Static {
		g.write("function " + className + "." + luaName + "(")
		g.genParams(m.Params)
	} else {
		g.write("function " + className + ":" + luaName + "(")
		g.genParams(m.Params)
	}
	g.writeln(")")
	g.indentIn()
	g.genBlockStmts(m.Body)
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
}

// genClassDecorators wraps the finished class value with each decorator,
// innermost (last-written) first, so `@d1 @d2` lowers to
// ClassName = d2(ClassName); ClassName = d1(ClassName). The
// three built-in decorators the checker recognizes by canonical name
// (spec §4.2.7) lower to a call into the runtime-hook prelude rather
// than a bare function call, since `readonly`/`sealed`/`deprecated`
// aren't user-defined functions in scope; any other decorator keeps the
// generic bare-call lowering.
func (g *Generator) genClassDecorators(n *ast.ClassDecl, className string) {
	for i := len(n.Decorators) - 1; i >= 0; i-- {
		d := n.Decorators[i]
		switch g.name(d.Name) {
		case "readonly":
			g.ensureDecoratorRuntime()
			g.writeIndent()
			g.writeln(className + " = __tlc_readonly(" + className + ")")
		case "sealed":
			g.ensureDecoratorRuntime()
			g.writeIndent()
			g.writeln(className + " = __tlc_sealed(" + className + ")")
		case "deprecated":
			g.ensureDecoratorRuntime()
			g.writeIndent()
			g.write(className + " = __tlc_deprecated(" + className + ", ")
			if len(d.Args) > 0 {
				g.genArgs(d.Args)
			} else {
				g.write(strconv.Quote(className + " is deprecated"))
			}
			g.writeln(")")
		default:
			g.writeIndent()
			g.write(className + " = ")
			g.write(g.name(d.Name))
			if len(d.Args) > 0 {
				g.write("(")
				g.genArgs(d.Args)
				g.write(")")
			}
			g.write("(" + className + ")")
			g.writeln("")
		}
	}
}

// ensureDecoratorRuntime emits the built-in decorators' runtime-hook
// prelude the first time this module uses one of them, and never again
// (spec §4.2.7: "emits the runtime-library hook only when actually
// used"). Its exact wording is an opaque implementation detail, not a
// contract any caller depends on.
func (g *Generator) ensureDecoratorRuntime() {
	if g.emittedDecoratorRuntime {
		return
	}
	g.emittedDecoratorRuntime = true
	g.writeIndent()
	g.writeln("local function __tlc_readonly(cls)")
	g.indentIn()
	g.writeIndent()
	g.writeln("local ctor = cls.new")
	g.writeIndent()
	g.writeln("cls.new = function(...)")
	g.indentIn()
	g.writeIndent()
	g.writeln("local self = ctor(...)")
	g.writeIndent()
	g.writeln(`return setmetatable({}, {__index = self, __newindex = function(t, k, v) error("cannot assign to readonly field " .. tostring(k)) end})`)
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
	g.writeIndent()
	g.writeln("return cls")
	g.indentOut()
	g.writeIndent()
	g.writeln("end")

	g.writeIndent()
	g.writeln("local function __tlc_sealed(cls)")
	g.indentIn()
	g.writeIndent()
	g.writeln("local ctor = cls.new")
	g.writeIndent()
	g.writeln("cls.new = function(...)")
	g.indentIn()
	g.writeIndent()
	g.writeln("local self = ctor(...)")
	g.writeIndent()
	g.writeln("local mt = {__index = self, __newindex = function(t, k, v)")
	g.indentIn()
	g.writeIndent()
	g.writeln(`if self[k] == nil then error("cannot add field " .. tostring(k) .. " to sealed instance") end`)
	g.writeIndent()
	g.writeln("self[k] = v")
	g.indentOut()
	g.writeIndent()
	g.writeln("end}")
	g.writeIndent()
	g.writeln("return setmetatable({}, mt)")
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
	g.writeIndent()
	g.writeln("return cls")
	g.indentOut()
	g.writeIndent()
	g.writeln("end")

	g.writeIndent()
	g.writeln("local function __tlc_deprecated(cls, message)")
	g.indentIn()
	g.writeIndent()
	g.writeln("local ctor = cls.new")
	g.writeIndent()
	g.writeln("cls.new = function(...)")
	g.indentIn()
	g.writeIndent()
	g.writeln(`io.stderr:write("warning: " .. tostring(message) .. "\n")`)
	g.writeIndent()
	g.writeln("return ctor(...)")
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
	g.writeIndent()
	g.writeln("return cls")
	g.indentOut()
	g.writeIndent()
	g.writeln("end")
}
