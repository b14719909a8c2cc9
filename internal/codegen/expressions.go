package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sunholo/tlc/internal/ast"
)

// genExpr dispatches on expression kind, grounded on the original
// compiler's generate_expression and expressions/binary_ops.rs, adapted
// to this AST's simpler (single `+` operator, no getter/setter) shapes.
func (g *Generator) genExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		g.genLiteral(n)
	case *ast.Identifier:
		g.mark(n.Sp, g.name(n.Name))
		g.write(g.name(n.Name))
	case *ast.BinaryExpr:
		g.genBinaryExpr(n)
	case *ast.UnaryExpr:
		g.genUnaryExpr(n)
	case *ast.AssignExpr:
		g.genAssignExpr(n)
	case *ast.MemberExpr:
		g.genExpr(n.Object)
		g.write(".")
		g.write(g.name(n.Name))
	case *ast.IndexExpr:
		g.genExpr(n.Object)
		g.write("[")
		g.genExpr(n.Index)
		g.write("]")
	case *ast.CallExpr:
		g.genExpr(n.Callee)
		g.write("(")
		g.genArgs(n.Args)
		g.write(")")
	case *ast.MethodCallExpr:
		g.genExpr(n.Receiver)
		g.write(":")
		g.write(g.name(n.Method))
		g.write("(")
		g.genArgs(n.Args)
		g.write(")")
	case *ast.ArrayExpr:
		g.write("{")
		for i, el := range n.Elements {
			if i > 0 {
				g.write(", ")
			}
			g.genExpr(el)
		}
		g.write("}")
	case *ast.ObjectExpr:
		g.genObjectExpr(n)
	case *ast.FunctionExpr:
		g.genFunctionExpr(n)
	case *ast.ConditionalExpr:
		// Lua has no ternary; the standard and/or idiom misbehaves when
		// Then is falsy, so an IIFE is used instead for correctness.
		g.write("(function() if ")
		g.genExpr(n.Cond)
		g.write(" then return ")
		g.genExpr(n.Then)
		g.write(" else return ")
		g.genExpr(n.Else)
		g.write(" end end)()")
	case *ast.PipeExpr:
		// a |> f  =>  f(a)
		g.genExpr(n.Func)
		g.write("(")
		g.genExpr(n.Value)
		g.write(")")
	case *ast.MatchExpr:
		g.genMatchExpr(n)
	case *ast.ParenExpr:
		g.write("(")
		g.genExpr(n.Inner)
		g.write(")")
	case *ast.SelfExpr:
		g.write("self")
	case *ast.SuperExpr:
		g.write("super")
	case *ast.TemplateExpr:
		g.genTemplateExpr(n)
	case *ast.TypeAssertExpr:
		// purely a compile-time narrowing; no runtime representation.
		g.genExpr(n.Expr)
	case *ast.NewExpr:
		g.genNewExpr(n)
	case *ast.TryExpr:
		g.genTryExpr(n)
	case *ast.ErrorChainExpr:
		g.genErrorChainExpr(n)
	case *ast.SpreadExpr:
		g.write("table.unpack(")
		g.genExpr(n.Expr)
		g.write(")")
	}
}

func (g *Generator) genArgs(args []ast.Expr) {
	for i, a := range args {
		if i > 0 {
			g.write(", ")
		}
		g.genExpr(a)
	}
}

func (g *Generator) genLiteral(n *ast.Literal) {
	switch n.Kind {
	case ast.LitNil:
		g.write("nil")
	case ast.LitBool:
		if n.Value.(bool) {
			g.write("true")
		} else {
			g.write("false")
		}
	case ast.LitInt:
		g.write(fmt.Sprintf("%d", n.Value))
	case ast.LitFloat:
		g.write(strconv.FormatFloat(n.Value.(float64), 'g', -1, 64))
	case ast.LitString:
		g.write(strconv.Quote(n.Value.(string)))
	}
}

func (g *Generator) genBinaryExpr(n *ast.BinaryExpr) {
	op := n.Op
	if op == "+" && n.IsConcat {
		g.genExpr(n.Left)
		g.write(" .. ")
		g.genExpr(n.Right)
		return
	}
	if op == "instanceof" {
		g.genInstanceofExpr(n)
		return
	}
	switch op {
	case "==":
		op = "=="
	case "!=":
		op = "~="
	case "&&":
		op = "and"
	case "||":
		op = "or"
	case "//":
		if !g.target.supportsFloorDivide() {
			g.write("math.floor(")
			g.genExpr(n.Left)
			g.write(" / ")
			g.genExpr(n.Right)
			g.write(")")
			return
		}
	case "&", "|", "~", "<<", ">>":
		if !g.target.supportsNativeBitwise() {
			g.genBitwiseFallback(n)
			return
		}
	}
	g.genExpr(n.Left)
	g.write(" " + op + " ")
	g.genExpr(n.Right)
}

// genBitwiseFallback emits a call to a bit32-style helper for dialects
// that lack native bitwise operators (5.1/5.2), matching the approach
// those targets' standard `bit` libraries take.
func (g *Generator) genBitwiseFallback(n *ast.BinaryExpr) {
	fn := map[string]string{"&": "band", "|": "bor", "~": "bxor", "<<": "lshift", ">>": "rshift"}[n.Op]
	g.write("bit32.")
	g.write(fn)
	g.write("(")
	g.genExpr(n.Left)
	g.write(", ")
	g.genExpr(n.Right)
	g.write(")")
}

// genInstanceofExpr lowers `x instanceof C` to an inline metatable-chain
// walk: an instance's metatable is its own class table (genCtor's
// `setmetatable({}, ClassName)`), and a subclass's class table is itself
// linked to its parent's via `setmetatable(Sub, {__index = Parent})`
// (genClassDecl), so checking membership means walking that chain rather
// than a single getmetatable comparison.
func (g *Generator) genInstanceofExpr(n *ast.BinaryExpr) {
	g.write("(function() local _c = getmetatable(")
	g.genExpr(n.Left)
	g.write(") while _c do if _c == ")
	g.genExpr(n.Right)
	g.write(" then return true end local _mt = getmetatable(_c) _c = _mt and _mt.__index or nil end return false end)()")
}

func (g *Generator) genUnaryExpr(n *ast.UnaryExpr) {
	switch n.Op {
	case "!", "not":
		g.write("not ")
	case "-":
		g.write("-")
	case "~":
		if g.target.supportsNativeBitwise() {
			g.write("~")
		} else {
			g.write("bit32.bnot(")
			g.genExpr(n.Expr)
			g.write(")")
			return
		}
	case "typeof":
		// TL's narrowing tag set ("string"/"number"/"boolean"/"table"/
		// "function"/"nil") is exactly Lua's own type() vocabulary, so
		// this lowers directly with no runtime shim.
		g.write("type(")
		g.genExpr(n.Expr)
		g.write(")")
		return
	default:
		g.write(n.Op)
	}
	g.genExpr(n.Expr)
}

func (g *Generator) genAssignExpr(n *ast.AssignExpr) {
	if n.Op == "=" {
		g.genExpr(n.Target)
		g.write(" = ")
		g.genExpr(n.Value)
		return
	}
	// compound assignment: target = target <op> value
	op := strings.TrimSuffix(n.Op, "=")
	g.genExpr(n.Target)
	g.write(" = ")
	g.genExpr(n.Target)
	if op == "+" && n.IsConcat {
		g.write(" .. ")
	} else {
		g.write(" " + op + " ")
	}
	g.genExpr(n.Value)
}

func (g *Generator) genObjectExpr(n *ast.ObjectExpr) {
	g.write("{")
	for i, p := range n.Props {
		if i > 0 {
			g.write(", ")
		}
		if p.Spread {
			g.write("table.unpack(")
			g.genExpr(p.Value)
			g.write(")")
			continue
		}
		if p.Computed != nil {
			g.write("[")
			g.genExpr(p.Computed)
			g.write("] = ")
		} else {
			g.write(g.name(p.Key))
			g.write(" = ")
		}
		g.genExpr(p.Value)
	}
	g.write("}")
}

func (g *Generator) genFunctionExpr(n *ast.FunctionExpr) {
	g.write("function(")
	g.genParams(n.Params)
	g.write(")")
	if g.format == Readable {
		g.write("\n")
	} else {
		g.write(" ")
	}
	g.indentIn()
	g.genBlockStmts(n.Body)
	g.indentOut()
	g.writeIndent()
	g.write("end")
}

// genTemplateExpr lowers a template literal to a chain of `..`
// concatenations. At O2 and above the StringConcatOptimizationPass folds
// the all-literal case into a single string before codegen; below O2 the
// chain is emitted as written.
func (g *Generator) genTemplateExpr(n *ast.TemplateExpr) {
	g.write("(")
	for i, q := range n.Quasis {
		if i > 0 {
			g.write(" .. ")
		}
		g.write(strconv.Quote(q))
		if i < len(n.Exprs) {
			g.write(" .. tostring(")
			g.genExpr(n.Exprs[i])
			g.write(")")
		}
	}
	g.write(")")
}

// genNewExpr lowers `new Foo(args)` to a call of Foo's constructor
// function, per the class-lowering convention in classes.go.
func (g *Generator) genNewExpr(n *ast.NewExpr) {
	ref, ok := n.Callee.(*ast.TypeRef)
	if !ok {
		// generic/unsupported callee shape; emit a nil placeholder with a
		// marker comment.
		g.write("nil --[[ unsupported new-expression callee ]]")
		return
	}
	g.write(g.name(ref.Name) + ".new")
	g.write("(")
	g.genArgs(n.Args)
	g.write(")")
}

// genTryExpr lowers the `try e catch default` expression sugar to a pcall
// IIFE, distinct from the statement-level TryStmt's pcall lowering.
func (g *Generator) genTryExpr(n *ast.TryExpr) {
	g.write("(function() local _ok, _v = pcall(function() return ")
	g.genExpr(n.Try)
	g.write(" end) if _ok then return _v else return ")
	g.genExpr(n.Default)
	g.write(" end end)()")
}

// genErrorChainExpr lowers `e!` to an assertion that re-raises on failure;
// TL's richer error-value propagation semantics collapse here to Lua's
// pcall/error idiom, matching how TryStmt/ThrowStmt are lowered.
func (g *Generator) genErrorChainExpr(n *ast.ErrorChainExpr) {
	g.write("(function() local _v = ")
	g.genExpr(n.Expr)
	g.write(" if _v == nil then error(\"error chain propagation\") end return _v end)()")
}

// genMatchExpr lowers a match expression to an immediately-invoked
// function containing an if/elseif chain, one branch per arm. Pattern
// matching here is scoped to literal, identifier (binds and always
// matches), wildcard, and or-patterns; an object/array destructuring
// pattern in a match arm always matches (its condition is `true`) and
// binds none of its names.
func (g *Generator) genMatchExpr(n *ast.MatchExpr) {
	g.write("(function() local _subject = ")
	g.genExpr(n.Subject)
	g.writeln("")
	g.indentIn()
	for i, arm := range n.Arms {
		g.writeIndent()
		if i == 0 {
			g.write("if ")
		} else {
			g.write("elseif ")
		}
		g.genArmCond(arm)
		g.writeln(" then")
		g.indentIn()
		g.genArmBindings(arm.Pattern)
		g.writeIndent()
		g.write("return ")
		g.genExpr(arm.Body)
		g.writeln("")
		g.indentOut()
	}
	g.writeIndent()
	g.writeln("end")
	g.indentOut()
	g.writeIndent()
	g.write("end)()")
}

func (g *Generator) genArmCond(arm ast.MatchArm) {
	g.genPatternCond(arm.Pattern)
	if arm.Guard != nil {
		g.write(" and (")
		g.genExpr(arm.Guard)
		g.write(")")
	}
}

func (g *Generator) genPatternCond(p ast.Pattern) {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		g.write("true")
	case *ast.IdentPattern:
		g.write("true")
	case *ast.LiteralPattern:
		g.write("_subject == ")
		g.genLiteralPatternValue(pt)
	case *ast.TypedPattern:
		g.genPatternCond(pt.Inner)
	case *ast.OrPattern:
		g.write("(")
		for i, alt := range pt.Alternatives {
			if i > 0 {
				g.write(" or ")
			}
			g.genPatternCond(alt)
		}
		g.write(")")
	default:
		g.write("true")
	}
}

func (g *Generator) genLiteralPatternValue(p *ast.LiteralPattern) {
	lit := &ast.Literal{Kind: p.Kind, Value: p.Value, Sp: p.Sp}
	g.genLiteral(lit)
}

func (g *Generator) genArmBindings(p ast.Pattern) {
	if id, ok := p.(*ast.IdentPattern); ok {
		g.writeIndent()
		g.write("local ")
		g.write(g.name(id.Name))
		g.writeln(" = _subject")
	}
}
