package types

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
)

// Checker walks a single module's AST, inferring and checking types and
// pushing diagnostics for every assignability, obligation, and
// exhaustiveness failure it finds (spec §4.2).
type Checker struct {
	file  string
	diags *diag.Handler
	in    *interner.Interner
	decls *Decls
	res   *Resolver

	returnStack []Type // declared return type of the function currently being checked
	loopDepth   int
	selfStack   []*Decl // enclosing class, for self/super resolution
}

// CheckProgram runs the full pipeline for one module: the declaration
// pre-pass, then a top-level env pass registering every function, class
// and enum name (top-level variables are defined as their declarations
// are checked), then a body-checking pass over every statement. The
// returned Env is the module's top-level scope, so a caller building a
// module's export set (spec §6 register_exports) can read the checked
// type of every top-level binding straight off it.
func CheckProgram(prog *ast.Program, in *interner.Interner, diags *diag.Handler, file string) (*Decls, *Env) {
	decls := buildDecls(prog, in, diags, file)
	c := &Checker{file: file, diags: diags, in: in, decls: decls, res: NewResolverWithDiagnostics(decls, in, diags, file)}
	c.checkClassObligations(prog)
	env := NewEnv()
	c.hoistTopLevel(prog.Stmts, env)
	for _, s := range prog.Stmts {
		c.checkStmt(s, env)
	}
	return decls, env
}

// ExportedTopLevelNames walks a module's top-level statements and
// returns the interned names of every declaration the module exports
// (spec §6: a module's exports are the subset of its top-level
// declarations so marked). `export function foo() {}` parses as an
// ExportDecl wrapping an unexported inner FuncDecl (the parser's
// `exported` flag is reserved for a `declare export` form it doesn't
// yet use), so being wrapped in an ExportDecl is itself the export
// marker; a node's own Exported field is consulted only when it isn't
// wrapped, covering any future parser path that sets it directly. Pair
// with a checked Env's Bindings() to build a module's export set.
func ExportedTopLevelNames(prog *ast.Program) []interner.ID {
	var names []interner.ID
	nameOf := func(s ast.Stmt, forceExported bool) (interner.ID, bool) {
		switch n := s.(type) {
		case *ast.FuncDecl:
			return n.Name, forceExported || n.Exported
		case *ast.VarDecl:
			if forceExported || n.Exported {
				if id, ok := n.Target.(*ast.IdentPattern); ok {
					return id.Name, true
				}
			}
			return 0, false
		case *ast.ClassDecl:
			return n.Name, forceExported || n.Exported
		case *ast.InterfaceDecl:
			return n.Name, forceExported || n.Exported
		case *ast.EnumDecl:
			return n.Name, forceExported || n.Exported
		case *ast.TypeAliasDecl:
			return n.Name, forceExported || n.Exported
		}
		return 0, false
	}
	for _, s := range prog.Stmts {
		if ed, ok := s.(*ast.ExportDecl); ok {
			if ed.Kind == ast.ExportDeclaration && ed.Decl != nil {
				if name, ok := nameOf(ed.Decl, true); ok {
					names = append(names, name)
				}
			}
			continue
		}
		if name, ok := nameOf(s, false); ok {
			names = append(names, name)
		}
	}
	return names
}

func (c *Checker) errf(code string, sp ast.Span, msg string, args ...any) {
	c.diags.Push(diag.Errorf(code, c.file, &sp, msg, args...))
}

// hoistTopLevel registers every top-level function/class/enum name
// into env before any body is checked, so forward calls between top-level
// declarations resolve (spec §6 resolution ordering).
func (c *Checker) hoistTopLevel(stmts []ast.Stmt, env *Env) {
	forEachTopDecl(stmts, func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.FuncDecl:
			env.Define(n.Name, c.funcSignature(n.TypeParams, n.Params, n.ReturnType))
		case *ast.ClassDecl:
			if decl, ok := c.decls.Lookup(c.in.MustLookup(n.Name)); ok {
				env.Define(n.Name, &Ref{Decl: decl})
			}
		case *ast.EnumDecl:
			if decl, ok := c.decls.Lookup(c.in.MustLookup(n.Name)); ok {
				env.Define(n.Name, &Ref{Decl: decl})
			}
		}
	})
}

func (c *Checker) funcSignature(tps []ast.TypeParam, params []ast.Param, ret ast.TypeExpr) *Function {
	pop := c.res.PushTypeParams(tps)
	defer pop()
	f := &Function{TypeParams: resolveTypeParams(tps, c.res), PredicateParamIndex: -1}
	for i, p := range params {
		f.Params = append(f.Params, c.res.Resolve(p.Type))
		if p.Rest {
			f.Variadic = true
		}
		if pred, ok := ret.(*ast.TypePredicateType); ok && pred.Param == p.Name {
			f.PredicateParamIndex = i
			f.Predicate = c.res.Resolve(pred.Type)
		}
	}
	f.Return = c.res.Resolve(ret)
	return f
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (c *Checker) checkStmt(s ast.Stmt, env *Env) {
	switch n := s.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(n, env)
	case *ast.FuncDecl:
		c.checkFuncBody(n.TypeParams, n.Params, n.ReturnType, n.Body, env)
	case *ast.ClassDecl:
		c.checkClassBody(n, env)
	case *ast.EnumDecl:
		c.checkEnumBody(n, env)
	case *ast.InterfaceDecl, *ast.TypeAliasDecl, *ast.ImportDecl, *ast.NamespaceDecl:
		// no executable body to check
	case *ast.ExportDecl:
		if n.Kind == ast.ExportDeclaration && n.Decl != nil {
			c.checkStmt(n.Decl, env)
		}
	case *ast.DeclareStmt:
		// ambient declarations carry no body
	case *ast.BlockStmt:
		child := env.Child()
		for _, st := range n.Stmts {
			c.checkStmt(st, child)
		}
	case *ast.IfStmt:
		c.checkIfStmt(n, env)
	case *ast.WhileStmt:
		c.inferExpr(n.Cond, env)
		c.loopDepth++
		c.checkStmt(n.Body, env)
		c.loopDepth--
	case *ast.RepeatStmt:
		c.loopDepth++
		c.checkStmt(n.Body, env)
		c.loopDepth--
		c.inferExpr(n.Cond, env)
	case *ast.ForNumericStmt:
		c.inferExpr(n.Start, env)
		c.inferExpr(n.Stop, env)
		if n.Step != nil {
			c.inferExpr(n.Step, env)
		}
		child := env.Child()
		child.Define(n.Var, Integer)
		c.loopDepth++
		c.checkStmt(n.Body, child)
		c.loopDepth--
	case *ast.ForGenericStmt:
		iterT := c.inferExpr(n.Iter, env)
		child := env.Child()
		elemT := iterElementType(iterT)
		for i, v := range n.Vars {
			if i == 0 {
				child.Define(v, elemT)
			} else {
				child.Define(v, Unknown)
			}
		}
		c.loopDepth++
		c.checkStmt(n.Body, child)
		c.loopDepth--
	case *ast.ReturnStmt:
		var got Type = Void
		if n.Value != nil {
			got = c.inferExpr(n.Value, env)
		}
		if len(c.returnStack) > 0 {
			want := c.returnStack[len(c.returnStack)-1]
			if want != nil && !IsAssignable(got, want) {
				c.errf(diag.TYP001, n.Sp, "cannot return %s, function declares return type %s", got.String(), want.String())
			}
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
		// loop-depth validity is a parse-time concern in this pipeline
	case *ast.ExprStmt:
		c.inferExpr(n.Expr, env)
	case *ast.TryStmt:
		c.checkStmt(n.Try, env)
		for _, cl := range n.Catches {
			child := env.Child()
			if cl.Param != nil {
				c.bindPattern(cl.Param, c.res.Resolve(cl.Type), child)
			}
			c.checkStmt(cl.Body, child)
		}
		if n.Finally != nil {
			c.checkStmt(n.Finally, env)
		}
	case *ast.ThrowStmt:
		if n.Value != nil {
			c.inferExpr(n.Value, env)
		}
	}
}

func (c *Checker) checkVarDecl(n *ast.VarDecl, env *Env) {
	var declared Type
	if n.Type != nil {
		declared = c.res.Resolve(n.Type)
	}
	var init Type
	if n.Init != nil {
		init = c.inferExpr(n.Init, env)
	}
	final := declared
	if final == nil {
		final = init
	}
	if final == nil {
		final = Unknown
	}
	if declared != nil && init != nil && !IsAssignable(init, declared) {
		c.errf(diag.TYP001, n.Sp, "cannot assign %s to declared type %s", init.String(), declared.String())
	}
	c.bindPattern(n.Target, final, env)
}

// bindPattern introduces every name in a (possibly destructuring) pattern
// into env, best-effort splitting t by pattern shape.
func (c *Checker) bindPattern(p ast.Pattern, t Type, env *Env) {
	switch n := p.(type) {
	case *ast.IdentPattern:
		env.Define(n.Name, t)
	case *ast.WildcardPattern:
		// binds nothing
	case *ast.TypedPattern:
		narrowed := c.res.Resolve(n.Type)
		c.bindPattern(n.Inner, narrowed, env)
	case *ast.ArrayPattern:
		elem := Type(Unknown)
		if a, ok := t.(*Array); ok {
			elem = a.Element
		} else if tup, ok := t.(*Tuple); ok && len(tup.Elements) > 0 {
			elem = tup.Elements[0]
		}
		for i, el := range n.Elements {
			et := elem
			if tup, ok := t.(*Tuple); ok && i < len(tup.Elements) {
				et = tup.Elements[i]
			}
			c.bindPattern(el, et, env)
		}
		if n.Rest != nil {
			env.Define(n.Rest.Name, &Array{Element: elem})
		}
	case *ast.ObjectPattern:
		obj, _ := t.(*Object)
		for _, pr := range n.Props {
			pt := Type(Unknown)
			if obj != nil {
				if prop, ok := obj.Prop(pr.Key); ok {
					pt = prop.Type
				}
			}
			c.bindPattern(pr.Value, pt, env)
		}
		if n.Rest != nil {
			env.Define(n.Rest.Name, Unknown)
		}
	case *ast.OrPattern:
		for _, alt := range n.Alternatives {
			c.bindPattern(alt, t, env)
		}
	}
}

func iterElementType(t Type) Type {
	switch v := t.(type) {
	case *Array:
		return v.Element
	case *Tuple:
		if len(v.Elements) > 0 {
			return v.Elements[0]
		}
	}
	return Unknown
}

func (c *Checker) checkIfStmt(n *ast.IfStmt, env *Env) {
	c.inferExpr(n.Cond, env)
	thenEnv := env.Child()
	applyNarrowing(n.Cond, thenEnv, true)
	c.checkStmt(n.Then, thenEnv)
	if n.Else != nil {
		elseEnv := env.Child()
		applyNarrowing(n.Cond, elseEnv, false)
		c.checkStmt(n.Else, elseEnv)
	}
}

// applyNarrowing implements the checker's flow-sensitive narrowing
// (spec §4.2.4 Narrowing predicate forms): nil-comparison guards,
// `typeof(x) == "<tag>"`, user-defined `x is T` type-guard calls,
// `x instanceof C`, and discriminated-union `x.kind == "<literal>"`,
// composed through `and`/`or`/`not`.
func applyNarrowing(cond ast.Expr, env *Env, positive bool) {
	switch n := cond.(type) {
	case *ast.BinaryExpr:
		if (n.Op == "&&" || n.Op == "and") && positive {
			applyNarrowing(n.Left, env, true)
			applyNarrowing(n.Right, env, true)
			return
		}
		if (n.Op == "||" || n.Op == "or") && !positive {
			applyNarrowing(n.Left, env, false)
			applyNarrowing(n.Right, env, false)
			return
		}
		if n.Op == "instanceof" {
			applyInstanceofNarrowing(n, env, positive)
			return
		}
		if n.Op != "!=" && n.Op != "~=" && n.Op != "==" {
			return
		}
		isEq := n.Op == "=="
		if ident, ok := n.Left.(*ast.Identifier); ok {
			if lit, ok := n.Right.(*ast.Literal); ok && lit.Kind == ast.LitNil {
				if isEq != positive {
					if cur, ok := env.Lookup(ident.Name); ok {
						env.Narrow(ident.Name, stripNil(cur))
					}
				}
				return
			}
		}
		if applyTypeofNarrowing(n, env, isEq, positive) {
			return
		}
		applyDiscriminantNarrowing(n, env, isEq, positive)
	case *ast.UnaryExpr:
		if n.Op == "!" || n.Op == "not" {
			applyNarrowing(n.Expr, env, !positive)
		}
	case *ast.CallExpr:
		applyPredicateNarrowing(n, env, positive)
	}
}

// unwrapParen strips a surrounding ParenExpr, e.g. the `(x)` a call-like
// `typeof(x)` parses its operand as.
func unwrapParen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// typeofTagTypes maps a `typeof` result string to the primitive it
// identifies. "function" has no deliberate match: TL has no generic
// callable type to narrow to, only concretely-shaped Function types, so
// that tag narrows nothing.
var typeofTagTypes = map[string]Type{
	"nil":     Nil,
	"boolean": Boolean,
	"number":  Number,
	"string":  String,
	"table":   Table,
}

// applyTypeofNarrowing handles `typeof(x) == "<tag>"` / `!=`. Reports
// whether cond matched this predicate form at all, so the caller can try
// the next form rather than assume a match.
func applyTypeofNarrowing(n *ast.BinaryExpr, env *Env, isEq, positive bool) bool {
	unary, ok := n.Left.(*ast.UnaryExpr)
	if !ok || unary.Op != "typeof" {
		return false
	}
	ident, ok := unwrapParen(unary.Expr).(*ast.Identifier)
	if !ok {
		return true
	}
	lit, ok := n.Right.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return true
	}
	tag, _ := lit.Value.(string)
	target, known := typeofTagTypes[tag]
	if !known {
		return true
	}
	if isEq == positive {
		env.Narrow(ident.Name, target)
	} else if cur, ok := env.Lookup(ident.Name); ok {
		if u, ok := cur.(*Union); ok {
			env.Narrow(ident.Name, filterUnion(u, func(m Type) bool { return !sameKind(m, target) }))
		}
	}
	return true
}

func sameKind(t Type, tag Type) bool {
	tp, ok := t.(*Primitive)
	if !ok {
		return false
	}
	target, ok := tag.(*Primitive)
	return ok && tp.Kind == target.Kind
}

// applyPredicateNarrowing handles a call to a user-defined type guard,
// `f(x)` where f's declared return type is an `x is T` annotation
// (spec §4.2.4, Function.Predicate/PredicateParamIndex).
func applyPredicateNarrowing(call *ast.CallExpr, env *Env, positive bool) {
	if !positive {
		return // the guard's declared type says nothing about the negative branch
	}
	calleeIdent, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return
	}
	calleeT, ok := env.Lookup(calleeIdent.Name)
	if !ok {
		return
	}
	fn, ok := calleeT.(*Function)
	if !ok || fn.Predicate == nil || fn.PredicateParamIndex < 0 || fn.PredicateParamIndex >= len(call.Args) {
		return
	}
	arg, ok := call.Args[fn.PredicateParamIndex].(*ast.Identifier)
	if !ok {
		return
	}
	env.Narrow(arg.Name, fn.Predicate)
}

// applyDiscriminantNarrowing handles `x.kind == "<literal>"` against a
// union of object types each carrying a literal-typed discriminant
// property (spec §4.2.4 discriminated-union narrowing).
func applyDiscriminantNarrowing(n *ast.BinaryExpr, env *Env, isEq, positive bool) {
	member, ok := n.Left.(*ast.MemberExpr)
	if !ok {
		return
	}
	ident, ok := member.Object.(*ast.Identifier)
	if !ok {
		return
	}
	lit, ok := n.Right.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return
	}
	value, _ := lit.Value.(string)
	cur, ok := env.Lookup(ident.Name)
	if !ok {
		return
	}
	u, ok := cur.(*Union)
	if !ok {
		return
	}
	matches := func(m Type) bool {
		obj, ok := m.(*Object)
		if !ok {
			return false
		}
		prop, ok := obj.Prop(member.Name)
		if !ok {
			return false
		}
		discLit, ok := prop.Type.(*Literal)
		return ok && discLit.Value == value
	}
	keep := matches
	if isEq != positive {
		keep = func(m Type) bool { return !matches(m) }
	}
	env.Narrow(ident.Name, filterUnion(u, keep))
}

// applyInstanceofNarrowing handles `x instanceof C`: the positive branch
// narrows x to C's declared type, matching the runtime metatable-chain
// check codegen lowers this to.
func applyInstanceofNarrowing(n *ast.BinaryExpr, env *Env, positive bool) {
	if !positive {
		return
	}
	ident, ok := n.Left.(*ast.Identifier)
	if !ok {
		return
	}
	classIdent, ok := n.Right.(*ast.Identifier)
	if !ok {
		return
	}
	classT, ok := env.Lookup(classIdent.Name)
	if !ok {
		return
	}
	if ref, ok := classT.(*Ref); ok {
		env.Narrow(ident.Name, ref)
	}
}

// ---------------------------------------------------------------------
// Classes / enums
// ---------------------------------------------------------------------

func (c *Checker) checkFuncBody(tps []ast.TypeParam, params []ast.Param, ret ast.TypeExpr, body *ast.BlockStmt, env *Env) {
	if body == nil {
		return // ambient/declare-file signature, no body to check
	}
	pop := c.res.PushTypeParams(tps)
	defer pop()
	fnEnv := env.Child()
	for _, p := range params {
		pt := c.res.Resolve(p.Type)
		if p.Rest {
			pt = &Array{Element: pt}
		}
		fnEnv.Define(p.Name, pt)
	}
	var retT Type
	if ret != nil {
		retT = c.res.Resolve(ret)
	}
	c.returnStack = append(c.returnStack, retT)
	for _, st := range body.Stmts {
		c.checkStmt(st, fnEnv)
	}
	c.returnStack = c.returnStack[:len(c.returnStack)-1]
}

func (c *Checker) checkClassBody(n *ast.ClassDecl, env *Env) {
	decl, ok := c.decls.Lookup(c.in.MustLookup(n.Name))
	if !ok {
		return
	}
	pop := c.res.PushTypeParams(n.TypeParams)
	defer pop()
	c.selfStack = append(c.selfStack, decl)
	classEnv := env.Child()
	classEnv.Define(selfID(c.in), &Ref{Decl: decl})
	for _, m := range n.Members {
		if m.Body == nil {
			continue
		}
		memberEnv := classEnv.Child()
		for _, p := range m.Params {
			memberEnv.Define(p.Name, c.res.Resolve(p.Type))
		}
		var retT Type
		if m.Kind != ast.MemberConstructor {
			retT = c.res.Resolve(m.Type)
		}
		c.returnStack = append(c.returnStack, retT)
		for _, st := range m.Body.Stmts {
			c.checkStmt(st, memberEnv)
		}
		c.returnStack = c.returnStack[:len(c.returnStack)-1]
	}
	for _, fd := range n.Members {
		if fd.Init != nil {
			c.inferExpr(fd.Init, classEnv)
		}
	}
	for _, a := range n.ParentCtorArgs {
		c.inferExpr(a, classEnv)
	}
	c.selfStack = c.selfStack[:len(c.selfStack)-1]
}

func (c *Checker) checkEnumBody(n *ast.EnumDecl, env *Env) {
	decl, ok := c.decls.Lookup(c.in.MustLookup(n.Name))
	if !ok {
		return
	}
	enumEnv := env.Child()
	enumEnv.Define(selfID(c.in), &Ref{Decl: decl})
	for _, m := range n.Methods {
		if m.Body == nil {
			continue
		}
		memberEnv := enumEnv.Child()
		for _, p := range m.Params {
			memberEnv.Define(p.Name, c.res.Resolve(p.Type))
		}
		retT := c.res.Resolve(m.Type)
		c.returnStack = append(c.returnStack, retT)
		for _, st := range m.Body.Stmts {
			c.checkStmt(st, memberEnv)
		}
		c.returnStack = c.returnStack[:len(c.returnStack)-1]
	}
	if n.CtorBody != nil {
		ctorEnv := enumEnv.Child()
		for _, p := range n.CtorParams {
			ctorEnv.Define(p.Name, c.res.Resolve(p.Type))
		}
		for _, st := range n.CtorBody.Stmts {
			c.checkStmt(st, ctorEnv)
		}
	}
	for _, m := range n.Members {
		for _, a := range m.Args {
			c.inferExpr(a, enumEnv)
		}
	}
}

func selfID(in *interner.Interner) interner.ID {
	id, _ := in.Preset("self")
	return id
}
