package types

import (
	"fmt"
	"sort"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
)

// inferExpr computes the type of e, pushing diagnostics for any
// assignability/arity/member-resolution failure along the way. It never
// returns nil — unresolvable shapes degrade to Unknown so the walk can
// keep going and report the real error at its actual source.
func (c *Checker) inferExpr(e ast.Expr, env *Env) Type {
	switch n := e.(type) {
	case *ast.Identifier:
		if t, ok := env.Lookup(n.Name); ok {
			return t
		}
		c.errf(diag.NAM001, n.Sp, "undefined identifier %q", c.in.MustLookup(n.Name))
		return Unknown
	case *ast.Literal:
		return c.inferLiteral(n)
	case *ast.BinaryExpr:
		return c.inferBinary(n, env)
	case *ast.UnaryExpr:
		t := c.inferExpr(n.Expr, env)
		if n.Op == "!" || n.Op == "not" {
			return Boolean
		}
		if n.Op == "typeof" {
			return String
		}
		if n.Op == "-" || n.Op == "~" {
			return t
		}
		return t
	case *ast.AssignExpr:
		return c.inferAssign(n, env)
	case *ast.MemberExpr:
		return c.inferMember(n, env)
	case *ast.IndexExpr:
		objT := c.inferExpr(n.Object, env)
		c.inferExpr(n.Index, env)
		switch o := objT.(type) {
		case *Array:
			return o.Element
		case *Tuple:
			return Unknown
		case *Object:
			if o.IndexValType != nil {
				return o.IndexValType
			}
		}
		return Unknown
	case *ast.CallExpr:
		return c.inferCall(n, env)
	case *ast.MethodCallExpr:
		return c.inferMethodCall(n, env)
	case *ast.ArrayExpr:
		var elem Type
		for _, el := range n.Elements {
			t := c.inferExpr(el, env)
			elem = joinType(elem, t)
		}
		if elem == nil {
			elem = Unknown
		}
		return &Array{Element: elem}
	case *ast.ObjectExpr:
		obj := &Object{}
		for _, p := range n.Props {
			if p.Spread {
				c.inferExpr(p.Value, env)
				continue
			}
			if p.Computed != nil {
				c.inferExpr(p.Computed, env)
			}
			pt := c.inferExpr(p.Value, env)
			obj.Props = append(obj.Props, ObjectProp{Name: p.Key, Type: pt})
		}
		return obj
	case *ast.FunctionExpr:
		return c.inferFunctionExpr(n, env)
	case *ast.ConditionalExpr:
		c.inferExpr(n.Cond, env)
		thenEnv := env.Child()
		applyNarrowing(n.Cond, thenEnv, true)
		thenT := c.inferExpr(n.Then, thenEnv)
		elseEnv := env.Child()
		applyNarrowing(n.Cond, elseEnv, false)
		elseT := c.inferExpr(n.Else, elseEnv)
		return joinType(thenT, elseT)
	case *ast.PipeExpr:
		valT := c.inferExpr(n.Value, env)
		fnT := c.inferExpr(n.Func, env)
		if f, ok := fnT.(*Function); ok {
			if len(f.Params) > 0 && !IsAssignable(valT, f.Params[0]) {
				c.errf(diag.TYP001, n.Sp, "piped value of type %s is not assignable to parameter type %s", valT.String(), f.Params[0].String())
			}
			return f.Return
		}
		return Unknown
	case *ast.MatchExpr:
		return c.inferMatch(n, env)
	case *ast.ParenExpr:
		return c.inferExpr(n.Inner, env)
	case *ast.SelfExpr:
		if len(c.selfStack) > 0 {
			return &Ref{Decl: c.selfStack[len(c.selfStack)-1]}
		}
		return Unknown
	case *ast.SuperExpr:
		if len(c.selfStack) > 0 {
			cur := c.selfStack[len(c.selfStack)-1]
			if cur.Extends != nil {
				return cur.Extends
			}
		}
		return Unknown
	case *ast.TemplateExpr:
		for _, sub := range n.Exprs {
			c.inferExpr(sub, env)
		}
		return String
	case *ast.TypeAssertExpr:
		c.inferExpr(n.Expr, env)
		return c.res.Resolve(n.Type)
	case *ast.NewExpr:
		return c.inferNew(n, env)
	case *ast.TryExpr:
		tryT := c.inferExpr(n.Try, env)
		defT := c.inferExpr(n.Default, env)
		return joinType(tryT, defT)
	case *ast.ErrorChainExpr:
		return c.inferExpr(n.Expr, env)
	case *ast.SpreadExpr:
		return c.inferExpr(n.Expr, env)
	}
	return Unknown
}

func (c *Checker) inferLiteral(n *ast.Literal) Type {
	switch n.Kind {
	case ast.LitNil:
		return Nil
	case ast.LitBool:
		return &Literal{Kind: KBoolean, Value: n.Value}
	case ast.LitInt:
		return &Literal{Kind: KInteger, Value: n.Value}
	case ast.LitFloat:
		return &Literal{Kind: KNumber, Value: n.Value}
	case ast.LitString:
		return &Literal{Kind: KString, Value: n.Value}
	}
	return Unknown
}

func (c *Checker) inferBinary(n *ast.BinaryExpr, env *Env) Type {
	lt := c.inferExpr(n.Left, env)
	rt := c.inferExpr(n.Right, env)
	switch n.Op {
	case "==", "!=", "~=", "<", "<=", ">", ">=", "&&", "||", "and", "or":
		return Boolean
	case "+":
		if isStringy(lt) || isStringy(rt) {
			n.IsConcat = true
			return String
		}
		return numericResult(lt, rt)
	case "-", "*", "/", "%", "^", "//":
		return numericResult(lt, rt)
	case "&", "|", "~", "<<", ">>":
		return Integer
	case "??":
		return joinType(stripNil(lt), rt)
	case "instanceof":
		return Boolean
	}
	return Unknown
}

func isStringy(t Type) bool {
	if p, ok := t.(*Primitive); ok {
		return p.Kind == KString
	}
	if l, ok := t.(*Literal); ok {
		return l.Kind == KString
	}
	return false
}

func numericResult(a, b Type) Type {
	ai, aok := asPrimKind(a)
	bi, bok := asPrimKind(b)
	if aok && bok && ai == KInteger && bi == KInteger {
		return Integer
	}
	return Number
}

func asPrimKind(t Type) (Kind, bool) {
	switch v := t.(type) {
	case *Primitive:
		return v.Kind, true
	case *Literal:
		return v.Kind, true
	}
	return 0, false
}

// joinType produces a reasonable common type for two branches of control
// flow (ternary arms, try/default, array-literal elements): identical
// types collapse, otherwise they combine into a union.
func joinType(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if IsAssignable(a, b) && IsAssignable(b, a) {
		return a
	}
	return flattenUnion([]Type{a, b})
}

func (c *Checker) inferAssign(n *ast.AssignExpr, env *Env) Type {
	targetT := c.inferExpr(n.Target, env)
	valT := c.inferExpr(n.Value, env)
	if n.Op == "=" {
		if !IsAssignable(valT, targetT) {
			c.errf(diag.TYP001, n.Sp, "cannot assign %s to target of type %s", valT.String(), targetT.String())
		}
	}
	if n.Op == "+=" && (isStringy(targetT) || isStringy(valT)) {
		n.IsConcat = true
	}
	if ident, ok := n.Target.(*ast.Identifier); ok && n.Op == "=" {
		env.Narrow(ident.Name, valT)
	}
	return targetT
}

func (c *Checker) inferMember(n *ast.MemberExpr, env *Env) Type {
	objT := c.inferExpr(n.Object, env)
	t, ok := c.memberTypeOf(objT, n.Name)
	if !ok {
		if _, isAny := objT.(*Primitive); !(isAny && objT.(*Primitive).Kind == KAny) {
			c.errf(diag.TYP003, n.Sp, "property %q does not exist on type %s", c.in.MustLookup(n.Name), objT.String())
		}
		return Unknown
	}
	c.checkAccess(objT, n.Name, n.Sp)
	if n.Optional {
		return &Nullable{Inner: t}
	}
	return t
}

// checkAccess enforces private/protected visibility: a private member may
// only be read from inside its own class, a protected one from the class
// or any subclass (spec §4.2.5 Access modifiers).
func (c *Checker) checkAccess(objT Type, name interner.ID, sp ast.Span) {
	ref, ok := objT.(*Ref)
	if !ok || ref.Decl.Kind != DeclClass {
		return
	}
	m, found := ref.Decl.Member(name)
	if !found {
		return
	}
	if m.Access == AccessPublic {
		return
	}
	var cur *Decl
	if len(c.selfStack) > 0 {
		cur = c.selfStack[len(c.selfStack)-1]
	}
	if m.Access == AccessPrivate {
		if cur != ref.Decl {
			c.errf(diag.TYP006, sp, "member %q is private to %q", c.in.MustLookup(name), ref.Decl.Name)
		}
		return
	}
	// protected: accessible from the declaring class or any descendant
	for d := cur; d != nil; d = declExtendsOf(d) {
		if d == ref.Decl {
			return
		}
	}
	c.errf(diag.TYP006, sp, "member %q is protected in %q", c.in.MustLookup(name), ref.Decl.Name)
}

func declExtendsOf(d *Decl) *Decl {
	if d.Extends == nil {
		return nil
	}
	return d.Extends.Decl
}

// memberTypeOf resolves a property/method name against an object shape or
// a nominal class/interface/enum declaration (walking AllMembers so
// inherited members resolve too).
func (c *Checker) memberTypeOf(t Type, name interner.ID) (Type, bool) {
	switch v := t.(type) {
	case *Object:
		if p, ok := v.Prop(name); ok {
			return p.Type, true
		}
	case *Ref:
		if m, ok := v.Decl.Member(name); ok {
			return m.Type, true
		}
		for _, m := range v.Decl.AllMembers() {
			if m.Name == name {
				return m.Type, true
			}
		}
	case *Primitive:
		if v.Kind == KAny || v.Kind == KUnknown {
			return Any, true
		}
	case *Nullable:
		return c.memberTypeOf(v.Inner, name)
	}
	return nil, false
}

func (c *Checker) inferCall(n *ast.CallExpr, env *Env) Type {
	calleeT := c.inferExpr(n.Callee, env)
	var argTs []Type
	for _, a := range n.Args {
		argTs = append(argTs, c.inferExpr(a, env))
	}
	f, ok := calleeT.(*Function)
	if !ok {
		if p, ok := calleeT.(*Primitive); ok && (p.Kind == KAny || p.Kind == KUnknown) {
			return Unknown
		}
		return Unknown
	}
	c.checkCallArity(f, argTs, n.Sp)
	return f.Return
}

func (c *Checker) inferMethodCall(n *ast.MethodCallExpr, env *Env) Type {
	recvT := c.inferExpr(n.Receiver, env)
	var argTs []Type
	for _, a := range n.Args {
		argTs = append(argTs, c.inferExpr(a, env))
	}
	mt, ok := c.memberTypeOf(recvT, n.Method)
	if !ok {
		c.errf(diag.TYP003, n.Sp, "method %q does not exist on type %s", c.in.MustLookup(n.Method), recvT.String())
		return Unknown
	}
	c.checkAccess(recvT, n.Method, n.Sp)
	f, ok := mt.(*Function)
	if !ok {
		return Unknown
	}
	c.checkCallArity(f, argTs, n.Sp)
	return f.Return
}

func (c *Checker) checkCallArity(f *Function, argTs []Type, sp ast.Span) {
	min := len(f.Params)
	if f.Variadic {
		min--
	}
	if len(argTs) < min {
		c.errf(diag.TYP002, sp, "expected at least %d argument(s), got %d", min, len(argTs))
		return
	}
	if !f.Variadic && len(argTs) > len(f.Params) {
		c.errf(diag.TYP002, sp, "expected %d argument(s), got %d", len(f.Params), len(argTs))
		return
	}
	for i, at := range argTs {
		pt := Unknown
		switch {
		case i < len(f.Params):
			pt = f.Params[i]
		case f.Variadic && len(f.Params) > 0:
			pt = f.Params[len(f.Params)-1]
		}
		if !IsAssignable(at, pt) {
			c.errf(diag.TYP001, sp, "argument %d of type %s is not assignable to parameter type %s", i+1, at.String(), pt.String())
		}
	}
}

func (c *Checker) inferFunctionExpr(n *ast.FunctionExpr, env *Env) Type {
	f := c.funcSignature(n.TypeParams, n.Params, n.ReturnType)
	c.checkFuncBody(n.TypeParams, n.Params, n.ReturnType, n.Body, env)
	return f
}

func (c *Checker) inferNew(n *ast.NewExpr, env *Env) Type {
	for _, a := range n.Args {
		c.inferExpr(a, env)
	}
	t := c.res.Resolve(n.Callee)
	if ref, ok := t.(*Ref); ok && ref.Decl.Abstract {
		c.errf(diag.TYP005, n.Sp, "cannot instantiate abstract class %q", ref.Decl.Name)
	}
	return t
}

// inferMatch type-checks a match expression and, for every subject whose
// type is a finite carrier (spec §4.2.9: enum, boolean, a union of literal
// values, a union of distinct nominal class/interface types, or a
// discriminated union of object types sharing one literal-typed tag
// property), enforces exhaustiveness (TYP009) and flags an arm whose every
// case is already handled by an earlier arm as unreachable (TYP012).
// Carriers this pass doesn't recognize as finite (plain objects, open-ended
// arrays, arbitrary Unknown/Any subjects) are left unchecked rather than
// false-positiving.
func (c *Checker) inferMatch(n *ast.MatchExpr, env *Env) Type {
	subjT := c.inferExpr(n.Subject, env)
	var result Type

	universe, discriminant, hasDiscriminant, exhaustible := matchUniverse(subjT, c.in)
	covered := map[string]bool{}
	hasWildcard := false

	for _, arm := range n.Arms {
		armEnv := env.Child()
		c.bindMatchPattern(arm.Pattern, subjT, armEnv)
		if arm.Guard != nil {
			c.inferExpr(arm.Guard, armEnv)
		}

		if exhaustible && arm.Guard == nil {
			if isCatchAllPattern(arm.Pattern) {
				if len(universe) > 0 && universeCovered(universe, covered) {
					c.errf(diag.TYP012, arm.Pattern.Span(), "match arm is unreachable: every case is already handled by an earlier arm")
				}
				for k := range universe {
					covered[k] = true
				}
				hasWildcard = true
			} else if keys, ok := patternKeys(arm.Pattern, discriminant, hasDiscriminant, c.in); ok && len(keys) > 0 {
				allCovered := true
				for _, k := range keys {
					if !covered[k] {
						allCovered = false
						break
					}
				}
				if allCovered {
					c.errf(diag.TYP012, arm.Pattern.Span(), "match arm is unreachable: every case it covers is already handled by an earlier arm")
				}
				for _, k := range keys {
					covered[k] = true
				}
			}
		} else if isCatchAllPattern(arm.Pattern) {
			hasWildcard = true
		}

		bodyT := c.inferExpr(arm.Body, armEnv)
		result = joinType(result, bodyT)
	}

	if exhaustible && !hasWildcard {
		var missing []string
		for k := range universe {
			if !covered[k] {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			c.errf(diag.TYP009, n.Sp, "match on %s is not exhaustive, missing: %v", subjT.String(), missing)
		}
	}
	if result == nil {
		result = Unknown
	}
	return result
}

// isCatchAllPattern reports whether p unconditionally matches, the way a
// wildcard `_` or a bare binding name does.
func isCatchAllPattern(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.IdentPattern:
		return true
	}
	return false
}

// matchUniverse classifies subjT as a finite, exhaustible carrier and
// returns the full set of coverage keys an exhaustive match must hit.
// discriminant/hasDiscriminant name the common literal-typed tag property
// of a discriminated union, when that's the carrier kind; ok is false for
// any type this pass doesn't know how to exhaust.
func matchUniverse(t Type, in *interner.Interner) (universe map[string]bool, discriminant interner.ID, hasDiscriminant bool, ok bool) {
	switch v := t.(type) {
	case *Ref:
		if v.Decl.Kind != DeclEnum {
			return nil, 0, false, false
		}
		universe = map[string]bool{}
		for _, m := range v.Decl.Members {
			universe[in.MustLookup(m.Name)] = true
		}
		return universe, 0, false, true
	case *Primitive:
		if v.Kind != KBoolean {
			return nil, 0, false, false
		}
		return map[string]bool{"true": true, "false": true}, 0, false, true
	case *Union:
		if universe, ok := nominalRefUniverse(v); ok {
			return universe, 0, false, true
		}
		universe, discriminant, hasDiscriminant, ok := unionUniverse(v, in)
		return universe, discriminant, hasDiscriminant, ok
	}
	return nil, 0, false, false
}

// nominalRefUniverse handles a union of distinct class/interface reference
// types, e.g. `type Shape = Circle | Square`, matched via typed patterns
// (`c: Circle => ..., s: Square => ...`).
func nominalRefUniverse(u *Union) (map[string]bool, bool) {
	universe := map[string]bool{}
	for _, m := range u.Members {
		ref, ok := m.(*Ref)
		if !ok {
			return nil, false
		}
		universe[ref.Decl.Name] = true
	}
	if len(universe) != len(u.Members) {
		return nil, false // aliased/duplicate members can't be exhausted by name alone
	}
	return universe, true
}

// unionUniverse handles a union of literal values (`"a" | "b" | 1 | 2`) and
// a discriminated union of object types sharing one literal-typed tag
// property (`{kind: "circle", ...} | {kind: "square", ...}`).
func unionUniverse(u *Union, in *interner.Interner) (map[string]bool, interner.ID, bool, bool) {
	if len(u.Members) == 0 {
		return nil, 0, false, false
	}
	allLiteral := true
	for _, m := range u.Members {
		if _, ok := m.(*Literal); !ok {
			allLiteral = false
			break
		}
	}
	if allLiteral {
		universe := map[string]bool{}
		for _, m := range u.Members {
			universe[literalValueKey(m.(*Literal).Value)] = true
		}
		return universe, 0, false, true
	}
	first, ok := u.Members[0].(*Object)
	if !ok {
		return nil, 0, false, false
	}
	for _, prop := range first.Props {
		lit, ok := prop.Type.(*Literal)
		if !ok {
			continue
		}
		universe := map[string]bool{literalValueKey(lit.Value): true}
		shared := true
		for _, m := range u.Members[1:] {
			obj, ok := m.(*Object)
			if !ok {
				shared = false
				break
			}
			p, ok := obj.Prop(prop.Name)
			if !ok {
				shared = false
				break
			}
			l, ok := p.Type.(*Literal)
			if !ok {
				shared = false
				break
			}
			universe[literalValueKey(l.Value)] = true
		}
		if shared {
			return universe, prop.Name, true, true
		}
	}
	return nil, 0, false, false
}

// universeCovered reports whether every key in universe has been covered.
func universeCovered(universe map[string]bool, covered map[string]bool) bool {
	for k := range universe {
		if !covered[k] {
			return false
		}
	}
	return true
}

// patternKeys returns the coverage keys a match-arm pattern contributes
// (possibly several, via an OrPattern), or (nil, false) when the pattern's
// contribution isn't one this pass tracks (e.g. destructuring an array, or
// a typed pattern whose type isn't a plain reference) — in which case the
// arm is treated conservatively as neither covering nor colliding with
// anything, rather than risk a false exhaustiveness/unreachable report.
// Array patterns are deliberately left untracked: fixed-arity tuple
// coverage needs a length-indexed algorithm distinct from this tag-based
// one, out of proportion to what this carrier set calls for.
func patternKeys(p ast.Pattern, discriminant interner.ID, hasDiscriminant bool, in *interner.Interner) ([]string, bool) {
	switch n := p.(type) {
	case *ast.LiteralPattern:
		return []string{matchLiteralKey(n)}, true
	case *ast.OrPattern:
		var keys []string
		for _, alt := range n.Alternatives {
			ks, ok := patternKeys(alt, discriminant, hasDiscriminant, in)
			if !ok {
				return nil, false
			}
			keys = append(keys, ks...)
		}
		return keys, true
	case *ast.ObjectPattern:
		if !hasDiscriminant {
			return nil, false
		}
		for _, pr := range n.Props {
			if pr.Key != discriminant {
				continue
			}
			lp, ok := pr.Value.(*ast.LiteralPattern)
			if !ok {
				return nil, false
			}
			return []string{matchLiteralKey(lp)}, true
		}
		return nil, false
	case *ast.TypedPattern:
		ref, ok := n.Type.(*ast.TypeRef)
		if !ok {
			return nil, false
		}
		return []string{in.MustLookup(ref.Name)}, true
	}
	return nil, false
}

func matchLiteralKey(p *ast.LiteralPattern) string {
	if p.Kind == ast.LitBool {
		if b, _ := p.Value.(bool); b {
			return "true"
		}
		return "false"
	}
	return literalValueKey(p.Value)
}

func literalValueKey(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

func (c *Checker) bindMatchPattern(p ast.Pattern, t Type, env *Env) {
	switch n := p.(type) {
	case *ast.TypedPattern:
		narrowed := c.res.Resolve(n.Type)
		c.bindPattern(n.Inner, narrowed, env)
	default:
		c.bindPattern(p, t, env)
	}
}
