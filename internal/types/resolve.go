package types

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
)

// Resolver turns ast.TypeExpr nodes into resolved Type values against a
// module's Decls table. Type-parameter names in scope (class/function/
// method generics) are threaded through as a small overlay map so `T`
// resolves to a placeholder Ref whose Decl carries only the parameter's
// name; its constraint is not recorded on the placeholder.
type Resolver struct {
	decls  *Decls
	in     *interner.Interner
	tpVars map[interner.ID]*Decl // type-param name -> synthetic placeholder decl

	diags *diag.Handler // nil when constructed via NewResolver; constraint checks are skipped then
	file  string
}

func NewResolver(decls *Decls, in *interner.Interner) *Resolver {
	return &Resolver{decls: decls, in: in, tpVars: map[interner.ID]*Decl{}}
}

// NewResolverWithDiagnostics is NewResolver plus a diagnostic sink, used
// once every declaration's type parameters have been registered so a
// generic instantiation's type arguments can be checked against their
// constraints (spec §4.2.3 Generic instantiation) as they're resolved.
func NewResolverWithDiagnostics(decls *Decls, in *interner.Interner, diags *diag.Handler, file string) *Resolver {
	r := NewResolver(decls, in)
	r.diags = diags
	r.file = file
	return r
}

// PushTypeParams brings a set of generic type parameters into scope for
// the duration of resolving a class/function/method signature and body.
func (r *Resolver) PushTypeParams(tps []ast.TypeParam) func() {
	var added []interner.ID
	for _, tp := range tps {
		if _, exists := r.tpVars[tp.Name]; exists {
			continue
		}
		r.tpVars[tp.Name] = &Decl{Kind: DeclClass, Name: r.in.MustLookup(tp.Name)}
		added = append(added, tp.Name)
	}
	return func() {
		for _, name := range added {
			delete(r.tpVars, name)
		}
	}
}

// Resolve converts an ast.TypeExpr into a Type. Unknown/unsupported
// shapes degrade to Any rather than failing closed, so the checker can
// keep going and report the real error at the point of use.
func (r *Resolver) Resolve(te ast.TypeExpr) Type {
	if te == nil {
		return Unknown
	}
	switch n := te.(type) {
	case *ast.PrimitiveType:
		return r.resolvePrimitive(n.Kind)
	case *ast.LiteralType:
		return &Literal{Kind: litKind(n.Kind), Value: n.Value}
	case *ast.UnionType:
		members := make([]Type, len(n.Members))
		for i, m := range n.Members {
			members[i] = r.Resolve(m)
		}
		return flattenUnion(members)
	case *ast.IntersectionType:
		members := make([]Type, len(n.Members))
		for i, m := range n.Members {
			members[i] = r.Resolve(m)
		}
		return &Intersection{Members: members}
	case *ast.ArrayType:
		return &Array{Element: r.Resolve(n.Element)}
	case *ast.TupleType:
		elems := make([]Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = r.Resolve(e)
		}
		return &Tuple{Elements: elems}
	case *ast.FunctionType:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = r.Resolve(p)
		}
		return &Function{Params: params, Return: r.Resolve(n.Return)}
	case *ast.ObjectType:
		props := make([]ObjectProp, len(n.Props))
		for i, p := range n.Props {
			props[i] = ObjectProp{Name: p.Name, Type: r.Resolve(p.Type), Optional: p.Optional, Readonly: p.Readonly}
		}
		obj := &Object{Props: props}
		if n.IndexKeyType != nil {
			obj.IndexKeyType = r.Resolve(n.IndexKeyType)
			obj.IndexValType = r.Resolve(n.IndexValType)
		}
		return obj
	case *ast.NullableType:
		return &Nullable{Inner: r.Resolve(n.Inner)}
	case *ast.TypeRef:
		return r.resolveTypeRef(n)
	case *ast.KeyofType:
		return r.resolveKeyof(n)
	case *ast.VariadicType:
		return r.Resolve(n.Element)
	case *ast.TypePredicateType:
		return Boolean
	case *ast.TypeofType, *ast.MappedType, *ast.ConditionalType, *ast.InferType, *ast.TemplateLiteralType:
		// Computed/derived type forms resolved during utility-type
		// expansion (spec §4.2.8); outside that context they degrade to
		// Unknown rather than panicking on an unresolved `infer` binding.
		return Unknown
	}
	return Any
}

func (r *Resolver) resolvePrimitive(k ast.Primitive) Type {
	switch k {
	case ast.PrimNil:
		return Nil
	case ast.PrimBoolean:
		return Boolean
	case ast.PrimNumber:
		return Number
	case ast.PrimInteger:
		return Integer
	case ast.PrimString:
		return String
	case ast.PrimUnknown:
		return Unknown
	case ast.PrimNever:
		return Never
	case ast.PrimVoid:
		return Void
	case ast.PrimTable:
		return Table
	case ast.PrimCoroutine:
		return Table
	}
	return Any
}

func litKind(k ast.LiteralKind) Kind {
	switch k {
	case ast.LitNil:
		return KNil
	case ast.LitBool:
		return KBoolean
	case ast.LitInt:
		return KInteger
	case ast.LitFloat:
		return KNumber
	case ast.LitString:
		return KString
	}
	return KAny
}

func (r *Resolver) resolveTypeRef(n *ast.TypeRef) Type {
	name := r.in.MustLookup(n.Name)
	if tp, ok := r.tpVars[n.Name]; ok {
		return &Ref{Decl: tp}
	}
	// Built-in utility-type names resolve via the utility-type expander
	// rather than a Decls lookup (spec §4.2.8).
	if u, ok := utilityTypeNames[name]; ok {
		args := make([]Type, len(n.TypeArgs))
		for i, a := range n.TypeArgs {
			args[i] = r.Resolve(a)
		}
		return expandUtilityType(u, args, r.in)
	}
	decl, ok := r.decls.Lookup(name)
	if !ok {
		// Forward/unresolved reference: a synthetic opaque Decl lets the
		// rest of the checker proceed; the caller is responsible for
		// reporting NAM001 when a reference never resolves.
		decl = &Decl{Kind: DeclAlias, Name: name, AliasOf: Any}
	}
	args := make([]Type, len(n.TypeArgs))
	for i, a := range n.TypeArgs {
		args[i] = r.Resolve(a)
	}
	r.checkConstraints(decl, args, n.Sp)
	if decl.Kind == DeclAlias && decl.AliasOf != nil {
		return decl.AliasOf
	}
	return &Ref{Decl: decl, TypeArgs: args}
}

// checkConstraints reports TYP008 for each supplied type argument that
// isn't assignable to its corresponding type parameter's constraint
// (spec §4.2.3: "Constraints are checked as `arg <: constraint`"). A
// forward reference resolved before its target's own TypeParams are
// filled in (decl.TypeParams still empty) silently skips the check
// rather than false-positiving on an unconstrained placeholder.
func (r *Resolver) checkConstraints(decl *Decl, args []Type, sp ast.Span) {
	if r.diags == nil || len(decl.TypeParams) == 0 || len(args) == 0 {
		return
	}
	for i, arg := range args {
		if i >= len(decl.TypeParams) {
			break
		}
		constraint := decl.TypeParams[i].Constraint
		if constraint == nil {
			continue
		}
		if !IsAssignable(arg, constraint) {
			r.diags.Push(diag.Errorf(diag.TYP008, r.file, &sp, "type argument %s does not satisfy constraint %s of type parameter %q", arg.String(), constraint.String(), r.in.MustLookup(decl.TypeParams[i].Name)))
		}
	}
}

func (r *Resolver) resolveKeyof(n *ast.KeyofType) Type {
	operand := r.Resolve(n.Operand)
	obj, ok := operand.(*Object)
	if !ok {
		if ref, ok := operand.(*Ref); ok {
			members := ref.Decl.AllMembers()
			lits := make([]Type, len(members))
			for i, m := range members {
				lits[i] = &Literal{Kind: KString, Value: r.in.MustLookup(m.Name)}
			}
			return flattenUnion(lits)
		}
		return Unknown
	}
	lits := make([]Type, len(obj.Props))
	for i, p := range obj.Props {
		lits[i] = &Literal{Kind: KString, Value: r.in.MustLookup(p.Name)}
	}
	return flattenUnion(lits)
}

func flattenUnion(members []Type) Type {
	var flat []Type
	for _, m := range members {
		if u, ok := m.(*Union); ok {
			flat = append(flat, u.Members...)
		} else {
			flat = append(flat, m)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Union{Members: flat}
}
