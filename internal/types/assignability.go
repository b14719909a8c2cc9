package types

// IsAssignable reports whether a value of type sub may be used where sup
// is expected (spec §4.2 Assignability). Structural types are compared by
// shape; nominal types (class/interface/enum Refs) are compared by
// declaration identity with the same type arguments, per the Open
// Question decision recorded in DESIGN.md (generic reference
// compatibility is nominal, same-name-same-args). A type alias never
// reaches this comparison as a Ref: the Resolver replaces it with its
// target type, which is then compared by shape.
func IsAssignable(sub, sup Type) bool {
	if sub == nil || sup == nil {
		return false
	}
	if _, ok := sup.(*Primitive); ok && sup.(*Primitive).Kind == KUnknown {
		return true
	}
	if p, ok := sub.(*Primitive); ok && p.Kind == KAny {
		return true
	}
	if p, ok := sup.(*Primitive); ok && p.Kind == KAny {
		return true
	}
	if p, ok := sub.(*Primitive); ok && p.Kind == KNever {
		return true
	}

	if supUnion, ok := sup.(*Union); ok {
		for _, m := range supUnion.Members {
			if IsAssignable(sub, m) {
				return true
			}
		}
		// A union source is assignable to a union target only if every
		// one of its members is individually assignable.
		if subUnion, ok := sub.(*Union); ok {
			for _, m := range subUnion.Members {
				if !IsAssignable(m, sup) {
					return false
				}
			}
			return len(subUnion.Members) > 0
		}
		return false
	}
	if subUnion, ok := sub.(*Union); ok {
		for _, m := range subUnion.Members {
			if !IsAssignable(m, sup) {
				return false
			}
		}
		return true
	}

	if supN, ok := sup.(*Nullable); ok {
		if _, isNil := sub.(*Primitive); isNil && sub.(*Primitive).Kind == KNil {
			return true
		}
		return IsAssignable(sub, supN.Inner)
	}
	if subN, ok := sub.(*Nullable); ok {
		return IsAssignable(subN.Inner, sup) && IsAssignable(Nil, sup)
	}

	if supI, ok := sup.(*Intersection); ok {
		for _, m := range supI.Members {
			if !IsAssignable(sub, m) {
				return false
			}
		}
		return true
	}

	switch supT := sup.(type) {
	case *Primitive:
		subP, ok := sub.(*Primitive)
		if ok {
			return assignablePrimitive(subP.Kind, supT.Kind)
		}
		if lit, ok := sub.(*Literal); ok {
			return assignablePrimitive(lit.Kind, supT.Kind)
		}
		return false
	case *Literal:
		lit, ok := sub.(*Literal)
		return ok && lit.Kind == supT.Kind && literalEqual(lit.Value, supT.Value)
	case *Array:
		subA, ok := sub.(*Array)
		if !ok {
			return false
		}
		// Covariant by design (spec Open Question decision, unsound but
		// matching the deliberate source-language choice).
		return IsAssignable(subA.Element, supT.Element)
	case *Tuple:
		subT, ok := sub.(*Tuple)
		if !ok || len(subT.Elements) != len(supT.Elements) {
			return false
		}
		for i := range supT.Elements {
			if !IsAssignable(subT.Elements[i], supT.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		return objectAssignable(sub, supT)
	case *Function:
		subF, ok := sub.(*Function)
		if !ok {
			return false
		}
		return functionAssignable(subF, supT)
	case *Ref:
		subR, ok := sub.(*Ref)
		if !ok {
			return false
		}
		return refAssignable(subR, supT)
	}
	return false
}

func assignablePrimitive(sub, sup Kind) bool {
	if sub == sup {
		return true
	}
	// integer is assignable where number is expected; not the reverse.
	if sub == KInteger && sup == KNumber {
		return true
	}
	return false
}

func literalEqual(a, b any) bool {
	return a == b
}

// objectAssignable implements width/depth structural subtyping: sub must
// have every required property of sup, with an assignable type.
func objectAssignable(sub Type, sup *Object) bool {
	subO, ok := sub.(*Object)
	if !ok {
		return false
	}
	for _, sp := range sup.Props {
		subProp, found := subO.Prop(sp.Name)
		if !found {
			if sp.Optional {
				continue
			}
			return false
		}
		if !IsAssignable(subProp.Type, sp.Type) {
			return false
		}
		if sp.Readonly == false && subProp.Readonly {
			// a readonly source may still satisfy a mutable target's
			// shape check; mutation legality is enforced separately.
		}
	}
	return true
}

// functionAssignable applies standard variance: parameters are checked
// contravariantly (sup's params must each be assignable to sub's
// corresponding param), the return type covariantly.
func functionAssignable(sub, sup *Function) bool {
	if sub.Variadic != sup.Variadic && !sup.Variadic {
		if len(sub.Params) < len(sup.Params) {
			return false
		}
	} else if len(sub.Params) != len(sup.Params) && !sub.Variadic && !sup.Variadic {
		return false
	}
	n := len(sup.Params)
	if len(sub.Params) < n {
		n = len(sub.Params)
	}
	for i := 0; i < n; i++ {
		if !IsAssignable(sup.Params[i], sub.Params[i]) {
			return false
		}
	}
	return IsAssignable(sub.Return, sup.Return)
}

// refAssignable is nominal: same declaration, or sub's Extends/Implements
// chain reaches sup's declaration, with identical type arguments at the
// matching level (no structural fallback for aliases/classes/interfaces).
func refAssignable(sub, sup *Ref) bool {
	if sub.Decl == sup.Decl {
		return typeArgsEqual(sub.TypeArgs, sup.TypeArgs)
	}
	if sub.Decl.Extends != nil && refAssignable(sub.Decl.Extends, sup) {
		return true
	}
	for _, impl := range sub.Decl.Implements {
		if refAssignable(impl, sup) {
			return true
		}
	}
	for _, ext := range sub.Decl.ExtendsAll {
		if refAssignable(ext, sup) {
			return true
		}
	}
	return false
}

func typeArgsEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !IsAssignable(a[i], b[i]) || !IsAssignable(b[i], a[i]) {
			return false
		}
	}
	return true
}
