package types

import "github.com/sunholo/tlc/internal/interner"

// UtilityKind enumerates the built-in structural transforms (spec §4.2.8
// Utility types). They are resolved purely in terms of already-resolved
// Type shapes, never by re-walking ast nodes.
type UtilityKind int

const (
	UtilPartial UtilityKind = iota
	UtilRequired
	UtilReadonly
	UtilRecord
	UtilPick
	UtilOmit
	UtilExclude
	UtilExtract
	UtilNonNilable
	UtilNilable
	UtilReturnType
	UtilParameters
)

var utilityTypeNames = map[string]UtilityKind{
	"Partial":     UtilPartial,
	"Required":    UtilRequired,
	"Readonly":    UtilReadonly,
	"Record":      UtilRecord,
	"Pick":        UtilPick,
	"Omit":        UtilOmit,
	"Exclude":     UtilExclude,
	"Extract":     UtilExtract,
	"NonNilable":  UtilNonNilable,
	"Nilable":     UtilNilable,
	"ReturnType":  UtilReturnType,
	"Parameters":  UtilParameters,
}

// expandUtilityType applies kind to the already-resolved type arguments.
// Arity mismatches degrade to Any; no diagnostic is reported for them.
func expandUtilityType(kind UtilityKind, args []Type, in *interner.Interner) Type {
	switch kind {
	case UtilPartial:
		if len(args) != 1 {
			return Any
		}
		return mapObject(args[0], func(p ObjectProp) ObjectProp {
			p.Optional = true
			return p
		})
	case UtilRequired:
		if len(args) != 1 {
			return Any
		}
		return mapObject(args[0], func(p ObjectProp) ObjectProp {
			p.Optional = false
			return p
		})
	case UtilReadonly:
		if len(args) != 1 {
			return Any
		}
		return mapObject(args[0], func(p ObjectProp) ObjectProp {
			p.Readonly = true
			return p
		})
	case UtilRecord:
		if len(args) != 2 {
			return Any
		}
		return &Object{IndexKeyType: args[0], IndexValType: args[1]}
	case UtilPick:
		if len(args) != 2 {
			return Any
		}
		keys := literalStringSet(args[1])
		return filterObject(args[0], func(p ObjectProp) bool { return keys[in.MustLookup(p.Name)] })
	case UtilOmit:
		if len(args) != 2 {
			return Any
		}
		keys := literalStringSet(args[1])
		return filterObject(args[0], func(p ObjectProp) bool { return !keys[in.MustLookup(p.Name)] })
	case UtilExclude:
		if len(args) != 2 {
			return Any
		}
		return filterUnion(args[0], func(m Type) bool { return !IsAssignable(m, args[1]) })
	case UtilExtract:
		if len(args) != 2 {
			return Any
		}
		return filterUnion(args[0], func(m Type) bool { return IsAssignable(m, args[1]) })
	case UtilNonNilable:
		if len(args) != 1 {
			return Any
		}
		return stripNil(args[0])
	case UtilNilable:
		if len(args) != 1 {
			return Any
		}
		return &Nullable{Inner: args[0]}
	case UtilReturnType:
		if len(args) != 1 {
			return Any
		}
		if f, ok := args[0].(*Function); ok {
			return f.Return
		}
		return Unknown
	case UtilParameters:
		if len(args) != 1 {
			return Any
		}
		if f, ok := args[0].(*Function); ok {
			return &Tuple{Elements: f.Params}
		}
		return Unknown
	}
	return Any
}

func mapObject(t Type, fn func(ObjectProp) ObjectProp) Type {
	obj, ok := t.(*Object)
	if !ok {
		return Any
	}
	props := make([]ObjectProp, len(obj.Props))
	for i, p := range obj.Props {
		props[i] = fn(p)
	}
	return &Object{Props: props, IndexKeyType: obj.IndexKeyType, IndexValType: obj.IndexValType}
}

func filterObject(t Type, keep func(ObjectProp) bool) Type {
	obj, ok := t.(*Object)
	if !ok {
		return Any
	}
	var props []ObjectProp
	for _, p := range obj.Props {
		if keep(p) {
			props = append(props, p)
		}
	}
	return &Object{Props: props}
}

func filterUnion(t Type, keep func(Type) bool) Type {
	u, ok := t.(*Union)
	if !ok {
		if keep(t) {
			return t
		}
		return Never
	}
	var members []Type
	for _, m := range u.Members {
		if keep(m) {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return Never
	}
	return flattenUnion(members)
}

func stripNil(t Type) Type {
	switch v := t.(type) {
	case *Nullable:
		return v.Inner
	case *Union:
		return filterUnion(v, func(m Type) bool {
			p, ok := m.(*Primitive)
			return !(ok && p.Kind == KNil)
		})
	}
	return t
}

// literalStringSet extracts the member names from a union-of-string-
// literals type argument (the shape `keyof T` or a string-literal union
// produces), used by Pick/Omit to select properties.
func literalStringSet(t Type) map[string]bool {
	out := map[string]bool{}
	add := func(m Type) {
		if lit, ok := m.(*Literal); ok {
			if s, ok := lit.Value.(string); ok {
				out[s] = true
			}
		}
	}
	if u, ok := t.(*Union); ok {
		for _, m := range u.Members {
			add(m)
		}
		return out
	}
	add(t)
	return out
}
