// Package types implements the bidirectional structural/nominal type
// checker (spec §4.2). Structural types (unions, arrays, objects,
// functions) are compared by shape; class/interface/enum types are
// compared nominally by declaration identity.
package types

import "github.com/sunholo/tlc/internal/interner"

// Type is any resolved type the checker reasons about.
type Type interface {
	typeNode()
	String() string
}

// Primitive kinds.
type Kind int

const (
	KNil Kind = iota
	KBoolean
	KNumber
	KInteger
	KString
	KUnknown
	KNever
	KVoid
	KTable
	KCoroutine
	KAny // assignable to/from anything; used for unresolved/error recovery
)

type Primitive struct{ Kind Kind }

func (*Primitive) typeNode() {}
func (p *Primitive) String() string {
	switch p.Kind {
	case KNil:
		return "nil"
	case KBoolean:
		return "boolean"
	case KNumber:
		return "number"
	case KInteger:
		return "integer"
	case KString:
		return "string"
	case KUnknown:
		return "unknown"
	case KNever:
		return "never"
	case KVoid:
		return "void"
	case KTable:
		return "table"
	case KCoroutine:
		return "coroutine"
	default:
		return "any"
	}
}

var (
	Nil     = &Primitive{Kind: KNil}
	Boolean = &Primitive{Kind: KBoolean}
	Number  = &Primitive{Kind: KNumber}
	Integer = &Primitive{Kind: KInteger}
	String  = &Primitive{Kind: KString}
	Unknown = &Primitive{Kind: KUnknown}
	Never   = &Primitive{Kind: KNever}
	Void    = &Primitive{Kind: KVoid}
	Table   = &Primitive{Kind: KTable}
	Any     = &Primitive{Kind: KAny}
)

// Literal is a literal-value type, e.g. `"ok"` or `3`.
type Literal struct {
	Kind  Kind
	Value any
}

func (*Literal) typeNode() {}
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return "\"" + v + "\""
	default:
		return toStr(v)
	}
}

type Array struct{ Element Type }

func (*Array) typeNode()      {}
func (a *Array) String() string { return a.Element.String() + "[]" }

type Tuple struct{ Elements []Type }

func (*Tuple) typeNode() {}
func (t *Tuple) String() string {
	s := "["
	for i, e := range t.Elements {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

type Union struct{ Members []Type }

func (*Union) typeNode() {}
func (u *Union) String() string {
	s := ""
	for i, m := range u.Members {
		if i > 0 {
			s += " | "
		}
		s += m.String()
	}
	return s
}

type Intersection struct{ Members []Type }

func (*Intersection) typeNode() {}
func (i *Intersection) String() string {
	s := ""
	for idx, m := range i.Members {
		if idx > 0 {
			s += " & "
		}
		s += m.String()
	}
	return s
}

// Nullable is `T | nil` surfaced as its own node so narrowing can strip it
// in one step instead of re-deriving union membership each time.
type Nullable struct{ Inner Type }

func (*Nullable) typeNode()        {}
func (n *Nullable) String() string { return n.Inner.String() + " | nil" }

type ObjectProp struct {
	Name     interner.ID
	Type     Type
	Optional bool
	Readonly bool
}

type Object struct {
	Props        []ObjectProp
	IndexKeyType Type
	IndexValType Type
}

func (*Object) typeNode()      {}
func (o *Object) String() string { return "{...}" }

func (o *Object) Prop(name interner.ID) (ObjectProp, bool) {
	for _, p := range o.Props {
		if p.Name == name {
			return p, true
		}
	}
	return ObjectProp{}, false
}

type Function struct {
	TypeParams []TypeParam
	Params     []Type
	Variadic   bool // last Param is a rest parameter
	Return     Type

	// Predicate and PredicateParamIndex describe a user-defined type
	// guard's `x is T` return annotation (spec §4.2.4): PredicateParamIndex
	// is the index into Params the guard narrows (-1 if the annotation's
	// named parameter wasn't found), and Predicate is the resolved T.
	Predicate          Type
	PredicateParamIndex int
}

func (*Function) typeNode()      {}
func (f *Function) String() string { return "function" }

type TypeParam struct {
	Name       interner.ID
	Constraint Type
	Default    Type
}

// Ref is a resolved nominal reference to a class, interface, enum, or
// type-alias declaration, carrying any instantiated type arguments.
type Ref struct {
	Decl     *Decl
	TypeArgs []Type
}

func (*Ref) typeNode()      {}
func (r *Ref) String() string { return r.Decl.Name }

func toStr(v any) string {
	switch x := v.(type) {
	case int64:
		return itoa(x)
	case float64:
		return ftoa(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case nil:
		return "nil"
	default:
		return "?"
	}
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	s := string(buf[i:])
	if neg {
		return "-" + s
	}
	return s
}

func ftoa(v float64) string {
	// Minimal formatting sufficient for diagnostics; full precision
	// formatting belongs to codegen's number-literal emission.
	i := int64(v)
	if float64(i) == v {
		return itoa(i)
	}
	return "<float>"
}
