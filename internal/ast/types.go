package ast

import "github.com/sunholo/tlc/internal/interner"

// Primitive is one of the built-in primitive type kinds (spec §3 Type
// expressions).
type Primitive int

const (
	PrimNil Primitive = iota
	PrimBoolean
	PrimNumber
	PrimInteger
	PrimString
	PrimUnknown
	PrimNever
	PrimVoid
	PrimTable
	PrimCoroutine
)

type PrimitiveType struct {
	Kind Primitive
	Sp   Span
}

func (n *PrimitiveType) Span() Span { return n.Sp }
func (*PrimitiveType) typeNode()    {}

// LiteralType is a literal used as a type, e.g. `"ok"` or `3`.
type LiteralType struct {
	Kind  LiteralKind
	Value any
	Sp    Span
}

func (n *LiteralType) Span() Span { return n.Sp }
func (*LiteralType) typeNode()    {}

type UnionType struct {
	Members []TypeExpr
	Sp      Span
}

func (n *UnionType) Span() Span { return n.Sp }
func (*UnionType) typeNode()    {}

type IntersectionType struct {
	Members []TypeExpr
	Sp      Span
}

func (n *IntersectionType) Span() Span { return n.Sp }
func (*IntersectionType) typeNode()    {}

type ArrayType struct {
	Element TypeExpr
	Sp      Span
}

func (n *ArrayType) Span() Span { return n.Sp }
func (*ArrayType) typeNode()    {}

type TupleType struct {
	Elements []TypeExpr
	Sp       Span
}

func (n *TupleType) Span() Span { return n.Sp }
func (*TupleType) typeNode()    {}

type FunctionType struct {
	TypeParams []TypeParam
	Params     []TypeExpr
	Return     TypeExpr
	Sp         Span
}

func (n *FunctionType) Span() Span { return n.Sp }
func (*FunctionType) typeNode()    {}

type ObjectTypeProp struct {
	Name       interner.ID
	Type       TypeExpr
	Optional   bool
	Readonly   bool
	IsMethod   bool
	TypeParams []TypeParam // method-level generics, only when IsMethod
}

// ObjectType covers property signatures, method signatures, and index
// signatures (`[key: K]: V`) in a single node.
type ObjectType struct {
	Props         []ObjectTypeProp
	IndexKeyType  TypeExpr // nil if no index signature
	IndexValType  TypeExpr
	Sp            Span
}

func (n *ObjectType) Span() Span { return n.Sp }
func (*ObjectType) typeNode()    {}

type NullableType struct {
	Inner TypeExpr
	Sp    Span
}

func (n *NullableType) Span() Span { return n.Sp }
func (*NullableType) typeNode()    {}

// TypeRef is a named nominal reference (class/interface/enum/alias) with
// optional type arguments.
type TypeRef struct {
	Name     interner.ID
	TypeArgs []TypeExpr
	Sp       Span
}

func (n *TypeRef) Span() Span { return n.Sp }
func (*TypeRef) typeNode()    {}

type KeyofType struct {
	Operand TypeExpr
	Sp      Span
}

func (n *KeyofType) Span() Span { return n.Sp }
func (*KeyofType) typeNode()    {}

type TypeofType struct {
	Expr Expr
	Sp   Span
}

func (n *TypeofType) Span() Span { return n.Sp }
func (*TypeofType) typeNode()    {}

// MappedType is `{ [K in Keys]: V }`-style mapped types.
type MappedType struct {
	KeyName  interner.ID
	Keys     TypeExpr
	Value    TypeExpr
	Optional bool
	Readonly bool
	Sp       Span
}

func (n *MappedType) Span() Span { return n.Sp }
func (*MappedType) typeNode()    {}

// ConditionalType is `Check extends Extends ? True : False`, with optional
// `infer Name` bindings inside Extends.
type ConditionalType struct {
	Check   TypeExpr
	Extends TypeExpr
	True    TypeExpr
	False   TypeExpr
	Sp      Span
}

func (n *ConditionalType) Span() Span { return n.Sp }
func (*ConditionalType) typeNode()    {}

// InferType marks an `infer Name` binding inside a ConditionalType's
// Extends clause.
type InferType struct {
	Name interner.ID
	Sp   Span
}

func (n *InferType) Span() Span { return n.Sp }
func (*InferType) typeNode()    {}

// TemplateLiteralType is a template-literal type, e.g. `` `on${Event}` ``.
type TemplateLiteralType struct {
	Quasis []string
	Types  []TypeExpr
	Sp     Span
}

func (n *TemplateLiteralType) Span() Span { return n.Sp }
func (*TemplateLiteralType) typeNode()    {}

// TypePredicateType is a user-defined type guard return annotation:
// `x is T`.
type TypePredicateType struct {
	Param interner.ID
	Type  TypeExpr
	Sp    Span
}

func (n *TypePredicateType) Span() Span { return n.Sp }
func (*TypePredicateType) typeNode()    {}

// VariadicType marks a rest parameter's type, `...T`.
type VariadicType struct {
	Element TypeExpr
	Sp      Span
}

func (n *VariadicType) Span() Span { return n.Sp }
func (*VariadicType) typeNode()    {}
