// Package ast defines the typed AST produced by the parser (spec §3/§4.1)
// and consumed by the type checker, optimizer and code generator. Every
// node carries a Span so diagnostics and the source map can always point
// back into the immutable source of its owning module.
package ast

import "github.com/sunholo/tlc/internal/interner"

// Span is a byte range plus line/column, attached to every node (spec §3).
type Span struct {
	ByteOffset int
	ByteLen    int
	Line       int
	Column     int
}

// Node is the base interface every AST node implements.
type Node interface {
	Span() Span
}

// Expr is any expression-kind node (spec §3 Expression kinds).
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement-kind node (spec §3 Statement kinds).
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr is any type-expression node (spec §3 Type expressions).
type TypeExpr interface {
	Node
	typeNode()
}

// Pattern is any match-pattern node, also reused for destructuring in
// variable declarations and function parameters.
type Pattern interface {
	Node
	patternNode()
}

// Program is an ordered sequence of top-level statements (spec §3 AST).
type Program struct {
	Stmts []Stmt
	Sp    Span
}

func (p *Program) Span() Span { return p.Sp }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

type Identifier struct {
	Name interner.ID
	Sp   Span
}

func (n *Identifier) Span() Span { return n.Sp }
func (*Identifier) exprNode()    {}

type LiteralKind int

const (
	LitNil LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

type Literal struct {
	Kind  LiteralKind
	Value any
	Sp    Span
}

func (n *Literal) Span() Span { return n.Sp }
func (*Literal) exprNode()    {}

type BinaryExpr struct {
	Op          string
	Left, Right Expr
	Sp          Span
	// IsConcat is set by the type checker when Op is "+" and it resolved
	// to string concatenation rather than numeric addition; codegen reads
	// this instead of re-inferring types from the AST's shape.
	IsConcat bool
}

func (n *BinaryExpr) Span() Span { return n.Sp }
func (*BinaryExpr) exprNode()    {}

type UnaryExpr struct {
	Op   string
	Expr Expr
	Sp   Span
}

func (n *UnaryExpr) Span() Span { return n.Sp }
func (*UnaryExpr) exprNode()    {}

// AssignExpr covers both `=` and compound ops (`+=`, `-=`, ...).
type AssignExpr struct {
	Op     string // "=", "+=", "-=", ...
	Target Expr
	Value  Expr
	Sp     Span
	// IsConcat is set by the type checker when Op is "+=" and it resolved
	// to string concatenation rather than numeric addition.
	IsConcat bool
}

func (n *AssignExpr) Span() Span { return n.Sp }
func (*AssignExpr) exprNode()    {}

type MemberExpr struct {
	Object   Expr
	Name     interner.ID
	Optional bool // optional member access: a?.b
	Sp       Span
}

func (n *MemberExpr) Span() Span { return n.Sp }
func (*MemberExpr) exprNode()    {}

type IndexExpr struct {
	Object   Expr
	Index    Expr
	Optional bool // a?.[b]
	Sp       Span
}

func (n *IndexExpr) Span() Span { return n.Sp }
func (*IndexExpr) exprNode()    {}

type CallExpr struct {
	Callee     Expr
	Args       []Expr
	TypeArgs   []TypeExpr
	Optional   bool // a?.(b)
	IsTailCall bool // set by the optimizer's tail-call pass; codegen does not read it
	Sp         Span
}

func (n *CallExpr) Span() Span { return n.Sp }
func (*CallExpr) exprNode()    {}

// MethodCallExpr is a call through a member access, kept distinct from a
// plain CallExpr(MemberExpr) so the type checker can resolve `self`-bound
// dispatch and the optimizer's devirtualization pass has a single node
// shape to pattern-match on.
type MethodCallExpr struct {
	Receiver   Expr
	Method     interner.ID
	Args       []Expr
	TypeArgs   []TypeExpr
	Optional   bool
	IsTailCall bool // set by the optimizer's tail-call pass; codegen does not read it
	Sp         Span
}

func (n *MethodCallExpr) Span() Span { return n.Sp }
func (*MethodCallExpr) exprNode()    {}

type ArrayExpr struct {
	Elements []Expr
	Sp       Span
}

func (n *ArrayExpr) Span() Span { return n.Sp }
func (*ArrayExpr) exprNode()    {}

type ObjectProp struct {
	Key      interner.ID
	Computed Expr // non-nil if the key itself is an expression
	Value    Expr
	Spread   bool
}

type ObjectExpr struct {
	Props []ObjectProp
	Sp    Span
}

func (n *ObjectExpr) Span() Span { return n.Sp }
func (*ObjectExpr) exprNode()    {}

type Param struct {
	Name     interner.ID
	Type     TypeExpr // nil if uninferred/untyped
	Default  Expr     // nil if no default
	Rest     bool     // ...args
	Modifier string   // "", "public", "private", "protected" (primary-constructor params)
	Sp       Span
}

type FunctionExpr struct {
	Name       interner.ID // zero ID for anonymous
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeExpr
	Body       *BlockStmt
	IsArrow    bool
	Sp         Span
}

func (n *FunctionExpr) Span() Span { return n.Sp }
func (*FunctionExpr) exprNode()    {}

type ConditionalExpr struct {
	Cond, Then, Else Expr
	Sp               Span
}

func (n *ConditionalExpr) Span() Span { return n.Sp }
func (*ConditionalExpr) exprNode()    {}

// PipeExpr is `a |> f`, lowered by codegen to `f(a)` but kept as its own node so source maps and narrowing see the original
// surface shape.
type PipeExpr struct {
	Value Expr
	Func  Expr
	Sp    Span
}

func (n *PipeExpr) Span() Span { return n.Sp }
func (*PipeExpr) exprNode()    {}

type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if unguarded
	Body    Expr
}

type MatchExpr struct {
	Subject Expr
	Arms    []MatchArm
	Sp      Span
}

func (n *MatchExpr) Span() Span { return n.Sp }
func (*MatchExpr) exprNode()    {}

type ParenExpr struct {
	Inner Expr
	Sp    Span
}

func (n *ParenExpr) Span() Span { return n.Sp }
func (*ParenExpr) exprNode()    {}

type SelfExpr struct{ Sp Span }

func (n *SelfExpr) Span() Span { return n.Sp }
func (*SelfExpr) exprNode()    {}

type SuperExpr struct{ Sp Span }

func (n *SuperExpr) Span() Span { return n.Sp }
func (*SuperExpr) exprNode()    {}

// TemplateExpr is a template-literal string with embedded expressions,
// e.g. `"hello ${name}"`.
type TemplateExpr struct {
	Quasis []string // len(Quasis) == len(Exprs)+1
	Exprs  []Expr
	Sp     Span
}

func (n *TemplateExpr) Span() Span { return n.Sp }
func (*TemplateExpr) exprNode()    {}

// TypeAssertExpr is `e as T`.
type TypeAssertExpr struct {
	Expr Expr
	Type TypeExpr
	Sp   Span
}

func (n *TypeAssertExpr) Span() Span { return n.Sp }
func (*TypeAssertExpr) exprNode()    {}

type NewExpr struct {
	Callee   TypeExpr
	Args     []Expr
	TypeArgs []TypeExpr
	Sp       Span
}

func (n *NewExpr) Span() Span { return n.Sp }
func (*NewExpr) exprNode()    {}

// TryExpr is the try-expression form `try e catch default` (spec §9).
type TryExpr struct {
	Try     Expr
	Default Expr
	Sp      Span
}

func (n *TryExpr) Span() Span { return n.Sp }
func (*TryExpr) exprNode()    {}

// ErrorChainExpr is `e!` / `e?!`-style error propagation, distinct from
// the try-expression sugar above.
type ErrorChainExpr struct {
	Expr Expr
	Sp   Span
}

func (n *ErrorChainExpr) Span() Span { return n.Sp }
func (*ErrorChainExpr) exprNode()    {}

type SpreadExpr struct {
	Expr Expr
	Sp   Span
}

func (n *SpreadExpr) Span() Span { return n.Sp }
func (*SpreadExpr) exprNode()    {}

// ---------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------

type WildcardPattern struct{ Sp Span }

func (n *WildcardPattern) Span() Span { return n.Sp }
func (*WildcardPattern) patternNode() {}

type IdentPattern struct {
	Name interner.ID
	Sp   Span
}

func (n *IdentPattern) Span() Span { return n.Sp }
func (*IdentPattern) patternNode() {}

type LiteralPattern struct {
	Kind  LiteralKind
	Value any
	Sp    Span
}

func (n *LiteralPattern) Span() Span { return n.Sp }
func (*LiteralPattern) patternNode() {}

type ObjectPatternProp struct {
	Key     interner.ID
	Value   Pattern
	Default Expr
}

type ObjectPattern struct {
	Props []ObjectPatternProp
	Rest  *IdentPattern // non-nil if `...rest`
	Sp    Span
}

func (n *ObjectPattern) Span() Span { return n.Sp }
func (*ObjectPattern) patternNode() {}

type ArrayPattern struct {
	Elements []Pattern
	Rest     *IdentPattern
	Sp       Span
}

func (n *ArrayPattern) Span() Span { return n.Sp }
func (*ArrayPattern) patternNode() {}

// TypedPattern is `x: Typ` used in match arms to narrow to Typ.
type TypedPattern struct {
	Inner Pattern
	Type  TypeExpr
	Sp    Span
}

func (n *TypedPattern) Span() Span { return n.Sp }
func (*TypedPattern) patternNode() {}

type OrPattern struct {
	Alternatives []Pattern
	Sp           Span
}

func (n *OrPattern) Span() Span { return n.Sp }
func (*OrPattern) patternNode() {}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

type BlockStmt struct {
	Stmts []Stmt
	Sp    Span
}

func (n *BlockStmt) Span() Span { return n.Sp }
func (*BlockStmt) stmtNode()    {}

type VarKind int

const (
	VarConst VarKind = iota
	VarLocal
)

type VarDecl struct {
	Kind     VarKind
	Target   Pattern // usually IdentPattern, but supports destructuring
	Type     TypeExpr
	Init     Expr
	Exported bool
	Sp       Span
}

func (n *VarDecl) Span() Span { return n.Sp }
func (*VarDecl) stmtNode()    {}

type TypeParam struct {
	Name       interner.ID
	Constraint TypeExpr
	Default    TypeExpr
}

type FuncDecl struct {
	Name       interner.ID
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeExpr
	Body       *BlockStmt
	Exported   bool
	Sp         Span
}

func (n *FuncDecl) Span() Span { return n.Sp }
func (*FuncDecl) stmtNode()    {}

type AccessModifier int

const (
	AccessPublic AccessModifier = iota
	AccessPrivate
	AccessProtected
)

type ClassMemberKind int

const (
	MemberField ClassMemberKind = iota
	MemberMethod
	MemberConstructor
	MemberOperator
)

type Decorator struct {
	Name interner.ID
	Args []Expr
	Sp   Span
}

type ClassMember struct {
	Kind       ClassMemberKind
	Name       interner.ID // operator name (e.g. "+") when Kind == MemberOperator
	Access     AccessModifier
	Static     bool
	Final      bool
	Override   bool
	Abstract   bool
	Readonly   bool
	Type       TypeExpr    // field type, or method return type
	Params     []Param     // method/constructor parameters
	TypeParams []TypeParam // method-level generics
	Init       Expr        // field initializer
	Body       *BlockStmt  // method/constructor body
	Decorators []Decorator // source order; outer decorators applied after inner
	Sp         Span
}

// ClassDecl represents a class declaration, including an optional primary
// constructor (spec §4.1, §4.2.5).
type ClassDecl struct {
	Name              interner.ID
	TypeParams        []TypeParam
	PrimaryCtorParams []Param // parenthesized param list on the class header; nil if none
	ParentCtorArgs    []Expr  // arguments passed to the parent's constructor; only valid with Extends != nil
	Extends           *TypeRef
	Implements        []*TypeRef
	Members           []ClassMember
	Final             bool
	Abstract          bool
	Sealed            bool // set by the checker when @sealed appears among Decorators (spec §4.2.7)
	ReadonlyDecorator bool // set by the checker for @readonly
	Deprecated        bool // set by the checker for @deprecated
	Decorators        []Decorator
	HasExplicitCtor   bool // true if an explicit `constructor` member exists
	Exported          bool
	Sp                Span
}

func (n *ClassDecl) Span() Span { return n.Sp }
func (*ClassDecl) stmtNode()    {}

type InterfaceMember struct {
	Name       interner.ID
	Type       TypeExpr // property type, or method signature as a FunctionType
	IsMethod   bool
	TypeParams []TypeParam
	Sp         Span
}

type InterfaceDecl struct {
	Name       interner.ID
	TypeParams []TypeParam
	Extends    []*TypeRef
	Members    []InterfaceMember
	Exported   bool
	Sp         Span
}

func (n *InterfaceDecl) Span() Span { return n.Sp }
func (*InterfaceDecl) stmtNode()    {}

type TypeAliasDecl struct {
	Name       interner.ID
	TypeParams []TypeParam
	Type       TypeExpr
	Exported   bool
	Sp         Span
}

func (n *TypeAliasDecl) Span() Span { return n.Sp }
func (*TypeAliasDecl) stmtNode()    {}

// EnumMember covers both simple (auto/explicit value) and rich
// (constructor-argument) enum members (spec §4.2.6).
type EnumMember struct {
	Name  interner.ID
	Value Expr   // explicit int/string value for a simple enum member; nil = auto
	Args  []Expr // constructor arguments for a rich enum member
	Sp    Span
}

type EnumDecl struct {
	Name       interner.ID
	Members    []EnumMember
	Rich       bool
	Fields     []Param // rich-enum field declarations
	CtorParams []Param // rich-enum constructor parameters
	CtorBody   *BlockStmt
	Methods    []ClassMember
	Exported   bool
	Sp         Span
}

func (n *EnumDecl) Span() Span { return n.Sp }
func (*EnumDecl) stmtNode()    {}

type ImportKind int

const (
	ImportDefault ImportKind = iota
	ImportNamed
	ImportNamespace
	ImportTypeOnlyNamed
)

type ImportSpecifier struct {
	Imported interner.ID
	Local    interner.ID // equals Imported unless renamed with `as`
}

type ImportDecl struct {
	Kind       ImportKind
	Specifiers []ImportSpecifier
	Namespace  interner.ID // used when Kind == ImportNamespace
	Path       string
	Sp         Span
}

func (n *ImportDecl) Span() Span { return n.Sp }
func (*ImportDecl) stmtNode()    {}

type ExportKind int

const (
	ExportDeclaration ExportKind = iota
	ExportNamedReExport
	ExportDefault
)

type ExportDecl struct {
	Kind        ExportKind
	Decl        Stmt              // set when Kind == ExportDeclaration
	Specifiers  []ImportSpecifier // reused shape for named re-export list
	FromPath    string            // non-empty for re-export-with-from
	DefaultExpr Expr              // set when Kind == ExportDefault
	Sp          Span
}

func (n *ExportDecl) Span() Span { return n.Sp }
func (*ExportDecl) stmtNode()    {}

type IfStmt struct {
	Cond Expr
	Then *BlockStmt
	Else Stmt // *BlockStmt or *IfStmt (else-if chain), nil if absent
	Sp   Span
}

func (n *IfStmt) Span() Span { return n.Sp }
func (*IfStmt) stmtNode()    {}

type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	Sp   Span
}

func (n *WhileStmt) Span() Span { return n.Sp }
func (*WhileStmt) stmtNode()    {}

// RepeatStmt is `repeat ... until cond` (condition tested after body).
type RepeatStmt struct {
	Body *BlockStmt
	Cond Expr
	Sp   Span
}

func (n *RepeatStmt) Span() Span { return n.Sp }
func (*RepeatStmt) stmtNode()    {}

type ForNumericStmt struct {
	Var   interner.ID
	Start Expr
	Stop  Expr
	Step  Expr // nil = 1
	Body  *BlockStmt
	Sp    Span
}

func (n *ForNumericStmt) Span() Span { return n.Sp }
func (*ForNumericStmt) stmtNode()    {}

type ForGenericStmt struct {
	Vars []interner.ID
	Iter Expr
	Body *BlockStmt
	Sp   Span
}

func (n *ForGenericStmt) Span() Span { return n.Sp }
func (*ForGenericStmt) stmtNode()    {}

type ReturnStmt struct {
	Value Expr // nil for bare return
	Sp    Span
}

func (n *ReturnStmt) Span() Span { return n.Sp }
func (*ReturnStmt) stmtNode()    {}

type BreakStmt struct{ Sp Span }

func (n *BreakStmt) Span() Span { return n.Sp }
func (*BreakStmt) stmtNode()    {}

type ContinueStmt struct{ Sp Span }

func (n *ContinueStmt) Span() Span { return n.Sp }
func (*ContinueStmt) stmtNode()    {}

type ExprStmt struct {
	Expr Expr
	Sp   Span
}

func (n *ExprStmt) Span() Span { return n.Sp }
func (*ExprStmt) stmtNode()    {}

type CatchClause struct {
	Param Pattern // may be nil (bare catch)
	Type  TypeExpr
	Body  *BlockStmt
}

type TryStmt struct {
	Try     *BlockStmt
	Catches []CatchClause
	Finally *BlockStmt
	Sp      Span
}

func (n *TryStmt) Span() Span { return n.Sp }
func (*TryStmt) stmtNode()    {}

type ThrowStmt struct {
	Value   Expr
	Rethrow bool // true for bare `rethrow` inside a catch
	Sp      Span
}

func (n *ThrowStmt) Span() Span { return n.Sp }
func (*ThrowStmt) stmtNode()    {}

// NamespaceDecl is only legal as the first statement of a declaration file
// (spec §4.1). Declaration-file statement counterparts (`declare` forms)
// reuse the ordinary decl nodes wrapped in DeclareStmt.
type NamespaceDecl struct {
	Path string
	Sp   Span
}

func (n *NamespaceDecl) Span() Span { return n.Sp }
func (*NamespaceDecl) stmtNode()    {}

// DeclareStmt wraps a declaration-file counterpart of an ordinary
// declaration (ambient `declare` form: body-less function/class/var).
type DeclareStmt struct {
	Inner Stmt
	Sp    Span
}

func (n *DeclareStmt) Span() Span { return n.Sp }
func (*DeclareStmt) stmtNode()    {}
