package types

import "github.com/sunholo/tlc/internal/interner"

// DeclKind distinguishes the four nominal declaration forms (spec §4.2).
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclEnum
	DeclAlias
)

// Member describes one class/interface member for obligation checking.
type Member struct {
	Name     interner.ID
	Type     Type // field type or method FunctionType
	IsMethod bool
	Access   Access
	Static   bool
	Final    bool
	Override bool
	Abstract bool
	Readonly bool
}

type Access int

const (
	AccessPublic Access = iota
	AccessPrivate
	AccessProtected
)

// Decl is a resolved nominal declaration: a class, interface, enum, or
// type alias, keyed by name within its owning module (spec §4.2,
// nominal reference compatibility is same-name-same-args — see
// DESIGN.md Open Question decisions).
type Decl struct {
	Kind       DeclKind
	Name       string
	TypeParams []TypeParam
	Members    []Member
	Extends    *Ref   // class parent, or first interface extended
	Implements []*Ref // interfaces a class implements
	ExtendsAll []*Ref // all interfaces an interface extends
	Final      bool
	Abstract   bool
	AliasOf    Type // only for DeclAlias
	EnumRich   bool
}

func (d *Decl) Member(name interner.ID) (Member, bool) {
	for _, m := range d.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// AllMembers walks the Extends chain (classes) and the ExtendsAll chain
// (interfaces extending interfaces) collecting inherited members not
// shadowed by a closer declaration.
func (d *Decl) AllMembers() []Member {
	seen := map[interner.ID]bool{}
	var out []Member
	var walk func(cur *Decl)
	walk = func(cur *Decl) {
		if cur == nil {
			return
		}
		for _, m := range cur.Members {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			out = append(out, m)
		}
		if cur.Extends != nil {
			walk(cur.Extends.Decl)
		}
		for _, ext := range cur.ExtendsAll {
			walk(ext.Decl)
		}
	}
	walk(d)
	return out
}
