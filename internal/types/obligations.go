package types

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
)

// checkClassObligations walks every class declaration's resolved Decl and
// verifies the structural rules that aren't captured by assignability
// alone: interface members are all implemented, `override` has something
// to override, and nothing overrides a `final` member (spec §4.2.5
// Classes, §4.2.4 Interfaces).
func (c *Checker) checkClassObligations(prog *ast.Program) {
	forEachTopDecl(prog.Stmts, func(s ast.Stmt) {
		cd, ok := s.(*ast.ClassDecl)
		if !ok {
			return
		}
		decl, ok := c.decls.Lookup(c.in.MustLookup(cd.Name))
		if !ok {
			return
		}
		c.checkInterfaceObligations(cd, decl)
		c.checkOverrides(cd, decl)
	})
}

func (c *Checker) checkInterfaceObligations(cd *ast.ClassDecl, decl *Decl) {
	for _, ifaceRef := range decl.Implements {
		for _, required := range ifaceRef.Decl.AllMembers() {
			found := false
			for _, m := range decl.AllMembers() {
				if m.Name == required.Name && IsAssignable(m.Type, required.Type) {
					found = true
					break
				}
			}
			if !found {
				c.errf(diag.TYP005, cd.Sp, "class %q does not implement %q required by interface %q",
					decl.Name, c.in.MustLookup(required.Name), ifaceRef.Decl.Name)
			}
		}
	}
}

func (c *Checker) checkOverrides(cd *ast.ClassDecl, decl *Decl) {
	for _, m := range cd.Members {
		if m.Kind == ast.MemberConstructor {
			continue
		}
		if decl.Extends == nil {
			if m.Override {
				c.errf(diag.TYP004, m.Sp, "method %q marked override but class %q has no parent", c.in.MustLookup(m.Name), decl.Name)
			}
			continue
		}
		parentMembers := decl.Extends.Decl.AllMembers()
		var parent *Member
		for i := range parentMembers {
			if parentMembers[i].Name == m.Name {
				parent = &parentMembers[i]
				break
			}
		}
		if m.Override && parent == nil {
			c.errf(diag.TYP004, m.Sp, "method %q marked override but no parent member by that name exists", c.in.MustLookup(m.Name))
		}
		if parent != nil && parent.Final {
			c.errf(diag.TYP011, m.Sp, "cannot override final member %q", c.in.MustLookup(m.Name))
		}
		if parent != nil && !m.Override && parent.IsMethod {
			c.errf(diag.TYP004, m.Sp, "method %q shadows a parent member without `override`", c.in.MustLookup(m.Name))
		}
	}
}
