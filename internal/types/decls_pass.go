package types

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
)

// buildDecls is the module-wide declaration pre-pass (spec §6 resolution
// ordering): every class/interface/enum/alias name is registered before
// any member/signature is resolved, so forward references anywhere in the
// module work regardless of source order.
func buildDecls(prog *ast.Program, in *interner.Interner, diags *diag.Handler, file string) *Decls {
	decls := NewDecls()
	res := NewResolverWithDiagnostics(decls, in, diags, file)

	// Pass 1: register empty skeletons by name.
	forEachTopDecl(prog.Stmts, func(stmt ast.Stmt) {
		switch n := stmt.(type) {
		case *ast.ClassDecl:
			decls.Define(&Decl{Kind: DeclClass, Name: in.MustLookup(n.Name), Final: n.Final, Abstract: n.Abstract})
		case *ast.InterfaceDecl:
			decls.Define(&Decl{Kind: DeclInterface, Name: in.MustLookup(n.Name)})
		case *ast.EnumDecl:
			decls.Define(&Decl{Kind: DeclEnum, Name: in.MustLookup(n.Name), EnumRich: n.Rich})
		case *ast.TypeAliasDecl:
			decls.Define(&Decl{Kind: DeclAlias, Name: in.MustLookup(n.Name)})
		}
	})

	// Pass 2: fill in each skeleton's shape now that every name resolves.
	forEachTopDecl(prog.Stmts, func(stmt ast.Stmt) {
		switch n := stmt.(type) {
		case *ast.ClassDecl:
			fillClassDecl(n, decls, res, in, diags, file)
		case *ast.InterfaceDecl:
			fillInterfaceDecl(n, decls, res, in)
		case *ast.EnumDecl:
			fillEnumDecl(n, decls, res, in)
		case *ast.TypeAliasDecl:
			fillAliasDecl(n, decls, res, in)
		}
	})

	return decls
}

// forEachTopDecl walks top-level statements, unwrapping ExportDecl/
// DeclareStmt wrappers so exported/ambient declarations are registered
// exactly like ordinary ones (spec §4.1 modules, §4.1 declaration files).
func forEachTopDecl(stmts []ast.Stmt, fn func(ast.Stmt)) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ExportDecl:
			if n.Kind == ast.ExportDeclaration && n.Decl != nil {
				fn(n.Decl)
			}
		case *ast.DeclareStmt:
			fn(n.Inner)
		default:
			fn(s)
		}
	}
}

func fillClassDecl(n *ast.ClassDecl, decls *Decls, res *Resolver, in *interner.Interner, diags *diag.Handler, file string) {
	decl, _ := decls.Lookup(in.MustLookup(n.Name))
	pop := res.PushTypeParams(n.TypeParams)
	defer pop()

	recognizeBuiltinDecorators(n, in)

	decl.TypeParams = resolveTypeParams(n.TypeParams, res)

	if n.Extends != nil {
		if ref, ok := res.Resolve(n.Extends).(*Ref); ok {
			if ref.Decl.Final {
				diags.Push(diag.Errorf(diag.TYP010, file, spanPtr(n.Sp), "class %q cannot extend final class %q", in.MustLookup(n.Name), ref.Decl.Name))
			}
			decl.Extends = ref
		}
	}
	for _, impl := range n.Implements {
		if ref, ok := res.Resolve(impl).(*Ref); ok {
			decl.Implements = append(decl.Implements, ref)
		}
	}

	decl.Members = nil
	for _, m := range n.Members {
		if m.Kind == ast.MemberConstructor {
			continue // constructors aren't part of the member/obligation surface
		}
		mt := memberType(m, res)
		decl.Members = append(decl.Members, Member{
			Name:     m.Name,
			Type:     mt,
			IsMethod: m.Kind == ast.MemberMethod || m.Kind == ast.MemberOperator,
			Access:   convertAccess(m.Access),
			Static:   m.Static,
			Final:    m.Final,
			Override: m.Override,
			Abstract: m.Abstract,
			Readonly: m.Readonly,
		})
	}
}

// recognizeBuiltinDecorators matches a class's decorators against the
// three built-in names the checker special-cases by canonical name
// (spec §4.2.7) and records the result directly on the AST node so
// codegen's own pass over n.Decorators can gate its runtime-hook
// emission on them, the same way the checker threads other resolved
// facts (e.g. ast.BinaryExpr.IsConcat) straight onto the node.
func recognizeBuiltinDecorators(n *ast.ClassDecl, in *interner.Interner) {
	for _, d := range n.Decorators {
		switch in.MustLookup(d.Name) {
		case "readonly":
			n.ReadonlyDecorator = true
		case "sealed":
			n.Sealed = true
		case "deprecated":
			n.Deprecated = true
		}
	}
}

func fillInterfaceDecl(n *ast.InterfaceDecl, decls *Decls, res *Resolver, in *interner.Interner) {
	decl, _ := decls.Lookup(in.MustLookup(n.Name))
	pop := res.PushTypeParams(n.TypeParams)
	defer pop()

	decl.TypeParams = resolveTypeParams(n.TypeParams, res)
	for _, ext := range n.Extends {
		if ref, ok := res.Resolve(ext).(*Ref); ok {
			decl.ExtendsAll = append(decl.ExtendsAll, ref)
		}
	}
	decl.Members = nil
	for _, m := range n.Members {
		decl.Members = append(decl.Members, Member{
			Name:     m.Name,
			Type:     res.Resolve(m.Type),
			IsMethod: m.IsMethod,
			Access:   AccessPublic,
		})
	}
}

func fillEnumDecl(n *ast.EnumDecl, decls *Decls, res *Resolver, in *interner.Interner) {
	decl, _ := decls.Lookup(in.MustLookup(n.Name))
	for _, m := range n.Members {
		decl.Members = append(decl.Members, Member{Name: m.Name, Type: &Ref{Decl: decl}, Static: true})
	}
	for _, m := range n.Methods {
		decl.Members = append(decl.Members, Member{
			Name:     m.Name,
			Type:     memberType(m, res),
			IsMethod: true,
			Access:   convertAccess(m.Access),
			Static:   m.Static,
		})
	}
	for _, f := range n.Fields {
		decl.Members = append(decl.Members, Member{Name: f.Name, Type: res.Resolve(f.Type)})
	}
}

func fillAliasDecl(n *ast.TypeAliasDecl, decls *Decls, res *Resolver, in *interner.Interner) {
	decl, _ := decls.Lookup(in.MustLookup(n.Name))
	pop := res.PushTypeParams(n.TypeParams)
	defer pop()
	decl.TypeParams = resolveTypeParams(n.TypeParams, res)
	decl.AliasOf = res.Resolve(n.Type)
}

func resolveTypeParams(tps []ast.TypeParam, res *Resolver) []TypeParam {
	out := make([]TypeParam, len(tps))
	for i, tp := range tps {
		p := TypeParam{Name: tp.Name}
		if tp.Constraint != nil {
			p.Constraint = res.Resolve(tp.Constraint)
		}
		if tp.Default != nil {
			p.Default = res.Resolve(tp.Default)
		}
		out[i] = p
	}
	return out
}

func memberType(m ast.ClassMember, res *Resolver) Type {
	if m.Kind == ast.MemberField {
		return res.Resolve(m.Type)
	}
	params := make([]Type, len(m.Params))
	for i, p := range m.Params {
		params[i] = res.Resolve(p.Type)
	}
	variadic := len(m.Params) > 0 && m.Params[len(m.Params)-1].Rest
	return &Function{Params: params, Variadic: variadic, Return: res.Resolve(m.Type)}
}

func convertAccess(a ast.AccessModifier) Access {
	switch a {
	case ast.AccessPrivate:
		return AccessPrivate
	case ast.AccessProtected:
		return AccessProtected
	default:
		return AccessPublic
	}
}

func spanPtr(sp ast.Span) *ast.Span { return &sp }
