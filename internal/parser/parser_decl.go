package parser

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/lexer"
)

// parseStmt dispatches on the current token to the matching statement or
// declaration production (spec §3 Statement kinds / §4.1).
func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Type {
	case lexer.CONST, lexer.LOCAL:
		return p.parseVarDecl(false)
	case lexer.EXPORT:
		return p.parseExportDecl()
	case lexer.FUNCTION:
		return p.parseFuncDecl(false)
	case lexer.CLASS:
		return p.parseClassDecl(false)
	case lexer.INTERFACE:
		return p.parseInterfaceDecl(false)
	case lexer.ENUM:
		return p.parseEnumDecl(false)
	case lexer.TYPE:
		return p.parseTypeAliasDecl(false)
	case lexer.IMPORT:
		return p.parseImportDecl()
	case lexer.NAMESPACE:
		return p.parseNamespaceDecl()
	case lexer.DECLARE:
		return p.parseDeclareStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.REPEAT:
		return p.parseRepeatStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		s := &ast.BreakStmt{Sp: p.curSpan()}
		return s
	case lexer.CONTINUE:
		s := &ast.ContinueStmt{Sp: p.curSpan()}
		return s
	case lexer.TRY:
		return p.parseTryStmt()
	case lexer.THROW:
		return p.parseThrowStmt()
	case lexer.RETHROW:
		s := &ast.ThrowStmt{Rethrow: true, Sp: p.curSpan()}
		return s
	case lexer.LBRACE:
		return p.parseBlockStmt()
	case lexer.SEMICOLON:
		return nil
	case lexer.ATSIGN:
		return p.parseDecoratedDecl()
	default:
		expr := p.parseExpr(LOWEST)
		if expr == nil {
			return nil
		}
		return &ast.ExprStmt{Expr: expr, Sp: expr.Span()}
	}
}

func (p *Parser) parseVarDecl(exported bool) ast.Stmt {
	sp := p.curSpan()
	kind := ast.VarConst
	if p.curIs(lexer.LOCAL) {
		kind = ast.VarLocal
	}
	p.nextToken()
	target := p.parsePattern()
	var ty ast.TypeExpr
	if tp, ok := target.(*ast.TypedPattern); ok {
		target, ty = tp.Inner, tp.Type
	}
	if p.peekIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		ty = p.parseType(LOWEST)
	}
	var init ast.Expr
	if p.peekIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		init = p.parseExpr(ASSIGNMENT)
	}
	return &ast.VarDecl{Kind: kind, Target: target, Type: ty, Init: init, Exported: exported, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseExportDecl() ast.Stmt {
	sp := p.curSpan()
	if p.peekIs(lexer.LBRACE) {
		p.nextToken()
		specs := p.parseImportSpecifierList(lexer.RBRACE)
		var from string
		if p.peekIs(lexer.FROM) {
			p.nextToken()
			p.nextToken()
			from = unquote(p.cur.Literal)
		}
		return &ast.ExportDecl{Kind: ast.ExportNamedReExport, Specifiers: specs, FromPath: from, Sp: p.spanFrom(sp)}
	}
	if p.peekIsContextualDefault() {
		p.nextToken()
		p.nextToken()
		expr := p.parseExpr(ASSIGNMENT)
		return &ast.ExportDecl{Kind: ast.ExportDefault, DefaultExpr: expr, Sp: p.spanFrom(sp)}
	}
	p.nextToken()
	inner := p.parseStmt()
	return &ast.ExportDecl{Kind: ast.ExportDeclaration, Decl: inner, Sp: p.spanFrom(sp)}
}

func (p *Parser) peekIsContextualDefault() bool {
	return p.peek.Type == lexer.IDENT && p.peek.Literal == "default"
}

func (p *Parser) parseFuncDecl(exported bool) ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.IDENT)
	name := p.intern(p.cur.Literal)
	tparams := p.parseOptionalTypeParams()
	p.expect(lexer.LPAREN)
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.peekIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		ret = p.parseType(LOWEST)
	}
	var body *ast.BlockStmt
	if p.peekIs(lexer.LBRACE) {
		p.nextToken()
		body = p.parseBlockStmt()
	}
	return &ast.FuncDecl{Name: name, TypeParams: tparams, Params: params, ReturnType: ret, Body: body, Exported: exported, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	sp := p.curSpan()
	block := &ast.BlockStmt{Sp: sp}
	for !p.peekIs(lexer.RBRACE) && !p.peekIs(lexer.EOF) {
		p.nextToken()
		if s := p.parseStmt(); s != nil {
			block.Stmts = append(block.Stmts, s)
		}
	}
	p.expect(lexer.RBRACE)
	block.Sp = p.spanFrom(sp)
	return block
}

func (p *Parser) parseIfStmt() ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.LPAREN)
	p.nextToken()
	cond := p.parseExpr(LOWEST)
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	then := p.parseBlockStmt()
	var els ast.Stmt
	if p.peekIs(lexer.ELSE) {
		p.nextToken()
		if p.peekIs(lexer.IF) {
			p.nextToken()
			els = p.parseIfStmt()
		} else {
			p.expect(lexer.LBRACE)
			els = p.parseBlockStmt()
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.LPAREN)
	p.nextToken()
	cond := p.parseExpr(LOWEST)
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	body := p.parseBlockStmt()
	return &ast.WhileStmt{Cond: cond, Body: body, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseRepeatStmt() ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.LBRACE)
	body := p.parseBlockStmt()
	p.expect(lexer.UNTIL)
	p.nextToken()
	cond := p.parseExpr(LOWEST)
	return &ast.RepeatStmt{Body: body, Cond: cond, Sp: p.spanFrom(sp)}
}

// parseForStmt disambiguates numeric `for (i = a, b, step) {}` from
// generic `for (k, v in iter) {}` by scanning past the first identifier.
func (p *Parser) parseForStmt() ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.LPAREN)
	p.nextToken()
	firstVar := p.intern(p.cur.Literal)
	if p.peekIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		start := p.parseExpr(ASSIGNMENT)
		p.expect(lexer.COMMA)
		p.nextToken()
		stop := p.parseExpr(ASSIGNMENT)
		var step ast.Expr
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			step = p.parseExpr(ASSIGNMENT)
		}
		p.expect(lexer.RPAREN)
		p.expect(lexer.LBRACE)
		body := p.parseBlockStmt()
		return &ast.ForNumericStmt{Var: firstVar, Start: start, Stop: stop, Step: step, Body: body, Sp: p.spanFrom(sp)}
	}
	names := []interner.ID{firstVar}
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		names = append(names, p.intern(p.cur.Literal))
	}
	p.expect(lexer.IN)
	p.nextToken()
	iter := p.parseExpr(LOWEST)
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	body := p.parseBlockStmt()
	return &ast.ForGenericStmt{Vars: names, Iter: iter, Body: body, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	sp := p.curSpan()
	if p.peekIs(lexer.SEMICOLON) || p.peekIs(lexer.RBRACE) {
		return &ast.ReturnStmt{Sp: sp}
	}
	p.nextToken()
	val := p.parseExpr(LOWEST)
	return &ast.ReturnStmt{Value: val, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseTryStmt() ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.LBRACE)
	tryBlock := p.parseBlockStmt()
	var catches []ast.CatchClause
	for p.peekIs(lexer.CATCH) {
		p.nextToken()
		var param ast.Pattern
		var ty ast.TypeExpr
		if p.peekIs(lexer.LPAREN) {
			p.nextToken()
			p.nextToken()
			param = p.parsePattern()
			if p.peekIs(lexer.COLON) {
				p.nextToken()
				p.nextToken()
				ty = p.parseType(LOWEST)
			}
			p.expect(lexer.RPAREN)
		}
		p.expect(lexer.LBRACE)
		body := p.parseBlockStmt()
		catches = append(catches, ast.CatchClause{Param: param, Type: ty, Body: body})
	}
	var fin *ast.BlockStmt
	if p.peekIs(lexer.FINALLY) {
		p.nextToken()
		p.expect(lexer.LBRACE)
		fin = p.parseBlockStmt()
	}
	return &ast.TryStmt{Try: tryBlock, Catches: catches, Finally: fin, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseThrowStmt() ast.Stmt {
	sp := p.curSpan()
	p.nextToken()
	val := p.parseExpr(LOWEST)
	return &ast.ThrowStmt{Value: val, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseNamespaceDecl() ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.IDENT)
	path := p.cur.Literal
	for p.peekIs(lexer.DOT) {
		p.nextToken()
		p.nextToken()
		path += "." + p.cur.Literal
	}
	return &ast.NamespaceDecl{Path: path, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseDeclareStmt() ast.Stmt {
	sp := p.curSpan()
	p.nextToken()
	inner := p.parseStmt()
	return &ast.DeclareStmt{Inner: inner, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseImportDecl() ast.Stmt {
	sp := p.curSpan()
	if p.peekIs(lexer.STAR) {
		p.nextToken()
		p.expect(lexer.AS)
		p.nextToken()
		ns := p.intern(p.cur.Literal)
		p.expect(lexer.FROM)
		p.nextToken()
		path := unquote(p.cur.Literal)
		return &ast.ImportDecl{Kind: ast.ImportNamespace, Namespace: ns, Path: path, Sp: p.spanFrom(sp)}
	}
	if p.peekIs(lexer.LBRACE) {
		p.nextToken()
		specs := p.parseImportSpecifierList(lexer.RBRACE)
		p.expect(lexer.FROM)
		p.nextToken()
		path := unquote(p.cur.Literal)
		return &ast.ImportDecl{Kind: ast.ImportNamed, Specifiers: specs, Path: path, Sp: p.spanFrom(sp)}
	}
	if p.peekIs(lexer.TYPE) {
		p.nextToken()
		p.expect(lexer.LBRACE)
		specs := p.parseImportSpecifierList(lexer.RBRACE)
		p.expect(lexer.FROM)
		p.nextToken()
		path := unquote(p.cur.Literal)
		return &ast.ImportDecl{Kind: ast.ImportTypeOnlyNamed, Specifiers: specs, Path: path, Sp: p.spanFrom(sp)}
	}
	p.expect(lexer.IDENT)
	local := p.intern(p.cur.Literal)
	p.expect(lexer.FROM)
	p.nextToken()
	path := unquote(p.cur.Literal)
	return &ast.ImportDecl{Kind: ast.ImportDefault, Specifiers: []ast.ImportSpecifier{{Imported: local, Local: local}}, Path: path, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseImportSpecifierList(end lexer.TokenType) []ast.ImportSpecifier {
	var specs []ast.ImportSpecifier
	if p.peekIs(end) {
		p.nextToken()
		return specs
	}
	for {
		p.nextToken()
		imported := p.intern(p.cur.Literal)
		local := imported
		if p.peekIs(lexer.AS) {
			p.nextToken()
			p.nextToken()
			local = p.intern(p.cur.Literal)
		}
		specs = append(specs, ast.ImportSpecifier{Imported: imported, Local: local})
		if !p.peekIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekIs(end) {
			break
		}
	}
	p.expect(end)
	return specs
}

func unquote(s string) string { return s }

// ---------------------------------------------------------------------
// Classes, interfaces, enums, type aliases, decorators
// ---------------------------------------------------------------------

func (p *Parser) parseDecoratedDecl() ast.Stmt {
	var decorators []ast.Decorator
	for p.curIs(lexer.ATSIGN) {
		sp := p.curSpan()
		p.nextToken()
		name := p.intern(p.cur.Literal)
		var args []ast.Expr
		if p.peekIs(lexer.LPAREN) {
			p.nextToken()
			args = p.parseExprList(lexer.RPAREN)
		}
		decorators = append(decorators, ast.Decorator{Name: name, Args: args, Sp: p.spanFrom(sp)})
		p.nextToken()
	}
	switch p.cur.Type {
	case lexer.CLASS:
		decl := p.parseClassDecl(false).(*ast.ClassDecl)
		decl.Decorators = decorators
		return decl
	default:
		return p.parseStmt()
	}
}

func (p *Parser) parseClassDecl(exported bool) ast.Stmt {
	sp := p.curSpan()
	final, abstract := false, false
	for p.cur.Type == lexer.FINAL || p.cur.Type == lexer.ABSTRACT {
		if p.cur.Type == lexer.FINAL {
			final = true
		} else {
			abstract = true
		}
		p.nextToken()
	}
	p.expect(lexer.IDENT)
	name := p.intern(p.cur.Literal)
	tparams := p.parseOptionalTypeParams()

	var ctorParams []ast.Param
	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		ctorParams = p.parseParamList()
	}

	var extends *ast.TypeRef
	var parentArgs []ast.Expr
	if p.peekIs(lexer.EXTENDS) {
		p.nextToken()
		p.nextToken()
		ref := p.parseType(MEMBER)
		extends, _ = ref.(*ast.TypeRef)
		if p.peekIs(lexer.LPAREN) {
			p.nextToken()
			parentArgs = p.parseExprList(lexer.RPAREN)
		}
	}
	var implements []*ast.TypeRef
	if p.peekIs(lexer.IMPLEMENTS) {
		p.nextToken()
		p.nextToken()
		for {
			ref := p.parseType(MEMBER)
			if tr, ok := ref.(*ast.TypeRef); ok {
				implements = append(implements, tr)
			}
			if !p.peekIs(lexer.COMMA) {
				break
			}
			p.nextToken()
			p.nextToken()
		}
	}
	p.expect(lexer.LBRACE)
	members, hasCtor := p.parseClassBody()
	decl := &ast.ClassDecl{
		Name: name, TypeParams: tparams, PrimaryCtorParams: ctorParams,
		ParentCtorArgs: parentArgs, Extends: extends, Implements: implements,
		Members: members, Final: final, Abstract: abstract,
		HasExplicitCtor: hasCtor, Exported: exported, Sp: p.spanFrom(sp),
	}
	if hasCtor && ctorParams != nil {
		p.errorf(diag.PAR004, "class %q has both a primary constructor and an explicit constructor", p.in.MustLookup(name))
	}
	return decl
}

func (p *Parser) parseClassBody() ([]ast.ClassMember, bool) {
	var members []ast.ClassMember
	hasCtor := false
	for !p.peekIs(lexer.RBRACE) && !p.peekIs(lexer.EOF) {
		p.nextToken()
		if p.curIs(lexer.SEMICOLON) {
			continue
		}
		m := p.parseClassMember()
		if m.Kind == ast.MemberConstructor {
			hasCtor = true
		}
		members = append(members, m)
	}
	p.expect(lexer.RBRACE)
	return members, hasCtor
}

func (p *Parser) parseClassMember() ast.ClassMember {
	sp := p.curSpan()
	var decorators []ast.Decorator
	for p.curIs(lexer.ATSIGN) {
		dsp := p.curSpan()
		p.nextToken()
		dname := p.intern(p.cur.Literal)
		var args []ast.Expr
		if p.peekIs(lexer.LPAREN) {
			p.nextToken()
			args = p.parseExprList(lexer.RPAREN)
		}
		decorators = append(decorators, ast.Decorator{Name: dname, Args: args, Sp: p.spanFrom(dsp)})
		p.nextToken()
	}
	access := ast.AccessPublic
	static, final, override, abstract, readonly := false, false, false, false, false
loop:
	for {
		switch p.cur.Type {
		case lexer.PUBLIC:
			access = ast.AccessPublic
		case lexer.PRIVATE:
			access = ast.AccessPrivate
		case lexer.PROTECTED:
			access = ast.AccessProtected
		case lexer.STATIC:
			static = true
		case lexer.FINAL:
			final = true
		case lexer.OVERRIDE:
			override = true
		case lexer.ABSTRACT:
			abstract = true
		case lexer.READONLY:
			readonly = true
		default:
			break loop
		}
		p.nextToken()
	}

	if p.curIs(lexer.CONSTRUCTOR) {
		p.expect(lexer.LPAREN)
		params := p.parseParamList()
		var body *ast.BlockStmt
		if p.peekIs(lexer.LBRACE) {
			p.nextToken()
			body = p.parseBlockStmt()
		}
		return ast.ClassMember{Kind: ast.MemberConstructor, Access: access, Params: params, Body: body, Decorators: decorators, Sp: p.spanFrom(sp)}
	}

	name := p.intern(p.cur.Literal)
	if p.peekIs(lexer.LPAREN) {
		tparams := p.parseOptionalTypeParams()
		p.expect(lexer.LPAREN)
		params := p.parseParamList()
		var ret ast.TypeExpr
		if p.peekIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			ret = p.parseType(LOWEST)
		}
		var body *ast.BlockStmt
		if p.peekIs(lexer.LBRACE) {
			p.nextToken()
			body = p.parseBlockStmt()
		}
		return ast.ClassMember{
			Kind: ast.MemberMethod, Name: name, Access: access, Static: static,
			Final: final, Override: override, Abstract: abstract, Type: ret,
			Params: params, TypeParams: tparams, Body: body, Decorators: decorators, Sp: p.spanFrom(sp),
		}
	}

	var ty ast.TypeExpr
	if p.peekIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		ty = p.parseType(LOWEST)
	}
	var init ast.Expr
	if p.peekIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		init = p.parseExpr(ASSIGNMENT)
	}
	return ast.ClassMember{
		Kind: ast.MemberField, Name: name, Access: access, Static: static,
		Final: final, Readonly: readonly, Type: ty, Init: init,
		Decorators: decorators, Sp: p.spanFrom(sp),
	}
}

func (p *Parser) parseInterfaceDecl(exported bool) ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.IDENT)
	name := p.intern(p.cur.Literal)
	tparams := p.parseOptionalTypeParams()
	var extends []*ast.TypeRef
	if p.peekIs(lexer.EXTENDS) {
		p.nextToken()
		p.nextToken()
		for {
			ref := p.parseType(MEMBER)
			if tr, ok := ref.(*ast.TypeRef); ok {
				extends = append(extends, tr)
			}
			if !p.peekIs(lexer.COMMA) {
				break
			}
			p.nextToken()
			p.nextToken()
		}
	}
	p.expect(lexer.LBRACE)
	var members []ast.InterfaceMember
	for !p.peekIs(lexer.RBRACE) && !p.peekIs(lexer.EOF) {
		p.nextToken()
		if p.curIs(lexer.SEMICOLON) {
			continue
		}
		msp := p.curSpan()
		mname := p.intern(p.cur.Literal)
		if p.peekIs(lexer.LPAREN) {
			mtparams := p.parseOptionalTypeParams()
			p.nextToken()
			params := p.parseParamTypesOnly()
			p.expect(lexer.COLON)
			p.nextToken()
			ret := p.parseType(LOWEST)
			members = append(members, ast.InterfaceMember{Name: mname, Type: &ast.FunctionType{Params: params, Return: ret}, IsMethod: true, TypeParams: mtparams, Sp: p.spanFrom(msp)})
		} else {
			p.expect(lexer.COLON)
			p.nextToken()
			ty := p.parseType(LOWEST)
			members = append(members, ast.InterfaceMember{Name: mname, Type: ty, Sp: p.spanFrom(msp)})
		}
		if p.peekIs(lexer.SEMICOLON) || p.peekIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.InterfaceDecl{Name: name, TypeParams: tparams, Extends: extends, Members: members, Exported: exported, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseTypeAliasDecl(exported bool) ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.IDENT)
	name := p.intern(p.cur.Literal)
	tparams := p.parseOptionalTypeParams()
	p.expect(lexer.ASSIGN)
	p.nextToken()
	ty := p.parseType(LOWEST)
	return &ast.TypeAliasDecl{Name: name, TypeParams: tparams, Type: ty, Exported: exported, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseEnumDecl(exported bool) ast.Stmt {
	sp := p.curSpan()
	p.expect(lexer.IDENT)
	name := p.intern(p.cur.Literal)

	var fields []ast.Param
	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		fields = p.parseParamList()
	}
	p.expect(lexer.LBRACE)
	var members []ast.EnumMember
	rich := len(fields) > 0
	for !p.peekIs(lexer.RBRACE) && !p.peekIs(lexer.EOF) {
		p.nextToken()
		if p.curIs(lexer.SEMICOLON) || p.curIs(lexer.COMMA) {
			continue
		}
		msp := p.curSpan()
		mname := p.intern(p.cur.Literal)
		var value ast.Expr
		var args []ast.Expr
		if p.peekIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			value = p.parseExpr(ASSIGNMENT)
		} else if p.peekIs(lexer.LPAREN) {
			rich = true
			p.nextToken()
			args = p.parseExprList(lexer.RPAREN)
		}
		members = append(members, ast.EnumMember{Name: mname, Value: value, Args: args, Sp: p.spanFrom(msp)})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.EnumDecl{Name: name, Members: members, Rich: rich, Fields: fields, Exported: exported, Sp: p.spanFrom(sp)}
}
