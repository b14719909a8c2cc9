package parser

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/lexer"
)

// Type-expression precedence: only union (|) and intersection (&) bind at
// distinguishable levels; everything else is a primary type.
const (
	tLOWEST int = iota
	tUNION
	tINTERSECT
	tARRAY
)

// parseType parses a type expression (spec §3/§4.2 Type expressions).
// `cur` must already be positioned on the first token of the type.
func (p *Parser) parseType(prec int) ast.TypeExpr {
	left := p.parseTypePrimary()

	for {
		if p.peekIs(lexer.LBRACKET) && prec < tARRAY {
			p.nextToken()
			p.nextToken()
			p.expect(lexer.RBRACKET)
			sp := left.Span()
			left = &ast.ArrayType{Element: left, Sp: p.spanFrom(sp)}
			continue
		}
		if p.peekIs(lexer.PIPE) && prec < tUNION {
			sp := left.Span()
			members := []ast.TypeExpr{left}
			for p.peekIs(lexer.PIPE) {
				p.nextToken()
				p.nextToken()
				members = append(members, p.parseType(tUNION))
			}
			left = &ast.UnionType{Members: members, Sp: p.spanFrom(sp)}
			continue
		}
		if p.peekIs(lexer.AMP) && prec < tINTERSECT {
			sp := left.Span()
			members := []ast.TypeExpr{left}
			for p.peekIs(lexer.AMP) {
				p.nextToken()
				p.nextToken()
				members = append(members, p.parseType(tINTERSECT))
			}
			left = &ast.IntersectionType{Members: members, Sp: p.spanFrom(sp)}
			continue
		}
		break
	}
	return left
}

func (p *Parser) parseTypePrimary() ast.TypeExpr {
	sp := p.curSpan()
	switch p.cur.Type {
	case lexer.STRING_TYPE:
		return &ast.PrimitiveType{Kind: ast.PrimString, Sp: sp}
	case lexer.NUMBER:
		return &ast.PrimitiveType{Kind: ast.PrimNumber, Sp: sp}
	case lexer.INTEGER:
		return &ast.PrimitiveType{Kind: ast.PrimInteger, Sp: sp}
	case lexer.BOOLEAN:
		return &ast.PrimitiveType{Kind: ast.PrimBoolean, Sp: sp}
	case lexer.NIL:
		return &ast.PrimitiveType{Kind: ast.PrimNil, Sp: sp}
	case lexer.NEVER:
		return &ast.PrimitiveType{Kind: ast.PrimNever, Sp: sp}
	case lexer.UNKNOWN:
		return &ast.PrimitiveType{Kind: ast.PrimUnknown, Sp: sp}
	case lexer.VOID:
		return &ast.PrimitiveType{Kind: ast.PrimVoid, Sp: sp}
	case lexer.TABLE:
		return &ast.PrimitiveType{Kind: ast.PrimTable, Sp: sp}
	case lexer.COROUTINE:
		return &ast.PrimitiveType{Kind: ast.PrimCoroutine, Sp: sp}
	case lexer.STRING:
		return &ast.LiteralType{Kind: ast.LitString, Value: p.cur.Literal, Sp: sp}
	case lexer.INT:
		return &ast.LiteralType{Kind: ast.LitInt, Value: p.cur.Literal, Sp: sp}
	case lexer.TRUE, lexer.FALSE:
		return &ast.LiteralType{Kind: ast.LitBool, Value: p.cur.Type == lexer.TRUE, Sp: sp}
	case lexer.LPAREN:
		return p.parseFunctionOrParenType(sp)
	case lexer.LBRACKET:
		return p.parseTupleType(sp)
	case lexer.LBRACE:
		return p.parseObjectOrMappedType(sp)
	case lexer.KEYOF:
		p.nextToken()
		operand := p.parseType(tARRAY)
		return &ast.KeyofType{Operand: operand, Sp: p.spanFrom(sp)}
	case lexer.TYPEOF:
		p.nextToken()
		e := p.parseExpr(MEMBER)
		return &ast.TypeofType{Expr: e, Sp: p.spanFrom(sp)}
	case lexer.INFER:
		p.nextToken()
		name := p.intern(p.cur.Literal)
		return &ast.InferType{Name: name, Sp: p.spanFrom(sp)}
	case lexer.DOTDOTDOT:
		p.nextToken()
		elem := p.parseType(tARRAY)
		return &ast.VariadicType{Element: elem, Sp: p.spanFrom(sp)}
	case lexer.IDENT:
		return p.parseTypeRefOrConditional(sp)
	default:
		p.errorf("PAR001", "unexpected token %s in type position", p.cur.Type)
		return &ast.PrimitiveType{Kind: ast.PrimUnknown, Sp: sp}
	}
}

// parseTypeRefOrConditional parses `Name<Args...>`, a bare type-predicate
// `x is T`, or a conditional type `Check extends Extends ? True : False`.
func (p *Parser) parseTypeRefOrConditional(sp ast.Span) ast.TypeExpr {
	name := p.intern(p.cur.Literal)
	var targs []ast.TypeExpr
	if p.peekIs(lexer.LT) {
		p.nextToken()
		p.nextToken()
		targs = append(targs, p.parseType(tLOWEST))
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			targs = append(targs, p.parseType(tLOWEST))
		}
		p.expect(lexer.GT)
	}
	ref := &ast.TypeRef{Name: name, TypeArgs: targs, Sp: p.spanFrom(sp)}

	if p.peekIs(lexer.IS) {
		p.nextToken()
		p.nextToken()
		ty := p.parseType(tUNION)
		return &ast.TypePredicateType{Param: name, Type: ty, Sp: p.spanFrom(sp)}
	}
	if p.peekIs(lexer.EXTENDS) {
		p.nextToken()
		p.nextToken()
		ext := p.parseType(tUNION)
		if p.expect(lexer.QUESTION) {
			p.nextToken()
			trueT := p.parseType(tLOWEST)
			p.expect(lexer.COLON)
			p.nextToken()
			falseT := p.parseType(tLOWEST)
			return &ast.ConditionalType{Check: ref, Extends: ext, True: trueT, False: falseT, Sp: p.spanFrom(sp)}
		}
	}
	return ref
}

func (p *Parser) parseFunctionOrParenType(sp ast.Span) ast.TypeExpr {
	var params []ast.TypeExpr
	if !p.peekIs(lexer.RPAREN) {
		p.nextToken()
		params = append(params, p.parseType(tLOWEST))
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			params = append(params, p.parseType(tLOWEST))
		}
	}
	p.expect(lexer.RPAREN)
	if p.peekIs(lexer.ARROW) {
		p.nextToken()
		p.nextToken()
		ret := p.parseType(tLOWEST)
		return &ast.FunctionType{Params: params, Return: ret, Sp: p.spanFrom(sp)}
	}
	if len(params) == 1 {
		return params[0]
	}
	return &ast.TupleType{Elements: params, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseTupleType(sp ast.Span) ast.TypeExpr {
	var elems []ast.TypeExpr
	if p.peekIs(lexer.RBRACKET) {
		p.nextToken()
		return &ast.TupleType{Sp: p.spanFrom(sp)}
	}
	p.nextToken()
	elems = append(elems, p.parseType(tLOWEST))
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		elems = append(elems, p.parseType(tLOWEST))
	}
	p.expect(lexer.RBRACKET)
	return &ast.TupleType{Elements: elems, Sp: p.spanFrom(sp)}
}

// parseObjectOrMappedType parses `{ [K in Keys]: V }` mapped types and
// `{ prop: T; method(): R }`-style object types.
func (p *Parser) parseObjectOrMappedType(sp ast.Span) ast.TypeExpr {
	if p.peekIs(lexer.LBRACKET) {
		return p.tryParseMappedType(sp)
	}
	var props []ast.ObjectTypeProp
	var idxKey, idxVal ast.TypeExpr
	if p.peekIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.ObjectType{Sp: p.spanFrom(sp)}
	}
	for {
		p.nextToken()
		if p.curIs(lexer.RBRACE) {
			break
		}
		if p.curIs(lexer.LBRACKET) {
			p.nextToken()
			p.intern(p.cur.Literal)
			p.expect(lexer.COLON)
			p.nextToken()
			idxKey = p.parseType(tLOWEST)
			p.expect(lexer.RBRACKET)
			p.expect(lexer.COLON)
			p.nextToken()
			idxVal = p.parseType(tLOWEST)
		} else {
			readonly := false
			if p.curIs(lexer.READONLY) {
				readonly = true
				p.nextToken()
			}
			name := p.intern(p.cur.Literal)
			optional := false
			if p.peekIs(lexer.QUESTION) {
				optional = true
				p.nextToken()
			}
			isMethod := p.peekIs(lexer.LPAREN)
			var propType ast.TypeExpr
			if isMethod {
				p.nextToken()
				params := p.parseParamTypesOnly()
				p.expect(lexer.COLON)
				p.nextToken()
				ret := p.parseType(tLOWEST)
				propType = &ast.FunctionType{Params: params, Return: ret}
			} else {
				p.expect(lexer.COLON)
				p.nextToken()
				propType = p.parseType(tLOWEST)
			}
			props = append(props, ast.ObjectTypeProp{Name: name, Type: propType, Optional: optional, Readonly: readonly, IsMethod: isMethod})
		}
		if p.peekIs(lexer.COMMA) || p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		if p.peekIs(lexer.RBRACE) {
			p.nextToken()
			break
		}
	}
	return &ast.ObjectType{Props: props, IndexKeyType: idxKey, IndexValType: idxVal, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseParamTypesOnly() []ast.TypeExpr {
	var types []ast.TypeExpr
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return types
	}
	p.nextToken()
	param := p.parseParam()
	if param.Type != nil {
		types = append(types, param.Type)
	}
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		param := p.parseParam()
		if param.Type != nil {
			types = append(types, param.Type)
		}
	}
	p.expect(lexer.RPAREN)
	return types
}

func (p *Parser) tryParseMappedType(sp ast.Span) ast.TypeExpr {
	p.nextToken() // [
	p.nextToken()
	keyName := p.intern(p.cur.Literal)
	p.expect(lexer.IN)
	p.nextToken()
	keys := p.parseType(tLOWEST)
	p.expect(lexer.RBRACKET)
	optional := false
	if p.peekIs(lexer.QUESTION) {
		optional = true
		p.nextToken()
	}
	p.expect(lexer.COLON)
	p.nextToken()
	value := p.parseType(tLOWEST)
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	p.expect(lexer.RBRACE)
	return &ast.MappedType{KeyName: keyName, Keys: keys, Value: value, Optional: optional, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseOptionalTypeParams() []ast.TypeParam {
	if !p.peekIs(lexer.LT) {
		return nil
	}
	p.nextToken()
	var tps []ast.TypeParam
	p.nextToken()
	tps = append(tps, p.parseTypeParam())
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		tps = append(tps, p.parseTypeParam())
	}
	p.expect(lexer.GT)
	return tps
}

func (p *Parser) parseTypeParam() ast.TypeParam {
	name := p.intern(p.cur.Literal)
	var constraint, def ast.TypeExpr
	if p.peekIs(lexer.EXTENDS) {
		p.nextToken()
		p.nextToken()
		constraint = p.parseType(tLOWEST)
	}
	if p.peekIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		def = p.parseType(tLOWEST)
	}
	return ast.TypeParam{Name: name, Constraint: constraint, Default: def}
}
