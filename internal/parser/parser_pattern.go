package parser

import (
	"strconv"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/lexer"
)

// parsePattern parses a match-arm/destructuring pattern (spec §3 Patterns).
// `cur` is positioned on the pattern's first token on entry and exit.
func (p *Parser) parsePattern() ast.Pattern {
	left := p.parsePatternPrimary()
	for p.peekIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		ty := p.parseType(tLOWEST)
		left = &ast.TypedPattern{Inner: left, Type: ty, Sp: left.Span()}
	}
	if p.peekIs(lexer.PIPE) {
		sp := left.Span()
		alts := []ast.Pattern{left}
		for p.peekIs(lexer.PIPE) {
			p.nextToken()
			p.nextToken()
			alts = append(alts, p.parsePatternPrimary())
		}
		return &ast.OrPattern{Alternatives: alts, Sp: p.spanFrom(sp)}
	}
	return left
}

func (p *Parser) parsePatternPrimary() ast.Pattern {
	sp := p.curSpan()
	switch p.cur.Type {
	case lexer.IDENT:
		if p.cur.Literal == "_" {
			return &ast.WildcardPattern{Sp: sp}
		}
		return &ast.IdentPattern{Name: p.intern(p.cur.Literal), Sp: sp}
	case lexer.NIL:
		return &ast.LiteralPattern{Kind: ast.LitNil, Sp: sp}
	case lexer.TRUE, lexer.FALSE:
		return &ast.LiteralPattern{Kind: ast.LitBool, Value: p.cur.Type == lexer.TRUE, Sp: sp}
	case lexer.STRING:
		return &ast.LiteralPattern{Kind: ast.LitString, Value: p.cur.Literal, Sp: sp}
	case lexer.INT:
		v, _ := strconv.ParseInt(p.cur.Literal, 0, 64)
		return &ast.LiteralPattern{Kind: ast.LitInt, Value: v, Sp: sp}
	case lexer.MINUS:
		p.nextToken()
		v, _ := strconv.ParseInt(p.cur.Literal, 0, 64)
		return &ast.LiteralPattern{Kind: ast.LitInt, Value: -v, Sp: p.spanFrom(sp)}
	case lexer.LBRACKET:
		return p.parseArrayPattern(sp)
	case lexer.LBRACE:
		return p.parseObjectPattern(sp)
	default:
		p.errorf("PAR001", "unexpected token %s in pattern", p.cur.Type)
		return &ast.WildcardPattern{Sp: sp}
	}
}

func (p *Parser) parseArrayPattern(sp ast.Span) ast.Pattern {
	var elems []ast.Pattern
	var rest *ast.IdentPattern
	if p.peekIs(lexer.RBRACKET) {
		p.nextToken()
		return &ast.ArrayPattern{Sp: p.spanFrom(sp)}
	}
	for {
		p.nextToken()
		if p.curIs(lexer.DOTDOTDOT) {
			p.nextToken()
			id := &ast.IdentPattern{Name: p.intern(p.cur.Literal), Sp: p.curSpan()}
			rest = id
		} else {
			elems = append(elems, p.parsePattern())
		}
		if !p.peekIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekIs(lexer.RBRACKET) {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return &ast.ArrayPattern{Elements: elems, Rest: rest, Sp: p.spanFrom(sp)}
}

func (p *Parser) parseObjectPattern(sp ast.Span) ast.Pattern {
	var props []ast.ObjectPatternProp
	var rest *ast.IdentPattern
	if p.peekIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.ObjectPattern{Sp: p.spanFrom(sp)}
	}
	for {
		p.nextToken()
		if p.curIs(lexer.DOTDOTDOT) {
			p.nextToken()
			rest = &ast.IdentPattern{Name: p.intern(p.cur.Literal), Sp: p.curSpan()}
		} else {
			key := p.intern(p.cur.Literal)
			var value ast.Pattern = &ast.IdentPattern{Name: key, Sp: p.curSpan()}
			if p.peekIs(lexer.COLON) {
				p.nextToken()
				p.nextToken()
				value = p.parsePattern()
			}
			var def ast.Expr
			if p.peekIs(lexer.ASSIGN) {
				p.nextToken()
				p.nextToken()
				def = p.parseExpr(ASSIGNMENT)
			}
			props = append(props, ast.ObjectPatternProp{Key: key, Value: value, Default: def})
		}
		if !p.peekIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekIs(lexer.RBRACE) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.ObjectPattern{Props: props, Rest: rest, Sp: p.spanFrom(sp)}
}
