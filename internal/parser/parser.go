// Package parser implements a hand-written recursive-descent/Pratt parser
// that turns a token stream into the AST defined in internal/ast (spec §4.1).
// Binary/unary expression parsing uses precedence climbing; every other
// grammar production is plain recursive descent, split across files the
// way the teacher splits parser.go/parser_decl.go/parser_expr.go/
// parser_type.go/parser_pattern.go by concern.
package parser

import (
	"fmt"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Precedence levels, lowest to highest (spec §4.1 Expression grammar).
const (
	LOWEST int = iota
	ASSIGNMENT
	TERNARY
	PIPE
	LOGICAL_OR
	LOGICAL_AND
	BIT_OR
	BIT_XOR
	BIT_AND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	POWER
	UNARY
	CALL
	MEMBER
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:    ASSIGNMENT,
	lexer.PLUSEQ:    ASSIGNMENT,
	lexer.MINUSEQ:   ASSIGNMENT,
	lexer.STAREQ:    ASSIGNMENT,
	lexer.SLASHEQ:   ASSIGNMENT,
	lexer.QUESTION:  TERNARY,
	lexer.PIPEOP:    PIPE,
	lexer.OR:        LOGICAL_OR,
	lexer.AND:       LOGICAL_AND,
	lexer.PIPE:      BIT_OR,
	lexer.TILDE:     BIT_XOR,
	lexer.AMP:       BIT_AND,
	lexer.EQ:        EQUALITY,
	lexer.NEQ:       EQUALITY,
	lexer.LT:        RELATIONAL,
	lexer.GT:        RELATIONAL,
	lexer.LTE:       RELATIONAL,
	lexer.GTE:       RELATIONAL,
	lexer.IS:        RELATIONAL,
	lexer.INSTANCEOF: RELATIONAL,
	lexer.SHL:       SHIFT,
	lexer.SHR:       SHIFT,
	lexer.PLUS:      ADDITIVE,
	lexer.MINUS:     ADDITIVE,
	lexer.STAR:      MULTIPLICATIVE,
	lexer.SLASH:     MULTIPLICATIVE,
	lexer.SLASHSLASH: MULTIPLICATIVE,
	lexer.PERCENT:   MULTIPLICATIVE,
	lexer.CARET:     POWER,
	lexer.LPAREN:    CALL,
	lexer.DOT:       MEMBER,
	lexer.QDOT:      MEMBER,
	lexer.LBRACKET:  MEMBER,
	lexer.AS:        RELATIONAL,
	lexer.BANG:      MEMBER,
}

// Parser turns a token stream into an *ast.Program. It recovers from a
// malformed statement by skipping to the next statement boundary so one
// syntax error doesn't abort the whole file (spec §4.1 error recovery).
type Parser struct {
	l     *lexer.Lexer
	file  string
	diags *diag.Handler
	in    *interner.Interner

	cur  lexer.Token
	peek lexer.Token

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser reading from l, reporting diagnostics into diags and
// interning identifiers into in. Every module in a compilation session
// shares one Interner so cross-module identifier comparisons by ID hold.
func New(l *lexer.Lexer, file string, diags *diag.Handler, in *interner.Interner) *Parser {
	p := &Parser{l: l, file: file, diags: diags, in: in}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:           p.parseIdentifier,
		lexer.INT:             p.parseIntLiteral,
		lexer.FLOAT:           p.parseFloatLiteral,
		lexer.STRING:          p.parseStringLiteral,
		lexer.TEMPLATE_STRING: p.parseTemplateLiteral,
		lexer.TRUE:            p.parseBoolLiteral,
		lexer.FALSE:           p.parseBoolLiteral,
		lexer.NIL:             p.parseNilLiteral,
		lexer.MINUS:           p.parseUnaryExpr,
		lexer.NOT:             p.parseUnaryExpr,
		lexer.TILDE:           p.parseUnaryExpr,
		lexer.TYPEOF:          p.parseUnaryExpr,
		lexer.LPAREN:          p.parseParenOrArrowExpr,
		lexer.LBRACKET:        p.parseArrayLiteral,
		lexer.LBRACE:          p.parseObjectLiteral,
		lexer.FUNCTION:        p.parseFunctionExpr,
		lexer.IF:              p.parseIfExpr,
		lexer.MATCH:           p.parseMatchExpr,
		lexer.NEW:             p.parseNewExpr,
		lexer.SELF:            p.parseSelfExpr,
		lexer.SUPER:           p.parseSuperExpr,
		lexer.TRY:             p.parseTryExpr,
		lexer.DOTDOTDOT:       p.parseSpreadExpr,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS: p.parseBinaryExpr, lexer.MINUS: p.parseBinaryExpr,
		lexer.STAR: p.parseBinaryExpr, lexer.SLASH: p.parseBinaryExpr,
		lexer.SLASHSLASH: p.parseBinaryExpr, lexer.PERCENT: p.parseBinaryExpr,
		lexer.CARET: p.parseBinaryExpr,
		lexer.EQ: p.parseBinaryExpr, lexer.NEQ: p.parseBinaryExpr,
		lexer.LT: p.parseBinaryExpr, lexer.GT: p.parseBinaryExpr,
		lexer.LTE: p.parseBinaryExpr, lexer.GTE: p.parseBinaryExpr,
		lexer.INSTANCEOF: p.parseBinaryExpr,
		lexer.AND: p.parseBinaryExpr, lexer.OR: p.parseBinaryExpr,
		lexer.AMP: p.parseBinaryExpr, lexer.PIPE: p.parseBinaryExpr,
		lexer.TILDE: p.parseBinaryExpr, lexer.SHL: p.parseBinaryExpr,
		lexer.SHR: p.parseBinaryExpr,
		lexer.ASSIGN: p.parseAssignExpr, lexer.PLUSEQ: p.parseAssignExpr,
		lexer.MINUSEQ: p.parseAssignExpr, lexer.STAREQ: p.parseAssignExpr,
		lexer.SLASHEQ: p.parseAssignExpr,
		lexer.QUESTION: p.parseConditionalExpr,
		lexer.PIPEOP:   p.parsePipeExpr,
		lexer.LPAREN:   p.parseCallExpr,
		lexer.DOT:      p.parseMemberExpr,
		lexer.QDOT:     p.parseOptionalMemberOrCallExpr,
		lexer.LBRACKET: p.parseIndexExpr,
		lexer.AS:       p.parseTypeAssertExpr,
		lexer.BANG:     p.parseErrorChainExpr,
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) curSpan() ast.Span {
	return ast.Span{ByteOffset: p.cur.ByteOffset, ByteLen: p.cur.ByteLen, Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) spanFrom(start ast.Span) ast.Span {
	end := p.cur.ByteOffset
	return ast.Span{ByteOffset: start.ByteOffset, ByteLen: end - start.ByteOffset, Line: start.Line, Column: start.Column}
}

// expect checks peek is t, advances onto it, and reports PAR001 otherwise.
func (p *Parser) expect(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(diag.PAR001, "expected %s, got %s (%q)", t, p.peek.Type, p.peek.Literal)
	return false
}

func (p *Parser) errorf(code, format string, args ...any) {
	if p.diags == nil {
		return
	}
	sp := p.curSpan()
	p.diags.Push(diag.Errorf(code, p.file, &sp, format, args...))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) intern(s string) interner.ID { return p.in.Intern(s) }

// Parse parses a full source file into a Program. Parsing never panics:
// any internal inconsistency is caught and reported as PAR001 so callers
// always get a Program back, possibly with diagnostics attached.
func (p *Parser) Parse() (prog *ast.Program) {
	start := p.curSpan()
	prog = &ast.Program{}
	defer func() {
		if r := recover(); r != nil {
			p.errorf(diag.PAR001, "internal parser error: %v", r)
		}
	}()

	for !p.curIs(lexer.EOF) {
		if s := p.parseStmt(); s != nil {
			prog.Stmts = append(prog.Stmts, s)
			p.nextToken()
		} else {
			p.syncToStmtBoundary()
		}
	}
	prog.Sp = p.spanFrom(start)
	return prog
}

// syncToStmtBoundary skips tokens until a likely statement start, so a
// single malformed statement doesn't cascade into spurious follow-on
// errors (spec §4.1 error recovery).
func (p *Parser) syncToStmtBoundary() {
	for !p.curIs(lexer.EOF) {
		switch p.cur.Type {
		case lexer.SEMICOLON:
			p.nextToken()
			return
		case lexer.CONST, lexer.LOCAL, lexer.FUNCTION, lexer.CLASS,
			lexer.INTERFACE, lexer.ENUM, lexer.TYPE, lexer.IMPORT,
			lexer.EXPORT, lexer.IF, lexer.WHILE, lexer.FOR, lexer.RETURN:
			return
		}
		p.nextToken()
	}
}

func (p *Parser) String() string {
	return fmt.Sprintf("Parser{cur: %s, peek: %s}", p.cur, p.peek)
}
