package ginja

import (
	"github.com/juju/errors"
)

// Pratt (precedence-climbing) expression parser. spec.md's Design Notes
// observe that the original registers parselets under stringified
// token-kind names and that "a reimplementation should replace the string
// key with a direct enum-indexed array" — this is exactly that
// substitution, grounded on original_source/src/parser.c's
// prefix_fns/infix_fns/precedences hmap registries and its
// parser_parse_expression climbing loop.

// precedence levels, low to high (spec.md §4.2 table).
type precedence int

const (
	precLowest precedence = iota
	precEquals
	precCompare
	precSum
	precProduct
	precPrefix
	precIndex
)

type prefixParseFn func(p *Parser) Expr
type infixParseFn func(p *Parser, left Expr) Expr

var prefixParseFns [tokenTypeCount]prefixParseFn
var infixParseFns [tokenTypeCount]infixParseFn
var precedences [tokenTypeCount]precedence

func init() {
	prefixParseFns[IDENT] = parseIdentifier
	prefixParseFns[INT] = parseIntLiteral
	prefixParseFns[TRUE] = parseBoolLiteral
	prefixParseFns[FALSE] = parseBoolLiteral
	prefixParseFns[STRING] = parseStringLiteral
	prefixParseFns[LPAREN] = parseGroupedExpr
	prefixParseFns[BANG] = parsePrefixExpr
	prefixParseFns[MINUS] = parsePrefixExpr
	prefixParseFns[NOT] = parsePrefixExpr

	infixParseFns[PLUS] = parseInfixExpr
	infixParseFns[MINUS] = parseInfixExpr
	infixParseFns[ASTERISK] = parseInfixExpr
	infixParseFns[SLASH] = parseInfixExpr
	infixParseFns[LT] = parseInfixExpr
	infixParseFns[GT] = parseInfixExpr
	infixParseFns[LTE] = parseInfixExpr
	infixParseFns[GTE] = parseInfixExpr
	infixParseFns[EQ] = parseInfixExpr
	infixParseFns[NOTEQ] = parseInfixExpr
	infixParseFns[AND] = parseInfixExpr
	infixParseFns[OR] = parseInfixExpr
	infixParseFns[DOT] = parseMemberExpr
	infixParseFns[LBRACKET] = parseIndexExpr

	precedences[EQ] = precEquals
	precedences[NOTEQ] = precEquals
	precedences[LT] = precCompare
	precedences[GT] = precCompare
	precedences[LTE] = precCompare
	precedences[GTE] = precCompare
	precedences[AND] = precCompare
	precedences[OR] = precCompare
	precedences[PLUS] = precSum
	precedences[MINUS] = precSum
	precedences[ASTERISK] = precProduct
	precedences[SLASH] = precProduct
	precedences[DOT] = precIndex
	precedences[LBRACKET] = precIndex
}

func peekPrecedence(p *Parser) precedence {
	t := p.current().Type
	if int(t) < len(precedences) {
		return precedences[t]
	}
	return precLowest
}

// parseExpression climbs until it meets an operator at or below minPrec, or
// a delimiter that can never be part of an expression ('%' or '}') — the
// expression sub-language never spills past its closing delimiter
// (spec.md §4.2).
func (p *Parser) parseExpression(minPrec precedence) Expr {
	tok := p.current()
	prefix := prefixParseFns[tok.Type]
	if prefix == nil {
		p.errorf(tok, "no prefix parse function for %s", tok.Type)
		p.advance()
		return nil
	}
	left := prefix(p)

	for {
		tok := p.current()
		if tok.Type == PERCENT || tok.Type == RBRACE || tok.Type == EOF {
			break
		}
		infix := infixParseFns[tok.Type]
		if infix == nil || minPrec >= peekPrecedence(p) {
			break
		}
		left = infix(p, left)
	}
	return left
}

func parseIdentifier(p *Parser) Expr {
	tok := p.current()
	p.advance()
	return &Identifier{Name: tok.Literal, Tok: tok}
}

func parseIntLiteral(p *Parser) Expr {
	tok := p.current()
	p.advance()
	v, err := parseSignedInt64(tok.Literal)
	if err != nil {
		wrapped := errors.Annotatef(err, "invalid integer literal %q", tok.Literal)
		p.errorf(tok, "%s", wrapped)
		return &IntLiteral{Value: 0, Tok: tok}
	}
	return &IntLiteral{Value: v, Tok: tok}
}

// parseSignedInt64 parses a run of ASCII digits as a signed 64-bit integer;
// overflow is an error (spec.md §4.2: "overflow or trailing garbage is an
// error"). The lexer only ever emits all-digit INT literals, so trailing
// garbage cannot occur here, but overflow must still be checked.
func parseSignedInt64(lit string) (int64, error) {
	const maxInt64 = int64(1<<63 - 1)
	var v int64
	for i := 0; i < len(lit); i++ {
		d := int64(lit[i] - '0')
		if v > (maxInt64-d)/10 {
			return 0, errOverflow
		}
		v = v*10 + d
	}
	return v, nil
}

func parseBoolLiteral(p *Parser) Expr {
	tok := p.current()
	p.advance()
	return &BoolLiteral{Value: tok.Type == TRUE, Tok: tok}
}

func parseStringLiteral(p *Parser) Expr {
	tok := p.current()
	p.advance()
	return &StringLiteral{Value: stripQuotes(tok.Literal), Tok: tok}
}

func parseGroupedExpr(p *Parser) Expr {
	p.advance() // consume '('
	expr := p.parseExpression(precLowest)
	if !p.expect(RPAREN) {
		return expr
	}
	return expr
}

func parsePrefixExpr(p *Parser) Expr {
	tok := p.current()
	p.advance()
	right := p.parseExpression(precPrefix)
	return &PrefixExpr{Op: tok.Type, Right: right, Tok: tok}
}

func parseInfixExpr(p *Parser, left Expr) Expr {
	tok := p.current()
	prec := peekPrecedence(p)
	p.advance()
	right := p.parseExpression(prec)
	return &InfixExpr{Left: left, Op: tok.Type, Right: right, Tok: tok}
}

// parseMemberExpr parses `left.IDENT`. The left operand must already be an
// identifier, member, or index expression — never a literal (spec.md
// §4.2).
func parseMemberExpr(p *Parser, left Expr) Expr {
	tok := p.current() // '.'
	if !isAssignableLeft(left) {
		p.errorf(tok, "left-hand side of '.' must be an identifier, member, or index expression")
	}
	p.advance()
	keyTok := p.current()
	if keyTok.Type != IDENT {
		p.errorf(keyTok, "expected identifier after '.', got %s", keyTok.Type)
		return left
	}
	p.advance()
	return &MemberExpr{Left: left, Key: &Identifier{Name: keyTok.Literal, Tok: keyTok}, Tok: tok}
}

// parseIndexExpr parses `left[EXPR]`, subject to the same left-shape
// constraint as member access.
func parseIndexExpr(p *Parser, left Expr) Expr {
	tok := p.current() // '['
	if !isAssignableLeft(left) {
		p.errorf(tok, "left-hand side of '[' must be an identifier, member, or index expression")
	}
	p.advance()
	key := p.parseExpression(precLowest)
	p.expect(RBRACKET)
	return &IndexExpr{Left: left, Key: key, Tok: tok}
}
