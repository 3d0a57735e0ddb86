package ginja

import (
	. "gopkg.in/check.v1"
)

type LexerSuite struct{}

var _ = Suite(&LexerSuite{})

func tokenTypes(toks []*Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func (s *LexerSuite) TestContentVerbatim(c *C) {
	toks := Lex("t", "hello world")
	c.Assert(tokenTypes(toks), DeepEquals, []TokenType{CONTENT, EOF})
	c.Assert(toks[0].Literal, Equals, "hello world")
}

func (s *LexerSuite) TestVariableBlock(c *C) {
	toks := Lex("t", "{{ foo.bar }}")
	c.Assert(tokenTypes(toks), DeepEquals, []TokenType{
		LBRACE, LBRACE, IDENT, DOT, IDENT, RBRACE, RBRACE, EOF,
	})
}

func (s *LexerSuite) TestTagBlockReturnsToContentMode(c *C) {
	toks := Lex("t", "a{% if x %}b{% endif %}c")
	c.Assert(tokenTypes(toks), DeepEquals, []TokenType{
		CONTENT, LBRACE, PERCENT, IF, IDENT, PERCENT, RBRACE,
		CONTENT, LBRACE, PERCENT, ENDIF, PERCENT, RBRACE,
		CONTENT, EOF,
	})
}

func (s *LexerSuite) TestTwoCharOperators(c *C) {
	toks := Lex("t", "{{ a == b != c <= d >= e }}")
	c.Assert(tokenTypes(toks), DeepEquals, []TokenType{
		LBRACE, LBRACE,
		IDENT, EQ, IDENT, NOTEQ, IDENT, LTE, IDENT, GTE, IDENT,
		RBRACE, RBRACE, EOF,
	})
}

func (s *LexerSuite) TestLogicalKeywords(c *C) {
	toks := Lex("t", "{{ a and b or not c }}")
	c.Assert(tokenTypes(toks), DeepEquals, []TokenType{
		LBRACE, LBRACE,
		IDENT, AND, IDENT, OR, NOT, IDENT,
		RBRACE, RBRACE, EOF,
	})
}

func (s *LexerSuite) TestStringLiteralIncludesQuotes(c *C) {
	toks := Lex("t", `{{ "abc" }}`)
	c.Assert(toks[2].Type, Equals, STRING)
	c.Assert(toks[2].Literal, Equals, `"abc"`)
	c.Assert(stripQuotes(toks[2].Literal), Equals, "abc")
}

func (s *LexerSuite) TestUnterminatedStringIsIllegal(c *C) {
	toks := Lex("t", `{{ "abc }}`)
	c.Assert(toks[2].Type, Equals, ILLEGAL)
}

func (s *LexerSuite) TestIntegerLiteral(c *C) {
	toks := Lex("t", "{{ 12345 }}")
	c.Assert(toks[2].Type, Equals, INT)
	c.Assert(toks[2].Literal, Equals, "12345")
}

func (s *LexerSuite) TestLineColTracking(c *C) {
	toks := Lex("t", "a\n{{ b }}")
	// toks[0] = CONTENT "a\n" starting at line 1 col 1
	c.Assert(toks[0].Line, Equals, 1)
	c.Assert(toks[0].Col, Equals, 1)
	// the identifier 'b' is on line 2
	var ident *Token
	for _, t := range toks {
		if t.Type == IDENT {
			ident = t
		}
	}
	c.Assert(ident, NotNil)
	c.Assert(ident.Line, Equals, 2)
}
