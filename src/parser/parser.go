// Package parser implements a recursive-descent parser over a fixed-width lookahead
// ring buffer pulled synchronously from the lexer, with diagnostics reported through
// util.Engine.
package parser

import (
	"cplusc/src/lexer"
	"cplusc/src/util"
)

// DefaultLookahead and MinLookahead bound the parser's lookahead ring buffer size.
const (
	DefaultLookahead = 50
	MinLookahead = 5
)

// Parser drives recursive-descent parsing over a fixed-width lookahead window onto
// lex's token stream.
type Parser struct {
	lex *lexer.Lexer
	diag *util.Engine

	ring []lexer.Token // ring[0] is current(); ring[n] is peek(n)

	// retired holds every token that has scrolled out of the ring, in consumption
	// order. AST nodes copy token lexemes into their own fields, so nothing in Go
	// actually aliases into this slice; it is kept only so debugging/diagnostic code
	// can walk the full consumed stream.
	retired []lexer.Token
}

// New returns a Parser over lex with the default lookahead window.
func New(lex *lexer.Lexer, diag *util.Engine) *Parser {
	return NewSized(lex, diag, DefaultLookahead)
}

// NewSized returns a Parser over lex with a lookahead window of size tokens, clamped
// to MinLookahead.
func NewSized(lex *lexer.Lexer, diag *util.Engine, size int) *Parser {
	if size < MinLookahead {
		size = MinLookahead
	}
	p := &Parser{lex: lex, diag: diag, ring: make([]lexer.Token, size)}
	for i := range p.ring {
		p.ring[i] = lex.NextToken()
	}
	return p
}

// current returns the token at the head of the lookahead window.
func (p *Parser) current() lexer.Token {
	return p.ring[0]
}

// peek returns the token n slots ahead of current(). peek(0) == current().
func (p *Parser) peek(n int) lexer.Token {
	if n < 0 {
		n = 0
	}
	if n >= len(p.ring) {
		n = len(p.ring) - 1
	}
	return p.ring[n]
}

// advance retires current(), shifts the window, and pulls one new token from the
// lexer to refill it.
func (p *Parser) advance() lexer.Token {
	retired := p.ring[0]
	p.retired = append(p.retired, retired)
	copy(p.ring, p.ring[1:])
	p.ring[len(p.ring)-1] = p.lex.NextToken()
	return retired
}

// at reports whether current() has kind k.
func (p *Parser) at(k lexer.Kind) bool {
	return p.current().Kind == k
}

// accept consumes current() and returns true if it has kind k, otherwise leaves the
// window untouched and returns false.
func (p *Parser) accept(k lexer.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes current() if it has kind k. On mismatch it reports a diagnostic and
// does NOT advance, so callers can attempt error recovery.
func (p *Parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.errorf("unexpected token %q", p.current().Text)
	return lexer.Token{}, false
}

func (p *Parser) errorf(format string, args...interface{}) {
	p.diag.Report(util.Error, p.current().Location, format, args...)
}

// recoverTo advances past tokens until one of kinds (inclusive) or EOF, used after a
// parse error to resynchronise at a statement or declaration boundary.
func (p *Parser) recoverTo(kinds...lexer.Kind) {
	for {
		if p.at(lexer.KindEOF) {
			return
		}
		for _, k := range kinds {
			if p.at(k) {
				return
			}
		}
		p.advance()
	}
}
