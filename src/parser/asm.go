// asm.go parses the GCC-inspired inline assembly statement
// `asm("code" : outputs : inputs : clobbers)`.
package parser

import (
	"cplusc/src/ast"
	"cplusc/src/lexer"
)

// asmStmt parses an `asm(...)` statement. Each of the three colon-delimited sections
// after the code string is optional; output/input entries are `"constraint"
// (expression)`, clobbers are bare string literals.
func (p *Parser) asmStmt() *ast.Asm {
	loc := p.current().Location
	p.advance() // 'asm'
	p.expect(lexer.KindLParen)

	codeTok, ok := p.expect(lexer.KindStringLiteral)
	if !ok {
		p.errorf("expected assembly string literal after 'asm('")
	}

	stmt := &ast.Asm{Loc: ast.Loc{Location: loc}, Code: codeTok.Text}

	if p.accept(lexer.KindColon) {
		stmt.Outputs, stmt.OutputConstraints = p.asmOperandList()
	}
	if p.accept(lexer.KindColon) {
		stmt.Inputs, stmt.InputConstraints = p.asmOperandList()
	}
	if p.accept(lexer.KindColon) {
		stmt.Clobbers = p.asmClobberList()
	}

	p.expect(lexer.KindRParen)
	p.expect(lexer.KindSemicolon)
	return stmt
}

// asmOperandList parses a comma-separated list of `"constraint" (expression)` entries,
// stopping at the next ':' ')' or EOF.
func (p *Parser) asmOperandList() ([]ast.Expr, []string) {
	var exprs []ast.Expr
	var constraints []string

	if p.at(lexer.KindColon) || p.at(lexer.KindRParen) {
		return exprs, constraints
	}

	for !p.at(lexer.KindColon) && !p.at(lexer.KindRParen) && !p.at(lexer.KindEOF) {
		tok, ok := p.expect(lexer.KindStringLiteral)
		if !ok {
			p.errorf("expected a constraint string")
		}
		p.expect(lexer.KindLParen)
		expr := p.expression()
		p.expect(lexer.KindRParen)

		exprs = append(exprs, expr)
		constraints = append(constraints, tok.Text)

		if !p.accept(lexer.KindComma) {
			break
		}
	}
	return exprs, constraints
}

// asmClobberList parses a comma-separated list of bare clobber string literals.
func (p *Parser) asmClobberList() []string {
	var clobbers []string
	for !p.at(lexer.KindRParen) && !p.at(lexer.KindEOF) {
		tok, ok := p.expect(lexer.KindStringLiteral)
		if !ok {
			p.errorf("expected a clobber string")
		}
		clobbers = append(clobbers, tok.Text)
		if !p.accept(lexer.KindComma) {
			break
		}
	}
	return clobbers
}
