// grammar.go implements one function per grammar production, in the same top-down
// order the BNF lists them.
package parser

import (
	"strconv"

	"cplusc/src/ast"
	"cplusc/src/lexer"
	"cplusc/src/source"
	"cplusc/src/util"
)

// Parse lexes and parses filename's already-preprocessed contents, reporting
// diagnostics to diag.
func Parse(filename, src string, diag *util.Engine) *ast.Program {
	lx := lexer.New(filename, src, diag)
	return New(lx, diag).Program()
}

var typeKeyword = map[lexer.Kind]ast.TypeKind{
	lexer.KindInt: ast.Int,
	lexer.KindLong: ast.Long,
	lexer.KindChar: ast.Char,
	lexer.KindFloat: ast.Float,
	lexer.KindDouble: ast.Double,
	lexer.KindString: ast.String,
	lexer.KindBool: ast.Boolean,
	lexer.KindVoid: ast.Void,
}

func typeKindFor(k lexer.Kind) (ast.TypeKind, bool) {
	t, ok := typeKeyword[k]
	return t, ok
}

func parseIntLiteral(text string) int {
	n, _ := strconv.Atoi(text)
	return n
}

// Program parses `(global_var | function)*` to EOF.
func (p *Parser) Program() *ast.Program {
	prog := &ast.Program{}
	for !p.at(lexer.KindEOF) {
		isConst := p.accept(lexer.KindConst)

		typeKind, ok := typeKindFor(p.current().Kind)
		if !ok {
			p.errorf("expected a type keyword, got %q", p.current().Text)
			p.recoverAtTopLevel()
			continue
		}
		loc := p.current().Location
		p.advance()

		arraySize := 0
		if p.accept(lexer.KindLBracket) {
			tok, ok := p.expect(lexer.KindIntegerLiteral)
			if ok {
				arraySize = parseIntLiteral(tok.Text)
			}
			p.expect(lexer.KindRBracket)
		}

		ptrLevel := 0
		for p.accept(lexer.KindStar) {
			ptrLevel++
		}

		nameTok, ok := p.expect(lexer.KindIdentifier)
		if !ok {
			p.recoverAtTopLevel()
			continue
		}

		switch {
		case p.at(lexer.KindLParen):
			prog.Functions = append(prog.Functions, p.functionRest(loc, typeKind, ptrLevel, nameTok.Text))
		case p.at(lexer.KindSemicolon) || p.at(lexer.KindAssign):
			prog.Globals = append(prog.Globals, p.globalVarRest(loc, isConst, typeKind, arraySize, ptrLevel, nameTok.Text))
		default:
			p.errorf("expected '(', ';' or '=' after declaration of %q", nameTok.Text)
			p.recoverAtTopLevel()
		}
	}
	return prog
}

// recoverAtTopLevel resynchronises after a malformed top-level declaration by
// skipping to the next ';' or '{', consuming whichever boundary it lands on.
func (p *Parser) recoverAtTopLevel() {
	p.recoverTo(lexer.KindSemicolon, lexer.KindLBrace)
	if p.at(lexer.KindSemicolon) {
		p.advance()
		return
	}
	if p.at(lexer.KindLBrace) {
		// A function body was reached with a malformed header: consume the whole
		// brace-balanced block so parsing can resume at the next declaration.
		depth := 0
		for !p.at(lexer.KindEOF) {
			if p.at(lexer.KindLBrace) {
				depth++
			} else if p.at(lexer.KindRBrace) {
				depth--
				if depth == 0 {
					p.advance()
					return
				}
			}
			p.advance()
		}
	}
}

// globalVarRest parses the tail of `global_var` after the type/array/pointer/name
// prefix has already been consumed.
func (p *Parser) globalVarRest(loc source.Location, isConst bool, t ast.TypeKind, arraySize, ptrLevel int, name string) *ast.GlobalVar {
	var init ast.Expr
	if p.accept(lexer.KindAssign) {
		init = p.expression()
	}
	p.expect(lexer.KindSemicolon)
	return &ast.GlobalVar{Loc: ast.Loc{Location: loc}, Type: t, PointerLevel: ptrLevel, ArraySize: arraySize, Name: name, Init: init, IsConst: isConst}
}

// functionRest parses the tail of `function` after the return type/pointer/name
// prefix has already been consumed.
func (p *Parser) functionRest(loc source.Location, ret ast.TypeKind, ptrLevel int, name string) *ast.Function {
	p.expect(lexer.KindLParen)
	var params []ast.Param
	if !p.at(lexer.KindRParen) {
		params = p.params()
	}
	p.expect(lexer.KindRParen)
	body := p.compound()
	return &ast.Function{Loc: ast.Loc{Location: loc}, Name: name, ReturnType: ret, ReturnPointerLevel: ptrLevel, Params: params, Body: body}
}

// params parses `param ("," param)*`.
func (p *Parser) params() []ast.Param {
	list := []ast.Param{p.param()}
	for p.accept(lexer.KindComma) {
		list = append(list, p.param())
	}
	return list
}

// param parses `"const"? type "*"* IDENT`.
func (p *Parser) param() ast.Param {
	isConst := p.accept(lexer.KindConst)
	loc := p.current().Location

	typeKind, ok := typeKindFor(p.current().Kind)
	if !ok {
		p.errorf("expected a type keyword in parameter, got %q", p.current().Text)
	} else {
		p.advance()
	}

	ptrLevel := 0
	for p.accept(lexer.KindStar) {
		ptrLevel++
	}
	nameTok, _ := p.expect(lexer.KindIdentifier)
	return ast.Param{Loc: ast.Loc{Location: loc}, Type: typeKind, PointerLevel: ptrLevel, Name: nameTok.Text, IsConst: isConst}
}

// statement parses `statement`.
func (p *Parser) statement() ast.Stmt {
	switch p.current().Kind {
	case lexer.KindReturn:
		return p.returnStmt()
	case lexer.KindIf:
		return p.ifStmt()
	case lexer.KindWhile:
		return p.whileStmt()
	case lexer.KindFor:
		return p.forStmt()
	case lexer.KindBreak:
		return p.breakStmt()
	case lexer.KindContinue:
		return p.continueStmt()
	case lexer.KindAsm:
		return p.asmStmt()
	case lexer.KindLBrace:
		return p.compound()
	default:
		if _, ok := typeKindFor(p.current().Kind); ok || p.at(lexer.KindConst) {
			return p.varDecl()
		}
		return p.exprStmt()
	}
}

func (p *Parser) returnStmt() *ast.Return {
	loc := p.current().Location
	p.advance()
	var e ast.Expr
	if !p.at(lexer.KindSemicolon) {
		e = p.expression()
	}
	p.expect(lexer.KindSemicolon)
	return &ast.Return{Loc: ast.Loc{Location: loc}, Expr: e}
}

func (p *Parser) ifStmt() *ast.If {
	loc := p.current().Location
	p.advance()
	p.expect(lexer.KindLParen)
	cond := p.expression()
	p.expect(lexer.KindRParen)
	then := p.statement()
	var els ast.Stmt
	if p.accept(lexer.KindElse) {
		els = p.statement()
	}
	return &ast.If{Loc: ast.Loc{Location: loc}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) whileStmt() *ast.While {
	loc := p.current().Location
	p.advance()
	p.expect(lexer.KindLParen)
	cond := p.expression()
	p.expect(lexer.KindRParen)
	body := p.statement()
	return &ast.While{Loc: ast.Loc{Location: loc}, Cond: cond, Body: body}
}

func (p *Parser) forStmt() *ast.For {
	loc := p.current().Location
	p.advance()
	p.expect(lexer.KindLParen)

	var init ast.Stmt
	switch {
	case p.at(lexer.KindSemicolon):
		p.advance()
	case func() bool { _, ok := typeKindFor(p.current().Kind); return ok }() || p.at(lexer.KindConst):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.at(lexer.KindSemicolon) {
		cond = p.expression()
	}
	p.expect(lexer.KindSemicolon)

	var incr ast.Expr
	if !p.at(lexer.KindRParen) {
		incr = p.expression()
	}
	p.expect(lexer.KindRParen)

	body := p.statement()
	return &ast.For{Loc: ast.Loc{Location: loc}, Init: init, Cond: cond, Incr: incr, Body: body}
}

func (p *Parser) breakStmt() *ast.Break {
	loc := p.current().Location
	p.advance()
	p.expect(lexer.KindSemicolon)
	return &ast.Break{Loc: ast.Loc{Location: loc}}
}

func (p *Parser) continueStmt() *ast.Continue {
	loc := p.current().Location
	p.advance()
	p.expect(lexer.KindSemicolon)
	return &ast.Continue{Loc: ast.Loc{Location: loc}}
}

// varDecl parses a local variable declaration: `"const"? type "[" NUMBER "]"? "*"*
// IDENT ("=" expression)? ";"`, reusing global_var's prefix shape.
func (p *Parser) varDecl() *ast.VarDecl {
	loc := p.current().Location
	isConst := p.accept(lexer.KindConst)

	typeKind, ok := typeKindFor(p.current().Kind)
	if !ok {
		p.errorf("expected a type keyword, got %q", p.current().Text)
	} else {
		p.advance()
	}

	arraySize := 0
	if p.accept(lexer.KindLBracket) {
		tok, ok := p.expect(lexer.KindIntegerLiteral)
		if ok {
			arraySize = parseIntLiteral(tok.Text)
		}
		p.expect(lexer.KindRBracket)
	}

	ptrLevel := 0
	for p.accept(lexer.KindStar) {
		ptrLevel++
	}

	nameTok, _ := p.expect(lexer.KindIdentifier)

	var init ast.Expr
	if p.accept(lexer.KindAssign) {
		init = p.expression()
	}
	p.expect(lexer.KindSemicolon)

	return &ast.VarDecl{
		Loc: ast.Loc{Location: loc}, Type: typeKind, PointerLevel: ptrLevel, ArraySize: arraySize,
		Name: nameTok.Text, Init: init, IsConst: isConst,
	}
}

func (p *Parser) compound() *ast.Compound {
	loc := p.current().Location
	p.expect(lexer.KindLBrace)
	var stmts []ast.Stmt
	for !p.at(lexer.KindRBrace) && !p.at(lexer.KindEOF) {
		stmts = append(stmts, p.statement())
	}
	p.expect(lexer.KindRBrace)
	return &ast.Compound{Loc: ast.Loc{Location: loc}, Stmts: stmts}
}

func (p *Parser) exprStmt() *ast.ExprStmt {
	loc := p.current().Location
	e := p.expression()
	p.expect(lexer.KindSemicolon)
	return &ast.ExprStmt{Loc: ast.Loc{Location: loc}, Expr: e}
}

// expression → assignment
func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment → logical_or ("=" assignment)?
func (p *Parser) assignment() ast.Expr {
	left := p.logicalOr()
	if p.at(lexer.KindAssign) {
		loc := left.Pos()
		p.advance()
		right := p.assignment()
		return &ast.Binary{Loc: ast.Loc{Location: loc}, Op: ast.Assign, Left: left, Right: right}
	}
	return left
}

// logical_or → logical_and ("||" logical_and)*
func (p *Parser) logicalOr() ast.Expr {
	left := p.logicalAnd()
	for p.at(lexer.KindOr) {
		loc := p.current().Location
		p.advance()
		right := p.logicalAnd()
		left = &ast.Binary{Loc: ast.Loc{Location: loc}, Op: ast.Or, Left: left, Right: right}
	}
	return left
}

// logical_and → equality ("&&" equality)*
func (p *Parser) logicalAnd() ast.Expr {
	left := p.equality()
	for p.at(lexer.KindAnd) {
		loc := p.current().Location
		p.advance()
		right := p.equality()
		left = &ast.Binary{Loc: ast.Loc{Location: loc}, Op: ast.And, Left: left, Right: right}
	}
	return left
}

// equality → relational (("==" | "!=") relational)*
func (p *Parser) equality() ast.Expr {
	left := p.relational()
	for p.at(lexer.KindEq) || p.at(lexer.KindNe) {
		op, loc := ast.Eq, p.current().Location
		if p.at(lexer.KindNe) {
			op = ast.Ne
		}
		p.advance()
		right := p.relational()
		left = &ast.Binary{Loc: ast.Loc{Location: loc}, Op: op, Left: left, Right: right}
	}
	return left
}

// relational → additive (("<" | ">" | "<=" | ">=") additive)*
func (p *Parser) relational() ast.Expr {
	left := p.additive()
	for {
		var op ast.BinaryOp
		switch p.current().Kind {
		case lexer.KindLt:
			op = ast.Lt
		case lexer.KindGt:
			op = ast.Gt
		case lexer.KindLe:
			op = ast.Le
		case lexer.KindGe:
			op = ast.Ge
		default:
			return left
		}
		loc := p.current().Location
		p.advance()
		right := p.additive()
		left = &ast.Binary{Loc: ast.Loc{Location: loc}, Op: op, Left: left, Right: right}
	}
}

// additive → term (("+" | "-") term)*
func (p *Parser) additive() ast.Expr {
	left := p.term()
	for p.at(lexer.KindPlus) || p.at(lexer.KindMinus) {
		op, loc := ast.Add, p.current().Location
		if p.at(lexer.KindMinus) {
			op = ast.Sub
		}
		p.advance()
		right := p.term()
		left = &ast.Binary{Loc: ast.Loc{Location: loc}, Op: op, Left: left, Right: right}
	}
	return left
}

// term → unary (("*" | "/" | "%") unary)*
func (p *Parser) term() ast.Expr {
	left := p.unary()
	for {
		var op ast.BinaryOp
		switch p.current().Kind {
		case lexer.KindStar:
			op = ast.Mul
		case lexer.KindSlash:
			op = ast.Div
		case lexer.KindPercent:
			op = ast.Mod
		default:
			return left
		}
		loc := p.current().Location
		p.advance()
		right := p.unary()
		left = &ast.Binary{Loc: ast.Loc{Location: loc}, Op: op, Left: left, Right: right}
	}
}

// unary → ("*" | "&" | "-" | "!")* postfix
func (p *Parser) unary() ast.Expr {
	var op ast.UnaryOp
	switch p.current().Kind {
	case lexer.KindStar:
		op = ast.Deref
	case lexer.KindAmp:
		op = ast.AddrOf
	case lexer.KindMinus:
		op = ast.Neg
	case lexer.KindNot:
		op = ast.Not
	default:
		return p.postfix()
	}
	loc := p.current().Location
	p.advance()
	operand := p.unary()
	return &ast.Unary{Loc: ast.Loc{Location: loc}, Op: op, Operand: operand}
}

// postfix → primary ("[" expression "]")*
func (p *Parser) postfix() ast.Expr {
	e := p.primary()
	for p.at(lexer.KindLBracket) {
		loc := e.Pos()
		p.advance()
		idx := p.expression()
		p.expect(lexer.KindRBracket)
		e = &ast.ArrayIndex{Loc: ast.Loc{Location: loc}, Array: e, Index: idx}
	}
	return e
}

// primary → NUMBER | STRING | IDENT ("(" args? ")")? | "(" expression ")"
func (p *Parser) primary() ast.Expr {
	tok := p.current()
	switch tok.Kind {
	case lexer.KindIntegerLiteral, lexer.KindDecimalLiteral:
		p.advance()
		return &ast.Number{Loc: ast.Loc{Location: tok.Location}, Text: tok.Text}
	case lexer.KindStringLiteral:
		p.advance()
		s := &ast.StringLiteral{Loc: ast.Loc{Location: tok.Location}, Text: tok.Text}
		s.SetExprType(ast.String, 0)
		return s
	case lexer.KindIdentifier:
		p.advance()
		if p.accept(lexer.KindLParen) {
			var args []ast.Expr
			if !p.at(lexer.KindRParen) {
				args = append(args, p.expression())
				for p.accept(lexer.KindComma) {
					args = append(args, p.expression())
				}
			}
			p.expect(lexer.KindRParen)
			return &ast.Call{Loc: ast.Loc{Location: tok.Location}, Name: tok.Text, Args: args}
		}
		return &ast.Var{Loc: ast.Loc{Location: tok.Location}, Name: tok.Text}
	case lexer.KindLParen:
		p.advance()
		e := p.expression()
		p.expect(lexer.KindRParen)
		return e
	default:
		p.errorf("expected an expression, got %q", tok.Text)
		p.advance()
		return &ast.Number{Loc: ast.Loc{Location: tok.Location}, Text: "0"}
	}
}
