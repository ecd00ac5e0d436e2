package rsql

import (
	"fmt"
	"strconv"
)

// ParseExpr parses a standalone expression, e.g. a WHERE predicate.
func ParseExpr(input string) (Expr, error) {
	p := NewParser(input)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, CreateUnexpectedTokenError(p.cur, "EOF")
	}
	return e, nil
}

// 优先级从低到高：
//
//	OR
//	AND
//	NOT
//	= != <> < <= > >= IS [NOT] NULL
//	+ -
//	* /
//	一元 -
//	字面量、标识符、函数调用、括号
func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOR {
		opTok := p.cur
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{OpTok: opTok, Op: TokenOR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenAND {
		opTok := p.cur
		p.nextToken()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{OpTok: opTok, Op: TokenAND, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.cur.Type == TokenNOT {
		opTok := p.cur
		p.nextToken()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{OpTok: opTok, Op: TokenNOT, X: x}, nil
	}
	return p.parseComparison()
}

func isComparison(t TokenType) bool {
	switch t {
	case TokenEQ, TokenNE, TokenLT, TokenLE, TokenGT, TokenGE:
		return true
	}
	return false
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case isComparison(p.cur.Type):
			opTok := p.cur
			p.nextToken()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{OpTok: opTok, Op: opTok.Type, Left: left, Right: right}
		case p.cur.Type == TokenIS:
			p.nextToken()
			not := false
			if p.cur.Type == TokenNOT {
				not = true
				p.nextToken()
			}
			if _, err := p.expect(TokenNULL); err != nil {
				return nil, err
			}
			left = &IsNullExpr{X: left, Not: not}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		opTok := p.cur
		p.nextToken()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{OpTok: opTok, Op: opTok.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenAsterisk || p.cur.Type == TokenSlash {
		opTok := p.cur
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{OpTok: opTok, Op: opTok.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.cur.Type != TokenMinus {
		return p.parsePrimary()
	}
	opTok := p.cur
	p.nextToken()
	// -123 直接折叠为负数字面量，保证能表示 int64 最小值
	if p.cur.Type == TokenNumber {
		numTok := p.cur
		n, err := strconv.ParseInt("-"+numTok.Value, 10, 64)
		if err != nil {
			return nil, invalidNumber(numTok)
		}
		p.nextToken()
		return &NumberLit{Tok: opTok, Value: n}, nil
	}
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{OpTok: opTok, Op: TokenMinus, X: x}, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.cur
	switch tok.Type {
	case TokenNumber:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, invalidNumber(tok)
		}
		p.nextToken()
		return &NumberLit{Tok: tok, Value: n}, nil
	case TokenString:
		p.nextToken()
		return &StringLit{Tok: tok, Value: tok.Value}, nil
	case TokenTRUE, TokenFALSE:
		p.nextToken()
		return &BoolLit{Tok: tok, Value: tok.Type == TokenTRUE}, nil
	case TokenNULL:
		p.nextToken()
		return &NullLit{Tok: tok}, nil
	case TokenIdent:
		p.nextToken()
		if p.cur.Type == TokenLParen {
			return p.parseCall(tok)
		}
		return &NameRef{Tok: tok, Name: tok.Value}, nil
	case TokenLParen:
		p.nextToken()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRParen {
			return nil, CreateMissingTokenError(")", p.cur)
		}
		p.nextToken()
		return e, nil
	case TokenIllegal:
		return nil, CreateLexicalError(tok.Err, tok)
	default:
		return nil, CreateUnexpectedTokenError(tok, "expression")
	}
}

// parseCall 解析函数调用参数列表，cur 指向左括号
func (p *Parser) parseCall(nameTok Token) (Expr, error) {
	call := &CallExpr{Tok: nameTok, Name: nameTok.Value}
	p.nextToken() // 跳过 (
	if p.cur.Type == TokenRParen {
		p.nextToken()
		return call, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		switch p.cur.Type {
		case TokenComma:
			p.nextToken()
		case TokenRParen:
			p.nextToken()
			return call, nil
		default:
			return nil, CreateUnexpectedTokenError(p.cur, ",", ")")
		}
	}
}

func invalidNumber(tok Token) *ParseError {
	return &ParseError{
		Type:     ErrorTypeInvalidNumber,
		Message:  fmt.Sprintf("Integer literal %s out of range", tok.Value),
		Position: tok.Pos,
		Line:     tok.Line,
		Column:   tok.Column,
		Token:    tok.Value,
	}
}
