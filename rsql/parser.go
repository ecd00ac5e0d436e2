package rsql

import (
	"io"
	"strings"

	"github.com/rulego/udfsql/types"
)

// Parser 递归下降解析器，每次调用 Next 解析一条语句
type Parser struct {
	lexer *Lexer
	input string
	cur   Token
	peek  Token
}

func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		input: input,
	}
	// 读取两个 token，填充 cur 和 peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses exactly one statement. A trailing semicolon is allowed.
func Parse(input string) (Statement, error) {
	p := NewParser(input)
	stmt, err := p.Next()
	if err != nil {
		if err == io.EOF {
			return nil, CreateSyntaxError("empty statement", p.cur)
		}
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, CreateUnexpectedTokenError(p.cur, "EOF")
	}
	return stmt, nil
}

// ParseScript parses every statement of a script, stopping at the first error.
func ParseScript(input string) ([]Statement, error) {
	p := NewParser(input)
	var stmts []Statement
	for {
		stmt, err := p.Next()
		if err == io.EOF {
			return stmts, nil
		}
		if err != nil {
			return stmts, err
		}
		stmts = append(stmts, stmt)
	}
}

// Next parses the next statement. It returns io.EOF when the input is
// exhausted. After a *ParseError the parser skips to the start of the next
// statement, so callers may keep calling Next to recover.
func (p *Parser) Next() (Statement, error) {
	for p.cur.Type == TokenSemicolon {
		p.nextToken()
	}
	if p.cur.Type == TokenEOF {
		return nil, io.EOF
	}

	start := p.cur
	stmt, err := p.parseStatement()
	if err == nil && p.cur.Type != TokenSemicolon && p.cur.Type != TokenEOF {
		err = CreateUnexpectedTokenError(p.cur, ";")
	}
	if err != nil {
		p.synchronize()
		return nil, err
	}

	source := strings.TrimSpace(p.input[start.Pos:p.cur.Pos])
	switch s := stmt.(type) {
	case *CreateFunctionStatement:
		s.Source = source
	case *SelectStatement:
		s.Source = source
	}
	if p.cur.Type == TokenSemicolon {
		p.nextToken()
	}
	return stmt, nil
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// synchronize 跳过 token 直到下一条语句的起点：分号后紧跟 CREATE/DROP/SELECT 或输入结束
func (p *Parser) synchronize() {
	for p.cur.Type != TokenEOF {
		if p.cur.Type == TokenSemicolon {
			switch p.peek.Type {
			case TokenCREATE, TokenDROP, TokenSELECT, TokenEOF:
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.cur
	if tok.Type != t {
		if tok.Type == TokenIllegal {
			return tok, CreateLexicalError(tok.Err, tok)
		}
		return tok, CreateUnexpectedTokenError(tok, t.String())
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.cur.Type {
	case TokenCREATE:
		return p.parseCreateFunction()
	case TokenDROP:
		return p.parseDropFunction()
	case TokenSELECT:
		return p.parseSelect()
	case TokenIllegal:
		return nil, CreateLexicalError(p.cur.Err, p.cur)
	default:
		return nil, CreateUnexpectedTokenError(p.cur, "CREATE", "DROP", "SELECT")
	}
}

// parseCreateFunction 解析
// CREATE [OR REPLACE] FUNCTION name(p type, ...) RETURNS type BEGIN stmt* END
func (p *Parser) parseCreateFunction() (*CreateFunctionStatement, error) {
	stmt := &CreateFunctionStatement{Tok: p.cur}
	p.nextToken() // 跳过 CREATE

	if p.cur.Type == TokenOR {
		p.nextToken()
		if _, err := p.expect(TokenREPLACE); err != nil {
			return nil, err
		}
		stmt.OrReplace = true
	}
	if _, err := p.expect(TokenFUNCTION); err != nil {
		return nil, err
	}

	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	stmt.Name = nameTok.Value

	if stmt.Params, err = p.parseParams(); err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenRETURNS); err != nil {
		return nil, err
	}
	if stmt.ReturnType, err = p.parseType(); err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenBEGIN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(false)
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	if p.cur.Type != TokenEND {
		return nil, CreateMissingTokenError("END", p.cur)
	}
	p.nextToken()
	if p.cur.Type == TokenIF {
		return nil, CreateUnexpectedTokenError(p.cur, ";")
	}
	return stmt, nil
}

func (p *Parser) parseParams() ([]ParamDecl, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var params []ParamDecl
	if p.cur.Type == TokenRParen {
		p.nextToken()
		return params, nil
	}
	seen := make(map[string]bool)
	for {
		nameTok, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(nameTok.Value)
		if seen[key] {
			return nil, CreateDuplicateParameterError(nameTok)
		}
		seen[key] = true

		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ParamDecl{Tok: nameTok, Name: nameTok.Value, Type: typ})

		if p.cur.Type == TokenComma {
			p.nextToken()
			continue
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return params, nil
	}
}

func (p *Parser) parseType() (types.DataType, error) {
	tok := p.cur
	if tok.Type != TokenIdent {
		if tok.Type == TokenEOF || tok.Type == TokenIllegal {
			return types.TypeNull, CreateMissingTokenError("type", tok)
		}
		return types.TypeNull, CreateUnknownTypeError(tok)
	}
	typ, ok := types.ParseDataType(tok.Value)
	if !ok {
		return types.TypeNull, CreateUnknownTypeError(tok)
	}
	p.nextToken()
	return typ, nil
}

// parseBlock 解析语句序列，遇到 END（以及 IF 内部的 ELSE）时停止，不消费终止 token
func (p *Parser) parseBlock(inIf bool) ([]ProcStatement, error) {
	stmts := []ProcStatement{}
	for {
		for p.cur.Type == TokenSemicolon {
			p.nextToken()
		}
		switch p.cur.Type {
		case TokenEND:
			return stmts, nil
		case TokenELSE:
			if inIf {
				return stmts, nil
			}
			return nil, CreateUnexpectedTokenError(p.cur, "IF", "RETURN", "END")
		case TokenEOF:
			if inIf {
				return nil, CreateMissingTokenError("END IF", p.cur)
			}
			return nil, CreateMissingTokenError("END", p.cur)
		case TokenIF:
			st, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, st)
		case TokenRETURN:
			st, err := p.parseReturn()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, st)
		case TokenIllegal:
			return nil, CreateLexicalError(p.cur.Err, p.cur)
		default:
			return nil, CreateUnexpectedTokenError(p.cur, "IF", "RETURN", "END")
		}

		// 语句之间用分号分隔；缺省时下一个 token 必须能开始新语句或结束块
		switch p.cur.Type {
		case TokenSemicolon, TokenEND, TokenELSE, TokenIF, TokenRETURN, TokenEOF:
		default:
			return nil, CreateUnexpectedTokenError(p.cur, ";")
		}
	}
}

// parseIf 解析 IF cond THEN stmt* [ELSE stmt*] END IF
func (p *Parser) parseIf() (*IfStatement, error) {
	stmt := &IfStatement{Tok: p.cur}
	p.nextToken() // 跳过 IF

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	stmt.Cond = cond

	if _, err := p.expect(TokenTHEN); err != nil {
		return nil, err
	}
	if stmt.Then, err = p.parseBlock(true); err != nil {
		return nil, err
	}
	if p.cur.Type == TokenELSE {
		p.nextToken()
		if stmt.Else, err = p.parseBlock(true); err != nil {
			return nil, err
		}
		if p.cur.Type == TokenELSE {
			return nil, CreateUnexpectedTokenError(p.cur, "END IF")
		}
	}

	// 此时 cur 一定是 END
	endTok := p.cur
	p.nextToken()
	if p.cur.Type != TokenIF {
		return nil, CreateMissingTokenError("END IF", endTok)
	}
	p.nextToken()
	return stmt, nil
}

func (p *Parser) parseReturn() (*ReturnStatement, error) {
	stmt := &ReturnStatement{Tok: p.cur}
	p.nextToken() // 跳过 RETURN
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

// parseDropFunction 解析 DROP FUNCTION [IF EXISTS] name
func (p *Parser) parseDropFunction() (*DropFunctionStatement, error) {
	stmt := &DropFunctionStatement{Tok: p.cur}
	p.nextToken()
	if _, err := p.expect(TokenFUNCTION); err != nil {
		return nil, err
	}
	if p.cur.Type == TokenIF {
		p.nextToken()
		if _, err := p.expect(TokenEXISTS); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	stmt.Name = nameTok.Value
	return stmt, nil
}

// parseSelect 解析 SELECT fields FROM table [WHERE cond]
func (p *Parser) parseSelect() (*SelectStatement, error) {
	stmt := &SelectStatement{Tok: p.cur}
	p.nextToken() // 跳过 SELECT

	if p.cur.Type == TokenAsterisk {
		stmt.Star = true
		p.nextToken()
	} else {
		for {
			field, err := p.parseField()
			if err != nil {
				return nil, err
			}
			stmt.Fields = append(stmt.Fields, field)
			if p.cur.Type != TokenComma {
				break
			}
			p.nextToken()
		}
	}

	if _, err := p.expect(TokenFROM); err != nil {
		return nil, err
	}
	tableTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	stmt.From = tableTok.Value

	if p.cur.Type == TokenWHERE {
		p.nextToken()
		if stmt.Where, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseField() (Field, error) {
	e, err := p.parseExpr()
	if err != nil {
		return Field{}, err
	}
	field := Field{Expr: e}
	switch p.cur.Type {
	case TokenAS:
		p.nextToken()
		aliasTok := p.cur
		if aliasTok.Type != TokenIdent && aliasTok.Type != TokenString {
			return Field{}, CreateUnexpectedTokenError(aliasTok, "alias")
		}
		field.Alias = aliasTok.Value
		p.nextToken()
	case TokenIdent:
		// 省略 AS 的别名
		field.Alias = p.cur.Value
		p.nextToken()
	}
	return field, nil
}
