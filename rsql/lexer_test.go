package rsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLexer 测试词法分析器的创建
func TestNewLexer(t *testing.T) {
	input := "SELECT * FROM items"
	lexer := NewLexer(input)

	require.NotNil(t, lexer)
	assert.Equal(t, input, lexer.input)
	assert.Equal(t, 1, lexer.line)
	assert.Equal(t, 1, lexer.column)
}

// TestLexerKeywords 测试关键字识别，大小写不敏感
func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"SELECT", []TokenType{TokenSELECT, TokenEOF}},
		{"select from where", []TokenType{TokenSELECT, TokenFROM, TokenWHERE, TokenEOF}},
		{"CREATE FUNCTION", []TokenType{TokenCREATE, TokenFUNCTION, TokenEOF}},
		{"RETURNS begin END", []TokenType{TokenRETURNS, TokenBEGIN, TokenEND, TokenEOF}},
		{"IF THEN ELSE END IF", []TokenType{TokenIF, TokenTHEN, TokenELSE, TokenEND, TokenIF, TokenEOF}},
		{"RETURN", []TokenType{TokenRETURN, TokenEOF}},
		{"AND OR NOT", []TokenType{TokenAND, TokenOR, TokenNOT, TokenEOF}},
		{"IS NULL TRUE false", []TokenType{TokenIS, TokenNULL, TokenTRUE, TokenFALSE, TokenEOF}},
		{"DROP IF EXISTS", []TokenType{TokenDROP, TokenIF, TokenEXISTS, TokenEOF}},
		{"int price_div_two", []TokenType{TokenIdent, TokenIdent, TokenEOF}},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			lexer := NewLexer(test.input)
			for i, expectedType := range test.expected {
				token := lexer.NextToken()
				assert.Equal(t, expectedType, token.Type, "token %d", i)
			}
		})
	}
}

// TestLexerOperators 测试运算符
func TestLexerOperators(t *testing.T) {
	input := "= == != <> < <= > >= + - * / ( ) , ;"
	expected := []struct {
		typ   TokenType
		value string
	}{
		{TokenEQ, "="}, {TokenEQ, "="}, {TokenNE, "!="}, {TokenNE, "<>"},
		{TokenLT, "<"}, {TokenLE, "<="}, {TokenGT, ">"}, {TokenGE, ">="},
		{TokenPlus, "+"}, {TokenMinus, "-"}, {TokenAsterisk, "*"}, {TokenSlash, "/"},
		{TokenLParen, "("}, {TokenRParen, ")"}, {TokenComma, ","}, {TokenSemicolon, ";"},
		{TokenEOF, ""},
	}
	lexer := NewLexer(input)
	for i, exp := range expected {
		tok := lexer.NextToken()
		assert.Equal(t, exp.typ, tok.Type, "token %d", i)
		assert.Equal(t, exp.value, tok.Value, "token %d", i)
	}
}

func TestLexerLiterals(t *testing.T) {
	lexer := NewLexer(`42 'adult' 'it''s' "Order Id" ` + "`price`")

	tok := lexer.NextToken()
	assert.Equal(t, TokenNumber, tok.Type)
	assert.Equal(t, "42", tok.Value)

	tok = lexer.NextToken()
	assert.Equal(t, TokenString, tok.Type)
	assert.Equal(t, "adult", tok.Value)

	tok = lexer.NextToken()
	assert.Equal(t, TokenString, tok.Type)
	assert.Equal(t, "it's", tok.Value)

	tok = lexer.NextToken()
	assert.Equal(t, TokenIdent, tok.Type)
	assert.Equal(t, "Order Id", tok.Value)

	tok = lexer.NextToken()
	assert.Equal(t, TokenIdent, tok.Type)
	assert.Equal(t, "price", tok.Value)
}

func TestLexerComments(t *testing.T) {
	input := `-- leading comment
SELECT /* inline
comment */ price -- trailing
FROM items`
	lexer := NewLexer(input)
	var got []TokenType
	for {
		tok := lexer.NextToken()
		got = append(got, tok.Type)
		if tok.Type == TokenEOF {
			break
		}
	}
	assert.Equal(t, []TokenType{TokenSELECT, TokenIdent, TokenFROM, TokenIdent, TokenEOF}, got)
}

func TestLexerPositions(t *testing.T) {
	lexer := NewLexer("SELECT a\n  FROM t")

	tok := lexer.NextToken()
	assert.Equal(t, 1, tok.Line)
	assert.Equal(t, 1, tok.Column)
	assert.Equal(t, 0, tok.Pos)

	tok = lexer.NextToken()
	assert.Equal(t, "a", tok.Value)
	assert.Equal(t, 1, tok.Line)
	assert.Equal(t, 8, tok.Column)

	tok = lexer.NextToken()
	assert.Equal(t, TokenFROM, tok.Type)
	assert.Equal(t, 2, tok.Line)
	assert.Equal(t, 3, tok.Column)
	assert.Equal(t, 11, tok.Pos)
}

func TestLexerIllegal(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"'open", "unterminated string literal"},
		{"12abc", "invalid number literal"},
		{"#", "unexpected character"},
		{"!", "unexpected character"},
		{`"open`, "unterminated quoted identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewLexer(tt.input).NextToken()
			assert.Equal(t, TokenIllegal, tok.Type)
			assert.Equal(t, tt.reason, tok.Err)
		})
	}
}
