/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rsql

import (
	"sort"
	"strings"
)

// TokenType 词法单元类型
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenIdent
	TokenNumber
	TokenString

	// 运算符和分隔符
	TokenComma
	TokenSemicolon
	TokenLParen
	TokenRParen
	TokenPlus
	TokenMinus
	TokenAsterisk
	TokenSlash
	TokenEQ
	TokenNE
	TokenGT
	TokenLT
	TokenGE
	TokenLE

	// 关键字
	TokenSELECT
	TokenFROM
	TokenWHERE
	TokenAS
	TokenAND
	TokenOR
	TokenNOT
	TokenIS
	TokenNULL
	TokenTRUE
	TokenFALSE
	TokenCREATE
	TokenREPLACE
	TokenDROP
	TokenFUNCTION
	TokenRETURNS
	TokenBEGIN
	TokenEND
	TokenIF
	TokenTHEN
	TokenELSE
	TokenRETURN
	TokenEXISTS
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenIllegal:   "ILLEGAL",
	TokenIdent:     "identifier",
	TokenNumber:    "number",
	TokenString:    "string",
	TokenComma:     ",",
	TokenSemicolon: ";",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenAsterisk:  "*",
	TokenSlash:     "/",
	TokenEQ:        "=",
	TokenNE:        "!=",
	TokenGT:        ">",
	TokenLT:        "<",
	TokenGE:        ">=",
	TokenLE:        "<=",
}

// keywords 关键字表，键为大写形式
var keywords = map[string]TokenType{
	"SELECT":   TokenSELECT,
	"FROM":     TokenFROM,
	"WHERE":    TokenWHERE,
	"AS":       TokenAS,
	"AND":      TokenAND,
	"OR":       TokenOR,
	"NOT":      TokenNOT,
	"IS":       TokenIS,
	"NULL":     TokenNULL,
	"TRUE":     TokenTRUE,
	"FALSE":    TokenFALSE,
	"CREATE":   TokenCREATE,
	"REPLACE":  TokenREPLACE,
	"DROP":     TokenDROP,
	"FUNCTION": TokenFUNCTION,
	"RETURNS":  TokenRETURNS,
	"BEGIN":    TokenBEGIN,
	"END":      TokenEND,
	"IF":       TokenIF,
	"THEN":     TokenTHEN,
	"ELSE":     TokenELSE,
	"RETURN":   TokenRETURN,
	"EXISTS":   TokenEXISTS,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for kw := range keywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// String returns a readable name for error messages
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for kw, typ := range keywords {
		if typ == t {
			return kw
		}
	}
	return "UNKNOWN"
}

// Token 词法单元，带有位置信息
type Token struct {
	Type   TokenType
	Value  string
	Pos    int // 字节偏移
	Line   int
	Column int
	// Err 仅对 TokenIllegal 有效，说明非法原因
	Err string
}

// LookupIdent 根据标识符返回关键字类型，不是关键字则返回 TokenIdent
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return TokenIdent
}

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool {
	return t.Type >= TokenSELECT
}
