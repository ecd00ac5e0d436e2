package rsql

import "strings"

// Lexer 将 SQL 文本切分为 Token，跳过空白和注释
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
	line    int
	column  int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// NextToken returns the next token, or a TokenEOF token at end of input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	start := Token{Pos: l.pos, Line: l.line, Column: l.column}
	tok := func(t TokenType, v string) Token {
		start.Type = t
		start.Value = v
		return start
	}
	illegal := func(v, reason string) Token {
		start.Type = TokenIllegal
		start.Value = v
		start.Err = reason
		return start
	}

	switch l.ch {
	case 0:
		return tok(TokenEOF, "")
	case ',':
		l.readChar()
		return tok(TokenComma, ",")
	case ';':
		l.readChar()
		return tok(TokenSemicolon, ";")
	case '(':
		l.readChar()
		return tok(TokenLParen, "(")
	case ')':
		l.readChar()
		return tok(TokenRParen, ")")
	case '+':
		l.readChar()
		return tok(TokenPlus, "+")
	case '-':
		l.readChar()
		return tok(TokenMinus, "-")
	case '*':
		l.readChar()
		return tok(TokenAsterisk, "*")
	case '/':
		l.readChar()
		return tok(TokenSlash, "/")
	case '=':
		l.readChar()
		// 兼容 == 写法
		if l.ch == '=' {
			l.readChar()
		}
		return tok(TokenEQ, "=")
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return tok(TokenGE, ">=")
		}
		l.readChar()
		return tok(TokenGT, ">")
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			l.readChar()
			return tok(TokenLE, "<=")
		case '>':
			l.readChar()
			l.readChar()
			return tok(TokenNE, "<>")
		}
		l.readChar()
		return tok(TokenLT, "<")
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return tok(TokenNE, "!=")
		}
	case '\'':
		s, ok := l.readString()
		if !ok {
			return illegal(s, "unterminated string literal")
		}
		return tok(TokenString, s)
	case '"', '`':
		quote := l.ch
		s, ok := l.readQuotedIdent(quote)
		if !ok {
			return illegal(s, "unterminated quoted identifier")
		}
		return tok(TokenIdent, s)
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return tok(LookupIdent(ident), ident)
	}

	if isDigit(l.ch) {
		num := l.readNumber()
		if isLetter(l.ch) {
			// 形如 12abc 的非法数字
			num += l.readIdentifier()
			return illegal(num, "invalid number literal")
		}
		return tok(TokenNumber, num)
	}

	ch := l.ch
	l.readChar()
	return illegal(string(ch), "unexpected character")
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

func (l *Lexer) readNumber() string {
	pos := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readString 读取单引号字符串，两个连续单引号表示一个单引号
func (l *Lexer) readString() (string, bool) {
	var sb strings.Builder
	l.readChar() // 跳过开头单引号
	for {
		switch l.ch {
		case 0:
			return sb.String(), false
		case '\'':
			if l.peekChar() == '\'' {
				sb.WriteByte('\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // 跳过结尾单引号
			return sb.String(), true
		default:
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) readQuotedIdent(quote byte) (string, bool) {
	l.readChar()
	pos := l.pos
	for l.ch != quote {
		if l.ch == 0 {
			return l.input[pos:l.pos], false
		}
		l.readChar()
	}
	s := l.input[pos:l.pos]
	l.readChar()
	return s, true
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
