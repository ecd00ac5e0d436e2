package rsql

import (
	"fmt"
	"strings"
)

// ErrorType 定义错误类型
type ErrorType int

const (
	ErrorTypeSyntax ErrorType = iota
	ErrorTypeLexical
	ErrorTypeUnexpectedToken
	ErrorTypeMissingToken
	ErrorTypeInvalidNumber
	ErrorTypeUnknownType
	ErrorTypeDuplicateParameter
)

// ParseError 解析错误，携带出错 token 的位置
type ParseError struct {
	Type     ErrorType
	Message  string
	Position int
	Line     int
	Column   int
	Token    string
	Expected []string
}

// Error 实现 error 接口
func (e *ParseError) Error() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("[%s] %s", e.getErrorTypeName(), e.Message))

	if e.Line > 0 && e.Column > 0 {
		builder.WriteString(fmt.Sprintf(" at line %d, column %d", e.Line, e.Column))
	} else if e.Position >= 0 {
		builder.WriteString(fmt.Sprintf(" at position %d", e.Position))
	}

	if e.Token != "" {
		builder.WriteString(fmt.Sprintf(" (found '%s')", e.Token))
	}

	if len(e.Expected) > 0 {
		builder.WriteString(fmt.Sprintf(", expected: %s", strings.Join(e.Expected, ", ")))
	}

	return builder.String()
}

// getErrorTypeName 获取错误类型名称
func (e *ParseError) getErrorTypeName() string {
	switch e.Type {
	case ErrorTypeSyntax:
		return "SYNTAX_ERROR"
	case ErrorTypeLexical:
		return "LEXICAL_ERROR"
	case ErrorTypeUnexpectedToken:
		return "UNEXPECTED_TOKEN"
	case ErrorTypeMissingToken:
		return "MISSING_TOKEN"
	case ErrorTypeInvalidNumber:
		return "INVALID_NUMBER"
	case ErrorTypeUnknownType:
		return "UNKNOWN_TYPE"
	case ErrorTypeDuplicateParameter:
		return "DUPLICATE_PARAMETER"
	default:
		return "UNKNOWN_ERROR"
	}
}

// CreateSyntaxError 创建语法错误
func CreateSyntaxError(message string, tok Token) *ParseError {
	return &ParseError{
		Type:     ErrorTypeSyntax,
		Message:  message,
		Position: tok.Pos,
		Line:     tok.Line,
		Column:   tok.Column,
		Token:    tok.Value,
	}
}

// CreateLexicalError 创建词法错误
func CreateLexicalError(message string, tok Token) *ParseError {
	return &ParseError{
		Type:     ErrorTypeLexical,
		Message:  message,
		Position: tok.Pos,
		Line:     tok.Line,
		Column:   tok.Column,
		Token:    tok.Value,
	}
}

// CreateUnexpectedTokenError 创建意外 token 错误
func CreateUnexpectedTokenError(tok Token, expected ...string) *ParseError {
	found := tok.Value
	if tok.Type == TokenEOF {
		found = "EOF"
	}
	return &ParseError{
		Type:     ErrorTypeUnexpectedToken,
		Message:  fmt.Sprintf("Unexpected token '%s'", found),
		Position: tok.Pos,
		Line:     tok.Line,
		Column:   tok.Column,
		Token:    found,
		Expected: expected,
	}
}

// CreateMissingTokenError 创建缺失 token 错误，如缺少 END IF
func CreateMissingTokenError(expected string, tok Token) *ParseError {
	return &ParseError{
		Type:     ErrorTypeMissingToken,
		Message:  fmt.Sprintf("Missing required token '%s'", expected),
		Position: tok.Pos,
		Line:     tok.Line,
		Column:   tok.Column,
		Token:    tok.Value,
		Expected: []string{expected},
	}
}

// CreateUnknownTypeError 创建未知类型错误
func CreateUnknownTypeError(tok Token) *ParseError {
	return &ParseError{
		Type:     ErrorTypeUnknownType,
		Message:  fmt.Sprintf("Unknown type '%s'", tok.Value),
		Position: tok.Pos,
		Line:     tok.Line,
		Column:   tok.Column,
		Token:    tok.Value,
		Expected: []string{"INT", "TEXT", "BOOL"},
	}
}

// CreateDuplicateParameterError 创建参数重名错误
func CreateDuplicateParameterError(tok Token) *ParseError {
	return &ParseError{
		Type:     ErrorTypeDuplicateParameter,
		Message:  fmt.Sprintf("Duplicate parameter '%s'", tok.Value),
		Position: tok.Pos,
		Line:     tok.Line,
		Column:   tok.Column,
		Token:    tok.Value,
	}
}

// FormatErrorContext 格式化错误上下文，用 ^ 指向出错位置
func FormatErrorContext(input string, position int, contextLength int) string {
	if position < 0 || position >= len(input) {
		return ""
	}

	start := position - contextLength
	if start < 0 {
		start = 0
	}
	// 只截取出错所在行
	if nl := strings.LastIndexByte(input[start:position], '\n'); nl >= 0 {
		start += nl + 1
	}

	end := position + contextLength
	if end > len(input) {
		end = len(input)
	}
	if nl := strings.IndexByte(input[position:end], '\n'); nl >= 0 {
		end = position + nl
	}

	context := input[start:end]
	pointer := strings.Repeat(" ", position-start) + "^"

	return fmt.Sprintf("%s\n%s", context, pointer)
}
