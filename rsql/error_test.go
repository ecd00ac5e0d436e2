package rsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseErrorMessage(t *testing.T) {
	tok := Token{Type: TokenIdent, Value: "FLOAT", Pos: 20, Line: 2, Column: 5}

	err := CreateUnknownTypeError(tok)
	msg := err.Error()
	assert.Contains(t, msg, "[UNKNOWN_TYPE]")
	assert.Contains(t, msg, "at line 2, column 5")
	assert.Contains(t, msg, "(found 'FLOAT')")
	assert.Contains(t, msg, "expected: INT, TEXT, BOOL")

	err = CreateMissingTokenError("END IF", Token{Type: TokenEOF, Pos: 40})
	assert.Equal(t, ErrorTypeMissingToken, err.Type)
	assert.Contains(t, err.Error(), "at position 40")

	err = CreateUnexpectedTokenError(Token{Type: TokenEOF, Line: 1, Column: 9}, ";")
	assert.Contains(t, err.Error(), "Unexpected token 'EOF'")
}

func TestFormatErrorContext(t *testing.T) {
	input := "SELECT a\nFROM t WHERE #"
	pos := len(input) - 1
	ctx := FormatErrorContext(input, pos, 20)
	assert.Equal(t, "FROM t WHERE #\n             ^", ctx)

	assert.Equal(t, "", FormatErrorContext(input, -1, 5))
	assert.Equal(t, "", FormatErrorContext(input, len(input), 5))
}
