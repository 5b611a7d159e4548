package replgrammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"minic/internal/replgrammar"
)

func TestParseLineSingleInteger(t *testing.T) {
	expr, err := replgrammar.ParseLine("42")
	assert.NoError(t, err)
	assert.NotNil(t, expr.Left)
	assert.NotNil(t, expr.Left.Value.Number)
	assert.Equal(t, "42", *expr.Left.Value.Number)
	assert.Empty(t, expr.Ops)
}

func TestParseLineBinaryChain(t *testing.T) {
	expr, err := replgrammar.ParseLine("1 + 2 * 3")
	assert.NoError(t, err)
	assert.Len(t, expr.Ops, 2)
	assert.Equal(t, "+", expr.Ops[0].Operator)
	assert.Equal(t, "*", expr.Ops[1].Operator)
}

func TestParseLineParenthesizedAndUnary(t *testing.T) {
	expr, err := replgrammar.ParseLine("-(1 + 2)")
	assert.NoError(t, err)
	assert.NotNil(t, expr.Left.Operator)
	assert.Equal(t, "-", *expr.Left.Operator)
	assert.NotNil(t, expr.Left.Value.Parens)
}

func TestParseLineRejectsMalformedInput(t *testing.T) {
	_, err := replgrammar.ParseLine("1 +")
	assert.Error(t, err)
}
