package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrlcore/vrlcore/pkg/ast"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

func TestParse_Literals(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"integer", "1"},
		{"float", "1.5"},
		{"string", `"hello"`},
		{"true", "true"},
		{"false", "false"},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, block.Nodes, 1)
			_, ok := block.Nodes[0].(*ast.Literal)
			assert.True(t, ok, "expected a Literal node, got %T", block.Nodes[0])
		})
	}
}

func TestParse_PathQuery(t *testing.T) {
	block, err := Parse(".foo.bar[0]")
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	query, ok := block.Nodes[0].(*ast.Query)
	require.True(t, ok, "expected a Query node, got %T", block.Nodes[0])
	assert.Equal(t, target.NewPath(target.Field("foo"), target.Field("bar"), target.Index(0)), query.Path)
}

func TestParse_RootPathQuery(t *testing.T) {
	block, err := Parse(".")
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	query, ok := block.Nodes[0].(*ast.Query)
	require.True(t, ok)
	assert.Empty(t, query.Path.Segments)
}

func TestParse_VariableAssignment(t *testing.T) {
	block, err := Parse("x = 1 + 2")
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	assign, ok := block.Nodes[0].(*ast.Assignment)
	require.True(t, ok, "expected an Assignment node, got %T", block.Nodes[0])
	assert.Equal(t, "x", assign.VariableName)
	assert.Nil(t, assign.Path)

	bin, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, vm.OpAdd, bin.Op)
}

func TestParse_PathAssignment(t *testing.T) {
	block, err := Parse(`.foo = "bar"`)
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	assign, ok := block.Nodes[0].(*ast.Assignment)
	require.True(t, ok)
	require.NotNil(t, assign.Path)
	assert.Equal(t, target.NewPath(target.Field("foo")), *assign.Path)
}

func TestParse_ErrorCoalescingAssignment(t *testing.T) {
	block, err := Parse(`x, err = parse_json(.raw)`)
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	assign, ok := block.Nodes[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "x", assign.VariableName)
	assert.Equal(t, "err", assign.ErrVar)
}

func TestParse_LogicalOperatorsDesugarToIfStatement(t *testing.T) {
	block, err := Parse("true && false")
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	_, ok := block.Nodes[0].(*ast.IfStatement)
	assert.True(t, ok, "&& should desugar to an IfStatement, got %T", block.Nodes[0])
}

func TestParse_IfElseIf(t *testing.T) {
	src := `if .x > 0 {
  y = 1
} else if .x < 0 {
  y = -1
} else {
  y = 0
}`
	block, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	ifStmt, ok := block.Nodes[0].(*ast.IfStatement)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Alternative)
	require.Len(t, ifStmt.Alternative.Nodes, 1)
	_, ok = ifStmt.Alternative.Nodes[0].(*ast.IfStatement)
	assert.True(t, ok, "else if should nest as an IfStatement inside Alternative")
}

func TestParse_FunctionCall(t *testing.T) {
	block, err := Parse(`upcase(.name)`)
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	call, ok := block.Nodes[0].(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "upcase", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParse_ArrayAndObjectLiterals(t *testing.T) {
	block, err := Parse(`{"a": 1, "b": [1, 2, 3]}`)
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	obj, ok := block.Nodes[0].(*ast.Object)
	require.True(t, ok)
	require.Len(t, obj.Keys, 2)

	arr, ok := obj.Values[1].(*ast.Array)
	require.True(t, ok)
	assert.Len(t, arr.Items, 3)
}

func TestParse_Abort(t *testing.T) {
	block, err := Parse(`abort "bad input"`)
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	abort, ok := block.Nodes[0].(*ast.Abort)
	require.True(t, ok)
	assert.Equal(t, "bad input", abort.Message)
}

func TestParse_UnaryOperators(t *testing.T) {
	block, err := Parse("!true")
	require.NoError(t, err)
	_, ok := block.Nodes[0].(*ast.Not)
	assert.True(t, ok)

	block, err = Parse("-1")
	require.NoError(t, err)
	_, ok = block.Nodes[0].(*ast.Negate)
	assert.True(t, ok)
}

func TestParse_MultipleStatementsNeedNewlines(t *testing.T) {
	_, err := Parse("x = 1 y = 2")
	assert.Error(t, err, "two statements on one line without a newline should fail to parse")
}

func TestParse_UnexpectedTokenError(t *testing.T) {
	_, err := Parse("x = ,")
	require.Error(t, err)
}

func TestParse_OperatorPrecedence(t *testing.T) {
	block, err := Parse("1 + 2 * 3")
	require.NoError(t, err)
	require.Len(t, block.Nodes, 1)

	bin, ok := block.Nodes[0].(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, vm.OpAdd, bin.Op)

	right, ok := bin.Right.(*ast.BinaryOp)
	require.True(t, ok, "multiplication should bind tighter, ending up as the right operand of +")
	assert.Equal(t, vm.OpMul, right.Op)
}
