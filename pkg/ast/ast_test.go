package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axarion/axscript/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.NumberLiteral{Value: 42},
		&ast.StringLiteral{Value: "hello"},
		&ast.BooleanLiteral{Value: true},
		&ast.NullLiteral{},
		&ast.UndefinedLiteral{},
		&ast.Identifier{Name: "x"},
		&ast.ArrayLiteral{},
		&ast.ObjectLiteral{},
		&ast.SwitchStatement{},
		&ast.TryStatement{},
	}

	expected := []string{
		"NumberLiteral", "StringLiteral", "BooleanLiteral", "NullLiteral",
		"UndefinedLiteral", "Identifier", "ArrayLiteral", "ObjectLiteral",
		"SwitchStatement", "TryStatement",
	}

	for i, node := range nodes {
		assert.Equal(t, expected[i], node.Kind(), "node %d", i)
	}
}

func TestLine(t *testing.T) {
	n := &ast.Identifier{Span: ast.Span{StartLine: 7, StartCol: 3}, Name: "y"}
	assert.Equal(t, 7, ast.Line(n))
}

func TestCompoundAssignBinary(t *testing.T) {
	tests := []struct {
		op   ast.AssignOp
		want ast.BinaryOp
		ok   bool
	}{
		{ast.OpAddAssign, ast.OpAdd, true},
		{ast.OpSubAssign, ast.OpSub, true},
		{ast.OpMulAssign, ast.OpMul, true},
		{ast.OpDivAssign, ast.OpDiv, true},
		{ast.OpModAssign, ast.OpMod, true},
		{ast.OpAssign, "", false},
	}
	for _, tt := range tests {
		got, ok := tt.op.Binary()
		assert.Equal(t, tt.ok, ok, string(tt.op))
		assert.Equal(t, tt.want, got, string(tt.op))
	}
}

func TestImportSpecLocalName(t *testing.T) {
	assert.Equal(t, "sin", (&ast.ImportSpec{Name: "sin"}).LocalName())
	assert.Equal(t, "s", (&ast.ImportSpec{Name: "sin", Alias: "s"}).LocalName())
}
