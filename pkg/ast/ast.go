// Package ast defines the AXScript syntax tree.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// Line returns the 1-based line a node starts on.
func Line(n Node) int {
	return n.NodeSpan().StartLine
}

// BinaryOp represents an arithmetic or comparison operator.
type BinaryOp string

const (
	OpAdd       BinaryOp = "+"
	OpSub       BinaryOp = "-"
	OpMul       BinaryOp = "*"
	OpDiv       BinaryOp = "/"
	OpMod       BinaryOp = "%"
	OpGt        BinaryOp = ">"
	OpLt        BinaryOp = "<"
	OpGtEq      BinaryOp = ">="
	OpLtEq      BinaryOp = "<="
	OpEqEq      BinaryOp = "=="
	OpNeq       BinaryOp = "!="
	OpStrictEq  BinaryOp = "==="
	OpStrictNeq BinaryOp = "!=="
)

// LogicalOp represents a short-circuit operator.
type LogicalOp string

const (
	OpAnd LogicalOp = "&&"
	OpOr  LogicalOp = "||"
)

// UnaryOp represents a prefix operator.
type UnaryOp string

const (
	OpNeg    UnaryOp = "-"
	OpNot    UnaryOp = "!"
	OpTypeof UnaryOp = "typeof"
)

// AssignOp represents plain or compound assignment.
type AssignOp string

const (
	OpAssign    AssignOp = "="
	OpAddAssign AssignOp = "+="
	OpSubAssign AssignOp = "-="
	OpMulAssign AssignOp = "*="
	OpDivAssign AssignOp = "/="
	OpModAssign AssignOp = "%="
)

// Binary returns the arithmetic operator a compound assignment applies.
func (op AssignOp) Binary() (BinaryOp, bool) {
	switch op {
	case OpAddAssign:
		return OpAdd, true
	case OpSubAssign:
		return OpSub, true
	case OpMulAssign:
		return OpMul, true
	case OpDivAssign:
		return OpDiv, true
	case OpModAssign:
		return OpMod, true
	}
	return "", false
}

// UpdateOp is ++ or --.
type UpdateOp string

const (
	OpIncrement UpdateOp = "++"
	OpDecrement UpdateOp = "--"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type NumberLiteral struct {
	Span  Span
	Value float64
	Raw   string
}

func (n *NumberLiteral) Kind() string   { return "NumberLiteral" }
func (n *NumberLiteral) NodeSpan() Span { return n.Span }
func (n *NumberLiteral) exprNode()      {}

type StringLiteral struct {
	Span  Span
	Value string
}

func (n *StringLiteral) Kind() string   { return "StringLiteral" }
func (n *StringLiteral) NodeSpan() Span { return n.Span }
func (n *StringLiteral) exprNode()      {}

type BooleanLiteral struct {
	Span  Span
	Value bool
}

func (n *BooleanLiteral) Kind() string   { return "BooleanLiteral" }
func (n *BooleanLiteral) NodeSpan() Span { return n.Span }
func (n *BooleanLiteral) exprNode()      {}

type NullLiteral struct {
	Span Span
}

func (n *NullLiteral) Kind() string   { return "NullLiteral" }
func (n *NullLiteral) NodeSpan() Span { return n.Span }
func (n *NullLiteral) exprNode()      {}

type UndefinedLiteral struct {
	Span Span
}

func (n *UndefinedLiteral) Kind() string   { return "UndefinedLiteral" }
func (n *UndefinedLiteral) NodeSpan() Span { return n.Span }
func (n *UndefinedLiteral) exprNode()      {}

// --- Identifiers ---

type Identifier struct {
	Span Span
	Name string
}

func (n *Identifier) Kind() string   { return "Identifier" }
func (n *Identifier) NodeSpan() Span { return n.Span }
func (n *Identifier) exprNode()      {}

type ThisExpression struct {
	Span Span
}

func (n *ThisExpression) Kind() string   { return "ThisExpression" }
func (n *ThisExpression) NodeSpan() Span { return n.Span }
func (n *ThisExpression) exprNode()      {}

// SuperExpression appears only as a callee (`super(...)`) or member object (`super.m`).
type SuperExpression struct {
	Span Span
}

func (n *SuperExpression) Kind() string   { return "SuperExpression" }
func (n *SuperExpression) NodeSpan() Span { return n.Span }
func (n *SuperExpression) exprNode()      {}

// --- Collections ---

type ArrayLiteral struct {
	Span     Span
	Elements []Expr
}

func (n *ArrayLiteral) Kind() string   { return "ArrayLiteral" }
func (n *ArrayLiteral) NodeSpan() Span { return n.Span }
func (n *ArrayLiteral) exprNode()      {}

type Property struct {
	Span  Span
	Key   string
	Value Expr
}

func (n *Property) Kind() string   { return "Property" }
func (n *Property) NodeSpan() Span { return n.Span }

type ObjectLiteral struct {
	Span       Span
	Properties []*Property
}

func (n *ObjectLiteral) Kind() string   { return "ObjectLiteral" }
func (n *ObjectLiteral) NodeSpan() Span { return n.Span }
func (n *ObjectLiteral) exprNode()      {}

// --- Functions ---

// Param is a function parameter with an optional type annotation.
type Param struct {
	Span Span
	Name string
	Type string
}

func (n *Param) Kind() string   { return "Param" }
func (n *Param) NodeSpan() Span { return n.Span }

type FunctionExpression struct {
	Span       Span
	Name       string
	Params     []*Param
	ReturnType string
	Body       *Block
}

func (n *FunctionExpression) Kind() string   { return "FunctionExpression" }
func (n *FunctionExpression) NodeSpan() Span { return n.Span }
func (n *FunctionExpression) exprNode()      {}

// --- Operators ---

type BinaryExpression struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpression) Kind() string   { return "BinaryExpression" }
func (n *BinaryExpression) NodeSpan() Span { return n.Span }
func (n *BinaryExpression) exprNode()      {}

type LogicalExpression struct {
	Span  Span
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (n *LogicalExpression) Kind() string   { return "LogicalExpression" }
func (n *LogicalExpression) NodeSpan() Span { return n.Span }
func (n *LogicalExpression) exprNode()      {}

type UnaryExpression struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpression) Kind() string   { return "UnaryExpression" }
func (n *UnaryExpression) NodeSpan() Span { return n.Span }
func (n *UnaryExpression) exprNode()      {}

type UpdateExpression struct {
	Span   Span
	Op     UpdateOp
	Prefix bool
	Target Expr
}

func (n *UpdateExpression) Kind() string   { return "UpdateExpression" }
func (n *UpdateExpression) NodeSpan() Span { return n.Span }
func (n *UpdateExpression) exprNode()      {}

// Assignment keeps any expression as target; validity is checked when evaluated.
type Assignment struct {
	Span   Span
	Op     AssignOp
	Target Expr
	Value  Expr
}

func (n *Assignment) Kind() string   { return "Assignment" }
func (n *Assignment) NodeSpan() Span { return n.Span }
func (n *Assignment) exprNode()      {}

type ConditionalExpression struct {
	Span       Span
	Test       Expr
	Consequent Expr
	Alternate  Expr
}

func (n *ConditionalExpression) Kind() string   { return "ConditionalExpression" }
func (n *ConditionalExpression) NodeSpan() Span { return n.Span }
func (n *ConditionalExpression) exprNode()      {}

// --- Access & calls ---

type CallExpression struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpression) Kind() string   { return "CallExpression" }
func (n *CallExpression) NodeSpan() Span { return n.Span }
func (n *CallExpression) exprNode()      {}

type MemberExpression struct {
	Span     Span
	Object   Expr
	Property string
}

func (n *MemberExpression) Kind() string   { return "MemberExpression" }
func (n *MemberExpression) NodeSpan() Span { return n.Span }
func (n *MemberExpression) exprNode()      {}

type IndexExpression struct {
	Span   Span
	Object Expr
	Index  Expr
}

func (n *IndexExpression) Kind() string   { return "IndexExpression" }
func (n *IndexExpression) NodeSpan() Span { return n.Span }
func (n *IndexExpression) exprNode()      {}

type NewExpression struct {
	Span      Span
	ClassName string
	Args      []Expr
}

func (n *NewExpression) Kind() string   { return "NewExpression" }
func (n *NewExpression) NodeSpan() Span { return n.Span }
func (n *NewExpression) exprNode()      {}

// --- Declarations ---

// VarDeclaration covers var, let and const; Keyword records which was written.
type VarDeclaration struct {
	Span    Span
	Keyword string
	Name    string
	Type    string
	Init    Expr
}

func (n *VarDeclaration) Kind() string   { return "VarDeclaration" }
func (n *VarDeclaration) NodeSpan() Span { return n.Span }
func (n *VarDeclaration) stmtNode()      {}

type FunctionDeclaration struct {
	Span       Span
	Name       string
	Params     []*Param
	ReturnType string
	Body       *Block
}

func (n *FunctionDeclaration) Kind() string   { return "FunctionDeclaration" }
func (n *FunctionDeclaration) NodeSpan() Span { return n.Span }
func (n *FunctionDeclaration) stmtNode()      {}

type ClassDeclaration struct {
	Span       Span
	Name       string
	Superclass string
	Methods    []*FunctionDeclaration
}

func (n *ClassDeclaration) Kind() string   { return "ClassDeclaration" }
func (n *ClassDeclaration) NodeSpan() Span { return n.Span }
func (n *ClassDeclaration) stmtNode()      {}

// --- Statements ---

type Block struct {
	Span Span
	Body []Stmt
}

func (n *Block) Kind() string   { return "Block" }
func (n *Block) NodeSpan() Span { return n.Span }
func (n *Block) stmtNode()      {}

type ExpressionStatement struct {
	Span Span
	Expr Expr
}

func (n *ExpressionStatement) Kind() string   { return "ExpressionStatement" }
func (n *ExpressionStatement) NodeSpan() Span { return n.Span }
func (n *ExpressionStatement) stmtNode()      {}

type IfStatement struct {
	Span       Span
	Test       Expr
	Consequent Stmt
	Alternate  Stmt
}

func (n *IfStatement) Kind() string   { return "IfStatement" }
func (n *IfStatement) NodeSpan() Span { return n.Span }
func (n *IfStatement) stmtNode()      {}

type WhileStatement struct {
	Span Span
	Test Expr
	Body Stmt
}

func (n *WhileStatement) Kind() string   { return "WhileStatement" }
func (n *WhileStatement) NodeSpan() Span { return n.Span }
func (n *WhileStatement) stmtNode()      {}

type DoWhileStatement struct {
	Span Span
	Body Stmt
	Test Expr
}

func (n *DoWhileStatement) Kind() string   { return "DoWhileStatement" }
func (n *DoWhileStatement) NodeSpan() Span { return n.Span }
func (n *DoWhileStatement) stmtNode()      {}

// ForStatement is the C-style loop; Init, Test and Update may each be nil.
type ForStatement struct {
	Span   Span
	Init   Stmt
	Test   Expr
	Update Expr
	Body   Stmt
}

func (n *ForStatement) Kind() string   { return "ForStatement" }
func (n *ForStatement) NodeSpan() Span { return n.Span }
func (n *ForStatement) stmtNode()      {}

type ForInStatement struct {
	Span     Span
	Variable string
	Declared bool
	Iterable Expr
	Body     Stmt
}

func (n *ForInStatement) Kind() string   { return "ForInStatement" }
func (n *ForInStatement) NodeSpan() Span { return n.Span }
func (n *ForInStatement) stmtNode()      {}

// CaseClause is a switch arm; Test is nil for default.
type CaseClause struct {
	Span Span
	Test Expr
	Body []Stmt
}

func (n *CaseClause) Kind() string   { return "CaseClause" }
func (n *CaseClause) NodeSpan() Span { return n.Span }

type SwitchStatement struct {
	Span         Span
	Discriminant Expr
	Cases        []*CaseClause
}

func (n *SwitchStatement) Kind() string   { return "SwitchStatement" }
func (n *SwitchStatement) NodeSpan() Span { return n.Span }
func (n *SwitchStatement) stmtNode()      {}

// TryStatement has at least one of Handler or Finalizer.
type TryStatement struct {
	Span       Span
	Block      *Block
	CatchParam string
	Handler    *Block
	Finalizer  *Block
}

func (n *TryStatement) Kind() string   { return "TryStatement" }
func (n *TryStatement) NodeSpan() Span { return n.Span }
func (n *TryStatement) stmtNode()      {}

type ThrowStatement struct {
	Span     Span
	Argument Expr
}

func (n *ThrowStatement) Kind() string   { return "ThrowStatement" }
func (n *ThrowStatement) NodeSpan() Span { return n.Span }
func (n *ThrowStatement) stmtNode()      {}

type BreakStatement struct {
	Span Span
}

func (n *BreakStatement) Kind() string   { return "BreakStatement" }
func (n *BreakStatement) NodeSpan() Span { return n.Span }
func (n *BreakStatement) stmtNode()      {}

type ContinueStatement struct {
	Span Span
}

func (n *ContinueStatement) Kind() string   { return "ContinueStatement" }
func (n *ContinueStatement) NodeSpan() Span { return n.Span }
func (n *ContinueStatement) stmtNode()      {}

type ReturnStatement struct {
	Span     Span
	Argument Expr
}

func (n *ReturnStatement) Kind() string   { return "ReturnStatement" }
func (n *ReturnStatement) NodeSpan() Span { return n.Span }
func (n *ReturnStatement) stmtNode()      {}

// --- Modules ---

// ImportSpec is one `name [as alias]` entry of a named import.
type ImportSpec struct {
	Span  Span
	Name  string
	Alias string
}

func (n *ImportSpec) Kind() string   { return "ImportSpec" }
func (n *ImportSpec) NodeSpan() Span { return n.Span }

// LocalName returns the binding name an import introduces.
func (n *ImportSpec) LocalName() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// ImportStatement is either a named import (Names non-empty) or a whole-module
// import bound under Alias, which defaults to the module name.
type ImportStatement struct {
	Span   Span
	Module string
	Names  []*ImportSpec
	Alias  string
}

func (n *ImportStatement) Kind() string   { return "ImportStatement" }
func (n *ImportStatement) NodeSpan() Span { return n.Span }
func (n *ImportStatement) stmtNode()      {}

// ExportStatement wraps a declaration or lists existing names.
type ExportStatement struct {
	Span        Span
	Declaration Stmt
	Names       []string
}

func (n *ExportStatement) Kind() string   { return "ExportStatement" }
func (n *ExportStatement) NodeSpan() Span { return n.Span }
func (n *ExportStatement) stmtNode()      {}

// --- Program ---

type Program struct {
	Span Span
	Body []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
