package ast

import "lox/interpreter-go/pkg/token"

type NodeType string

const (
	NodeTernaryExpression  NodeType = "TernaryExpression"
	NodeAssignExpression   NodeType = "AssignExpression"
	NodeBinaryExpression   NodeType = "BinaryExpression"
	NodeCallExpression     NodeType = "CallExpression"
	NodeGetExpression      NodeType = "GetExpression"
	NodeSetExpression      NodeType = "SetExpression"
	NodeGroupingExpression NodeType = "GroupingExpression"
	NodeLiteralExpression  NodeType = "LiteralExpression"
	NodeLogicalExpression  NodeType = "LogicalExpression"
	NodeUnaryExpression    NodeType = "UnaryExpression"
	NodeVariableExpression NodeType = "VariableExpression"
	NodeThisExpression     NodeType = "ThisExpression"
	NodeSuperExpression    NodeType = "SuperExpression"
	NodeLambdaExpression   NodeType = "LambdaExpression"

	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodePrintStatement      NodeType = "PrintStatement"
	NodeVarStatement        NodeType = "VarStatement"
	NodeBlockStatement      NodeType = "BlockStatement"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeFunctionStatement   NodeType = "FunctionStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeClassStatement      NodeType = "ClassStatement"
)

// Node is implemented by every syntax tree node. Nodes are always handled
// through pointers: the resolver keys its table by node identity.
type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Expressions

// TernaryExpression is `Condition ? Then : Else`.
type TernaryExpression struct {
	nodeImpl
	expressionMarker

	Condition Expression  `json:"condition"`
	Question  token.Token `json:"question"`
	Then      Expression  `json:"then"`
	Else      Expression  `json:"else"`
}

func NewTernaryExpression(condition Expression, question token.Token, then, otherwise Expression) *TernaryExpression {
	return &TernaryExpression{nodeImpl: newNodeImpl(NodeTernaryExpression), Condition: condition, Question: question, Then: then, Else: otherwise}
}

type AssignExpression struct {
	nodeImpl
	expressionMarker

	Name  token.Token `json:"name"`
	Value Expression  `json:"value"`
}

func NewAssignExpression(name token.Token, value Expression) *AssignExpression {
	return &AssignExpression{nodeImpl: newNodeImpl(NodeAssignExpression), Name: name, Value: value}
}

// BinaryExpression covers arithmetic, comparison, equality and the comma
// operator (Operator.Type == token.Comma).
type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewBinaryExpression(left Expression, operator token.Token, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Left: left, Operator: operator, Right: right}
}

type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Paren     token.Token  `json:"paren"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee Expression, paren token.Token, arguments []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Paren: paren, Arguments: arguments}
}

type GetExpression struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
}

func NewGetExpression(object Expression, name token.Token) *GetExpression {
	return &GetExpression{nodeImpl: newNodeImpl(NodeGetExpression), Object: object, Name: name}
}

type SetExpression struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
	Value  Expression  `json:"value"`
}

func NewSetExpression(object Expression, name token.Token, value Expression) *SetExpression {
	return &SetExpression{nodeImpl: newNodeImpl(NodeSetExpression), Object: object, Name: name, Value: value}
}

type GroupingExpression struct {
	nodeImpl
	expressionMarker

	Expression Expression `json:"expression"`
}

func NewGroupingExpression(expression Expression) *GroupingExpression {
	return &GroupingExpression{nodeImpl: newNodeImpl(NodeGroupingExpression), Expression: expression}
}

// LiteralExpression holds nil, a bool, a float64 or a string.
type LiteralExpression struct {
	nodeImpl
	expressionMarker

	Value any `json:"value"`
}

func NewLiteralExpression(value any) *LiteralExpression {
	return &LiteralExpression{nodeImpl: newNodeImpl(NodeLiteralExpression), Value: value}
}

// LogicalExpression is a short-circuiting `and` / `or`.
type LogicalExpression struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewLogicalExpression(left Expression, operator token.Token, right Expression) *LogicalExpression {
	return &LogicalExpression{nodeImpl: newNodeImpl(NodeLogicalExpression), Left: left, Operator: operator, Right: right}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewUnaryExpression(operator token.Token, right Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Right: right}
}

type VariableExpression struct {
	nodeImpl
	expressionMarker

	Name token.Token `json:"name"`
}

func NewVariableExpression(name token.Token) *VariableExpression {
	return &VariableExpression{nodeImpl: newNodeImpl(NodeVariableExpression), Name: name}
}

type ThisExpression struct {
	nodeImpl
	expressionMarker

	Keyword token.Token `json:"keyword"`
}

func NewThisExpression(keyword token.Token) *ThisExpression {
	return &ThisExpression{nodeImpl: newNodeImpl(NodeThisExpression), Keyword: keyword}
}

// SuperExpression is `super.Method`; it always appears as a callee or value,
// never on its own.
type SuperExpression struct {
	nodeImpl
	expressionMarker

	Keyword token.Token `json:"keyword"`
	Method  token.Token `json:"method"`
}

func NewSuperExpression(keyword, method token.Token) *SuperExpression {
	return &SuperExpression{nodeImpl: newNodeImpl(NodeSuperExpression), Keyword: keyword, Method: method}
}

// LambdaExpression is an anonymous `fun (params) { body }` literal.
type LambdaExpression struct {
	nodeImpl
	expressionMarker

	Keyword token.Token   `json:"keyword"`
	Params  []token.Token `json:"params"`
	Body    []Statement   `json:"body"`
}

func NewLambdaExpression(keyword token.Token, params []token.Token, body []Statement) *LambdaExpression {
	return &LambdaExpression{nodeImpl: newNodeImpl(NodeLambdaExpression), Keyword: keyword, Params: params, Body: body}
}

// Statements

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expression Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expression}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Keyword    token.Token `json:"keyword"`
	Expression Expression  `json:"expression"`
}

func NewPrintStatement(keyword token.Token, expression Expression) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Keyword: keyword, Expression: expression}
}

// VarStatement declares Name; Initializer is nil for `var x;`.
type VarStatement struct {
	nodeImpl
	statementMarker

	Name        token.Token `json:"name"`
	Initializer Expression  `json:"initializer,omitempty"`
}

func NewVarStatement(name token.Token, initializer Expression) *VarStatement {
	return &VarStatement{nodeImpl: newNodeImpl(NodeVarStatement), Name: name, Initializer: initializer}
}

type BlockStatement struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewBlockStatement(statements []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Statements: statements}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition  Expression `json:"condition"`
	ThenBranch Statement  `json:"thenBranch"`
	ElseBranch Statement  `json:"elseBranch,omitempty"`
}

func NewIfStatement(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhileStatement(condition Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

// FunctionStatement is a named function or a class method.
type FunctionStatement struct {
	nodeImpl
	statementMarker

	Name   token.Token   `json:"name"`
	Params []token.Token `json:"params"`
	Body   []Statement   `json:"body"`
}

func NewFunctionStatement(name token.Token, params []token.Token, body []Statement) *FunctionStatement {
	return &FunctionStatement{nodeImpl: newNodeImpl(NodeFunctionStatement), Name: name, Params: params, Body: body}
}

// ReturnStatement carries an optional Value; nil means `return;`.
type ReturnStatement struct {
	nodeImpl
	statementMarker

	Keyword token.Token `json:"keyword"`
	Value   Expression  `json:"value,omitempty"`
}

func NewReturnStatement(keyword token.Token, value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Keyword: keyword, Value: value}
}

type ClassStatement struct {
	nodeImpl
	statementMarker

	Name       token.Token          `json:"name"`
	Superclass *VariableExpression  `json:"superclass,omitempty"`
	Methods    []*FunctionStatement `json:"methods"`
}

func NewClassStatement(name token.Token, superclass *VariableExpression, methods []*FunctionStatement) *ClassStatement {
	return &ClassStatement{nodeImpl: newNodeImpl(NodeClassStatement), Name: name, Superclass: superclass, Methods: methods}
}
