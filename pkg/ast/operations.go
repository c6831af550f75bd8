package ast

// Operation is the closed set of statement kinds. Every operation carries the
// source line where it starts.
type Operation interface {
	operationNode()
	Line() *SourceLine
}

// OperationBase is embedded by every operation.
type OperationBase struct {
	SourceLine *SourceLine
}

func (o OperationBase) Line() *SourceLine { return o.SourceLine }

func (OperationBase) operationNode() {}

// At builds the embedded position of an operation.
func At(line *SourceLine) OperationBase {
	return OperationBase{SourceLine: line}
}

// VariableDeclaration declares a variable; a nil Value means null.
type VariableDeclaration struct {
	OperationBase
	Name  string
	Final bool
	Value *PostfixExpression
}

// VariableAssignment is an expression statement ending in an assignment or ++/--.
type VariableAssignment struct {
	OperationBase
	Expr *PostfixExpression
}

// FunctionInvocation is an expression statement that calls a function.
type FunctionInvocation struct {
	OperationBase
	Expr *PostfixExpression
}

// Println writes one line of output; a nil Expr prints an empty line.
type Println struct {
	OperationBase
	Expr *PostfixExpression
}

type Block struct {
	OperationBase
	Operations []Operation
}

// If holds an optional Else that is either a *Block or another *If.
type If struct {
	OperationBase
	Condition *PostfixExpression
	Then      *Block
	Else      Operation
}

type While struct {
	OperationBase
	Condition *PostfixExpression
	Body      *Block
}

type DoWhile struct {
	OperationBase
	Body      *Block
	Condition *PostfixExpression
}

// For has an optional Condition; nil means the loop runs until a break or return.
type For struct {
	OperationBase
	Init      []Operation
	Condition *PostfixExpression
	Update    []Operation
	Body      *Block
}

// SwitchCase is a case label with its statements. A nil Value marks default.
type SwitchCase struct {
	Line  *SourceLine
	Value *PostfixExpression
	Body  []Operation
}

type Switch struct {
	OperationBase
	Selector *PostfixExpression
	Cases    []*SwitchCase
}

type Return struct {
	OperationBase
	Value *PostfixExpression
}

type Break struct {
	OperationBase
}

type Continue struct {
	OperationBase
}
