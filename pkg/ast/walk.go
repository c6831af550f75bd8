package ast

// Walk visits op and every operation nested in it, depth first. Returning
// false from visit skips the children of that operation.
func Walk(op Operation, visit func(Operation) bool) {
	if op == nil || !visit(op) {
		return
	}
	switch n := op.(type) {
	case *Block:
		for _, child := range n.Operations {
			Walk(child, visit)
		}
	case *If:
		Walk(n.Then, visit)
		if n.Else != nil {
			Walk(n.Else, visit)
		}
	case *While:
		Walk(n.Body, visit)
	case *DoWhile:
		Walk(n.Body, visit)
	case *For:
		for _, child := range n.Init {
			Walk(child, visit)
		}
		for _, child := range n.Update {
			Walk(child, visit)
		}
		Walk(n.Body, visit)
	case *Switch:
		for _, c := range n.Cases {
			for _, child := range c.Body {
				Walk(child, visit)
			}
		}
	}
}

// Expressions returns the expressions owned directly by op, not by its
// nested operations. Switch case values are reported with the case line.
func Expressions(op Operation) []LineExpression {
	at := func(e *PostfixExpression) []LineExpression {
		if e == nil {
			return nil
		}
		return []LineExpression{{Line: op.Line(), Expr: e}}
	}
	switch n := op.(type) {
	case *VariableDeclaration:
		return at(n.Value)
	case *VariableAssignment:
		return at(n.Expr)
	case *FunctionInvocation:
		return at(n.Expr)
	case *Println:
		return at(n.Expr)
	case *If:
		return at(n.Condition)
	case *While:
		return at(n.Condition)
	case *DoWhile:
		return at(n.Condition)
	case *For:
		return at(n.Condition)
	case *Return:
		return at(n.Value)
	case *Switch:
		out := at(n.Selector)
		for _, c := range n.Cases {
			if c.Value != nil {
				out = append(out, LineExpression{Line: c.Line, Expr: c.Value})
			}
		}
		return out
	default:
		return nil
	}
}

// LineExpression pairs an expression with the line it was read from.
type LineExpression struct {
	Line *SourceLine
	Expr *PostfixExpression
}
