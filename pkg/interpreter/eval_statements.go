package interpreter

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

func (x *execution) execOperations(ops []ast.Operation) error {
	for _, op := range ops {
		if err := x.execOperation(op); err != nil {
			return err
		}
	}
	return nil
}

// execOperation runs one statement. Failures leave here positioned at the
// statement's line unless a nested statement already positioned them.
func (x *execution) execOperation(op ast.Operation) error {
	if err := x.ctx.Err(); err != nil {
		return attachRuntimeContext(errCancelled(err), op.Line(), x.state)
	}
	x.state.setLine(op.Line())
	return attachRuntimeContext(x.dispatch(op), op.Line(), x.state)
}

func (x *execution) dispatch(op ast.Operation) error {
	switch n := op.(type) {
	case *ast.VariableDeclaration:
		return x.execDeclaration(n)
	case *ast.VariableAssignment:
		_, err := x.evaluate(n.Expr)
		return err
	case *ast.FunctionInvocation:
		_, err := x.evaluate(n.Expr)
		return err
	case *ast.Println:
		return x.execPrintln(n)
	case *ast.Block:
		return x.execBlock(n)
	case *ast.If:
		return x.execIf(n)
	case *ast.While:
		return x.execWhile(n)
	case *ast.DoWhile:
		return x.execDoWhile(n)
	case *ast.For:
		return x.execFor(n)
	case *ast.Switch:
		return x.execSwitch(n)
	case *ast.Return:
		return x.execReturn(n)
	case *ast.Break:
		return breakSignal{}
	case *ast.Continue:
		return continueSignal{}
	default:
		return runtime.Internalf("unsupported operation %T", op)
	}
}

func (x *execution) execDeclaration(n *ast.VariableDeclaration) error {
	value := runtime.Null
	if n.Value != nil {
		v, err := x.evaluateValue(n.Value)
		if err != nil {
			return err
		}
		value = v
	}
	if n.Final {
		return x.state.Locals().DefineFinalValue(n.Name, value)
	}
	return x.state.Locals().DefineValue(n.Name, value)
}

func (x *execution) execPrintln(n *ast.Println) error {
	if n.Expr == nil {
		x.console.WriteLine("")
		return nil
	}
	v, err := x.evaluateValue(n.Expr)
	if err != nil {
		return err
	}
	x.console.WriteLine(runtime.Text(v))
	return nil
}

func (x *execution) execReturn(n *ast.Return) error {
	if n.Value == nil {
		return returnSignal{value: runtime.Void}
	}
	v, err := x.evaluateValue(n.Value)
	if err != nil {
		return err
	}
	return returnSignal{value: v}
}

// execBlock runs ops in a child scope of the active one.
func (x *execution) execBlock(b *ast.Block) error {
	return x.inChildScope(func() error {
		return x.execOperations(b.Operations)
	})
}

func (x *execution) inChildScope(fn func() error) error {
	return x.state.withLocals(x.state.Locals().Extend(), fn)
}

func (x *execution) execIf(n *ast.If) error {
	ok, err := x.evaluateCondition(n.Condition)
	if err != nil {
		return err
	}
	if ok {
		return x.execBlock(n.Then)
	}
	if n.Else != nil {
		return x.execOperation(n.Else)
	}
	return nil
}

// loopBody runs one iteration. done reports a break; continue signals end the
// iteration normally.
func (x *execution) loopBody(body *ast.Block) (done bool, err error) {
	switch sig := x.execBlock(body).(type) {
	case nil, continueSignal:
		return false, nil
	case breakSignal:
		return true, nil
	default:
		return false, sig
	}
}

func (x *execution) execWhile(n *ast.While) error {
	for {
		if err := x.ctx.Err(); err != nil {
			return errCancelled(err)
		}
		ok, err := x.evaluateCondition(n.Condition)
		if err != nil || !ok {
			return err
		}
		x.state.setLine(n.Line())
		if done, err := x.loopBody(n.Body); done || err != nil {
			return err
		}
	}
}

func (x *execution) execDoWhile(n *ast.DoWhile) error {
	for {
		if err := x.ctx.Err(); err != nil {
			return errCancelled(err)
		}
		if done, err := x.loopBody(n.Body); done || err != nil {
			return err
		}
		x.state.setLine(n.Line())
		ok, err := x.evaluateCondition(n.Condition)
		if err != nil || !ok {
			return err
		}
	}
}

// execFor keeps the loop variables in a scope shared by the header and every
// iteration; each iteration body gets its own child scope.
func (x *execution) execFor(n *ast.For) error {
	return x.inChildScope(func() error {
		if err := x.execOperations(n.Init); err != nil {
			return err
		}
		for {
			if err := x.ctx.Err(); err != nil {
				return errCancelled(err)
			}
			x.state.setLine(n.Line())
			if n.Condition != nil {
				ok, err := x.evaluateCondition(n.Condition)
				if err != nil || !ok {
					return err
				}
			}
			if done, err := x.loopBody(n.Body); done || err != nil {
				return err
			}
			if err := x.execOperations(n.Update); err != nil {
				return err
			}
		}
	})
}

// execSwitch compares case values in order, evaluating each only when it is
// reached, and falls through from the matching case until a break.
func (x *execution) execSwitch(n *ast.Switch) error {
	selector, err := x.evaluateValue(n.Selector)
	if err != nil {
		return err
	}
	return x.inChildScope(func() error {
		start := -1
		for idx, c := range n.Cases {
			if c.Value == nil {
				continue
			}
			x.state.setLine(c.Line)
			matched, err := x.caseMatches(selector, c)
			if err != nil {
				return attachRuntimeContext(err, c.Line, x.state)
			}
			if matched {
				start = idx
				break
			}
		}
		if start < 0 {
			for idx, c := range n.Cases {
				if c.Value == nil {
					start = idx
					break
				}
			}
		}
		if start < 0 {
			return nil
		}
		for _, c := range n.Cases[start:] {
			err := x.execOperations(c.Body)
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (x *execution) caseMatches(selector runtime.Value, c *ast.SwitchCase) (bool, error) {
	v, err := x.evaluateValue(c.Value)
	if err != nil {
		return false, err
	}
	eq, err := x.calculators.Binary(ast.OpEqual, selector, v)
	if err != nil {
		return false, err
	}
	return eq == runtime.True, nil
}
