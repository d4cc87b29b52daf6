package main

import (
	"fmt"

	"github.com/expr-lang/expr/ast"

	"sheetgrid/contracts"
)

// CellRefsVisitor collects cell references from a parsed expression and
// rejects every construct outside the formula grammar.
type CellRefsVisitor struct {
	Refs []contracts.Position
	Err  error
}

func (v *CellRefsVisitor) Visit(node *ast.Node) {
	if v.Err != nil {
		return
	}

	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode:

	case *ast.IdentifierNode:
		pos := contracts.PositionFromString(n.Value)
		if pos == contracts.PositionNone {
			v.Err = fmt.Errorf("unknown cell reference %q", n.Value)
			return
		}
		v.Refs = append(v.Refs, pos)

	case *ast.UnaryNode:
		if n.Operator != "+" && n.Operator != "-" {
			v.Err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}

	case *ast.BinaryNode:
		switch n.Operator {
		case "+", "-", "*", "/":
		default:
			v.Err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}

	default:
		v.Err = fmt.Errorf("unsupported expression element %T", *node)
	}
}
