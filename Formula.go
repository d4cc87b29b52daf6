package main

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"sheetgrid/contracts"
)

const FormulaPrefix = "="

const EscapePrefix = "'"

var compilerOptions = []expr.Option{
	expr.Env(map[string]any{}),
	expr.AllowUndefinedVariables(),
	expr.Optimize(false),
	expr.DisableAllBuiltins(),
}

var vmPool = sync.Pool{
	New: func() any {
		return new(vm.VM)
	},
}

// Formula is a compiled cell expression: numbers, cell references, unary +/-
// and the four arithmetic operators.
type Formula struct {
	program    *vm.Program
	expression string
	refs       []contracts.Position
}

// ParseFormula parses expression text (without the leading formula marker).
// Anything the grammar does not cover fails with FormulaSyntaxError.
func ParseFormula(expression string) (*Formula, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.FormulaSyntaxError, err)
	}

	visitor := &CellRefsVisitor{}
	ast.Walk(&tree.Node, visitor)
	if visitor.Err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.FormulaSyntaxError, visitor.Err)
	}

	canonical := renderNode(tree.Node)

	program, err := expr.Compile(canonical, compilerOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.FormulaSyntaxError, err)
	}

	return &Formula{
		program:    program,
		expression: canonical,
		refs:       sortedUniquePositions(visitor.Refs),
	}, nil
}

// Evaluate resolves every referenced cell through getValue, then runs the
// compiled program. A FormulaError raised by the resolver short-circuits and
// becomes the result; runtime failures and non-finite results count as
// arithmetic errors.
func (f *Formula) Evaluate(getValue contracts.CellValueGetter) contracts.Value {
	vars := make(map[string]any, len(f.refs))
	for _, pos := range f.refs {
		number, err := getValue(pos)
		if err != nil {
			var formulaErr contracts.FormulaError
			if errors.As(err, &formulaErr) {
				return contracts.ErrorValue(formulaErr)
			}
			return contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic})
		}
		vars[pos.String()] = number
	}

	machine := vmPool.Get().(*vm.VM)
	out, err := machine.Run(f.program, vars)
	vmPool.Put(machine)
	if err != nil {
		return contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic})
	}

	var result float64
	switch number := out.(type) {
	case int:
		result = float64(number)
	case int64:
		result = float64(number)
	case float64:
		result = number
	default:
		return contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic})
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic})
	}
	return contracts.NumberValue(result)
}

func (f *Formula) GetExpression() string {
	return f.expression
}

func (f *Formula) GetReferencedCells() []contracts.Position {
	return f.refs
}

func operatorPrecedence(operator string) int {
	switch operator {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	default:
		return 0
	}
}

func nodePrecedence(node ast.Node) int {
	if binary, ok := node.(*ast.BinaryNode); ok {
		return operatorPrecedence(binary.Operator)
	}
	return 0
}

// renderNode prints the canonical form of a validated expression tree with
// the minimal parentheses needed to re-parse to an equivalent tree.
func renderNode(node ast.Node) string {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return strconv.Itoa(n.Value)
	case *ast.FloatNode:
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	case *ast.IdentifierNode:
		// the visitor validated this as a position; reprint it so spellings
		// like A01 collapse to the canonical label the evaluator binds
		return contracts.PositionFromString(n.Value).String()
	case *ast.UnaryNode:
		operand := renderNode(n.Node)
		switch n.Node.(type) {
		case *ast.BinaryNode, *ast.UnaryNode:
			operand = "(" + operand + ")"
		}
		return n.Operator + operand
	case *ast.BinaryNode:
		precedence := operatorPrecedence(n.Operator)

		left := renderNode(n.Left)
		if p := nodePrecedence(n.Left); p > 0 && p < precedence {
			left = "(" + left + ")"
		}

		right := renderNode(n.Right)
		if p := nodePrecedence(n.Right); p > 0 && (p < precedence || (p == precedence && (n.Operator == "-" || n.Operator == "/"))) {
			right = "(" + right + ")"
		}

		return left + n.Operator + right
	default:
		// the visitor rejected everything else already
		return ""
	}
}

func sortedUniquePositions(refs []contracts.Position) []contracts.Position {
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Less(refs[j])
	})

	unique := refs[:0]
	for _, pos := range refs {
		if len(unique) == 0 || unique[len(unique)-1] != pos {
			unique = append(unique, pos)
		}
	}
	return unique
}
