package contracts

import "errors"

var CircularDependencyError = errors.New("circular dependency detected")

var FormulaSyntaxError = errors.New("formula syntax error")

// CellValueGetter resolves a referenced position to a numeric operand during
// formula evaluation. A returned FormulaError aborts the evaluation and
// becomes the whole formula's result.
type CellValueGetter func(pos Position) (float64, error)

// Formula is a parsed, executable expression.
type Formula interface {
	// Evaluate computes the formula against the values supplied by getValue.
	// The result is either a number or a propagated FormulaError; Evaluate
	// itself never fails.
	Evaluate(getValue CellValueGetter) Value

	// GetExpression returns the canonical rendering of the expression,
	// without the leading formula marker. It re-parses to an equivalent
	// formula, but need not be byte-identical to the original input.
	GetExpression() string

	// GetReferencedCells returns the positions the formula reads, sorted
	// row-first and deduplicated.
	GetReferencedCells() []Position
}
