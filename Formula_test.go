package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"sheetgrid/contracts"
)

func _constantGetter(values map[string]float64) contracts.CellValueGetter {
	return func(pos contracts.Position) (float64, error) {
		return values[pos.String()], nil
	}
}

func TestParseFormula(t *testing.T) {
	t.Run("canonical rendering", func(t *testing.T) {
		testCases := map[string]string{
			"1+2":        "1+2",
			"1 + 2 * A1": "1+2*A1",
			"(1+2)*3":    "(1+2)*3",
			"1+2*(3+4)":  "1+2*(3+4)",
			"1-(2-3)":    "1-(2-3)",
			"8/(4/2)":    "8/(4/2)",
			"(1*2)+3":    "1*2+3",
			"-3+A1":      "-3+A1",
			"-(A1+B2)":   "-(A1+B2)",
			"0.5*B2":     "0.5*B2",
			"A1":         "A1",
			"A01+1":      "A1+1",
			"B002":       "B2",
			"42":         "42",
		}

		for input, expected := range testCases {
			formula, err := ParseFormula(input)
			assert.NoError(t, err, "input %q", input)
			assert.Equal(t, expected, formula.GetExpression(), "input %q", input)
		}
	})

	t.Run("canonical text re-parses to the same canonical text", func(t *testing.T) {
		for _, input := range []string{"1+2*(3+4)", "-(A1+B2)/C3", "1-(2-3)-4"} {
			first, err := ParseFormula(input)
			assert.NoError(t, err)

			second, err := ParseFormula(first.GetExpression())
			assert.NoError(t, err)
			assert.Equal(t, first.GetExpression(), second.GetExpression())
		}
	})

	t.Run("referenced cells are sorted and deduplicated", func(t *testing.T) {
		formula, err := ParseFormula("B2+A1+A1+B2+C1")
		assert.NoError(t, err)

		assert.Equal(t, []contracts.Position{
			{Row: 0, Col: 0}, // A1
			{Row: 0, Col: 2}, // C1
			{Row: 1, Col: 1}, // B2
		}, formula.GetReferencedCells())
	})

	t.Run("leading zero spellings reference the same cell", func(t *testing.T) {
		formula, err := ParseFormula("A01+A1")
		assert.NoError(t, err)

		assert.Equal(t, "A1+A1", formula.GetExpression())
		assert.Equal(t, []contracts.Position{{Row: 0, Col: 0}}, formula.GetReferencedCells())
	})

	t.Run("no references for constant formulas", func(t *testing.T) {
		formula, err := ParseFormula("1+2*3")
		assert.NoError(t, err)
		assert.Empty(t, formula.GetReferencedCells())
	})

	t.Run("syntax failures", func(t *testing.T) {
		inputs := []string{
			"1+",
			"(1",
			"1+*2",
			"abc",   // lowercase is not a cell reference
			"AAAA1", // beyond the column bounds
			"XFE1",  // beyond the column bounds
			"A1 ? 1 : 2",
			`"text"`,
			"true",
			"sum(A1)",
			"1 % 2",
			"2 ^ 3",
			"A1 && B1",
		}

		for _, input := range inputs {
			_, err := ParseFormula(input)
			assert.ErrorIs(t, err, contracts.FormulaSyntaxError, "input %q", input)
		}
	})
}

func TestFormula_Evaluate(t *testing.T) {
	t.Run("constant arithmetic", func(t *testing.T) {
		formula, err := ParseFormula("2+2*2")
		assert.NoError(t, err)

		value := formula.Evaluate(_constantGetter(nil))
		assert.Equal(t, contracts.NumberValue(6), value)
	})

	t.Run("cell operands", func(t *testing.T) {
		formula, err := ParseFormula("A1+B1*2")
		assert.NoError(t, err)

		value := formula.Evaluate(_constantGetter(map[string]float64{"A1": 1, "B1": 2.5}))
		assert.Equal(t, contracts.NumberValue(6), value)
	})

	t.Run("resolver error becomes the result", func(t *testing.T) {
		formula, err := ParseFormula("A1+1")
		assert.NoError(t, err)

		valueErr := contracts.FormulaError{Category: contracts.ErrorCategoryValue}
		value := formula.Evaluate(func(contracts.Position) (float64, error) {
			return 0, valueErr
		})
		assert.Equal(t, contracts.ErrorValue(valueErr), value)
	})

	t.Run("plain resolver error counts as arithmetic", func(t *testing.T) {
		formula, err := ParseFormula("A1")
		assert.NoError(t, err)

		value := formula.Evaluate(func(contracts.Position) (float64, error) {
			return 0, errors.New("boom")
		})
		assert.Equal(t, contracts.ValueTypeError, value.Type)
		assert.Equal(t, contracts.ErrorCategoryArithmetic, value.Error.Category)
	})

	t.Run("division by zero is an arithmetic error", func(t *testing.T) {
		formula, err := ParseFormula("1/A1")
		assert.NoError(t, err)

		value := formula.Evaluate(_constantGetter(map[string]float64{"A1": 0}))
		assert.Equal(t, contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic}), value)
	})

	t.Run("overflow to infinity is an arithmetic error", func(t *testing.T) {
		formula, err := ParseFormula("A1*A1")
		assert.NoError(t, err)

		value := formula.Evaluate(_constantGetter(map[string]float64{"A1": 1e308}))
		assert.Equal(t, contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic}), value)
	})

	t.Run("leading zero labels bind to the canonical operand", func(t *testing.T) {
		formula, err := ParseFormula("A01+1")
		assert.NoError(t, err)

		value := formula.Evaluate(_constantGetter(map[string]float64{"A1": 5}))
		assert.Equal(t, contracts.NumberValue(6), value)
	})

	t.Run("unary minus", func(t *testing.T) {
		formula, err := ParseFormula("-A1+1")
		assert.NoError(t, err)

		value := formula.Evaluate(_constantGetter(map[string]float64{"A1": 5}))
		assert.Equal(t, contracts.NumberValue(-4), value)
	})
}
