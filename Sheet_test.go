package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sheetgrid/contracts"
)

func TestSheet_SetCell(t *testing.T) {
	t.Run("invalid position", func(t *testing.T) {
		sheet := NewSheet()

		err := sheet.SetCell(contracts.Position{Row: -1, Col: 0}, "5")
		assert.ErrorIs(t, err, contracts.InvalidPositionError)

		err = sheet.SetCell(contracts.Position{Row: 0, Col: contracts.MaxCols}, "5")
		assert.ErrorIs(t, err, contracts.InvalidPositionError)
	})

	t.Run("syntax failure", func(t *testing.T) {
		sheet := NewSheet()

		err := sheet.SetCell(_pos(t, "A1"), "=1++")
		assert.ErrorIs(t, err, contracts.FormulaSyntaxError)
	})

	t.Run("unsupported expression reported as syntax failure", func(t *testing.T) {
		sheet := NewSheet()

		err := sheet.SetCell(_pos(t, "A1"), `="text"`)
		assert.ErrorIs(t, err, contracts.FormulaSyntaxError)
	})
}

func TestSheet_RecalculationChain(t *testing.T) {
	sheet := NewSheet()
	a1, b1, c1 := _pos(t, "A1"), _pos(t, "B1"), _pos(t, "C1")

	assert.NoError(t, sheet.SetCell(a1, "5"))
	assert.NoError(t, sheet.SetCell(b1, "=A1+1"))
	assert.NoError(t, sheet.SetCell(c1, "=B1*2"))

	assert.Equal(t, contracts.NumberValue(12), sheet.getCell(c1).GetValue())

	// a single upstream write is visible through the whole chain
	assert.NoError(t, sheet.SetCell(a1, "10"))
	assert.Equal(t, contracts.NumberValue(11), sheet.getCell(b1).GetValue())
	assert.Equal(t, contracts.NumberValue(22), sheet.getCell(c1).GetValue())
}

func TestSheet_MissingReferenceCountsAsZero(t *testing.T) {
	sheet := NewSheet()
	d1 := _pos(t, "D1")

	assert.NoError(t, sheet.SetCell(d1, "=E5+1"))
	assert.Equal(t, contracts.NumberValue(1), sheet.getCell(d1).GetValue())

	// the referenced coordinate exists as an empty graph node now
	e5 := sheet.getCell(_pos(t, "E5"))
	assert.NotNil(t, e5)
	assert.True(t, e5.IsReferenced())
	assert.Equal(t, "", e5.GetText())
}

func TestSheet_LeadingZeroReference(t *testing.T) {
	sheet := NewSheet()
	a1, b1 := _pos(t, "A1"), _pos(t, "B1")

	assert.NoError(t, sheet.SetCell(a1, "5"))
	assert.NoError(t, sheet.SetCell(b1, "=A01+1"))

	// the stored text is canonical and the operand resolves through A1
	cell := sheet.getCell(b1)
	assert.Equal(t, "=A1+1", cell.GetText())
	assert.Equal(t, contracts.NumberValue(6), cell.GetValue())

	assert.NoError(t, sheet.SetCell(a1, "10"))
	assert.Equal(t, contracts.NumberValue(11), cell.GetValue())
}

func TestSheet_OperandCoercion(t *testing.T) {
	sheet := NewSheet()

	assert.NoError(t, sheet.SetCell(_pos(t, "A1"), "abc"))
	assert.NoError(t, sheet.SetCell(_pos(t, "A2"), "42"))
	assert.NoError(t, sheet.SetCell(_pos(t, "A3"), "3.5e2"))
	assert.NoError(t, sheet.SetCell(_pos(t, "A4"), "12abc"))
	assert.NoError(t, sheet.SetCell(_pos(t, "A5"), "1e999"))

	valueError := contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryValue})
	arithmeticError := contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic})

	testCases := map[string]contracts.Value{
		"=A1+1": valueError,
		"=A2+1": contracts.NumberValue(43),
		"=A3+1": contracts.NumberValue(351),
		"=A4+1": valueError,
		"=A5+1": arithmeticError,
	}

	target := _pos(t, "B1")
	for expression, expected := range testCases {
		t.Run(expression, func(t *testing.T) {
			assert.NoError(t, sheet.SetCell(target, expression))
			assert.Equal(t, expected, sheet.getCell(target).GetValue())
		})
	}
}

func TestSheet_ErrorPropagation(t *testing.T) {
	sheet := NewSheet()

	assert.NoError(t, sheet.SetCell(_pos(t, "A1"), "=1/0"))
	assert.NoError(t, sheet.SetCell(_pos(t, "B1"), "=A1+100"))

	expected := contracts.ErrorValue(contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic})
	assert.Equal(t, expected, sheet.getCell(_pos(t, "A1")).GetValue())
	assert.Equal(t, expected, sheet.getCell(_pos(t, "B1")).GetValue())
	assert.Equal(t, "#ARITHM!", sheet.getCell(_pos(t, "B1")).GetValue().String())
}

func TestSheet_ClearCell(t *testing.T) {
	t.Run("never written cell is a no-op", func(t *testing.T) {
		sheet := NewSheet()
		assert.NoError(t, sheet.ClearCell(_pos(t, "Z100")))
	})

	t.Run("invalid position", func(t *testing.T) {
		sheet := NewSheet()
		err := sheet.ClearCell(contracts.Position{Row: -1, Col: -1})
		assert.ErrorIs(t, err, contracts.InvalidPositionError)
	})

	t.Run("unreferenced cell is removed", func(t *testing.T) {
		sheet := NewSheet()
		a1 := _pos(t, "A1")

		assert.NoError(t, sheet.SetCell(a1, "5"))
		assert.NoError(t, sheet.ClearCell(a1))
		assert.Nil(t, sheet.getCell(a1))
	})

	t.Run("referenced cell stays as an empty node", func(t *testing.T) {
		sheet := NewSheet()
		a1, b1 := _pos(t, "A1"), _pos(t, "B1")

		assert.NoError(t, sheet.SetCell(a1, "5"))
		assert.NoError(t, sheet.SetCell(b1, "=A1*2"))
		assert.Equal(t, contracts.NumberValue(10), sheet.getCell(b1).GetValue())

		assert.NoError(t, sheet.ClearCell(a1))

		cell := sheet.getCell(a1)
		assert.NotNil(t, cell)
		assert.Equal(t, "", cell.GetText())
		assert.Equal(t, contracts.NumberValue(0), sheet.getCell(b1).GetValue())
	})

	t.Run("cleared formula releases its sources", func(t *testing.T) {
		sheet := NewSheet()
		a1, b1 := _pos(t, "A1"), _pos(t, "B1")

		assert.NoError(t, sheet.SetCell(a1, "5"))
		assert.NoError(t, sheet.SetCell(b1, "=A1*2"))

		assert.NoError(t, sheet.ClearCell(b1))
		assert.Nil(t, sheet.getCell(b1))
		assert.False(t, sheet.getCell(a1).IsReferenced())
	})
}

func TestSheet_GetPrintableSize(t *testing.T) {
	sheet := NewSheet()
	assert.Equal(t, contracts.Size{Rows: 0, Cols: 0}, sheet.GetPrintableSize())

	assert.NoError(t, sheet.SetCell(_pos(t, "B2"), "x"))
	assert.NoError(t, sheet.SetCell(_pos(t, "C4"), "y"))
	assert.Equal(t, contracts.Size{Rows: 4, Cols: 3}, sheet.GetPrintableSize())

	// a referenced empty cell beyond the box does not extend it
	assert.NoError(t, sheet.SetCell(_pos(t, "A1"), "=Z26"))
	assert.Equal(t, contracts.Size{Rows: 4, Cols: 3}, sheet.GetPrintableSize())

	// clearing shrinks the box back
	assert.NoError(t, sheet.ClearCell(_pos(t, "C4")))
	assert.Equal(t, contracts.Size{Rows: 2, Cols: 2}, sheet.GetPrintableSize())
}

func TestSheet_Print(t *testing.T) {
	sheet := NewSheet()
	assert.NoError(t, sheet.SetCell(_pos(t, "A1"), "5"))
	assert.NoError(t, sheet.SetCell(_pos(t, "B1"), "=A1+1"))
	assert.NoError(t, sheet.SetCell(_pos(t, "A2"), "text"))
	assert.NoError(t, sheet.SetCell(_pos(t, "C2"), "'=note"))

	t.Run("values", func(t *testing.T) {
		var sb strings.Builder
		assert.NoError(t, sheet.PrintValues(&sb))
		assert.Equal(t, "5\t6\t\ntext\t\t=note\n", sb.String())
	})

	t.Run("texts", func(t *testing.T) {
		var sb strings.Builder
		assert.NoError(t, sheet.PrintTexts(&sb))
		assert.Equal(t, "5\t=A1+1\t\ntext\t\t'=note\n", sb.String())
	})
}
