package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sheetgrid/contracts"
)

// Sheet owns every cell by coordinate. Storage grows to cover any position
// that is written or referenced and never shrinks.
type Sheet struct {
	cells [][]*Cell
}

func NewSheet() *Sheet {
	return &Sheet{cells: [][]*Cell{make([]*Cell, 1)}}
}

// SetCell writes text into the cell at pos, creating it if needed. Circular
// dependency and formula syntax failures surface unchanged and leave the
// sheet untouched; anything else a formula raises is reported as a syntax
// failure.
func (s *Sheet) SetCell(pos contracts.Position, text string) error {
	if !pos.IsValid() {
		return fmt.Errorf("%w: row %d, col %d", contracts.InvalidPositionError, pos.Row, pos.Col)
	}

	cell := s.materializeCell(pos)

	err := cell.Set(text)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, contracts.CircularDependencyError), errors.Is(err, contracts.FormulaSyntaxError):
		return err
	default:
		return fmt.Errorf("%w: %v", contracts.FormulaSyntaxError, err)
	}
}

// GetCell returns the cell at pos, or nil when the coordinate has never been
// written.
func (s *Sheet) GetCell(pos contracts.Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, fmt.Errorf("%w: row %d, col %d", contracts.InvalidPositionError, pos.Row, pos.Col)
	}
	return s.getCell(pos), nil
}

// ClearCell empties the cell at pos. A cell that others still reference is
// kept as an empty graph node; an unreferenced one is removed from storage
// after being detached from its sources.
func (s *Sheet) ClearCell(pos contracts.Position) error {
	if !pos.IsValid() {
		return fmt.Errorf("%w: row %d, col %d", contracts.InvalidPositionError, pos.Row, pos.Col)
	}

	cell := s.getCell(pos)
	if cell == nil {
		return nil
	}

	cell.Clear()
	if !cell.IsReferenced() {
		s.cells[pos.Row][pos.Col] = nil
	}
	return nil
}

// GetPrintableSize is the minimal bounding box covering every cell with
// non-empty rendered text. It is recomputed per call: sheet mutations are
// rare relative to the cost of the scan, and a cached size would need its
// own invalidation policy.
func (s *Sheet) GetPrintableSize() contracts.Size {
	maxRow, maxCol := -1, -1
	for row := range s.cells {
		for col, cell := range s.cells[row] {
			if cell != nil && cell.GetText() != "" {
				if row > maxRow {
					maxRow = row
				}
				if col > maxCol {
					maxCol = col
				}
			}
		}
	}
	return contracts.Size{Rows: maxRow + 1, Cols: maxCol + 1}
}

func (s *Sheet) PrintValues(out io.Writer) error {
	return s.printCells(out, func(cell *Cell) string {
		return cell.GetValue().String()
	})
}

func (s *Sheet) PrintTexts(out io.Writer) error {
	return s.printCells(out, func(cell *Cell) string {
		return cell.GetText()
	})
}

func (s *Sheet) printCells(out io.Writer, renderCell func(*Cell) string) error {
	size := s.GetPrintableSize()

	var sb strings.Builder
	for row := 0; row < size.Rows; row++ {
		for col := 0; col < size.Cols; col++ {
			if col > 0 {
				sb.WriteByte('\t')
			}
			cell := s.getCell(contracts.Position{Row: row, Col: col})
			if cell != nil && cell.GetText() != "" {
				sb.WriteString(renderCell(cell))
			}
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

// resolveOperand coerces the cell at pos into a numeric operand: absent
// cells and empty text count as zero, computed errors propagate, numeric
// text is parsed strictly, anything else is a value error.
func (s *Sheet) resolveOperand(pos contracts.Position) (float64, error) {
	cell := s.getCell(pos)
	if cell == nil {
		return 0, nil
	}

	value := cell.GetValue()
	switch value.Type {
	case contracts.ValueTypeNumber:
		return value.Number, nil
	case contracts.ValueTypeError:
		return 0, value.Error
	}

	if value.Text == "" {
		return 0, nil
	}
	number, err := strconv.ParseFloat(value.Text, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, contracts.FormulaError{Category: contracts.ErrorCategoryArithmetic}
		}
		return 0, contracts.FormulaError{Category: contracts.ErrorCategoryValue}
	}
	return number, nil
}

// getCell returns the cell at pos or nil; pos is assumed valid.
func (s *Sheet) getCell(pos contracts.Position) *Cell {
	if pos.Row >= len(s.cells) || pos.Col >= len(s.cells[pos.Row]) {
		return nil
	}
	return s.cells[pos.Row][pos.Col]
}

// materializeCell returns the cell at pos, growing storage and creating an
// empty cell when the coordinate has never been touched.
func (s *Sheet) materializeCell(pos contracts.Position) *Cell {
	s.growToInclude(pos)
	if s.cells[pos.Row][pos.Col] == nil {
		s.cells[pos.Row][pos.Col] = newCell(s)
	}
	return s.cells[pos.Row][pos.Col]
}

// growToInclude keeps the storage rectangular while extending it to cover
// pos.
func (s *Sheet) growToInclude(pos contracts.Position) {
	for len(s.cells) <= pos.Row {
		s.cells = append(s.cells, nil)
	}

	width := len(s.cells[0])
	if pos.Col+1 > width {
		width = pos.Col + 1
	}
	for row := range s.cells {
		for len(s.cells[row]) < width {
			s.cells[row] = append(s.cells[row], nil)
		}
	}
}
