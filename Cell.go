package main

import (
	"strings"

	"sheetgrid/contracts"
)

// cellContent is the content variant held by a cell: empty, literal text or
// formula. Every variant answers the same four questions.
type cellContent interface {
	GetValue() contracts.Value
	GetText() string
	GetReferencedCells() []contracts.Position
	InvalidateCache()
}

type emptyContent struct{}

// blank cells count as numeric zero when used as an operand
func (emptyContent) GetValue() contracts.Value                { return contracts.NumberValue(0) }
func (emptyContent) GetText() string                          { return "" }
func (emptyContent) GetReferencedCells() []contracts.Position { return nil }
func (emptyContent) InvalidateCache()                         {}

type textContent struct {
	text string
}

func (tc textContent) GetValue() contracts.Value {
	if strings.HasPrefix(tc.text, EscapePrefix) {
		return contracts.TextValue(tc.text[1:])
	}
	return contracts.TextValue(tc.text)
}

func (tc textContent) GetText() string                          { return tc.text }
func (tc textContent) GetReferencedCells() []contracts.Position { return nil }
func (tc textContent) InvalidateCache()                         {}

type formulaContent struct {
	formula contracts.Formula
	sheet   *Sheet
	cache   *contracts.Value
}

func (fc *formulaContent) GetValue() contracts.Value {
	if fc.cache == nil {
		value := fc.formula.Evaluate(fc.sheet.resolveOperand)
		fc.cache = &value
	}
	return *fc.cache
}

func (fc *formulaContent) GetText() string {
	return FormulaPrefix + fc.formula.GetExpression()
}

func (fc *formulaContent) GetReferencedCells() []contracts.Position {
	return fc.formula.GetReferencedCells()
}

func (fc *formulaContent) InvalidateCache() {
	fc.cache = nil
}

// Cell is owned exclusively by its sheet. Besides the content variant it
// carries the two halves of the dependency relation: sourceCells (cells its
// formula reads) and dependentCells (cells that read it). The two sets are
// kept symmetric by every mutation, and restricted to formula cells they
// always form a DAG.
type Cell struct {
	sheet *Sheet
	impl  cellContent

	sourceCells    map[*Cell]struct{}
	dependentCells map[*Cell]struct{}
}

func newCell(sheet *Sheet) *Cell {
	return &Cell{
		sheet:          sheet,
		impl:           emptyContent{},
		sourceCells:    map[*Cell]struct{}{},
		dependentCells: map[*Cell]struct{}{},
	}
}

// Set replaces the cell's content. Setting text identical to the current
// rendered text is a no-op. A parse failure or a circular dependency leaves
// the cell and the graph completely untouched: edges are only rewired after
// the new content has been fully validated.
func (c *Cell) Set(text string) error {
	if text == c.GetText() {
		return nil
	}

	var newImpl cellContent
	var newRefs []contracts.Position

	switch {
	case len(text) > 1 && strings.HasPrefix(text, FormulaPrefix):
		formula, err := ParseFormula(text[1:])
		if err != nil {
			return err
		}
		newRefs = formula.GetReferencedCells()
		if c.checkCircularDependency(newRefs) {
			return contracts.CircularDependencyError
		}
		newImpl = &formulaContent{formula: formula, sheet: c.sheet}
	case text == "":
		newImpl = emptyContent{}
	default:
		newImpl = textContent{text: text}
	}

	c.impl = newImpl
	c.updateDependencies(newRefs)
	c.invalidateCacheDownstream()
	return nil
}

// Clear empties the cell, detaches it from all sources and invalidates the
// dependents - even when the rendered text was already empty.
func (c *Cell) Clear() {
	_ = c.Set("")
	c.unsubscribeFromSources()
	c.invalidateCacheDownstream()
}

func (c *Cell) GetValue() contracts.Value {
	return c.impl.GetValue()
}

func (c *Cell) GetText() string {
	return c.impl.GetText()
}

func (c *Cell) GetReferencedCells() []contracts.Position {
	return c.impl.GetReferencedCells()
}

// IsReferenced reports whether any other cell reads this one.
func (c *Cell) IsReferenced() bool {
	return len(c.dependentCells) > 0
}

// checkCircularDependency walks the existing source edges breadth-first from
// the prospective references; reaching c means the new edges would close a
// cycle. Nothing is mutated before this check passes.
func (c *Cell) checkCircularDependency(newRefs []contracts.Position) bool {
	queue := make([]*Cell, 0, len(newRefs))
	for _, pos := range newRefs {
		ref := c.sheet.getCell(pos)
		if ref == nil {
			continue
		}
		if ref == c {
			return true
		}
		queue = append(queue, ref)
	}

	visited := map[*Cell]struct{}{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		if current == c {
			return true
		}
		for src := range current.sourceCells {
			queue = append(queue, src)
		}
	}
	return false
}

func (c *Cell) unsubscribeFromSources() {
	for src := range c.sourceCells {
		delete(src.dependentCells, c)
	}
	clear(c.sourceCells)
}

// updateDependencies detaches the cell from its current sources, then
// subscribes it to every referenced cell, creating missing ones as empty.
func (c *Cell) updateDependencies(newRefs []contracts.Position) {
	c.unsubscribeFromSources()

	for _, pos := range newRefs {
		src := c.sheet.materializeCell(pos)
		if src == nil || src == c {
			continue
		}
		c.sourceCells[src] = struct{}{}
		src.dependentCells[c] = struct{}{}
	}
}

// invalidateCacheDownstream drops the cached value of this cell and every
// transitive dependent. Each cell is visited once; the order does not matter
// because invalidation is idempotent.
func (c *Cell) invalidateCacheDownstream() {
	stack := []*Cell{c}
	visited := map[*Cell]struct{}{}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		current.impl.InvalidateCache()
		for dependent := range current.dependentCells {
			stack = append(stack, dependent)
		}
	}
}
