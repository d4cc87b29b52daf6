package contracts

import "errors"

type SheetRepository interface {
	// SetCell writes text into a cell. Structural failures
	// (InvalidPositionError, CircularDependencyError, FormulaSyntaxError)
	// leave the sheet unchanged; computed errors come back inside the
	// returned cell's Result, with a nil error.
	SetCell(sheetId string, cellId string, value string) (*Cell, error)

	GetCell(sheetId string, cellId string) (*Cell, error)

	// ClearCell empties a cell. The cell stays addressable as long as other
	// cells still reference it.
	ClearCell(sheetId string, cellId string) error

	GetCellList(sheetId string) (CellList, error)

	// PrintValues and PrintTexts render the sheet's printable box as
	// tab-separated rows.
	PrintValues(sheetId string) (string, error)
	PrintTexts(sheetId string) (string, error)
}

var SheetNotFoundError = errors.New("sheet not found")
