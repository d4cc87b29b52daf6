package contracts

import "errors"

// Cell is the API representation of one cell: its canonical position label,
// the text it stores and the value it currently computes to.
type Cell struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Result string `json:"result"`
}

// CellList maps canonical position labels to cells.
type CellList map[string]*Cell

var CellNotFoundError = errors.New("cell not found")
