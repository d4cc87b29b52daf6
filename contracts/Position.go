package contracts

import (
	"errors"
	"strconv"
)

const (
	// MaxRows and MaxCols bound every position a sheet can address.
	MaxRows = 16384
	MaxCols = 16384

	letters = 26

	// maxPositionLength caps the label length so that parsing can never
	// overflow an int before the bounds check runs.
	maxPositionLength = 17
	maxLetterCount    = 3
)

var InvalidPositionError = errors.New("invalid position")

// Position addresses a single cell: zero-based row and column.
type Position struct {
	Row int
	Col int
}

// PositionNone is the "no position" sentinel returned on parse failure.
var PositionNone = Position{Row: -1, Col: -1}

// Size is the bounding box of a sheet's non-empty cells.
type Size struct {
	Rows int
	Cols int
}

func (p Position) IsValid() bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < MaxRows && p.Col < MaxCols
}

// Less orders positions row-first, then column.
func (p Position) Less(rhs Position) bool {
	if p.Row != rhs.Row {
		return p.Row < rhs.Row
	}
	return p.Col < rhs.Col
}

// String renders the position as a spreadsheet label: column as base-26
// letters (A..Z, AA..), row as a 1-based decimal. Invalid positions render
// as an empty string.
func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}

	buf := make([]byte, 0, maxPositionLength)
	for col := p.Col; col >= 0; col = col/letters - 1 {
		buf = append([]byte{byte('A' + col%letters)}, buf...)
	}

	return string(buf) + strconv.Itoa(p.Row+1)
}

// PositionFromString parses a label back into a Position. The grammar is
// strict: one to three uppercase letters immediately followed by one or more
// digits, nothing else, at most maxPositionLength characters. Any violation
// yields PositionNone.
func PositionFromString(label string) Position {
	if label == "" || len(label) > maxPositionLength {
		return PositionNone
	}

	letterCount := 0
	for letterCount < len(label) && label[letterCount] >= 'A' && label[letterCount] <= 'Z' {
		letterCount++
	}
	if letterCount == 0 || letterCount > maxLetterCount {
		return PositionNone
	}
	if letterCount == len(label) {
		// no digit part
		return PositionNone
	}

	col := 0
	for i := 0; i < letterCount; i++ {
		col = col*letters + int(label[i]-'A'+1)
	}
	col--

	row := 0
	for i := letterCount; i < len(label); i++ {
		ch := label[i]
		if ch < '0' || ch > '9' {
			return PositionNone
		}
		row = row*10 + int(ch-'0')
	}
	row--

	result := Position{Row: row, Col: col}
	if !result.IsValid() {
		return PositionNone
	}
	return result
}
