package contracts

import "strconv"

// ErrorCategory classifies a computed formula error.
type ErrorCategory uint8

const (
	ErrorCategoryRef ErrorCategory = iota
	ErrorCategoryValue
	ErrorCategoryArithmetic
)

// FormulaError is a computed error value, not a call failure: a formula
// cell's value can legitimately be one, and it propagates through dependent
// formulas. Two FormulaErrors are equal iff their categories are equal.
type FormulaError struct {
	Category ErrorCategory
}

func (e FormulaError) Error() string {
	switch e.Category {
	case ErrorCategoryRef:
		return "#REF!"
	case ErrorCategoryValue:
		return "#VALUE!"
	case ErrorCategoryArithmetic:
		return "#ARITHM!"
	default:
		return "#ARITHM!"
	}
}

type ValueType uint8

const (
	ValueTypeNumber ValueType = iota
	ValueTypeText
	ValueTypeError
)

// Value is what any cell reports: a number, a text, or a computed error.
type Value struct {
	Type   ValueType
	Number float64
	Text   string
	Error  FormulaError
}

func NumberValue(number float64) Value {
	return Value{Type: ValueTypeNumber, Number: number}
}

func TextValue(text string) Value {
	return Value{Type: ValueTypeText, Text: text}
}

func ErrorValue(err FormulaError) Value {
	return Value{Type: ValueTypeError, Error: err}
}

func (v Value) String() string {
	switch v.Type {
	case ValueTypeNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueTypeError:
		return v.Error.Error()
	default:
		return v.Text
	}
}
