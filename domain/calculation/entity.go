package calculation

import "strings"

// CalculationResult is the code/result pair returned by one successful
// gateway call.
type CalculationResult struct {
	Code   string `json:"python_code"`
	Result string `json:"result"`
}

// Expression is the raw arithmetic text entered on the keypad. It is never
// validated locally; evaluation is delegated to the gateway.
type Expression string

// Append returns the expression with symbol concatenated to it.
func (e Expression) Append(symbol string) Expression {
	return e + Expression(symbol)
}

// Reset returns the empty expression.
func (e Expression) Reset() Expression {
	return ""
}

// IsBlank reports whether the expression is empty or whitespace only.
func (e Expression) IsBlank() bool {
	return strings.TrimSpace(string(e)) == ""
}

// String returns the expression text.
func (e Expression) String() string {
	return string(e)
}
