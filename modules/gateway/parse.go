package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/gemini-calculator/domain/calculation"
)

// parseCalculation decodes the model's JSON text into a CalculationResult.
// pythonCode must be a JSON string; result may be any JSON value and is
// coerced to text.
func parseCalculation(text string) (calculation.CalculationResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return calculation.CalculationResult{}, fmt.Errorf("%w: empty model response", ErrInvalidResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return calculation.CalculationResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	rawCode, ok := fields["pythonCode"]
	if !ok {
		return calculation.CalculationResult{}, ErrInvalidResponse
	}
	var code string
	if err := json.Unmarshal(rawCode, &code); err != nil || isNull(rawCode) {
		return calculation.CalculationResult{}, ErrInvalidResponse
	}

	rawResult, ok := fields["result"]
	if !ok {
		return calculation.CalculationResult{}, ErrInvalidResponse
	}
	result, err := coerceResult(rawResult)
	if err != nil {
		return calculation.CalculationResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return calculation.CalculationResult{Code: code, Result: result}, nil
}

// coerceResult renders any JSON value as text: strings verbatim, numbers as
// written, literals as-is and composites as compact JSON.
func coerceResult(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("empty result")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(raw), nil
	}
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
