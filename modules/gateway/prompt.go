package gateway

import (
	"fmt"
	"strings"
)

const promptTemplate = `Given the mathematical expression: "%s", provide the Python code to solve it and the numerical result. Ensure the result is precise. Your response must be a JSON object with two keys: "pythonCode" (a string containing the Python code) and "result" (a number or string representing the answer).`

// buildPrompt renders the fixed instruction for expression.
func buildPrompt(expression string) string {
	return fmt.Sprintf(promptTemplate, expression)
}

// generateContentRequest is the body of a models/{model}:generateContent call.
type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
	Temperature      float64 `json:"temperature"`
}

type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// calculationSchema constrains the model to a {pythonCode, result} object.
var calculationSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"pythonCode": {
			Type:        "STRING",
			Description: "A single line of Python code that evaluates the expression.",
		},
		"result": {
			Type:        "STRING",
			Description: "The numerical or string result of the Python code evaluation.",
		},
	},
	Required: []string{"pythonCode", "result"},
}

// newCalculationRequest builds the deterministic, JSON-constrained request
// for one expression.
func newCalculationRequest(expression string) generateContentRequest {
	return generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: buildPrompt(expression)}},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   calculationSchema,
			Temperature:      0,
		},
	}
}

// generateContentResponse is the subset of the reply the gateway reads.
type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// text concatenates the parts of the first candidate.
func (r generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// apiErrorBody is the error envelope returned with non-2xx statuses.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
