package calculation

import (
	"strings"
	"testing"
)

func press(s State, symbols ...string) State {
	for _, sym := range symbols {
		s, _ = Dispatch(s, KeyPressed{Symbol: sym})
	}
	return s
}

func TestDispatch_KeyPressedConcatenates(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		want    string
	}{
		{name: "single digit", symbols: []string{"7"}, want: "7"},
		{name: "digits and operator", symbols: []string{"1", "2", "+", "3"}, want: "12+3"},
		{name: "decimal point", symbols: []string{"0", ".", "5", "*", "4"}, want: "0.5*4"},
		{name: "operators only", symbols: []string{"+", "-", "*", "/"}, want: "+-*/"},
		{name: "no input", symbols: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := press(State{}, tt.symbols...)
			if got := s.Expression.String(); got != tt.want {
				t.Errorf("expression = %q, want %q", got, tt.want)
			}
			if got := strings.Join(tt.symbols, ""); got != s.Expression.String() {
				t.Errorf("expression %q is not the concatenation %q", s.Expression, got)
			}
		})
	}
}

func TestDispatch_KeyPressedClearsError(t *testing.T) {
	s := State{Expression: "1/", Error: "boom"}
	s, req := Dispatch(s, KeyPressed{Symbol: "2"})

	if req != nil {
		t.Errorf("KeyPressed returned a request: %+v", req)
	}
	if s.Error != "" {
		t.Errorf("error = %q, want empty", s.Error)
	}
	if s.Expression != "1/2" {
		t.Errorf("expression = %q, want %q", s.Expression, "1/2")
	}
}

func TestDispatch_Cleared(t *testing.T) {
	tests := []struct {
		name  string
		state State
	}{
		{name: "empty state", state: State{}},
		{name: "with expression", state: State{Expression: "2+2"}},
		{name: "with result", state: State{Expression: "2+2", Result: &CalculationResult{Code: "2+2", Result: "4"}}},
		{name: "with error", state: State{Expression: "2/0", Error: "division by zero"}},
		{name: "while loading", state: State{Expression: "9*9", Loading: true, Generation: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, req := Dispatch(tt.state, Cleared{})
			if req != nil {
				t.Errorf("Cleared returned a request: %+v", req)
			}
			if s.Expression != "" {
				t.Errorf("expression = %q, want empty", s.Expression)
			}
			if s.Result != nil {
				t.Errorf("result = %+v, want nil", s.Result)
			}
			if s.Error != "" {
				t.Errorf("error = %q, want empty", s.Error)
			}
			if s.Loading {
				t.Error("loading should be false after clear")
			}
		})
	}
}

func TestDispatch_EvaluateBlankIsIgnored(t *testing.T) {
	for _, expr := range []Expression{"", " ", "\t  \n"} {
		s, req := Dispatch(State{Expression: expr, Error: "old"}, EvaluateRequested{})
		if req != nil {
			t.Errorf("expression %q: got request %+v, want none", expr, req)
		}
		if s.Loading {
			t.Errorf("expression %q: loading should stay false", expr)
		}
		if s.Generation != 0 {
			t.Errorf("expression %q: generation = %d, want 0", expr, s.Generation)
		}
	}
}

func TestDispatch_EvaluateIssuesRequest(t *testing.T) {
	prev := &CalculationResult{Code: "1+1", Result: "2"}
	s, req := Dispatch(State{Expression: "2+2", Result: prev, Error: "x"}, EvaluateRequested{})

	if req == nil {
		t.Fatal("expected a request")
	}
	if req.Expression != "2+2" {
		t.Errorf("request expression = %q, want %q", req.Expression, "2+2")
	}
	if req.Generation != s.Generation || s.Generation != 1 {
		t.Errorf("generation: request %d, state %d, want 1", req.Generation, s.Generation)
	}
	if !s.Loading {
		t.Error("loading should be true")
	}
	if s.Result != nil {
		t.Error("previous result should be cleared")
	}
	if s.Error != "" {
		t.Error("previous error should be cleared")
	}
}

func TestDispatch_SingleFlight(t *testing.T) {
	s, first := Dispatch(State{Expression: "6*7"}, EvaluateRequested{})
	if first == nil {
		t.Fatal("expected first request")
	}

	s, second := Dispatch(s, EvaluateRequested{})
	if second != nil {
		t.Fatalf("second evaluate while loading issued %+v", second)
	}
	if s.Generation != first.Generation {
		t.Errorf("generation moved to %d while loading", s.Generation)
	}
}

func TestDispatch_Success(t *testing.T) {
	s, req := Dispatch(State{Expression: "2+2"}, EvaluateRequested{})
	s, _ = Dispatch(s, EvaluationSucceeded{
		Generation: req.Generation,
		Result:     CalculationResult{Code: "2+2", Result: "4"},
	})

	if s.Loading {
		t.Error("loading should be false")
	}
	if s.Result == nil || s.Result.Result != "4" || s.Result.Code != "2+2" {
		t.Errorf("result = %+v, want {2+2 4}", s.Result)
	}
	if s.Expression != "2+2" {
		t.Errorf("expression = %q, want it untouched", s.Expression)
	}
}

func TestDispatch_Failure(t *testing.T) {
	s, req := Dispatch(State{Expression: "1/0"}, EvaluateRequested{})
	s, _ = Dispatch(s, EvaluationFailed{Generation: req.Generation, Message: "failed to get calculation: boom"})

	if s.Loading {
		t.Error("loading should be false")
	}
	if s.Result != nil {
		t.Error("result should be nil")
	}
	if s.Error != "failed to get calculation: boom" {
		t.Errorf("error = %q", s.Error)
	}
	if s.Expression != "1/0" {
		t.Errorf("expression = %q, want it untouched", s.Expression)
	}
}

func TestDispatch_FailureWithoutMessage(t *testing.T) {
	s, req := Dispatch(State{Expression: "1"}, EvaluateRequested{})
	s, _ = Dispatch(s, EvaluationFailed{Generation: req.Generation})

	if s.Error != DefaultErrorMessage {
		t.Errorf("error = %q, want %q", s.Error, DefaultErrorMessage)
	}
}

func TestDispatch_StaleCompletionDropped(t *testing.T) {
	s, req := Dispatch(State{Expression: "5+5"}, EvaluateRequested{})
	s, _ = Dispatch(s, Cleared{})
	s = press(s, "3")

	after, _ := Dispatch(s, EvaluationSucceeded{
		Generation: req.Generation,
		Result:     CalculationResult{Code: "5+5", Result: "10"},
	})
	if after.Result != nil {
		t.Errorf("stale success applied: %+v", after.Result)
	}

	after, _ = Dispatch(s, EvaluationFailed{Generation: req.Generation, Message: "late"})
	if after.Error != "" {
		t.Errorf("stale failure applied: %q", after.Error)
	}
}

func TestDispatch_NilEvent(t *testing.T) {
	in := State{Expression: "1"}
	out, req := Dispatch(in, nil)
	if req != nil || out != in {
		t.Errorf("nil event changed state: %+v", out)
	}
}

func TestExpression(t *testing.T) {
	var e Expression
	e = e.Append("1").Append("+").Append("2")
	if e != "1+2" {
		t.Errorf("Append = %q, want %q", e, "1+2")
	}
	if e.IsBlank() {
		t.Error("IsBlank() = true for non-empty expression")
	}
	if e = e.Reset(); e != "" {
		t.Errorf("Reset = %q, want empty", e)
	}
	if !e.IsBlank() {
		t.Error("IsBlank() = false for empty expression")
	}
}
