package calculation

import "testing"

func TestRender(t *testing.T) {
	result := &CalculationResult{Code: "print(2+2)", Result: "4"}

	tests := []struct {
		name        string
		state       State
		wantStatus  DisplayStatus
		wantDisplay string
		wantCode    string
	}{
		{
			name:        "empty shows zero",
			state:       State{},
			wantStatus:  StatusIdle,
			wantDisplay: "0",
		},
		{
			name:        "expression shown raw",
			state:       State{Expression: "12+3"},
			wantStatus:  StatusIdle,
			wantDisplay: "12+3",
		},
		{
			name:        "loading wins over everything",
			state:       State{Expression: "2+2", Loading: true, Error: "x", Result: result},
			wantStatus:  StatusLoading,
			wantDisplay: LoadingText,
		},
		{
			name:        "error wins over result",
			state:       State{Expression: "2+2", Error: "failed to get calculation: boom", Result: result},
			wantStatus:  StatusError,
			wantDisplay: "failed to get calculation: boom",
		},
		{
			name:        "result with code panel",
			state:       State{Expression: "2+2", Result: result},
			wantStatus:  StatusResult,
			wantDisplay: "4",
			wantCode:    "print(2+2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(tt.state)
			if v.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", v.Status, tt.wantStatus)
			}
			if v.Display != tt.wantDisplay {
				t.Errorf("display = %q, want %q", v.Display, tt.wantDisplay)
			}
			if v.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", v.Code, tt.wantCode)
			}
			if v.Expression != tt.state.Expression.String() {
				t.Errorf("expression = %q, want %q", v.Expression, tt.state.Expression)
			}
			if v.Loading != tt.state.Loading {
				t.Errorf("loading = %v, want %v", v.Loading, tt.state.Loading)
			}
		})
	}
}
