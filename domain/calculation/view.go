package calculation

// DisplayStatus names which part of the state wins the main display line.
type DisplayStatus string

// Display statuses in precedence order.
const (
	StatusLoading DisplayStatus = "loading"
	StatusError   DisplayStatus = "error"
	StatusResult  DisplayStatus = "result"
	StatusIdle    DisplayStatus = "idle"
)

// LoadingText is shown on the main display while an evaluation is in flight.
const LoadingText = "Calculating..."

// View is the rendered form of a State.
type View struct {
	Expression string             `json:"expression"`
	Display    string             `json:"display"`
	Status     DisplayStatus      `json:"status"`
	Code       string             `json:"python_code,omitempty"`
	Result     *CalculationResult `json:"result,omitempty"`
	Error      string             `json:"error,omitempty"`
	Loading    bool               `json:"loading"`
}

// Render builds the view for s. Precedence is loading > error > result >
// raw expression; the code panel is only filled when a result is shown.
func Render(s State) View {
	v := View{
		Expression: s.Expression.String(),
		Result:     s.Result,
		Error:      s.Error,
		Loading:    s.Loading,
	}

	switch {
	case s.Loading:
		v.Status = StatusLoading
		v.Display = LoadingText
	case s.Error != "":
		v.Status = StatusError
		v.Display = s.Error
	case s.Result != nil:
		v.Status = StatusResult
		v.Display = s.Result.Result
		v.Code = s.Result.Code
	default:
		v.Status = StatusIdle
		v.Display = s.Expression.String()
		if v.Display == "" {
			v.Display = "0"
		}
	}
	return v
}
