package calculation

// State is the calculator state owned by one session. It is only mutated
// through Dispatch.
type State struct {
	Expression Expression         `json:"expression"`
	Result     *CalculationResult `json:"result,omitempty"`
	Error      string             `json:"error,omitempty"`
	Loading    bool               `json:"loading"`

	// Generation identifies the evaluation currently in flight. Completions
	// carrying any other generation are stale and dropped.
	Generation uint64 `json:"generation"`
}

// Request asks the caller to send Expression to the gateway and to report
// the outcome back with the same Generation.
type Request struct {
	Generation uint64
	Expression Expression
}

// Event is an input to the state holder.
type Event interface {
	apply(s State) (State, *Request)
}

// KeyPressed appends a keypad symbol to the expression.
type KeyPressed struct {
	Symbol string
}

// Cleared resets the expression and drops any result.
type Cleared struct{}

// EvaluateRequested asks for the current expression to be evaluated.
type EvaluateRequested struct{}

// EvaluationSucceeded completes an evaluation with a result.
type EvaluationSucceeded struct {
	Generation uint64
	Result     CalculationResult
}

// EvaluationFailed completes an evaluation with a user-visible message.
type EvaluationFailed struct {
	Generation uint64
	Message    string
}

// Dispatch applies e to s and returns the new state. A non-nil Request means
// a gateway call must be issued; nothing else in this package performs I/O.
func Dispatch(s State, e Event) (State, *Request) {
	if e == nil {
		return s, nil
	}
	return e.apply(s)
}

func (e KeyPressed) apply(s State) (State, *Request) {
	s.Error = ""
	s.Expression = s.Expression.Append(e.Symbol)
	return s, nil
}

func (Cleared) apply(s State) (State, *Request) {
	s.Error = ""
	s.Expression = s.Expression.Reset()
	s.Result = nil
	if s.Loading {
		// abandon the in-flight evaluation
		s.Loading = false
		s.Generation++
	}
	return s, nil
}

func (EvaluateRequested) apply(s State) (State, *Request) {
	s.Error = ""
	if s.Expression.IsBlank() || s.Loading {
		return s, nil
	}

	s.Loading = true
	s.Result = nil
	s.Generation++
	return s, &Request{Generation: s.Generation, Expression: s.Expression}
}

func (e EvaluationSucceeded) apply(s State) (State, *Request) {
	if !s.Pending(e.Generation) {
		return s, nil
	}
	result := e.Result
	s.Loading = false
	s.Error = ""
	s.Result = &result
	return s, nil
}

func (e EvaluationFailed) apply(s State) (State, *Request) {
	if !s.Pending(e.Generation) {
		return s, nil
	}
	s.Loading = false
	s.Result = nil
	s.Error = e.Message
	if s.Error == "" {
		s.Error = DefaultErrorMessage
	}
	return s, nil
}

// Pending reports whether generation is the evaluation s is waiting for.
func (s State) Pending(generation uint64) bool {
	return s.Loading && s.Generation == generation
}

// DefaultErrorMessage is shown when a failure carries no message.
const DefaultErrorMessage = "An unexpected error occurred."
