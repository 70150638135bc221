package gateway

// CalculateRequest is the payload of services.gateway.calculate.
type CalculateRequest struct {
	Expression string `json:"expression"`
}

// CalculateResponse carries either a result or an in-band error.
type CalculateResponse struct {
	PythonCode string `json:"python_code,omitempty"`
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
}
