package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/gemini-calculator/domain/calculation"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// GatewayPort defines the interface for calling the gateway module.
// Consumers should use this interface instead of directly referencing the Module.
type GatewayPort interface {
	Calculate(ctx context.Context, expression string) (calculation.CalculationResult, error)
}

// gatewayAdapter implements GatewayPort using the service container.
type gatewayAdapter struct {
	container mono.ServiceContainer
}

// NewGatewayAdapter creates a new adapter for the gateway services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewGatewayAdapter(container mono.ServiceContainer) GatewayPort {
	if container == nil {
		panic("gateway adapter requires non-nil ServiceContainer")
	}
	return &gatewayAdapter{container: container}
}

// Calculate evaluates expression via the calculate service.
func (a *gatewayAdapter) Calculate(ctx context.Context, expression string) (calculation.CalculationResult, error) {
	req := CalculateRequest{Expression: expression}
	var resp CalculateResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"calculate",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return calculation.CalculationResult{}, wrapCalculationError(
			fmt.Errorf("calculate service call failed: %w", err))
	}

	if resp.Error != "" || resp.ErrorKind != "" {
		return calculation.CalculationResult{}, mapServiceError(resp.Error, resp.ErrorKind)
	}

	return calculation.CalculationResult{Code: resp.PythonCode, Result: resp.Result}, nil
}

// Compile-time check that the in-process service satisfies the port.
var _ GatewayPort = (*Service)(nil)
