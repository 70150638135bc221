package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/example/gemini-calculator/domain/calculation"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Service is the Calculation Gateway: one model request per Calculate call,
// no retries and no caching.
type Service struct {
	client *client
	model  string
	logger types.Logger
}

// NewService creates a gateway service for cfg.
func NewService(cfg Config, logger types.Logger) *Service {
	return &Service{
		client: newClient(cfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Calculate asks the model to solve expression. Every returned error is
// prefixed with "failed to get calculation: ".
func (s *Service) Calculate(ctx context.Context, expression string) (calculation.CalculationResult, error) {
	if calculation.Expression(expression).IsBlank() {
		return calculation.CalculationResult{}, wrapCalculationError(ErrEmptyExpression)
	}

	start := time.Now()
	text, err := s.client.generate(ctx, newCalculationRequest(expression))
	if err != nil {
		s.logger.Warn("Model request failed",
			"model", s.model,
			"duration", time.Since(start),
			"error", err)
		return calculation.CalculationResult{}, wrapCalculationError(err)
	}

	result, err := parseCalculation(text)
	if err != nil {
		s.logger.Warn("Model returned unexpected payload",
			"model", s.model,
			"error", err)
		return calculation.CalculationResult{}, wrapCalculationError(err)
	}

	s.logger.Debug("Calculation completed",
		"model", s.model,
		"duration", time.Since(start))
	return result, nil
}

// wrapCalculationError prefixes err for display; errors without a message
// become ErrUnknown.
func wrapCalculationError(err error) error {
	if err == nil || err.Error() == "" {
		err = ErrUnknown
	}
	return fmt.Errorf("failed to get calculation: %w", err)
}

// calculate handles the gateway.calculate service request.
func (m *Module) calculate(ctx context.Context, req CalculateRequest, _ *mono.Msg) (CalculateResponse, error) {
	result, err := m.service.Calculate(ctx, req.Expression)
	if err != nil {
		return CalculateResponse{
			Error:     err.Error(),
			ErrorKind: errorKind(err),
		}, nil // Return error in response, not as Go error
	}

	return CalculateResponse{
		PythonCode: result.Code,
		Result:     result.Result,
	}, nil
}
