package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// client issues generateContent calls with Fiber's HTTP agent.
type client struct {
	cfg Config
}

func newClient(cfg Config) *client {
	return &client{cfg: cfg}
}

// endpoint returns the generateContent URL for the configured model.
func (c *client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model))
}

// generate sends req and returns the concatenated candidate text.
// The request is bounded by the configured timeout or the ctx deadline,
// whichever comes first.
func (c *client) generate(ctx context.Context, req generateContentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return "", context.DeadlineExceeded
	}

	agent := fiber.Post(c.endpoint()).
		Set("x-goog-api-key", c.cfg.APIKey).
		JSON(req).
		Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return "", parseAPIError(code, body)
	}

	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	return resp.text(), nil
}

// parseAPIError builds an APIError from an error envelope, falling back to
// the status code when the body is not one.
func parseAPIError(code int, body []byte) error {
	apiErr := &APIError{StatusCode: code}
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Message = envelope.Error.Message
		apiErr.Status = envelope.Error.Status
	}
	return apiErr
}
