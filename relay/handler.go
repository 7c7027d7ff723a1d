package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/credential"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/merkle"
)

// HeaderConversationHead carries the hash-chain head of the caller's history
// with the returned assistant turn appended. The system instruction is not
// part of the chain.
const HeaderConversationHead = "X-Conversation-Head"

const (
	methodNotAllowedMessage = "Method not allowed. Use POST."
	missingFieldsMessage    = "Missing required fields: system, input"
)

// handleCompletion is the relay's single endpoint:
//   - GET with ?ping reports whether an API key is configured
//   - POST {system, input} forwards the conversation upstream
//   - every other method is rejected with 405
func (r *Relay) handleCompletion(c *fiber.Ctx) error {
	log := r.logger.With(zap.String("request_id", requestID(c)))

	if c.Method() == fiber.MethodGet && c.Query("ping") != "" {
		return c.JSON(llm.PingResponse{OK: credential.Configured(r.credential)})
	}

	if c.Method() != fiber.MethodPost {
		log.Warn("method not allowed", zap.String("method", c.Method()))
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(llm.ErrorResponse{Error: methodNotAllowedMessage})
	}

	apiKey, err := r.credential.Lookup()
	if err != nil {
		log.Error("upstream credential unavailable", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.NewAPIError(err.Error()))
	}

	return r.complete(c, log, apiKey)
}

// complete validates the request body, calls upstream and shapes the reply.
func (r *Relay) complete(c *fiber.Ctx, log *zap.Logger, apiKey string) error {
	startTime := time.Now()

	var req llm.CompletionRequest
	if body := bytes.TrimSpace(c.Body()); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("could not parse request body: %w", err)
		}
	}

	// An empty input array is present and is forwarded as is; only an absent
	// or null input counts as missing.
	if req.System == "" || req.Input == nil {
		log.Warn("rejected request with missing fields",
			zap.Bool("has_system", req.System != ""),
			zap.Int("turn_count", len(req.Input)),
		)
		return c.Status(fiber.StatusBadRequest).JSON(llm.NewAPIError(missingFieldsMessage))
	}

	if err := llm.ValidateInput(req.Input); err != nil {
		var inputErr *llm.InputError
		if !errors.As(err, &inputErr) {
			return err
		}
		log.Warn("rejected malformed conversation", zap.Strings("problems", inputErr.Problems))
		return c.Status(fiber.StatusBadRequest).JSON(llm.NewAPIError(inputErr.Error()))
	}

	history := merkle.Head(req.Input)
	if history != nil {
		log = log.With(zap.String("history", truncate(history.Hash, 16)))
	}

	log.Debug("received completion request",
		zap.Int("turn_count", len(req.Input)),
		zap.Int("system_length", len(req.System)),
	)

	resp, err := r.upstream.Create(c.UserContext(), apiKey, llm.BuildInput(req.System, req.Input))
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}

	if !resp.OK() {
		log.Error("upstream returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(resp.Raw), 500)),
			zap.Duration("duration", time.Since(startTime)),
		)
		return c.Status(resp.StatusCode).JSON(llm.APIError{Error: resp.ErrorObject()})
	}

	if resp.Text == "" {
		log.Warn("upstream response carried no output text", zap.Int("status", resp.StatusCode))
	}

	log.Debug("received response from upstream",
		zap.String("text_preview", truncate(resp.Text, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	reply := llm.NewCompletionResponse(resp.Text)
	c.Set(HeaderConversationHead, merkle.NewNode(reply.AssistantMessage, history).Hash)

	return c.JSON(reply)
}
