package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"aitool-service/internal/provider"
	"aitool-service/internal/tool"
	"aitool-service/internal/usage"
	"aitool-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ToolHandler exposes the tool invocation endpoints
type ToolHandler struct {
	orchestrator *tool.Orchestrator
}

// NewToolHandler creates a tool handler
func NewToolHandler(orchestrator *tool.Orchestrator) *ToolHandler {
	return &ToolHandler{orchestrator: orchestrator}
}

// UseTool handles a single tool invocation request
func (h *ToolHandler) UseTool(c echo.Context) error {
	log := logger.FromContext(c)

	userID, companyID, ok := identityFromContext(c)
	if !ok {
		log.Error("Failed to get identity from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		ToolName string `json:"tool_name"`
		Prompt   string `json:"prompt"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tool request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ToolName == "" || req.Prompt == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tool_name and prompt are required"})
	}

	result, err := h.orchestrator.Invoke(c.Request().Context(), userID, companyID, req.ToolName, req.Prompt)
	if err != nil {
		if errors.Is(err, usage.ErrCompanyNotFound) {
			log.Error("Unknown company on tool request", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		log.Error("Tool invocation failed", zap.String("tool", req.ToolName), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to process request"})
	}

	switch result.Outcome {
	case tool.OutcomeSuspended:
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"message": "Account temporarily suspended due to excessive usage. Please contact support.",
		})

	case tool.OutcomeQuotaExceeded:
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"message":      "Monthly usage limit exceeded. Please upgrade your plan.",
			"current_plan": result.Quota.Plan,
			"usage": echo.Map{
				"used":  result.Quota.Used,
				"limit": result.Quota.Limit,
			},
			"upgrade_options": result.UpgradeOptions,
		})

	case tool.OutcomeFailure:
		if errors.Is(result.Err, tool.ErrInvalidTool) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tool name"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to process request"})

	default: // success
		return c.JSON(http.StatusOK, echo.Map{
			"success":  true,
			"tool":     req.ToolName,
			"response": result.Output,
			"provider": result.Provider,
			"usage":    usageSummary(result),
		})
	}
}

// Chatbot handles the streaming chat endpoint, relaying provider chunks as
// server-sent events
func (h *ToolHandler) Chatbot(c echo.Context) error {
	log := logger.FromContext(c)

	userID, companyID, ok := identityFromContext(c)
	if !ok {
		log.Error("Failed to get identity from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Messages []provider.Message `json:"messages"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse chat request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "messages array is required"})
	}

	res := c.Response()
	started := false

	// SSE headers go out lazily so the pre-check rejections can still answer
	// with plain JSON
	writeChunk := func(chunk string) error {
		if !started {
			res.Header().Set(echo.HeaderContentType, "text/event-stream")
			res.Header().Set("Cache-Control", "no-cache")
			res.Header().Set(echo.HeaderConnection, "keep-alive")
			res.WriteHeader(http.StatusOK)
			started = true
		}
		payload, err := json.Marshal(echo.Map{"content": chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	ctx := c.Request().Context()
	result, err := h.orchestrator.StreamChat(ctx, userID, companyID, req.Messages, writeChunk)
	if err != nil {
		if ctx.Err() != nil {
			// Client went away; nothing left to answer
			return nil
		}
		if errors.Is(err, usage.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		log.Error("Chat request failed", zap.Error(err))
		if started {
			return nil
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to process chatbot request"})
	}

	switch result.Outcome {
	case tool.OutcomeSuspended:
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"message": "Account temporarily suspended due to excessive usage. Please contact support.",
		})

	case tool.OutcomeQuotaExceeded:
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"message":      "Monthly usage limit exceeded. Please upgrade your plan.",
			"current_plan": result.Quota.Plan,
			"usage": echo.Map{
				"used":  result.Quota.Used,
				"limit": result.Quota.Limit,
			},
			"upgrade_options": result.UpgradeOptions,
		})

	case tool.OutcomeFailure:
		if started {
			fmt.Fprintf(res, "data: %s\n\n", `{"error":"stream failed"}`)
			res.Flush()
			return nil
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to process chatbot request"})

	default: // success
		if started {
			fmt.Fprint(res, "data: [DONE]\n\n")
			res.Flush()
			return nil
		}
		// Empty stream: fall back to a plain JSON body
		return c.JSON(http.StatusOK, echo.Map{
			"success":  true,
			"response": result.Output,
			"usage":    usageSummary(result),
		})
	}
}

// usageSummary renders the informational quota snapshot attached to a
// successful result
func usageSummary(result *tool.Result) echo.Map {
	if result.Unlimited {
		return echo.Map{"remaining": "unlimited", "limit": "unlimited"}
	}
	return echo.Map{"remaining": result.Remaining, "limit": result.Limit}
}

// identityFromContext pulls the authenticated triple set by AuthMiddleware
func identityFromContext(c echo.Context) (userID, companyID uint, ok bool) {
	userID, uok := c.Get("user_id").(uint)
	companyID, cok := c.Get("company_id").(uint)
	return userID, companyID, uok && cok
}
