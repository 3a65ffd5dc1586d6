package tool

import (
	"errors"
	"fmt"
)

// ErrInvalidTool is returned for unrecognized tool names. The attempt is
// still logged as a failed usage fact.
var ErrInvalidTool = errors.New("invalid tool name")

// Recognized tools
const (
	ToolSummarizer    = "summarizer"
	ToolEmailWriter   = "email-writer"
	ToolCodeGenerator = "code-generator"

	// ToolChatbot names the streaming chat surface in usage records
	ToolChatbot = "chatbot"
)

// buildPrompt wraps the user's input in the tool-specific prompt template
func buildPrompt(toolName, prompt string) (string, error) {
	switch toolName {
	case ToolSummarizer:
		return fmt.Sprintf("Summarize in 200 chars:\n\n%s\n\nSummary:", prompt), nil
	case ToolEmailWriter:
		return fmt.Sprintf("Write professional email:\n\n%s\n\nEmail:", prompt), nil
	case ToolCodeGenerator:
		return fmt.Sprintf("Write code:\n\n%s\n\nCode:", prompt), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTool, toolName)
	}
}
