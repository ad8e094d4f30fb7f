package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pbridger/turnwire/models"
)

// ReasoningEffortParam is the provider's three-valued reasoning effort.
type ReasoningEffortParam string

const (
	ReasoningEffortLow    ReasoningEffortParam = "low"
	ReasoningEffortMedium ReasoningEffortParam = "medium"
	ReasoningEffortHigh   ReasoningEffortParam = "high"
)

// ReasoningSummaryParam is the provider's reasoning summary verbosity.
type ReasoningSummaryParam string

const (
	ReasoningSummaryAuto     ReasoningSummaryParam = "auto"
	ReasoningSummaryConcise  ReasoningSummaryParam = "concise"
	ReasoningSummaryDetailed ReasoningSummaryParam = "detailed"
)

// ReasoningParam is the reasoning block of an outbound request.
type ReasoningParam struct {
	Effort  ReasoningEffortParam  `json:"effort"`
	Summary ReasoningSummaryParam `json:"summary,omitempty"`
}

// ResponsesAPIRequest is the wire payload POSTed for one model turn.
type ResponsesAPIRequest struct {
	Model             string            `json:"model"`
	Instructions      string            `json:"instructions"`
	Input             []json.RawMessage `json:"input"`
	Tools             []json.RawMessage `json:"tools"`
	ToolChoice        string            `json:"tool_choice"`
	ParallelToolCalls bool              `json:"parallel_tool_calls"`
	Reasoning         *ReasoningParam   `json:"reasoning,omitempty"`
	Store             bool              `json:"store"`
	Stream            bool              `json:"stream"`
	Include           []string          `json:"include"`
}

// BuildRequest materializes the wire payload for prompt against the model in
// cfg. Conversation items are sanitized for the provider's accepted shapes;
// the stored items are never mutated.
func BuildRequest(cfg models.Config, prompt *Prompt) *ResponsesAPIRequest {
	input := make([]json.RawMessage, 0, len(prompt.Input))
	for _, item := range prompt.Input {
		input = append(input, sanitizeItem(item))
	}

	return &ResponsesAPIRequest{
		Model:             cfg.Model,
		Instructions:      prompt.FullInstructions(cfg.Model),
		Input:             input,
		Tools:             buildTools(prompt.ExtraTools),
		ToolChoice:        "auto",
		ParallelToolCalls: false,
		Reasoning:         reasoningParam(cfg),
		Store:             prompt.Store,
		Stream:            true,
		Include:           []string{},
	}
}

// sanitizeItem serializes one item for the request. Only function call
// outputs need special handling: the provider accepts a bare string where
// the internal encoding carries an object. An item that fails to encode is
// downgraded to a plain-text message instead of failing the whole request.
func sanitizeItem(item models.ConversationItem) json.RawMessage {
	data, err := json.Marshal(item)
	if err != nil {
		return fallbackTextItem(item, err)
	}
	if item.Type != models.ItemTypeFunctionCallOutput {
		return data
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fallbackTextItem(item, err)
	}
	content := ""
	if item.Output != nil {
		content = item.Output.Content
	}
	bare, err := json.Marshal(content)
	if err != nil {
		return fallbackTextItem(item, err)
	}
	obj["output"] = bare
	out, err := json.Marshal(obj)
	if err != nil {
		return fallbackTextItem(item, err)
	}
	return out
}

func fallbackTextItem(item models.ConversationItem, cause error) json.RawMessage {
	slog.Warn("downgrading unserializable conversation item", "type", item.Type, "error", cause)
	fallback := models.ConversationItem{
		Type: models.ItemTypeMessage,
		Role: "user",
		Content: []models.ContentItem{
			{Type: models.ContentInputText, Text: fmt.Sprintf("%+v", item)},
		},
	}
	// This shape cannot fail to encode.
	data, _ := json.Marshal(fallback)
	return data
}

type functionToolWire struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// buildTools serializes the prompt's tool definitions, keyed and reported
// under their fully-qualified names, sorted for a deterministic payload.
func buildTools(extra map[string]*mcp.Tool) []json.RawMessage {
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]json.RawMessage, 0, len(names))
	for _, name := range names {
		tool := extra[name]
		wire := functionToolWire{Type: "function", Name: name}
		if tool != nil {
			wire.Description = tool.Description
			if tool.InputSchema != nil {
				if schema, err := json.Marshal(tool.InputSchema); err == nil {
					wire.Parameters = schema
				} else {
					slog.Warn("dropping tool input schema", "tool", name, "error", err)
				}
			}
		}
		data, err := json.Marshal(wire)
		if err != nil {
			slog.Warn("skipping unserializable tool", "tool", name, "error", err)
			continue
		}
		tools = append(tools, data)
	}
	return tools
}

// SupportsReasoningSummaries reports whether requests for cfg's model should
// carry reasoning parameters: forced on by config, otherwise keyed off the
// recognized reasoning-model prefixes.
func SupportsReasoningSummaries(cfg models.Config) bool {
	if cfg.ModelSupportsReasoningSummaries {
		return true
	}
	return strings.HasPrefix(cfg.Model, "o") || strings.HasPrefix(cfg.Model, "codex")
}

// reasoningParam maps the four-valued config enums onto the provider's
// three-valued wire enums. An effort of "none" suppresses the block
// entirely; a summary of "none" merely omits the summary field.
func reasoningParam(cfg models.Config) *ReasoningParam {
	if !SupportsReasoningSummaries(cfg) {
		return nil
	}

	var effort ReasoningEffortParam
	switch cfg.ModelReasoningEffort {
	case models.ReasoningEffortNone:
		return nil
	case models.ReasoningEffortLow:
		effort = ReasoningEffortLow
	case models.ReasoningEffortHigh:
		effort = ReasoningEffortHigh
	case models.ReasoningEffortMedium, "":
		effort = ReasoningEffortMedium
	default:
		effort = ReasoningEffortMedium
	}

	param := &ReasoningParam{Effort: effort}
	switch cfg.ModelReasoningSummary {
	case models.ReasoningSummaryConcise:
		param.Summary = ReasoningSummaryConcise
	case models.ReasoningSummaryDetailed:
		param.Summary = ReasoningSummaryDetailed
	case models.ReasoningSummaryAuto, "":
		param.Summary = ReasoningSummaryAuto
	case models.ReasoningSummaryNone:
		// field omitted
	}
	return param
}
