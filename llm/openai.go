package llm

import (
	"encoding/json"

	"github.com/openai/openai-go/v3/responses"

	"github.com/pbridger/turnwire/models"
)

// FrameFromOpenAI converts one openai-go Responses stream event into a
// provider frame for the decoder, so callers driving the official SDK
// transport can feed its events straight through. Events outside the
// decoder's vocabulary report ok=false and should be dropped.
func FrameFromOpenAI(ev responses.ResponseStreamEventUnion) (frame Frame, ok bool) {
	switch ev.Type {
	case "response.created":
		return Frame{Type: FrameCreated}, true
	case "response.output_item.done":
		return Frame{Type: FrameOutputItemDone, Item: json.RawMessage(ev.Item.RawJSON())}, true
	case "response.output_text.delta":
		return Frame{Type: FrameOutputTextDelta, Delta: ev.Delta}, true
	case "response.reasoning_summary_text.delta":
		return Frame{Type: FrameReasoningSummaryDelta, Delta: ev.Delta}, true
	case "response.completed":
		usage := tokenUsageFromOpenAI(ev.Response.Usage)
		return Frame{
			Type:     FrameCompleted,
			Response: &FrameResponse{ID: ev.Response.ID, Usage: usage},
		}, true
	default:
		return Frame{}, false
	}
}

func tokenUsageFromOpenAI(usage responses.ResponseUsage) *models.TokenUsage {
	return &models.TokenUsage{
		InputTokens:  int(usage.InputTokens),
		OutputTokens: int(usage.OutputTokens),
		TotalTokens:  int(usage.TotalTokens),
		CachedTokens: int(usage.InputTokensDetails.CachedTokens),
	}
}
