// Package llm builds outbound model requests and decodes the provider's
// streamed responses into typed events. It does not own the transport: the
// caller sends the request and feeds the already-demultiplexed stream frames
// back into a ResponseStream.
package llm

import (
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pbridger/turnwire/models"
)

// Prompt is the material for a single model turn.
type Prompt struct {
	// Input is the conversation context, oldest first.
	Input []models.ConversationItem

	// UserInstructions are appended to the base instructions when present.
	UserInstructions string

	// BaseInstructionsOverride replaces the built-in base instructions.
	BaseInstructionsOverride string

	// Store asks the provider to retain the response server-side.
	Store bool

	// ExtraTools maps fully-qualified tool names to their definitions. The
	// qualified name, not the definition's own name, is what the model sees.
	ExtraTools map[string]*mcp.Tool
}

// FullInstructions assembles the instructions field for a request targeting
// model. Order is fixed: base (override or built-in), then user
// instructions, then the apply_patch addendum for legacy model families that
// lack the native patch tool.
func (p *Prompt) FullInstructions(model string) string {
	base := p.BaseInstructionsOverride
	if base == "" {
		base = baseInstructions
	}
	sections := []string{base}
	if p.UserInstructions != "" {
		sections = append(sections, p.UserInstructions)
	}
	if strings.HasPrefix(model, "gpt-4.1") {
		sections = append(sections, applyPatchToolInstructions)
	}
	return strings.Join(sections, "\n")
}
