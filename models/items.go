// Package models contains the conversation item model shared by the request
// builder, the stream decoder, and the rollout recorder.
package models

import (
	"encoding/json"
	"fmt"
)

// ItemType discriminates the ConversationItem variants on the wire.
type ItemType string

const (
	ItemTypeMessage            ItemType = "message"
	ItemTypeReasoning          ItemType = "reasoning"
	ItemTypeLocalShellCall     ItemType = "local_shell_call"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"

	// ItemTypeOther marks an item whose wire tag was not recognized. It is
	// kept for forward compatibility but is never persisted and never sent.
	ItemTypeOther ItemType = "other"
)

// ContentType discriminates the ContentItem variants.
type ContentType string

const (
	ContentInputText  ContentType = "input_text"
	ContentInputImage ContentType = "input_image"
	ContentOutputText ContentType = "output_text"
)

// ContentItem is one element of a message's content list.
//
// Variant field mapping:
//
//	input_text:   Text
//	input_image:  ImageURL
//	output_text:  Text
type ContentItem struct {
	Type     ContentType
	Text     string
	ImageURL string
}

// MarshalJSON emits the exact tagged shape for the variant.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case ContentInputText, ContentOutputText:
		return json.Marshal(struct {
			Type ContentType `json:"type"`
			Text string      `json:"text"`
		}{c.Type, c.Text})
	case ContentInputImage:
		return json.Marshal(struct {
			Type     ContentType `json:"type"`
			ImageURL string      `json:"image_url"`
		}{c.Type, c.ImageURL})
	default:
		return nil, fmt.Errorf("unknown content item type %q", c.Type)
	}
}

// UnmarshalJSON accepts any of the tagged content shapes.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		Type     ContentType `json:"type"`
		Text     string      `json:"text"`
		ImageURL string      `json:"image_url"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Type = aux.Type
	c.Text = aux.Text
	c.ImageURL = aux.ImageURL
	return nil
}

// ReasoningSummary is a single summary entry of a reasoning item.
type ReasoningSummary struct {
	Text string
}

// MarshalJSON emits the summary_text tagged shape.
func (r ReasoningSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{"summary_text", r.Text})
}

// UnmarshalJSON accepts the summary_text tagged shape.
func (r *ReasoningSummary) UnmarshalJSON(data []byte) error {
	var aux struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Text = aux.Text
	return nil
}

// LocalShellStatus is the execution status of a local shell call.
type LocalShellStatus string

const (
	ShellStatusCompleted  LocalShellStatus = "completed"
	ShellStatusInProgress LocalShellStatus = "in_progress"
	ShellStatusIncomplete LocalShellStatus = "incomplete"
)

// LocalShellAction describes the command a local shell call executes.
// Type is always "exec"; the provider reserves room for other action kinds.
type LocalShellAction struct {
	Type             string            `json:"type"`
	Command          []string          `json:"command"`
	TimeoutMS        *uint64           `json:"timeout_ms,omitempty"`
	WorkingDirectory string            `json:"working_directory,omitempty"`
	Env              map[string]string `json:"env,omitempty"`
	User             string            `json:"user,omitempty"`
}

// ExecAction builds an exec-typed LocalShellAction for command.
func ExecAction(command []string) LocalShellAction {
	return LocalShellAction{Type: "exec", Command: command}
}

// FunctionCallOutputPayload is the canonical in-memory shape of a function
// call output. The durable and internal encodings always carry all three
// fields as an object; the provider-facing request collapses the object to
// the bare Content string at serialization time (see the llm package).
type FunctionCallOutputPayload struct {
	Content        string `json:"content"`
	Success        *bool  `json:"success"`
	IsUserFeedback bool   `json:"is_user_feedback"`
}

// ConversationItem is the tagged union carried through the whole pipeline.
// Different fields are populated depending on Type.
//
// Variant field mapping:
//
//	message:              Role, Content
//	reasoning:            ID, Summary
//	local_shell_call:     ID (optional), CallID (optional), Status, Action
//	function_call:        Name, Arguments, CallID
//	function_call_output: CallID, Output
//	other:                Raw (the undecoded wire object)
type ConversationItem struct {
	Type ItemType

	// message
	Role    string
	Content []ContentItem

	// reasoning; also the chat-completions id of a local_shell_call
	ID      string
	Summary []ReasoningSummary

	// local_shell_call
	Status LocalShellStatus
	Action *LocalShellAction

	// function_call; CallID is shared with function_call_output and
	// local_shell_call
	CallID    string
	Name      string
	Arguments string

	// function_call_output
	Output *FunctionCallOutputPayload

	// other
	Raw json.RawMessage
}

// IsUserFeedback reports whether this item carries user feedback routed
// through a function call output.
func (item ConversationItem) IsUserFeedback() bool {
	return item.Type == ItemTypeFunctionCallOutput && item.Output != nil && item.Output.IsUserFeedback
}

type messageWire struct {
	Type    ItemType      `json:"type"`
	Role    string        `json:"role"`
	Content []ContentItem `json:"content"`
}

type reasoningWire struct {
	Type    ItemType           `json:"type"`
	ID      string             `json:"id"`
	Summary []ReasoningSummary `json:"summary"`
}

type localShellCallWire struct {
	Type   ItemType          `json:"type"`
	ID     string            `json:"id,omitempty"`
	CallID string            `json:"call_id,omitempty"`
	Status LocalShellStatus  `json:"status"`
	Action *LocalShellAction `json:"action"`
}

type functionCallWire struct {
	Type ItemType `json:"type"`
	Name string   `json:"name"`
	// Arguments is a raw JSON-encoded string; the provider returns function
	// call arguments as a string containing JSON, not a parsed object, and
	// parsing is the caller's business.
	Arguments string `json:"arguments"`
	CallID    string `json:"call_id"`
}

type functionCallOutputWire struct {
	Type   ItemType                   `json:"type"`
	CallID string                     `json:"call_id"`
	Output *FunctionCallOutputPayload `json:"output"`
}

// MarshalJSON emits the tagged wire shape for the item's variant. Other
// items serialize back to whatever shape they decoded from.
func (item ConversationItem) MarshalJSON() ([]byte, error) {
	switch item.Type {
	case ItemTypeMessage:
		return json.Marshal(messageWire{item.Type, item.Role, item.Content})
	case ItemTypeReasoning:
		return json.Marshal(reasoningWire{item.Type, item.ID, item.Summary})
	case ItemTypeLocalShellCall:
		return json.Marshal(localShellCallWire{item.Type, item.ID, item.CallID, item.Status, item.Action})
	case ItemTypeFunctionCall:
		return json.Marshal(functionCallWire{item.Type, item.Name, item.Arguments, item.CallID})
	case ItemTypeFunctionCallOutput:
		return json.Marshal(functionCallOutputWire{item.Type, item.CallID, item.Output})
	case ItemTypeOther:
		if len(item.Raw) > 0 {
			return item.Raw, nil
		}
		return []byte("{}"), nil
	default:
		return nil, fmt.Errorf("unknown conversation item type %q", item.Type)
	}
}

// UnmarshalJSON decodes any tagged item shape. An unrecognized tag decodes
// to an Other item retaining the raw object, never an error.
func (item *ConversationItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type ItemType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case ItemTypeMessage:
		var w messageWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*item = ConversationItem{Type: w.Type, Role: w.Role, Content: w.Content}
	case ItemTypeReasoning:
		var w reasoningWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*item = ConversationItem{Type: w.Type, ID: w.ID, Summary: w.Summary}
	case ItemTypeLocalShellCall:
		var w localShellCallWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*item = ConversationItem{Type: w.Type, ID: w.ID, CallID: w.CallID, Status: w.Status, Action: w.Action}
	case ItemTypeFunctionCall:
		var w functionCallWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*item = ConversationItem{Type: w.Type, Name: w.Name, Arguments: w.Arguments, CallID: w.CallID}
	case ItemTypeFunctionCallOutput:
		var w functionCallOutputWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*item = ConversationItem{Type: w.Type, CallID: w.CallID, Output: w.Output}
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		*item = ConversationItem{Type: ItemTypeOther, Raw: raw}
	}
	return nil
}

// TokenUsage tracks token consumption reported on a completed response.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
	CachedTokens int `json:"cached_tokens,omitempty"`
}

// ShellToolCallParams is the parsed arguments shape of a shell function
// call. The wire format uses `timeout` with ambiguous units, so the field is
// named TimeoutMS in code.
type ShellToolCallParams struct {
	Command   []string `json:"command"`
	Workdir   string   `json:"workdir,omitempty"`
	TimeoutMS *uint64  `json:"timeout,omitempty"`
}

// ParseShellToolCallParams decodes the arguments string of a shell-family
// function call.
func ParseShellToolCallParams(arguments string) (ShellToolCallParams, error) {
	var params ShellToolCallParams
	if err := json.Unmarshal([]byte(arguments), &params); err != nil {
		return ShellToolCallParams{}, fmt.Errorf("parse shell tool call params: %w", err)
	}
	return params, nil
}
