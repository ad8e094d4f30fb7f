package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InputItemType discriminates the raw user input fragments.
type InputItemType string

const (
	InputItemText       InputItemType = "text"
	InputItemImage      InputItemType = "image"
	InputItemLocalImage InputItemType = "local_image"
)

// InputItem is one raw fragment of user input before conversion into a
// conversation item: literal text, a remote image reference, or a local
// image path to be embedded.
type InputItem struct {
	Type InputItemType

	// text
	Text string

	// image
	ImageURL string

	// local_image
	Path string
}

// UserInputMessage converts raw input fragments into a user message item.
// Local images are read from disk and embedded as base64 data URLs with a
// sniffed MIME type; a fragment whose file cannot be read is logged and
// skipped without aborting the rest of the message.
func UserInputMessage(items []InputItem) ConversationItem {
	content := make([]ContentItem, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case InputItemText:
			content = append(content, ContentItem{Type: ContentInputText, Text: item.Text})
		case InputItemImage:
			content = append(content, ContentItem{Type: ContentInputImage, ImageURL: item.ImageURL})
		case InputItemLocalImage:
			data, err := os.ReadFile(item.Path)
			if err != nil {
				slog.Warn("skipping image, could not read file", "path", item.Path, "error", err)
				continue
			}
			mime := mimetype.Detect(data).String()
			encoded := base64.StdEncoding.EncodeToString(data)
			content = append(content, ContentItem{
				Type:     ContentInputImage,
				ImageURL: fmt.Sprintf("data:%s;base64,%s", mime, encoded),
			})
		}
	}
	return ConversationItem{Type: ItemTypeMessage, Role: "user", Content: content}
}

// ToolCallOutputItem converts the result of an MCP tool call into a
// function_call_output item. A call error maps to Success=false with the
// error rendered as the content; otherwise the result is JSON-rendered and
// Success mirrors the result's IsError flag.
func ToolCallOutputItem(callID string, result *mcp.CallToolResult, callErr error) ConversationItem {
	var payload FunctionCallOutputPayload
	if callErr != nil {
		success := false
		payload = FunctionCallOutputPayload{
			Content: fmt.Sprintf("err: %v", callErr),
			Success: &success,
		}
	} else {
		success := !result.IsError
		content, err := json.Marshal(result)
		if err != nil {
			payload = FunctionCallOutputPayload{
				Content: fmt.Sprintf("JSON serialization error: %v", err),
				Success: &success,
			}
		} else {
			payload = FunctionCallOutputPayload{
				Content: string(content),
				Success: &success,
			}
		}
	}
	return ConversationItem{
		Type:   ItemTypeFunctionCallOutput,
		CallID: callID,
		Output: &payload,
	}
}
