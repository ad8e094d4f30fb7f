package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pbridger/turnwire/models"
)

// ResponseEventType discriminates the decoded stream events.
type ResponseEventType string

const (
	EventCreated               ResponseEventType = "created"
	EventOutputItemDone        ResponseEventType = "output_item.done"
	EventOutputTextDelta       ResponseEventType = "output_text.delta"
	EventReasoningSummaryDelta ResponseEventType = "reasoning_summary.delta"
	EventCompleted             ResponseEventType = "completed"
)

// ResponseEvent is one element of the decoded response stream.
//
// Variant field mapping:
//
//	created:                 (no fields)
//	output_item.done:        Item
//	output_text.delta:       Delta
//	reasoning_summary.delta: Delta
//	completed:               ResponseID, Usage
type ResponseEvent struct {
	Type       ResponseEventType
	Item       *models.ConversationItem
	Delta      string
	ResponseID string
	Usage      *models.TokenUsage
}

// Provider frame types understood by the decoder. Anything else is skipped.
const (
	FrameCreated               = "response.created"
	FrameOutputItemDone        = "response.output_item.done"
	FrameOutputTextDelta       = "response.output_text.delta"
	FrameReasoningSummaryDelta = "response.reasoning_summary_text.delta"
	FrameCompleted             = "response.completed"
	FrameError                 = "error"
)

// FrameResponse is the response envelope carried by created/completed frames.
type FrameResponse struct {
	ID    string             `json:"id"`
	Usage *models.TokenUsage `json:"usage,omitempty"`
}

// Frame is one already-demultiplexed provider frame. The transport parses
// the wire framing; the decoder only maps frames to events. A transport
// error is delivered as a frame with Err set, in place of further frames.
type Frame struct {
	Type     string          `json:"type"`
	Item     json.RawMessage `json:"item,omitempty"`
	Delta    string          `json:"delta,omitempty"`
	Response *FrameResponse  `json:"response,omitempty"`
	Message  string          `json:"message,omitempty"`
	Err      error           `json:"-"`
}

// ErrStreamClosed reports a frame sequence that ended before a completed
// frame arrived.
var ErrStreamClosed = errors.New("llm: response stream closed before completion")

// ResponseStream decodes provider frames into an ordered event sequence. It
// is single-consumer and runs entirely in the caller's goroutine; it
// performs no buffering, reordering, or coalescing.
type ResponseStream struct {
	frames <-chan Frame
	done   bool
}

// NewResponseStream wraps an externally-fed frame sequence.
func NewResponseStream(frames <-chan Frame) *ResponseStream {
	return &ResponseStream{frames: frames}
}

// Next blocks until the next event is available and returns it. The stream
// is terminal after a completed event or an error: a terminal error takes
// the place of the next event and no completed event will follow it, and
// once terminal, Next returns io.EOF.
func (s *ResponseStream) Next(ctx context.Context) (ResponseEvent, error) {
	if s.done {
		return ResponseEvent{}, io.EOF
	}
	for {
		select {
		case <-ctx.Done():
			return ResponseEvent{}, ctx.Err()
		case frame, ok := <-s.frames:
			if !ok {
				s.done = true
				return ResponseEvent{}, ErrStreamClosed
			}
			event, known, err := decodeFrame(frame)
			if err != nil {
				s.done = true
				return ResponseEvent{}, err
			}
			if !known {
				continue
			}
			if event.Type == EventCompleted {
				s.done = true
			}
			return event, nil
		}
	}
}

// decodeFrame maps one frame to at most one event. Unknown frame types
// report known=false and are skipped by the caller.
func decodeFrame(frame Frame) (event ResponseEvent, known bool, err error) {
	if frame.Err != nil {
		return ResponseEvent{}, false, frame.Err
	}
	switch frame.Type {
	case FrameCreated:
		return ResponseEvent{Type: EventCreated}, true, nil
	case FrameOutputItemDone:
		var item models.ConversationItem
		if err := json.Unmarshal(frame.Item, &item); err != nil {
			return ResponseEvent{}, false, fmt.Errorf("decode output item: %w", err)
		}
		return ResponseEvent{Type: EventOutputItemDone, Item: &item}, true, nil
	case FrameOutputTextDelta:
		return ResponseEvent{Type: EventOutputTextDelta, Delta: frame.Delta}, true, nil
	case FrameReasoningSummaryDelta:
		return ResponseEvent{Type: EventReasoningSummaryDelta, Delta: frame.Delta}, true, nil
	case FrameCompleted:
		event := ResponseEvent{Type: EventCompleted}
		if frame.Response != nil {
			event.ResponseID = frame.Response.ID
			event.Usage = frame.Response.Usage
		}
		return event, true, nil
	case FrameError:
		if frame.Message != "" {
			return ResponseEvent{}, false, fmt.Errorf("llm: provider stream error: %s", frame.Message)
		}
		return ResponseEvent{}, false, errors.New("llm: provider reported a stream error")
	default:
		return ResponseEvent{}, false, nil
	}
}
