// Package rollout persists a session's conversation items to disk as they
// occur, so sessions can be replayed or audited later. Each session owns one
// append-only JSONL file whose first line is the session metadata; every
// later line is a single conversation item in enqueue order.
package rollout

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pbridger/turnwire/gitinfo"
	"github.com/pbridger/turnwire/models"
)

const (
	// sessionsSubdir under Config.HomeDir holds the rollout files.
	sessionsSubdir = "sessions"

	// mailboxCapacity bounds the queue between producers and the writer.
	// A full mailbox applies backpressure instead of growing memory.
	mailboxCapacity = 256

	// collectBudget caps the writer's git metadata collection as a whole;
	// the per-probe timeouts live in the gitinfo package.
	collectBudget = 8 * time.Second

	// Filenames use '-' instead of ':' for filesystems that reject colons,
	// and sort lexically by session start.
	filenameTimeFormat = "2006-01-02T15-04-05"
	metaTimeFormat     = "2006-01-02T15:04:05.000Z"
)

// SessionMeta is the immutable first record of every rollout file.
type SessionMeta struct {
	ID           string           `json:"id"`
	Timestamp    string           `json:"timestamp"`
	Instructions string           `json:"instructions,omitempty"`
	Git          *gitinfo.GitInfo `json:"git,omitempty"`
}

var (
	// ErrQueueFull reports a saturated mailbox on the non-blocking API.
	ErrQueueFull = errors.New("rollout: mailbox full, item not persisted")

	// ErrWriterClosed reports that the background writer has stopped.
	ErrWriterClosed = errors.New("rollout: writer closed, item not persisted")
)

// Recorder appends conversation items to one session's rollout file. All
// file I/O happens in a single background goroutine that owns the handle
// exclusively; producers only ever touch the mailbox.
type Recorder struct {
	tx   chan string
	done chan struct{}
	path string
}

// New creates the rollout file for a session (creating the sessions
// directory if missing) and starts the writer. Construction errors are
// returned so the caller can decide whether to run without persistence.
// The writer collects git metadata itself, bounded by its own timeout, so
// New never waits on the repository probe.
func New(cfg models.Config, sessionID uuid.UUID, instructions string) (*Recorder, error) {
	dir := filepath.Join(cfg.HomeDir, sessionsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}

	start := time.Now().UTC()
	filename := fmt.Sprintf("rollout-%s-%s.jsonl", start.Format(filenameTimeFormat), sessionID)
	path := filepath.Join(dir, filename)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open rollout file: %w", err)
	}

	r := &Recorder{
		tx:   make(chan string, mailboxCapacity),
		done: make(chan struct{}),
		path: path,
	}
	meta := SessionMeta{
		ID:           sessionID.String(),
		Timestamp:    start.Format(metaTimeFormat),
		Instructions: instructions,
	}
	go r.writerLoop(file, meta, cfg.Cwd)
	return r, nil
}

// Path returns the rollout file's location.
func (r *Recorder) Path() string {
	return r.path
}

// Close stops the writer after it drains everything already enqueued, then
// waits for it to exit or for ctx. No Record call may run concurrently with
// or after Close.
func (r *Recorder) Close(ctx context.Context) error {
	close(r.tx)
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordItems appends items to the rollout in order. Reasoning and
// unrecognized items are never persisted and are skipped. Blocks only on
// mailbox backpressure.
func (r *Recorder) RecordItems(ctx context.Context, items []models.ConversationItem) error {
	for _, item := range items {
		if err := r.RecordItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// RecordItem appends one item, yielding until mailbox space is available. A
// serialization failure is returned before any mailbox interaction.
func (r *Recorder) RecordItem(ctx context.Context, item models.ConversationItem) error {
	line, ok, err := encodeItem(item)
	if err != nil || !ok {
		return err
	}
	select {
	case r.tx <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryRecordItem appends one item without ever suspending the caller. When
// the mailbox is saturated or the writer has stopped, the item is not
// persisted and a distinguishable error is returned.
func (r *Recorder) TryRecordItem(item models.ConversationItem) error {
	line, ok, err := encodeItem(item)
	if err != nil || !ok {
		return err
	}
	select {
	case <-r.done:
		return ErrWriterClosed
	default:
	}
	select {
	case r.tx <- line:
		return nil
	default:
		return ErrQueueFull
	}
}

// encodeItem serializes an item for the log. ok=false marks items the
// filtering policy excludes from persistence.
func encodeItem(item models.ConversationItem) (line string, ok bool, err error) {
	switch item.Type {
	case models.ItemTypeReasoning, models.ItemTypeOther:
		return "", false, nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return "", false, fmt.Errorf("serialize rollout item: %w", err)
	}
	return string(data), true, nil
}

// writerLoop is the only code that touches the file. It writes the session
// metadata first, then drains the mailbox one line at a time, flushing
// after every line. On an I/O failure it logs a warning and stops; queued
// and future items are dropped rather than retried.
func (r *Recorder) writerLoop(file *os.File, meta SessionMeta, cwd string) {
	defer close(r.done)
	defer file.Close()
	w := bufio.NewWriter(file)

	ctx, cancel := context.WithTimeout(context.Background(), collectBudget)
	meta.Git = gitinfo.Collect(ctx, cwd)
	cancel()

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		slog.Warn("rollout writer: failed to serialize session meta", "error", err)
		return
	}
	if err := writeLine(w, string(metaJSON)); err != nil {
		slog.Warn("rollout writer: failed to write session meta", "error", err)
		return
	}

	for line := range r.tx {
		if err := writeLine(w, line); err != nil {
			slog.Warn("rollout writer: failed to write line", "error", err)
			return
		}
	}
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
