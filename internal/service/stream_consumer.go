package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"zezin-crm/client/internal/assistant"
	"zezin-crm/client/internal/model"
)

// StreamHandlers receives the outcome of one exchange. Exactly one of
// OnComplete or OnFailure is called, after every OnFragment.
type StreamHandlers struct {
	OnFragment func(text string)
	// OnComplete receives "" when the stream ended without a thread id.
	OnComplete func(threadID string)
	OnFailure  func(reason string)
}

// StreamConsumer drives request/response exchanges against a stream source,
// one at a time.
type StreamConsumer struct {
	source assistant.StreamSource
	active atomic.Bool
}

func NewStreamConsumer(source assistant.StreamSource) *StreamConsumer {
	return &StreamConsumer{source: source}
}

// Active is the live "network side is streaming" flag.
func (c *StreamConsumer) Active() *atomic.Bool {
	return &c.active
}

// TryAcquire claims the single in-flight slot. It returns false while another
// exchange is outstanding.
func (c *StreamConsumer) TryAcquire() bool {
	return c.active.CompareAndSwap(false, true)
}

// Run performs one exchange claimed with TryAcquire and releases the slot
// after the terminal handler returns.
func (c *StreamConsumer) Run(ctx context.Context, req *model.StreamRequest, h StreamHandlers) {
	defer c.active.Store(false)

	ch := make(chan model.StreamEvent)
	errCh := make(chan error, 1)
	go func() { errCh <- c.source.Stream(ctx, req, ch) }()

	terminated := false
	fragments := 0
	for ev := range ch {
		if terminated {
			slog.Warn("Dropping stream frame received after the terminal frame")
			continue
		}
		if ev.Error != "" {
			terminated = true
			h.OnFailure(ev.Error)
			continue
		}
		if ev.Content != "" {
			fragments++
			h.OnFragment(ev.Content)
		}
		if ev.Done {
			terminated = true
			h.OnComplete(ev.ThreadID)
		}
	}

	err := <-errCh
	switch {
	case terminated:
		if err != nil {
			slog.Debug("Stream source returned after terminal frame", "error", err)
		}
	case err != nil:
		h.OnFailure(err.Error())
	default:
		// Closed cleanly without a terminal frame: no home thread.
		h.OnComplete("")
	}
	slog.Debug("Stream finished", "fragments", fragments, "terminated", terminated)
}
