package kioskcontent

import (
	"context"
	"log/slog"
)

// NoopEventSink discards all events.
type NoopEventSink struct{}

// NewNoopEventSink creates an event sink that does nothing.
func NewNoopEventSink() *NoopEventSink { return &NoopEventSink{} }

func (NoopEventSink) PageCreated(ctx context.Context, page *Page) error       { return nil }
func (NoopEventSink) PageUpdated(ctx context.Context, page *Page) error       { return nil }
func (NoopEventSink) PageDeleted(ctx context.Context, pageID int64) error     { return nil }
func (NoopEventSink) ButtonCreated(ctx context.Context, button *Button) error { return nil }
func (NoopEventSink) ButtonUpdated(ctx context.Context, buttonID int64) error { return nil }
func (NoopEventSink) ButtonDeleted(ctx context.Context, buttonID int64) error { return nil }
func (NoopEventSink) ButtonsReordered(ctx context.Context, assignments []PositionAssignment) error {
	return nil
}

// SlogEventSink logs every event through a structured logger.
type SlogEventSink struct {
	logger *slog.Logger
}

// NewSlogEventSink creates an event sink that logs events. A nil logger
// falls back to slog.Default.
func NewSlogEventSink(logger *slog.Logger) *SlogEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEventSink{logger: logger}
}

func (s *SlogEventSink) PageCreated(ctx context.Context, page *Page) error {
	s.logger.InfoContext(ctx, "page created", "page_id", page.ID, "title", page.Title)
	return nil
}

func (s *SlogEventSink) PageUpdated(ctx context.Context, page *Page) error {
	s.logger.InfoContext(ctx, "page updated", "page_id", page.ID)
	return nil
}

func (s *SlogEventSink) PageDeleted(ctx context.Context, pageID int64) error {
	s.logger.InfoContext(ctx, "page deleted", "page_id", pageID)
	return nil
}

func (s *SlogEventSink) ButtonCreated(ctx context.Context, button *Button) error {
	s.logger.InfoContext(ctx, "button created", "button_id", button.ID, "title", button.Title)
	return nil
}

func (s *SlogEventSink) ButtonUpdated(ctx context.Context, buttonID int64) error {
	s.logger.InfoContext(ctx, "button updated", "button_id", buttonID)
	return nil
}

func (s *SlogEventSink) ButtonDeleted(ctx context.Context, buttonID int64) error {
	s.logger.InfoContext(ctx, "button deleted", "button_id", buttonID)
	return nil
}

func (s *SlogEventSink) ButtonsReordered(ctx context.Context, assignments []PositionAssignment) error {
	s.logger.InfoContext(ctx, "buttons reordered", "count", len(assignments))
	return nil
}
