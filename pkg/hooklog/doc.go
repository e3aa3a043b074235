// Package hooklog forwards log records to chat webhooks.
//
// A Handler renders each Record into a Message (a short text line plus an
// optional embed) and passes it to a Sender. Delivery is synchronous: Emit
// blocks until the sender returns. Failures never escape Emit except for
// interrupt-class errors (context.Canceled, ErrInterrupted), which callers
// need to see in order to shut down.
//
// Adapters connect a Handler to the two loggers used in this repo:
//   - SlogHandler implements slog.Handler
//   - ZerologWriter implements zerolog.LevelWriter (min level + rate limit)
//
// Palette and FieldSelection are immutable; customize them through With /
// Include / Exclude, which return copies.
package hooklog
