package hooklog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

// ErrInterrupted marks a failure that must reach the caller instead of the
// error handler (shutdown in progress, caller gave up).
var ErrInterrupted = errors.New("hooklog: interrupted")

// Sender delivers a rendered message. embed may be nil.
type Sender interface {
	Send(ctx context.Context, text string, embed *Embed) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, text string, embed *Embed) error

func (f SenderFunc) Send(ctx context.Context, text string, embed *Embed) error {
	return f(ctx, text, embed)
}

// Flusher is implemented by senders that buffer.
type Flusher interface {
	Flush() error
}

// ErrorHandler receives failures that Emit swallowed.
type ErrorHandler func(r *Record, err error)

// Observer is notified about each emit outcome.
type Observer interface {
	Delivered(level string)
	Failed(level string, err error)
	Dropped(level string)
}

// PanicError wraps a value recovered while rendering or sending.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsInterrupt reports whether err must propagate out of Emit.
func IsInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrInterrupted)
}

// Handler renders records and hands them to a Sender. It holds no mutable
// state, so one Handler may be shared by any number of goroutines as long as
// its Sender allows it.
type Handler struct {
	sender   Sender
	renderer *Renderer
	onError  ErrorHandler
	flush    func() error
	observer Observer
}

// Option configures a Handler.
type Option func(*Handler)

// WithRenderer replaces the default rich renderer.
func WithRenderer(r *Renderer) Option {
	return func(h *Handler) {
		if r != nil {
			h.renderer = r
		}
	}
}

// WithErrorHandler replaces the stderr diagnostic.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(h *Handler) {
		if fn != nil {
			h.onError = fn
		}
	}
}

// WithFlush runs fn after every successful send.
func WithFlush(fn func() error) Option {
	return func(h *Handler) { h.flush = fn }
}

// WithObserver installs an outcome observer (metrics).
func WithObserver(o Observer) Option {
	return func(h *Handler) { h.observer = o }
}

// New builds a Handler around sender.
func New(sender Sender, opts ...Option) (*Handler, error) {
	if sender == nil {
		return nil, errors.New("hooklog: sender is nil")
	}
	h := &Handler{
		sender:   sender,
		renderer: NewRenderer(),
		onError:  StderrErrorHandler(os.Stderr),
	}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	return h, nil
}

// Renderer returns the renderer used by h.
func (h *Handler) Renderer() *Renderer { return h.renderer }

// Emit renders r and sends it, blocking until the sender returns.
//
// Only interrupt-class failures (see IsInterrupt) are returned. Anything else
// goes to the error handler and Emit returns nil.
func (h *Handler) Emit(ctx context.Context, r *Record) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if perr, ok := p.(error); ok && IsInterrupt(perr) {
			panic(p)
		}
		h.fail(r, &PanicError{Value: p, Stack: string(debug.Stack())})
		err = nil
	}()

	if err := ctx.Err(); err != nil && IsInterrupt(err) {
		return err
	}

	msg, err := h.renderer.Render(r)
	if err != nil {
		h.fail(r, err)
		return nil
	}

	if err := h.sender.Send(ctx, msg.Text, msg.Embed); err != nil {
		if IsInterrupt(err) {
			return err
		}
		h.fail(r, fmt.Errorf("send: %w", err))
		return nil
	}

	if err := h.flushAll(); err != nil {
		if IsInterrupt(err) {
			return err
		}
		h.fail(r, fmt.Errorf("flush: %w", err))
		return nil
	}

	if h.observer != nil {
		h.observer.Delivered(levelOf(r))
	}
	return nil
}

// Drop records that a record was filtered before reaching Emit.
func (h *Handler) Drop(r *Record) {
	if h.observer != nil {
		h.observer.Dropped(levelOf(r))
	}
}

func (h *Handler) flushAll() error {
	if f, ok := h.sender.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	if h.flush != nil {
		return h.flush()
	}
	return nil
}

func (h *Handler) fail(r *Record, err error) {
	if h.observer != nil {
		h.observer.Failed(levelOf(r), err)
	}
	h.onError(r, err)
}

func levelOf(r *Record) string {
	if r == nil {
		return ""
	}
	return r.Level
}

// StderrErrorHandler writes a short diagnostic to w. Write errors are ignored.
func StderrErrorHandler(w io.Writer) ErrorHandler {
	if w == nil {
		w = io.Discard
	}
	return func(r *Record, err error) {
		_, _ = fmt.Fprintln(w, "--- Logging error ---")
		_, _ = fmt.Fprintf(w, "%v\n", err)
		if r != nil {
			origin := r.Origin()
			if origin == "" {
				origin = "unknown origin"
			}
			_, _ = fmt.Fprintf(w, "Message: %q\nLogged from %s\n", r.Message, origin)
		}
		var pe *PanicError
		if errors.As(err, &pe) && pe.Stack != "" {
			_, _ = fmt.Fprintln(w, pe.Stack)
		}
	}
}
