package hooklog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// SlogOptions configures a SlogHandler.
type SlogOptions struct {
	// Level is the minimum level forwarded. Defaults to slog.LevelInfo.
	Level slog.Leveler
	// Name is the logger name when records carry no "logger" attr.
	Name string
}

// SlogHandler exposes a Handler as a slog.Handler.
type SlogHandler struct {
	h      *Handler
	level  slog.Leveler
	name   string
	start  time.Time
	attrs  []Attr
	groups []string
}

// NewSlogHandler wraps h. opts may be nil.
func NewSlogHandler(h *Handler, opts *SlogOptions) *SlogHandler {
	s := &SlogHandler{h: h, level: slog.LevelInfo, start: time.Now()}
	if opts != nil {
		if opts.Level != nil {
			s.level = opts.Level
		}
		s.name = opts.Name
	}
	return s
}

func (s *SlogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= s.level.Level()
}

func (s *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.h.Emit(ctx, s.record(r))
}

func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	cp := *s
	cp.attrs = append(append([]Attr(nil), s.attrs...), flattenAttrs(s.prefix(), attrs)...)
	return &cp
}

func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	cp := *s
	cp.groups = append(append([]string(nil), s.groups...), name)
	return &cp
}

func (s *SlogHandler) prefix() string {
	if len(s.groups) == 0 {
		return ""
	}
	return strings.Join(s.groups, ".") + "."
}

func (s *SlogHandler) record(r slog.Record) *Record {
	level := SlogLevelName(r.Level)
	created := r.Time
	if created.IsZero() {
		created = time.Now()
	}
	rec := &Record{
		Level:           level,
		LevelNo:         LevelNumber(level),
		Message:         r.Message,
		Logger:          s.name,
		Process:         os.Getpid(),
		ProcessName:     filepath.Base(os.Args[0]),
		ThreadName:      "goroutine",
		Created:         created,
		RelativeCreated: created.Sub(s.start),
	}
	if r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		rec.Path = f.File
		rec.Filename = filepath.Base(f.File)
		rec.Line = f.Line
		rec.Module, rec.Func = splitFuncName(f.Function)
	}

	extra := make([]Attr, 0, len(s.attrs)+r.NumAttrs())
	extra = append(extra, s.attrs...)
	prefix := s.prefix()
	r.Attrs(func(a slog.Attr) bool {
		extra = append(extra, flattenAttrs(prefix, []slog.Attr{a})...)
		return true
	})
	for _, a := range extra {
		if a.Key == "logger" {
			if n, ok := a.Value.(string); ok && n != "" {
				rec.Logger = n
			}
		}
	}
	rec.Extra = extra
	return rec
}

func flattenAttrs(prefix string, attrs []slog.Attr) []Attr {
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			p := prefix
			if a.Key != "" {
				p += a.Key + "."
			}
			out = append(out, flattenAttrs(p, v.Group())...)
			continue
		}
		if a.Key == "" {
			continue
		}
		out = append(out, Attr{Key: prefix + a.Key, Value: v.Any()})
	}
	return out
}

// splitFuncName splits "example.com/pkg/sub.(*T).Method" into the package
// path "example.com/pkg/sub" and "(*T).Method".
func splitFuncName(full string) (module, fn string) {
	if full == "" {
		return "", ""
	}
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return full, ""
	}
	dot += slash + 1
	return full[:dot], full[dot+1:]
}
