package hooklog

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ZerologWriter is a zerolog sink that forwards each JSON line through a
// Handler. Use it with zerolog.MultiLevelWriter.
type ZerologWriter struct {
	h        *Handler
	minLevel zerolog.Level
	limiter  *rate.Limiter
	start    time.Time
}

// ZerologOption configures a ZerologWriter.
type ZerologOption func(*ZerologWriter)

// WithMinLevel drops events below lvl.
func WithMinLevel(lvl zerolog.Level) ZerologOption {
	return func(w *ZerologWriter) { w.minLevel = lvl }
}

// WithLimiter drops events when lim has no tokens left.
func WithLimiter(lim *rate.Limiter) ZerologOption {
	return func(w *ZerologWriter) { w.limiter = lim }
}

// NewZerologWriter returns a writer forwarding warn and above by default.
func NewZerologWriter(h *Handler, opts ...ZerologOption) *ZerologWriter {
	w := &ZerologWriter{h: h, minLevel: zerolog.WarnLevel, start: time.Now()}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *ZerologWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter. Events with NoLevel take the
// level from the JSON line, or INFO when the line carries none.
func (w *ZerologWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level != zerolog.NoLevel && level < w.minLevel {
		return len(p), nil
	}
	rec := w.decode(p)
	if rec == nil {
		return len(p), nil
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
		if l, err := zerolog.ParseLevel(levelFromRecord(rec)); err == nil && l != zerolog.NoLevel {
			level = l
		} else if rec.Level == LevelNotSet {
			rec.Level = LevelInfo
			rec.LevelNo = LevelNumber(LevelInfo)
		}
		if level < w.minLevel {
			return len(p), nil
		}
	}
	if w.limiter != nil && !w.limiter.Allow() {
		w.h.Drop(rec)
		return len(p), nil
	}
	if err := w.h.Emit(context.Background(), rec); err != nil {
		return 0, err
	}
	return len(p), nil
}

// levelFromRecord recovers the zerolog spelling of a standard level name.
func levelFromRecord(r *Record) string {
	switch r.Level {
	case LevelWarning:
		return "warn"
	case LevelCritical:
		return "fatal"
	default:
		return strings.ToLower(r.Level)
	}
}

var zerologReserved = map[string]bool{
	"level":   true,
	"message": true,
	"msg":     true,
	"time":    true,
	"caller":  true,
	"logger":  true,
	"comp":    true,
}

// decode turns one zerolog line into a Record. Lines that are not JSON are
// forwarded verbatim as INFO messages.
func (w *ZerologWriter) decode(p []byte) *Record {
	line := bytes.TrimSpace(p)
	if len(line) == 0 {
		return nil
	}
	now := time.Now()
	rec := &Record{
		Process:     os.Getpid(),
		ProcessName: filepath.Base(os.Args[0]),
		ThreadName:  "goroutine",
		Created:     now,
	}

	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		rec.Level = LevelInfo
		rec.LevelNo = LevelNumber(LevelInfo)
		rec.Message = string(line)
		rec.RelativeCreated = now.Sub(w.start)
		return rec
	}

	lvl, _ := m[zerolog.LevelFieldName].(string)
	rec.Level = ZerologLevelName(lvl)
	rec.LevelNo = LevelNumber(rec.Level)

	msg, _ := m[zerolog.MessageFieldName].(string)
	if msg == "" {
		msg, _ = m["msg"].(string)
	}
	rec.Message = msg

	if ts, ok := m[zerolog.TimestampFieldName].(string); ok {
		if t, err := parseZerologTime(ts); err == nil {
			rec.Created = t
		}
	}
	rec.RelativeCreated = rec.Created.Sub(w.start)

	if caller, ok := m[zerolog.CallerFieldName].(string); ok {
		rec.Path, rec.Line = splitCaller(caller)
		rec.Filename = filepath.Base(rec.Path)
	}
	if name, ok := m["logger"].(string); ok {
		rec.Logger = name
	} else if comp, ok := m["comp"].(string); ok {
		rec.Logger = comp
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		if zerologReserved[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rec.Extra = append(rec.Extra, Attr{Key: k, Value: jsonValue(m[k])})
	}
	return rec
}

func parseZerologTime(s string) (time.Time, error) {
	layouts := []string{zerolog.TimeFieldFormat, time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00"}
	var err error
	for _, l := range layouts {
		if l == "" {
			continue
		}
		var t time.Time
		if t, err = time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func splitCaller(c string) (string, int) {
	i := strings.LastIndex(c, ":")
	if i < 0 {
		return c, 0
	}
	n, err := strconv.Atoi(c[i+1:])
	if err != nil {
		return c, 0
	}
	return c[:i], n
}

func jsonValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
