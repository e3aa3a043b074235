package hooklog

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// recorder keeps every record that reached the renderer.
type recorder struct {
	records []*Record
}

func (rc *recorder) Format(r *Record) string {
	rc.records = append(rc.records, r)
	return DefaultFormatter{}.Format(r)
}

func newRecordingHandler(t *testing.T, opts ...Option) (*Handler, *recorder, *captureSender) {
	t.Helper()
	rc := &recorder{}
	rd := NewRenderer()
	rd.Formatter = rc
	s := &captureSender{}
	h, _ := newTestHandler(t, s, append([]Option{WithRenderer(rd)}, opts...)...)
	return h, rc, s
}

func TestSlogHandlerBuildsRecord(t *testing.T) {
	h, rc, s := newRecordingHandler(t)
	logger := slog.New(NewSlogHandler(h, &SlogOptions{Name: "svc"}))

	logger.Error("disk full", "device", "sda1")

	require.Len(t, rc.records, 1)
	require.Len(t, s.calls, 1)
	r := rc.records[0]
	assert.Equal(t, LevelError, r.Level)
	assert.Equal(t, 40, r.LevelNo)
	assert.Equal(t, "disk full", r.Message)
	assert.Equal(t, "svc", r.Logger)
	assert.Equal(t, "adapters_test.go", r.Filename)
	assert.Equal(t, "TestSlogHandlerBuildsRecord", r.Func)
	assert.Equal(t, "hooklog/pkg/hooklog", r.Module)
	assert.Greater(t, r.Line, 0)
	assert.NotZero(t, r.Process)
	assert.Equal(t, []Attr{{Key: "device", Value: "sda1"}}, r.Extra)
	assert.Contains(t, s.calls[0].embed.Fields, EmbedField{Name: "File Name", Value: "adapters_test.go", Inline: true})
}

func TestSlogHandlerLevelAndGroups(t *testing.T) {
	h, rc, _ := newRecordingHandler(t)
	logger := slog.New(NewSlogHandler(h, nil))

	logger.Debug("ignored")
	assert.Empty(t, rc.records)

	logger.With("logger", "api").WithGroup("req").With("id", 7).Warn("slow", slog.Group("db", "ms", 250))
	require.Len(t, rc.records, 1)
	r := rc.records[0]
	assert.Equal(t, LevelWarning, r.Level)
	assert.Equal(t, "api", r.Logger)

	v, err := r.Attr("req.id")
	require.NoError(t, err)
	assert.EqualValues(t, 7, v)
	v, err = r.Attr("req.db.ms")
	require.NoError(t, err)
	assert.EqualValues(t, 250, v)
}

func TestSlogHandlerReturnsInterrupt(t *testing.T) {
	s := &captureSender{err: ErrInterrupted}
	h, _ := newTestHandler(t, s)
	sh := NewSlogHandler(h, &SlogOptions{Level: slog.LevelDebug})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "stop", 0)
	assert.ErrorIs(t, sh.Handle(context.Background(), r), ErrInterrupted)
}

func TestSlogLevelName(t *testing.T) {
	assert.Equal(t, LevelNotSet, SlogLevelName(slog.LevelDebug-1))
	assert.Equal(t, LevelDebug, SlogLevelName(slog.LevelDebug))
	assert.Equal(t, LevelInfo, SlogLevelName(slog.LevelInfo+1))
	assert.Equal(t, LevelWarning, SlogLevelName(slog.LevelWarn))
	assert.Equal(t, LevelError, SlogLevelName(slog.LevelError))
	assert.Equal(t, LevelCritical, SlogLevelName(SlogLevelCritical))
}

func TestSplitFuncName(t *testing.T) {
	cases := map[string][2]string{
		"main.main":                     {"main", "main"},
		"example.com/a/b.(*Server).Run": {"example.com/a/b", "(*Server).Run"},
		"example.com/a/b.Run.func1":     {"example.com/a/b", "Run.func1"},
		"":                              {"", ""},
	}
	for in, want := range cases {
		mod, fn := splitFuncName(in)
		assert.Equal(t, want[0], mod, in)
		assert.Equal(t, want[1], fn, in)
	}
}

func TestZerologWriterDecodesLine(t *testing.T) {
	h, rc, _ := newRecordingHandler(t)
	w := NewZerologWriter(h)

	line := `{"level":"error","time":"2026-10-17T09:08:07Z","caller":"/src/app/disk.go:12","logger":"db","message":"disk full","attempt":3,"device":"sda1"}` + "\n"
	n, err := w.WriteLevel(zerolog.ErrorLevel, []byte(line))
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	require.Len(t, rc.records, 1)
	r := rc.records[0]
	assert.Equal(t, LevelError, r.Level)
	assert.Equal(t, "disk full", r.Message)
	assert.Equal(t, "db", r.Logger)
	assert.Equal(t, "disk.go", r.Filename)
	assert.Equal(t, "/src/app/disk.go", r.Path)
	assert.Equal(t, 12, r.Line)
	assert.Equal(t, time.Date(2026, 10, 17, 9, 8, 7, 0, time.UTC), r.Created.UTC())
	assert.Equal(t, []Attr{{Key: "attempt", Value: int64(3)}, {Key: "device", Value: "sda1"}}, r.Extra)
}

func TestZerologWriterWithLogger(t *testing.T) {
	h, rc, _ := newRecordingHandler(t)
	zl := zerolog.New(NewZerologWriter(h)).With().Timestamp().Str("comp", "disk").Logger()

	zl.Info().Msg("below min level")
	zl.Error().Str("device", "sda1").Msg("disk full")

	require.Len(t, rc.records, 1)
	assert.Equal(t, "disk", rc.records[0].Logger)
	assert.Equal(t, LevelError, rc.records[0].Level)
}

func TestZerologWriterLimiterDrops(t *testing.T) {
	obs := &countObserver{}
	h, rc, _ := newRecordingHandler(t, WithObserver(obs))
	w := NewZerologWriter(h, WithLimiter(rate.NewLimiter(0, 1)))

	for i := 0; i < 3; i++ {
		_, err := w.WriteLevel(zerolog.ErrorLevel, []byte(`{"level":"error","message":"x"}`))
		require.NoError(t, err)
	}
	assert.Len(t, rc.records, 1)
	assert.Equal(t, 1, obs.delivered)
	assert.Equal(t, 2, obs.dropped)
}

func TestZerologWriterRawLine(t *testing.T) {
	h, rc, _ := newRecordingHandler(t)
	w := NewZerologWriter(h, WithMinLevel(zerolog.DebugLevel))

	_, err := w.Write([]byte("not json at all\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("   \n"))
	require.NoError(t, err)

	require.Len(t, rc.records, 1)
	assert.Equal(t, LevelInfo, rc.records[0].Level)
	assert.Equal(t, "not json at all", rc.records[0].Message)
}

func TestZerologWriterLevellessEventsRespectMinLevel(t *testing.T) {
	h, rc, _ := newRecordingHandler(t)
	w := NewZerologWriter(h, WithMinLevel(zerolog.ErrorLevel))
	zl := zerolog.New(w)

	zl.Log().Msg("no level")
	zl.Info().Msg("info")
	_, err := w.Write([]byte(`{"message":"plain write"}`))
	require.NoError(t, err)
	assert.Empty(t, rc.records)

	_, err = w.Write([]byte(`{"level":"error","message":"disk full"}`))
	require.NoError(t, err)
	require.Len(t, rc.records, 1)
	assert.Equal(t, LevelError, rc.records[0].Level)
}

func TestZerologWriterLevellessEventsAreInfo(t *testing.T) {
	h, rc, _ := newRecordingHandler(t)
	zl := zerolog.New(NewZerologWriter(h, WithMinLevel(zerolog.InfoLevel)))
	zl.Log().Msg("no level")

	require.Len(t, rc.records, 1)
	assert.Equal(t, LevelInfo, rc.records[0].Level)
	assert.Equal(t, 20, rc.records[0].LevelNo)
}

func TestZerologWriterSkipsLinesBelowMinLevel(t *testing.T) {
	h, rc, _ := newRecordingHandler(t)
	w := NewZerologWriter(h, WithMinLevel(zerolog.ErrorLevel))

	n, err := w.WriteLevel(zerolog.InfoLevel, []byte("not json, never decoded"))
	require.NoError(t, err)
	assert.Equal(t, len("not json, never decoded"), n)
	assert.Empty(t, rc.records)
}

func TestZerologLevelName(t *testing.T) {
	assert.Equal(t, LevelDebug, ZerologLevelName("trace"))
	assert.Equal(t, LevelWarning, ZerologLevelName("warn"))
	assert.Equal(t, LevelCritical, ZerologLevelName("fatal"))
	assert.Equal(t, LevelNotSet, ZerologLevelName(""))
	assert.Equal(t, "VERBOSE", ZerologLevelName("verbose"))
}
