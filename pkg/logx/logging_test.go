package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hooklog/pkg/hooklog"
)

type memSender struct {
	mu     sync.Mutex
	embeds []*hooklog.Embed
}

func (m *memSender) Send(_ context.Context, _ string, e *hooklog.Embed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeds = append(m.embeds, e)
	return nil
}

func (m *memSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.embeds)
}

func newHandler(t *testing.T) (*hooklog.Handler, *memSender) {
	t.Helper()
	s := &memSender{}
	h, err := hooklog.New(s)
	require.NoError(t, err)
	return h, s
}

func TestServiceWebhookSink(t *testing.T) {
	h, sender := newHandler(t)
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	svc, log := New(Config{
		Level:   "debug",
		File:    FileConfig{Enabled: true, Path: path},
		Webhook: WebhookConfig{Enabled: true, MinLevel: "error", RatePerSec: 10},
	}, h)
	t.Cleanup(func() { _ = svc.Close() })

	log.Info("service started")
	log.With(String("comp", "disk")).Error("disk full", String("device", "sda1"))

	require.Equal(t, 1, sender.count())
	e := sender.embeds[0]
	assert.Equal(t, "ERROR", e.Title)
	assert.Contains(t, e.Description, "disk:disk full")
	assert.Contains(t, e.Description, "device=sda1")
	assert.Contains(t, e.Fields, hooklog.EmbedField{Name: "File Name", Value: "logging_test.go", Inline: true})

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "service started", first["message"])
	assert.Equal(t, "info", first["level"])
}

func TestServiceApplySwapsSinks(t *testing.T) {
	h, sender := newHandler(t)
	svc, log := New(Config{Level: "info", Webhook: WebhookConfig{Enabled: true}}, h)
	t.Cleanup(func() { _ = svc.Close() })

	log.Warn("first")
	require.Equal(t, 1, sender.count())

	svc.Apply(Config{Level: "info", File: FileConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "x.log")}})
	log.Warn("second")
	assert.Equal(t, 1, sender.count())
}

func TestServiceWebhookWithoutHandler(t *testing.T) {
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "x.log")}, Webhook: WebhookConfig{Enabled: true}}, nil)
	t.Cleanup(func() { _ = svc.Close() })
	assert.NotPanics(t, func() { log.Error("no sink") })

	h, sender := newHandler(t)
	svc.SetHandler(h)
	log.Error("with sink")
	assert.Equal(t, 1, sender.count())
}

func TestNewWriterAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")

	log.Info("hidden")
	log.Warn("shown", Int("n", 3), Err(nil))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"n":3`)
	assert.True(t, log.Enabled(LevelError))
	assert.False(t, log.Enabled(LevelDebug))
}

func TestZeroLogger(t *testing.T) {
	var l Logger
	assert.True(t, l.IsZero())
	assert.NotPanics(t, func() { l.Error("dropped") })
	assert.False(t, Nop().IsZero())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLevel("WARNING", LevelInfo))
	assert.Equal(t, LevelInfo, ParseLevel("bogus", LevelInfo))
	assert.Equal(t, LevelTrace, ParseLevel(" trace ", LevelInfo))
}
