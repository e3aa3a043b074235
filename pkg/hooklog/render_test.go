package hooklog

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 17, 9, 8, 7, 654987000, time.UTC)

func fixedRenderer() *Renderer {
	rd := NewRenderer()
	rd.Now = func() time.Time { return fixedNow }
	return rd
}

func TestRenderRich(t *testing.T) {
	msg, err := fixedRenderer().Render(sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, "Logging event at 17/10/2026 09:08:07:654", msg.Text)
	require.NotNil(t, msg.Embed)
	assert.Equal(t, "ERROR", msg.Embed.Title)
	assert.Equal(t, "ERROR:storage:disk full device=/dev/sda1", msg.Embed.Description)
	assert.Equal(t, ColorError, msg.Embed.Color)
	assert.Equal(t, fixedNow, msg.Embed.Timestamp)
	assert.Equal(t, DefaultFooter, msg.Embed.Footer)
	assert.Len(t, msg.Embed.Fields, 6)
}

func TestRenderPlain(t *testing.T) {
	rd := fixedRenderer()
	rd.Mode = ModePlain

	msg, err := rd.Render(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "ERROR:storage:disk full device=/dev/sda1", msg.Text)
	assert.Nil(t, msg.Embed)
}

func TestRenderIsRepeatable(t *testing.T) {
	rd := fixedRenderer()
	r := sampleRecord()

	a, err := rd.Render(r)
	require.NoError(t, err)
	b, err := rd.Render(r)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderOnlyTimestampTracksClock(t *testing.T) {
	rd := fixedRenderer()
	r := sampleRecord()
	a, err := rd.Render(r)
	require.NoError(t, err)

	rd.Now = func() time.Time { return fixedNow.Add(time.Second) }
	b, err := rd.Render(r)
	require.NoError(t, err)

	assert.NotEqual(t, a.Embed.Timestamp, b.Embed.Timestamp)
	a.Embed.Timestamp, b.Embed.Timestamp = time.Time{}, time.Time{}
	assert.Equal(t, a.Embed, b.Embed)
}

func TestRenderMissingFieldFails(t *testing.T) {
	rd := fixedRenderer()
	rd.Fields = rd.Fields.Include("request_id", "Request")

	_, err := rd.Render(sampleRecord())
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestRenderTruncatesToServiceLimits(t *testing.T) {
	rd := fixedRenderer()
	r := sampleRecord()
	r.Message = strings.Repeat("x", 5000)
	r.Extra = nil

	msg, err := rd.Render(r)
	require.NoError(t, err)
	assert.Equal(t, maxDescription, len([]rune(msg.Embed.Description)))
	assert.True(t, strings.HasSuffix(msg.Embed.Description, "..."))

	rd.Mode = ModePlain
	msg, err = rd.Render(r)
	require.NoError(t, err)
	assert.Equal(t, maxContent, len([]rune(msg.Text)))
}

func TestRenderCapsWholeEmbed(t *testing.T) {
	rd := fixedRenderer()
	r := sampleRecord()
	r.Message = strings.Repeat("m", 5000)
	r.Extra = nil
	for i := 0; i < 30; i++ {
		key := fmt.Sprintf("k%02d", i)
		r.Extra = append(r.Extra, Attr{Key: key, Value: strings.Repeat("v", 2000)})
		rd.Fields = rd.Fields.Include(key, "")
	}

	msg, err := rd.Render(r)
	require.NoError(t, err)
	e := msg.Embed
	assert.Equal(t, maxDescription, len([]rune(e.Description)))

	total := len([]rune(e.Title)) + len([]rune(e.Description)) + len([]rune(e.Footer))
	for _, f := range e.Fields {
		assert.LessOrEqual(t, len([]rune(f.Value)), maxFieldValue)
		total += len([]rune(f.Name)) + len([]rune(f.Value))
	}
	assert.LessOrEqual(t, total, maxEmbedTotal)
	require.NotEmpty(t, e.Fields)
	assert.Equal(t, "File Name", e.Fields[0].Name)
	assert.Less(t, len(e.Fields), maxFields)
}

func TestFormatEventTimeTruncatesToMillis(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 999999999, time.UTC)
	assert.Equal(t, "02/01/2026 03:04:05:999", formatEventTime(ts))
	assert.Equal(t, "02/01/2026 03:04:05:000", formatEventTime(ts.Truncate(time.Second)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("plain")
	require.NoError(t, err)
	assert.Equal(t, ModePlain, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeRich, m)

	_, err = ParseMode("fancy")
	assert.Error(t, err)
}

func TestDefaultFormatterQuotesExtras(t *testing.T) {
	r := &Record{Level: LevelInfo, Message: "hello", Extra: []Attr{{Key: "who", Value: "a b"}}}
	assert.Equal(t, `INFO:root:hello who="a b"`, DefaultFormatter{}.Format(r))
	assert.Equal(t, "INFO:root:hello", DefaultFormatter{OmitExtras: true}.Format(r))
}
