package hooklog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		Level:       LevelError,
		LevelNo:     40,
		Message:     "disk full",
		Logger:      "storage",
		Filename:    "disk.py",
		Func:        "check",
		Module:      "disk",
		Path:        "/srv/app/disk.py",
		Line:        42,
		Process:     1234,
		ProcessName: "MainProcess",
		Thread:      7,
		ThreadName:  "MainThread",
		Created:     time.Date(2026, 10, 17, 13, 4, 5, 123456789, time.UTC),
		Extra:       []Attr{{Key: "device", Value: "/dev/sda1"}},
	}
}

func TestDefaultFieldsExtract(t *testing.T) {
	fields, err := DefaultFields().Extract(sampleRecord())
	require.NoError(t, err)

	want := []EmbedField{
		{Name: "File Name", Value: "disk.py", Inline: true},
		{Name: "Function Name", Value: "check", Inline: true},
		{Name: "Line Number", Value: "42", Inline: true},
		{Name: "Module", Value: "disk", Inline: true},
		{Name: "Process ID", Value: "1234", Inline: true},
		{Name: "Process Name", Value: "MainProcess", Inline: true},
	}
	assert.Equal(t, want, fields)
}

func TestExtractReadsLiveValues(t *testing.T) {
	sel := NewFieldSelection(FieldSpec{Attr: "filename", Label: "File", Include: true})
	r := sampleRecord()

	first, err := sel.Extract(r)
	require.NoError(t, err)
	r.Filename = "net.py"
	second, err := sel.Extract(r)
	require.NoError(t, err)

	assert.Equal(t, "disk.py", first[0].Value)
	assert.Equal(t, "net.py", second[0].Value)
}

func TestExtractMissingAttribute(t *testing.T) {
	sel := NewFieldSelection(FieldSpec{Attr: "hostname", Label: "Host", Include: true})
	_, err := sel.Extract(sampleRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAttribute)
	assert.Contains(t, err.Error(), "hostname")
}

func TestExtractSkipsExcludedMissingAttribute(t *testing.T) {
	sel := NewFieldSelection(FieldSpec{Attr: "hostname", Label: "Host", Include: false})
	fields, err := sel.Extract(sampleRecord())
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestFieldSelectionIncludeExclude(t *testing.T) {
	base := DefaultFields()
	sel := base.Include("thread_name", "").Include("device", "Device").Exclude("module")

	fields, err := sel.Extract(sampleRecord())
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"File Name", "Function Name", "Line Number", "Process ID", "Process Name", "Thread Name", "Device"}, names)
	assert.Equal(t, "/dev/sda1", fields[len(fields)-1].Value)

	orig, err := base.Extract(sampleRecord())
	require.NoError(t, err)
	assert.Len(t, orig, 6)
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "7", displayValue(int64(7)))
	assert.Equal(t, "1.5s", displayValue(1500*time.Millisecond))
	assert.Equal(t, "2026-10-17T13:04:05.123Z", displayValue(sampleRecord().Created))
	assert.Equal(t, "true", displayValue(true))
	assert.Equal(t, "<nil>", displayValue(nil))
}
