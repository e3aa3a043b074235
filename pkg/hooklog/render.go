package hooklog

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Mode selects how much structure a rendered message carries.
type Mode int

const (
	// ModeRich sends a short text line plus an embed.
	ModeRich Mode = iota
	// ModePlain sends the formatted line only.
	ModePlain
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeRich:
		return "rich"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "plain" and "rich"; empty means rich.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "rich", "embed":
		return ModeRich, nil
	case "plain", "text":
		return ModePlain, nil
	default:
		return ModeRich, fmt.Errorf("unknown render mode %q", s)
	}
}

// DefaultFooter marks embeds as machine generated.
const DefaultFooter = "This message was generated automatically."

// Chat service limits, counted in runes.
const (
	maxContent     = 2000
	maxTitle       = 256
	maxDescription = 4096
	maxFieldName   = 256
	maxFieldValue  = 1024
	maxFields      = 25
	maxFooter      = 2048
	// maxEmbedTotal caps title, description, field names and values and
	// footer combined.
	maxEmbedTotal = 6000
)

// eventTimeLayout is completed with ":mmm" by formatEventTime.
const eventTimeLayout = "02/01/2006 15:04:05"

// Embed is the structured payload sent next to the text body.
type Embed struct {
	Title       string
	Description string
	Color       Color
	Timestamp   time.Time
	Fields      []EmbedField
	Footer      string
}

// Message is the rendered output for a single record.
type Message struct {
	Text  string
	Embed *Embed
}

// Renderer builds messages from records. It performs no I/O.
type Renderer struct {
	Mode      Mode
	Formatter Formatter
	Palette   Palette
	Fields    FieldSelection
	Footer    string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRenderer returns a rich renderer with the default palette and fields.
func NewRenderer() *Renderer {
	return &Renderer{
		Mode:      ModeRich,
		Formatter: DefaultFormatter{},
		Palette:   DefaultPalette(),
		Fields:    DefaultFields(),
		Footer:    DefaultFooter,
		Now:       time.Now,
	}
}

// Render builds the message for r.
func (rd *Renderer) Render(r *Record) (Message, error) {
	if r == nil {
		return Message{}, fmt.Errorf("render: nil record")
	}
	f := rd.Formatter
	if f == nil {
		f = DefaultFormatter{}
	}
	line := f.Format(r)

	if rd.Mode == ModePlain {
		return Message{Text: truncate(line, maxContent)}, nil
	}

	fields, err := rd.Fields.Extract(r)
	if err != nil {
		return Message{}, fmt.Errorf("render: %w", err)
	}
	if len(fields) > maxFields {
		fields = fields[:maxFields]
	}

	title := truncate(r.Level, maxTitle)
	footer := truncate(rd.Footer, maxFooter)
	used := utf8.RuneCountInString(title) + utf8.RuneCountInString(footer)
	desc := truncate(line, min(maxDescription, maxEmbedTotal-used))
	used += utf8.RuneCountInString(desc)
	fields = fitFields(fields, maxEmbedTotal-used)

	now := time.Now
	if rd.Now != nil {
		now = rd.Now
	}
	ts := now()

	return Message{
		Text: "Logging event at " + formatEventTime(ts),
		Embed: &Embed{
			Title:       title,
			Description: desc,
			Color:       rd.Palette.Color(r.Level),
			Timestamp:   ts,
			Fields:      fields,
			Footer:      footer,
		},
	}, nil
}

// fitFields truncates each field to the per-field limits and keeps fields in
// order while they fit in room runes. The first field that does not fit is
// shortened when a useful part of its value remains, and the rest are dropped.
func fitFields(fields []EmbedField, room int) []EmbedField {
	out := fields[:0]
	for _, f := range fields {
		f.Name = truncate(f.Name, maxFieldName)
		f.Value = truncate(f.Value, maxFieldValue)
		nameLen := utf8.RuneCountInString(f.Name)
		need := nameLen + max(utf8.RuneCountInString(f.Value), 1) // empty values are sent as "-"
		if need > room {
			if rest := room - nameLen; rest >= 10 {
				f.Value = truncate(f.Value, rest)
				out = append(out, f)
			}
			break
		}
		room -= need
		out = append(out, f)
	}
	return out
}

// formatEventTime renders DD/MM/YYYY HH:MM:SS:mmm with the sub-second part
// truncated to milliseconds.
func formatEventTime(t time.Time) string {
	return fmt.Sprintf("%s:%03d", t.Format(eventTimeLayout), t.Nanosecond()/int(time.Millisecond))
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	if n < 10 {
		return string(rs[:n])
	}
	return string(rs[:n-3]) + "..."
}
