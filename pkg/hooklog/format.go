package hooklog

import (
	"strings"
)

// Formatter turns a record into the single line used as message body.
type Formatter interface {
	Format(r *Record) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(r *Record) string

func (f FormatterFunc) Format(r *Record) string { return f(r) }

// DefaultFormatter renders LEVEL:logger:message followed by extras as
// key=value pairs.
type DefaultFormatter struct {
	// OmitExtras drops the key=value suffix.
	OmitExtras bool
}

func (f DefaultFormatter) Format(r *Record) string {
	var b strings.Builder
	b.WriteString(r.Level)
	b.WriteString(":")
	if r.Logger != "" {
		b.WriteString(r.Logger)
	} else {
		b.WriteString("root")
	}
	b.WriteString(":")
	b.WriteString(r.Message)
	if f.OmitExtras {
		return b.String()
	}
	for _, a := range r.Extra {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString("=")
		v := displayValue(a.Value)
		if strings.ContainsAny(v, " \t\n\"") {
			v = quote(v)
		}
		b.WriteString(v)
	}
	return b.String()
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
