package hooklog

import (
	"fmt"
	"strconv"
	"time"
)

// FieldSpec selects one record attribute for the embed.
type FieldSpec struct {
	Attr    string
	Label   string
	Include bool
}

// EmbedField is a rendered (label, value) pair.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// FieldSelection is an ordered, immutable list of field specs.
type FieldSelection struct {
	specs []FieldSpec
}

// NewFieldSelection copies specs; order is preserved.
func NewFieldSelection(specs ...FieldSpec) FieldSelection {
	return FieldSelection{specs: append([]FieldSpec(nil), specs...)}
}

// DefaultFields lists every built-in record attribute with its display label.
func DefaultFields() FieldSelection {
	return NewFieldSelection(
		FieldSpec{Attr: "filename", Label: "File Name", Include: true},
		FieldSpec{Attr: "func", Label: "Function Name", Include: true},
		FieldSpec{Attr: "line", Label: "Line Number", Include: true},
		FieldSpec{Attr: "module", Label: "Module", Include: true},
		FieldSpec{Attr: "process", Label: "Process ID", Include: true},
		FieldSpec{Attr: "process_name", Label: "Process Name", Include: true},
		FieldSpec{Attr: "path", Label: "Path Name", Include: false},
		FieldSpec{Attr: "thread", Label: "Thread ID", Include: false},
		FieldSpec{Attr: "thread_name", Label: "Thread Name", Include: false},
		FieldSpec{Attr: "created", Label: "Created", Include: false},
		FieldSpec{Attr: "msecs", Label: "Milliseconds", Include: false},
		FieldSpec{Attr: "relative_created", Label: "Relative Created", Include: false},
	)
}

// Specs returns a copy of the configured specs.
func (s FieldSelection) Specs() []FieldSpec {
	return append([]FieldSpec(nil), s.specs...)
}

// Include returns a copy of s with attr included under label. An existing spec
// for attr is updated in place, otherwise the spec is appended.
func (s FieldSelection) Include(attr, label string) FieldSelection {
	out := s.Specs()
	for i := range out {
		if out[i].Attr == attr {
			out[i].Include = true
			if label != "" {
				out[i].Label = label
			}
			return FieldSelection{specs: out}
		}
	}
	if label == "" {
		label = attr
	}
	return FieldSelection{specs: append(out, FieldSpec{Attr: attr, Label: label, Include: true})}
}

// Exclude returns a copy of s with attr turned off.
func (s FieldSelection) Exclude(attr string) FieldSelection {
	out := s.Specs()
	for i := range out {
		if out[i].Attr == attr {
			out[i].Include = false
		}
	}
	return FieldSelection{specs: out}
}

// Extract reads the included attributes from r in declared order.
func (s FieldSelection) Extract(r *Record) ([]EmbedField, error) {
	out := make([]EmbedField, 0, len(s.specs))
	for _, spec := range s.specs {
		if !spec.Include {
			continue
		}
		v, err := r.Attr(spec.Attr)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Label, err)
		}
		label := spec.Label
		if label == "" {
			label = spec.Attr
		}
		out = append(out, EmbedField{Name: label, Value: displayValue(v), Inline: true})
	}
	return out, nil
}

func displayValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02T15:04:05.000Z07:00")
	case time.Duration:
		return x.String()
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
