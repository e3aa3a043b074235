package hooklog

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAttribute is returned when a field selection names an attribute
// the record does not carry.
var ErrMissingAttribute = errors.New("hooklog: missing record attribute")

// Attr is an extra key/value carried by a record (slog attrs, zerolog fields).
type Attr struct {
	Key   string
	Value any
}

// Record is a single log event as seen by the dispatcher.
//
// Adapters build a Record from whatever the host logger produced; the
// renderer and field extraction only read from it.
type Record struct {
	Level   string // NOTSET, DEBUG, INFO, WARNING, ERROR, CRITICAL
	LevelNo int
	Message string
	Logger  string

	Filename string
	Func     string
	Module   string
	Path     string
	Line     int

	Process     int
	ProcessName string
	Thread      int64
	ThreadName  string

	Created         time.Time
	RelativeCreated time.Duration

	Extra []Attr
}

// Msecs returns the millisecond part of Created.
func (r *Record) Msecs() int {
	return r.Created.Nanosecond() / int(time.Millisecond)
}

// Attr resolves a named attribute. Built-in names take precedence over extras.
func (r *Record) Attr(name string) (any, error) {
	switch name {
	case "level":
		return r.Level, nil
	case "level_no":
		return r.LevelNo, nil
	case "logger":
		return r.Logger, nil
	case "message":
		return r.Message, nil
	case "filename":
		return r.Filename, nil
	case "func":
		return r.Func, nil
	case "module":
		return r.Module, nil
	case "path":
		return r.Path, nil
	case "line":
		return r.Line, nil
	case "process":
		return r.Process, nil
	case "process_name":
		return r.ProcessName, nil
	case "thread":
		return r.Thread, nil
	case "thread_name":
		return r.ThreadName, nil
	case "created":
		return r.Created, nil
	case "msecs":
		return r.Msecs(), nil
	case "relative_created":
		return r.RelativeCreated, nil
	}
	for _, a := range r.Extra {
		if a.Key == name {
			return a.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrMissingAttribute, name)
}

// Origin returns "filename:line" or "" when the record carries no source.
func (r *Record) Origin() string {
	if r.Filename == "" {
		return ""
	}
	if r.Line <= 0 {
		return r.Filename
	}
	return fmt.Sprintf("%s:%d", r.Filename, r.Line)
}
