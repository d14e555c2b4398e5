package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// New constructs a slog logger using the provided options. Logs go to
// stderr by default so stdout stays reserved for the run report.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	addSource := level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(writer, levelVar, addSource)
	case "console":
		handler = newConsoleHandler(writer, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}

	return slog.NewJSONHandler(w, &opts)
}

// consoleHandler renders one record per line: clock, level, component
// prefix, message, then logfmt-style attributes. Attributes attached via
// Logger.With are rendered once and replayed on every record, so derived
// loggers (per component, per stage) cost nothing per line.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	addSource bool

	component    string
	groupPrefix  string
	preformatted []byte
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	clock := record.Time
	if clock.IsZero() {
		clock = time.Now()
	}

	var buf bytes.Buffer
	buf.Grow(96 + len(h.preformatted))

	buf.WriteString(clock.Format("15:04:05"))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')

	if h.component != "" {
		buf.WriteString(h.component)
		buf.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	}

	buf.Write(h.preformatted)
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&buf, h.groupPrefix, attr)
		return true
	})

	if h.addSource {
		if src := recordSource(record); src != nil {
			buf.WriteString(" src=")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
		}
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// recordSource resolves the record's PC to a source location, matching
// slog.Record.Source from newer Go releases (nil when the PC is zero).
func recordSource(record slog.Record) *slog.Source {
	if record.PC == 0 {
		return nil
	}
	frames := runtime.CallersFrames([]uintptr{record.PC})
	frame, _ := frames.Next()
	return &slog.Source{Function: frame.Function, File: frame.File, Line: frame.Line}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	var buf bytes.Buffer
	buf.Write(clone.preformatted)
	for _, attr := range attrs {
		if clone.component == "" && clone.groupPrefix == "" && attr.Key == FieldComponent {
			if v := attr.Value.Resolve(); v.Kind() == slog.KindString {
				clone.component = v.String()
				continue
			}
		}
		appendAttr(&buf, clone.groupPrefix, attr)
	}
	clone.preformatted = buf.Bytes()
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groupPrefix = joinPrefix(clone.groupPrefix, name)
	return clone
}

// clone copies the preformatted bytes so appends on the child never alias
// the parent's backing array. The mutex and level var stay shared.
func (h *consoleHandler) clone() *consoleHandler {
	clone := &consoleHandler{
		mu:          h.mu,
		out:         h.out,
		level:       h.level,
		addSource:   h.addSource,
		component:   h.component,
		groupPrefix: h.groupPrefix,
	}
	if len(h.preformatted) > 0 {
		clone.preformatted = append([]byte(nil), h.preformatted...)
	}
	return clone
}

func appendAttr(buf *bytes.Buffer, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()

	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		if len(members) == 0 {
			return
		}
		childPrefix := prefix
		if attr.Key != "" {
			childPrefix = joinPrefix(prefix, attr.Key)
		}
		for _, member := range members {
			appendAttr(buf, childPrefix, member)
		}
		return
	}

	key := joinPrefix(prefix, attr.Key)
	if key == "" {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	appendValue(buf, attr.Value)
}

func joinPrefix(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func appendValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		appendQuoted(buf, v.String())
	case slog.KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case slog.KindInt64:
		buf.WriteString(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		buf.WriteString(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		buf.WriteString(strconv.FormatFloat(v.Float64(), 'f', -1, 64))
	case slog.KindDuration:
		buf.WriteString(v.Duration().String())
	case slog.KindTime:
		buf.WriteString(v.Time().UTC().Format(time.RFC3339))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			appendQuoted(buf, err.Error())
			return
		}
		appendQuoted(buf, fmt.Sprint(v.Any()))
	default:
		appendQuoted(buf, v.String())
	}
}

func appendQuoted(buf *bytes.Buffer, s string) {
	if plainValue(s) {
		buf.WriteString(s)
		return
	}
	buf.WriteString(strconv.Quote(s))
}

// plainValue reports whether s can appear unquoted after k= without
// breaking the one-attr-per-token line shape.
func plainValue(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c == '=' || c == '"' || c == 0x7f {
			return false
		}
	}
	return true
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
