// logging.go - structured logging for the scheduler, built on
// github.com/joeycumines/logiface (SPEC_FULL.md §1.1), replacing the
// teacher event loop's bespoke 900-line Logger/LogLevel/LogEntry stack
// with the corpus's actual structured-logging library.
//
// Usage:
//
//	logger := NewTextLogger(os.Stderr.Write)
//	sched, err := NewScheduler(env, WithLogger(logger))
package reactorcore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/joeycumines/logiface"
)

// schedEvent is reactorcore's concrete logiface.Event implementation. It
// accumulates fields as a simple ordered key=value buffer and a message,
// which Bytes below renders; callers may supply their own Writer (e.g. to
// forward into zerolog, slog, or stumpy) instead of the built-in one.
type schedEvent struct {
	logiface.UnimplementedEvent
	level logiface.Level
	buf   bytes.Buffer
	msg   string
}

func newSchedEvent(level logiface.Level) *schedEvent {
	return &schedEvent{level: level}
}

func (e *schedEvent) writeField(key, val string) {
	if e.buf.Len() > 0 {
		e.buf.WriteByte(' ')
	}
	e.buf.WriteString(key)
	e.buf.WriteByte('=')
	e.buf.WriteString(val)
}

func (e *schedEvent) AddMessage(msg string) bool {
	e.msg = msg
	return true
}

func (e *schedEvent) AddString(key, val string) bool {
	e.writeField(key, strconv.Quote(val))
	return true
}

func (e *schedEvent) AddInt64(key string, val int64) bool {
	e.writeField(key, strconv.FormatInt(val, 10))
	return true
}

func (e *schedEvent) AddUint64(key string, val uint64) bool {
	e.writeField(key, strconv.FormatUint(val, 10))
	return true
}

func (e *schedEvent) AddBool(key string, val bool) bool {
	e.writeField(key, strconv.FormatBool(val))
	return true
}

func (e *schedEvent) AddDuration(key string, val time.Duration) bool {
	e.writeField(key, val.String())
	return true
}

func (e *schedEvent) AddTime(key string, val time.Time) bool {
	e.writeField(key, val.Format(time.RFC3339Nano))
	return true
}

func (e *schedEvent) AddError(err error) bool {
	if err == nil {
		return false
	}
	e.writeField("err", strconv.Quote(err.Error()))
	return true
}

func (e *schedEvent) AddBase64Bytes(key string, b []byte, enc *base64.Encoding) bool {
	e.writeField(key, strconv.Quote(enc.EncodeToString(b)))
	return true
}

// Bytes renders the event as a single log line: "level=<lvl> <fields> msg=<msg>".
func (e *schedEvent) Bytes() []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, "level=%s", e.level)
	if e.buf.Len() > 0 {
		out.WriteByte(' ')
		out.Write(e.buf.Bytes())
	}
	fmt.Fprintf(&out, " msg=%s", strconv.Quote(e.msg))
	return out.Bytes()
}

var _ logiface.Event = (*schedEvent)(nil)

// writeSchedEventDiscard is the default no-op writer, used when a
// Scheduler is constructed without WithLogger — mirroring the teacher's
// NoOpLogger.
var writeSchedEventDiscard = logiface.WriterFunc[*schedEvent](func(*schedEvent) error { return nil })

// NewDiscardLogger builds a *logiface.Logger[*schedEvent] that formats
// events but discards the result; useful as an explicit no-op when a
// caller wants to pass WithLogger but not actually emit anything.
func NewDiscardLogger() *logiface.Logger[*schedEvent] {
	return logiface.New[*schedEvent](
		logiface.L.WithEventFactory(logiface.NewEventFactoryFunc(newSchedEvent)),
		logiface.L.WithWriter(writeSchedEventDiscard),
	)
}

// writerFunc matches io.Writer's Write signature without importing io
// solely for this alias; any io.Writer's Write method satisfies it.
type writerFunc func(p []byte) (n int, err error)

// NewTextLogger builds a *logiface.Logger[*schedEvent] that writes each
// event's Bytes() rendering to w, terminated by a newline. This is the
// built-in, low-overhead default in the style of the teacher's
// WriterLogger, for callers that don't want to bring their own logiface
// backend (zerolog/logrus/slog/stumpy).
func NewTextLogger(w writerFunc) *logiface.Logger[*schedEvent] {
	return logiface.New[*schedEvent](
		logiface.L.WithEventFactory(logiface.NewEventFactoryFunc(newSchedEvent)),
		logiface.L.WithWriter(logiface.WriterFunc[*schedEvent](func(e *schedEvent) error {
			_, err := w(append(e.Bytes(), '\n'))
			return err
		})),
	)
}
